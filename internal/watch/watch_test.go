package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
)

type stubSource struct {
	mu    sync.Mutex
	feeds []*backend.Notifications
	err   error
	calls int
}

func (s *stubSource) GetNotifications(context.Context) (*backend.Notifications, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.feeds) {
		idx = len(s.feeds) - 1
	}
	return s.feeds[idx], nil
}

func feed(items ...*backend.Notification) *backend.Notifications {
	return &backend.Notifications{Items: items}
}

func TestPollReportsOnlyNewUnread(t *testing.T) {
	source := &stubSource{feeds: []*backend.Notifications{
		feed(&backend.Notification{ID: "n1", Message: "applied"}, &backend.Notification{ID: "n2", Read: true}),
		feed(&backend.Notification{ID: "n1", Message: "applied"}, &backend.Notification{ID: "n2", Read: true}, &backend.Notification{ID: "n3", Message: "accepted"}),
	}}

	var got []string
	w := New(source, "@every 1h", func(n *backend.Notification) { got = append(got, n.ID) }, zap.NewNop())

	for _, want := range []int{1, 1} {
		reported, err := w.Poll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reported != want {
			t.Fatalf("expected %d reported, got %d", want, reported)
		}
	}

	if len(got) != 2 || got[0] != "n1" || got[1] != "n3" {
		t.Fatalf("unexpected reports: %v", got)
	}
}

func TestPollError(t *testing.T) {
	source := &stubSource{err: errors.New("bad status: 401")}
	w := New(source, "@every 1h", func(*backend.Notification) { t.Fatalf("nothing must be reported") }, nil)

	if _, err := w.Poll(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStartPollsImmediately(t *testing.T) {
	reported := make(chan string, 1)
	source := &stubSource{feeds: []*backend.Notifications{feed(&backend.Notification{ID: "n1"})}}
	w := New(source, "@every 1h", func(n *backend.Notification) { reported <- n.ID }, zap.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	select {
	case id := <-reported:
		if id != "n1" {
			t.Fatalf("unexpected id %s", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected an immediate poll")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w := New(&stubSource{}, "every now and then", func(*backend.Notification) {}, nil)
	if err := w.Start(context.Background()); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}
