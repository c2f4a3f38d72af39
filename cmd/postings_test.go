package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/ranking"
	"github.com/spigell/shiftmatch/internal/session"
)

type countingRanker struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRanker) Rank(context.Context, posting.Role, string) (*posting.Postings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return posting.NewPostings(), nil
}

func testEnv(t *testing.T, client *backend.Client) (*env, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &env{
		config:  &Config{},
		logger:  zap.NewNop(),
		store:   session.NewFileStore(filepath.Join(t.TempDir(), "session.json")),
		session: &session.Session{Token: "tkn", UserID: "s1", Role: posting.RoleStudent},
		client:  client,
		out:     &printer{format: outputText, w: &out},
		close:   func() {},
	}, &out
}

func TestHandleRankWithoutOwnPostings(t *testing.T) {
	e, _ := testEnv(t, nil)
	ranker := &countingRanker{}
	var notes bytes.Buffer

	board, err := ranking.New(ranker, e.session, terminalNotifier{w: &notes}, zap.NewNop())
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	board.Replace(posting.Jobs([]*posting.Job{{ID: "j1"}}))

	err = handleAction(context.Background(), PromptRank, e, board, posting.NewPostings(), posting.Criteria{})
	if err != nil {
		t.Fatalf("the screen must keep running, got %v", err)
	}
	if ranker.calls != 0 {
		t.Fatalf("expected no ranking request, got %d", ranker.calls)
	}
	if notes.String() != ranking.ErrSelectionRequired.Error()+"\n" {
		t.Fatalf("expected one selection notice, got %q", notes.String())
	}
	if got := board.Displayed().IDs(); !reflect.DeepEqual(got, []string{"j1"}) {
		t.Fatalf("displayed list changed: %v", got)
	}
}

func TestApplyAndHideRemovesExactPosting(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"applied"}`))
	}))
	t.Cleanup(srv.Close)

	e, _ := testEnv(t, backend.New(zap.NewNop(), srv.URL, "tkn"))
	board, err := ranking.New(&countingRanker{}, e.session, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("new board: %v", err)
	}

	first := posting.FromJob(&posting.Job{ID: "j1", Location: "Ramallah"})
	twin := posting.FromJob(&posting.Job{ID: "j1", Location: "Ramallah"})
	other := posting.FromJob(&posting.Job{ID: "j2", Location: "Nablus"})
	board.Replace(posting.NewPostings(first, twin, other))

	if err := applyAndHide(context.Background(), e, board, twin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := board.Displayed()
	if got.Len() != 2 || got.Items[0] != first || got.Items[1] != other {
		t.Fatalf("expected only the applied posting removed, got %v", got.IDs())
	}
	if len(paths) != 1 || !strings.HasSuffix(paths[0], "/j1") {
		t.Fatalf("unexpected apply calls: %v", paths)
	}

	applied, err := session.Applied(context.Background(), e.store)
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if !reflect.DeepEqual(applied, []string{"j1"}) {
		t.Fatalf("expected j1 recorded, got %v", applied)
	}
}

func TestTerminalNotifierSelectionErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "missing selection", err: ranking.ErrSelectionRequired, want: "select one of your postings first\n"},
		{name: "foreign selection", err: fmt.Errorf("%w: x9", ranking.ErrUnknownSelection), want: "selected posting is not one of yours: x9\n"},
		{name: "server failure", err: errors.New("bad status: 502"), want: "ranking failed: bad status: 502\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			terminalNotifier{w: &buf}.Failure(tt.err)
			if buf.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}
