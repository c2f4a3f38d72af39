// Package watch polls the notification feed on a cron schedule and reports
// notifications that were not seen before.
package watch

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
)

type Source interface {
	GetNotifications(ctx context.Context) (*backend.Notifications, error)
}

// Watcher wraps robfig/cron and remembers which notifications were reported.
type Watcher struct {
	cron   *cron.Cron
	spec   string
	source Source
	report func(*backend.Notification)
	logger *zap.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// New creates a Watcher firing on spec, e.g. "@every 1m" or "*/5 * * * *".
func New(source Source, spec string, report func(*backend.Notification), logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		cron:   cron.New(cron.WithLogger(cron.PrintfLogger(zap.NewStdLog(logger.Named("cron"))))),
		spec:   spec,
		source: source,
		report: report,
		logger: logger,
		seen:   make(map[string]bool),
	}
}

// Start registers the poll and starts the scheduler. The first poll runs
// right away so the user does not wait for the first tick.
func (w *Watcher) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.poll(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	w.cron.Start()
	w.logger.Info("watching notifications", zap.String("schedule", w.spec))

	go w.poll(ctx)

	return nil
}

// Stop stops the scheduler and waits for a running poll to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("stopped watching notifications")
}

func (w *Watcher) poll(ctx context.Context) {
	if _, err := w.Poll(ctx); err != nil {
		w.logger.Warn("polling notifications", zap.Error(err))
	}
}

// Poll fetches the feed once and reports unread notifications not seen before.
func (w *Watcher) Poll(ctx context.Context) (int, error) {
	notifications, err := w.source.GetNotifications(ctx)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	reported := 0
	for _, item := range notifications.Since(w.seen) {
		w.seen[item.ID] = true
		if item.Read {
			continue
		}
		w.report(item)
		reported++
	}

	w.logger.Debug("polled notifications",
		zap.Int("total", notifications.Len()),
		zap.Int("unread", notifications.Unread()),
		zap.Int("reported", reported),
	)

	return reported, nil
}
