package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/session"
)

const forceFlagSetMsg = "force flag is set"

type appliedHistoryFilter struct {
	deps   *AppliedHistoryDeps
	ignore bool
	role   posting.Role
}

type AppliedHistoryDeps struct {
	Store  session.Store
	Logger *zap.Logger
}

type AppliedHistoryConfig struct {
	Ignore bool
	Role   posting.Role
}

// NewAppliedHistory creates a filter that removes jobs the student already applied to.
// Managers browse requests, which cannot be applied to, so the step is off for them.
func NewAppliedHistory(cfg *AppliedHistoryConfig, deps *AppliedHistoryDeps) Filter {
	if cfg == nil {
		cfg = &AppliedHistoryConfig{}
	}

	return &appliedHistoryFilter{
		deps:   deps,
		ignore: cfg.Ignore,
		role:   cfg.Role,
	}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Disable(string) {}

func (f *appliedHistoryFilter) IsEnabled() bool { return f.role == posting.RoleStudent }

func (f *appliedHistoryFilter) Validate() error {
	if f.deps == nil || f.deps.Store == nil {
		return fmt.Errorf("session store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *appliedHistoryFilter) Apply(ctx context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if f.ignore {
		f.deps.Logger.Info("ignoring already applied jobs", zap.String("reason", forceFlagSetMsg))
		return p, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	applied, err := session.Applied(ctx, f.deps.Store)
	if err != nil {
		return nil, Step{}, fmt.Errorf("get applied jobs: %w", err)
	}

	next, step := keep(idMatcher(applied), p)
	if step.Dropped > 0 {
		f.deps.Logger.Info("excluding jobs already applied to",
			zap.Int("excluded_jobs", step.Dropped),
			zap.Int("jobs_left", step.Left),
		)
	}

	return next, step, nil
}

func (f *appliedHistoryFilter) Status() Status {
	reason := ""
	if f.ignore {
		reason = forceFlagSetMsg
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: reason}
}
