package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/ai"
	"github.com/spigell/shiftmatch/internal/posting"
)

type aiFitFilter struct {
	enabled bool
	reason  string
	config  *AIFitFilterConfig
	deps    *AIFitFilterDeps
}

type AIFitFilterDeps struct {
	Logger  *zap.Logger
	Matcher ai.Matcher
	// Own is the caller's posting the candidates are compared to.
	Own *posting.Posting
}

type AIFitFilterConfig struct {
	Enabled bool
	Model   string
	// KeepRejected annotates rejected postings instead of dropping them.
	KeepRejected bool
}

// NewAIFit creates the AI-based filtering step.
func NewAIFit(cfg *AIFitFilterConfig, deps *AIFitFilterDeps) Filter {
	if cfg == nil {
		cfg = &AIFitFilterConfig{}
	}
	return &aiFitFilter{
		enabled: cfg.Enabled,
		deps:    deps,
		config:  cfg,
	}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return f.enabled }

func (f *aiFitFilter) Validate() error {
	if f.deps == nil || f.deps.Matcher == nil {
		return fmt.Errorf("ai matcher is required when ai filter is enabled")
	}
	if f.deps.Own == nil {
		return fmt.Errorf("an own posting must be selected for ai evaluation")
	}
	if strings.TrimSpace(f.config.Model) == "" {
		return fmt.Errorf("gemini model is required when ai filter is enabled")
	}
	if f.deps.Logger == nil {
		f.deps.Logger = zap.NewNop()
	}
	return nil
}

// Apply evaluates every posting. Failed evaluations keep the posting with the error attached.
func (f *aiFitFilter) Apply(ctx context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	approved := make([]*posting.Posting, 0, initial)

	for _, item := range p.Items {
		if err := ctx.Err(); err != nil {
			return nil, Step{}, err
		}

		annotated := *item

		assessment, err := f.deps.Matcher.Evaluate(ctx, f.deps.Own, item)
		if err != nil {
			f.deps.Logger.Warn("AI evaluation failed",
				zap.String("posting_id", item.ID()),
				zap.Error(err),
			)
			annotated.AI = &posting.AIAssessment{Error: err.Error()}
			approved = append(approved, &annotated)
			continue
		}

		annotated.AI = &posting.AIAssessment{
			Fit:    assessment.Fit,
			Score:  assessment.Score,
			Reason: assessment.Reason,
			Raw:    assessment.Raw,
		}

		if !assessment.Fit {
			f.deps.Logger.Info("posting rejected by AI provider",
				zap.String("posting_id", item.ID()),
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)
			if f.config.KeepRejected {
				approved = append(approved, &annotated)
			}
			continue
		}

		f.deps.Logger.Debug("posting approved by AI",
			zap.String("posting_id", item.ID()),
			zap.Float64("ai_score", assessment.Score),
		)
		approved = append(approved, &annotated)
	}

	f.deps.Logger.Info("AI filtering completed",
		zap.Int("initial_postings", initial),
		zap.Int("approved_postings", len(approved)),
	)

	left := len(approved)
	return &posting.Postings{Items: approved}, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{
		"model":         f.config.Model,
		"keep_rejected": fmt.Sprintf("%t", f.config.KeepRejected),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
