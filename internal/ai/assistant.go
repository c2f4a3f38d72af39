package ai

import (
	"context"

	"github.com/spigell/shiftmatch/internal/posting"
)

type FitAssessment struct {
	Fit    bool
	Score  float64
	Reason string
	Raw    string
}

// Matcher judges how well a candidate posting suits the caller's own posting.
type Matcher interface {
	Evaluate(ctx context.Context, own *posting.Posting, candidate *posting.Posting) (*FitAssessment, error)
}
