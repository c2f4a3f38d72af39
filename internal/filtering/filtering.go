package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/posting"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, p *posting.Postings) (*posting.Postings, Step, error)
}

// Matcher is implemented by steps that decide on a single posting without I/O.
type Matcher interface {
	Match(p *posting.Posting) bool
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filtering{steps: steps, logger: logger}
}

// RunFilters validates the enabled steps and then executes them sequentially.
// The input list is never modified.
func (f *Filtering) RunFilters(ctx context.Context, p *posting.Postings) (*posting.Postings, error) {
	for _, step := range f.steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	current := p.Clone()
	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		current = next
	}

	return current, nil
}

func (f *Filtering) Steps() []Filter {
	return f.steps
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// ApplyFilters narrows postings to those matching every active criterion.
// It is synchronous, never fails and returns a new list in the input order.
func ApplyFilters(p *posting.Postings, criteria posting.Criteria, role posting.Role) *posting.Postings {
	matchers := make([]Matcher, 0, 4)
	for _, step := range AttributeSteps(criteria, role) {
		if !step.IsEnabled() {
			continue
		}
		if m, ok := step.(Matcher); ok {
			matchers = append(matchers, m)
		}
	}

	return p.Keep(func(item *posting.Posting) bool {
		for _, m := range matchers {
			if !m.Match(item) {
				return false
			}
		}
		return true
	})
}

// AttributeSteps builds the location, experience, gender and availability steps for the criteria.
func AttributeSteps(criteria posting.Criteria, role posting.Role) []Filter {
	return []Filter{
		NewLocation(criteria.Location),
		NewExperience(criteria.Experience),
		NewGender(criteria.Gender, role),
		NewAvailability(criteria.Days),
	}
}

// keep runs a matcher over the list and reports the step accounting.
func keep(m Matcher, p *posting.Postings) (*posting.Postings, Step) {
	initial := p.Len()
	next := p.Keep(m.Match)
	return next, Step{Initial: initial, Dropped: initial - next.Len(), Left: next.Len()}
}
