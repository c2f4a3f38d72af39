package filtering

import (
	"context"
	"strings"

	"github.com/spigell/shiftmatch/internal/posting"
)

type ownersFilter struct {
	owners map[string]bool
}

// NewExcludedOwners creates a filter that removes postings published by the configured
// owners. An owner is matched by id or by display name, ignoring case.
func NewExcludedOwners(owners []string) Filter {
	set := make(map[string]bool, len(owners))
	for _, owner := range owners {
		if owner = strings.ToLower(strings.TrimSpace(owner)); owner != "" {
			set[owner] = true
		}
	}
	return &ownersFilter{owners: set}
}

func (f *ownersFilter) Name() string { return "owners" }

func (f *ownersFilter) Disable(string) {}

func (f *ownersFilter) IsEnabled() bool { return len(f.owners) > 0 }

func (f *ownersFilter) Validate() error { return nil }

func (f *ownersFilter) Match(p *posting.Posting) bool {
	id, name := p.Owner()
	return !f.owners[strings.ToLower(id)] && !f.owners[strings.ToLower(name)]
}

func (f *ownersFilter) Apply(_ context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	next, step := keep(f, p)
	return next, step, nil
}
