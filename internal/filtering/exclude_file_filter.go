package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/shiftmatch/internal/posting"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes postings contained in a dump file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{
		path: path,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return f.path != "" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	excluded, err := posting.ReadFile(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	next, step := keep(idMatcher(excluded.IDs()), p)
	return next, step, nil
}

// idMatcher rejects postings whose id is listed.
type idMatcher []string

func (m idMatcher) Match(p *posting.Posting) bool {
	for _, id := range m {
		if p.ID() == id {
			return false
		}
	}
	return true
}
