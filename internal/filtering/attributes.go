package filtering

import (
	"context"
	"strings"

	"github.com/spigell/shiftmatch/internal/posting"
)

type locationFilter struct {
	disabled bool
	reason   string
	needle   string
}

// NewLocation keeps postings whose location contains the substring, ignoring case.
// An empty substring disables the step.
func NewLocation(substr string) Filter {
	return &locationFilter{needle: strings.ToLower(substr)}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *locationFilter) IsEnabled() bool { return !f.disabled && f.needle != "" }

func (f *locationFilter) Validate() error { return nil }

func (f *locationFilter) Match(p *posting.Posting) bool {
	return strings.Contains(strings.ToLower(p.Location()), f.needle)
}

func (f *locationFilter) Apply(_ context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	next, step := keep(f, p)
	return next, step, nil
}

func (f *locationFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"contains": f.needle}}
}

type experienceFilter struct {
	disabled bool
	reason   string
	needle   string
}

// NewExperience matches the job description of jobs and the former experience of requests.
func NewExperience(substr string) Filter {
	return &experienceFilter{needle: strings.ToLower(substr)}
}

func (f *experienceFilter) Name() string { return "experience" }

func (f *experienceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *experienceFilter) IsEnabled() bool { return !f.disabled && f.needle != "" }

func (f *experienceFilter) Validate() error { return nil }

func (f *experienceFilter) Match(p *posting.Posting) bool {
	return strings.Contains(strings.ToLower(p.Experience()), f.needle)
}

func (f *experienceFilter) Apply(_ context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	next, step := keep(f, p)
	return next, step, nil
}

func (f *experienceFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"contains": f.needle}}
}

type genderFilter struct {
	disabled bool
	reason   string
	gender   string
	role     posting.Role
}

// NewGender compares the student gender of requests. Only business managers browse
// requests, so for any other role the step stays disabled.
func NewGender(gender string, role posting.Role) Filter {
	f := &genderFilter{gender: gender, role: role}
	if role != posting.RoleManager {
		f.disabled = true
		f.reason = "gender applies to business managers only"
	}
	return f
}

func (f *genderFilter) Name() string { return "gender" }

func (f *genderFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *genderFilter) IsEnabled() bool { return !f.disabled && f.gender != "" }

func (f *genderFilter) Validate() error { return nil }

// Match ignores job postings; they carry no gender.
func (f *genderFilter) Match(p *posting.Posting) bool {
	gender, ok := p.Gender()
	if !ok {
		return true
	}
	return strings.EqualFold(gender, f.gender)
}

func (f *genderFilter) Apply(_ context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	next, step := keep(f, p)
	return next, step, nil
}

func (f *genderFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"equals": f.gender}}
}

type availabilityFilter struct {
	disabled bool
	reason   string
	days     []posting.Day
}

// NewAvailability keeps postings available on every required day.
func NewAvailability(days posting.DaySet) Filter {
	return &availabilityFilter{days: days.Active()}
}

func (f *availabilityFilter) Name() string { return "availability" }

func (f *availabilityFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *availabilityFilter) IsEnabled() bool { return !f.disabled && len(f.days) > 0 }

func (f *availabilityFilter) Validate() error { return nil }

func (f *availabilityFilter) Match(p *posting.Posting) bool {
	avail := p.Availability()
	for _, day := range f.days {
		if !avail.Has(day) {
			return false
		}
	}
	return true
}

func (f *availabilityFilter) Apply(_ context.Context, p *posting.Postings) (*posting.Postings, Step, error) {
	next, step := keep(f, p)
	return next, step, nil
}

func (f *availabilityFilter) Status() Status {
	names := make([]string, 0, len(f.days))
	for _, d := range f.days {
		names = append(names, string(d))
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"days": strings.Join(names, ",")}}
}
