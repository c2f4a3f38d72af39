package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/shiftmatch/internal/ai"
	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/session"
)

func sampleJobs() *posting.Postings {
	return posting.Jobs([]*posting.Job{
		{ID: "j1", ManagerID: "m1", ManagerName: "Cafe Nour", Location: "Ramallah", JobDescription: "Barista", Availability: posting.Availability{posting.Saturday: "10-2"}},
		{ID: "j2", ManagerID: "m2", ManagerName: "Market", Location: "Nablus", JobDescription: "Cashier", Availability: posting.Availability{posting.Sunday: "9-5"}},
	})
}

func sampleRequests() *posting.Postings {
	return posting.Requests([]*posting.Request{
		{ID: "r1", StudentID: "s1", Location: "Downtown Ramallah", FormerExperience: "Barista", StudentGender: "Female", Availability: posting.Availability{posting.Monday: "9am-5pm"}},
		{ID: "r2", StudentID: "s2", Location: "Jenin", FormerExperience: "Tutor", StudentGender: "male", Availability: posting.Availability{posting.Monday: "9-12", posting.Tuesday: "1-4"}},
		{ID: "r3", StudentID: "s3", Location: "downtown Hebron", FormerExperience: "cashier"},
	})
}

func days(t *testing.T, labels ...string) posting.DaySet {
	t.Helper()
	set, err := posting.NewDaySet(labels...)
	if err != nil {
		t.Fatalf("day set: %v", err)
	}
	return set
}

func TestApplyFiltersZeroCriteriaIsIdentity(t *testing.T) {
	for _, role := range []posting.Role{posting.RoleStudent, posting.RoleManager} {
		for _, input := range []*posting.Postings{sampleJobs(), sampleRequests(), posting.NewPostings()} {
			got := ApplyFilters(input, posting.Criteria{}, role)
			if !reflect.DeepEqual(got.IDs(), input.IDs()) {
				t.Fatalf("%s: expected identity %v, got %v", role, input.IDs(), got.IDs())
			}
		}
	}
}

func TestApplyFiltersCaseInsensitive(t *testing.T) {
	upper := ApplyFilters(sampleRequests(), posting.Criteria{Location: "DOWNTOWN"}, posting.RoleManager)
	lower := ApplyFilters(sampleRequests(), posting.Criteria{Location: "downtown"}, posting.RoleManager)

	if !reflect.DeepEqual(upper.IDs(), lower.IDs()) {
		t.Fatalf("expected identical results, got %v and %v", upper.IDs(), lower.IDs())
	}
	if !reflect.DeepEqual(lower.IDs(), []string{"r1", "r3"}) {
		t.Fatalf("unexpected result: %v", lower.IDs())
	}
}

func TestApplyFiltersConjunctionNarrows(t *testing.T) {
	location := posting.Criteria{Location: "downtown"}
	experience := posting.Criteria{Experience: "barista"}
	both := posting.Criteria{Location: "downtown", Experience: "barista"}

	byLocation := ApplyFilters(sampleRequests(), location, posting.RoleManager)
	byExperience := ApplyFilters(sampleRequests(), experience, posting.RoleManager)
	byBoth := ApplyFilters(sampleRequests(), both, posting.RoleManager)

	for _, id := range byBoth.IDs() {
		if byLocation.FindByID(id) == nil || byExperience.FindByID(id) == nil {
			t.Fatalf("conjunction widened the result with %s", id)
		}
	}
	if !reflect.DeepEqual(byBoth.IDs(), []string{"r1"}) {
		t.Fatalf("unexpected result: %v", byBoth.IDs())
	}
}

func TestApplyFiltersDays(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		want     []string
	}{
		{name: "missing day excludes", required: []string{"Tuesday"}, want: []string{"r2"}},
		{name: "present day includes", required: []string{"Monday"}, want: []string{"r1", "r2"}},
		{name: "no days keeps all", required: nil, want: []string{"r1", "r2", "r3"}},
		{name: "every day required", required: []string{"Monday", "Tuesday"}, want: []string{"r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := posting.Criteria{Days: days(t, tt.required...)}
			got := ApplyFilters(sampleRequests(), criteria, posting.RoleManager)
			if !reflect.DeepEqual(got.IDs(), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got.IDs())
			}
		})
	}
}

func TestApplyFiltersGender(t *testing.T) {
	jobs := ApplyFilters(sampleJobs(), posting.Criteria{Gender: "Female"}, posting.RoleManager)
	if !reflect.DeepEqual(jobs.IDs(), []string{"j1", "j2"}) {
		t.Fatalf("gender must not filter jobs, got %v", jobs.IDs())
	}

	requests := ApplyFilters(sampleRequests(), posting.Criteria{Gender: "MALE"}, posting.RoleManager)
	if !reflect.DeepEqual(requests.IDs(), []string{"r2"}) {
		t.Fatalf("expected exact case-insensitive match, got %v", requests.IDs())
	}

	student := ApplyFilters(sampleRequests(), posting.Criteria{Gender: "male"}, posting.RoleStudent)
	if student.Len() != 3 {
		t.Fatalf("gender must be ignored for students, got %v", student.IDs())
	}
}

func TestApplyFiltersExamples(t *testing.T) {
	byLocation := ApplyFilters(sampleJobs(), posting.Criteria{Location: "ram"}, posting.RoleStudent)
	if !reflect.DeepEqual(byLocation.IDs(), []string{"j1"}) {
		t.Fatalf("expected [j1], got %v", byLocation.IDs())
	}

	byDays := ApplyFilters(sampleJobs(), posting.Criteria{Days: days(t, "Saturday", "Sunday")}, posting.RoleStudent)
	if byDays.Len() != 0 {
		t.Fatalf("expected empty result, got %v", byDays.IDs())
	}
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	input := sampleRequests()
	before := input.IDs()

	got := ApplyFilters(input, posting.Criteria{Location: "jenin"}, posting.RoleManager)
	got.Items[0] = nil

	if !reflect.DeepEqual(input.IDs(), before) {
		t.Fatalf("input changed: %v", input.IDs())
	}
}

func TestApplyFiltersMissingFields(t *testing.T) {
	input := posting.NewPostings(
		&posting.Posting{Kind: posting.KindJob},
		&posting.Posting{Kind: posting.KindRequest, Request: &posting.Request{ID: "r1"}},
	)

	got := ApplyFilters(input, posting.Criteria{Location: "x", Gender: "female", Days: days(t, "Friday")}, posting.RoleManager)
	if got.Len() != 0 {
		t.Fatalf("expected empty result, got %d", got.Len())
	}
}

func TestRunFiltersLogsSteps(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	steps := AttributeSteps(posting.Criteria{Location: "ram"}, posting.RoleStudent)

	got, err := New(steps, zap.New(core)).RunFilters(context.Background(), sampleJobs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.IDs(), []string{"j1"}) {
		t.Fatalf("unexpected result: %v", got.IDs())
	}

	entries := logs.FilterMessage("filter step").All()
	if len(entries) != 1 {
		t.Fatalf("expected one executed step, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["name"] != "location" || fields["dropped"] != int64(1) || fields["left"] != int64(1) {
		t.Fatalf("unexpected step fields: %v", fields)
	}

	if disabled := logs.FilterMessage("filter disabled").Len(); disabled != 3 {
		t.Fatalf("expected three disabled steps, got %d", disabled)
	}
}

func TestDisableByNameAndDescribe(t *testing.T) {
	steps := AttributeSteps(posting.Criteria{Location: "ram", Gender: "female"}, posting.RoleStudent)
	DisableByName(steps, "location", "turned off")

	statuses := Describe(steps)
	if len(statuses) != len(steps) {
		t.Fatalf("expected %d statuses, got %d", len(steps), len(statuses))
	}
	if statuses[0].Enabled || statuses[0].Reason != "turned off" {
		t.Fatalf("unexpected location status: %+v", statuses[0])
	}
	if statuses[2].Enabled || statuses[2].Reason == "" {
		t.Fatalf("gender must be disabled for students: %+v", statuses[2])
	}
}

func TestExcludedOwners(t *testing.T) {
	got, err := New([]Filter{NewExcludedOwners([]string{"m1", " market "})}, zap.NewNop()).RunFilters(context.Background(), sampleJobs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected every job to be excluded, got %v", got.IDs())
	}

	if NewExcludedOwners(nil).IsEnabled() {
		t.Fatalf("empty owner list must disable the step")
	}
}

func TestExcludeFile(t *testing.T) {
	path, err := posting.NewPostings(sampleJobs().Items[0]).DumpToTmpFile()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })

	got, err := New([]Filter{NewExcludeFile(path)}, zap.NewNop()).RunFilters(context.Background(), sampleJobs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.IDs(), []string{"j2"}) {
		t.Fatalf("unexpected result: %v", got.IDs())
	}

	missing := NewExcludeFile(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := New([]Filter{missing}, zap.NewNop()).RunFilters(context.Background(), sampleJobs()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExcludeFileWithNullEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, []byte(`{"items":[null]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, _, err := NewExcludeFile(path).Apply(context.Background(), sampleJobs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.IDs(), sampleJobs().IDs()) {
		t.Fatalf("unexpected result: %v", got.IDs())
	}
}

func TestAppliedHistory(t *testing.T) {
	ctx := context.Background()
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err := session.RecordApplied(ctx, store, "j2"); err != nil {
		t.Fatalf("record: %v", err)
	}

	deps := &AppliedHistoryDeps{Store: store, Logger: zap.NewNop()}

	got, err := New([]Filter{NewAppliedHistory(&AppliedHistoryConfig{Role: posting.RoleStudent}, deps)}, zap.NewNop()).RunFilters(ctx, sampleJobs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.IDs(), []string{"j1"}) {
		t.Fatalf("unexpected result: %v", got.IDs())
	}

	forced := NewAppliedHistory(&AppliedHistoryConfig{Role: posting.RoleStudent, Ignore: true}, deps)
	got, err = New([]Filter{forced}, zap.NewNop()).RunFilters(ctx, sampleJobs())
	if err != nil || got.Len() != 2 {
		t.Fatalf("expected ignore to keep all jobs, got %v (%v)", got.IDs(), err)
	}

	if NewAppliedHistory(&AppliedHistoryConfig{Role: posting.RoleManager}, deps).IsEnabled() {
		t.Fatalf("applied history must be off for managers")
	}

	if err := NewAppliedHistory(&AppliedHistoryConfig{Role: posting.RoleStudent}, nil).Validate(); err == nil {
		t.Fatalf("expected validation error without store")
	}
}

type stubMatcher struct {
	results map[string]*ai.FitAssessment
	errs    map[string]error
}

func (s *stubMatcher) Evaluate(_ context.Context, _ *posting.Posting, candidate *posting.Posting) (*ai.FitAssessment, error) {
	if err := s.errs[candidate.ID()]; err != nil {
		return nil, err
	}
	return s.results[candidate.ID()], nil
}

func TestAIFitFilter(t *testing.T) {
	matcher := &stubMatcher{
		results: map[string]*ai.FitAssessment{
			"r1": {Fit: true, Score: 0.9, Reason: "same field"},
			"r2": {Fit: false, Score: 0.1, Reason: "different field"},
		},
		errs: map[string]error{"r3": errors.New("quota")},
	}
	own := posting.FromJob(&posting.Job{ID: "j1", JobDescription: "Barista"})
	input := sampleRequests()

	tests := []struct {
		name         string
		keepRejected bool
		want         []string
	}{
		{name: "drop rejected", want: []string{"r1", "r3"}},
		{name: "keep rejected", keepRejected: true, want: []string{"r1", "r2", "r3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := NewAIFit(
				&AIFitFilterConfig{Enabled: true, Model: "gemini-2.5-flash", KeepRejected: tt.keepRejected},
				&AIFitFilterDeps{Logger: zap.NewNop(), Matcher: matcher, Own: own},
			)

			got, err := New([]Filter{step}, zap.NewNop()).RunFilters(context.Background(), input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.IDs(), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got.IDs())
			}

			first := got.FindByID("r1")
			if first.AI == nil || !first.AI.Fit || first.AI.Score != 0.9 {
				t.Fatalf("unexpected assessment: %+v", first.AI)
			}
			if failed := got.FindByID("r3"); failed.AI == nil || failed.AI.Error != "quota" {
				t.Fatalf("expected error annotation, got %+v", failed.AI)
			}
		})
	}

	for _, item := range input.Items {
		if item.AI != nil {
			t.Fatalf("input posting %s was annotated", item.ID())
		}
	}
}

func TestAIFitFilterValidate(t *testing.T) {
	step := NewAIFit(&AIFitFilterConfig{Enabled: true, Model: "m"}, &AIFitFilterDeps{Matcher: &stubMatcher{}})
	if _, err := New([]Filter{step}, zap.NewNop()).RunFilters(context.Background(), sampleRequests()); err == nil {
		t.Fatalf("expected validation error without own posting")
	}

	disabled := NewAIFit(nil, nil)
	if disabled.IsEnabled() {
		t.Fatalf("ai filter must be disabled by default")
	}
}
