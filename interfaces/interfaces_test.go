package interfaces

import (
	"context"
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/consolidator"
)

// MockRunStore implements RunStore interface for testing
type MockRunStore struct {
	summary     entities.RunSummary
	hasSummary  bool
	lastUpdated time.Time
	lastErr     error
	updating    bool
}

func (m *MockRunStore) BeginUpdate() bool {
	if m.updating {
		return false
	}
	m.updating = true
	return true
}

func (m *MockRunStore) EndUpdate() {
	m.updating = false
}

func (m *MockRunStore) IsUpdating() bool {
	return m.updating
}

func (m *MockRunStore) RecordRun(summary entities.RunSummary) {
	m.summary = summary
	m.hasSummary = true
	m.lastUpdated = time.Now()
	m.lastErr = nil
}

func (m *MockRunStore) RecordFailure(err error) {
	m.lastErr = err
}

func (m *MockRunStore) GetLastSummary() (entities.RunSummary, bool) {
	return m.summary, m.hasSummary
}

func (m *MockRunStore) GetLastUpdated() time.Time {
	return m.lastUpdated
}

func (m *MockRunStore) GetLastError() error {
	return m.lastErr
}

// MockParser implements Parser interface for testing
type MockParser struct {
	records []entities.Record
}

func (m *MockParser) Records(content []byte, stats *entities.ParseStats) iter.Seq[entities.Record] {
	return func(yield func(entities.Record) bool) {
		if stats != nil {
			*stats = entities.ParseStats{TotalLines: len(m.records), Parsed: len(m.records)}
		}
		for _, r := range m.records {
			if !yield(r) {
				return
			}
		}
	}
}

// MockRunner implements Runner interface for testing
type MockRunner struct {
	err error
}

func (m *MockRunner) Run(ctx context.Context) (entities.RunSummary, error) {
	if m.err != nil {
		return entities.RunSummary{}, m.err
	}
	return entities.RunSummary{Entries: 1, FinishedAt: time.Now()}, nil
}

// MockScheduler implements Scheduler interface for testing
type MockScheduler struct {
	started bool
	stopped bool
}

func (m *MockScheduler) Start() error {
	if m.started {
		return &mockError{"already started"}
	}
	m.started = true
	return nil
}

func (m *MockScheduler) Stop() {
	m.stopped = true
}

// MockDataValidator implements DataValidator interface for testing
type MockDataValidator struct{}

func (m *MockDataValidator) CheckDuplicateIngredients(entries []entities.ConsolidatedEntry) error {
	return nil
}

func (m *MockDataValidator) ValidateSortOrder(entries []entities.ConsolidatedEntry, mode consolidator.SortMode) error {
	return nil
}

func (m *MockDataValidator) ReportDataQuality(records []entities.Record, entries []entities.ConsolidatedEntry, watched string) *DataQualityReport {
	return &DataQualityReport{WatchedCategory: watched}
}

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}

func TestRunStoreInterface(t *testing.T) {
	var store RunStore = &MockRunStore{}

	if !store.BeginUpdate() {
		t.Fatal("First BeginUpdate should succeed")
	}
	if store.BeginUpdate() {
		t.Error("Second BeginUpdate should fail while updating")
	}
	store.RecordRun(entities.RunSummary{Entries: 5})
	store.EndUpdate()

	summary, ok := store.GetLastSummary()
	if !ok || summary.Entries != 5 {
		t.Errorf("Expected recorded summary, got %+v", summary)
	}
	if store.GetLastUpdated().IsZero() {
		t.Error("Expected lastUpdated to be set")
	}
}

func TestParserInterface(t *testing.T) {
	var parser Parser = &MockParser{records: []entities.Record{
		{IngredientName: "X", Category: "A"},
		{IngredientName: "Y", Category: "B"},
	}}

	var stats entities.ParseStats
	got := slices.Collect(parser.Records(nil, &stats))

	if len(got) != 2 || stats.Parsed != 2 {
		t.Errorf("Expected 2 records, got %d (stats %+v)", len(got), stats)
	}
}

func TestRunnerInterface(t *testing.T) {
	var runner Runner = &MockRunner{}
	if _, err := runner.Run(context.Background()); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	runner = &MockRunner{err: &mockError{"run failed"}}
	if _, err := runner.Run(context.Background()); err == nil {
		t.Error("Expected error from failing runner")
	}
}

func TestSchedulerInterface(t *testing.T) {
	scheduler := &MockScheduler{}
	var s Scheduler = scheduler

	if err := s.Start(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("Expected error on second start")
	}
	s.Stop()

	if !scheduler.stopped {
		t.Error("Scheduler should be stopped")
	}
}

func TestDataValidatorInterface(t *testing.T) {
	var validator DataValidator = &MockDataValidator{}

	report := validator.ReportDataQuality(nil, nil, "A")
	if report.WatchedCategory != "A" {
		t.Errorf("Expected watched category A, got %q", report.WatchedCategory)
	}
}

func TestCompileTimeChecks(t *testing.T) {
	var _ RunStore = (*MockRunStore)(nil)
	var _ Parser = (*MockParser)(nil)
	var _ Runner = (*MockRunner)(nil)
	var _ Scheduler = (*MockScheduler)(nil)
	var _ DataValidator = (*MockDataValidator)(nil)
}
