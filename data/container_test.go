package data

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/google/go-cmp/cmp"
)

func TestNewRunState(t *testing.T) {
	rs := NewRunState()

	if rs.IsUpdating() {
		t.Error("NewRunState should not be updating")
	}

	if !rs.GetLastUpdated().IsZero() {
		t.Error("NewRunState should have zero lastUpdated time")
	}

	if _, ok := rs.GetLastSummary(); ok {
		t.Error("NewRunState should not have a summary")
	}

	if rs.GetLastError() != nil {
		t.Error("NewRunState should not have an error")
	}
}

func TestRecordRun(t *testing.T) {
	rs := NewRunState()

	finished := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
	summary := entities.RunSummary{
		InputPath:  "in.csv",
		OutputPath: "out.json",
		Entries:    3,
		FinishedAt: finished,
	}

	rs.RecordRun(summary)

	got, ok := rs.GetLastSummary()
	if !ok {
		t.Fatal("Expected a summary after RecordRun")
	}
	if diff := cmp.Diff(summary, got); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
	if !rs.GetLastUpdated().Equal(finished) {
		t.Errorf("Expected lastUpdated %v, got %v", finished, rs.GetLastUpdated())
	}
	if rs.RunCount() != 1 {
		t.Errorf("Expected 1 run, got %d", rs.RunCount())
	}
}

func TestRecordRunWithoutFinishTime(t *testing.T) {
	rs := NewRunState()
	rs.RecordRun(entities.RunSummary{Entries: 1})

	if rs.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set after RecordRun")
	}
}

func TestRecordFailureKeepsLastSummary(t *testing.T) {
	rs := NewRunState()
	rs.RecordRun(entities.RunSummary{Entries: 2, FinishedAt: time.Unix(100, 0)})

	cause := errors.New("disk full")
	rs.RecordFailure(cause)

	if !errors.Is(rs.GetLastError(), cause) {
		t.Errorf("Expected last error %v, got %v", cause, rs.GetLastError())
	}
	if got, ok := rs.GetLastSummary(); !ok || got.Entries != 2 {
		t.Errorf("Expected previous summary to be kept, got %+v", got)
	}
	if !rs.GetLastUpdated().Equal(time.Unix(100, 0)) {
		t.Error("Failure should not move lastUpdated")
	}
	if rs.FailureCount() != 1 {
		t.Errorf("Expected 1 failure, got %d", rs.FailureCount())
	}

	rs.RecordRun(entities.RunSummary{Entries: 3})
	if rs.GetLastError() != nil {
		t.Errorf("Expected success to clear the error, got %v", rs.GetLastError())
	}
}

func TestBeginUpdateEndUpdate(t *testing.T) {
	rs := NewRunState()

	if !rs.BeginUpdate() {
		t.Error("BeginUpdate should return true first time")
	}

	if !rs.IsUpdating() {
		t.Error("Should be updating after BeginUpdate")
	}

	if rs.BeginUpdate() {
		t.Error("BeginUpdate should return false when already updating")
	}

	rs.EndUpdate()

	if rs.IsUpdating() {
		t.Error("Should not be updating after EndUpdate")
	}

	if !rs.BeginUpdate() {
		t.Error("BeginUpdate should return true after EndUpdate")
	}

	rs.EndUpdate()
}

func TestConcurrentBeginUpdate(t *testing.T) {
	rs := NewRunState()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rs.BeginUpdate() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("Expected exactly one BeginUpdate to succeed, got %d", winners)
	}
}

func TestConcurrentAccess(t *testing.T) {
	rs := NewRunState()
	rs.RecordRun(entities.RunSummary{Entries: 1})

	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 100 {
				summary, ok := rs.GetLastSummary()
				if !ok || summary.Entries == 0 {
					t.Errorf("Reader %d: expected a recorded summary", id)
					return
				}
				_ = rs.GetLastUpdated()
				_ = rs.GetLastError()
				_ = rs.IsUpdating()
			}
		}(i)
	}

	for i := range 3 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 50 {
				rs.RecordRun(entities.RunSummary{Entries: id*100 + j + 1})
				if j%10 == 0 {
					rs.RecordFailure(errors.New("transient"))
				}
			}
		}(i)
	}

	wg.Wait()

	if rs.RunCount() != 151 {
		t.Errorf("Expected 151 runs, got %d", rs.RunCount())
	}
}
