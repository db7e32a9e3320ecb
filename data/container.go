// Package data provides thread-safe storage of consolidation run state.
// The RunState keeps the last summary behind atomic values so schedulers and
// watchers can read it while a regeneration is in progress, and guards
// against two regenerations overlapping.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/interfaces"
	"github.com/giygas/supply-status/logging"
)

// Compile-time check to ensure RunState implements RunStore
var _ interfaces.RunStore = (*RunState)(nil)

// errorHolder wraps an error so atomic.Value always stores one concrete type
type errorHolder struct {
	err error
}

// RunState holds the outcome of the latest runs with atomic values
type RunState struct {
	lastSummary atomic.Value // entities.RunSummary
	lastUpdated atomic.Value // time.Time
	lastError   atomic.Value // errorHolder
	hasSummary  atomic.Bool
	updating    atomic.Bool
	runs        atomic.Int64
	failures    atomic.Int64
}

// NewRunState creates a RunState with no recorded runs
func NewRunState() *RunState {
	rs := &RunState{}
	rs.lastSummary.Store(entities.RunSummary{})
	rs.lastUpdated.Store(time.Time{})
	rs.lastError.Store(errorHolder{})
	return rs
}

// Thread-safe getters with type check

// GetLastSummary returns the summary of the last successful run and whether
// one exists
func (rs *RunState) GetLastSummary() (entities.RunSummary, bool) {
	if !rs.hasSummary.Load() {
		return entities.RunSummary{}, false
	}

	if v := rs.lastSummary.Load(); v != nil {
		if summary, ok := v.(entities.RunSummary); ok {
			return summary, true
		}
	}

	logging.Warn("Last run summary is invalid")
	return entities.RunSummary{}, false
}

// GetLastUpdated returns the time the artifact was last written
func (rs *RunState) GetLastUpdated() time.Time {
	if v := rs.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// GetLastError returns the error of the most recent run, nil after a success
func (rs *RunState) GetLastError() error {
	if v := rs.lastError.Load(); v != nil {
		if holder, ok := v.(errorHolder); ok {
			return holder.err
		}
	}
	return nil
}

// RunCount returns the number of successful runs recorded
func (rs *RunState) RunCount() int64 {
	return rs.runs.Load()
}

// FailureCount returns the number of failed runs recorded
func (rs *RunState) FailureCount() int64 {
	return rs.failures.Load()
}

// IsUpdating returns true if a regeneration is currently in progress
func (rs *RunState) IsUpdating() bool {
	return rs.updating.Load()
}

// RecordRun stores the summary of a successful run and clears the last error
func (rs *RunState) RecordRun(summary entities.RunSummary) {
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	rs.lastSummary.Store(summary)
	rs.hasSummary.Store(true)
	rs.lastUpdated.Store(finished)
	rs.lastError.Store(errorHolder{})
	rs.runs.Add(1)
}

// RecordFailure stores the error of a failed run. The previous summary and
// update time are kept since the artifact on disk did not change.
func (rs *RunState) RecordFailure(err error) {
	rs.lastError.Store(errorHolder{err: err})
	rs.failures.Add(1)
}

// BeginUpdate marks the start of a regeneration
// Returns true if the run can proceed, false if another run is in progress
func (rs *RunState) BeginUpdate() bool {
	return rs.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a regeneration
func (rs *RunState) EndUpdate() {
	rs.updating.Store(false)
}
