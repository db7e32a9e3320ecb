// Package interfaces defines the core abstractions of the consolidation tool
// so that runners, stores and schedulers can be swapped in tests.
package interfaces

import (
	"context"
	"iter"
	"time"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/consolidator"
)

// OverriddenCategory is an ingredient whose watched category was replaced by
// a later row. History lists every category seen for it, in source order.
type OverriddenCategory struct {
	IngredientName string
	History        []string
}

// DataQualityReport summarizes what the last-row-wins policy did to a source
type DataQualityReport struct {
	WatchedCategory      string
	RowCategoryCounts    map[string]int // per category, before consolidation
	WatchedRows          int            // rows carrying the watched category
	IngredientsWatched   int            // distinct ingredients ever assigned the watched category
	OverriddenWatched    []OverriddenCategory
	FinalCategoryCounts  map[string]int // per category, after consolidation
	DuplicateRows        int            // rows whose ingredient appeared earlier
	DuplicateIngredients []string       // repeated keys in the output, must be empty
}

// Parser defines the contract for turning source content into records.
type Parser interface {
	// Records yields accepted records in source order; stats may be nil
	Records(content []byte, stats *entities.ParseStats) iter.Seq[entities.Record]
}

// Runner performs one complete regeneration of the output artifact.
type Runner interface {
	Run(ctx context.Context) (entities.RunSummary, error)
}

// RunStore keeps the state shared between repeated runs: the last summary
// and a guard that keeps two runs from overlapping.
type RunStore interface {
	BeginUpdate() bool
	EndUpdate()
	IsUpdating() bool
	RecordRun(summary entities.RunSummary)
	RecordFailure(err error)
	GetLastSummary() (entities.RunSummary, bool)
	GetLastUpdated() time.Time
	GetLastError() error
}

// Scheduler defines the contract for repeated regeneration.
type Scheduler interface {
	Start() error
	Stop()
}

// DataValidator checks consolidated output and reports on the merge.
type DataValidator interface {
	// CheckDuplicateIngredients fails if an ingredient appears twice
	CheckDuplicateIngredients(entries []entities.ConsolidatedEntry) error

	// ValidateSortOrder fails if adjacent entries are out of order for mode
	ValidateSortOrder(entries []entities.ConsolidatedEntry, mode consolidator.SortMode) error

	// ReportDataQuality compares the raw records with the consolidated entries
	ReportDataQuality(records []entities.Record, entries []entities.ConsolidatedEntry, watched string) *DataQualityReport
}
