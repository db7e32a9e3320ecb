// Package consolidator folds category records into one entry per ingredient.
//
// The merge policy is last-writer-wins: for an ingredient that appears on
// several rows, the row latest in source order supplies the category, no
// matter which categories came before it. Every replacement is reported as an
// Override so the policy can be audited.
package consolidator

import (
	"iter"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/logging"
)

// Override records a later row replacing an earlier one for the same
// ingredient.
type Override struct {
	IngredientName string `json:"ingredient_name"`
	Superseded     string `json:"superseded"`
	Winning        string `json:"winning"`
	Line           int    `json:"line"`
}

// Conflict reports whether the replacement changed the category
func (o Override) Conflict() bool {
	return o.Superseded != o.Winning
}

// Result is the outcome of one consolidation.
type Result struct {
	Entries     []entities.ConsolidatedEntry
	Overrides   []Override
	RecordCount int
}

// Conflicts counts the overrides that changed a category
func (r Result) Conflicts() int {
	n := 0
	for _, o := range r.Overrides {
		if o.Conflict() {
			n++
		}
	}
	return n
}

// Consolidator merges records and orders the result by its sort mode.
type Consolidator struct {
	sortMode SortMode
}

// NewConsolidator creates a consolidator for the given sort mode
func NewConsolidator(mode SortMode) *Consolidator {
	return &Consolidator{sortMode: mode}
}

// SortMode returns the configured ordering
func (c *Consolidator) SortMode() SortMode {
	return c.sortMode
}

// Consolidate folds records in order and returns the sorted entries. The
// returned Entries slice is never nil.
func (c *Consolidator) Consolidate(records iter.Seq[entities.Record]) Result {
	index := newCategoryIndex()
	var result Result

	for record := range records {
		result.RecordCount++

		previous, replaced := index.put(record)
		if !replaced {
			continue
		}

		override := Override{
			IngredientName: record.IngredientName,
			Superseded:     previous.Category,
			Winning:        record.Category,
			Line:           record.Line,
		}
		result.Overrides = append(result.Overrides, override)

		if override.Conflict() {
			logging.Info("Category overridden by later row",
				"ingredient", override.IngredientName,
				"superseded", override.Superseded,
				"winning", override.Winning,
				"superseded_line", previous.Line,
				"line", override.Line)
		} else {
			logging.Debug("Repeated ingredient row",
				"ingredient", override.IngredientName,
				"category", override.Winning,
				"line", override.Line)
		}
	}

	result.Entries = index.extract()
	SortEntries(result.Entries, c.sortMode)

	logging.Info("Consolidation completed",
		"records", result.RecordCount,
		"entries", len(result.Entries),
		"overrides", len(result.Overrides),
		"conflicts", result.Conflicts(),
		"sort_mode", string(c.sortMode))

	return result
}

// categoryIndex is the per-run ingredient → latest record mapping.
type categoryIndex struct {
	latest map[string]entities.Record
}

func newCategoryIndex() *categoryIndex {
	return &categoryIndex{latest: make(map[string]entities.Record)}
}

// put stores r unconditionally and returns the record it replaced, if any
func (ix *categoryIndex) put(r entities.Record) (entities.Record, bool) {
	previous, ok := ix.latest[r.IngredientName]
	ix.latest[r.IngredientName] = r
	return previous, ok
}

// extract returns one entry per ingredient in no particular order
func (ix *categoryIndex) extract() []entities.ConsolidatedEntry {
	entries := make([]entities.ConsolidatedEntry, 0, len(ix.latest))
	for _, record := range ix.latest {
		entries = append(entries, entities.EntryFromRecord(record))
	}
	return entries
}
