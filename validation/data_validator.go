// Package validation checks consolidated category data and reports on what
// the merge policy discarded.
package validation

import (
	"fmt"
	"slices"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/consolidator"
	"github.com/giygas/supply-status/interfaces"
	"github.com/giygas/supply-status/logging"
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// CheckDuplicateIngredients fails when an ingredient name appears on more
// than one entry
func (v *DataValidatorImpl) CheckDuplicateIngredients(entries []entities.ConsolidatedEntry) error {
	duplicates := duplicateIngredients(entries)
	if len(duplicates) == 0 {
		return nil
	}

	logging.Error("Duplicate ingredients in consolidated output",
		"count", len(duplicates),
		"ingredients", duplicates,
	)
	return fmt.Errorf("found %d duplicate ingredients in output", len(duplicates))
}

func duplicateIngredients(entries []entities.ConsolidatedEntry) []string {
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		counts[e.IngredientName]++
	}

	var duplicates []string
	for name, count := range counts {
		if count > 1 {
			duplicates = append(duplicates, name)
		}
	}
	slices.Sort(duplicates)
	return duplicates
}

// ValidateSortOrder fails at the first adjacent pair that mode would swap
func (v *DataValidatorImpl) ValidateSortOrder(entries []entities.ConsolidatedEntry, mode consolidator.SortMode) error {
	for i := 1; i < len(entries); i++ {
		if mode.Compare(entries[i-1], entries[i]) > 0 {
			return fmt.Errorf("entries %d (%s/%s) and %d (%s/%s) are out of %s order",
				i-1, entries[i-1].Category, entries[i-1].IngredientName,
				i, entries[i].Category, entries[i].IngredientName,
				mode)
		}
	}
	return nil
}

// ReportDataQuality replays records in source order to show which ingredients
// lost the watched category to a later row, and counts categories before and
// after consolidation.
func (v *DataValidatorImpl) ReportDataQuality(records []entities.Record, entries []entities.ConsolidatedEntry, watched string) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		WatchedCategory:     watched,
		RowCategoryCounts:   make(map[string]int),
		FinalCategoryCounts: make(map[string]int),
	}

	history := make(map[string][]string)
	var order []string

	for _, r := range records {
		report.RowCategoryCounts[r.Category]++
		if r.Category == watched {
			report.WatchedRows++
		}

		if _, seen := history[r.IngredientName]; seen {
			report.DuplicateRows++
		} else {
			order = append(order, r.IngredientName)
		}
		history[r.IngredientName] = append(history[r.IngredientName], r.Category)
	}

	for _, name := range order {
		categories := history[name]
		if !slices.Contains(categories, watched) {
			continue
		}
		report.IngredientsWatched++

		if categories[len(categories)-1] != watched {
			report.OverriddenWatched = append(report.OverriddenWatched, interfaces.OverriddenCategory{
				IngredientName: name,
				History:        categories,
			})
		}
	}

	for _, e := range entries {
		report.FinalCategoryCounts[e.Category]++
	}

	report.DuplicateIngredients = duplicateIngredients(entries)

	if len(report.OverriddenWatched) > 0 {
		logging.Warn("Watched category overridden by later rows",
			"category", watched,
			"count", len(report.OverriddenWatched),
		)
	}

	return report
}
