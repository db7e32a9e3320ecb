package validation

import (
	"slices"
	"strings"
	"testing"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/consolidator"
	"github.com/giygas/supply-status/interfaces"
	"github.com/google/go-cmp/cmp"
)

func records(pairs ...string) []entities.Record {
	var out []entities.Record
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, entities.Record{IngredientName: pairs[i], Category: pairs[i+1], Line: i/2 + 2})
	}
	return out
}

func TestCheckDuplicateIngredients(t *testing.T) {
	v := NewDataValidator()

	unique := []entities.ConsolidatedEntry{{IngredientName: "X", Category: "A"}, {IngredientName: "Y", Category: "A"}}
	if err := v.CheckDuplicateIngredients(unique); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	duplicated := append(slices.Clone(unique), entities.ConsolidatedEntry{IngredientName: "X", Category: "B"})
	err := v.CheckDuplicateIngredients(duplicated)
	if err == nil || !strings.Contains(err.Error(), "1 duplicate") {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestValidateSortOrder(t *testing.T) {
	v := NewDataValidator()

	entries := []entities.ConsolidatedEntry{
		{IngredientName: "b", Category: "A"},
		{IngredientName: "a", Category: "B"},
	}

	if err := v.ValidateSortOrder(entries, consolidator.SortByCategory); err != nil {
		t.Errorf("Expected by-category order to hold, got %v", err)
	}
	if err := v.ValidateSortOrder(entries, consolidator.SortByIngredient); err == nil {
		t.Error("Expected by-ingredient order to fail")
	}
	if err := v.ValidateSortOrder(nil, consolidator.SortByCategory); err != nil {
		t.Errorf("Expected empty input to pass, got %v", err)
	}
}

func TestReportDataQuality(t *testing.T) {
	input := records(
		"X", "A",
		"Y", "A",
		"X", "B",
		"Z", "C",
		"Y", "A",
		"W", "B",
		"W", "A",
	)
	entries := consolidator.NewConsolidator(consolidator.SortByCategory).Consolidate(slices.Values(input)).Entries

	report := NewDataValidator().ReportDataQuality(input, entries, "A")

	if report.WatchedRows != 4 {
		t.Errorf("Expected 4 rows with A, got %d", report.WatchedRows)
	}
	if report.IngredientsWatched != 3 {
		t.Errorf("Expected 3 ingredients ever A, got %d", report.IngredientsWatched)
	}
	if report.DuplicateRows != 3 {
		t.Errorf("Expected 3 duplicate rows, got %d", report.DuplicateRows)
	}

	wantOverridden := []interfaces.OverriddenCategory{{IngredientName: "X", History: []string{"A", "B"}}}
	if diff := cmp.Diff(wantOverridden, report.OverriddenWatched); diff != "" {
		t.Errorf("Overridden mismatch (-want +got):\n%s", diff)
	}

	wantRows := map[string]int{"A": 4, "B": 2, "C": 1}
	if diff := cmp.Diff(wantRows, report.RowCategoryCounts); diff != "" {
		t.Errorf("Row counts mismatch (-want +got):\n%s", diff)
	}

	wantFinal := map[string]int{"A": 2, "B": 1, "C": 1}
	if diff := cmp.Diff(wantFinal, report.FinalCategoryCounts); diff != "" {
		t.Errorf("Final counts mismatch (-want +got):\n%s", diff)
	}

	if len(report.DuplicateIngredients) != 0 {
		t.Errorf("Expected no duplicate output keys, got %v", report.DuplicateIngredients)
	}
}

func TestReportDataQualityEmpty(t *testing.T) {
	report := NewDataValidator().ReportDataQuality(nil, nil, "A")

	if report.IngredientsWatched != 0 || len(report.OverriddenWatched) != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
	if report.RowCategoryCounts == nil || report.FinalCategoryCounts == nil {
		t.Error("Expected initialized count maps")
	}
}
