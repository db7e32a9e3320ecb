package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/giygas/supply-status/interfaces"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *cliOptions) *cobra.Command {
	var watched string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report which ingredients lose a category to later rows",
		Long: `Reads and consolidates the source without writing anything, then prints
per-category row counts, the ingredients that were ever assigned the watched
category, those whose final category differs with their full history, and
the final per-category counts under last-row-wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			analysis, err := p.Analyze(ctx, watched)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), analysis.Report)
			return nil
		},
	}

	cmd.Flags().StringVar(&watched, "category", "A", "Category to follow through the overrides")

	return cmd
}

func printReport(w io.Writer, report *interfaces.DataQualityReport) {
	c := report.WatchedCategory

	fmt.Fprintf(w, "Rows per category before consolidation: %s\n", formatCounts(report.RowCategoryCounts))
	fmt.Fprintf(w, "Total category %s rows: %d\n", c, report.WatchedRows)
	fmt.Fprintf(w, "Unique ingredients that have category %s: %d\n", c, report.IngredientsWatched)
	fmt.Fprintf(w, "Ingredients where %s is overwritten by another category (last wins): %d\n", c, len(report.OverriddenWatched))
	for _, o := range report.OverriddenWatched {
		fmt.Fprintf(w, "  - %s: %s\n", o.IngredientName, strings.Join(o.History, " -> "))
	}
	fmt.Fprintf(w, "Rows repeating an earlier ingredient: %d\n", report.DuplicateRows)
	fmt.Fprintf(w, "Final category counts (last wins): %s\n", formatCounts(report.FinalCategoryCounts))
}

// formatCounts renders counts as "A=3 B=1" in category order
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}

	parts := make([]string, 0, len(counts))
	for _, category := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", category, counts[category]))
	}
	return strings.Join(parts, " ")
}
