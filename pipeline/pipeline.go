// Package pipeline runs one regeneration of the category artifact: read the
// source, parse it, consolidate by ingredient, validate, serialize and write.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/giygas/supply-status/artifact"
	"github.com/giygas/supply-status/categoryparser"
	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/giygas/supply-status/config"
	"github.com/giygas/supply-status/consolidator"
	"github.com/giygas/supply-status/interfaces"
	"github.com/giygas/supply-status/logging"
	"github.com/giygas/supply-status/metrics"
	"github.com/giygas/supply-status/validation"
)

// Compile-time check to ensure Pipeline implements Runner
var _ interfaces.Runner = (*Pipeline)(nil)

// Options selects the files and output shape of a run
type Options struct {
	InputPath       string
	OutputPath      string
	Encoding        artifact.Encoding
	SortMode        consolidator.SortMode
	Format          consolidator.Format
	IncludeMetadata bool
	HeaderLookup    bool
	MetricsTextfile string
}

// OptionsFromConfig converts a validated configuration into run options
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	enc, err := artifact.ParseEncoding(cfg.InputEncoding)
	if err != nil {
		return Options{}, err
	}
	mode, err := consolidator.ParseSortMode(cfg.SortMode)
	if err != nil {
		return Options{}, err
	}
	format, err := consolidator.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return Options{}, err
	}

	return Options{
		InputPath:       cfg.InputPath,
		OutputPath:      cfg.OutputPath,
		Encoding:        enc,
		SortMode:        mode,
		Format:          format,
		IncludeMetadata: cfg.IncludeMetadata,
		HeaderLookup:    cfg.HeaderLookup,
		MetricsTextfile: cfg.MetricsTextfile,
	}, nil
}

// Pipeline composes the parser, consolidator and validator for one set of
// options. It holds no state between runs and may be reused.
type Pipeline struct {
	opts         Options
	parser       interfaces.Parser
	consolidator *consolidator.Consolidator
	validator    interfaces.DataValidator
	metrics      *metrics.Metrics
}

// New creates a pipeline. m may be nil to disable metrics.
func New(opts Options, m *metrics.Metrics) *Pipeline {
	if opts.SortMode == "" {
		opts.SortMode = consolidator.SortByCategory
	}
	if opts.Format == "" {
		opts.Format = consolidator.FormatIndent
	}
	if opts.Encoding == "" {
		opts.Encoding = artifact.EncodingUTF8
	}

	return &Pipeline{
		opts:         opts,
		parser:       categoryparser.NewCategoryParser(opts.HeaderLookup),
		consolidator: consolidator.NewConsolidator(opts.SortMode),
		validator:    validation.NewDataValidator(),
		metrics:      m,
	}
}

// Run regenerates the artifact. Nothing is written unless every earlier step
// succeeded; a failed write leaves the previous artifact in place.
func (p *Pipeline) Run(ctx context.Context) (entities.RunSummary, error) {
	start := time.Now()

	summary, err := p.run(ctx, start)
	if err != nil {
		p.metrics.ObserveFailure()
		p.exportMetrics()
		logging.Error("Consolidation run failed", "input", p.opts.InputPath, "output", p.opts.OutputPath, "error", err)
		return entities.RunSummary{}, err
	}

	p.metrics.ObserveSuccess(summary)
	p.exportMetrics()

	logging.Info("Category data written",
		"output", summary.OutputPath,
		"entries", summary.Entries,
		"overrides", summary.Overrides,
		"conflicts", summary.Conflicts,
		"skipped", summary.Stats.Skipped(),
		"bytes", summary.BytesWritten,
		"duration", summary.Duration.String(),
	)

	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, start time.Time) (entities.RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return entities.RunSummary{}, err
	}

	logging.Info("Starting consolidation run", "input", p.opts.InputPath, "sort", string(p.opts.SortMode))

	content, err := artifact.ReadSource(p.opts.InputPath, p.opts.Encoding)
	if err != nil {
		return entities.RunSummary{}, err
	}

	var stats entities.ParseStats
	result := p.consolidator.Consolidate(p.parser.Records(content, &stats))

	if err := p.validator.CheckDuplicateIngredients(result.Entries); err != nil {
		return entities.RunSummary{}, fmt.Errorf("consolidated output rejected: %w", err)
	}
	if err := p.validator.ValidateSortOrder(result.Entries, p.consolidator.SortMode()); err != nil {
		return entities.RunSummary{}, fmt.Errorf("consolidated output rejected: %w", err)
	}

	payload, err := consolidator.Marshal(result.Entries, p.opts.Format, p.opts.IncludeMetadata)
	if err != nil {
		return entities.RunSummary{}, fmt.Errorf("failed to serialize category data: %w", err)
	}

	// Last point to abandon the run before the destination is touched
	if err := ctx.Err(); err != nil {
		return entities.RunSummary{}, err
	}

	if err := artifact.WriteAtomic(p.opts.OutputPath, payload); err != nil {
		return entities.RunSummary{}, err
	}

	finished := time.Now()
	return entities.RunSummary{
		InputPath:    p.opts.InputPath,
		OutputPath:   p.opts.OutputPath,
		SortMode:     string(p.opts.SortMode),
		Stats:        stats,
		Entries:      len(result.Entries),
		Overrides:    len(result.Overrides),
		Conflicts:    result.Conflicts(),
		BytesWritten: len(payload),
		Duration:     finished.Sub(start),
		FinishedAt:   finished,
	}, nil
}

func (p *Pipeline) exportMetrics() {
	if err := p.metrics.WriteTextfile(p.opts.MetricsTextfile); err != nil {
		logging.Warn("Failed to export metrics", "error", err)
	}
}

// Analysis is the outcome of a read-only audit of the source
type Analysis struct {
	Stats     entities.ParseStats
	Overrides []consolidator.Override
	Report    *interfaces.DataQualityReport
}

// Analyze reads and consolidates the source like Run but writes nothing.
// The report follows the given watched category through the overrides.
func (p *Pipeline) Analyze(ctx context.Context, watched string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := artifact.ReadSource(p.opts.InputPath, p.opts.Encoding)
	if err != nil {
		return nil, err
	}

	var stats entities.ParseStats
	records := slices.Collect(p.parser.Records(content, &stats))
	result := p.consolidator.Consolidate(slices.Values(records))

	report := p.validator.ReportDataQuality(records, result.Entries, watched)

	return &Analysis{
		Stats:     stats,
		Overrides: result.Overrides,
		Report:    report,
	}, nil
}
