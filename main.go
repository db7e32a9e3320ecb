package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giygas/supply-status/config"
	"github.com/giygas/supply-status/logging"
	"github.com/giygas/supply-status/metrics"
	"github.com/giygas/supply-status/pipeline"
	"github.com/spf13/cobra"
)

// cliOptions holds the persistent flags. Flags override the environment and
// the config file only when they are set on the command line.
type cliOptions struct {
	configPath   string
	logLevel     string
	verbose      bool
	input        string
	output       string
	sortMode     string
	format       string
	encoding     string
	metadata     bool
	headerLookup bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:     "supplystatus",
		Aliases: []string{"consolidate"},
		Short:   "Consolidate drug supply categories into a deduplicated JSON artifact",
		Long: `supplystatus reads the supply status category CSV (route, drug class code,
drug class name, ingredient, category) and writes one JSON entry per
ingredient. When an ingredient appears on several rows the last row wins.

Run without a subcommand to regenerate the artifact once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsolidate(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (values below environment variables)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Console log level: debug, info, warn, error")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show info logs on the console under ENV=test")
	flags.StringVar(&opts.input, "input", "", "Category source CSV (default data/supply_medicines.csv)")
	flags.StringVar(&opts.output, "output", "", "Destination JSON (default data/category_data.json)")
	flags.StringVar(&opts.sortMode, "sort", "", "Output order: by-category or by-ingredient")
	flags.StringVar(&opts.format, "format", "", "JSON layout: indent or compact")
	flags.StringVar(&opts.encoding, "encoding", "", "Source encoding: utf-8, shift_jis or auto")
	flags.BoolVar(&opts.metadata, "metadata", false, "Include drug class code, class name and route")
	flags.BoolVar(&opts.headerLookup, "header-lookup", false, "Locate columns by header name instead of position")

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newScheduleCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))

	return rootCmd
}

// setup loads the configuration with the flags that were set on top and starts
// the logger. The returned cleanup closes the log file.
func setup(cmd *cobra.Command, opts *cliOptions) (*config.Config, func(), error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	cfg, err := config.Load(opts.configPath, func(cfg *config.Config) {
		if flags.Changed("log-level") {
			cfg.LogLevel = opts.logLevel
		}
		if flags.Changed("input") {
			cfg.InputPath = opts.input
		}
		if flags.Changed("output") {
			cfg.OutputPath = opts.output
		}
		if flags.Changed("sort") {
			cfg.SortMode = opts.sortMode
		}
		if flags.Changed("format") {
			cfg.OutputFormat = opts.format
		}
		if flags.Changed("encoding") {
			cfg.InputEncoding = opts.encoding
		}
		if flags.Changed("metadata") {
			cfg.IncludeMetadata = opts.metadata
		}
		if flags.Changed("header-lookup") {
			cfg.HeaderLookup = opts.headerLookup
		}
	})
	if err != nil {
		return nil, nil, err
	}

	if err := logging.InitLogger(logging.Options{
		LogDir:         cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		ConsoleLevel:   logging.GetConsoleLogLevel(cfg.Env, cfg.LogLevel, opts.verbose),
	}); err != nil {
		logging.Warn("Log file disabled", "dir", cfg.LogDir, "error", err)
	}

	cleanup := func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
	}

	logging.Debug("Configuration loaded",
		"env", cfg.Env.String(),
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"sort", cfg.SortMode,
		"format", cfg.OutputFormat,
		"encoding", cfg.InputEncoding,
	)

	return cfg, cleanup, nil
}

func newPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.MetricsTextfile != "" {
		m = metrics.New()
	}
	return pipeline.New(opts, m), nil
}

func runConsolidate(cmd *cobra.Command, opts *cliOptions) error {
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

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d unique ingredients\n", filepath.Base(summary.OutputPath), summary.Entries)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
