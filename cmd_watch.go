package main

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/supply-status/data"
	"github.com/giygas/supply-status/logging"
	"github.com/giygas/supply-status/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *cliOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the artifact whenever the source file changes",
		Args:  cobra.NoArgs,
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
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			store := data.NewRunState()

			// Bring the artifact up to date before waiting for changes
			if _, err := data.Refresh(ctx, store, p, "startup"); err != nil {
				logging.Error("Initial category update failed", "error", err)
			}

			w, err := watcher.New(cfg.InputPath, store, p, debounce)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				w.Stop()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", cfg.InputPath)

			waitForShutdown(ctx)

			cancel()
			w.Stop()

			stats := w.Stats()
			logging.Info("Watcher summary", "events", stats.Events, "runs", stats.Runs, "failures", stats.Failures)
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period after the last change before regenerating")

	return cmd
}
