package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/supply-status/data"
	"github.com/giygas/supply-status/logging"
	"github.com/giygas/supply-status/scheduler"
	"github.com/spf13/cobra"
)

func newScheduleCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Regenerate the artifact now and then at fixed times of day",
		Long: `Runs once immediately, then again every day at SCHEDULE_AT (default
06:00;18:00, local time), until interrupted. A warning is logged when no
run has succeeded for STALE_AFTER_HOURS.`,
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

			s := scheduler.NewScheduler(data.NewRunState(), p, scheduler.Options{
				At:         cfg.ScheduleAt,
				StaleAfter: time.Duration(cfg.StaleAfterHours) * time.Hour,
			})
			if err := s.Start(); err != nil {
				s.Stop()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled updates of %s at %s\n", cfg.OutputPath, cfg.ScheduleAt)

			waitForShutdown(cmd.Context())

			logging.Info("Shutting down scheduler...")
			s.Stop()
			logging.Info("Scheduler shutdown complete")
			return nil
		},
	}
}

// waitForShutdown blocks until SIGINT, SIGTERM or ctx is done
func waitForShutdown(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	case <-ctx.Done():
	}
}
