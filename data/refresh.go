package data

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/supply-status/interfaces"
	"github.com/giygas/supply-status/logging"
)

// Refresh runs the runner once under the store's update guard and records the
// outcome. It returns false without running when another run holds the guard.
func Refresh(ctx context.Context, store interfaces.RunStore, runner interfaces.Runner, trigger string) (bool, error) {
	// Prevent concurrent updates
	if !store.BeginUpdate() {
		logging.Info("Update already in progress, skipping...", "trigger", trigger)
		return false, nil
	}
	defer store.EndUpdate()

	logging.Info(fmt.Sprintf("Starting category data update at: %s", time.Now().Format(time.RFC3339)), "trigger", trigger)

	summary, err := runner.Run(ctx)
	if err != nil {
		store.RecordFailure(err)
		return true, err
	}

	store.RecordRun(summary)
	return true, nil
}
