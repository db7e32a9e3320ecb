// Package scheduler regenerates the category artifact at fixed times of day
// and warns when the artifact has gone stale. Runs are coordinated through a
// RunStore so a scheduled run never overlaps a manual or watcher run.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/supply-status/data"
	"github.com/giygas/supply-status/health"
	"github.com/giygas/supply-status/interfaces"
	"github.com/giygas/supply-status/logging"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Options controls when runs happen and when staleness is reported
type Options struct {
	At            string        // gocron At() expression, e.g. "06:00;18:00"
	StaleAfter    time.Duration // warn when the last success is older than this
	CheckInterval time.Duration // how often staleness is checked
}

// Scheduler handles timed regeneration and staleness monitoring
type Scheduler struct {
	store     interfaces.RunStore
	runner    interfaces.Runner
	scheduler *gocron.Scheduler
	checker   *health.Checker
	opts      Options

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.RunStore, runner interfaces.Runner, opts Options) *Scheduler {
	if opts.At == "" {
		opts.At = "06:00;18:00"
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 25 * time.Hour
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:     store,
		runner:    runner,
		scheduler: gocron.NewScheduler(time.Local),
		checker:   health.NewHealthChecker(store, opts.StaleAfter),
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start performs an initial run, then schedules the following ones and starts
// the staleness monitor
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.updateData("startup"); err != nil {
		logging.Error("Failed to perform initial category update", "error", err)
		return fmt.Errorf("initial category update failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At(s.opts.At).Do(func() {
		if err := s.updateData("schedule"); err != nil {
			logging.Error("Failed to update category data", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule updates", "at", s.opts.At, "error", err)
		return fmt.Errorf("failed to schedule updates at %q: %w", s.opts.At, err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduled category updates", "at", s.opts.At)

	s.startHealthMonitoring()

	return nil
}

// Stop stops scheduled runs and the staleness monitor. A run in progress is
// canceled before it writes.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.scheduler.Stop()
		s.cancel()
		s.wg.Wait()
	})
}

// updateData performs one guarded run
func (s *Scheduler) updateData(trigger string) error {
	ran, err := data.Refresh(s.ctx, s.store, s.runner, trigger)
	if ran && err == nil {
		s.logNextUpdate(time.Now())
	}
	return err
}

func (s *Scheduler) logNextUpdate(now time.Time) {
	offsets, err := health.ParseTimesOfDay(s.opts.At)
	if err != nil {
		return
	}
	logging.Info("Next category update", "at", health.CalculateNextUpdate(now, offsets).Format(time.RFC3339))
}

// startHealthMonitoring warns when the artifact has not been refreshed for
// longer than StaleAfter
func (s *Scheduler) startHealthMonitoring() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.opts.CheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.checkStaleness(time.Now())
			}
		}
	}()
}

// checkStaleness reports whether the artifact is out of date or the last run
// failed
func (s *Scheduler) checkStaleness(now time.Time) bool {
	status, fields := s.checker.Check(now)
	if status == health.StatusHealthy {
		return false
	}

	args := []any{"status", status}
	for _, key := range []string{"last_update", "data_age_hours", "last_error"} {
		if v, ok := fields[key]; ok {
			args = append(args, key, v)
		}
	}
	logging.Warn(fmt.Sprintf("Category data hasn't been refreshed successfully within %s", s.opts.StaleAfter), args...)
	return true
}
