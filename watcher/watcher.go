// Package watcher regenerates the category artifact when its source file
// changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/giygas/supply-status/data"
	"github.com/giygas/supply-status/interfaces"
	"github.com/giygas/supply-status/logging"
)

// Stats counts what the watcher has seen since Start
type Stats struct {
	Events        int
	Runs          int
	Failures      int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// Watcher watches the directory of the source file so that saves done by
// rename (spreadsheet exports, editors) are seen as well as in-place writes.
// Bursts of events are collapsed into one run after the debounce delay.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	store       interfaces.RunStore
	runner      interfaces.Runner
	path        string
	dir         string
	debounceDur time.Duration
	pendingAt   time.Time
	pending     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// New creates a watcher for path. debounce <= 0 uses 500ms.
func New(path string, store interfaces.RunStore, runner interfaces.Runner, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:     fw,
		store:       store,
		runner:      runner,
		path:        abs,
		dir:         filepath.Dir(abs),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It returns an error if the source directory cannot
// be watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logging.Info("Watching category source", "path", w.path)

	go w.run(ctx)

	return nil
}

// Stop ends the watch loop and releases the underlying watcher. It waits for
// a run in progress to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		logging.Error("Error closing file watcher", "error", err)
	}
	logging.Info("Watcher stopped", "path", w.path)
}

// Stats returns a snapshot of the counters
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Done is closed when the watch loop exits
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(w.debounceDur / 5)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("File watcher error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processPending(ctx, time.Now())
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	default:
		return // chmod
	}

	logging.Debug("Category source changed", "event", eventType, "path", event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventType = eventType

	// A removed source has nothing to regenerate from until it is recreated
	if eventType == "delete" || eventType == "rename" {
		w.pending = false
		return
	}
	w.pending = true
	w.pendingAt = time.Now()
}

// processPending runs once the last event is older than the debounce delay
func (w *Watcher) processPending(ctx context.Context, now time.Time) {
	w.mu.Lock()
	if !w.pending || now.Sub(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	ran, err := data.Refresh(ctx, w.store, w.runner, "watch")

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case err != nil:
		w.stats.Failures++
		logging.Error("Failed to update category data", "error", err)
	case ran:
		w.stats.Runs++
	}
}
