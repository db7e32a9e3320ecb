// Package health derives the health of the generated artifact from the
// recorded run state.
package health

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/giygas/supply-status/interfaces"
)

// Status values reported by Check
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Checker grades the run state against the staleness threshold
type Checker struct {
	store      interfaces.RunStore
	staleAfter time.Duration
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store interfaces.RunStore, staleAfter time.Duration) *Checker {
	return &Checker{
		store:      store,
		staleAfter: staleAfter,
	}
}

// Check returns the status at now and the fields that led to it
func (h *Checker) Check(now time.Time) (status string, data map[string]any) {
	summary, hasSummary := h.store.GetLastSummary()
	lastUpdate := h.store.GetLastUpdated()
	lastErr := h.store.GetLastError()
	isUpdating := h.store.IsUpdating()

	dataAge := now.Sub(lastUpdate)

	switch {
	case !hasSummary:
		status = StatusUnhealthy

	case dataAge > 2*h.staleAfter:
		status = StatusUnhealthy

	case dataAge > h.staleAfter:
		status = StatusDegraded

	case lastErr != nil:
		status = StatusDegraded

	default:
		status = StatusHealthy
	}

	data = map[string]any{
		"is_updating": isUpdating,
	}
	if hasSummary {
		data["last_update"] = lastUpdate.Format(time.RFC3339)
		data["data_age_hours"] = math.Round(dataAge.Hours()*10) / 10
		data["entries"] = summary.Entries
	}
	if lastErr != nil {
		data["last_error"] = lastErr.Error()
	}

	return status, data
}

// ParseTimesOfDay parses a gocron At() expression such as "06:00;18:00"
// into offsets from midnight, sorted ascending
func ParseTimesOfDay(at string) ([]time.Duration, error) {
	var offsets []time.Duration
	for part := range strings.SplitSeq(at, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var t time.Time
		var err error
		for _, layout := range []string{"15:04:05", "15:04"} {
			if t, err = time.Parse(layout, part); err == nil {
				break
			}
		}
		if err != nil {
			return nil, fmt.Errorf("invalid time of day %q: %w", part, err)
		}

		offsets = append(offsets, time.Duration(t.Hour())*time.Hour+
			time.Duration(t.Minute())*time.Minute+
			time.Duration(t.Second())*time.Second)
	}

	if len(offsets) == 0 {
		return nil, fmt.Errorf("no time of day in %q", at)
	}
	slices.Sort(offsets)
	return offsets, nil
}

// CalculateNextUpdate returns the first scheduled time strictly after now
func CalculateNextUpdate(now time.Time, offsets []time.Duration) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, offset := range offsets {
		if next := midnight.Add(offset); next.After(now) {
			return next
		}
	}

	// All of today's slots have passed, so the first slot tomorrow
	return midnight.AddDate(0, 0, 1).Add(offsets[0])
}
