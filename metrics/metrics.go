// Package metrics provides Prometheus metrics for consolidation runs.
// It exports:
//   - supply_status_runs_total: Counter with result label (success, failure)
//   - supply_status_rows_total: Counter of data lines read
//   - supply_status_rows_skipped_total: Counter with reason label
//   - supply_status_overrides_total: Counter with kind label (repeat, conflict)
//   - supply_status_entries: Gauge of entries in the last artifact
//   - supply_status_run_duration_seconds: Histogram of run durations
//   - supply_status_last_success_timestamp_seconds: Gauge
//
// There is no HTTP endpoint; WriteTextfile exports the registry for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/giygas/supply-status/categoryparser/entities"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one process in their own registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	RowsTotal        prometheus.Counter
	RowsSkipped      *prometheus.CounterVec
	OverridesTotal   *prometheus.CounterVec
	Entries          prometheus.Gauge
	RunDuration      prometheus.Histogram
	LastSuccessEpoch prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supply_status_runs_total",
				Help: "Total consolidation runs",
			},
			[]string{"result"},
		),
		RowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "supply_status_rows_total",
				Help: "Data lines read from the category source",
			},
		),
		RowsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supply_status_rows_skipped_total",
				Help: "Data lines rejected by the parser",
			},
			[]string{"reason"},
		),
		OverridesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supply_status_overrides_total",
				Help: "Rows that replaced an earlier row for the same ingredient",
			},
			[]string{"kind"},
		),
		Entries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "supply_status_entries",
				Help: "Unique ingredients in the last written artifact",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "supply_status_run_duration_seconds",
				Help:    "Consolidation run latency",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		LastSuccessEpoch: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "supply_status_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.RowsTotal,
		m.RowsSkipped,
		m.OverridesTotal,
		m.Entries,
		m.RunDuration,
		m.LastSuccessEpoch,
	)

	return m
}

// ObserveSuccess records a completed run. A nil receiver is a no-op.
func (m *Metrics) ObserveSuccess(summary entities.RunSummary) {
	if m == nil {
		return
	}

	m.RunsTotal.WithLabelValues("success").Inc()
	m.RowsTotal.Add(float64(summary.Stats.TotalLines))
	m.RowsSkipped.WithLabelValues("blank").Add(float64(summary.Stats.Blank))
	m.RowsSkipped.WithLabelValues("missing_columns").Add(float64(summary.Stats.MissingColumns))
	m.RowsSkipped.WithLabelValues("empty_ingredient").Add(float64(summary.Stats.EmptyIngredient))
	m.RowsSkipped.WithLabelValues("format_error").Add(float64(summary.Stats.FormatErrors))
	m.OverridesTotal.WithLabelValues("conflict").Add(float64(summary.Conflicts))
	m.OverridesTotal.WithLabelValues("repeat").Add(float64(summary.Overrides - summary.Conflicts))
	m.Entries.Set(float64(summary.Entries))
	m.RunDuration.Observe(summary.Duration.Seconds())
	m.LastSuccessEpoch.Set(float64(summary.FinishedAt.Unix()))
}

// ObserveFailure records a run that aborted. A nil receiver is a no-op.
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues("failure").Inc()
}

// WriteTextfile writes the registry in text exposition format to path,
// replacing the file atomically. A nil receiver is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
