// Package metrics exposes conversion counters as Prometheus collectors.
//
// Each conversion run owns its own registry so that concurrent runs, and
// successive runs in watch mode, never share counters. The CLI writes the
// registry in the node_exporter textfile format when asked to.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "isoanchor"

// Metrics contains the collectors of one conversion run.
type Metrics struct {
	registry *prometheus.Registry

	rewrites    *prometheus.CounterVec
	anchors     *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a Metrics instance on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		rewrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "normalize_rewrites_total",
				Help:      "Total number of tree rewrites performed by each normalization pass",
			},
			[]string{"pass"},
		),

		anchors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "anchors_total",
				Help:      "Total number of registry entries by numbering type",
			},
			[]string{"type"},
		),

		diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Total number of non-fatal numbering diagnostics by code",
			},
			[]string{"code"},
		),

		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_seconds",
				Help:      "Duration of conversion stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"stage"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordPass records the rewrites of one normalization pass.
func (m *Metrics) RecordPass(pass string, rewrites int) {
	m.rewrites.WithLabelValues(pass).Add(float64(rewrites))
}

// RecordAnchors records registry entry counts keyed by numbering type.
func (m *Metrics) RecordAnchors(counts map[string]int) {
	for typ, n := range counts {
		m.anchors.WithLabelValues(typ).Add(float64(n))
	}
}

// RecordDiagnostic records one diagnostic.
func (m *Metrics) RecordDiagnostic(code string) {
	m.diagnostics.WithLabelValues(code).Inc()
}

// ObserveStage records how long a stage ("load", "normalize", "build") took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteToTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
