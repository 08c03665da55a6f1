// Package metrics holds the Prometheus counters for a refinement run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Classifier call outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
)

// Drop reasons.
const (
	ReasonBlocked     = "blocked"
	ReasonUnconfirmed = "unconfirmed"
	ReasonDuplicate   = "duplicate"
)

// Metrics holds the counters for one run. Each Metrics owns its registry so
// runs in the same process never share counters.
type Metrics struct {
	Registry *prometheus.Registry

	RecordsLoaded      *prometheus.CounterVec
	CandidatesDropped  *prometheus.CounterVec
	ClassifierCalls    *prometheus.CounterVec
	CandidatesEmitted  prometheus.Gauge
	LastRunTimestamp   prometheus.Gauge
	RunDurationSeconds prometheus.Gauge
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RecordsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowrecon_records_loaded_total",
			Help: "Records read from discovery reports",
		}, []string{"source"}),
		CandidatesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowrecon_candidates_dropped_total",
			Help: "Candidates removed before output",
		}, []string{"reason"}),
		ClassifierCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shadowrecon_classifier_calls_total",
			Help: "Semantic classifier calls by outcome",
		}, []string{"outcome"}),
		CandidatesEmitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shadowrecon_candidates_emitted",
			Help: "Candidates written by the last run",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shadowrecon_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		RunDurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shadowrecon_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
	m.Registry.MustRegister(
		m.RecordsLoaded,
		m.CandidatesDropped,
		m.ClassifierCalls,
		m.CandidatesEmitted,
		m.LastRunTimestamp,
		m.RunDurationSeconds,
	)
	return m
}

// AddRecords counts records loaded from source.
func (m *Metrics) AddRecords(source string, n int) {
	m.RecordsLoaded.WithLabelValues(source).Add(float64(n))
}

// Dropped counts a candidate removed for reason.
func (m *Metrics) Dropped(reason string) {
	m.CandidatesDropped.WithLabelValues(reason).Inc()
}

// ClassifierCall counts a classifier call outcome.
func (m *Metrics) ClassifierCall(outcome string) {
	m.ClassifierCalls.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
