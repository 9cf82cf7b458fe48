package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the dashboard client
type Metrics struct {
	// Backend API metrics
	APICalls   *prometheus.CounterVec
	APILatency *prometheus.HistogramVec
	APIErrors  *prometheus.CounterVec

	// Polling metrics
	PollTicks   *prometheus.CounterVec
	PollDropped prometheus.Counter

	// Dashboard action metrics
	Actions *prometheus.CounterVec

	// Export metrics
	ExportedFiles prometheus.Counter

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		APICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autosdlc_api_calls_total",
				Help: "Total number of backend API calls",
			},
			[]string{"operation", "status"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autosdlc_api_latency_seconds",
				Help:    "Backend API call latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"operation"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autosdlc_api_errors_total",
				Help: "Total number of failed backend API calls",
			},
			[]string{"operation", "kind"},
		),
		PollTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autosdlc_poll_ticks_total",
				Help: "Total number of project state poll ticks",
			},
			[]string{"result"},
		),
		PollDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "autosdlc_poll_dropped_total",
				Help: "Poll responses discarded because the tracked project changed",
			},
		),
		Actions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autosdlc_actions_total",
				Help: "Dashboard actions by name and outcome",
			},
			[]string{"action", "outcome"},
		),
		ExportedFiles: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "autosdlc_exported_files_total",
				Help: "Generated files written to disk",
			},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autosdlc_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordAPICall records one backend call. kind is "" on success, otherwise
// "transport", "status", "decode" or "contract".
func (m *Metrics) RecordAPICall(operation string, duration time.Duration, kind string) {
	if m == nil {
		return
	}
	status := "success"
	if kind != "" {
		status = "error"
		m.APIErrors.WithLabelValues(operation, kind).Inc()
	}
	m.APICalls.WithLabelValues(operation, status).Inc()
	m.APILatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPollTick records the result of one poll tick ("updated" or "failed").
func (m *Metrics) RecordPollTick(result string) {
	if m == nil {
		return
	}
	m.PollTicks.WithLabelValues(result).Inc()
}

// RecordPollDropped records a poll response that arrived for a stale project.
func (m *Metrics) RecordPollDropped() {
	if m == nil {
		return
	}
	m.PollDropped.Inc()
}

// RecordAction records a dashboard action outcome ("ok", "failed", "rejected").
func (m *Metrics) RecordAction(action, outcome string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action, outcome).Inc()
}

// RecordExport adds n exported files.
func (m *Metrics) RecordExport(n int) {
	if m == nil {
		return
	}
	m.ExportedFiles.Add(float64(n))
}

// RecordError counts a structured error code for a component.
func (m *Metrics) RecordError(code, component string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
