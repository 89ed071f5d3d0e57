// Package metrics records Prometheus metrics for executed operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Item statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the connector collectors. A nil *Metrics records nothing.
type Metrics struct {
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	sessions *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surrealflow_items_total",
				Help: "Total number of processed input items",
			},
			[]string{"resource", "operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "surrealflow_item_duration_milliseconds",
				Help:    "Item processing duration in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"resource", "operation"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surrealflow_errors_total",
				Help: "Total number of item errors by kind",
			},
			[]string{"resource", "operation", "error_type"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surrealflow_sessions_total",
				Help: "Total number of SurrealDB sessions opened",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.items, m.duration, m.errors, m.sessions)
	return m
}

// ObserveItem records one processed item. errorType is empty on success.
func (m *Metrics) ObserveItem(resource, operation, errorType string, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if errorType != "" {
		status = StatusError
		m.errors.WithLabelValues(resource, operation, errorType).Inc()
	}
	m.items.WithLabelValues(resource, operation, status).Inc()
	m.duration.WithLabelValues(resource, operation).Observe(float64(elapsed.Milliseconds()))
}

// ObserveSession records a session open attempt.
func (m *Metrics) ObserveSession(err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.sessions.WithLabelValues(status).Inc()
}
