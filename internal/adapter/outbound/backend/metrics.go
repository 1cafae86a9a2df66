package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics recorded by backend clients.
// One Metrics is shared by every area.
type Metrics struct {
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	RetriesTotal         *prometheus.CounterVec
	SessionInvalidations prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reusemart",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of backend requests",
			},
			[]string{"area", "method", "outcome"}, // outcome=ok or an error kind
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "reusemart",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Backend request duration in seconds, including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"area"},
		),
		RetriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reusemart",
				Subsystem: "client",
				Name:      "retries_total",
				Help:      "Total number of retried GET requests",
			},
			[]string{"area"},
		),
		SessionInvalidations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "reusemart",
				Subsystem: "client",
				Name:      "session_invalidations_total",
				Help:      "Total sessions invalidated by a 401 response",
			},
		),
	}
}
