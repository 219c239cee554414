package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Storage = (*storageMetrics)(nil)

// storageMetrics covers both halves of the dual store; the "store" label is
// "local" (redis) or "remote" (postgres). Fallbacks count reads that degraded
// from remote to local.
type storageMetrics struct {
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

func newStorageMetrics(registry *promRegistry) *storageMetrics {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: _namespace,
			Name:      "storage_query_duration_seconds",
			Help:      "Duration of store operations in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"store", "operation"},
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "storage_failures_total",
			Help:      "Total number of failed store operations",
		},
		[]string{"store", "operation"},
	)

	fallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "storage_fallbacks_total",
			Help:      "Total number of reads degraded from the remote store to the local cache",
		},
		[]string{"operation"},
	)

	registry.registry.MustRegister(duration, failures, fallbacks)

	return &storageMetrics{
		duration:  duration,
		failures:  failures,
		fallbacks: fallbacks,
	}
}

func (m *storageMetrics) ObserveQuery(store, operation string, duration time.Duration) {
	m.duration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

func (m *storageMetrics) IncrementFailures(store, operation string) {
	m.failures.WithLabelValues(store, operation).Add(1)
}

func (m *storageMetrics) IncrementFallbacks(operation string) {
	m.fallbacks.WithLabelValues(operation).Add(1)
}
