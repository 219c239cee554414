package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var _ Cache = (*cacheMetrics)(nil)

// cacheMetrics tracks the item read cache. The "cache" label carries the
// cache name so multiple caches can share the facet.
type cacheMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	size      *prometheus.GaugeVec
}

func newCacheMetrics(registry *promRegistry) *cacheMetrics {
	hits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache"},
	)

	misses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache"},
	)

	evictions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "cache_evictions_total",
			Help:      "Total number of cache evictions by reason",
		},
		[]string{"cache", "reason"},
	)

	size := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: _namespace,
			Name:      "cache_size",
			Help:      "Current number of cached entries",
		},
		[]string{"cache"},
	)

	registry.registry.MustRegister(hits, misses, evictions, size)

	return &cacheMetrics{
		hits:      hits,
		misses:    misses,
		evictions: evictions,
		size:      size,
	}
}

func (m *cacheMetrics) Hit(cacheType string) {
	m.hits.WithLabelValues(cacheType).Add(1)
}

func (m *cacheMetrics) Miss(cacheType string) {
	m.misses.WithLabelValues(cacheType).Add(1)
}

func (m *cacheMetrics) Eviction(cacheType string, reason string) {
	m.evictions.WithLabelValues(cacheType, reason).Add(1)
}

func (m *cacheMetrics) Size(cacheType string, size int) {
	m.size.WithLabelValues(cacheType).Set(float64(size))
}
