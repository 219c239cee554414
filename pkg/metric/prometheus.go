package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// All service metrics live under one prometheus namespace.
const _namespace = "resale"

var _ Factory = (*prometheusFactory)(nil)

type prometheusFactory struct {
	registry *promRegistry
	http     *httpMetrics
	storage  *storageMetrics
	cache    *cacheMetrics
	kafka    *kafkaMetrics
}

func NewFactory() Factory {
	registry := newPromRegistry()

	return &prometheusFactory{
		registry: registry,
		http:     newHTTPMetrics(registry),
		storage:  newStorageMetrics(registry),
		cache:    newCacheMetrics(registry),
		kafka:    newKafkaMetrics(registry),
	}
}

func (f *prometheusFactory) HTTP() HTTP {
	return f.http
}

func (f *prometheusFactory) Storage() Storage {
	return f.storage
}

func (f *prometheusFactory) Cache() Cache {
	return f.cache
}

func (f *prometheusFactory) Kafka() Kafka {
	return f.kafka
}

func (f *prometheusFactory) Handler() http.Handler {
	return promhttp.HandlerFor(f.registry.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})
}

type promRegistry struct {
	registry *prometheus.Registry
}

func newPromRegistry() *promRegistry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &promRegistry{registry: reg}
}
