// Package metric groups the service's prometheus instrumentation into
// per-concern facets handed out by a single Factory.
package metric

import (
	"net/http"
	"time"
)

//go:generate mockgen -source=metrics.go -destination=mock/metrics.go -package=mock_metric

type (
	// Factory hands out the instrument facets plus the scrape handler.
	Factory interface {
		HTTP() HTTP
		Storage() Storage
		Cache() Cache
		Kafka() Kafka
		Handler() http.Handler
	}

	HTTP interface {
		Request(method, path string, status int, duration time.Duration)
		SlowRequest(method, path string, status int, duration time.Duration)
	}

	// Storage covers both halves of the dual store; the store label is
	// "local" or "remote", and fallbacks count reads served locally
	// after a remote failure.
	Storage interface {
		ObserveQuery(store, operation string, duration time.Duration)
		IncrementFailures(store, operation string)
		IncrementFallbacks(operation string)
	}

	Cache interface {
		Hit(name string)
		Miss(name string)
		Eviction(name string, reason string)
		Size(name string, size int)
	}

	Kafka interface {
		MessageProcessed(topic string, partition int)
		MessageFailed(topic string, partition int, reason string)
		MessagePublished(topic string)
	}
)
