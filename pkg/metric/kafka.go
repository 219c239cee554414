package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Kafka = (*kafkaMetrics)(nil)

type kafkaMetrics struct {
	messagesProcessed *prometheus.CounterVec
	messagesFailed    *prometheus.CounterVec
	messagesPublished *prometheus.CounterVec
}

func newKafkaMetrics(registry *promRegistry) *kafkaMetrics {
	processed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "kafka_messages_processed_total",
			Help:      "Total number of processed change-event messages",
		},
		[]string{"topic", "partition"},
	)

	failed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "kafka_messages_failed_total",
			Help:      "Total number of change-event messages that failed processing",
		},
		[]string{"topic", "partition", "reason"},
	)

	published := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Total number of published change-event messages",
		},
		[]string{"topic"},
	)

	registry.registry.MustRegister(processed, failed, published)

	return &kafkaMetrics{
		messagesProcessed: processed,
		messagesFailed:    failed,
		messagesPublished: published,
	}
}

func (m *kafkaMetrics) MessageProcessed(topic string, partition int) {
	m.messagesProcessed.WithLabelValues(topic, partitionLabel(partition)).Add(1)
}

func (m *kafkaMetrics) MessageFailed(topic string, partition int, reason string) {
	m.messagesFailed.WithLabelValues(topic, partitionLabel(partition), reason).Add(1)
}

func (m *kafkaMetrics) MessagePublished(topic string) {
	m.messagesPublished.WithLabelValues(topic).Add(1)
}

// -1 means the writer did not know the partition.
func partitionLabel(partition int) string {
	if partition < 0 {
		return "all"
	}
	return strconv.Itoa(partition)
}
