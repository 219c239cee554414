// Package kafka builds segmentio/kafka-go readers and writers for the
// change notification topic, with broker logs routed through the
// service logger.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/config"
	"github.com/Karlitosantana/reima-resale/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type contextKey string

const kafkaMetadataKey contextKey = "kafka_metadata"

const _dialTimeout = 5 * time.Second

// brokerLogger adapts a kafka-go LoggerFunc onto the service logger,
// tagging every line with the topic (and group, for consumers).
func brokerLogger(log logger.Logger, level logger.Level, event string, meta map[string]string) kafka.LoggerFunc {
	return func(msg string, args ...any) {
		ctx := context.WithValue(context.Background(), kafkaMetadataKey, meta)
		log.LogAttrs(ctx, level, event,
			logger.String("message", fmt.Sprintf(msg, args...)),
		)
	}
}

// NewKafkaReader returns a consumer for the item change topic. Broker
// reachability is verified up front so a misconfigured address fails at
// startup instead of on the first fetch.
func NewKafkaReader(cfg config.Kafka, log logger.Logger) (*kafka.Reader, error) {
	meta := map[string]string{
		"topic":    cfg.Topic,
		"group_id": cfg.GroupID,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		Logger:      brokerLogger(log, logger.InfoLevel, "kafka reader info", meta),
		ErrorLogger: brokerLogger(log, logger.ErrorLevel, "kafka reader error", meta),
	})

	if err := checkBrokers(cfg.Brokers, log); err != nil {
		return nil, err
	}

	return reader, nil
}

// NewKafkaWriter returns a producer for the item change topic.
func NewKafkaWriter(cfg config.Kafka, log logger.Logger) (*kafka.Writer, error) {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
		ErrorLogger: brokerLogger(log, logger.ErrorLevel, "kafka writer error",
			map[string]string{"topic": cfg.Topic}),
	}

	if err := checkBrokers(cfg.Brokers, log); err != nil {
		return nil, err
	}

	return writer, nil
}

func checkBrokers(brokers []string, log logger.Logger) error {
	const op = "kafka.checkBrokers"

	dialer := &kafka.Dialer{Timeout: _dialTimeout}
	for _, broker := range brokers {
		conn, err := dialer.Dial("tcp", broker)
		if err != nil {
			return fmt.Errorf("%s: connect to %s: %w", op, broker, err)
		}

		if err = conn.Close(); err != nil {
			log.Warnw("failed to close broker probe connection",
				"operation", op,
				"broker", broker,
				"error", err)
		}
	}

	return nil
}
