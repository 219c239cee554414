package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Karlitosantana/reima-resale/pkg/logger"
	"github.com/Karlitosantana/reima-resale/pkg/metric"

	"github.com/segmentio/kafka-go"
)

// ChangeEvent is the wire form of the change signal. It carries no item
// data; consumers react by reloading.
type ChangeEvent struct {
	Source string `json:"source"`
	At     int64  `json:"at"`
}

// KafkaNotifier fans the change signal out to other instances on top of the
// local broadcaster. Publish failures are logged and counted but never
// propagated: the mutation already happened and local observers were told.
type KafkaNotifier struct {
	writer  *kafka.Writer
	local   Notifier
	source  string
	log     logger.Logger
	metrics metric.Kafka
}

func NewKafkaNotifier(
	writer *kafka.Writer,
	local Notifier,
	source string,
	log logger.Logger,
	metrics metric.Kafka,
) *KafkaNotifier {
	return &KafkaNotifier{
		writer:  writer,
		local:   local,
		source:  source,
		log:     log,
		metrics: metrics,
	}
}

func (n *KafkaNotifier) Changed(ctx context.Context) error {
	const op = "notify.KafkaNotifier.Changed"

	if err := n.local.Changed(ctx); err != nil {
		n.log.Warnw("local change broadcast failed",
			"operation", op,
			"error", err,
		)
	}

	payload, err := json.Marshal(ChangeEvent{
		Source: n.source,
		At:     time.Now().UnixMilli(),
	})
	if err != nil {
		n.log.Errorw("marshal change event failed",
			"operation", op,
			"error", err,
		)
		return nil
	}

	if err := n.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		n.metrics.MessageFailed(n.writer.Topic, -1, "publish")
		n.log.Errorw("publish change event failed",
			"operation", op,
			"topic", n.writer.Topic,
			"error", err,
		)
		return nil
	}

	n.metrics.MessagePublished(n.writer.Topic)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
