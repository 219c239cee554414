package kafkat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Karlitosantana/reima-resale/internal/notify"
	"github.com/Karlitosantana/reima-resale/pkg/logger"
	"github.com/Karlitosantana/reima-resale/pkg/metric"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// ChangeSink reacts to a change signal from another instance. The item
// service satisfies this by dropping its read cache.
type ChangeSink interface {
	PurgeCache()
}

// ChangeConsumer listens for change events published by peer instances and
// invalidates local state. Events are idempotent signals, so there is no
// retry or dead-letter handling: a dropped event is healed by the next one
// or by a cache miss.
type ChangeConsumer struct {
	reader *kafka.Reader
	sink   ChangeSink
	local  notify.Notifier
	source string
	metric metric.Kafka
	log    logger.Logger
}

func NewChangeConsumer(
	reader *kafka.Reader,
	sink ChangeSink,
	local notify.Notifier,
	source string,
	metric metric.Kafka,
	log logger.Logger,
) *ChangeConsumer {
	return &ChangeConsumer{
		reader: reader,
		sink:   sink,
		local:  local,
		source: source,
		metric: metric,
		log:    log,
	}
}

func (c *ChangeConsumer) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return c.run(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()
		c.log.Infow("shutting down change consumer")
		return c.reader.Close()
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("transport.kafka.change_consumer.Start: %w", err)
	}
	return nil
}

func (c *ChangeConsumer) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("transport.kafka.change_consumer.run: %w", err)
			}
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil
				}
				c.log.Errorw("kafka read failed",
					"error", err,
				)
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

func (c *ChangeConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	const op = "transport.kafka.change_consumer.handleMessage"

	var event notify.ChangeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.metric.MessageFailed(msg.Topic, msg.Partition, "unmarshal")
		c.log.Errorw("malformed change event",
			"op", op,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	// Our own publishes already invalidated locally.
	if event.Source == c.source {
		return
	}

	c.sink.PurgeCache()
	if err := c.local.Changed(ctx); err != nil {
		c.log.Warnw("local change broadcast failed",
			"op", op,
			"error", err,
		)
	}

	c.metric.MessageProcessed(msg.Topic, msg.Partition)
	c.log.Infow("change event applied",
		"source", event.Source,
		"offset", msg.Offset,
	)
}
