// Package consumer provides a committing Kafka consumer loop. Handlers get
// at-least-once delivery: offsets are committed only after Handle returns nil.
package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is the transport-agnostic view handlers receive.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Handler handles messages from a topic.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer polls a consumer group and dispatches records to a handler.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

// New joins the given consumer group on the given topics.
func New(brokers []string, group string, topics []string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until the context is cancelled. A handler error leaves the
// offset uncommitted so the record is redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fe := range errs {
				c.logger.ErrorContext(ctx, "kafka fetch error",
					"topic", fe.Topic,
					"error", fe.Err,
				)
			}
			continue
		}

		var committable []*kgo.Record
		fetches.EachRecord(func(record *kgo.Record) {
			msg := &Message{
				Topic:     record.Topic,
				Key:       record.Key,
				Value:     record.Value,
				Timestamp: record.Timestamp,
			}
			if err := c.handler.Handle(ctx, msg); err != nil {
				c.logger.ErrorContext(ctx, "message handling failed, leaving uncommitted",
					"topic", record.Topic,
					"error", err,
				)
				return
			}
			committable = append(committable, record)
		})

		if len(committable) > 0 {
			if err := c.client.CommitRecords(ctx, committable...); err != nil {
				c.logger.ErrorContext(ctx, "offset commit failed", "error", err)
			}
		}
	}
}
