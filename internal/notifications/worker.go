package notifications

import (
	"context"
	"log/slog"
	"time"
)

// Producer is the delivery sink. The Kafka producer implements it.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Worker drains the outbox and delivers payloads at-least-once. Rows that
// exhaust their attempts move to failed status, where they stay visible for
// operator replay via Requeue.
type Worker struct {
	store    Store
	producer Producer
	logger   *slog.Logger

	interval  time.Duration
	batchSize int
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithBatchSize sets how many rows one poll claims.
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func NewWorker(store Store, producer Producer, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:     store,
		producer:  producer,
		logger:    logger,
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.DeliverBatch(ctx); err != nil {
				w.logger.Error("outbox poll failed", "error", err)
			}
		}
	}
}

// DeliverBatch claims one batch of pending rows and attempts delivery.
func (w *Worker) DeliverBatch(ctx context.Context) error {
	items, err := w.store.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := w.producer.Produce(ctx, item.Topic, item.ID[:], item.Payload); err != nil {
			attempts := item.Attempts + 1
			terminal := attempts >= maxAttempts
			w.logger.Warn("notification delivery failed",
				"id", item.ID, "topic", item.Topic, "attempts", attempts, "terminal", terminal, "error", err)
			if markErr := w.store.MarkFailed(ctx, item.ID, attempts, err.Error(), terminal); markErr != nil {
				return markErr
			}
			continue
		}
		if err := w.store.MarkDelivered(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

// Replay moves every failed row back to pending.
func (w *Worker) Replay(ctx context.Context) (int, error) {
	failed, err := w.store.ListFailed(ctx)
	if err != nil {
		return 0, err
	}
	for _, item := range failed {
		if err := w.store.Requeue(ctx, item.ID); err != nil {
			return 0, err
		}
	}
	return len(failed), nil
}
