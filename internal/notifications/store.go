package notifications

import (
	"context"

	"github.com/google/uuid"
)

// Store persists outbox rows. Enqueue must honor a transaction carried in the
// context so the row commits with the mutation it announces.
type Store interface {
	Enqueue(ctx context.Context, item OutboxItem) error
	ClaimPending(ctx context.Context, limit int) ([]OutboxItem, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, terminal bool) error
	ListFailed(ctx context.Context) ([]OutboxItem, error)
	Requeue(ctx context.Context, id uuid.UUID) error
}
