package audittrail

import (
	"context"

	"github.com/google/uuid"
)

// Store persists audit trail entries. Append must honor a transaction carried
// in the context so entries commit atomically with the mutation.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByHoofdObject(ctx context.Context, hoofdObject string) ([]Entry, error)
	Get(ctx context.Context, hoofdObject string, id uuid.UUID) (*Entry, error)
	DeleteByHoofdObject(ctx context.Context, hoofdObject string) error
}
