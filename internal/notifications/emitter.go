package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"zgw/pkg/requestcontext"
)

// Emitter enqueues notifications for one channel. Callers invoke Emit inside
// the mutating transaction; nothing is published until that transaction
// commits and the worker picks the row up.
type Emitter struct {
	kanaal Kanaal
	store  Store
	logger *slog.Logger
}

func NewEmitter(kanaal Kanaal, store Store, logger *slog.Logger) *Emitter {
	return &Emitter{kanaal: kanaal, store: store, logger: logger}
}

// Emit queues one notification. Kenmerken carry the filterable attributes
// subscribers match on (zaaktype, bronorganisatie, vertrouwelijkheid).
func (e *Emitter) Emit(ctx context.Context, actie, hoofdObject, resource, resourceURL string, kenmerken map[string]string) error {
	now := requestcontext.Now(ctx)
	if now.IsZero() {
		now = time.Now()
	}
	payload, err := json.Marshal(Notificatie{
		Kanaal:       e.kanaal,
		HoofdObject:  hoofdObject,
		Resource:     resource,
		ResourceURL:  resourceURL,
		Actie:        actie,
		AanmaakDatum: now.UTC(),
		Kenmerken:    kenmerken,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	item := OutboxItem{
		ID:        uuid.New(),
		Topic:     string(e.kanaal),
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now.UTC(),
	}
	if err := e.store.Enqueue(ctx, item); err != nil {
		return err
	}
	e.logger.Debug("notification queued",
		"kanaal", e.kanaal, "actie", actie, "resource", resource, "resource_url", resourceURL)
	return nil
}
