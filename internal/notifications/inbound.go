package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"zgw/internal/platform/kafka/consumer"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/httputil"
	"zgw/pkg/platform/sentinel"
)

// ZaakKoppelaar applies inbound link events to local case data. The case
// service implements it by creating or deleting ZaakObject rows.
type ZaakKoppelaar interface {
	Koppel(ctx context.Context, zaakID uuid.UUID, objectURL, objectType string) error
	Ontkoppel(ctx context.Context, zaakID uuid.UUID, objectURL string) error
}

type inboundEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Data    struct {
		Zaak       string `json:"zaak"`
		ObjectURL  string `json:"objectUrl"`
		ObjectType string `json:"objectType"`
	} `json:"data"`
}

// Inbound handles zaak-gekoppeld / zaak-ontkoppeld events arriving over the
// webhook or the Kafka stream. Events for unknown cases are logged and
// dropped; the sender cannot know our retention.
type Inbound struct {
	koppelaar ZaakKoppelaar
	logger    *slog.Logger
}

func NewInbound(koppelaar ZaakKoppelaar, logger *slog.Logger) *Inbound {
	return &Inbound{koppelaar: koppelaar, logger: logger}
}

// zaakUUID accepts both urn:uuid:... identifiers and resource URLs.
func zaakUUID(raw string) (uuid.UUID, bool) {
	if trimmed, ok := strings.CutPrefix(raw, "urn:uuid:"); ok {
		id, err := uuid.Parse(trimmed)
		return id, err == nil
	}
	tail := raw[strings.LastIndex(strings.TrimRight(raw, "/"), "/")+1:]
	id, err := uuid.Parse(strings.TrimRight(tail, "/"))
	return id, err == nil
}

func (i *Inbound) apply(ctx context.Context, event inboundEvent) error {
	zaakID, ok := zaakUUID(event.Data.Zaak)
	if !ok {
		return dErrors.Param("data.zaak", dErrors.CodeBadURL, "the zaak identifier is not a urn:uuid or resource URL")
	}

	var err error
	switch {
	case strings.HasSuffix(event.Type, "zaak-gekoppeld"):
		err = i.koppelaar.Koppel(ctx, zaakID, event.Data.ObjectURL, event.Data.ObjectType)
	case strings.HasSuffix(event.Type, "zaak-ontkoppeld"):
		err = i.koppelaar.Ontkoppel(ctx, zaakID, event.Data.ObjectURL)
	default:
		i.logger.Debug("ignoring unhandled cloud event type", "type", event.Type)
		return nil
	}

	if errors.Is(err, sentinel.ErrNotFound) {
		i.logger.Warn("inbound event references unknown zaak", "type", event.Type, "zaak", event.Data.Zaak)
		return nil
	}
	return err
}

// ServeHTTP is the webhook endpoint for application/cloudevents+json posts.
func (i *Inbound) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var event inboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "request body is not a cloud event"))
		return
	}
	if err := i.apply(r.Context(), event); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Handle implements the Kafka consumer handler for the cloud event stream.
func (i *Inbound) Handle(ctx context.Context, msg *consumer.Message) error {
	var event inboundEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Malformed payloads are dropped; retrying cannot fix them.
		i.logger.Warn("dropping malformed inbound event", "topic", msg.Topic, "error", err)
		return nil
	}
	return i.apply(ctx, event)
}
