package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CloudEventTopic is the Kafka topic carrying the cloud event stream.
const CloudEventTopic = "cloudevents"

// CloudEventEmitter publishes CloudEvents for configured mutations. Emission
// is a no-op unless both the enabled flag and a source string are configured,
// so deployments without a subscriber pay nothing.
type CloudEventEmitter struct {
	enabled bool
	source  string
	store   Store
	logger  *slog.Logger
}

func NewCloudEventEmitter(enabled bool, source string, store Store, logger *slog.Logger) *CloudEventEmitter {
	return &CloudEventEmitter{enabled: enabled && source != "", source: source, store: store, logger: logger}
}

// Enabled reports whether events will actually be emitted.
func (e *CloudEventEmitter) Enabled() bool { return e.enabled }

// Emit queues one cloud event through the outbox. Subject is the entity uuid,
// dataRef its canonical URL.
func (e *CloudEventEmitter) Emit(ctx context.Context, eventType string, subject uuid.UUID, dataRef string, data any) error {
	if !e.enabled {
		return nil
	}
	event := CloudEvent{
		ID:              uuid.NewString(),
		SpecVersion:     "1.0",
		Source:          e.source,
		Type:            eventType,
		Subject:         subject.String(),
		Time:            time.Now().UTC(),
		DataRef:         dataRef,
		DataContentType: "application/json",
		Data:            data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cloud event: %w", err)
	}

	// Cloud events ride the same outbox, addressed to their own topic.
	item := OutboxItem{
		ID:        uuid.New(),
		Topic:     CloudEventTopic,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: event.Time,
	}
	if err := e.store.Enqueue(ctx, item); err != nil {
		return err
	}
	e.logger.Debug("cloud event queued", "type", eventType, "subject", subject)
	return nil
}
