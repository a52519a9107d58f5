package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	produced map[string][][]byte
	fail     bool
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{produced: map[string][][]byte{}}
}

func (p *fakeProducer) Produce(_ context.Context, topic string, _, value []byte) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.produced[topic] = append(p.produced[topic], value)
	return nil
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestEmitThenDeliver(t *testing.T) {
	store := NewInMemory()
	emitter := NewEmitter(KanaalZaken, store, discard())
	producer := newFakeProducer()
	worker := NewWorker(store, producer, discard())

	zaakURL := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()
	err := emitter.Emit(context.Background(), "create", zaakURL, "zaak", zaakURL, map[string]string{
		"bronorganisatie":             "123456789",
		"vertrouwelijkheidaanduiding": "openbaar",
	})
	require.NoError(t, err)

	require.NoError(t, worker.DeliverBatch(context.Background()))

	require.Len(t, producer.produced["zaken"], 1)
	var notif Notificatie
	require.NoError(t, json.Unmarshal(producer.produced["zaken"][0], &notif))
	assert.Equal(t, KanaalZaken, notif.Kanaal)
	assert.Equal(t, "create", notif.Actie)
	assert.Equal(t, zaakURL, notif.HoofdObject)
	assert.Equal(t, "openbaar", notif.Kenmerken["vertrouwelijkheidaanduiding"])

	// Delivered rows are not claimed again.
	require.NoError(t, worker.DeliverBatch(context.Background()))
	assert.Len(t, producer.produced["zaken"], 1)
}

func TestDeliveryFailureRetriesThenFails(t *testing.T) {
	store := NewInMemory()
	emitter := NewEmitter(KanaalBesluiten, store, discard())
	producer := newFakeProducer()
	producer.fail = true
	worker := NewWorker(store, producer, discard())

	require.NoError(t, emitter.Emit(context.Background(), "destroy", "https://brc.example.org/b/1", "besluit", "https://brc.example.org/b/1", nil))

	for range maxAttempts {
		require.NoError(t, worker.DeliverBatch(context.Background()))
	}

	failed, err := store.ListFailed(context.Background())
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, maxAttempts, failed[0].Attempts)
	assert.Contains(t, failed[0].LastError, "broker unavailable")

	// Failed rows stay out of the pending queue.
	pending, err := store.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReplayRequeuesFailed(t *testing.T) {
	store := NewInMemory()
	emitter := NewEmitter(KanaalDocumenten, store, discard())
	producer := newFakeProducer()
	producer.fail = true
	worker := NewWorker(store, producer, discard())

	require.NoError(t, emitter.Emit(context.Background(), "create", "https://drc.example.org/d/1", "enkelvoudiginformatieobject", "https://drc.example.org/d/1", nil))
	for range maxAttempts {
		require.NoError(t, worker.DeliverBatch(context.Background()))
	}

	n, err := worker.Replay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	producer.fail = false
	require.NoError(t, worker.DeliverBatch(context.Background()))
	assert.Len(t, producer.produced["documenten"], 1)
}

func TestCloudEventEmitterDisabled(t *testing.T) {
	store := NewInMemory()

	// Source without the flag, and flag without a source, both disable.
	for _, emitter := range []*CloudEventEmitter{
		NewCloudEventEmitter(false, "urn:nld:gemeente:0363", store, discard()),
		NewCloudEventEmitter(true, "", store, discard()),
	} {
		assert.False(t, emitter.Enabled())
		require.NoError(t, emitter.Emit(context.Background(), EventZaakGeopend, uuid.New(), "https://zrc.example.org/z/1", nil))
	}

	pending, err := store.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCloudEventEmitterEnvelope(t *testing.T) {
	store := NewInMemory()
	emitter := NewCloudEventEmitter(true, "urn:nld:gemeente:0363", store, discard())
	producer := newFakeProducer()
	worker := NewWorker(store, producer, discard())

	subject := uuid.New()
	dataRef := "https://zrc.example.org/api/v1/zaken/" + subject.String()
	require.NoError(t, emitter.Emit(context.Background(), EventZaakAfgesloten, subject, dataRef, nil))
	require.NoError(t, worker.DeliverBatch(context.Background()))

	require.Len(t, producer.produced[CloudEventTopic], 1)
	var event CloudEvent
	require.NoError(t, json.Unmarshal(producer.produced[CloudEventTopic][0], &event))
	assert.Equal(t, "1.0", event.SpecVersion)
	assert.Equal(t, "urn:nld:gemeente:0363", event.Source)
	assert.Equal(t, EventZaakAfgesloten, event.Type)
	assert.Equal(t, subject.String(), event.Subject)
	assert.Equal(t, dataRef, event.DataRef)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Time.IsZero())
}
