package audittrail

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zgw/pkg/platform/sentinel"
	"zgw/pkg/requestcontext"
)

func testRecorder() (*Recorder, *InMemory) {
	store := NewInMemory()
	return NewRecorder("ZRC", store, slog.New(slog.DiscardHandler)), store
}

func requestCtx() context.Context {
	ctx := context.Background()
	ctx = requestcontext.WithClientID(ctx, "gemeente-app")
	ctx = requestcontext.WithUserID(ctx, "behandelaar-7")
	ctx = requestcontext.WithUserRepresentation(ctx, "J. de Vries")
	ctx = requestcontext.WithAuditToelichting(ctx, "correctie op verzoek")
	ctx = requestcontext.WithTime(ctx, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return ctx
}

func TestRecordCapturesActorAndNote(t *testing.T) {
	recorder, store := testRecorder()
	zaakURL := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()

	err := recorder.Record(requestCtx(), Mutation{
		Actie:       ActieCreate,
		Resultaat:   201,
		HoofdObject: zaakURL,
		Resource:    "zaak",
		ResourceURL: zaakURL,
		New:         map[string]string{"identificatie": "ZAAK-001"},
	})
	require.NoError(t, err)

	entries := store.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "ZRC", entry.Bron)
	assert.Equal(t, "gemeente-app", entry.ApplicatieID)
	assert.Equal(t, "behandelaar-7", entry.GebruikersID)
	assert.Equal(t, "J. de Vries", entry.GebruikersWeergave)
	assert.Equal(t, "correctie op verzoek", entry.Toelichting)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), entry.AanmaakDatum)
	assert.Nil(t, entry.Wijzigingen.Oud)
	assert.JSONEq(t, `{"identificatie":"ZAAK-001"}`, string(entry.Wijzigingen.Nieuw))
}

func TestRecordUpdateKeepsBothSnapshots(t *testing.T) {
	recorder, store := testRecorder()
	zaakURL := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()

	err := recorder.Record(requestCtx(), Mutation{
		Actie:       ActieUpdate,
		Resultaat:   200,
		HoofdObject: zaakURL,
		Resource:    "zaak",
		ResourceURL: zaakURL,
		Old:         map[string]string{"omschrijving": "oud"},
		New:         map[string]string{"omschrijving": "nieuw"},
	})
	require.NoError(t, err)

	entry := store.All()[0]
	assert.JSONEq(t, `{"omschrijving":"oud"}`, string(entry.Wijzigingen.Oud))
	assert.JSONEq(t, `{"omschrijving":"nieuw"}`, string(entry.Wijzigingen.Nieuw))
}

func TestListScopedToHoofdObject(t *testing.T) {
	recorder, _ := testRecorder()
	zaakA := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()
	zaakB := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()

	ctx := requestCtx()
	require.NoError(t, recorder.Record(ctx, Mutation{Actie: ActieCreate, Resultaat: 201, HoofdObject: zaakA, Resource: "zaak", ResourceURL: zaakA}))
	require.NoError(t, recorder.Record(ctx, Mutation{Actie: ActieCreate, Resultaat: 201, HoofdObject: zaakB, Resource: "zaak", ResourceURL: zaakB}))
	require.NoError(t, recorder.Record(ctx, Mutation{Actie: ActieUpdate, Resultaat: 200, HoofdObject: zaakA, Resource: "status", ResourceURL: zaakA + "/statussen/x"}))

	entries, err := recorder.List(ctx, zaakA)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActieCreate, entries[0].Actie)
	assert.Equal(t, ActieUpdate, entries[1].Actie)
}

func TestGetScopedToHoofdObject(t *testing.T) {
	recorder, store := testRecorder()
	zaakA := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()
	zaakB := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()

	ctx := requestCtx()
	require.NoError(t, recorder.Record(ctx, Mutation{Actie: ActieCreate, Resultaat: 201, HoofdObject: zaakA, Resource: "zaak", ResourceURL: zaakA}))
	id := store.All()[0].UUID

	entry, err := recorder.Get(ctx, zaakA, id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.UUID)

	// The same entry is invisible through another main object.
	_, err = recorder.Get(ctx, zaakB, id)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPurgeRemovesWholeTrail(t *testing.T) {
	recorder, store := testRecorder()
	zaakURL := "https://zrc.example.org/api/v1/zaken/" + uuid.NewString()

	ctx := requestCtx()
	require.NoError(t, recorder.Record(ctx, Mutation{Actie: ActieCreate, Resultaat: 201, HoofdObject: zaakURL, Resource: "zaak", ResourceURL: zaakURL}))
	require.NoError(t, recorder.Record(ctx, Mutation{Actie: ActieDestroy, Resultaat: 204, HoofdObject: zaakURL, Resource: "zaak", ResourceURL: zaakURL}))

	require.NoError(t, recorder.Purge(ctx, zaakURL))
	assert.Empty(t, store.All())
}
