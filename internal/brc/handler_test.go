package brc

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zgw/internal/audittrail"
	"zgw/internal/authz"
	"zgw/internal/catalogi"
	"zgw/internal/mirror"
	"zgw/internal/notifications"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	"zgw/pkg/requestcontext"
)

type handlerFixture struct {
	router  chi.Router
	store   *InMemory
	audit   *audittrail.InMemory
	catalog *fakeCatalog
	peer    *fakePeer
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	store := NewInMemory()
	apps := authz.NewInMemory()
	apps.Seed(&authz.Applicatie{
		ID:                    domain.ApplicatieID(uuid.New()),
		ClientID:              "brc-tests",
		HeeftAlleAutorisaties: true,
	})
	auditStore := audittrail.NewInMemory()
	outbox := notifications.NewInMemory()
	peer := &fakePeer{mirrorURL: testZaakURL + "/besluiten/" + uuid.NewString()}
	catalog := &fakeCatalog{resources: map[string]any{
		testBesluittypeURL: catalogi.Besluittype{
			URL:                   testBesluittypeURL,
			Zaaktypen:             []string{testZaaktypeURL},
			Informatieobjecttypen: []string{testIOTypeURL},
		},
		testZaaktypeURL: catalogi.Zaaktype{
			URL:          testZaaktypeURL,
			Besluittypen: []string{testBesluittypeURL},
		},
		testZaakURL: map[string]string{
			"url":      testZaakURL,
			"zaaktype": testZaaktypeURL,
		},
		testDocumentURL: map[string]string{
			"url":                  testDocumentURL,
			"informatieobjecttype": testIOTypeURL,
		},
	}}

	splitter := reference.NewSplitter(testBaseURL)
	recorder := audittrail.NewRecorder("BRC", auditStore, logger)
	svc := NewService(Deps{
		Store:    store,
		Authz:    authz.NewService(apps, logger),
		Catalogi: catalogi.NewClient(catalog),
		Resolver: catalog,
		Splitter: splitter,
		Syncer:   mirror.NewSyncer(peer, logger),
		Audit:    recorder,
		Notify:   notifications.NewEmitter(notifications.KanaalBesluiten, outbox, logger),
		Events:   notifications.NewCloudEventEmitter(false, "", outbox, logger),
		Logger:   logger,
	})

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientID(r.Context(), "brc-tests")
			ctx = requestcontext.WithTime(ctx, time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewHandler(svc, recorder, splitter, logger).Register(router)

	return &handlerFixture{router: router, store: store, audit: auditStore, catalog: catalog, peer: peer}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) createBesluit(t *testing.T) map[string]any {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/besluiten", map[string]any{
		"verantwoordelijkeOrganisatie": "813264571",
		"besluittype":                  testBesluittypeURL,
		"ingangsdatum":                 "2026-04-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func Test_Handler_CreateAndGetBesluit(t *testing.T) {
	f := newHandlerFixture(t)

	created := f.createBesluit(t)
	assert.Contains(t, created["url"], testBaseURL+"/besluiten/")
	assert.Contains(t, created["identificatie"], "BESLUIT-2026-")
	assert.Equal(t, "2026-03-12", created["datum"])

	rec := f.do(t, http.MethodGet, "/besluiten/"+created["uuid"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created["url"], got["url"])
}

func Test_Handler_UnknownQueryParamRejected(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/besluiten?identifcatie=tikfout", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown-parameters")
}

func Test_Handler_ListBesluiten_FilterByIdentificatie(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createBesluit(t)
	f.createBesluit(t)

	rec := f.do(t, http.MethodGet, "/besluiten?identificatie="+created["identificatie"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, float64(1), page["count"])
}

func Test_Handler_ConditionalGet(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createBesluit(t)
	path := "/besluiten/" + created["uuid"].(string)

	first := f.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func Test_Handler_GetBesluit_MalformedUUIDIs404(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/besluiten/not-a-uuid", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Handler_UpdateBesluit(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createBesluit(t)

	rec := f.do(t, http.MethodPatch, "/besluiten/"+created["uuid"].(string), map[string]any{
		"verantwoordelijkeOrganisatie": "813264571",
		"besluittype":                  testBesluittypeURL,
		"ingangsdatum":                 "2026-04-01",
		"toelichting":                  "herzien na bezwaar",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "herzien na bezwaar", got["toelichting"])
	assert.Equal(t, created["identificatie"], got["identificatie"])
}

func Test_Handler_AuditTrailEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createBesluit(t)

	rec := f.do(t, http.MethodGet, "/besluiten/"+created["uuid"].(string)+"/audittrail", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []audittrail.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "besluit", entries[0].Resource)
}

func Test_Handler_BIOLifecycle(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createBesluit(t)
	f.peer.mirrorURL = "https://drc.example.nl/api/v1/objectinformatieobjecten/" + uuid.NewString()

	rec := f.do(t, http.MethodPost, "/besluitinformatieobjecten", map[string]any{
		"besluit":          created["url"],
		"informatieobject": testDocumentURL,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var rel map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rel))
	assert.Equal(t, testDocumentURL, rel["informatieobject"])
	assert.Equal(t, created["url"], rel["besluit"])

	list := f.do(t, http.MethodGet, "/besluitinformatieobjecten?besluit="+created["url"].(string), nil)
	require.Equal(t, http.StatusOK, list.Code)

	del := f.do(t, http.MethodDelete, "/besluitinformatieobjecten/"+rel["uuid"].(string), nil)
	assert.Equal(t, http.StatusNoContent, del.Code)
}

func Test_Handler_DeleteBesluit(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createBesluit(t)

	rec := f.do(t, http.MethodDelete, "/besluiten/"+created["uuid"].(string), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	entries, err := f.audit.ListByHoofdObject(context.Background(), created["url"].(string))
	require.NoError(t, err)
	assert.Empty(t, entries)

	got := f.do(t, http.MethodGet, "/besluiten/"+created["uuid"].(string), nil)
	assert.Equal(t, http.StatusNotFound, got.Code)
}

func Test_Handler_Verwerken(t *testing.T) {
	f := newHandlerFixture(t)
	f.peer.mirrorURL = "https://drc.example.nl/api/v1/objectinformatieobjecten/" + uuid.NewString()

	rec := f.do(t, http.MethodPost, "/besluit_verwerken", map[string]any{
		"besluit": map[string]any{
			"verantwoordelijkeOrganisatie": "813264571",
			"besluittype":                  testBesluittypeURL,
			"ingangsdatum":                 "2026-04-01",
		},
		"informatieobjecten": []string{testDocumentURL},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	besluit, ok := out["besluit"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, besluit["identificatie"], "BESLUIT-2026-")
	relaties, ok := out["informatieobjecten"].([]any)
	require.True(t, ok)
	require.Len(t, relaties, 1)
}
