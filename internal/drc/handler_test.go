package drc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime/multipart"
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
	"zgw/internal/notifications"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	"zgw/pkg/requestcontext"
)

type handlerFixture struct {
	router  chi.Router
	store   *InMemory
	backend *MemoryBackend
	audit   *audittrail.InMemory
	catalog *fakeCatalog
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	store := NewInMemory()
	backend := NewMemoryBackend()
	apps := authz.NewInMemory()
	apps.Seed(&authz.Applicatie{
		ID:                    domain.ApplicatieID(uuid.New()),
		ClientID:              "drc-tests",
		HeeftAlleAutorisaties: true,
	})
	auditStore := audittrail.NewInMemory()
	outbox := notifications.NewInMemory()
	catalog := &fakeCatalog{resources: map[string]any{
		testIOTypeURL: catalogi.Informatieobjecttype{
			URL:               testIOTypeURL,
			Vertrouwelijkheid: "openbaar",
		},
	}}

	splitter := reference.NewSplitter(testBaseURL)
	recorder := audittrail.NewRecorder("DRC", auditStore, logger)
	svc := NewService(Deps{
		Store:     store,
		Backend:   backend,
		Authz:     authz.NewService(apps, logger),
		Catalogi:  catalogi.NewClient(catalog),
		Splitter:  splitter,
		Audit:     recorder,
		Notify:    notifications.NewEmitter(notifications.KanaalDocumenten, outbox, logger),
		Events:    notifications.NewCloudEventEmitter(false, "", outbox, logger),
		ChunkSize: testChunkSize,
		Logger:    logger,
	})

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientID(r.Context(), "drc-tests")
			ctx = requestcontext.WithTime(ctx, time.Date(2026, 5, 6, 14, 15, 0, 0, time.UTC))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewHandler(svc, recorder, splitter, logger).Register(router)

	return &handlerFixture{router: router, store: store, backend: backend, audit: auditStore, catalog: catalog}
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

func (f *handlerFixture) createDocument(t *testing.T, extra map[string]any) map[string]any {
	t.Helper()
	body := map[string]any{
		"bronorganisatie":      "813264571",
		"informatieobjecttype": testIOTypeURL,
		"titel":                "Verweerschrift",
		"auteur":               "A. Ambtenaar",
		"taal":                 "nld",
	}
	for k, v := range extra {
		body[k] = v
	}
	rec := f.do(t, http.MethodPost, "/enkelvoudiginformatieobjecten", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateAndGetDocument(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, map[string]any{
		"inhoud": base64.StdEncoding.EncodeToString([]byte("hello world")),
	})

	url, _ := created["url"].(string)
	assert.Contains(t, url, testBaseURL+"/enkelvoudiginformatieobjecten/")
	assert.Equal(t, float64(1), created["versie"])
	assert.Equal(t, false, created["locked"])
	assert.Contains(t, created["inhoud"], "/download?versie=1")

	rec := f.do(t, http.MethodGet, "/enkelvoudiginformatieobjecten/"+created["uuid"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, created["identificatie"], got["identificatie"])
	assert.Equal(t, testIOTypeURL, got["informatieobjecttype"])
}

func TestListDocumentenRejectsUnknownParams(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/enkelvoudiginformatieobjecten?zaaktype=x", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown-parameters")
}

func TestListDocumentenFiltersByIdentificatie(t *testing.T) {
	f := newHandlerFixture(t)
	f.createDocument(t, map[string]any{"identificatie": "DOC-001"})
	f.createDocument(t, map[string]any{"identificatie": "DOC-002"})

	rec := f.do(t, http.MethodGet, "/enkelvoudiginformatieobjecten?identificatie=DOC-002", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody(t, rec)
	assert.Equal(t, float64(1), page["count"])
}

func TestGetDocumentConditionalGET(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, nil)
	path := "/enkelvoudiginformatieobjecten/" + created["uuid"].(string)

	first := f.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestGetDocumentMalformedUUID(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/enkelvoudiginformatieobjecten/not-a-uuid", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateDocumentRequiresLock(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, nil)
	path := "/enkelvoudiginformatieobjecten/" + created["uuid"].(string)

	rec := f.do(t, http.MethodPatch, path, map[string]any{
		"bronorganisatie":      "813264571",
		"informatieobjecttype": testIOTypeURL,
		"titel":                "Herzien",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unlocked")
}

func TestLockUpdateUnlockFlow(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, nil)
	path := "/enkelvoudiginformatieobjecten/" + created["uuid"].(string)

	locked := f.do(t, http.MethodPost, path+"/lock", nil)
	require.Equal(t, http.StatusOK, locked.Code)
	lock, _ := decodeBody(t, locked)["lock"].(string)
	require.NotEmpty(t, lock)

	rec := f.do(t, http.MethodPut, path, map[string]any{
		"bronorganisatie":      "813264571",
		"informatieobjecttype": testIOTypeURL,
		"titel":                "Herzien",
		"auteur":               "A. Ambtenaar",
		"taal":                 "nld",
		"lock":                 lock,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody(t, rec)
	assert.Equal(t, float64(2), updated["versie"])
	assert.Equal(t, "Herzien", updated["titel"])

	unlock := f.do(t, http.MethodPost, path+"/unlock", map[string]any{"lock": lock})
	require.Equal(t, http.StatusNoContent, unlock.Code)
}

func TestChunkedUploadFlow(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, map[string]any{"bestandsomvang": 6})
	path := "/enkelvoudiginformatieobjecten/" + created["uuid"].(string)

	lock, _ := created["lock"].(string)
	require.NotEmpty(t, lock)
	delen, _ := created["bestandsdelen"].([]any)
	require.Len(t, delen, 2)

	parts := [][]byte{[]byte("abcd"), []byte("ef")}
	for i, raw := range delen {
		deel := raw.(map[string]any)
		deelURL, _ := deel["url"].(string)
		uploadPart(t, f, deelURL, lock, parts[i])
	}

	unlock := f.do(t, http.MethodPost, path+"/unlock", map[string]any{"lock": lock})
	require.Equal(t, http.StatusNoContent, unlock.Code, unlock.Body.String())

	download := f.do(t, http.MethodGet, path+"/download", nil)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "abcdef", download.Body.String())
}

func uploadPart(t *testing.T, f *handlerFixture, deelURL, lock string, inhoud []byte) {
	t.Helper()
	id, ok := reference.UUIDFromURL(deelURL)
	require.True(t, ok)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("inhoud", "deel.bin")
	require.NoError(t, err)
	_, err = part.Write(inhoud)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("lock", lock))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/bestandsdelen/"+id.String(), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["voltooid"])
}

func TestGebruiksrechtenLifecycle(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, nil)
	docURL := created["url"].(string)

	rec := f.do(t, http.MethodPost, "/gebruiksrechten", map[string]any{
		"informatieobject":        docURL,
		"startdatum":              "2026-05-01",
		"omschrijvingVoorwaarden": "intern gebruik",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	gr := decodeBody(t, rec)

	list := f.do(t, http.MethodGet, "/gebruiksrechten?informatieobject="+docURL, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var rows []any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)

	doc := f.do(t, http.MethodGet, "/enkelvoudiginformatieobjecten/"+created["uuid"].(string), nil)
	assert.Equal(t, true, decodeBody(t, doc)["indicatieGebruiksrecht"])

	del := f.do(t, http.MethodDelete, "/gebruiksrechten/"+gr["uuid"].(string), nil)
	assert.Equal(t, http.StatusNoContent, del.Code)
}

func TestObjectInformatieObjectLifecycle(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, nil)
	docURL := created["url"].(string)

	rec := f.do(t, http.MethodPost, "/objectinformatieobjecten", map[string]any{
		"informatieobject": docURL,
		"object":           testZaakURL,
		"objectType":       "zaak",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	oio := decodeBody(t, rec)
	assert.Equal(t, testZaakURL, oio["object"])

	list := f.do(t, http.MethodGet, "/objectinformatieobjecten?informatieobject="+docURL, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var rows []any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)

	del := f.do(t, http.MethodDelete, "/objectinformatieobjecten/"+oio["uuid"].(string), nil)
	assert.Equal(t, http.StatusNoContent, del.Code)
}

func TestDeleteDocumentPurgesAudit(t *testing.T) {
	f := newHandlerFixture(t)
	created := f.createDocument(t, nil)
	path := "/enkelvoudiginformatieobjecten/" + created["uuid"].(string)

	audit := f.do(t, http.MethodGet, path+"/audittrail", nil)
	require.Equal(t, http.StatusOK, audit.Code)

	del := f.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, del.Code)

	entries, err := f.audit.ListByHoofdObject(t.Context(), created["url"].(string))
	require.NoError(t, err)
	assert.Empty(t, entries)

	get := f.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestImportDocumenten(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPost, "/documenten-import", map[string]any{
		"documenten": []map[string]any{{
			"bronorganisatie":      "813264571",
			"informatieobjecttype": testIOTypeURL,
			"titel":                "Import A",
		}, {
			"bronorganisatie":      "813264571",
			"informatieobjecttype": "https://catalogus.example.nl/api/v1/informatieobjecttypen/" + uuid.NewString(),
			"titel":                "Import B",
		}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Resultaten []struct {
			Status string `json:"status"`
			Fout   string `json:"fout"`
		} `json:"resultaten"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Resultaten, 2)
	assert.Equal(t, "geslaagd", resp.Resultaten[0].Status)
	assert.Equal(t, "mislukt", resp.Resultaten[1].Status)
	assert.NotEmpty(t, resp.Resultaten[1].Fout)
}
