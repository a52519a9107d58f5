package drc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"zgw/internal/audittrail"
	"zgw/internal/authz"
	"zgw/internal/catalogi"
	"zgw/internal/notifications"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/requestcontext"
)

const (
	testBaseURL   = "https://drc.example.nl/api/v1"
	testIOTypeURL = "https://catalogus.example.nl/api/v1/informatieobjecttypen/0ee3fd24-9b3a-4fc2-90fc-8097d52a463a"
	testZaakURL   = "https://zrc.example.nl/api/v1/zaken/9d4f1b6e-2f7a-4f05-8a3c-0d5b6e7f8a90"
)

// testChunkSize keeps chunked-upload tests small.
const testChunkSize = 4

// fakeCatalog serves canned catalog resources by URL.
type fakeCatalog struct {
	resources map[string]any
}

func (f *fakeCatalog) FetchInto(_ context.Context, url string, target any) error {
	resource, ok := f.resources[url]
	if !ok {
		return dErrors.New(dErrors.CodeBadURL, "no service is registered for this URL")
	}
	raw, err := json.Marshal(resource)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

type ServiceSuite struct {
	suite.Suite

	store   *InMemory
	backend *MemoryBackend
	apps    *authz.InMemory
	audit   *audittrail.InMemory
	outbox  *notifications.InMemory
	catalog *fakeCatalog
	svc     *Service

	ctx context.Context
	now time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.store = NewInMemory()
	s.backend = NewMemoryBackend()
	s.apps = authz.NewInMemory()
	s.audit = audittrail.NewInMemory()
	s.outbox = notifications.NewInMemory()

	s.catalog = &fakeCatalog{resources: map[string]any{
		testIOTypeURL: catalogi.Informatieobjecttype{
			URL:               testIOTypeURL,
			Omschrijving:      "verweerschrift",
			Vertrouwelijkheid: "openbaar",
		},
	}}

	s.apps.Seed(&authz.Applicatie{
		ID:       domain.ApplicatieID(uuid.New()),
		ClientID: "drc-tests",
		Autorisaties: []authz.Autorisatie{{
			Component: domain.ComponentDRC,
			TypeURL:   testIOTypeURL,
			Scopes: domain.NewScopeSet(
				domain.ScopeDocumentenLezen, domain.ScopeDocumentenAanmaken,
				domain.ScopeDocumentenBijwerken, domain.ScopeDocumentenVerwijderen,
				domain.ScopeDocumentenLock, domain.ScopeDocumentenGeforceerdUnlock,
			),
			MaxVertrouwelijkheid: domain.VertrouwelijkheidGeheim,
		}},
	})

	s.svc = NewService(Deps{
		Store:     s.store,
		Backend:   s.backend,
		Authz:     authz.NewService(s.apps, logger),
		Catalogi:  catalogi.NewClient(s.catalog),
		Splitter:  reference.NewSplitter(testBaseURL),
		Audit:     audittrail.NewRecorder("DRC", s.audit, logger),
		Notify:    notifications.NewEmitter(notifications.KanaalDocumenten, s.outbox, logger),
		Events:    notifications.NewCloudEventEmitter(true, "urn:nld:oin:00000001:systeem:drc", s.outbox, logger),
		ChunkSize: testChunkSize,
		Logger:    logger,
	})

	s.now = time.Date(2026, 5, 6, 14, 15, 0, 0, time.UTC)
	ctx := requestcontext.WithClientID(context.Background(), "drc-tests")
	ctx = requestcontext.WithUserID(ctx, "u-456")
	ctx = requestcontext.WithUserRepresentation(ctx, "D. Behandelaar")
	s.ctx = requestcontext.WithTime(ctx, s.now)
}

func (s *ServiceSuite) newDocument() Document {
	iot, err := reference.Remote(testIOTypeURL)
	s.Require().NoError(err)
	return Document{
		InformatieObject: InformatieObject{
			Bronorganisatie:      "813264571",
			Informatieobjecttype: iot,
		},
		Versie: Versie{
			Titel:  "Verweerschrift",
			Auteur: "A. Ambtenaar",
			Taal:   "nld",
			Status: "definitief",
		},
	}
}

func (s *ServiceSuite) createDocument(inhoud []byte) *Document {
	doc, delen, err := s.svc.CreateDocument(s.ctx, s.newDocument(), inhoud)
	s.Require().NoError(err)
	s.Require().Empty(delen)
	return doc
}

// createChunked registers a document expecting its content in parts.
func (s *ServiceSuite) createChunked(omvang int64) (*Document, []BestandsDeel) {
	req := s.newDocument()
	req.Bestandsomvang = &omvang
	doc, delen, err := s.svc.CreateDocument(s.ctx, req, nil)
	s.Require().NoError(err)
	return doc, delen
}

func (s *ServiceSuite) download(id domain.DocumentID, versie int) []byte {
	r, _, err := s.svc.Download(s.ctx, id, versie)
	s.Require().NoError(err)
	defer r.Close()
	inhoud, err := io.ReadAll(r)
	s.Require().NoError(err)
	return inhoud
}

func (s *ServiceSuite) Test_CreateDocument_WithInhoud() {
	doc := s.createDocument([]byte("hello world"))

	assert.Contains(s.T(), doc.Identificatie, "DOCUMENT-2026-")
	assert.Equal(s.T(), 1, doc.Versie.Versie)
	assert.Equal(s.T(), domain.VertrouwelijkheidOpenbaar, doc.Vertrouwelijkheid)
	assert.False(s.T(), doc.Locked())
	require.NotNil(s.T(), doc.Bestandsomvang)
	assert.EqualValues(s.T(), 11, *doc.Bestandsomvang)

	assert.Equal(s.T(), []byte("hello world"), s.download(doc.ID, 0))

	entries := s.audit.All()
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), audittrail.ActieCreate, entries[0].Actie)
	assert.Equal(s.T(), "enkelvoudiginformatieobject", entries[0].Resource)
	assert.Equal(s.T(), "drc-tests", entries[0].ApplicatieID)
}

func (s *ServiceSuite) Test_CreateDocument_EmitsNotificationAndCloudEvent() {
	doc := s.createDocument([]byte("x"))

	items, err := s.outbox.ClaimPending(s.ctx, 10)
	s.Require().NoError(err)
	require.Len(s.T(), items, 2)

	var notificatie notifications.Notificatie
	s.Require().NoError(json.Unmarshal(items[0].Payload, &notificatie))
	assert.Equal(s.T(), notifications.KanaalDocumenten, notificatie.Kanaal)
	assert.Equal(s.T(), "create", notificatie.Actie)
	assert.Equal(s.T(), testIOTypeURL, notificatie.Kenmerken["informatieobjecttype"])

	var event notifications.CloudEvent
	s.Require().NoError(json.Unmarshal(items[1].Payload, &event))
	assert.Equal(s.T(), notifications.EventDocumentGeregistreerd, event.Type)
	assert.Equal(s.T(), uuid.UUID(doc.ID).String(), event.Subject)
}

func (s *ServiceSuite) Test_CreateDocument_ConceptTypeRejected() {
	concept := "https://catalogus.example.nl/api/v1/informatieobjecttypen/" + uuid.NewString()
	s.catalog.resources[concept] = catalogi.Informatieobjecttype{URL: concept, Concept: true}
	req := s.newDocument()
	req.Informatieobjecttype, _ = reference.Remote(concept)

	_, _, err := s.svc.CreateDocument(s.ctx, req, nil)

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeNotPublished, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_CreateDocument_ForbiddenWithoutGrant() {
	foreign := "https://catalogus.example.nl/api/v1/informatieobjecttypen/" + uuid.NewString()
	s.catalog.resources[foreign] = catalogi.Informatieobjecttype{URL: foreign}
	req := s.newDocument()
	req.Informatieobjecttype, _ = reference.Remote(foreign)

	_, _, err := s.svc.CreateDocument(s.ctx, req, nil)

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodeForbidden, de.Code)
}

func (s *ServiceSuite) Test_CreateDocument_DuplicateIdentificatie() {
	req := s.newDocument()
	req.Identificatie = "DOC-001"
	_, _, err := s.svc.CreateDocument(s.ctx, req, nil)
	s.Require().NoError(err)

	_, _, err = s.svc.CreateDocument(s.ctx, req, nil)

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeIdentificatieNietUniek, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_CreateDocument_IndicatieWithoutGebruiksrechten() {
	req := s.newDocument()
	indicatie := true
	req.IndicatieGebruiksrecht = &indicatie

	_, _, err := s.svc.CreateDocument(s.ctx, req, nil)

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeMissingGebruiksrechten, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_CreateDocument_ChunkedGeneratesPartsAndLocks() {
	doc, delen := s.createChunked(10)

	assert.True(s.T(), doc.Locked())
	require.Len(s.T(), delen, 3)
	assert.EqualValues(s.T(), 4, delen[0].Omvang)
	assert.EqualValues(s.T(), 4, delen[1].Omvang)
	assert.EqualValues(s.T(), 2, delen[2].Omvang)
	for _, deel := range delen {
		assert.False(s.T(), deel.Voltooid)
	}
}

func (s *ServiceSuite) Test_UploadBestandsDeel_RejectsWrongSize() {
	doc, delen := s.createChunked(10)

	_, err := s.svc.UploadBestandsDeel(s.ctx, delen[0].ID, doc.Lock, []byte("toolongpart"))

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeFileSize, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_Unlock_AssemblesUpload() {
	doc, delen := s.createChunked(10)

	parts := [][]byte{[]byte("abcd"), []byte("efgh"), []byte("ij")}
	for i, deel := range delen {
		uploaded, err := s.svc.UploadBestandsDeel(s.ctx, deel.ID, doc.Lock, parts[i])
		s.Require().NoError(err)
		assert.True(s.T(), uploaded.Voltooid)
	}
	s.Require().NoError(s.svc.Unlock(s.ctx, doc.ID, doc.Lock))

	assert.Equal(s.T(), []byte("abcdefghij"), s.download(doc.ID, 0))

	refreshed, err := s.svc.GetDocument(s.ctx, doc.ID, 0)
	s.Require().NoError(err)
	assert.False(s.T(), refreshed.Locked())
	require.NotNil(s.T(), refreshed.Bestandsomvang)
	assert.EqualValues(s.T(), 10, *refreshed.Bestandsomvang)

	rest, err := s.store.ListBestandsDelen(s.ctx, doc.ID)
	s.Require().NoError(err)
	assert.Empty(s.T(), rest)
}

func (s *ServiceSuite) Test_Unlock_IncompleteUploadRejected() {
	doc, delen := s.createChunked(10)
	_, err := s.svc.UploadBestandsDeel(s.ctx, delen[0].ID, doc.Lock, []byte("abcd"))
	s.Require().NoError(err)

	err = s.svc.Unlock(s.ctx, doc.ID, doc.Lock)

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodeIncompleteUpload, de.Code)
}

func (s *ServiceSuite) Test_Unlock_ForcedDiscardsIncompleteUpload() {
	doc, delen := s.createChunked(10)
	_, err := s.svc.UploadBestandsDeel(s.ctx, delen[0].ID, doc.Lock, []byte("abcd"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Unlock(s.ctx, doc.ID, ""))

	refreshed, err := s.svc.GetDocument(s.ctx, doc.ID, 0)
	s.Require().NoError(err)
	assert.False(s.T(), refreshed.Locked())
	assert.Nil(s.T(), refreshed.Bestandsomvang)

	rest, err := s.store.ListBestandsDelen(s.ctx, doc.ID)
	s.Require().NoError(err)
	assert.Empty(s.T(), rest)
}

func (s *ServiceSuite) Test_Lock_AlreadyLocked() {
	doc := s.createDocument(nil)
	_, err := s.svc.Lock(s.ctx, doc.ID)
	s.Require().NoError(err)

	_, err = s.svc.Lock(s.ctx, doc.ID)

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodeExistingLock, de.Code)
}

func (s *ServiceSuite) Test_UpdateDocument_RequiresLock() {
	doc := s.createDocument(nil)

	_, _, err := s.svc.UpdateDocument(s.ctx, doc.ID, s.newDocument(), nil, "", false)

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodeUnlocked, de.Code)
}

func (s *ServiceSuite) Test_UpdateDocument_RejectsWrongLock() {
	doc := s.createDocument(nil)
	_, err := s.svc.Lock(s.ctx, doc.ID)
	s.Require().NoError(err)

	_, _, err = s.svc.UpdateDocument(s.ctx, doc.ID, s.newDocument(), nil, "not-the-token", false)

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodeIncorrectLockID, de.Code)
}

func (s *ServiceSuite) Test_UpdateDocument_AppendsImmutableVersion() {
	doc := s.createDocument([]byte("inhoud v1"))
	lock, err := s.svc.Lock(s.ctx, doc.ID)
	s.Require().NoError(err)

	updated := s.newDocument()
	updated.Titel = "Verweerschrift herzien"
	result, delen, err := s.svc.UpdateDocument(s.ctx, doc.ID, updated, nil, lock, false)
	s.Require().NoError(err)
	s.Require().Empty(delen)

	assert.Equal(s.T(), 2, result.Versie.Versie)
	assert.Equal(s.T(), "Verweerschrift herzien", result.Titel)
	// Metadata-only update: version 2 keeps the version 1 content.
	assert.Equal(s.T(), []byte("inhoud v1"), s.download(doc.ID, 0))

	pinned, err := s.svc.GetDocument(s.ctx, doc.ID, 1)
	s.Require().NoError(err)
	assert.Equal(s.T(), "Verweerschrift", pinned.Titel)

	entries := s.audit.All()
	require.Len(s.T(), entries, 2)
	assert.Equal(s.T(), audittrail.ActieUpdate, entries[1].Actie)
}

func (s *ServiceSuite) Test_UpdateDocument_ImmutableIdentificatie() {
	doc := s.createDocument(nil)
	lock, err := s.svc.Lock(s.ctx, doc.ID)
	s.Require().NoError(err)

	updated := s.newDocument()
	updated.Identificatie = "ANDERS-001"
	_, _, err = s.svc.UpdateDocument(s.ctx, doc.ID, updated, nil, lock, false)

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeImmutableField, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_UpdateDocument_ChangedOmvangRegeneratesParts() {
	doc, delen := s.createChunked(10)
	parts := [][]byte{[]byte("abcd"), []byte("efgh"), []byte("ij")}
	for i, deel := range delen {
		_, err := s.svc.UploadBestandsDeel(s.ctx, deel.ID, doc.Lock, parts[i])
		s.Require().NoError(err)
	}
	s.Require().NoError(s.svc.Unlock(s.ctx, doc.ID, doc.Lock))

	lock, err := s.svc.Lock(s.ctx, doc.ID)
	s.Require().NoError(err)
	updated := s.newDocument()
	omvang := int64(6)
	updated.Bestandsomvang = &omvang
	result, nieuweDelen, err := s.svc.UpdateDocument(s.ctx, doc.ID, updated, nil, lock, false)
	s.Require().NoError(err)

	assert.Equal(s.T(), 2, result.Versie.Versie)
	require.Len(s.T(), nieuweDelen, 2)
	assert.EqualValues(s.T(), 4, nieuweDelen[0].Omvang)
	assert.EqualValues(s.T(), 2, nieuweDelen[1].Omvang)
}

func (s *ServiceSuite) Test_ListDocuments_FiltersByGrant() {
	s.createDocument(nil)

	foreign := "https://catalogus.example.nl/api/v1/informatieobjecttypen/" + uuid.NewString()
	s.catalog.resources[foreign] = catalogi.Informatieobjecttype{URL: foreign}
	s.apps.Seed(&authz.Applicatie{
		ID:       domain.ApplicatieID(uuid.New()),
		ClientID: "other-app",
		Autorisaties: []authz.Autorisatie{{
			Component:            domain.ComponentDRC,
			TypeURL:              testIOTypeURL,
			Scopes:               domain.NewScopeSet(domain.ScopeDocumentenLezen, domain.ScopeDocumentenAanmaken),
			MaxVertrouwelijkheid: domain.VertrouwelijkheidGeheim,
		}, {
			Component:            domain.ComponentDRC,
			TypeURL:              foreign,
			Scopes:               domain.NewScopeSet(domain.ScopeDocumentenAanmaken),
			MaxVertrouwelijkheid: domain.VertrouwelijkheidGeheim,
		}},
	})
	otherCtx := requestcontext.WithTime(requestcontext.WithClientID(context.Background(), "other-app"), s.now)
	req := s.newDocument()
	req.Informatieobjecttype, _ = reference.Remote(foreign)
	_, _, err := s.svc.CreateDocument(otherCtx, req, nil)
	s.Require().NoError(err)

	page, err := s.svc.ListDocuments(s.ctx, DocumentFilter{Page: 1, PageSize: 10})
	s.Require().NoError(err)

	require.Len(s.T(), page.Results, 1)
	assert.Equal(s.T(), testIOTypeURL, refURL(page.Results[0].Informatieobjecttype))
}

func (s *ServiceSuite) Test_Gebruiksrechten_RaiseAndClearIndicatie() {
	doc := s.createDocument(nil)

	gr, err := s.svc.AddGebruiksrechten(s.ctx, Gebruiksrechten{
		DocumentID:              doc.ID,
		Startdatum:              domain.NewDate(2026, 5, 1),
		OmschrijvingVoorwaarden: "intern gebruik",
	})
	s.Require().NoError(err)

	refreshed, err := s.svc.GetDocument(s.ctx, doc.ID, 0)
	s.Require().NoError(err)
	require.NotNil(s.T(), refreshed.IndicatieGebruiksrecht)
	assert.True(s.T(), *refreshed.IndicatieGebruiksrecht)

	s.Require().NoError(s.svc.DeleteGebruiksrechten(s.ctx, gr.ID))

	refreshed, err = s.svc.GetDocument(s.ctx, doc.ID, 0)
	s.Require().NoError(err)
	assert.Nil(s.T(), refreshed.IndicatieGebruiksrecht)
}

func (s *ServiceSuite) Test_AddObjectInformatieObject_RejectsDuplicate() {
	doc := s.createDocument(nil)
	zaak, err := reference.Remote(testZaakURL)
	s.Require().NoError(err)

	_, err = s.svc.AddObjectInformatieObject(s.ctx, ObjectInformatieObject{
		DocumentID: doc.ID, Object: zaak, ObjectType: "zaak",
	})
	s.Require().NoError(err)

	_, err = s.svc.AddObjectInformatieObject(s.ctx, ObjectInformatieObject{
		DocumentID: doc.ID, Object: zaak, ObjectType: "zaak",
	})

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeUnique, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_DeleteDocument_BlockedByRelations() {
	doc := s.createDocument(nil)
	zaak, err := reference.Remote(testZaakURL)
	s.Require().NoError(err)
	oio, err := s.svc.AddObjectInformatieObject(s.ctx, ObjectInformatieObject{
		DocumentID: doc.ID, Object: zaak, ObjectType: "zaak",
	})
	s.Require().NoError(err)

	err = s.svc.DeleteDocument(s.ctx, doc.ID)
	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodePendingRelations, de.Code)

	s.Require().NoError(s.svc.DeleteObjectInformatieObject(s.ctx, oio.ID))
	s.Require().NoError(s.svc.DeleteDocument(s.ctx, doc.ID))
}

func (s *ServiceSuite) Test_DeleteDocument_PurgesContentAndAudit() {
	doc := s.createDocument([]byte("weg"))

	s.Require().NoError(s.svc.DeleteDocument(s.ctx, doc.ID))

	_, err := s.svc.GetDocument(s.ctx, doc.ID, 0)
	assert.Error(s.T(), err)

	entries, err := s.audit.ListByHoofdObject(s.ctx, s.svc.DocumentURL(doc.ID))
	s.Require().NoError(err)
	assert.Empty(s.T(), entries)
}

func (s *ServiceSuite) Test_Import_ReportsPerRowResults() {
	valid := s.newDocument()
	invalid := s.newDocument()
	invalid.Informatieobjecttype = reference.Ref{}

	results := s.svc.Import(s.ctx, []Document{valid, invalid}, [][]byte{[]byte("a"), nil})

	require.Len(s.T(), results, 2)
	assert.NoError(s.T(), results[0].Err)
	require.NotNil(s.T(), results[0].Document)
	assert.Error(s.T(), results[1].Err)
}
