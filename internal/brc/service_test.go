package brc

import (
	"context"
	"encoding/json"
	"fmt"
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
	"zgw/internal/mirror"
	"zgw/internal/notifications"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/requestcontext"
)

const (
	testBaseURL        = "https://brc.example.nl/api/v1"
	testBesluittypeURL = "https://catalogus.example.nl/api/v1/besluittypen/7c91e2a4-0c55-4d60-9f7e-1a2b3c4d5e6f"
	testZaaktypeURL    = "https://catalogus.example.nl/api/v1/zaaktypen/3a184c6c-9a2b-4b33-a2f1-6d1b8a0d2c01"
	testZaakURL        = "https://zrc.example.nl/api/v1/zaken/9d4f1b6e-2f7a-4f05-8a3c-0d5b6e7f8a90"
	testIOTypeURL      = "https://catalogus.example.nl/api/v1/informatieobjecttypen/0ee3fd24-9b3a-4fc2-90fc-8097d52a463a"
	testDocumentURL    = "https://drc.example.nl/api/v1/enkelvoudiginformatieobjecten/5bb01b14-34e3-4e53-9b5e-31b1f2b6c402"
)

// fakeCatalog serves canned catalog and peer resources by URL.
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

// fakePeer records mirror calls and fails on demand.
type fakePeer struct {
	mirrorURL string
	createErr error
	deleteErr error
	created   []string
	deleted   []string
	lastBody  any
}

func (f *fakePeer) CreateMirror(_ context.Context, collectionURL string, body any) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, collectionURL)
	f.lastBody = body
	return f.mirrorURL, nil
}

func (f *fakePeer) DeleteMirror(_ context.Context, mirrorURL string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, mirrorURL)
	return nil
}

type ServiceSuite struct {
	suite.Suite

	store   *InMemory
	apps    *authz.InMemory
	audit   *audittrail.InMemory
	outbox  *notifications.InMemory
	catalog *fakeCatalog
	peer    *fakePeer
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
	s.apps = authz.NewInMemory()
	s.audit = audittrail.NewInMemory()
	s.outbox = notifications.NewInMemory()
	s.peer = &fakePeer{mirrorURL: testZaakURL + "/besluiten/" + uuid.NewString()}

	s.catalog = &fakeCatalog{resources: map[string]any{
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

	s.apps.Seed(&authz.Applicatie{
		ID:       domain.ApplicatieID(uuid.New()),
		ClientID: "brc-tests",
		Autorisaties: []authz.Autorisatie{{
			Component: domain.ComponentBRC,
			TypeURL:   testBesluittypeURL,
			Scopes: domain.NewScopeSet(
				domain.ScopeBesluitenLezen, domain.ScopeBesluitenAanmaken,
				domain.ScopeBesluitenBijwerken, domain.ScopeBesluitenVerwijderen,
			),
			MaxVertrouwelijkheid: domain.VertrouwelijkheidGeheim,
		}},
	})

	splitter := reference.NewSplitter(testBaseURL)
	s.svc = NewService(Deps{
		Store:    s.store,
		Authz:    authz.NewService(s.apps, logger),
		Catalogi: catalogi.NewClient(s.catalog),
		Resolver: s.catalog,
		Splitter: splitter,
		Syncer:   mirror.NewSyncer(s.peer, logger),
		Audit:    audittrail.NewRecorder("BRC", s.audit, logger),
		Notify:   notifications.NewEmitter(notifications.KanaalBesluiten, s.outbox, logger),
		Events:   notifications.NewCloudEventEmitter(true, "urn:nld:oin:00000001:systeem:brc", s.outbox, logger),
		Logger:   logger,
	})

	s.now = time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithClientID(context.Background(), "brc-tests")
	ctx = requestcontext.WithUserID(ctx, "u-123")
	ctx = requestcontext.WithUserRepresentation(ctx, "B. Handler")
	s.ctx = requestcontext.WithTime(ctx, s.now)
}

func (s *ServiceSuite) newBesluit() Besluit {
	besluittype, err := reference.Remote(testBesluittypeURL)
	s.Require().NoError(err)
	return Besluit{
		VerantwoordelijkeOrganisatie: "813264571",
		Besluittype:                  besluittype,
		Ingangsdatum:                 domain.NewDate(2026, 4, 1),
	}
}

func (s *ServiceSuite) newBesluitMetZaak() Besluit {
	besluit := s.newBesluit()
	zaak, err := reference.Remote(testZaakURL)
	s.Require().NoError(err)
	besluit.Zaak = zaak
	return besluit
}

func (s *ServiceSuite) createBesluit() *Besluit {
	besluit, err := s.svc.CreateBesluit(s.ctx, s.newBesluit())
	s.Require().NoError(err)
	return besluit
}

func (s *ServiceSuite) Test_CreateBesluit_GeneratesIdentificatieAndAudits() {
	besluit := s.createBesluit()

	assert.Contains(s.T(), besluit.Identificatie, "BESLUIT-2026-")
	assert.Equal(s.T(), domain.NewDate(2026, 3, 12), besluit.Datum)

	entries := s.audit.All()
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), audittrail.ActieCreate, entries[0].Actie)
	assert.Equal(s.T(), "besluit", entries[0].Resource)
	assert.Equal(s.T(), "brc-tests", entries[0].ApplicatieID)
}

func (s *ServiceSuite) Test_CreateBesluit_EmitsNotificationAndCloudEvent() {
	besluit := s.createBesluit()

	items, err := s.outbox.ClaimPending(s.ctx, 10)
	s.Require().NoError(err)
	require.Len(s.T(), items, 2)

	var notificatie notifications.Notificatie
	s.Require().NoError(json.Unmarshal(items[0].Payload, &notificatie))
	assert.Equal(s.T(), notifications.KanaalBesluiten, notificatie.Kanaal)
	assert.Equal(s.T(), "create", notificatie.Actie)
	assert.Equal(s.T(), testBesluittypeURL, notificatie.Kenmerken["besluittype"])

	var event notifications.CloudEvent
	s.Require().NoError(json.Unmarshal(items[1].Payload, &event))
	assert.Equal(s.T(), notifications.EventBesluitGeregistreerd, event.Type)
	assert.Equal(s.T(), uuid.UUID(besluit.ID).String(), event.Subject)
}

func (s *ServiceSuite) Test_CreateBesluit_RejectsConceptBesluittype() {
	s.catalog.resources[testBesluittypeURL] = catalogi.Besluittype{
		URL:     testBesluittypeURL,
		Concept: true,
	}

	_, err := s.svc.CreateBesluit(s.ctx, s.newBesluit())

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeNotPublished, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_CreateBesluit_RejectsDuplicateIdentificatie() {
	besluit := s.newBesluit()
	besluit.Identificatie = "BESLUIT-2026-0000000001"
	_, err := s.svc.CreateBesluit(s.ctx, besluit)
	s.Require().NoError(err)

	_, err = s.svc.CreateBesluit(s.ctx, besluit)

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeIdentificatieNietUniek, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_CreateBesluit_ForbiddenWithoutGrant() {
	foreign := "https://catalogus.example.nl/api/v1/besluittypen/" + uuid.NewString()
	s.catalog.resources[foreign] = catalogi.Besluittype{URL: foreign}
	besluit := s.newBesluit()
	besluit.Besluittype, _ = reference.Remote(foreign)

	_, err := s.svc.CreateBesluit(s.ctx, besluit)

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodeForbidden, de.Code)
}

func (s *ServiceSuite) Test_CreateBesluit_MirrorsZaakRelation() {
	besluit, err := s.svc.CreateBesluit(s.ctx, s.newBesluitMetZaak())
	s.Require().NoError(err)

	assert.Equal(s.T(), s.peer.mirrorURL, besluit.ZaakMirrorURL)
	require.Len(s.T(), s.peer.created, 1)
	assert.Equal(s.T(), testZaakURL+"/besluiten", s.peer.created[0])
	body, ok := s.peer.lastBody.(map[string]string)
	require.True(s.T(), ok)
	assert.Equal(s.T(), s.svc.BesluitURL(besluit.ID), body["besluit"])
}

func (s *ServiceSuite) Test_CreateBesluit_PeerFailureCompensates() {
	s.peer.createErr = fmt.Errorf("zrc unavailable")

	_, err := s.svc.CreateBesluit(s.ctx, s.newBesluitMetZaak())

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodePendingRelations, de.Code)

	page, err := s.svc.ListBesluiten(s.ctx, BesluitFilter{})
	s.Require().NoError(err)
	assert.Zero(s.T(), page.Count)

	assert.Empty(s.T(), s.audit.All())
	pending, err := s.outbox.ClaimPending(s.ctx, 100)
	s.Require().NoError(err)
	assert.Empty(s.T(), pending)
}

func (s *ServiceSuite) Test_CreateBesluit_RejectsMismatchedZaaktype() {
	otherZaak := "https://zrc.example.nl/api/v1/zaken/" + uuid.NewString()
	otherType := "https://catalogus.example.nl/api/v1/zaaktypen/" + uuid.NewString()
	s.catalog.resources[otherZaak] = map[string]string{"zaaktype": otherType}
	s.catalog.resources[otherType] = catalogi.Zaaktype{URL: otherType}

	besluit := s.newBesluit()
	besluit.Zaak, _ = reference.Remote(otherZaak)
	_, err := s.svc.CreateBesluit(s.ctx, besluit)

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeZaaktypeMismatch, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_ListBesluiten_FiltersByGrant() {
	s.createBesluit()

	otherType := "https://catalogus.example.nl/api/v1/besluittypen/" + uuid.NewString()
	other := s.newBesluit()
	other.ID = domain.BesluitID(uuid.New())
	other.Identificatie = "BESLUIT-2026-0000000099"
	other.Besluittype, _ = reference.Remote(otherType)
	s.Require().NoError(s.store.CreateBesluit(s.ctx, other))

	page, err := s.svc.ListBesluiten(s.ctx, BesluitFilter{})
	s.Require().NoError(err)

	require.Equal(s.T(), 1, page.Count)
	assert.Equal(s.T(), testBesluittypeURL, page.Results[0].Besluittype.URL())
}

func (s *ServiceSuite) Test_UpdateBesluit_BesluittypeImmutable() {
	besluit := s.createBesluit()

	updated := *besluit
	updated.Besluittype, _ = reference.Remote("https://catalogus.example.nl/api/v1/besluittypen/" + uuid.NewString())
	_, err := s.svc.UpdateBesluit(s.ctx, besluit.ID, updated)

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeImmutableField, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_UpdateBesluit_SwapsZaakMirror() {
	besluit, err := s.svc.CreateBesluit(s.ctx, s.newBesluitMetZaak())
	s.Require().NoError(err)
	oldMirror := besluit.ZaakMirrorURL

	otherZaak := "https://zrc.example.nl/api/v1/zaken/" + uuid.NewString()
	s.catalog.resources[otherZaak] = map[string]string{"zaaktype": testZaaktypeURL}
	s.peer.mirrorURL = otherZaak + "/besluiten/" + uuid.NewString()

	updated := *besluit
	updated.Zaak, _ = reference.Remote(otherZaak)
	result, err := s.svc.UpdateBesluit(s.ctx, besluit.ID, updated)
	s.Require().NoError(err)

	assert.Equal(s.T(), s.peer.mirrorURL, result.ZaakMirrorURL)
	require.Len(s.T(), s.peer.created, 2)
	assert.Equal(s.T(), otherZaak+"/besluiten", s.peer.created[1])
	require.Len(s.T(), s.peer.deleted, 1)
	assert.Equal(s.T(), oldMirror, s.peer.deleted[0])
}

func (s *ServiceSuite) Test_UpdateBesluit_ClearingZaakDeletesMirror() {
	besluit, err := s.svc.CreateBesluit(s.ctx, s.newBesluitMetZaak())
	s.Require().NoError(err)

	updated := *besluit
	updated.Zaak = reference.Ref{}
	result, err := s.svc.UpdateBesluit(s.ctx, besluit.ID, updated)
	s.Require().NoError(err)

	assert.Empty(s.T(), result.ZaakMirrorURL)
	require.Len(s.T(), s.peer.deleted, 1)
}

func (s *ServiceSuite) Test_DeleteBesluit_RemovesMirrorAndPurgesAudit() {
	besluit, err := s.svc.CreateBesluit(s.ctx, s.newBesluitMetZaak())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteBesluit(s.ctx, besluit.ID))

	require.Len(s.T(), s.peer.deleted, 1)
	assert.Equal(s.T(), besluit.ZaakMirrorURL, s.peer.deleted[0])
	assert.Empty(s.T(), s.audit.All())

	page, err := s.svc.ListBesluiten(s.ctx, BesluitFilter{})
	s.Require().NoError(err)
	assert.Zero(s.T(), page.Count)
}

func (s *ServiceSuite) Test_AddBIO_MirrorsToRemoteDRC() {
	besluit := s.createBesluit()
	document, err := reference.Remote(testDocumentURL)
	s.Require().NoError(err)
	s.peer.mirrorURL = "https://drc.example.nl/api/v1/objectinformatieobjecten/" + uuid.NewString()

	bio, err := s.svc.AddBesluitInformatieObject(s.ctx, BesluitInformatieObject{
		BesluitID:        besluit.ID,
		InformatieObject: document,
	})
	s.Require().NoError(err)

	assert.Equal(s.T(), s.peer.mirrorURL, bio.MirrorURL)
	require.Len(s.T(), s.peer.created, 1)
	assert.Equal(s.T(), "https://drc.example.nl/api/v1/objectinformatieobjecten", s.peer.created[0])
	body, ok := s.peer.lastBody.(map[string]string)
	require.True(s.T(), ok)
	assert.Equal(s.T(), "besluit", body["objectType"])
}

func (s *ServiceSuite) Test_AddBIO_DuplicateRejected() {
	besluit := s.createBesluit()
	document, err := reference.Remote(testDocumentURL)
	s.Require().NoError(err)
	relatie := BesluitInformatieObject{BesluitID: besluit.ID, InformatieObject: document}

	_, err = s.svc.AddBesluitInformatieObject(s.ctx, relatie)
	s.Require().NoError(err)

	_, err = s.svc.AddBesluitInformatieObject(s.ctx, relatie)
	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeUnique, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_AddBIO_RejectsUnrelatedType() {
	besluit := s.createBesluit()
	otherDoc := "https://drc.example.nl/api/v1/enkelvoudiginformatieobjecten/" + uuid.NewString()
	s.catalog.resources[otherDoc] = map[string]string{
		"informatieobjecttype": "https://catalogus.example.nl/api/v1/informatieobjecttypen/" + uuid.NewString(),
	}
	document, err := reference.Remote(otherDoc)
	s.Require().NoError(err)

	_, err = s.svc.AddBesluitInformatieObject(s.ctx, BesluitInformatieObject{
		BesluitID:        besluit.ID,
		InformatieObject: document,
	})

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeMissingBesluittypeIOTRelation, ve.Params[0].Code)
}

func (s *ServiceSuite) Test_AddBIO_LocalDocumentRegistersOIO() {
	besluit := s.createBesluit()
	docID := uuid.New()
	localDoc := testBaseURL + "/enkelvoudiginformatieobjecten/" + docID.String()
	s.catalog.resources[localDoc] = map[string]string{
		"url":                  localDoc,
		"informatieobjecttype": testIOTypeURL,
	}

	bio, err := s.svc.AddBesluitInformatieObject(s.ctx, BesluitInformatieObject{
		BesluitID:        besluit.ID,
		InformatieObject: reference.Local(docID),
	})
	s.Require().NoError(err)

	assert.Equal(s.T(), s.peer.mirrorURL, bio.MirrorURL)
	require.Len(s.T(), s.peer.created, 1)
	assert.Equal(s.T(), testBaseURL+"/objectinformatieobjecten", s.peer.created[0])
	body, ok := s.peer.lastBody.(map[string]string)
	require.True(s.T(), ok)
	assert.Equal(s.T(), localDoc, body["informatieobject"])
	assert.Equal(s.T(), "besluit", body["objectType"])
}

func (s *ServiceSuite) Test_AddBIO_PeerFailureCompensates() {
	besluit := s.createBesluit()
	document, err := reference.Remote(testDocumentURL)
	s.Require().NoError(err)
	s.peer.createErr = fmt.Errorf("drc unavailable")

	auditBefore := len(s.audit.All())
	outboxBefore, err := s.outbox.ClaimPending(s.ctx, 100)
	s.Require().NoError(err)

	_, err = s.svc.AddBesluitInformatieObject(s.ctx, BesluitInformatieObject{
		BesluitID:        besluit.ID,
		InformatieObject: document,
	})

	var de dErrors.Error
	require.ErrorAs(s.T(), err, &de)
	assert.Equal(s.T(), dErrors.CodePendingRelations, de.Code)

	bios, err := s.store.ListBesluitInformatieObjecten(s.ctx, besluit.ID)
	s.Require().NoError(err)
	assert.Empty(s.T(), bios)

	assert.Len(s.T(), s.audit.All(), auditBefore)
	outboxAfter, err := s.outbox.ClaimPending(s.ctx, 100)
	s.Require().NoError(err)
	assert.Len(s.T(), outboxAfter, len(outboxBefore))
}

func (s *ServiceSuite) Test_DeleteBIO_RemovesMirror() {
	besluit := s.createBesluit()
	document, err := reference.Remote(testDocumentURL)
	s.Require().NoError(err)
	s.peer.mirrorURL = "https://drc.example.nl/api/v1/objectinformatieobjecten/" + uuid.NewString()
	bio, err := s.svc.AddBesluitInformatieObject(s.ctx, BesluitInformatieObject{
		BesluitID:        besluit.ID,
		InformatieObject: document,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteBesluitInformatieObject(s.ctx, bio.ID))

	require.Len(s.T(), s.peer.deleted, 1)
	assert.Equal(s.T(), s.peer.mirrorURL, s.peer.deleted[0])
}

func (s *ServiceSuite) Test_Verwerken_CreatesBesluitWithRelations() {
	document, err := reference.Remote(testDocumentURL)
	s.Require().NoError(err)

	besluit, bios, err := s.svc.Verwerken(s.ctx, s.newBesluit(), []reference.Ref{document})
	s.Require().NoError(err)

	require.NotNil(s.T(), besluit)
	require.Len(s.T(), bios, 1)
	assert.Equal(s.T(), besluit.ID, bios[0].BesluitID)

	stored, err := s.store.ListBesluitInformatieObjecten(s.ctx, besluit.ID)
	s.Require().NoError(err)
	require.Len(s.T(), stored, 1)
}

func (s *ServiceSuite) Test_Verwerken_FailingRelationRollsBack() {
	goodDoc, err := reference.Remote(testDocumentURL)
	s.Require().NoError(err)
	badURL := "https://drc.example.nl/api/v1/enkelvoudiginformatieobjecten/" + uuid.NewString()
	s.catalog.resources[badURL] = map[string]string{
		"url":                  badURL,
		"informatieobjecttype": "https://catalogus.example.nl/api/v1/informatieobjecttypen/" + uuid.NewString(),
	}
	badDoc, err := reference.Remote(badURL)
	s.Require().NoError(err)

	besluit, bios, err := s.svc.Verwerken(s.ctx, s.newBesluit(), []reference.Ref{goodDoc, badDoc})

	var ve *dErrors.ValidationError
	require.ErrorAs(s.T(), err, &ve)
	assert.Equal(s.T(), dErrors.CodeMissingBesluittypeIOTRelation, ve.Params[0].Code)
	assert.Nil(s.T(), besluit)
	assert.Nil(s.T(), bios)

	page, err := s.svc.ListBesluiten(s.ctx, BesluitFilter{})
	s.Require().NoError(err)
	assert.Zero(s.T(), page.Count)

	// The first relation's DRC mirror row is removed again.
	require.Len(s.T(), s.peer.deleted, 1)
	assert.Equal(s.T(), s.peer.mirrorURL, s.peer.deleted[0])
}
