package drc

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"zgw/internal/audittrail"
	"zgw/internal/authz"
	"zgw/internal/catalogi"
	"zgw/internal/notifications"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/platform/tx"
	"zgw/pkg/requestcontext"
)

// defaultChunkSize is the part size for chunked uploads when the config does
// not override it.
const defaultChunkSize int64 = 1 << 20

// Deps bundles the collaborators of the document service.
type Deps struct {
	Store    Store
	Backend  DocumentBackend
	Authz    *authz.Service
	Catalogi *catalogi.Client
	Splitter *reference.Splitter
	Audit    *audittrail.Recorder
	Notify   *notifications.Emitter
	Events   *notifications.CloudEventEmitter
	// ChunkSize is the bestandsdeel size in bytes; zero selects the default.
	ChunkSize int64
	// DB enables real transactions; nil (memory stores) runs callbacks
	// directly.
	DB     *sql.DB
	Logger *slog.Logger
}

// Service implements the document registration operations.
type Service struct {
	store     Store
	backend   DocumentBackend
	authz     *authz.Service
	catalogi  *catalogi.Client
	splitter  *reference.Splitter
	audit     *audittrail.Recorder
	notify    *notifications.Emitter
	events    *notifications.CloudEventEmitter
	chunkSize int64
	db        *sql.DB
	logger    *slog.Logger
}

func NewService(deps Deps) *Service {
	chunkSize := deps.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Service{
		store:     deps.Store,
		backend:   deps.Backend,
		authz:     deps.Authz,
		catalogi:  deps.Catalogi,
		splitter:  deps.Splitter,
		audit:     deps.Audit,
		notify:    deps.Notify,
		events:    deps.Events,
		chunkSize: chunkSize,
		db:        deps.DB,
		logger:    deps.Logger,
	}
}

func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return tx.Run(ctx, s.db, fn)
}

// DocumentURL renders the canonical URL of a document.
func (s *Service) DocumentURL(id domain.DocumentID) string {
	return s.splitter.ResourceURL("enkelvoudiginformatieobjecten", uuid.UUID(id))
}

func documentKenmerken(doc *InformatieObject) map[string]string {
	return map[string]string{
		"bronorganisatie":             doc.Bronorganisatie,
		"informatieobjecttype":        refURL(doc.Informatieobjecttype),
		"vertrouwelijkheidaanduiding": string(doc.Vertrouwelijkheid),
	}
}

func generateIdentificatie(now time.Time) string {
	return fmt.Sprintf("DOCUMENT-%d-%010d", now.Year(), rand.Int64N(1e10))
}

// newLockToken mints a write-lock token.
func newLockToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func contentKey(id domain.DocumentID, versie int) string {
	return fmt.Sprintf("documenten/%s/%d", id, versie)
}

func partKey(id domain.DocumentID, volgnummer int) string {
	return fmt.Sprintf("documenten/%s/delen/%d", id, volgnummer)
}

// fetchInformatieobjecttype resolves and validates the document type
// reference.
func (s *Service) fetchInformatieobjecttype(ctx context.Context, ref reference.Ref) (*catalogi.Informatieobjecttype, error) {
	if !ref.IsRemote() {
		return nil, dErrors.Param("informatieobjecttype", dErrors.CodeBadURL, "informatieobjecttype must be a catalog URL")
	}
	iot, err := s.catalogi.Informatieobjecttype(ctx, ref.URL())
	if err != nil {
		return nil, dErrors.Param("informatieobjecttype", dErrors.CodeOf(err), "the informatieobjecttype could not be resolved")
	}
	return iot, nil
}

// generateBestandsdelen splits an expected file size into upload parts. The
// last part carries the remainder.
func (s *Service) generateBestandsdelen(id domain.DocumentID, size int64) []BestandsDeel {
	var delen []BestandsDeel
	for offset, nr := int64(0), 1; offset < size; offset, nr = offset+s.chunkSize, nr+1 {
		omvang := min(s.chunkSize, size-offset)
		delen = append(delen, BestandsDeel{
			ID:         domain.BestandsDeelID(uuid.New()),
			DocumentID: id,
			Volgnummer: nr,
			Omvang:     omvang,
		})
	}
	return delen
}

// CreateDocument registers a new document with its first version. When
// inhoud is absent but a bestandsomvang is given, the document is auto-locked
// and upload parts are returned.
func (s *Service) CreateDocument(ctx context.Context, doc Document, inhoud []byte) (*Document, []BestandsDeel, error) {
	if doc.Informatieobjecttype.IsZero() {
		return nil, nil, dErrors.Param("informatieobjecttype", dErrors.CodeInvalidInput, "informatieobjecttype is required")
	}
	iot, err := s.fetchInformatieobjecttype(ctx, doc.Informatieobjecttype)
	if err != nil {
		return nil, nil, err
	}
	if err := catalogi.CheckPublished("informatieobjecttype", iot.Concept); err != nil {
		return nil, nil, err
	}
	if doc.Vertrouwelijkheid == "" {
		doc.Vertrouwelijkheid = domain.Vertrouwelijkheid(iot.Vertrouwelijkheid)
	}
	if doc.Vertrouwelijkheid == "" {
		doc.Vertrouwelijkheid = domain.VertrouwelijkheidOpenbaar
	}

	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenAanmaken, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return nil, nil, err
	}
	if doc.IndicatieGebruiksrecht != nil && *doc.IndicatieGebruiksrecht {
		return nil, nil, dErrors.Param("indicatieGebruiksrecht", dErrors.CodeMissingGebruiksrechten,
			"usage rights must be registered through the gebruiksrechten resource")
	}

	now := requestcontext.Now(ctx)
	if doc.Identificatie == "" {
		doc.Identificatie = generateIdentificatie(now)
	} else {
		taken, err := s.store.IdentificatieExists(ctx, doc.Bronorganisatie, doc.Identificatie)
		if err != nil {
			return nil, nil, err
		}
		if taken {
			return nil, nil, dErrors.Param("identificatie", dErrors.CodeIdentificatieNietUniek,
				"the identificatie is already in use within this bronorganisatie")
		}
	}

	doc.ID = domain.DocumentID(uuid.New())
	doc.Versie.DocumentID = doc.ID
	doc.Versie.Versie = 1
	doc.BeginRegistratie = now

	var delen []BestandsDeel
	switch {
	case len(inhoud) > 0:
		doc.ContentKey = contentKey(doc.ID, 1)
		size := int64(len(inhoud))
		doc.Bestandsomvang = &size
	case doc.Bestandsomvang != nil && *doc.Bestandsomvang > 0:
		// Content arrives in parts; the canonical is locked until the upload
		// is completed by /unlock.
		doc.Lock = newLockToken()
		delen = s.generateBestandsdelen(doc.ID, *doc.Bestandsomvang)
	}

	docURL := s.DocumentURL(doc.ID)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateDocument(ctx, doc.InformatieObject, doc.Versie); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Param("identificatie", dErrors.CodeIdentificatieNietUniek,
					"the identificatie is already in use within this bronorganisatie")
			}
			return err
		}
		if len(delen) > 0 {
			if err := s.store.CreateBestandsDelen(ctx, delen); err != nil {
				return err
			}
		}
		if doc.ContentKey != "" {
			if _, err := s.backend.Put(ctx, doc.ContentKey, bytes.NewReader(inhoud)); err != nil {
				return err
			}
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: docURL,
			Resource:    "enkelvoudiginformatieobject",
			ResourceURL: docURL,
			New:         auditView(&doc),
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", docURL, "enkelvoudiginformatieobject", docURL, documentKenmerken(&doc.InformatieObject))
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.events.Emit(ctx, notifications.EventDocumentGeregistreerd, uuid.UUID(doc.ID), docURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventDocumentGeregistreerd, "error", err)
	}
	return &doc, delen, nil
}

// GetDocument returns the document at a specific version; versie 0 is the
// latest.
func (s *Service) GetDocument(ctx context.Context, id domain.DocumentID, versie int) (*Document, error) {
	canoniek, err := s.store.GetInformatieObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenLezen, refURL(canoniek.Informatieobjecttype), canoniek.Vertrouwelijkheid); err != nil {
		return nil, err
	}
	v, err := s.store.GetVersie(ctx, id, versie)
	if err != nil {
		return nil, err
	}
	return &Document{InformatieObject: *canoniek, Versie: *v}, nil
}

// ListDocuments returns the documents visible to the caller.
func (s *Service) ListDocuments(ctx context.Context, filter DocumentFilter) (*Page, error) {
	authFilter, err := s.authz.FilterFor(ctx, domain.ComponentDRC, domain.ScopeDocumentenLezen)
	if err != nil {
		return nil, err
	}
	docs, total, err := s.store.ListDocuments(ctx, filter, authFilter)
	if err != nil {
		return nil, err
	}
	next, previous := s.splitter.PageLinks("enkelvoudiginformatieobjecten", filter.Page, filter.PageSize, total)
	return &Page{Count: total, Next: next, Previous: previous, Results: docs}, nil
}

// UpdateDocument records a new immutable version. The caller must hold the
// write lock; partial marks a PATCH for the audit trail.
func (s *Service) UpdateDocument(ctx context.Context, id domain.DocumentID, updated Document, inhoud []byte, lock string, partial bool) (*Document, []BestandsDeel, error) {
	existing, err := s.store.GetInformatieObject(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenBijwerken, refURL(existing.Informatieobjecttype), existing.Vertrouwelijkheid); err != nil {
		return nil, nil, err
	}
	if err := checkLock(existing, lock); err != nil {
		return nil, nil, err
	}

	latest, err := s.store.GetVersie(ctx, id, 0)
	if err != nil {
		return nil, nil, err
	}

	if err := reference.CheckImmutable("informatieobjecttype", existing.Informatieobjecttype, updated.Informatieobjecttype); err != nil {
		return nil, nil, err
	}
	if updated.Identificatie != "" && updated.Identificatie != existing.Identificatie {
		return nil, nil, dErrors.Param("identificatie", dErrors.CodeImmutableField, "this field may not be changed after creation")
	}
	if updated.Bronorganisatie != "" && updated.Bronorganisatie != existing.Bronorganisatie {
		return nil, nil, dErrors.Param("bronorganisatie", dErrors.CodeImmutableField, "this field may not be changed after creation")
	}
	if err := s.checkGebruiksrechtIndicatie(ctx, id, updated.IndicatieGebruiksrecht); err != nil {
		return nil, nil, err
	}

	canoniek := *existing
	if updated.Vertrouwelijkheid != "" {
		canoniek.Vertrouwelijkheid = updated.Vertrouwelijkheid
	}
	canoniek.IndicatieGebruiksrecht = updated.IndicatieGebruiksrecht

	next := updated.Versie
	next.DocumentID = id
	next.Versie = latest.Versie + 1
	next.BeginRegistratie = requestcontext.Now(ctx)

	var delen []BestandsDeel
	switch {
	case len(inhoud) > 0:
		next.ContentKey = contentKey(id, next.Versie)
		size := int64(len(inhoud))
		next.Bestandsomvang = &size
	case omvangChanged(latest.Bestandsomvang, next.Bestandsomvang) && next.Bestandsomvang != nil && *next.Bestandsomvang > 0:
		// A changed size restarts the chunked upload; previously uploaded
		// parts are discarded.
		if err := s.discardBestandsdelen(ctx, id); err != nil {
			return nil, nil, err
		}
		delen = s.generateBestandsdelen(id, *next.Bestandsomvang)
	default:
		// Metadata-only change: the new version keeps the previous content.
		next.ContentKey = latest.ContentKey
		next.Bestandsomvang = latest.Bestandsomvang
	}

	actie := audittrail.ActieUpdate
	if partial {
		actie = audittrail.ActiePartialUpdate
	}
	oldView := auditView(&Document{InformatieObject: *existing, Versie: *latest})
	result := Document{InformatieObject: canoniek, Versie: next}
	docURL := s.DocumentURL(id)

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.UpdateCanoniek(ctx, canoniek); err != nil {
			return err
		}
		if err := s.store.AppendVersie(ctx, next); err != nil {
			return err
		}
		if len(delen) > 0 {
			if err := s.store.CreateBestandsDelen(ctx, delen); err != nil {
				return err
			}
		}
		if len(inhoud) > 0 {
			if _, err := s.backend.Put(ctx, next.ContentKey, bytes.NewReader(inhoud)); err != nil {
				return err
			}
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       actie,
			Resultaat:   200,
			HoofdObject: docURL,
			Resource:    "enkelvoudiginformatieobject",
			ResourceURL: docURL,
			Old:         oldView,
			New:         auditView(&result),
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "update", docURL, "enkelvoudiginformatieobject", docURL, documentKenmerken(&canoniek))
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.events.Emit(ctx, notifications.EventDocumentBijgewerkt, uuid.UUID(id), docURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventDocumentBijgewerkt, "error", err)
	}
	return &result, delen, nil
}

// DeleteDocument destroys a document, its versions, content and audit trail.
// Documents still cited by a case or decision cannot be removed.
func (s *Service) DeleteDocument(ctx context.Context, id domain.DocumentID) error {
	canoniek, err := s.store.GetInformatieObject(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenVerwijderen, refURL(canoniek.Informatieobjecttype), canoniek.Vertrouwelijkheid); err != nil {
		return err
	}
	relaties, err := s.store.ListObjectInformatieObjecten(ctx, OIOFilter{DocumentID: &id})
	if err != nil {
		return err
	}
	if len(relaties) > 0 {
		return dErrors.New(dErrors.CodePendingRelations, "the document is still related to cases or decisions")
	}

	versies, err := s.store.ListVersies(ctx, id)
	if err != nil {
		return err
	}
	delen, err := s.store.ListBestandsDelen(ctx, id)
	if err != nil {
		return err
	}

	docURL := s.DocumentURL(id)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteDocument(ctx, id); err != nil {
			return err
		}
		for _, v := range versies {
			if v.ContentKey == "" {
				continue
			}
			if err := s.backend.Delete(ctx, v.ContentKey); err != nil {
				return err
			}
		}
		for _, deel := range delen {
			if err := s.backend.Delete(ctx, partKey(id, deel.Volgnummer)); err != nil {
				return err
			}
		}
		if err := s.audit.Purge(ctx, docURL); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", docURL, "enkelvoudiginformatieobject", docURL, documentKenmerken(canoniek))
	})
	if err != nil {
		return err
	}

	if err := s.events.Emit(ctx, notifications.EventDocumentVerwijderd, uuid.UUID(id), docURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventDocumentVerwijderd, "error", err)
	}
	return nil
}

// Download streams the content of a document version.
func (s *Service) Download(ctx context.Context, id domain.DocumentID, versie int) (io.ReadCloser, *Versie, error) {
	doc, err := s.GetDocument(ctx, id, versie)
	if err != nil {
		return nil, nil, err
	}
	if doc.ContentKey == "" {
		return nil, nil, sentinel.ErrNotFound
	}
	r, err := s.backend.Get(ctx, doc.ContentKey)
	if err != nil {
		return nil, nil, err
	}
	return r, &doc.Versie, nil
}

// checkGebruiksrechtIndicatie keeps the canonical flag consistent with the
// gebruiksrechten rows.
func (s *Service) checkGebruiksrechtIndicatie(ctx context.Context, id domain.DocumentID, indicatie *bool) error {
	rechten, err := s.store.ListGebruiksrechten(ctx, id)
	if err != nil {
		return err
	}
	if indicatie != nil && *indicatie && len(rechten) == 0 {
		return dErrors.Param("indicatieGebruiksrecht", dErrors.CodeMissingGebruiksrechten,
			"usage rights must be registered through the gebruiksrechten resource")
	}
	if (indicatie == nil || !*indicatie) && len(rechten) > 0 {
		return dErrors.Param("indicatieGebruiksrecht", dErrors.CodeExistingGebruiksrechten,
			"the document still has registered usage rights")
	}
	return nil
}

func omvangChanged(prev, next *int64) bool {
	if prev == nil || next == nil {
		return (prev == nil) != (next == nil)
	}
	return *prev != *next
}

// auditView is the serialised snapshot stored in audit entries. The lock
// token is write-only and never recorded.
func auditView(doc *Document) map[string]any {
	return map[string]any{
		"identificatie":               doc.Identificatie,
		"bronorganisatie":             doc.Bronorganisatie,
		"informatieobjecttype":        refURL(doc.Informatieobjecttype),
		"vertrouwelijkheidaanduiding": string(doc.Vertrouwelijkheid),
		"titel":                       doc.Titel,
		"auteur":                      doc.Auteur,
		"status":                      doc.Status,
		"versie":                      doc.Versie.Versie,
		"locked":                      doc.Locked(),
	}
}
