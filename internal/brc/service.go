package brc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"

	"zgw/internal/audittrail"
	"zgw/internal/authz"
	"zgw/internal/catalogi"
	"zgw/internal/mirror"
	"zgw/internal/notifications"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/platform/tx"
	"zgw/pkg/requestcontext"
)

// Deps bundles the collaborators of the decision service.
type Deps struct {
	Store    Store
	Authz    *authz.Service
	Catalogi *catalogi.Client
	// Resolver dereferences remote resource URLs; production wires the
	// reference resolver.
	Resolver catalogi.Fetcher
	Splitter *reference.Splitter
	Syncer   *mirror.Syncer
	Audit    *audittrail.Recorder
	Notify   *notifications.Emitter
	Events   *notifications.CloudEventEmitter
	// DB enables real transactions; nil (memory stores) runs callbacks
	// directly.
	DB     *sql.DB
	Logger *slog.Logger
}

// Service implements the decision registration operations.
type Service struct {
	store    Store
	authz    *authz.Service
	catalogi *catalogi.Client
	resolver catalogi.Fetcher
	splitter *reference.Splitter
	syncer   *mirror.Syncer
	audit    *audittrail.Recorder
	notify   *notifications.Emitter
	events   *notifications.CloudEventEmitter
	db       *sql.DB
	logger   *slog.Logger
}

func NewService(deps Deps) *Service {
	return &Service{
		store:    deps.Store,
		authz:    deps.Authz,
		catalogi: deps.Catalogi,
		resolver: deps.Resolver,
		splitter: deps.Splitter,
		syncer:   deps.Syncer,
		audit:    deps.Audit,
		notify:   deps.Notify,
		events:   deps.Events,
		db:       deps.DB,
		logger:   deps.Logger,
	}
}

func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return tx.Run(ctx, s.db, fn)
}

// BesluitURL renders the canonical URL of a decision.
func (s *Service) BesluitURL(id domain.BesluitID) string {
	return s.splitter.ResourceURL("besluiten", uuid.UUID(id))
}

func besluitKenmerken(besluit *Besluit) map[string]string {
	return map[string]string{
		"verantwoordelijkeOrganisatie": besluit.VerantwoordelijkeOrganisatie,
		"besluittype":                  refURL(besluit.Besluittype),
	}
}

// fetchBesluittype resolves and validates the decision type reference.
func (s *Service) fetchBesluittype(ctx context.Context, ref reference.Ref) (*catalogi.Besluittype, error) {
	if !ref.IsRemote() {
		return nil, dErrors.Param("besluittype", dErrors.CodeBadURL, "besluittype must be a catalog URL")
	}
	bt, err := s.catalogi.Besluittype(ctx, ref.URL())
	if err != nil {
		return nil, dErrors.Param("besluittype", dErrors.CodeOf(err), "the besluittype could not be resolved")
	}
	return bt, nil
}

// checkZaak validates that the referenced case's type is compatible with the
// decision type, and returns the case URL for the mirror call.
func (s *Service) checkZaak(ctx context.Context, zaak reference.Ref, bt *catalogi.Besluittype) (string, error) {
	zaakURL := s.splitter.Render("zaken", zaak)
	var remote struct {
		Zaaktype string `json:"zaaktype"`
	}
	if err := s.resolver.FetchInto(ctx, zaakURL, &remote); err != nil {
		return "", dErrors.Param("zaak", dErrors.CodeOf(err), "the zaak could not be resolved")
	}
	zt, err := s.catalogi.Zaaktype(ctx, remote.Zaaktype)
	if err != nil {
		return "", dErrors.Param("zaak", dErrors.CodeOf(err), "the zaaktype of the zaak could not be resolved")
	}
	if err := catalogi.CheckZaaktypeBesluittype(zt, bt); err != nil {
		return "", err
	}
	return zaakURL, nil
}

func generateIdentificatie(now time.Time) string {
	return fmt.Sprintf("BESLUIT-%d-%010d", now.Year(), rand.Int64N(1e10))
}

// zaakBesluitRemote describes the ZRC-side mirror row for a case relation.
func zaakBesluitRemote(zaakURL, besluitURL string) *mirror.CreateRemote {
	return &mirror.CreateRemote{
		CollectionURL: zaakURL + "/besluiten",
		Body:          map[string]string{"besluit": besluitURL},
	}
}

// CreateBesluit registers a new decision. When the decision cites a case, the
// ZRC-side zaakbesluit row is materialised through the mirror protocol.
func (s *Service) CreateBesluit(ctx context.Context, besluit Besluit) (*Besluit, error) {
	if besluit.Besluittype.IsZero() {
		return nil, dErrors.Param("besluittype", dErrors.CodeInvalidInput, "besluittype is required")
	}
	bt, err := s.fetchBesluittype(ctx, besluit.Besluittype)
	if err != nil {
		return nil, err
	}
	if err := catalogi.CheckPublished("besluittype", bt.Concept); err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, domain.ComponentBRC, domain.ScopeBesluitenAanmaken, refURL(besluit.Besluittype), domain.VertrouwelijkheidOpenbaar); err != nil {
		return nil, err
	}

	var zaakURL string
	if !besluit.Zaak.IsZero() {
		zaakURL, err = s.checkZaak(ctx, besluit.Zaak, bt)
		if err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	if besluit.Identificatie == "" {
		besluit.Identificatie = generateIdentificatie(now)
	} else {
		taken, err := s.store.IdentificatieExists(ctx, besluit.VerantwoordelijkeOrganisatie, besluit.Identificatie)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, dErrors.Param("identificatie", dErrors.CodeIdentificatieNietUniek,
				"the identification is already in use within this organisation")
		}
	}

	besluit.ID = domain.BesluitID(uuid.New())
	if besluit.Datum.IsZero() {
		besluit.Datum = domain.DateOf(now)
	}

	besluitURL := s.BesluitURL(besluit.ID)
	var remote *mirror.CreateRemote
	if zaakURL != "" {
		remote = zaakBesluitRemote(zaakURL, besluitURL)
	}

	err = s.syncer.Create(ctx,
		func(ctx context.Context) error {
			if err := s.store.CreateBesluit(ctx, besluit); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.Param("identificatie", dErrors.CodeIdentificatieNietUniek,
						"the identification is already in use within this organisation")
				}
				return err
			}
			return nil
		},
		remote,
		func(ctx context.Context, mirrorURL string) error {
			besluit.ZaakMirrorURL = mirrorURL
			return s.store.SetZaakMirrorURL(ctx, besluit.ID, mirrorURL)
		},
		func(ctx context.Context) error {
			return s.store.DeleteBesluit(ctx, besluit.ID)
		},
	)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: besluitURL,
			Resource:    "besluit",
			ResourceURL: besluitURL,
			New:         besluit,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", besluitURL, "besluit", besluitURL, besluitKenmerken(&besluit))
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, notifications.EventBesluitGeregistreerd, uuid.UUID(besluit.ID), besluitURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventBesluitGeregistreerd, "error", err)
	}
	return &besluit, nil
}

// GetBesluit retrieves one decision, enforcing the object-level permission.
func (s *Service) GetBesluit(ctx context.Context, id domain.BesluitID) (*Besluit, error) {
	besluit, err := s.store.GetBesluit(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentBRC, domain.ScopeBesluitenLezen, refURL(besluit.Besluittype), domain.VertrouwelijkheidOpenbaar); err != nil {
		return nil, err
	}
	return besluit, nil
}

// ListBesluiten returns the page of decisions the caller is entitled to see.
func (s *Service) ListBesluiten(ctx context.Context, filter BesluitFilter) (*Page, error) {
	authFilter, err := s.authz.FilterFor(ctx, domain.ComponentBRC, domain.ScopeBesluitenLezen)
	if err != nil {
		return nil, err
	}
	besluiten, total, err := s.store.ListBesluiten(ctx, filter, authFilter)
	if err != nil {
		return nil, err
	}
	next, previous := s.splitter.PageLinks("besluiten", filter.Page, filter.PageSize, total)
	return &Page{Count: total, Next: next, Previous: previous, Results: besluiten}, nil
}

// UpdateBesluit applies a full or partial update. Moving the decision to
// another case swaps the ZRC-side mirror row.
func (s *Service) UpdateBesluit(ctx context.Context, id domain.BesluitID, updated Besluit) (*Besluit, error) {
	existing, err := s.store.GetBesluit(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentBRC, domain.ScopeBesluitenBijwerken, refURL(existing.Besluittype), domain.VertrouwelijkheidOpenbaar); err != nil {
		return nil, err
	}
	if err := reference.CheckImmutable("besluittype", existing.Besluittype, updated.Besluittype); err != nil {
		return nil, err
	}
	if updated.Identificatie != "" && updated.Identificatie != existing.Identificatie {
		return nil, dErrors.Param("identificatie", dErrors.CodeImmutableField, "this field may not be changed after creation")
	}
	if updated.VerantwoordelijkeOrganisatie != "" && updated.VerantwoordelijkeOrganisatie != existing.VerantwoordelijkeOrganisatie {
		return nil, dErrors.Param("verantwoordelijkeOrganisatie", dErrors.CodeImmutableField, "this field may not be changed after creation")
	}

	updated.ID = existing.ID
	updated.Identificatie = existing.Identificatie
	updated.VerantwoordelijkeOrganisatie = existing.VerantwoordelijkeOrganisatie
	updated.Besluittype = existing.Besluittype
	updated.ZaakMirrorURL = existing.ZaakMirrorURL

	besluitURL := s.BesluitURL(id)
	if existing.Zaak.Equal(updated.Zaak) {
		if err := s.store.UpdateBesluit(ctx, updated); err != nil {
			return nil, err
		}
	} else {
		var remote *mirror.CreateRemote
		if !updated.Zaak.IsZero() {
			bt, err := s.fetchBesluittype(ctx, existing.Besluittype)
			if err != nil {
				return nil, err
			}
			zaakURL, err := s.checkZaak(ctx, updated.Zaak, bt)
			if err != nil {
				return nil, err
			}
			remote = zaakBesluitRemote(zaakURL, besluitURL)
		}
		err = s.syncer.Swap(ctx,
			func(ctx context.Context) error { return s.store.UpdateBesluit(ctx, updated) },
			existing.ZaakMirrorURL,
			remote,
			func(ctx context.Context, mirrorURL string) error {
				updated.ZaakMirrorURL = mirrorURL
				return s.store.SetZaakMirrorURL(ctx, id, mirrorURL)
			},
			func(ctx context.Context) error {
				return s.store.UpdateBesluit(ctx, *existing)
			},
		)
		if err != nil {
			return nil, err
		}
	}
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieUpdate,
			Resultaat:   200,
			HoofdObject: besluitURL,
			Resource:    "besluit",
			ResourceURL: besluitURL,
			Old:         existing,
			New:         updated,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "update", besluitURL, "besluit", besluitURL, besluitKenmerken(&updated))
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, notifications.EventBesluitBijgewerkt, uuid.UUID(id), besluitURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventBesluitBijgewerkt, "error", err)
	}
	return &updated, nil
}

// DeleteBesluit destroys a decision, its document relations and their remote
// mirrors, and its audit trail.
func (s *Service) DeleteBesluit(ctx context.Context, id domain.BesluitID) error {
	besluit, err := s.store.GetBesluit(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentBRC, domain.ScopeBesluitenVerwijderen, refURL(besluit.Besluittype), domain.VertrouwelijkheidOpenbaar); err != nil {
		return err
	}

	// Document relations go first so their DRC mirrors are cleaned up through
	// the regular protocol.
	bios, err := s.store.ListBesluitInformatieObjecten(ctx, id)
	if err != nil {
		return err
	}
	for _, bio := range bios {
		if err := s.removeBesluitInformatieObject(ctx, &bio, besluit); err != nil {
			return err
		}
	}
	return s.removeBesluit(ctx, besluit)
}

// removeBesluit unwinds the decision row, its ZRC mirror and its audit trail.
// Callers hold the scope check; Verwerken also uses this to roll back a
// decision it created itself.
func (s *Service) removeBesluit(ctx context.Context, besluit *Besluit) error {
	besluitURL := s.BesluitURL(besluit.ID)
	err := s.syncer.Delete(ctx,
		func(ctx context.Context) error {
			return s.store.DeleteBesluit(ctx, besluit.ID)
		},
		besluit.ZaakMirrorURL,
		func(ctx context.Context) error {
			return s.store.CreateBesluit(ctx, *besluit)
		},
	)
	if err != nil {
		return err
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.audit.Purge(ctx, besluitURL); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", besluitURL, "besluit", besluitURL, besluitKenmerken(besluit))
	})
	if err != nil {
		return err
	}

	if err := s.events.Emit(ctx, notifications.EventBesluitVerwijderd, uuid.UUID(besluit.ID), besluitURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventBesluitVerwijderd, "error", err)
	}
	return nil
}

// Verwerken registers a decision together with its document relations in one
// call. The call is all-or-nothing: when a relation fails, the relations
// registered so far and the decision itself are unwound again, DRC and ZRC
// mirrors included, before the error surfaces.
func (s *Service) Verwerken(ctx context.Context, besluit Besluit, informatieobjecten []reference.Ref) (*Besluit, []BesluitInformatieObject, error) {
	created, err := s.CreateBesluit(ctx, besluit)
	if err != nil {
		return nil, nil, err
	}
	bios := make([]BesluitInformatieObject, 0, len(informatieobjecten))
	for _, io := range informatieobjecten {
		bio, err := s.AddBesluitInformatieObject(ctx, BesluitInformatieObject{
			BesluitID:        created.ID,
			InformatieObject: io,
		})
		if err != nil {
			s.unwindVerwerken(ctx, created, bios)
			return nil, nil, err
		}
		bios = append(bios, *bio)
	}
	return created, bios, nil
}

// unwindVerwerken rolls back a half-finished Verwerken call. Rollback
// failures are logged rather than surfaced so the original error reaches the
// caller.
func (s *Service) unwindVerwerken(ctx context.Context, besluit *Besluit, bios []BesluitInformatieObject) {
	for i := len(bios) - 1; i >= 0; i-- {
		if err := s.removeBesluitInformatieObject(ctx, &bios[i], besluit); err != nil {
			s.logger.Error("verwerken rollback failed", "besluitinformatieobject", uuid.UUID(bios[i].ID), "error", err)
		}
	}
	if err := s.removeBesluit(ctx, besluit); err != nil {
		s.logger.Error("verwerken rollback failed", "besluit", uuid.UUID(besluit.ID), "error", err)
	}
}

// peerCollection derives a sibling collection URL from a resource URL in the
// same service, e.g. {drc}/enkelvoudiginformatieobjecten/{uuid} to
// {drc}/objectinformatieobjecten.
func peerCollection(resourceURL, collection string) (string, error) {
	u, err := url.Parse(resourceURL)
	if err != nil || !u.IsAbs() {
		return "", dErrors.New(dErrors.CodeBadURL, "the resource URL is not absolute")
	}
	u.Path = path.Join(path.Dir(path.Dir(u.Path)), collection)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
