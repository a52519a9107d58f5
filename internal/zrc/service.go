package zrc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
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

// Deps bundles the collaborators of the case service.
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

// Service implements the case registration operations.
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

// ZaakURL renders the canonical URL of a case.
func (s *Service) ZaakURL(id domain.ZaakID) string {
	return s.splitter.ResourceURL("zaken", uuid.UUID(id))
}

func (s *Service) zaakKenmerken(zaak *Zaak) map[string]string {
	return map[string]string{
		"bronorganisatie":             zaak.Bronorganisatie,
		"zaaktype":                    refURL(zaak.Zaaktype),
		"vertrouwelijkheidaanduiding": string(zaak.Vertrouwelijkheid),
	}
}

// fetchZaaktype resolves and validates the case type reference.
func (s *Service) fetchZaaktype(ctx context.Context, ref reference.Ref) (*catalogi.Zaaktype, error) {
	if !ref.IsRemote() {
		return nil, dErrors.Param("zaaktype", dErrors.CodeBadURL, "zaaktype must be a catalog URL")
	}
	zt, err := s.catalogi.Zaaktype(ctx, ref.URL())
	if err != nil {
		return nil, dErrors.Param("zaaktype", dErrors.CodeOf(err), "the zaaktype could not be resolved")
	}
	return zt, nil
}

func generateIdentificatie(now time.Time) string {
	return fmt.Sprintf("ZAAK-%d-%010d", now.Year(), rand.Int64N(1e10))
}

// CreateZaak registers a new case.
func (s *Service) CreateZaak(ctx context.Context, zaak Zaak) (*Zaak, error) {
	if zaak.Zaaktype.IsZero() {
		return nil, dErrors.Param("zaaktype", dErrors.CodeInvalidInput, "zaaktype is required")
	}
	zt, err := s.fetchZaaktype(ctx, zaak.Zaaktype)
	if err != nil {
		return nil, err
	}
	if err := catalogi.CheckPublished("zaaktype", zt.Concept); err != nil {
		return nil, err
	}

	if zaak.Vertrouwelijkheid == "" {
		vert, err := domain.ParseVertrouwelijkheid(zt.Vertrouwelijkheid)
		if err != nil {
			vert = domain.VertrouwelijkheidOpenbaar
		}
		zaak.Vertrouwelijkheid = vert
	}

	if err := s.authz.Authorize(ctx, domain.ComponentZRC, domain.ScopeZakenAanmaken, refURL(zaak.Zaaktype), zaak.Vertrouwelijkheid); err != nil {
		return nil, err
	}

	if !zaak.Hoofdzaak.IsZero() {
		if err := s.checkHoofdzaak(ctx, zaak.Hoofdzaak); err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	if zaak.Identificatie == "" {
		zaak.Identificatie = generateIdentificatie(now)
	} else {
		taken, err := s.store.IdentificatieExists(ctx, zaak.Bronorganisatie, zaak.Identificatie)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, dErrors.Param("identificatie", dErrors.CodeIdentificatieNietUniek,
				"the identification is already in use within this organisation")
		}
	}

	zaak.ID = domain.ZaakID(uuid.New())
	if zaak.Registratiedatum.IsZero() {
		zaak.Registratiedatum = domain.DateOf(now)
	}

	zaakURL := s.ZaakURL(zaak.ID)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateZaak(ctx, zaak); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Param("identificatie", dErrors.CodeIdentificatieNietUniek,
					"the identification is already in use within this organisation")
			}
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "zaak",
			ResourceURL: zaakURL,
			New:         zaak,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "zaak", zaakURL, s.zaakKenmerken(&zaak))
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, notifications.EventZaakGeregistreerd, uuid.UUID(zaak.ID), zaakURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventZaakGeregistreerd, "error", err)
	}
	return &zaak, nil
}

// checkHoofdzaak enforces one-level nesting: the parent may not itself be a
// subcase.
func (s *Service) checkHoofdzaak(ctx context.Context, hoofdzaak reference.Ref) error {
	if hoofdzaak.IsRemote() {
		var parent struct {
			Hoofdzaak string `json:"hoofdzaak"`
		}
		if err := s.resolver.FetchInto(ctx, hoofdzaak.URL(), &parent); err != nil {
			return dErrors.Param("hoofdzaak", dErrors.CodeOf(err), "the hoofdzaak could not be resolved")
		}
		if parent.Hoofdzaak != "" {
			return dErrors.Param("hoofdzaak", dErrors.CodeDeelzaakAlsHoofdzaak, "a subcase cannot be used as a parent case")
		}
		return nil
	}

	isDeelzaak, err := s.store.IsDeelzaak(ctx, domain.ZaakID(hoofdzaak.LocalID()))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Param("hoofdzaak", dErrors.CodeBadURL, "the hoofdzaak does not exist")
		}
		return err
	}
	if isDeelzaak {
		return dErrors.Param("hoofdzaak", dErrors.CodeDeelzaakAlsHoofdzaak, "a subcase cannot be used as a parent case")
	}
	return nil
}

// GetZaak retrieves one case, enforcing the object-level permission.
func (s *Service) GetZaak(ctx context.Context, id domain.ZaakID) (*Zaak, error) {
	zaak, err := s.store.GetZaak(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentZRC, domain.ScopeZakenLezen, refURL(zaak.Zaaktype), zaak.Vertrouwelijkheid); err != nil {
		return nil, err
	}
	return zaak, nil
}

// ListZaken returns the page of cases the caller is entitled to see.
func (s *Service) ListZaken(ctx context.Context, filter ZaakFilter) (*Page, error) {
	authFilter, err := s.authz.FilterFor(ctx, domain.ComponentZRC, domain.ScopeZakenLezen)
	if err != nil {
		return nil, err
	}
	zaken, total, err := s.store.ListZaken(ctx, filter, authFilter)
	if err != nil {
		return nil, err
	}
	next, previous := s.splitter.PageLinks("zaken", filter.Page, filter.PageSize, total)
	return &Page{Count: total, Next: next, Previous: previous, Results: zaken}, nil
}

// ZoekZaken is the geometry search. An empty body is rejected so clients do
// not accidentally list everything through the search endpoint.
func (s *Service) ZoekZaken(ctx context.Context, filter ZaakFilter) (*Page, error) {
	if len(filter.Within) == 0 {
		return nil, dErrors.New(dErrors.CodeEmptySearchBody, "the search body must contain a geometry filter")
	}
	if _, err := outerRing(filter.Within); err != nil {
		return nil, err
	}
	return s.ListZaken(ctx, filter)
}

// UpdateZaak applies a full or partial update.
func (s *Service) UpdateZaak(ctx context.Context, id domain.ZaakID, updated Zaak) (*Zaak, error) {
	existing, err := s.store.GetZaak(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentZRC, domain.ScopeZakenBijwerken, refURL(existing.Zaaktype), existing.Vertrouwelijkheid); err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, id); err != nil {
		return nil, err
	}
	if err := reference.CheckImmutable("zaaktype", existing.Zaaktype, updated.Zaaktype); err != nil {
		return nil, err
	}
	if updated.Identificatie != "" && updated.Identificatie != existing.Identificatie {
		return nil, dErrors.Param("identificatie", dErrors.CodeImmutableField, "this field may not be changed after creation")
	}
	if !updated.Hoofdzaak.IsZero() && !updated.Hoofdzaak.Equal(existing.Hoofdzaak) {
		if !updated.Hoofdzaak.IsRemote() && domain.ZaakID(updated.Hoofdzaak.LocalID()) == id {
			return nil, dErrors.Param("hoofdzaak", dErrors.CodeSelfForbidden, "a case cannot be its own parent case")
		}
		if err := s.checkHoofdzaak(ctx, updated.Hoofdzaak); err != nil {
			return nil, err
		}
	}

	updated.ID = existing.ID
	updated.Identificatie = existing.Identificatie
	updated.Zaaktype = existing.Zaaktype
	updated.Registratiedatum = existing.Registratiedatum
	if updated.Vertrouwelijkheid == "" {
		updated.Vertrouwelijkheid = existing.Vertrouwelijkheid
	}

	zaakURL := s.ZaakURL(id)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.UpdateZaak(ctx, updated); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieUpdate,
			Resultaat:   200,
			HoofdObject: zaakURL,
			Resource:    "zaak",
			ResourceURL: zaakURL,
			Old:         existing,
			New:         updated,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "update", zaakURL, "zaak", zaakURL, s.zaakKenmerken(&updated))
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, notifications.EventZaakBijgewerkt, uuid.UUID(id), zaakURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventZaakBijgewerkt, "error", err)
	}
	return &updated, nil
}

// DeleteZaak destroys a case and everything hanging off it, including its
// audit trail.
func (s *Service) DeleteZaak(ctx context.Context, id domain.ZaakID) error {
	zaak, err := s.store.GetZaak(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentZRC, domain.ScopeZakenVerwijderen, refURL(zaak.Zaaktype), zaak.Vertrouwelijkheid); err != nil {
		return err
	}

	zaakURL := s.ZaakURL(id)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteZaak(ctx, id); err != nil {
			return err
		}
		if err := s.audit.Purge(ctx, zaakURL); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", zaakURL, "zaak", zaakURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return err
	}

	if err := s.events.Emit(ctx, notifications.EventZaakVerwijderd, uuid.UUID(id), zaakURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventZaakVerwijderd, "error", err)
	}
	return nil
}

// AddStatus appends a status to the case's history and moves the lifecycle
// state. Concurrent additions serialise on the case row lock; the closed
// check runs again inside the transaction.
func (s *Service) AddStatus(ctx context.Context, zaakID domain.ZaakID, statustypeURL string, datum time.Time, toelichting string) (*Status, error) {
	zaak, err := s.store.GetZaak(ctx, zaakID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentZRC, domain.ScopeStatussenToevoegen, refURL(zaak.Zaaktype), zaak.Vertrouwelijkheid); err != nil {
		return nil, err
	}

	st, err := s.catalogi.Statustype(ctx, statustypeURL)
	if err != nil {
		return nil, dErrors.Param("statustype", dErrors.CodeOf(err), "the statustype could not be resolved")
	}
	if err := catalogi.CheckStatustypeZaaktype(st, refURL(zaak.Zaaktype)); err != nil {
		return nil, err
	}

	status := Status{
		ID:                domain.StatusID(uuid.New()),
		ZaakID:            zaakID,
		Statustype:        statustypeURL,
		DatumStatusGezet:  datum,
		Statustoelichting: toelichting,
		IsEindstatus:      st.IsEindstatus,
	}

	zaakURL := s.ZaakURL(zaakID)
	var closing, reopening bool
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.LockZaak(ctx, zaakID); err != nil {
			return err
		}
		closed, err := s.IsClosed(ctx, zaakID)
		if err != nil {
			return err
		}

		switch {
		case closed && !st.IsEindstatus:
			// Reopening a closed case.
			ok, err := s.authz.HasScope(ctx, domain.ComponentZRC, domain.ScopeZakenHeropenen)
			if err != nil {
				return err
			}
			if !ok {
				return dErrors.New(dErrors.CodeForbidden, "reopening a closed case requires the reopen scope")
			}
			reopening = true
		case closed && st.IsEindstatus:
			ok, err := s.authz.HasScope(ctx, domain.ComponentZRC, domain.ScopeZakenGeforceerdBijwerken)
			if err != nil {
				return err
			}
			if !ok {
				return dErrors.New(dErrors.CodeForbidden, "the case is closed; mutations require the forced update scope")
			}
		case st.IsEindstatus:
			closing = true
		}

		if err := s.store.CreateStatus(ctx, status); err != nil {
			return err
		}

		current := *zaak
		if closing || (closed && st.IsEindstatus) {
			einddatum := domain.DateOf(datum)
			current.Einddatum = &einddatum
		}
		if reopening {
			current.Einddatum = nil
		}
		if err := s.store.UpdateZaak(ctx, current); err != nil {
			return err
		}

		statusURL := s.splitter.ResourceURL("statussen", uuid.UUID(status.ID))
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "status",
			ResourceURL: statusURL,
			New:         status,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "status", statusURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}

	switch {
	case closing:
		if err := s.events.Emit(ctx, notifications.EventZaakAfgesloten, uuid.UUID(zaakID), zaakURL, nil); err != nil {
			s.logger.Error("cloud event emission failed", "event", notifications.EventZaakAfgesloten, "error", err)
		}
	case reopening:
		if err := s.events.Emit(ctx, notifications.EventZaakHeropend, uuid.UUID(zaakID), zaakURL, nil); err != nil {
			s.logger.Error("cloud event emission failed", "event", notifications.EventZaakHeropend, "error", err)
		}
	}
	return &status, nil
}

// ListStatussen returns the status history of a case.
func (s *Service) ListStatussen(ctx context.Context, zaakID domain.ZaakID) ([]Status, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.ListStatussen(ctx, zaakID)
}

// Opschorten suspends or resumes the case's term.
func (s *Service) Opschorten(ctx context.Context, zaakID domain.ZaakID, opschorting Opschorting) (*Zaak, error) {
	zaak, err := s.GetZaak(ctx, zaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, zaakID); err != nil {
		return nil, err
	}

	updated := *zaak
	updated.Opschorting = opschorting
	zaakURL := s.ZaakURL(zaakID)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.UpdateZaak(ctx, updated); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActiePartialUpdate,
			Resultaat:   200,
			HoofdObject: zaakURL,
			Resource:    "zaak",
			ResourceURL: zaakURL,
			Old:         zaak,
			New:         updated,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "partial_update", zaakURL, "zaak", zaakURL, s.zaakKenmerken(&updated))
	})
	if err != nil {
		return nil, err
	}

	if opschorting.Indicatie {
		if err := s.events.Emit(ctx, notifications.EventZaakOpgeschort, uuid.UUID(zaakID), zaakURL, nil); err != nil {
			s.logger.Error("cloud event emission failed", "event", notifications.EventZaakOpgeschort, "error", err)
		}
	}
	return &updated, nil
}

// Verlengen extends the case's planned end date by the given number of days.
func (s *Service) Verlengen(ctx context.Context, zaakID domain.ZaakID, verlenging Verlenging) (*Zaak, error) {
	if verlenging.DuurDays <= 0 {
		return nil, dErrors.Param("verlenging.duur", dErrors.CodeInvalidInput, "the extension must be a positive number of days")
	}
	zaak, err := s.GetZaak(ctx, zaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, zaakID); err != nil {
		return nil, err
	}

	updated := *zaak
	updated.Verlenging = verlenging
	if updated.EinddatumGepland != nil {
		extended := updated.EinddatumGepland.AddDays(verlenging.DuurDays)
		updated.EinddatumGepland = &extended
	}

	zaakURL := s.ZaakURL(zaakID)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.UpdateZaak(ctx, updated); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActiePartialUpdate,
			Resultaat:   200,
			HoofdObject: zaakURL,
			Resource:    "zaak",
			ResourceURL: zaakURL,
			Old:         zaak,
			New:         updated,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "partial_update", zaakURL, "zaak", zaakURL, s.zaakKenmerken(&updated))
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Emit(ctx, notifications.EventZaakVerlengd, uuid.UUID(zaakID), zaakURL, nil); err != nil {
		s.logger.Error("cloud event emission failed", "event", notifications.EventZaakVerlengd, "error", err)
	}
	return &updated, nil
}

// Afsluiten closes a case in one call: set the result, then the end status.
func (s *Service) Afsluiten(ctx context.Context, zaakID domain.ZaakID, resultaattypeURL, toelichting, statustypeURL string) (*Zaak, error) {
	if _, err := s.AddResultaat(ctx, Resultaat{ZaakID: zaakID, Resultaattype: resultaattypeURL, Toelichting: toelichting}); err != nil {
		return nil, err
	}
	if _, err := s.AddStatus(ctx, zaakID, statustypeURL, requestcontext.Now(ctx), toelichting); err != nil {
		return nil, err
	}
	return s.store.GetZaak(ctx, zaakID)
}
