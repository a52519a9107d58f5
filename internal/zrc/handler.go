package zrc

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"zgw/internal/audittrail"
	"zgw/internal/platform/middleware"
	"zgw/internal/reference"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/httputil"
	"zgw/pkg/platform/sentinel"
)

// Handler wires the case endpoints to the case service.
type Handler struct {
	service  *Service
	audit    *audittrail.Recorder
	splitter *reference.Splitter
	logger   *slog.Logger
}

func NewHandler(service *Service, audit *audittrail.Recorder, splitter *reference.Splitter, logger *slog.Logger) *Handler {
	return &Handler{service: service, audit: audit, splitter: splitter, logger: logger}
}

// Register mounts the case endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/zaken", func(r chi.Router) {
		r.With(middleware.RequireCRS, middleware.AllowedQueryParams(
			"bronorganisatie", "identificatie", "zaaktype", "maximaleVertrouwelijkheidaanduiding", "page", "pageSize",
		)).Get("/", h.listZaken)
		r.With(middleware.RequireCRS).Post("/", h.createZaak)
		r.With(middleware.RequireCRS).Post("/_zoek", h.zoekZaken)

		r.Route("/{zaakUUID}", func(r chi.Router) {
			r.With(middleware.RequireCRS, middleware.ConditionalGET).Get("/", h.getZaak)
			r.With(middleware.RequireCRS).Put("/", h.updateZaak)
			r.With(middleware.RequireCRS).Patch("/", h.updateZaak)
			r.Delete("/", h.deleteZaak)

			r.Get("/audittrail", h.listAudit)
			r.Get("/audittrail/{auditUUID}", h.getAudit)

			r.Route("/besluiten", func(r chi.Router) {
				r.Get("/", h.listZaakBesluiten)
				r.Post("/", h.createZaakBesluit)
				r.Get("/{relUUID}", h.getZaakBesluit)
				r.Delete("/{relUUID}", h.deleteZaakBesluit)
			})

			r.Route("/zaakeigenschappen", func(r chi.Router) {
				r.Get("/", h.listZaakEigenschappen)
				r.Post("/", h.createZaakEigenschap)
				r.Get("/{eigenschapUUID}", h.getZaakEigenschap)
				r.Delete("/{eigenschapUUID}", h.deleteZaakEigenschap)
			})
		})
	})

	r.Route("/statussen", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("zaak", "statustype")).Get("/", h.listStatussen)
		r.Post("/", h.createStatus)
		r.Get("/{statusUUID}", h.getStatus)
	})

	r.Route("/resultaten", func(r chi.Router) {
		r.Post("/", h.createResultaat)
		r.Get("/{resultaatUUID}", h.getResultaat)
		r.Delete("/{resultaatUUID}", h.deleteResultaat)
	})

	r.Route("/rollen", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("zaak", "betrokkene")).Get("/", h.listRollen)
		r.Post("/", h.createRol)
		r.Get("/{rolUUID}", h.getRol)
		r.Delete("/{rolUUID}", h.deleteRol)
	})

	r.Route("/zaakobjecten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("zaak", "object")).Get("/", h.listZaakObjecten)
		r.Post("/", h.createZaakObject)
		r.Get("/{objectUUID}", h.getZaakObject)
		r.Delete("/{objectUUID}", h.deleteZaakObject)
	})

	r.Route("/klantcontacten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("zaak")).Get("/", h.listKlantContacten)
		r.Post("/", h.createKlantContact)
	})

	r.Route("/zaakinformatieobjecten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("zaak", "informatieobject")).Get("/", h.listZaakInformatieObjecten)
		r.Post("/", h.createZaakInformatieObject)
		r.Get("/{zioUUID}", h.getZaakInformatieObject)
		r.Delete("/{zioUUID}", h.deleteZaakInformatieObject)
	})

	// Convenience operations bundling common mutations in one call.
	r.Post("/registreerzaak", h.createZaak)
	r.Post("/zaakafsluiten/{zaakUUID}", h.afsluitenZaak)
	r.Post("/zaakopschorten/{zaakUUID}", h.opschortenZaak)
	r.Post("/zaakverlengen/{zaakUUID}", h.verlengenZaak)
	r.Post("/zaakbijwerken/{zaakUUID}", h.updateZaak)
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound)
		return uuid.UUID{}, false
	}
	return id, true
}

// zaakQueryParam extracts the case id from the "zaak" list filter.
func (h *Handler) zaakQueryParam(w http.ResponseWriter, r *http.Request) (domain.ZaakID, bool) {
	raw := r.URL.Query().Get("zaak")
	if raw == "" {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeInvalidInput, "the zaak filter is required"))
		return domain.ZaakID{}, false
	}
	id, ok := reference.UUIDFromURL(raw)
	if !ok {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeBadURL, "the zaak filter is not a resource URL"))
		return domain.ZaakID{}, false
	}
	return domain.ZaakID(id), true
}

func (h *Handler) createZaak(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[zaakRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaak, err := req.toZaak(h.splitter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, err := h.service.CreateZaak(r.Context(), zaak)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromZaak(created, h.splitter))
}

func (h *Handler) getZaak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	zaak, err := h.service.GetZaak(r.Context(), domain.ZaakID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaak(zaak, h.splitter))
}

func (h *Handler) listZaken(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ZaakFilter{
		Bronorganisatie: q.Get("bronorganisatie"),
		Identificatie:   q.Get("identificatie"),
		ZaaktypeURL:     q.Get("zaaktype"),
		Page:            intParam(q.Get("page"), 1),
		PageSize:        intParam(q.Get("pageSize"), 100),
	}
	if raw := q.Get("maximaleVertrouwelijkheidaanduiding"); raw != "" {
		vert, err := domain.ParseVertrouwelijkheid(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Param("maximaleVertrouwelijkheidaanduiding", dErrors.CodeInvalidInput, err.Error()))
			return
		}
		filter.MaxVertrouwelijkheid = &vert
	}
	page, err := h.service.ListZaken(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPage(page, h.splitter))
}

func (h *Handler) zoekZaken(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[zoekRequest](w, r, h.logger)
	if !ok {
		return
	}
	filter := ZaakFilter{
		Bronorganisatie: req.Bronorganisatie,
		ZaaktypeURL:     req.Zaaktype,
		Within:          req.Zaakgeometrie.Within,
		Page:            1,
		PageSize:        100,
	}
	page, err := h.service.ZoekZaken(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPage(page, h.splitter))
}

func (h *Handler) updateZaak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[zaakRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaak, err := req.toZaak(h.splitter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	updated, err := h.service.UpdateZaak(r.Context(), domain.ZaakID(id), zaak)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaak(updated, h.splitter))
}

func (h *Handler) deleteZaak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteZaak(r.Context(), domain.ZaakID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) afsluitenZaak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[struct {
		Resultaattype string `json:"resultaattype"`
		Statustype    string `json:"statustype"`
		Toelichting   string `json:"toelichting"`
	}](w, r, h.logger)
	if !ok {
		return
	}
	zaak, err := h.service.Afsluiten(r.Context(), domain.ZaakID(id), req.Resultaattype, req.Toelichting, req.Statustype)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaak(zaak, h.splitter))
}

func (h *Handler) opschortenZaak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[Opschorting](w, r, h.logger)
	if !ok {
		return
	}
	zaak, err := h.service.Opschorten(r.Context(), domain.ZaakID(id), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaak(zaak, h.splitter))
}

func (h *Handler) verlengenZaak(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[Verlenging](w, r, h.logger)
	if !ok {
		return
	}
	zaak, err := h.service.Verlengen(r.Context(), domain.ZaakID(id), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaak(zaak, h.splitter))
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	if _, err := h.service.GetZaak(r.Context(), domain.ZaakID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.audit.List(r.Context(), h.service.ZaakURL(domain.ZaakID(id)))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	auditID, ok := pathUUID(w, r, "auditUUID")
	if !ok {
		return
	}
	if _, err := h.service.GetZaak(r.Context(), domain.ZaakID(zaakID)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.audit.Get(r.Context(), h.service.ZaakURL(domain.ZaakID(zaakID)), auditID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) createStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[statusRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaakID, ok := reference.UUIDFromURL(req.Zaak)
	if !ok {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeBadURL, "the zaak is not a resource URL"))
		return
	}
	datum := req.DatumStatusGezet
	if datum.IsZero() {
		datum = time.Now()
	}
	status, err := h.service.AddStatus(r.Context(), domain.ZaakID(zaakID), req.Statustype, datum, req.Statustoelichting)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromStatus(status, h.splitter))
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "statusUUID")
	if !ok {
		return
	}
	status, err := h.service.store.GetStatus(r.Context(), domain.StatusID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.service.GetZaak(r.Context(), status.ZaakID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromStatus(status, h.splitter))
}

func (h *Handler) listStatussen(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := h.zaakQueryParam(w, r)
	if !ok {
		return
	}
	statussen, err := h.service.ListStatussen(r.Context(), zaakID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*statusResponse, 0, len(statussen))
	for i := range statussen {
		out = append(out, fromStatus(&statussen[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) createResultaat(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[resultaatRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaakID, ok := reference.UUIDFromURL(req.Zaak)
	if !ok {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeBadURL, "the zaak is not a resource URL"))
		return
	}
	resultaat, err := h.service.AddResultaat(r.Context(), Resultaat{
		ZaakID:        domain.ZaakID(zaakID),
		Resultaattype: req.Resultaattype,
		Toelichting:   req.Toelichting,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromResultaat(resultaat, h.splitter))
}

func (h *Handler) getResultaat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "resultaatUUID")
	if !ok {
		return
	}
	resultaat, err := h.service.GetResultaat(r.Context(), domain.ResultaatID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromResultaat(resultaat, h.splitter))
}

func (h *Handler) deleteResultaat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "resultaatUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteResultaat(r.Context(), domain.ResultaatID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createRol(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[rolRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaakID, ok := reference.UUIDFromURL(req.Zaak)
	if !ok {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeBadURL, "the zaak is not a resource URL"))
		return
	}
	rol, err := h.service.AddRol(r.Context(), Rol{
		ZaakID:         domain.ZaakID(zaakID),
		Betrokkene:     req.Betrokkene,
		BetrokkeneType: req.BetrokkeneType,
		Roltype:        req.Roltype,
		Roltoelichting: req.Roltoelichting,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromRol(rol, h.splitter))
}

func (h *Handler) getRol(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "rolUUID")
	if !ok {
		return
	}
	rol, err := h.service.GetRol(r.Context(), domain.RolID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRol(rol, h.splitter))
}

func (h *Handler) listRollen(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := h.zaakQueryParam(w, r)
	if !ok {
		return
	}
	rollen, err := h.service.ListRollen(r.Context(), zaakID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*rolResponse, 0, len(rollen))
	for i := range rollen {
		out = append(out, fromRol(&rollen[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteRol(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "rolUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteRol(r.Context(), domain.RolID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createZaakObject(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[zaakObjectRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaakID, ok := reference.UUIDFromURL(req.Zaak)
	if !ok {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeBadURL, "the zaak is not a resource URL"))
		return
	}
	zo, err := h.service.AddZaakObject(r.Context(), ZaakObject{
		ZaakID:              domain.ZaakID(zaakID),
		Object:              req.Object,
		ObjectType:          req.ObjectType,
		RelatieOmschrijving: req.RelatieOmschrijving,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromZaakObject(zo, h.splitter))
}

func (h *Handler) getZaakObject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "objectUUID")
	if !ok {
		return
	}
	zo, err := h.service.GetZaakObject(r.Context(), domain.ZaakObjectID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaakObject(zo, h.splitter))
}

func (h *Handler) listZaakObjecten(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := h.zaakQueryParam(w, r)
	if !ok {
		return
	}
	objecten, err := h.service.ListZaakObjecten(r.Context(), zaakID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*zaakObjectResponse, 0, len(objecten))
	for i := range objecten {
		out = append(out, fromZaakObject(&objecten[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteZaakObject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "objectUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteZaakObject(r.Context(), domain.ZaakObjectID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createZaakEigenschap(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[zaakEigenschapRequest](w, r, h.logger)
	if !ok {
		return
	}
	ze, err := h.service.AddZaakEigenschap(r.Context(), ZaakEigenschap{
		ZaakID:     domain.ZaakID(zaakID),
		Eigenschap: req.Eigenschap,
		Waarde:     req.Waarde,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromZaakEigenschap(ze, h.splitter))
}

func (h *Handler) getZaakEigenschap(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "eigenschapUUID")
	if !ok {
		return
	}
	ze, err := h.service.store.GetZaakEigenschap(r.Context(), domain.ZaakEigenschapID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.service.GetZaak(r.Context(), ze.ZaakID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaakEigenschap(ze, h.splitter))
}

func (h *Handler) listZaakEigenschappen(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	eigenschappen, err := h.service.ListZaakEigenschappen(r.Context(), domain.ZaakID(zaakID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*zaakEigenschapResponse, 0, len(eigenschappen))
	for i := range eigenschappen {
		out = append(out, fromZaakEigenschap(&eigenschappen[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteZaakEigenschap(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "eigenschapUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteZaakEigenschap(r.Context(), domain.ZaakEigenschapID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createKlantContact(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[klantContactRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaakID, ok := reference.UUIDFromURL(req.Zaak)
	if !ok {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeBadURL, "the zaak is not a resource URL"))
		return
	}
	kc, err := h.service.AddKlantContact(r.Context(), KlantContact{
		ZaakID:        domain.ZaakID(zaakID),
		Identificatie: req.Identificatie,
		Datumtijd:     req.Datumtijd,
		Kanaal:        req.Kanaal,
		Onderwerp:     req.Onderwerp,
		Toelichting:   req.Toelichting,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromKlantContact(kc, h.splitter))
}

func (h *Handler) listKlantContacten(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := h.zaakQueryParam(w, r)
	if !ok {
		return
	}
	contacten, err := h.service.ListKlantContacten(r.Context(), zaakID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*klantContactResponse, 0, len(contacten))
	for i := range contacten {
		out = append(out, fromKlantContact(&contacten[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) createZaakInformatieObject(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[zaakInformatieObjectRequest](w, r, h.logger)
	if !ok {
		return
	}
	zaakID, ok := reference.UUIDFromURL(req.Zaak)
	if !ok {
		httputil.WriteError(w, dErrors.Param("zaak", dErrors.CodeBadURL, "the zaak is not a resource URL"))
		return
	}
	informatieobject, err := h.splitter.SplitParam("informatieobject", req.InformatieObject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	zio, err := h.service.AddZaakInformatieObject(r.Context(), ZaakInformatieObject{
		ZaakID:           domain.ZaakID(zaakID),
		InformatieObject: informatieobject,
		Titel:            req.Titel,
		Beschrijving:     req.Beschrijving,
		AardRelatie:      req.AardRelatie,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromZaakInformatieObject(zio, h.splitter))
}

func (h *Handler) getZaakInformatieObject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zioUUID")
	if !ok {
		return
	}
	zio, err := h.service.GetZaakInformatieObject(r.Context(), domain.ZaakInformatieObjectID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaakInformatieObject(zio, h.splitter))
}

func (h *Handler) listZaakInformatieObjecten(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := h.zaakQueryParam(w, r)
	if !ok {
		return
	}
	relaties, err := h.service.ListZaakInformatieObjecten(r.Context(), zaakID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*zaakInformatieObjectResponse, 0, len(relaties))
	for i := range relaties {
		out = append(out, fromZaakInformatieObject(&relaties[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteZaakInformatieObject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "zioUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteZaakInformatieObject(r.Context(), domain.ZaakInformatieObjectID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createZaakBesluit(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[zaakBesluitRequest](w, r, h.logger)
	if !ok {
		return
	}
	besluit, err := h.splitter.SplitParam("besluit", req.Besluit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	zb, err := h.service.AddZaakBesluit(r.Context(), ZaakBesluit{
		ZaakID:  domain.ZaakID(zaakID),
		Besluit: besluit,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromZaakBesluit(zb, h.splitter))
}

func (h *Handler) getZaakBesluit(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	relID, ok := pathUUID(w, r, "relUUID")
	if !ok {
		return
	}
	zb, err := h.service.GetZaakBesluit(r.Context(), domain.ZaakID(zaakID), domain.ZaakBesluitID(relID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromZaakBesluit(zb, h.splitter))
}

func (h *Handler) listZaakBesluiten(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	besluiten, err := h.service.ListZaakBesluiten(r.Context(), domain.ZaakID(zaakID))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*zaakBesluitResponse, 0, len(besluiten))
	for i := range besluiten {
		out = append(out, fromZaakBesluit(&besluiten[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteZaakBesluit(w http.ResponseWriter, r *http.Request) {
	zaakID, ok := pathUUID(w, r, "zaakUUID")
	if !ok {
		return
	}
	relID, ok := pathUUID(w, r, "relUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteZaakBesluit(r.Context(), domain.ZaakID(zaakID), domain.ZaakBesluitID(relID)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
