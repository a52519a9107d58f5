package brc

import (
	"log/slog"
	"net/http"
	"strconv"

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

// Handler wires the decision endpoints to the decision service.
type Handler struct {
	service  *Service
	audit    *audittrail.Recorder
	splitter *reference.Splitter
	logger   *slog.Logger
}

func NewHandler(service *Service, audit *audittrail.Recorder, splitter *reference.Splitter, logger *slog.Logger) *Handler {
	return &Handler{service: service, audit: audit, splitter: splitter, logger: logger}
}

// Register mounts the decision endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/besluiten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams(
			"verantwoordelijkeOrganisatie", "identificatie", "besluittype", "zaak", "page", "pageSize",
		)).Get("/", h.listBesluiten)
		r.Post("/", h.createBesluit)

		r.Route("/{besluitUUID}", func(r chi.Router) {
			r.With(middleware.ConditionalGET).Get("/", h.getBesluit)
			r.Put("/", h.updateBesluit)
			r.Patch("/", h.updateBesluit)
			r.Delete("/", h.deleteBesluit)

			r.Get("/audittrail", h.listAudit)
			r.Get("/audittrail/{auditUUID}", h.getAudit)
		})
	})

	r.Route("/besluitinformatieobjecten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("besluit", "informatieobject")).Get("/", h.listBIOs)
		r.Post("/", h.createBIO)
		r.Get("/{bioUUID}", h.getBIO)
		r.Delete("/{bioUUID}", h.deleteBIO)
	})

	// Convenience operation bundling a decision and its document relations.
	r.Post("/besluit_verwerken", h.verwerkBesluit)
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound)
		return uuid.UUID{}, false
	}
	return id, true
}

// besluitQueryParam extracts the decision id from the "besluit" list filter.
func (h *Handler) besluitQueryParam(w http.ResponseWriter, r *http.Request) (domain.BesluitID, bool) {
	raw := r.URL.Query().Get("besluit")
	if raw == "" {
		httputil.WriteError(w, dErrors.Param("besluit", dErrors.CodeInvalidInput, "the besluit filter is required"))
		return domain.BesluitID{}, false
	}
	id, ok := reference.UUIDFromURL(raw)
	if !ok {
		httputil.WriteError(w, dErrors.Param("besluit", dErrors.CodeBadURL, "the besluit filter is not a resource URL"))
		return domain.BesluitID{}, false
	}
	return domain.BesluitID(id), true
}

func (h *Handler) createBesluit(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[besluitRequest](w, r, h.logger)
	if !ok {
		return
	}
	besluit, err := req.toBesluit(h.splitter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, err := h.service.CreateBesluit(r.Context(), besluit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromBesluit(created, h.splitter))
}

func (h *Handler) getBesluit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "besluitUUID")
	if !ok {
		return
	}
	besluit, err := h.service.GetBesluit(r.Context(), domain.BesluitID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromBesluit(besluit, h.splitter))
}

func (h *Handler) listBesluiten(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := BesluitFilter{
		VerantwoordelijkeOrganisatie: q.Get("verantwoordelijkeOrganisatie"),
		Identificatie:                q.Get("identificatie"),
		BesluittypeURL:               q.Get("besluittype"),
		ZaakURL:                      q.Get("zaak"),
		Page:                         intParam(q.Get("page"), 1),
		PageSize:                     intParam(q.Get("pageSize"), 100),
	}
	page, err := h.service.ListBesluiten(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPage(page, h.splitter))
}

func (h *Handler) updateBesluit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "besluitUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[besluitRequest](w, r, h.logger)
	if !ok {
		return
	}
	besluit, err := req.toBesluit(h.splitter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	updated, err := h.service.UpdateBesluit(r.Context(), domain.BesluitID(id), besluit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromBesluit(updated, h.splitter))
}

func (h *Handler) deleteBesluit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "besluitUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteBesluit(r.Context(), domain.BesluitID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) verwerkBesluit(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[verwerkRequest](w, r, h.logger)
	if !ok {
		return
	}
	besluit, err := req.Besluit.toBesluit(h.splitter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	refs := make([]reference.Ref, 0, len(req.InformatieObjecten))
	for _, raw := range req.InformatieObjecten {
		ref, err := h.splitter.SplitParam("informatieobjecten", raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		refs = append(refs, ref)
	}
	created, bios, err := h.service.Verwerken(r.Context(), besluit, refs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := verwerkResponse{
		Besluit:            fromBesluit(created, h.splitter),
		InformatieObjecten: make([]*bioResponse, 0, len(bios)),
	}
	for i := range bios {
		resp.InformatieObjecten = append(resp.InformatieObjecten, fromBIO(&bios[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "besluitUUID")
	if !ok {
		return
	}
	if _, err := h.service.GetBesluit(r.Context(), domain.BesluitID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.audit.List(r.Context(), h.service.BesluitURL(domain.BesluitID(id)))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	besluitID, ok := pathUUID(w, r, "besluitUUID")
	if !ok {
		return
	}
	auditID, ok := pathUUID(w, r, "auditUUID")
	if !ok {
		return
	}
	if _, err := h.service.GetBesluit(r.Context(), domain.BesluitID(besluitID)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.audit.Get(r.Context(), h.service.BesluitURL(domain.BesluitID(besluitID)), auditID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) createBIO(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[bioRequest](w, r, h.logger)
	if !ok {
		return
	}
	besluitID, ok := reference.UUIDFromURL(req.Besluit)
	if !ok {
		httputil.WriteError(w, dErrors.Param("besluit", dErrors.CodeBadURL, "the besluit is not a resource URL"))
		return
	}
	informatieobject, err := h.splitter.SplitParam("informatieobject", req.InformatieObject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	bio, err := h.service.AddBesluitInformatieObject(r.Context(), BesluitInformatieObject{
		BesluitID:        domain.BesluitID(besluitID),
		InformatieObject: informatieobject,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromBIO(bio, h.splitter))
}

func (h *Handler) getBIO(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "bioUUID")
	if !ok {
		return
	}
	bio, err := h.service.GetBesluitInformatieObject(r.Context(), domain.BesluitInformatieObjectID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromBIO(bio, h.splitter))
}

func (h *Handler) listBIOs(w http.ResponseWriter, r *http.Request) {
	besluitID, ok := h.besluitQueryParam(w, r)
	if !ok {
		return
	}
	bios, err := h.service.ListBesluitInformatieObjecten(r.Context(), besluitID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*bioResponse, 0, len(bios))
	for i := range bios {
		out = append(out, fromBIO(&bios[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteBIO(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "bioUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteBesluitInformatieObject(r.Context(), domain.BesluitInformatieObjectID(id)); err != nil {
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
