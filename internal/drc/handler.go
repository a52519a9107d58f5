package drc

import (
	"encoding/json"
	"errors"
	"io"
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

// Handler wires the document endpoints to the document service.
type Handler struct {
	service  *Service
	audit    *audittrail.Recorder
	splitter *reference.Splitter
	logger   *slog.Logger
}

func NewHandler(service *Service, audit *audittrail.Recorder, splitter *reference.Splitter, logger *slog.Logger) *Handler {
	return &Handler{service: service, audit: audit, splitter: splitter, logger: logger}
}

// Register mounts the document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/enkelvoudiginformatieobjecten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams(
			"bronorganisatie", "identificatie", "page", "pageSize",
		)).Get("/", h.listDocumenten)
		r.Post("/", h.createDocument)

		r.Route("/{documentUUID}", func(r chi.Router) {
			r.With(middleware.ConditionalGET, middleware.AllowedQueryParams("versie")).Get("/", h.getDocument)
			r.Put("/", h.updateDocument)
			r.Patch("/", h.updateDocument)
			r.Delete("/", h.deleteDocument)

			r.With(middleware.AllowedQueryParams("versie")).Get("/download", h.downloadDocument)
			r.Post("/lock", h.lockDocument)
			r.Post("/unlock", h.unlockDocument)

			r.Get("/audittrail", h.listAudit)
			r.Get("/audittrail/{auditUUID}", h.getAudit)
		})
	})

	r.Route("/gebruiksrechten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("informatieobject")).Get("/", h.listGebruiksrechten)
		r.Post("/", h.createGebruiksrechten)
		r.Get("/{rechtUUID}", h.getGebruiksrechten)
		r.Delete("/{rechtUUID}", h.deleteGebruiksrechten)
	})

	r.Route("/verzendingen", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("informatieobject")).Get("/", h.listVerzendingen)
		r.Post("/", h.createVerzending)
		r.Get("/{verzendingUUID}", h.getVerzending)
		r.Delete("/{verzendingUUID}", h.deleteVerzending)
	})

	r.Route("/objectinformatieobjecten", func(r chi.Router) {
		r.With(middleware.AllowedQueryParams("object", "informatieobject")).Get("/", h.listOIOs)
		r.Post("/", h.createOIO)
		r.Get("/{oioUUID}", h.getOIO)
		r.Delete("/{oioUUID}", h.deleteOIO)
	})

	r.Put("/bestandsdelen/{deelUUID}", h.uploadBestandsDeel)

	// Convenience operation registering multiple documents in one call.
	r.Post("/documenten-import", h.importDocumenten)
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, sentinel.ErrNotFound)
		return uuid.UUID{}, false
	}
	return id, true
}

// documentQueryParam extracts the document id from the "informatieobject"
// list filter.
func (h *Handler) documentQueryParam(w http.ResponseWriter, r *http.Request) (domain.DocumentID, bool) {
	raw := r.URL.Query().Get("informatieobject")
	if raw == "" {
		httputil.WriteError(w, dErrors.Param("informatieobject", dErrors.CodeInvalidInput, "the informatieobject filter is required"))
		return domain.DocumentID{}, false
	}
	id, ok := reference.UUIDFromURL(raw)
	if !ok {
		httputil.WriteError(w, dErrors.Param("informatieobject", dErrors.CodeBadURL, "the informatieobject filter is not a resource URL"))
		return domain.DocumentID{}, false
	}
	return domain.DocumentID(id), true
}

func versieParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("versie")
	if raw == "" {
		return 0, true
	}
	versie, err := strconv.Atoi(raw)
	if err != nil || versie < 1 {
		httputil.WriteError(w, dErrors.Param("versie", dErrors.CodeInvalidInput, "versie must be a positive integer"))
		return 0, false
	}
	return versie, true
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[documentRequest](w, r, h.logger)
	if !ok {
		return
	}
	doc, inhoud, err := req.toDocument(h.splitter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, delen, err := h.service.CreateDocument(r.Context(), doc, inhoud)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := fromDocument(created, h.splitter)
	if len(delen) > 0 {
		resp.Bestandsdelen = fromBestandsDelen(delen, h.splitter)
		resp.Lock = created.Lock
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	versie, ok := versieParam(w, r)
	if !ok {
		return
	}
	doc, err := h.service.GetDocument(r.Context(), domain.DocumentID(id), versie)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDocument(doc, h.splitter))
}

func (h *Handler) listDocumenten(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := DocumentFilter{
		Bronorganisatie: q.Get("bronorganisatie"),
		Identificatie:   q.Get("identificatie"),
		Page:            intParam(q.Get("page"), 1),
		PageSize:        intParam(q.Get("pageSize"), 100),
	}
	page, err := h.service.ListDocuments(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPage(page, h.splitter))
}

func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	req, ok := httputil.Decode[documentRequest](w, r, h.logger)
	if !ok {
		return
	}
	doc, inhoud, err := req.toDocument(h.splitter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	partial := r.Method == http.MethodPatch
	updated, delen, err := h.service.UpdateDocument(r.Context(), domain.DocumentID(id), doc, inhoud, req.Lock, partial)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := fromDocument(updated, h.splitter)
	if len(delen) > 0 {
		resp.Bestandsdelen = fromBestandsDelen(delen, h.splitter)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteDocument(r.Context(), domain.DocumentID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) downloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	versie, ok := versieParam(w, r)
	if !ok {
		return
	}
	content, v, err := h.service.Download(r.Context(), domain.DocumentID(id), versie)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if v.Bestandsnaam != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+v.Bestandsnaam+`"`)
	}
	if v.Bestandsomvang != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*v.Bestandsomvang, 10))
	}
	if _, err := io.Copy(w, content); err != nil {
		h.logger.Error("document download aborted", "document", id, "error", err)
	}
}

func (h *Handler) lockDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	lock, err := h.service.Lock(r.Context(), domain.DocumentID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lockResponse{Lock: lock})
}

func (h *Handler) unlockDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	// The body is optional: absence of a lock token requests a forced
	// unlock.
	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "the request body is not valid JSON"))
		return
	}
	if err := h.service.Unlock(r.Context(), domain.DocumentID(id), req.Lock); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadBestandsDeel accepts one part of a chunked upload as multipart form
// data with an "inhoud" file and a "lock" field.
func (h *Handler) uploadBestandsDeel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "deelUUID")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.WriteError(w, dErrors.Param("inhoud", dErrors.CodeInvalidInput, "the request is not valid multipart form data"))
		return
	}
	file, _, err := r.FormFile("inhoud")
	if err != nil {
		httputil.WriteError(w, dErrors.Param("inhoud", dErrors.CodeInvalidInput, "the inhoud file part is required"))
		return
	}
	defer file.Close()
	inhoud, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deel, err := h.service.UploadBestandsDeel(r.Context(), domain.BestandsDeelID(id), r.FormValue("lock"), inhoud)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromBestandsDeel(deel, h.splitter))
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	if _, err := h.service.GetDocument(r.Context(), domain.DocumentID(id), 0); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.audit.List(r.Context(), h.service.DocumentURL(domain.DocumentID(id)))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathUUID(w, r, "documentUUID")
	if !ok {
		return
	}
	auditID, ok := pathUUID(w, r, "auditUUID")
	if !ok {
		return
	}
	if _, err := h.service.GetDocument(r.Context(), domain.DocumentID(documentID), 0); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.audit.Get(r.Context(), h.service.DocumentURL(domain.DocumentID(documentID)), auditID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) createGebruiksrechten(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[gebruiksrechtenRequest](w, r, h.logger)
	if !ok {
		return
	}
	documentID, ok := reference.UUIDFromURL(req.InformatieObject)
	if !ok {
		httputil.WriteError(w, dErrors.Param("informatieobject", dErrors.CodeBadURL, "informatieobject is not a resource URL"))
		return
	}
	created, err := h.service.AddGebruiksrechten(r.Context(), Gebruiksrechten{
		DocumentID:              domain.DocumentID(documentID),
		Startdatum:              req.Startdatum,
		Einddatum:               req.Einddatum,
		OmschrijvingVoorwaarden: req.OmschrijvingVoorwaarden,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromGebruiksrechten(created, h.splitter))
}

func (h *Handler) getGebruiksrechten(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "rechtUUID")
	if !ok {
		return
	}
	gr, err := h.service.GetGebruiksrechten(r.Context(), domain.GebruiksrechtenID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromGebruiksrechten(gr, h.splitter))
}

func (h *Handler) listGebruiksrechten(w http.ResponseWriter, r *http.Request) {
	documentID, ok := h.documentQueryParam(w, r)
	if !ok {
		return
	}
	rechten, err := h.service.ListGebruiksrechten(r.Context(), documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	results := make([]any, 0, len(rechten))
	for i := range rechten {
		results = append(results, fromGebruiksrechten(&rechten[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) deleteGebruiksrechten(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "rechtUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteGebruiksrechten(r.Context(), domain.GebruiksrechtenID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createVerzending(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[verzendingRequest](w, r, h.logger)
	if !ok {
		return
	}
	documentID, ok := reference.UUIDFromURL(req.InformatieObject)
	if !ok {
		httputil.WriteError(w, dErrors.Param("informatieobject", dErrors.CodeBadURL, "informatieobject is not a resource URL"))
		return
	}
	created, err := h.service.AddVerzending(r.Context(), Verzending{
		DocumentID:     domain.DocumentID(documentID),
		Betrokkene:     req.Betrokkene,
		AardRelatie:    req.AardRelatie,
		Toelichting:    req.Toelichting,
		Ontvangstdatum: req.Ontvangstdatum,
		Verzenddatum:   req.Verzenddatum,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromVerzending(created, h.splitter))
}

func (h *Handler) getVerzending(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "verzendingUUID")
	if !ok {
		return
	}
	vz, err := h.service.GetVerzending(r.Context(), domain.VerzendingID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromVerzending(vz, h.splitter))
}

func (h *Handler) listVerzendingen(w http.ResponseWriter, r *http.Request) {
	documentID, ok := h.documentQueryParam(w, r)
	if !ok {
		return
	}
	verzendingen, err := h.service.ListVerzendingen(r.Context(), documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	results := make([]any, 0, len(verzendingen))
	for i := range verzendingen {
		results = append(results, fromVerzending(&verzendingen[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) deleteVerzending(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "verzendingUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteVerzending(r.Context(), domain.VerzendingID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createOIO(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[oioRequest](w, r, h.logger)
	if !ok {
		return
	}
	documentID, ok := reference.UUIDFromURL(req.InformatieObject)
	if !ok {
		httputil.WriteError(w, dErrors.Param("informatieobject", dErrors.CodeBadURL, "informatieobject is not a resource URL"))
		return
	}
	object, err := h.splitter.SplitParam("object", req.Object)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, err := h.service.AddObjectInformatieObject(r.Context(), ObjectInformatieObject{
		DocumentID: domain.DocumentID(documentID),
		Object:     object,
		ObjectType: req.ObjectType,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromOIO(created, h.splitter))
}

func (h *Handler) getOIO(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "oioUUID")
	if !ok {
		return
	}
	oio, err := h.service.GetObjectInformatieObject(r.Context(), domain.ObjectInformatieObjectID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromOIO(oio, h.splitter))
}

func (h *Handler) listOIOs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter OIOFilter
	if raw := q.Get("informatieobject"); raw != "" {
		id, ok := reference.UUIDFromURL(raw)
		if !ok {
			httputil.WriteError(w, dErrors.Param("informatieobject", dErrors.CodeBadURL, "the informatieobject filter is not a resource URL"))
			return
		}
		documentID := domain.DocumentID(id)
		filter.DocumentID = &documentID
	}
	filter.ObjectURL = q.Get("object")

	oios, err := h.service.ListObjectInformatieObjecten(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	results := make([]any, 0, len(oios))
	for i := range oios {
		results = append(results, fromOIO(&oios[i], h.splitter))
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) deleteOIO(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "oioUUID")
	if !ok {
		return
	}
	if err := h.service.DeleteObjectInformatieObject(r.Context(), domain.ObjectInformatieObjectID(id)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importDocumenten(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[importRequest](w, r, h.logger)
	if !ok {
		return
	}
	if len(req.Documenten) == 0 {
		httputil.WriteError(w, dErrors.Param("documenten", dErrors.CodeInvalidInput, "at least one document is required"))
		return
	}
	docs := make([]Document, 0, len(req.Documenten))
	inhouden := make([][]byte, 0, len(req.Documenten))
	for i := range req.Documenten {
		doc, inhoud, err := req.Documenten[i].toDocument(h.splitter)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		docs = append(docs, doc)
		inhouden = append(inhouden, inhoud)
	}
	results := h.service.Import(r.Context(), docs, inhouden)
	resp := importResponse{Resultaten: make([]importRowResponse, 0, len(results))}
	for _, res := range results {
		row := importRowResponse{Status: "geslaagd"}
		if res.Err != nil {
			row.Status = "mislukt"
			row.Fout = res.Err.Error()
		} else {
			row.Document = fromDocument(res.Document, h.splitter)
		}
		resp.Resultaten = append(resp.Resultaten, row)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
