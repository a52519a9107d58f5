package drc

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"zgw/internal/audittrail"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
)

// AddGebruiksrechten registers usage conditions on a document and raises the
// canonical indicatie flag.
func (s *Service) AddGebruiksrechten(ctx context.Context, gr Gebruiksrechten) (*Gebruiksrechten, error) {
	doc, err := s.store.GetInformatieObject(ctx, gr.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenAanmaken, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return nil, err
	}
	if gr.OmschrijvingVoorwaarden == "" {
		return nil, dErrors.Param("omschrijvingVoorwaarden", dErrors.CodeInvalidInput, "omschrijvingVoorwaarden is required")
	}

	gr.ID = domain.GebruiksrechtenID(uuid.New())
	indicatie := true
	canoniek := *doc
	canoniek.IndicatieGebruiksrecht = &indicatie

	docURL := s.DocumentURL(gr.DocumentID)
	grURL := s.splitter.ResourceURL("gebruiksrechten", uuid.UUID(gr.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateGebruiksrechten(ctx, gr); err != nil {
			return err
		}
		if err := s.store.UpdateCanoniek(ctx, canoniek); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: docURL,
			Resource:    "gebruiksrechten",
			ResourceURL: grURL,
			New:         gr,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", docURL, "gebruiksrechten", grURL, documentKenmerken(&canoniek))
	})
	if err != nil {
		return nil, err
	}
	return &gr, nil
}

func (s *Service) GetGebruiksrechten(ctx context.Context, id domain.GebruiksrechtenID) (*Gebruiksrechten, error) {
	gr, err := s.store.GetGebruiksrechten(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetDocument(ctx, gr.DocumentID, 0); err != nil {
		return nil, err
	}
	return gr, nil
}

func (s *Service) ListGebruiksrechten(ctx context.Context, documentID domain.DocumentID) ([]Gebruiksrechten, error) {
	if _, err := s.GetDocument(ctx, documentID, 0); err != nil {
		return nil, err
	}
	return s.store.ListGebruiksrechten(ctx, documentID)
}

// DeleteGebruiksrechten removes one usage-rights record. When the last record
// goes, the canonical indicatie flag is cleared.
func (s *Service) DeleteGebruiksrechten(ctx context.Context, id domain.GebruiksrechtenID) error {
	gr, err := s.store.GetGebruiksrechten(ctx, id)
	if err != nil {
		return err
	}
	doc, err := s.store.GetInformatieObject(ctx, gr.DocumentID)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenVerwijderen, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return err
	}

	rest, err := s.store.ListGebruiksrechten(ctx, gr.DocumentID)
	if err != nil {
		return err
	}

	docURL := s.DocumentURL(gr.DocumentID)
	grURL := s.splitter.ResourceURL("gebruiksrechten", uuid.UUID(id))
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteGebruiksrechten(ctx, id); err != nil {
			return err
		}
		if len(rest) == 1 {
			canoniek := *doc
			canoniek.IndicatieGebruiksrecht = nil
			if err := s.store.UpdateCanoniek(ctx, canoniek); err != nil {
				return err
			}
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: docURL,
			Resource:    "gebruiksrechten",
			ResourceURL: grURL,
			Old:         gr,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", docURL, "gebruiksrechten", grURL, documentKenmerken(doc))
	})
}

// AddVerzending records a sending or receipt of a document.
func (s *Service) AddVerzending(ctx context.Context, vz Verzending) (*Verzending, error) {
	doc, err := s.store.GetInformatieObject(ctx, vz.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenAanmaken, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return nil, err
	}
	if vz.Betrokkene == "" {
		return nil, dErrors.Param("betrokkene", dErrors.CodeInvalidInput, "betrokkene is required")
	}

	vz.ID = domain.VerzendingID(uuid.New())
	docURL := s.DocumentURL(vz.DocumentID)
	vzURL := s.splitter.ResourceURL("verzendingen", uuid.UUID(vz.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateVerzending(ctx, vz); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: docURL,
			Resource:    "verzending",
			ResourceURL: vzURL,
			New:         vz,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", docURL, "verzending", vzURL, documentKenmerken(doc))
	})
	if err != nil {
		return nil, err
	}
	return &vz, nil
}

func (s *Service) GetVerzending(ctx context.Context, id domain.VerzendingID) (*Verzending, error) {
	vz, err := s.store.GetVerzending(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetDocument(ctx, vz.DocumentID, 0); err != nil {
		return nil, err
	}
	return vz, nil
}

func (s *Service) ListVerzendingen(ctx context.Context, documentID domain.DocumentID) ([]Verzending, error) {
	if _, err := s.GetDocument(ctx, documentID, 0); err != nil {
		return nil, err
	}
	return s.store.ListVerzendingen(ctx, documentID)
}

func (s *Service) DeleteVerzending(ctx context.Context, id domain.VerzendingID) error {
	vz, err := s.store.GetVerzending(ctx, id)
	if err != nil {
		return err
	}
	doc, err := s.store.GetInformatieObject(ctx, vz.DocumentID)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenVerwijderen, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return err
	}

	docURL := s.DocumentURL(vz.DocumentID)
	vzURL := s.splitter.ResourceURL("verzendingen", uuid.UUID(id))
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteVerzending(ctx, id); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: docURL,
			Resource:    "verzending",
			ResourceURL: vzURL,
			Old:         vz,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", docURL, "verzending", vzURL, documentKenmerken(doc))
	})
}

// AddObjectInformatieObject registers the index row for a case or decision
// relation. The owning service calls this through the mirror protocol after
// committing its own relation row.
func (s *Service) AddObjectInformatieObject(ctx context.Context, oio ObjectInformatieObject) (*ObjectInformatieObject, error) {
	if oio.ObjectType != "zaak" && oio.ObjectType != "besluit" {
		return nil, dErrors.Param("objectType", dErrors.CodeInvalidInput, `objectType must be "zaak" or "besluit"`)
	}
	if oio.Object.IsZero() {
		return nil, dErrors.Param("object", dErrors.CodeInvalidInput, "object is required")
	}
	doc, err := s.store.GetInformatieObject(ctx, oio.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenAanmaken, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return nil, err
	}

	oio.ID = domain.ObjectInformatieObjectID(uuid.New())
	docURL := s.DocumentURL(oio.DocumentID)
	oioURL := s.splitter.ResourceURL("objectinformatieobjecten", uuid.UUID(oio.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateObjectInformatieObject(ctx, oio); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Param("informatieobject", dErrors.CodeUnique,
					"the object and document are already related")
			}
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: docURL,
			Resource:    "objectinformatieobject",
			ResourceURL: oioURL,
			New:         oio,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", docURL, "objectinformatieobject", oioURL, documentKenmerken(doc))
	})
	if err != nil {
		return nil, err
	}
	return &oio, nil
}

func (s *Service) GetObjectInformatieObject(ctx context.Context, id domain.ObjectInformatieObjectID) (*ObjectInformatieObject, error) {
	oio, err := s.store.GetObjectInformatieObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetDocument(ctx, oio.DocumentID, 0); err != nil {
		return nil, err
	}
	return oio, nil
}

// ListObjectInformatieObjecten returns index rows, optionally filtered by
// document or object URL.
func (s *Service) ListObjectInformatieObjecten(ctx context.Context, filter OIOFilter) ([]ObjectInformatieObject, error) {
	if filter.DocumentID != nil {
		if _, err := s.GetDocument(ctx, *filter.DocumentID, 0); err != nil {
			return nil, err
		}
	}
	oios, err := s.store.ListObjectInformatieObjecten(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.DocumentID != nil {
		return oios, nil
	}
	// Without a document filter the rows span documents with different
	// grants; each is checked individually.
	visible := oios[:0]
	for _, oio := range oios {
		if _, err := s.GetDocument(ctx, oio.DocumentID, 0); err == nil {
			visible = append(visible, oio)
		}
	}
	return visible, nil
}

// DeleteObjectInformatieObject removes an index row when the owning service
// tears down the relation.
func (s *Service) DeleteObjectInformatieObject(ctx context.Context, id domain.ObjectInformatieObjectID) error {
	oio, err := s.store.GetObjectInformatieObject(ctx, id)
	if err != nil {
		return err
	}
	doc, err := s.store.GetInformatieObject(ctx, oio.DocumentID)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentDRC, domain.ScopeDocumentenVerwijderen, refURL(doc.Informatieobjecttype), doc.Vertrouwelijkheid); err != nil {
		return err
	}

	docURL := s.DocumentURL(oio.DocumentID)
	oioURL := s.splitter.ResourceURL("objectinformatieobjecten", uuid.UUID(id))
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteObjectInformatieObject(ctx, id); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: docURL,
			Resource:    "objectinformatieobject",
			ResourceURL: oioURL,
			Old:         oio,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", docURL, "objectinformatieobject", oioURL, documentKenmerken(doc))
	})
}

// ImportResult is the per-row outcome of a bulk import.
type ImportResult struct {
	Document *Document
	Err      error
}

// Import creates documents in bulk through the regular per-row path, so
// version pinning, audit and notifications run for every row. A failing row
// does not abort the remainder.
func (s *Service) Import(ctx context.Context, docs []Document, inhouden [][]byte) []ImportResult {
	results := make([]ImportResult, len(docs))
	for i, doc := range docs {
		var inhoud []byte
		if i < len(inhouden) {
			inhoud = inhouden[i]
		}
		created, _, err := s.CreateDocument(ctx, doc, inhoud)
		results[i] = ImportResult{Document: created, Err: err}
	}
	return results
}
