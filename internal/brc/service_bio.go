package brc

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"zgw/internal/audittrail"
	"zgw/internal/catalogi"
	"zgw/internal/mirror"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
)

// AddBesluitInformatieObject relates a document to a decision. The DRC
// holding the document registers the matching objectinformatieobject; the
// local row commits first and is compensated if that registration fails.
// Audit and notification follow only once both sides exist.
func (s *Service) AddBesluitInformatieObject(ctx context.Context, bio BesluitInformatieObject) (*BesluitInformatieObject, error) {
	besluit, err := s.store.GetBesluit(ctx, bio.BesluitID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentBRC, domain.ScopeBesluitenAanmaken, refURL(besluit.Besluittype), domain.VertrouwelijkheidOpenbaar); err != nil {
		return nil, err
	}
	if bio.InformatieObject.IsZero() {
		return nil, dErrors.Param("informatieobject", dErrors.CodeInvalidInput, "informatieobject is required")
	}

	ioURL := s.splitter.Render("enkelvoudiginformatieobjecten", bio.InformatieObject)
	var io struct {
		Informatieobjecttype string `json:"informatieobjecttype"`
	}
	if err := s.resolver.FetchInto(ctx, ioURL, &io); err != nil {
		return nil, dErrors.Param("informatieobject", dErrors.CodeOf(err), "the informatieobject could not be resolved")
	}
	bt, err := s.fetchBesluittype(ctx, besluit.Besluittype)
	if err != nil {
		return nil, err
	}
	if err := catalogi.CheckBesluittypeInformatieobjecttype(bt, io.Informatieobjecttype); err != nil {
		return nil, err
	}

	bio.ID = domain.BesluitInformatieObjectID(uuid.New())
	besluitURL := s.BesluitURL(bio.BesluitID)
	bioURL := s.splitter.ResourceURL("besluitinformatieobjecten", uuid.UUID(bio.ID))

	collectionURL, err := peerCollection(ioURL, "objectinformatieobjecten")
	if err != nil {
		return nil, err
	}
	remote := &mirror.CreateRemote{
		CollectionURL: collectionURL,
		Body: map[string]string{
			"informatieobject": ioURL,
			"object":           besluitURL,
			"objectType":       "besluit",
		},
	}

	err = s.syncer.Create(ctx,
		func(ctx context.Context) error {
			if err := s.store.CreateBesluitInformatieObject(ctx, bio); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.Param("informatieobject", dErrors.CodeUnique,
						"the decision and document are already related")
				}
				return err
			}
			return nil
		},
		remote,
		func(ctx context.Context, mirrorURL string) error {
			bio.MirrorURL = mirrorURL
			return s.store.SetBesluitInformatieObjectMirrorURL(ctx, bio.ID, mirrorURL)
		},
		func(ctx context.Context) error {
			return s.store.DeleteBesluitInformatieObject(ctx, bio.ID)
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
			Resource:    "besluitinformatieobject",
			ResourceURL: bioURL,
			New:         bio,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", besluitURL, "besluitinformatieobject", bioURL, besluitKenmerken(besluit))
	})
	if err != nil {
		return nil, err
	}
	return &bio, nil
}

// GetBesluitInformatieObject retrieves one decision-document relation.
func (s *Service) GetBesluitInformatieObject(ctx context.Context, id domain.BesluitInformatieObjectID) (*BesluitInformatieObject, error) {
	bio, err := s.store.GetBesluitInformatieObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetBesluit(ctx, bio.BesluitID); err != nil {
		return nil, err
	}
	return bio, nil
}

// ListBesluitInformatieObjecten lists the document relations of a decision.
func (s *Service) ListBesluitInformatieObjecten(ctx context.Context, besluitID domain.BesluitID) ([]BesluitInformatieObject, error) {
	if _, err := s.GetBesluit(ctx, besluitID); err != nil {
		return nil, err
	}
	return s.store.ListBesluitInformatieObjecten(ctx, besluitID)
}

// DeleteBesluitInformatieObject removes a decision-document relation and its
// remote mirror row.
func (s *Service) DeleteBesluitInformatieObject(ctx context.Context, id domain.BesluitInformatieObjectID) error {
	bio, err := s.store.GetBesluitInformatieObject(ctx, id)
	if err != nil {
		return err
	}
	besluit, err := s.store.GetBesluit(ctx, bio.BesluitID)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, domain.ComponentBRC, domain.ScopeBesluitenVerwijderen, refURL(besluit.Besluittype), domain.VertrouwelijkheidOpenbaar); err != nil {
		return err
	}
	return s.removeBesluitInformatieObject(ctx, bio, besluit)
}

// removeBesluitInformatieObject unwinds one relation, mirror row included.
// Callers hold the scope check; Verwerken also uses this to roll back
// relations it created itself.
func (s *Service) removeBesluitInformatieObject(ctx context.Context, bio *BesluitInformatieObject, besluit *Besluit) error {
	besluitURL := s.BesluitURL(bio.BesluitID)
	bioURL := s.splitter.ResourceURL("besluitinformatieobjecten", uuid.UUID(bio.ID))
	err := s.syncer.Delete(ctx,
		func(ctx context.Context) error {
			return s.store.DeleteBesluitInformatieObject(ctx, bio.ID)
		},
		bio.MirrorURL,
		func(ctx context.Context) error {
			return s.store.CreateBesluitInformatieObject(ctx, *bio)
		},
	)
	if err != nil {
		return err
	}

	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: besluitURL,
			Resource:    "besluitinformatieobject",
			ResourceURL: bioURL,
			Old:         bio,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", besluitURL, "besluitinformatieobject", bioURL, besluitKenmerken(besluit))
	})
}
