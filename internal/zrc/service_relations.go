package zrc

import (
	"context"
	"errors"
	"net/url"
	"path"

	"github.com/google/uuid"

	"zgw/internal/audittrail"
	"zgw/internal/catalogi"
	"zgw/internal/mirror"
	"zgw/pkg/domain"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/requestcontext"
)

// AddResultaat sets the single result of a case.
func (s *Service) AddResultaat(ctx context.Context, resultaat Resultaat) (*Resultaat, error) {
	zaak, err := s.GetZaak(ctx, resultaat.ZaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, resultaat.ZaakID); err != nil {
		return nil, err
	}

	rt, err := s.catalogi.Resultaattype(ctx, resultaat.Resultaattype)
	if err != nil {
		return nil, dErrors.Param("resultaattype", dErrors.CodeOf(err), "the resultaattype could not be resolved")
	}
	if err := catalogi.CheckResultaattypeZaaktype(rt, refURL(zaak.Zaaktype)); err != nil {
		return nil, err
	}

	if _, err := s.store.GetResultaatByZaak(ctx, resultaat.ZaakID); err == nil {
		return nil, dErrors.Param("zaak", dErrors.CodeUnique, "the case already has a result")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	resultaat.ID = domain.ResultaatID(uuid.New())
	zaakURL := s.ZaakURL(resultaat.ZaakID)
	resultaatURL := s.splitter.ResourceURL("resultaten", uuid.UUID(resultaat.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateResultaat(ctx, resultaat); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Param("zaak", dErrors.CodeUnique, "the case already has a result")
			}
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "resultaat",
			ResourceURL: resultaatURL,
			New:         resultaat,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "resultaat", resultaatURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}
	return &resultaat, nil
}

// GetResultaat retrieves one result.
func (s *Service) GetResultaat(ctx context.Context, id domain.ResultaatID) (*Resultaat, error) {
	resultaat, err := s.store.GetResultaat(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetZaak(ctx, resultaat.ZaakID); err != nil {
		return nil, err
	}
	return resultaat, nil
}

// DeleteResultaat removes the case's result.
func (s *Service) DeleteResultaat(ctx context.Context, id domain.ResultaatID) error {
	resultaat, err := s.store.GetResultaat(ctx, id)
	if err != nil {
		return err
	}
	zaak, err := s.GetZaak(ctx, resultaat.ZaakID)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, resultaat.ZaakID); err != nil {
		return err
	}

	zaakURL := s.ZaakURL(resultaat.ZaakID)
	resultaatURL := s.splitter.ResourceURL("resultaten", uuid.UUID(id))
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteResultaat(ctx, id); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: zaakURL,
			Resource:    "resultaat",
			ResourceURL: resultaatURL,
			Old:         resultaat,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", zaakURL, "resultaat", resultaatURL, s.zaakKenmerken(zaak))
	})
}

// AddRol relates a party to a case.
func (s *Service) AddRol(ctx context.Context, rol Rol) (*Rol, error) {
	zaak, err := s.GetZaak(ctx, rol.ZaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, rol.ZaakID); err != nil {
		return nil, err
	}
	if rol.Betrokkene == "" {
		return nil, dErrors.Param("betrokkene", dErrors.CodeInvalidInput, "betrokkene is required")
	}

	rol.ID = domain.RolID(uuid.New())
	rol.Registratiedatum = requestcontext.Now(ctx)
	zaakURL := s.ZaakURL(rol.ZaakID)
	rolURL := s.splitter.ResourceURL("rollen", uuid.UUID(rol.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateRol(ctx, rol); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "rol",
			ResourceURL: rolURL,
			New:         rol,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "rol", rolURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}
	return &rol, nil
}

// GetRol retrieves one role.
func (s *Service) GetRol(ctx context.Context, id domain.RolID) (*Rol, error) {
	rol, err := s.store.GetRol(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetZaak(ctx, rol.ZaakID); err != nil {
		return nil, err
	}
	return rol, nil
}

// ListRollen lists the roles on a case.
func (s *Service) ListRollen(ctx context.Context, zaakID domain.ZaakID) ([]Rol, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.ListRollen(ctx, zaakID)
}

// DeleteRol removes a role from a case.
func (s *Service) DeleteRol(ctx context.Context, id domain.RolID) error {
	rol, err := s.store.GetRol(ctx, id)
	if err != nil {
		return err
	}
	zaak, err := s.GetZaak(ctx, rol.ZaakID)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, rol.ZaakID); err != nil {
		return err
	}

	zaakURL := s.ZaakURL(rol.ZaakID)
	rolURL := s.splitter.ResourceURL("rollen", uuid.UUID(id))
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteRol(ctx, id); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: zaakURL,
			Resource:    "rol",
			ResourceURL: rolURL,
			Old:         rol,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", zaakURL, "rol", rolURL, s.zaakKenmerken(zaak))
	})
}

// AddZaakObject links an external object to a case.
func (s *Service) AddZaakObject(ctx context.Context, zo ZaakObject) (*ZaakObject, error) {
	zaak, err := s.GetZaak(ctx, zo.ZaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, zo.ZaakID); err != nil {
		return nil, err
	}

	zo.ID = domain.ZaakObjectID(uuid.New())
	zaakURL := s.ZaakURL(zo.ZaakID)
	zoURL := s.splitter.ResourceURL("zaakobjecten", uuid.UUID(zo.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateZaakObject(ctx, zo); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "zaakobject",
			ResourceURL: zoURL,
			New:         zo,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "zaakobject", zoURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}
	return &zo, nil
}

// GetZaakObject retrieves one case-object relation.
func (s *Service) GetZaakObject(ctx context.Context, id domain.ZaakObjectID) (*ZaakObject, error) {
	zo, err := s.store.GetZaakObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetZaak(ctx, zo.ZaakID); err != nil {
		return nil, err
	}
	return zo, nil
}

// ListZaakObjecten lists the object relations of a case.
func (s *Service) ListZaakObjecten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakObject, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.ListZaakObjecten(ctx, zaakID)
}

// DeleteZaakObject removes a case-object relation.
func (s *Service) DeleteZaakObject(ctx context.Context, id domain.ZaakObjectID) error {
	zo, err := s.store.GetZaakObject(ctx, id)
	if err != nil {
		return err
	}
	zaak, err := s.GetZaak(ctx, zo.ZaakID)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, zo.ZaakID); err != nil {
		return err
	}

	zaakURL := s.ZaakURL(zo.ZaakID)
	zoURL := s.splitter.ResourceURL("zaakobjecten", uuid.UUID(id))
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteZaakObject(ctx, id); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: zaakURL,
			Resource:    "zaakobject",
			ResourceURL: zoURL,
			Old:         zo,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", zaakURL, "zaakobject", zoURL, s.zaakKenmerken(zaak))
	})
}

// AddZaakEigenschap sets a property value on a case.
func (s *Service) AddZaakEigenschap(ctx context.Context, ze ZaakEigenschap) (*ZaakEigenschap, error) {
	zaak, err := s.GetZaak(ctx, ze.ZaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, ze.ZaakID); err != nil {
		return nil, err
	}

	ze.ID = domain.ZaakEigenschapID(uuid.New())
	zaakURL := s.ZaakURL(ze.ZaakID)
	zeURL := s.splitter.ResourceURL("zaakeigenschappen", uuid.UUID(ze.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateZaakEigenschap(ctx, ze); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "zaakeigenschap",
			ResourceURL: zeURL,
			New:         ze,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "zaakeigenschap", zeURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}
	return &ze, nil
}

// ListZaakEigenschappen lists the property values of a case.
func (s *Service) ListZaakEigenschappen(ctx context.Context, zaakID domain.ZaakID) ([]ZaakEigenschap, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.ListZaakEigenschappen(ctx, zaakID)
}

// DeleteZaakEigenschap removes a property value from a case.
func (s *Service) DeleteZaakEigenschap(ctx context.Context, id domain.ZaakEigenschapID) error {
	ze, err := s.store.GetZaakEigenschap(ctx, id)
	if err != nil {
		return err
	}
	zaak, err := s.GetZaak(ctx, ze.ZaakID)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, ze.ZaakID); err != nil {
		return err
	}

	zaakURL := s.ZaakURL(ze.ZaakID)
	zeURL := s.splitter.ResourceURL("zaakeigenschappen", uuid.UUID(id))
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteZaakEigenschap(ctx, id); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: zaakURL,
			Resource:    "zaakeigenschap",
			ResourceURL: zeURL,
			Old:         ze,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", zaakURL, "zaakeigenschap", zeURL, s.zaakKenmerken(zaak))
	})
}

// AddKlantContact records a contact moment on a case. Contact moments can be
// added to closed cases; they document history rather than change it.
func (s *Service) AddKlantContact(ctx context.Context, kc KlantContact) (*KlantContact, error) {
	zaak, err := s.GetZaak(ctx, kc.ZaakID)
	if err != nil {
		return nil, err
	}

	kc.ID = domain.KlantContactID(uuid.New())
	if kc.Datumtijd.IsZero() {
		kc.Datumtijd = requestcontext.Now(ctx)
	}
	zaakURL := s.ZaakURL(kc.ZaakID)
	kcURL := s.splitter.ResourceURL("klantcontacten", uuid.UUID(kc.ID))
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateKlantContact(ctx, kc); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "klantcontact",
			ResourceURL: kcURL,
			New:         kc,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "klantcontact", kcURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}
	return &kc, nil
}

// ListKlantContacten lists the contact moments of a case.
func (s *Service) ListKlantContacten(ctx context.Context, zaakID domain.ZaakID) ([]KlantContact, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.ListKlantContacten(ctx, zaakID)
}

// peerCollection derives a sibling collection URL from a resource URL in the
// same service, e.g. {drc}/informatieobjecten/{uuid} to
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

// AddZaakInformatieObject relates a document to a case. The DRC holding the
// document registers the matching objectinformatieobject; the local row
// commits first and is compensated if that registration fails. Audit and
// notification follow only once both sides exist.
func (s *Service) AddZaakInformatieObject(ctx context.Context, zio ZaakInformatieObject) (*ZaakInformatieObject, error) {
	zaak, err := s.GetZaak(ctx, zio.ZaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, zio.ZaakID); err != nil {
		return nil, err
	}
	if zio.InformatieObject.IsZero() {
		return nil, dErrors.Param("informatieobject", dErrors.CodeInvalidInput, "informatieobject is required")
	}

	ioURL := s.splitter.Render("enkelvoudiginformatieobjecten", zio.InformatieObject)
	var io struct {
		Informatieobjecttype string `json:"informatieobjecttype"`
	}
	if err := s.resolver.FetchInto(ctx, ioURL, &io); err != nil {
		return nil, dErrors.Param("informatieobject", dErrors.CodeOf(err), "the informatieobject could not be resolved")
	}
	zt, err := s.fetchZaaktype(ctx, zaak.Zaaktype)
	if err != nil {
		return nil, err
	}
	if err := catalogi.CheckZaaktypeInformatieobjecttype(zt, io.Informatieobjecttype); err != nil {
		return nil, err
	}

	zio.ID = domain.ZaakInformatieObjectID(uuid.New())
	zio.Registratiedatum = requestcontext.Now(ctx)
	zaakURL := s.ZaakURL(zio.ZaakID)
	zioURL := s.splitter.ResourceURL("zaakinformatieobjecten", uuid.UUID(zio.ID))

	collectionURL, err := peerCollection(ioURL, "objectinformatieobjecten")
	if err != nil {
		return nil, err
	}
	remote := &mirror.CreateRemote{
		CollectionURL: collectionURL,
		Body: map[string]string{
			"informatieobject": ioURL,
			"object":           zaakURL,
			"objectType":       "zaak",
		},
	}

	err = s.syncer.Create(ctx,
		func(ctx context.Context) error {
			if err := s.store.CreateZaakInformatieObject(ctx, zio); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.Param("informatieobject", dErrors.CodeUnique,
						"the case and document are already related")
				}
				return err
			}
			return nil
		},
		remote,
		func(ctx context.Context, mirrorURL string) error {
			zio.MirrorURL = mirrorURL
			return s.store.SetZaakInformatieObjectMirrorURL(ctx, zio.ID, mirrorURL)
		},
		func(ctx context.Context) error {
			return s.store.DeleteZaakInformatieObject(ctx, zio.ID)
		},
	)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "zaakinformatieobject",
			ResourceURL: zioURL,
			New:         zio,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "zaakinformatieobject", zioURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}
	return &zio, nil
}

// GetZaakInformatieObject retrieves one case-document relation.
func (s *Service) GetZaakInformatieObject(ctx context.Context, id domain.ZaakInformatieObjectID) (*ZaakInformatieObject, error) {
	zio, err := s.store.GetZaakInformatieObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetZaak(ctx, zio.ZaakID); err != nil {
		return nil, err
	}
	return zio, nil
}

// ListZaakInformatieObjecten lists the document relations of a case.
func (s *Service) ListZaakInformatieObjecten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakInformatieObject, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.ListZaakInformatieObjecten(ctx, zaakID)
}

// DeleteZaakInformatieObject removes a case-document relation and its remote
// mirror row.
func (s *Service) DeleteZaakInformatieObject(ctx context.Context, id domain.ZaakInformatieObjectID) error {
	zio, err := s.store.GetZaakInformatieObject(ctx, id)
	if err != nil {
		return err
	}
	zaak, err := s.GetZaak(ctx, zio.ZaakID)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, zio.ZaakID); err != nil {
		return err
	}

	zaakURL := s.ZaakURL(zio.ZaakID)
	zioURL := s.splitter.ResourceURL("zaakinformatieobjecten", uuid.UUID(id))
	err = s.syncer.Delete(ctx,
		func(ctx context.Context) error {
			return s.store.DeleteZaakInformatieObject(ctx, id)
		},
		zio.MirrorURL,
		func(ctx context.Context) error {
			return s.store.CreateZaakInformatieObject(ctx, *zio)
		},
	)
	if err != nil {
		return err
	}

	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: zaakURL,
			Resource:    "zaakinformatieobject",
			ResourceURL: zioURL,
			Old:         zio,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", zaakURL, "zaakinformatieobject", zioURL, s.zaakKenmerken(zaak))
	})
}

// AddZaakBesluit registers the case side of a decision relation. The BRC
// calls this, remotely through the mirror endpoint or in-process.
func (s *Service) AddZaakBesluit(ctx context.Context, zb ZaakBesluit) (*ZaakBesluit, error) {
	zaak, err := s.GetZaak(ctx, zb.ZaakID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOpen(ctx, zb.ZaakID); err != nil {
		return nil, err
	}
	if zb.Besluit.IsZero() {
		return nil, dErrors.Param("besluit", dErrors.CodeInvalidInput, "besluit is required")
	}

	zb.ID = domain.ZaakBesluitID(uuid.New())
	zaakURL := s.ZaakURL(zb.ZaakID)
	zbURL := zaakURL + "/besluiten/" + uuid.UUID(zb.ID).String()
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateZaakBesluit(ctx, zb); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Param("besluit", dErrors.CodeUnique, "the case and decision are already related")
			}
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieCreate,
			Resultaat:   201,
			HoofdObject: zaakURL,
			Resource:    "zaakbesluit",
			ResourceURL: zbURL,
			New:         zb,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "create", zaakURL, "zaakbesluit", zbURL, s.zaakKenmerken(zaak))
	})
	if err != nil {
		return nil, err
	}
	return &zb, nil
}

// GetZaakBesluit retrieves one case-decision relation.
func (s *Service) GetZaakBesluit(ctx context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) (*ZaakBesluit, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.GetZaakBesluit(ctx, zaakID, id)
}

// ListZaakBesluiten lists the decision relations of a case.
func (s *Service) ListZaakBesluiten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakBesluit, error) {
	if _, err := s.GetZaak(ctx, zaakID); err != nil {
		return nil, err
	}
	return s.store.ListZaakBesluiten(ctx, zaakID)
}

// DeleteZaakBesluit removes the case side of a decision relation.
func (s *Service) DeleteZaakBesluit(ctx context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) error {
	zaak, err := s.GetZaak(ctx, zaakID)
	if err != nil {
		return err
	}
	zb, err := s.store.GetZaakBesluit(ctx, zaakID, id)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, zaakID); err != nil {
		return err
	}

	zaakURL := s.ZaakURL(zaakID)
	zbURL := zaakURL + "/besluiten/" + uuid.UUID(id).String()
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteZaakBesluit(ctx, zaakID, id); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, audittrail.Mutation{
			Actie:       audittrail.ActieDestroy,
			Resultaat:   204,
			HoofdObject: zaakURL,
			Resource:    "zaakbesluit",
			ResourceURL: zbURL,
			Old:         zb,
		}); err != nil {
			return err
		}
		return s.notify.Emit(ctx, "destroy", zaakURL, "zaakbesluit", zbURL, s.zaakKenmerken(zaak))
	})
}

// Koppel handles an inbound object-linked event by materialising the
// case-object relation. Events are system traffic, so no caller scope check
// applies; a duplicate link is idempotent.
func (s *Service) Koppel(ctx context.Context, zaakID domain.ZaakID, objectURL, objectType string) error {
	if _, err := s.store.GetZaak(ctx, zaakID); err != nil {
		return err
	}
	if _, err := s.store.FindZaakObjectByObjectURL(ctx, zaakID, objectURL); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return s.store.CreateZaakObject(ctx, ZaakObject{
		ID:         domain.ZaakObjectID(uuid.New()),
		ZaakID:     zaakID,
		Object:     objectURL,
		ObjectType: objectType,
	})
}

// Ontkoppel handles an inbound object-unlinked event. A missing relation is
// idempotent; a missing case surfaces so the caller can drop the event.
func (s *Service) Ontkoppel(ctx context.Context, zaakID domain.ZaakID, objectURL string) error {
	if _, err := s.store.GetZaak(ctx, zaakID); err != nil {
		return err
	}
	zo, err := s.store.FindZaakObjectByObjectURL(ctx, zaakID, objectURL)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.store.DeleteZaakObject(ctx, zo.ID)
}
