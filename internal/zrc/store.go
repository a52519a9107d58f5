package zrc

import (
	"context"

	"zgw/internal/authz"
	"zgw/pkg/domain"
)

// Store persists case data. List queries take the caller's authorization
// filter so restriction happens at the query layer; anything else breaks
// pagination counts.
//
// Mutating methods honor a transaction carried in the context (pkg/platform/tx)
// so audit and outbox writes commit atomically with the rows they describe.
type Store interface {
	CreateZaak(ctx context.Context, zaak Zaak) error
	GetZaak(ctx context.Context, id domain.ZaakID) (*Zaak, error)
	ListZaken(ctx context.Context, filter ZaakFilter, authFilter authz.Filter) ([]Zaak, int, error)
	UpdateZaak(ctx context.Context, zaak Zaak) error
	// DeleteZaak removes the case and all its child rows in one transaction.
	DeleteZaak(ctx context.Context, id domain.ZaakID) error
	// LockZaak takes the row lock serialising concurrent status additions.
	LockZaak(ctx context.Context, id domain.ZaakID) error
	// IdentificatieExists reports whether (bronorganisatie, identificatie)
	// is already taken.
	IdentificatieExists(ctx context.Context, bronorganisatie, identificatie string) (bool, error)
	// IsDeelzaak reports whether the case itself has a parent case.
	IsDeelzaak(ctx context.Context, id domain.ZaakID) (bool, error)

	CreateStatus(ctx context.Context, status Status) error
	GetStatus(ctx context.Context, id domain.StatusID) (*Status, error)
	ListStatussen(ctx context.Context, zaakID domain.ZaakID) ([]Status, error)
	// LatestStatus returns the most recent status or nil when none is set.
	LatestStatus(ctx context.Context, zaakID domain.ZaakID) (*Status, error)

	CreateResultaat(ctx context.Context, resultaat Resultaat) error
	GetResultaat(ctx context.Context, id domain.ResultaatID) (*Resultaat, error)
	GetResultaatByZaak(ctx context.Context, zaakID domain.ZaakID) (*Resultaat, error)
	DeleteResultaat(ctx context.Context, id domain.ResultaatID) error

	CreateRol(ctx context.Context, rol Rol) error
	GetRol(ctx context.Context, id domain.RolID) (*Rol, error)
	ListRollen(ctx context.Context, zaakID domain.ZaakID) ([]Rol, error)
	DeleteRol(ctx context.Context, id domain.RolID) error

	CreateZaakObject(ctx context.Context, zo ZaakObject) error
	GetZaakObject(ctx context.Context, id domain.ZaakObjectID) (*ZaakObject, error)
	ListZaakObjecten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakObject, error)
	FindZaakObjectByObjectURL(ctx context.Context, zaakID domain.ZaakID, objectURL string) (*ZaakObject, error)
	DeleteZaakObject(ctx context.Context, id domain.ZaakObjectID) error

	CreateZaakEigenschap(ctx context.Context, ze ZaakEigenschap) error
	GetZaakEigenschap(ctx context.Context, id domain.ZaakEigenschapID) (*ZaakEigenschap, error)
	ListZaakEigenschappen(ctx context.Context, zaakID domain.ZaakID) ([]ZaakEigenschap, error)
	DeleteZaakEigenschap(ctx context.Context, id domain.ZaakEigenschapID) error

	CreateKlantContact(ctx context.Context, kc KlantContact) error
	ListKlantContacten(ctx context.Context, zaakID domain.ZaakID) ([]KlantContact, error)

	// CreateZaakInformatieObject fails with sentinel.ErrConflict when the
	// (zaak, informatieobject) pair already exists.
	CreateZaakInformatieObject(ctx context.Context, zio ZaakInformatieObject) error
	GetZaakInformatieObject(ctx context.Context, id domain.ZaakInformatieObjectID) (*ZaakInformatieObject, error)
	ListZaakInformatieObjecten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakInformatieObject, error)
	SetZaakInformatieObjectMirrorURL(ctx context.Context, id domain.ZaakInformatieObjectID, mirrorURL string) error
	DeleteZaakInformatieObject(ctx context.Context, id domain.ZaakInformatieObjectID) error

	CreateZaakBesluit(ctx context.Context, zb ZaakBesluit) error
	GetZaakBesluit(ctx context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) (*ZaakBesluit, error)
	ListZaakBesluiten(ctx context.Context, zaakID domain.ZaakID) ([]ZaakBesluit, error)
	DeleteZaakBesluit(ctx context.Context, zaakID domain.ZaakID, id domain.ZaakBesluitID) error
}
