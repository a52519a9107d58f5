package brc

import (
	"context"

	"zgw/internal/authz"
	"zgw/pkg/domain"
)

// Store persists decision data. List queries take the caller's authorization
// filter so restriction happens at the query layer.
//
// Mutating methods honor a transaction carried in the context (pkg/platform/tx)
// so audit and outbox writes commit atomically with the rows they describe.
type Store interface {
	// CreateBesluit fails with sentinel.ErrConflict when (verantwoordelijke
	// organisatie, identificatie) is already taken.
	CreateBesluit(ctx context.Context, besluit Besluit) error
	GetBesluit(ctx context.Context, id domain.BesluitID) (*Besluit, error)
	ListBesluiten(ctx context.Context, filter BesluitFilter, authFilter authz.Filter) ([]Besluit, int, error)
	UpdateBesluit(ctx context.Context, besluit Besluit) error
	// DeleteBesluit removes the decision and its document relation rows.
	DeleteBesluit(ctx context.Context, id domain.BesluitID) error
	SetZaakMirrorURL(ctx context.Context, id domain.BesluitID, mirrorURL string) error
	IdentificatieExists(ctx context.Context, verantwoordelijkeOrganisatie, identificatie string) (bool, error)

	// CreateBesluitInformatieObject fails with sentinel.ErrConflict when the
	// (besluit, informatieobject) pair already exists.
	CreateBesluitInformatieObject(ctx context.Context, bio BesluitInformatieObject) error
	GetBesluitInformatieObject(ctx context.Context, id domain.BesluitInformatieObjectID) (*BesluitInformatieObject, error)
	ListBesluitInformatieObjecten(ctx context.Context, besluitID domain.BesluitID) ([]BesluitInformatieObject, error)
	SetBesluitInformatieObjectMirrorURL(ctx context.Context, id domain.BesluitInformatieObjectID, mirrorURL string) error
	DeleteBesluitInformatieObject(ctx context.Context, id domain.BesluitInformatieObjectID) error
}
