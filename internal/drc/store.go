package drc

import (
	"context"

	"zgw/internal/authz"
	"zgw/pkg/domain"
)

// Store persists document data. List queries take the caller's authorization
// filter so restriction happens at the query layer.
//
// Mutating methods honor a transaction carried in the context
// (pkg/platform/tx) so audit and outbox writes commit atomically with the
// rows they describe. Bulk mutations are refused by the postgres
// implementation (pkg/platform/guard); every write is keyed to one row.
type Store interface {
	// CreateDocument stores the canonical row and its first version.
	CreateDocument(ctx context.Context, doc InformatieObject, versie Versie) error
	GetInformatieObject(ctx context.Context, id domain.DocumentID) (*InformatieObject, error)
	// GetVersie returns a specific version; versie 0 means the latest.
	GetVersie(ctx context.Context, id domain.DocumentID, versie int) (*Versie, error)
	ListDocuments(ctx context.Context, filter DocumentFilter, authFilter authz.Filter) ([]Document, int, error)
	ListVersies(ctx context.Context, id domain.DocumentID) ([]Versie, error)
	// AppendVersie fails with sentinel.ErrConflict when the version number is
	// already taken.
	AppendVersie(ctx context.Context, versie Versie) error
	// UpdateCanoniek rewrites the version-independent fields.
	UpdateCanoniek(ctx context.Context, doc InformatieObject) error
	SetLock(ctx context.Context, id domain.DocumentID, lock string) error
	// SetVersieContent records the assembled blob key and size on an existing
	// version.
	SetVersieContent(ctx context.Context, id domain.DocumentID, versie int, contentKey string, omvang *int64) error
	// DeleteDocument removes the canonical row, its versions and all
	// dependent rows.
	DeleteDocument(ctx context.Context, id domain.DocumentID) error
	IdentificatieExists(ctx context.Context, bronorganisatie, identificatie string) (bool, error)

	CreateBestandsDelen(ctx context.Context, delen []BestandsDeel) error
	GetBestandsDeel(ctx context.Context, id domain.BestandsDeelID) (*BestandsDeel, error)
	ListBestandsDelen(ctx context.Context, id domain.DocumentID) ([]BestandsDeel, error)
	MarkBestandsDeelVoltooid(ctx context.Context, id domain.BestandsDeelID) error
	DeleteBestandsDelen(ctx context.Context, id domain.DocumentID) error

	CreateGebruiksrechten(ctx context.Context, gr Gebruiksrechten) error
	GetGebruiksrechten(ctx context.Context, id domain.GebruiksrechtenID) (*Gebruiksrechten, error)
	ListGebruiksrechten(ctx context.Context, id domain.DocumentID) ([]Gebruiksrechten, error)
	DeleteGebruiksrechten(ctx context.Context, id domain.GebruiksrechtenID) error

	CreateVerzending(ctx context.Context, vz Verzending) error
	GetVerzending(ctx context.Context, id domain.VerzendingID) (*Verzending, error)
	ListVerzendingen(ctx context.Context, id domain.DocumentID) ([]Verzending, error)
	DeleteVerzending(ctx context.Context, id domain.VerzendingID) error

	// CreateObjectInformatieObject fails with sentinel.ErrConflict when the
	// (object, informatieobject) pair already exists.
	CreateObjectInformatieObject(ctx context.Context, oio ObjectInformatieObject) error
	GetObjectInformatieObject(ctx context.Context, id domain.ObjectInformatieObjectID) (*ObjectInformatieObject, error)
	ListObjectInformatieObjecten(ctx context.Context, filter OIOFilter) ([]ObjectInformatieObject, error)
	DeleteObjectInformatieObject(ctx context.Context, id domain.ObjectInformatieObjectID) error
}

// OIOFilter restricts relation index listings.
type OIOFilter struct {
	DocumentID *domain.DocumentID
	ObjectURL  string
}
