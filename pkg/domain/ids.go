package domain

import (
	"github.com/google/uuid"

	dErrors "zgw/pkg/domain-errors"
)

// Typed entity IDs. Distinct types prevent cross-entity assignment at
// compile time; construct via the Parse helpers at trust boundaries.
type (
	ZaakID                 uuid.UUID
	BesluitID              uuid.UUID
	DocumentID             uuid.UUID
	ApplicatieID           uuid.UUID
	StatusID               uuid.UUID
	RolID                  uuid.UUID
	ResultaatID            uuid.UUID
	ZaakObjectID           uuid.UUID
	ZaakEigenschapID       uuid.UUID
	KlantContactID         uuid.UUID
	ZaakInformatieObjectID uuid.UUID
	ZaakBesluitID          uuid.UUID
	BestandsDeelID         uuid.UUID

	BesluitInformatieObjectID uuid.UUID
	ObjectInformatieObjectID  uuid.UUID
	GebruiksrechtenID         uuid.UUID
	VerzendingID              uuid.UUID
)

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func ParseZaakID(s string) (ZaakID, error) {
	u, err := parseUUID(s)
	return ZaakID(u), err
}

func ParseBesluitID(s string) (BesluitID, error) {
	u, err := parseUUID(s)
	return BesluitID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s)
	return DocumentID(u), err
}

func ParseStatusID(s string) (StatusID, error) {
	u, err := parseUUID(s)
	return StatusID(u), err
}

func ParseRolID(s string) (RolID, error) {
	u, err := parseUUID(s)
	return RolID(u), err
}

func ParseResultaatID(s string) (ResultaatID, error) {
	u, err := parseUUID(s)
	return ResultaatID(u), err
}

func ParseZaakObjectID(s string) (ZaakObjectID, error) {
	u, err := parseUUID(s)
	return ZaakObjectID(u), err
}

func ParseZaakEigenschapID(s string) (ZaakEigenschapID, error) {
	u, err := parseUUID(s)
	return ZaakEigenschapID(u), err
}

func ParseKlantContactID(s string) (KlantContactID, error) {
	u, err := parseUUID(s)
	return KlantContactID(u), err
}

func ParseZaakInformatieObjectID(s string) (ZaakInformatieObjectID, error) {
	u, err := parseUUID(s)
	return ZaakInformatieObjectID(u), err
}

func ParseZaakBesluitID(s string) (ZaakBesluitID, error) {
	u, err := parseUUID(s)
	return ZaakBesluitID(u), err
}

func ParseBestandsDeelID(s string) (BestandsDeelID, error) {
	u, err := parseUUID(s)
	return BestandsDeelID(u), err
}

func ParseBesluitInformatieObjectID(s string) (BesluitInformatieObjectID, error) {
	u, err := parseUUID(s)
	return BesluitInformatieObjectID(u), err
}

func ParseObjectInformatieObjectID(s string) (ObjectInformatieObjectID, error) {
	u, err := parseUUID(s)
	return ObjectInformatieObjectID(u), err
}

func ParseGebruiksrechtenID(s string) (GebruiksrechtenID, error) {
	u, err := parseUUID(s)
	return GebruiksrechtenID(u), err
}

func ParseVerzendingID(s string) (VerzendingID, error) {
	u, err := parseUUID(s)
	return VerzendingID(u), err
}

func (id ZaakID) String() string                 { return uuid.UUID(id).String() }
func (id BesluitID) String() string              { return uuid.UUID(id).String() }
func (id DocumentID) String() string             { return uuid.UUID(id).String() }
func (id ApplicatieID) String() string           { return uuid.UUID(id).String() }
func (id StatusID) String() string               { return uuid.UUID(id).String() }
func (id RolID) String() string                  { return uuid.UUID(id).String() }
func (id ResultaatID) String() string            { return uuid.UUID(id).String() }
func (id ZaakObjectID) String() string           { return uuid.UUID(id).String() }
func (id ZaakEigenschapID) String() string       { return uuid.UUID(id).String() }
func (id KlantContactID) String() string         { return uuid.UUID(id).String() }
func (id ZaakInformatieObjectID) String() string { return uuid.UUID(id).String() }
func (id ZaakBesluitID) String() string          { return uuid.UUID(id).String() }
func (id BestandsDeelID) String() string         { return uuid.UUID(id).String() }

func (id BesluitInformatieObjectID) String() string { return uuid.UUID(id).String() }
func (id ObjectInformatieObjectID) String() string  { return uuid.UUID(id).String() }
func (id GebruiksrechtenID) String() string         { return uuid.UUID(id).String() }
func (id VerzendingID) String() string              { return uuid.UUID(id).String() }

func (id ZaakID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id BesluitID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ApplicatieID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
