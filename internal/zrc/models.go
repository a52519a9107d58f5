// Package zrc implements the case registration component: cases, their
// status history, results, roles, related objects and the relation rows that
// mirror into the decision and document services.
package zrc

import (
	"encoding/json"
	"time"

	"zgw/internal/reference"
	"zgw/pkg/domain"
)

// Zaak is a case handled by a government body.
type Zaak struct {
	ID              domain.ZaakID
	Identificatie   string
	Bronorganisatie string
	Omschrijving    string
	Toelichting     string

	// Zaaktype points at the catalog, locally or in a remote ZTC.
	Zaaktype reference.Ref
	// Hoofdzaak is the optional parent case; nesting is one level deep.
	Hoofdzaak reference.Ref

	Registratiedatum             domain.Date
	Startdatum                   domain.Date
	EinddatumGepland             *domain.Date
	UiterlijkeEinddatumAfdoening *domain.Date
	Einddatum                    *domain.Date

	Vertrouwelijkheid  domain.Vertrouwelijkheid
	Betalingsindicatie string

	// Zaakgeometrie is a GeoJSON geometry in EPSG:4326.
	Zaakgeometrie json.RawMessage

	Opschorting Opschorting
	Verlenging  Verlenging
}

// Opschorting records a suspension of the case's term.
type Opschorting struct {
	Indicatie bool   `json:"indicatie"`
	Reden     string `json:"reden,omitempty"`
}

// Verlenging records an extension of the case's term.
type Verlenging struct {
	Reden    string `json:"reden,omitempty"`
	DuurDays int    `json:"duur,omitempty"`
}

// Status is one entry in a case's status history. IsEindstatus is resolved
// against the catalog when the status is set, so lifecycle checks never need
// a catalog round trip.
type Status struct {
	ID                domain.StatusID
	ZaakID            domain.ZaakID
	Statustype        string
	DatumStatusGezet  time.Time
	Statustoelichting string
	IsEindstatus      bool
}

// Resultaat is the single result of a case.
type Resultaat struct {
	ID            domain.ResultaatID
	ZaakID        domain.ZaakID
	Resultaattype string
	Toelichting   string
}

// Rol relates a party (person, organisation, department) to a case.
type Rol struct {
	ID               domain.RolID
	ZaakID           domain.ZaakID
	Betrokkene       string
	BetrokkeneType   string
	Roltype          string
	Roltoelichting   string
	Registratiedatum time.Time
}

// ZaakObject links a case to an external object (building, parcel, permit).
type ZaakObject struct {
	ID                  domain.ZaakObjectID
	ZaakID              domain.ZaakID
	Object              string
	ObjectType          string
	RelatieOmschrijving string
}

// ZaakEigenschap is a typed property value on a case.
type ZaakEigenschap struct {
	ID         domain.ZaakEigenschapID
	ZaakID     domain.ZaakID
	Eigenschap string
	Naam       string
	Waarde     string
}

// KlantContact records a customer contact moment on a case.
type KlantContact struct {
	ID            domain.KlantContactID
	ZaakID        domain.ZaakID
	Identificatie string
	Datumtijd     time.Time
	Kanaal        string
	Onderwerp     string
	Toelichting   string
}

// ZaakInformatieObject relates a case to a document. The document side may be
// remote, in which case MirrorURL records the row the DRC holds for its
// reverse listing.
type ZaakInformatieObject struct {
	ID               domain.ZaakInformatieObjectID
	ZaakID           domain.ZaakID
	InformatieObject reference.Ref
	Titel            string
	Beschrijving     string
	AardRelatie      string
	Registratiedatum time.Time
	MirrorURL        string
}

// ZaakBesluit is the ZRC-side mirror of a decision's case relation. Rows are
// created by the BRC (remotely or in-process) when a decision cites a case.
type ZaakBesluit struct {
	ID      domain.ZaakBesluitID
	ZaakID  domain.ZaakID
	Besluit reference.Ref
}

// ZaakFilter restricts case listings.
type ZaakFilter struct {
	Bronorganisatie      string
	Identificatie        string
	ZaaktypeURL          string
	MaxVertrouwelijkheid *domain.Vertrouwelijkheid
	// Within filters on cases whose geometry lies inside this GeoJSON
	// polygon; used by the _zoek operation.
	Within json.RawMessage

	Page     int
	PageSize int
}

// Page is one page of a case listing.
type Page struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []Zaak `json:"results"`
}
