// Package brc implements the decision registration component: decisions and
// the relation rows that tie them to cases in the ZRC and documents in the
// DRC.
package brc

import (
	"zgw/internal/reference"
	"zgw/pkg/domain"
)

// Besluit is a formal decision taken by a government body.
type Besluit struct {
	ID                           domain.BesluitID
	Identificatie                string
	VerantwoordelijkeOrganisatie string

	// Besluittype points at the catalog, locally or in a remote ZTC.
	Besluittype reference.Ref
	// Zaak is the optional case the decision was taken in.
	Zaak reference.Ref

	Datum                  domain.Date
	Ingangsdatum           domain.Date
	Vervaldatum            *domain.Date
	Vervalreden            string
	Publicatiedatum        *domain.Date
	Verzenddatum           *domain.Date
	UiterlijkeReactiedatum *domain.Date

	Bestuursorgaan string
	Toelichting    string

	// ZaakMirrorURL records the zaakbesluit row the ZRC holds for its
	// reverse listing when the case side is set.
	ZaakMirrorURL string
}

// BesluitInformatieObject relates a decision to a document. The document side
// may be remote, in which case MirrorURL records the objectinformatieobject
// row the DRC holds.
type BesluitInformatieObject struct {
	ID               domain.BesluitInformatieObjectID
	BesluitID        domain.BesluitID
	InformatieObject reference.Ref
	MirrorURL        string
}

// BesluitFilter restricts decision listings.
type BesluitFilter struct {
	VerantwoordelijkeOrganisatie string
	Identificatie                string
	BesluittypeURL               string
	ZaakURL                      string

	Page     int
	PageSize int
}

// Page is one page of a decision listing.
type Page struct {
	Count    int       `json:"count"`
	Next     string    `json:"next,omitempty"`
	Previous string    `json:"previous,omitempty"`
	Results  []Besluit `json:"results"`
}
