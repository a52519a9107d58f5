// Package drc implements the document registration component: canonical
// documents with immutable versions, the write-lock protocol, chunked
// uploads, usage rights, sendings and the relation index rows that the case
// and decision services mirror into.
package drc

import (
	"time"

	"zgw/internal/reference"
	"zgw/pkg/domain"
)

// InformatieObject is the canonical document entity. Version-independent
// identity and the write lock live here; everything else is versioned.
type InformatieObject struct {
	ID              domain.DocumentID
	Identificatie   string
	Bronorganisatie string

	// Informatieobjecttype points at the catalog, always by URL.
	Informatieobjecttype reference.Ref

	Vertrouwelijkheid domain.Vertrouwelijkheid

	// IndicatieGebruiksrecht is nil while unset; true requires at least one
	// gebruiksrechten row.
	IndicatieGebruiksrecht *bool

	// Lock is the active write-lock token. Empty means unlocked. Write-only:
	// it never appears in serialised output.
	Lock string
}

func (o *InformatieObject) Locked() bool { return o.Lock != "" }

// Versie is one immutable version of a document. Versions are numbered from 1
// and only the highest is ever extended with content.
type Versie struct {
	Versie     int
	DocumentID domain.DocumentID

	Titel        string
	Auteur       string
	Taal         string
	Status       string
	Formaat      string
	Bestandsnaam string
	Beschrijving string

	// Bestandsomvang is the expected content size in bytes; nil when the
	// version carries no file.
	Bestandsomvang *int64

	// ContentKey addresses the version's blob in the document backend. Empty
	// while a chunked upload is still in progress.
	ContentKey string

	BeginRegistratie time.Time
}

// Document is the read model: the canonical row joined with one version.
type Document struct {
	InformatieObject
	Versie
}

// BestandsDeel is one expected part of a chunked upload. Rows exist only
// while an upload is in progress and are consumed on unlock.
type BestandsDeel struct {
	ID         domain.BestandsDeelID
	DocumentID domain.DocumentID
	Volgnummer int
	Omvang     int64
	Voltooid   bool
}

// Gebruiksrechten records the usage conditions that apply to a document.
type Gebruiksrechten struct {
	ID                      domain.GebruiksrechtenID
	DocumentID              domain.DocumentID
	Startdatum              domain.Date
	Einddatum               *domain.Date
	OmschrijvingVoorwaarden string
}

// Verzending records a postal sending or receipt of a document to or from a
// party.
type Verzending struct {
	ID             domain.VerzendingID
	DocumentID     domain.DocumentID
	Betrokkene     string
	AardRelatie    string
	Toelichting    string
	Ontvangstdatum *domain.Date
	Verzenddatum   *domain.Date
}

// ObjectInformatieObject is the index row recording which case or decision a
// document relates to. Rows are created through the mirror protocol by the
// owning service; Object is the case or decision URL.
type ObjectInformatieObject struct {
	ID         domain.ObjectInformatieObjectID
	DocumentID domain.DocumentID
	Object     reference.Ref
	ObjectType string
}

// DocumentFilter restricts document listings.
type DocumentFilter struct {
	Identificatie   string
	Bronorganisatie string

	Page     int
	PageSize int
}

// Page is one page of a document listing.
type Page struct {
	Count    int        `json:"count"`
	Next     string     `json:"next,omitempty"`
	Previous string     `json:"previous,omitempty"`
	Results  []Document `json:"results"`
}
