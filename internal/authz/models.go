package authz

import (
	id "zgw/pkg/domain"
)

// Applicatie is a registered client application. Its client id is carried in
// the JWT; its grants decide what the caller may see and do.
type Applicatie struct {
	ID       id.ApplicatieID
	ClientID string
	Secret   string
	Label    string

	// HeeftAlleAutorisaties skips all per-row checks.
	HeeftAlleAutorisaties bool

	Autorisaties []Autorisatie
}

// Autorisatie is a single authorization grant: a component, a scope set, a
// type reference and a confidentiality ceiling.
type Autorisatie struct {
	Component id.Component
	Scopes    id.ScopeSet

	// TypeURL is the zaaktype/besluittype/informatieobjecttype this grant
	// applies to. Local types are still addressed by their canonical URL so
	// grants compare uniformly across local and remote catalogs.
	TypeURL string

	MaxVertrouwelijkheid id.Vertrouwelijkheid
}

// Rol is a named narrowing profile an application can assume via the JWT
// roles claim. Role grants intersect with application grants; they never
// broaden them.
type Rol struct {
	Naam   string
	Grants []Autorisatie
}
