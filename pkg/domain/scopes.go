package domain

// Component identifies one of the cooperating ZGW services.
type Component string

const (
	ComponentZRC Component = "zrc"
	ComponentBRC Component = "brc"
	ComponentDRC Component = "drc"
	ComponentZTC Component = "ztc"
	ComponentAC  Component = "ac"
	ComponentNRC Component = "nrc"
)

// Scope is a named capability checked per operation.
type Scope string

const (
	ScopeZakenLezen               Scope = "zaken.lezen"
	ScopeZakenAanmaken            Scope = "zaken.aanmaken"
	ScopeZakenBijwerken           Scope = "zaken.bijwerken"
	ScopeZakenVerwijderen         Scope = "zaken.verwijderen"
	ScopeZakenGeforceerdBijwerken Scope = "zaken.geforceerd-bijwerken"
	ScopeZakenHeropenen           Scope = "zaken.heropenen"
	ScopeStatussenToevoegen       Scope = "zaken.statussen.toevoegen"

	ScopeBesluitenLezen       Scope = "besluiten.lezen"
	ScopeBesluitenAanmaken    Scope = "besluiten.aanmaken"
	ScopeBesluitenBijwerken   Scope = "besluiten.bijwerken"
	ScopeBesluitenVerwijderen Scope = "besluiten.verwijderen"

	ScopeDocumentenLezen            Scope = "documenten.lezen"
	ScopeDocumentenAanmaken         Scope = "documenten.aanmaken"
	ScopeDocumentenBijwerken        Scope = "documenten.bijwerken"
	ScopeDocumentenVerwijderen      Scope = "documenten.verwijderen"
	ScopeDocumentenLock             Scope = "documenten.lock"
	ScopeDocumentenGeforceerdUnlock Scope = "documenten.geforceerd-unlock"

	ScopeAuditTrailsLezen    Scope = "audittrails.lezen"
	ScopeNotificatiesPublish Scope = "notificaties.publiceren"
)

// ScopeSet is an unordered collection of scopes.
type ScopeSet map[Scope]struct{}

// NewScopeSet builds a set from a slice of scope names.
func NewScopeSet(scopes ...Scope) ScopeSet {
	set := make(ScopeSet, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return set
}

func (s ScopeSet) Contains(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

// Intersect returns the scopes present in both sets. Used for role
// narrowing: a role can restrict but never widen application grants.
func (s ScopeSet) Intersect(other ScopeSet) ScopeSet {
	out := make(ScopeSet)
	for scope := range s {
		if other.Contains(scope) {
			out[scope] = struct{}{}
		}
	}
	return out
}

// Slice returns the scopes as a slice for serialization. Order is not
// guaranteed.
func (s ScopeSet) Slice() []string {
	out := make([]string, 0, len(s))
	for scope := range s {
		out = append(out, string(scope))
	}
	return out
}
