package domain

import dErrors "zgw/pkg/domain-errors"

// Vertrouwelijkheid is the ordinal confidentiality level of a case or
// document. Levels are ordered; authorization compares them with Cmp.
type Vertrouwelijkheid string

const (
	VertrouwelijkheidOpenbaar          Vertrouwelijkheid = "openbaar"
	VertrouwelijkheidBeperktOpenbaar   Vertrouwelijkheid = "beperkt_openbaar"
	VertrouwelijkheidIntern            Vertrouwelijkheid = "intern"
	VertrouwelijkheidZaakvertrouwelijk Vertrouwelijkheid = "zaakvertrouwelijk"
	VertrouwelijkheidVertrouwelijk     Vertrouwelijkheid = "vertrouwelijk"
	VertrouwelijkheidConfidentieel     Vertrouwelijkheid = "confidentieel"
	VertrouwelijkheidGeheim            Vertrouwelijkheid = "geheim"
	VertrouwelijkheidZeerGeheim        Vertrouwelijkheid = "zeer_geheim"
)

// vertrouwelijkheidOrder is the single source of truth for level ordering.
var vertrouwelijkheidOrder = map[Vertrouwelijkheid]int{
	VertrouwelijkheidOpenbaar:          0,
	VertrouwelijkheidBeperktOpenbaar:   1,
	VertrouwelijkheidIntern:            2,
	VertrouwelijkheidZaakvertrouwelijk: 3,
	VertrouwelijkheidVertrouwelijk:     4,
	VertrouwelijkheidConfidentieel:     5,
	VertrouwelijkheidGeheim:            6,
	VertrouwelijkheidZeerGeheim:        7,
}

// ParseVertrouwelijkheid validates external input against the allowlist.
func ParseVertrouwelijkheid(s string) (Vertrouwelijkheid, error) {
	v := Vertrouwelijkheid(s)
	if !v.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown vertrouwelijkheidaanduiding")
	}
	return v, nil
}

func (v Vertrouwelijkheid) IsValid() bool {
	_, ok := vertrouwelijkheidOrder[v]
	return ok
}

// Order returns the numeric rank of the level. Unknown levels rank above
// every known level so a malformed grant never widens access.
func (v Vertrouwelijkheid) Order() int {
	if o, ok := vertrouwelijkheidOrder[v]; ok {
		return o
	}
	return len(vertrouwelijkheidOrder)
}

// AtMost reports whether v is at or below the given maximum level.
func (v Vertrouwelijkheid) AtMost(max Vertrouwelijkheid) bool {
	return v.Order() <= max.Order()
}

func (v Vertrouwelijkheid) String() string { return string(v) }
