package authz

import (
	"fmt"
	"strings"

	id "zgw/pkg/domain"
)

// FilterRule admits rows of one type up to a confidentiality ceiling.
type FilterRule struct {
	TypeURL              string
	MaxVertrouwelijkheid id.Vertrouwelijkheid
}

// Filter is the row-level restriction derived from the caller's effective
// grants for one (component, scope) pair. Stores push it into the query so
// pagination counts stay correct.
type Filter struct {
	// All bypasses every rule (superuser applications).
	All   bool
	Rules []FilterRule
}

// AllowAll is the superuser filter.
var AllowAll = Filter{All: true}

// Allows reports whether a single object passes the filter.
func (f Filter) Allows(typeURL string, vertrouwelijkheid id.Vertrouwelijkheid) bool {
	if f.All {
		return true
	}
	for _, rule := range f.Rules {
		if rule.TypeURL == typeURL && vertrouwelijkheid.AtMost(rule.MaxVertrouwelijkheid) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter admits nothing.
func (f Filter) Empty() bool {
	return !f.All && len(f.Rules) == 0
}

// SQLPredicate renders the filter as a WHERE fragment over the given type and
// confidentiality-order columns. The confidentiality column must store the
// numeric order (see domain.Vertrouwelijkheid.Order) so the comparison is a
// plain integer <=.
//
// Returns ("TRUE", nil) for superusers and ("FALSE", nil) for empty filters.
func (f Filter) SQLPredicate(typeColumn, orderColumn string, argOffset int) (string, []any) {
	if f.All {
		return "TRUE", nil
	}
	if len(f.Rules) == 0 {
		return "FALSE", nil
	}

	clauses := make([]string, 0, len(f.Rules))
	args := make([]any, 0, len(f.Rules)*2)
	for i, rule := range f.Rules {
		clauses = append(clauses, fmt.Sprintf("(%s = $%d AND %s <= $%d)",
			typeColumn, argOffset+i*2+1,
			orderColumn, argOffset+i*2+2,
		))
		args = append(args, rule.TypeURL, rule.MaxVertrouwelijkheid.Order())
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}
