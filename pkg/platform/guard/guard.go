// Package guard blocks bulk mutations on versioned tables. Documents,
// decisions and their relation rows must be mutated one row at a time so the
// version pinning, audit and notification hooks always run; a statement that
// would touch an unbounded set of rows is refused before it reaches the
// database.
package guard

import (
	"errors"
	"strings"
)

// ErrQueryBlocked is returned for UPDATE and DELETE statements without a row
// predicate.
var ErrQueryBlocked = errors.New("query blocked: bulk mutations bypass row-level hooks")

// CheckMutation validates a SQL statement before execution. INSERTs and
// SELECTs pass through; UPDATE and DELETE must carry a WHERE clause with at
// least one bound parameter.
func CheckMutation(query string) error {
	q := strings.ToLower(strings.TrimSpace(query))
	if !strings.HasPrefix(q, "update") && !strings.HasPrefix(q, "delete") {
		return nil
	}
	if !strings.Contains(q, "where") || !strings.Contains(q, "$") {
		return ErrQueryBlocked
	}
	return nil
}
