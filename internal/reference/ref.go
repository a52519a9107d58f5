// Package reference implements the hybrid local/remote reference model.
// A reference field holds either a foreign key to a local row or an absolute
// URL into a peer service; resolution is transparent to callers.
package reference

import (
	"database/sql"
	"net/url"
	"strings"

	"github.com/google/uuid"

	dErrors "zgw/pkg/domain-errors"
)

// Ref is the tagged variant {Local(id) | Remote(url)}. The zero Ref means
// "no reference", which is only valid for nullable fields.
type Ref struct {
	localID uuid.UUID
	url     string
}

// Local constructs a reference to a local row.
func Local(id uuid.UUID) Ref {
	return Ref{localID: id}
}

// Remote constructs a reference to a resource in another service.
// The URL must be absolute.
func Remote(rawURL string) (Ref, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return Ref{}, dErrors.New(dErrors.CodeBadURL, "reference is not an absolute URL")
	}
	return Ref{url: rawURL}, nil
}

// FromColumns reconstructs a Ref from its two nullable storage columns.
// Exactly one being set is the invariant; both set is corrupt storage.
func FromColumns(fk sql.NullString, rawURL sql.NullString) (Ref, error) {
	switch {
	case fk.Valid && rawURL.Valid:
		return Ref{}, dErrors.New(dErrors.CodeInvalidResource, "reference has both fk and url set")
	case fk.Valid:
		id, err := uuid.Parse(fk.String)
		if err != nil {
			return Ref{}, dErrors.New(dErrors.CodeInvalidResource, "reference fk is not a UUID")
		}
		return Local(id), nil
	case rawURL.Valid:
		return Remote(rawURL.String)
	default:
		return Ref{}, nil
	}
}

// Columns renders the Ref back into its nullable storage columns.
func (r Ref) Columns() (fk sql.NullString, rawURL sql.NullString) {
	if r.IsLocal() {
		fk = sql.NullString{String: r.localID.String(), Valid: true}
	}
	if r.IsRemote() {
		rawURL = sql.NullString{String: r.url, Valid: true}
	}
	return fk, rawURL
}

func (r Ref) IsZero() bool   { return r.localID == uuid.Nil && r.url == "" }
func (r Ref) IsLocal() bool  { return r.localID != uuid.Nil }
func (r Ref) IsRemote() bool { return r.url != "" }

// LocalID returns the local row id, valid only when IsLocal.
func (r Ref) LocalID() uuid.UUID { return r.localID }

// URL returns the remote URL, valid only when IsRemote.
func (r Ref) URL() string { return r.url }

// Equal reports whether two references point at the same thing. Used by the
// immutability validator: once set, a reference may not change.
func (r Ref) Equal(other Ref) bool {
	return r.localID == other.localID && r.url == other.url
}

// String renders the reference for logging.
func (r Ref) String() string {
	switch {
	case r.IsLocal():
		return "local:" + r.localID.String()
	case r.IsRemote():
		return r.url
	default:
		return "<none>"
	}
}

// CheckImmutable validates a reference update against the stored value.
// Changing a set reference is rejected with wijzigen-niet-toegelaten.
func CheckImmutable(field string, stored, updated Ref) error {
	if stored.IsZero() || stored.Equal(updated) {
		return nil
	}
	return dErrors.Param(field, dErrors.CodeImmutableField, "this field may not be changed after creation")
}

// UUIDFromURL extracts the trailing UUID path segment from a resource URL.
func UUIDFromURL(rawURL string) (uuid.UUID, bool) {
	idx := strings.LastIndex(strings.TrimRight(rawURL, "/"), "/")
	if idx < 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimRight(rawURL, "/")[idx+1:])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
