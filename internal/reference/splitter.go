package reference

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	dErrors "zgw/pkg/domain-errors"
)

// Splitter classifies incoming reference URLs as local or remote by comparing
// them against this deployment's own base URL. Clients always submit URLs;
// storage keeps local ones as foreign keys.
type Splitter struct {
	baseURL string
}

func NewSplitter(baseURL string) *Splitter {
	return &Splitter{baseURL: strings.TrimRight(baseURL, "/")}
}

// Split parses a submitted reference URL. URLs under our own base become
// Local refs and must carry a parseable UUID tail; everything else stays
// Remote and is resolved over HTTP when needed.
func (s *Splitter) Split(rawURL string) (Ref, error) {
	if rawURL == "" {
		return Ref{}, nil
	}
	if strings.HasPrefix(rawURL, s.baseURL+"/") {
		id, ok := UUIDFromURL(rawURL)
		if !ok {
			return Ref{}, dErrors.New(dErrors.CodeBadURL, "local reference URL has no resource id")
		}
		return Local(id), nil
	}
	return Remote(rawURL)
}

// SplitParam is Split with the failure reported as a validation error on the
// named request field.
func (s *Splitter) SplitParam(field, rawURL string) (Ref, error) {
	ref, err := s.Split(rawURL)
	if err != nil {
		return Ref{}, dErrors.Param(field, dErrors.CodeOf(err), "the URL is invalid or does not point at a known resource")
	}
	return ref, nil
}

// Render turns a Ref back into the URL form the API exposes. Local refs are
// rendered under our base URL with the given collection path.
func (s *Splitter) Render(collection string, ref Ref) string {
	switch {
	case ref.IsLocal():
		return s.baseURL + "/" + strings.Trim(collection, "/") + "/" + ref.LocalID().String()
	case ref.IsRemote():
		return ref.URL()
	default:
		return ""
	}
}

// ResourceURL renders the canonical URL of a local resource.
func (s *Splitter) ResourceURL(collection string, id uuid.UUID) string {
	return s.baseURL + "/" + strings.Trim(collection, "/") + "/" + id.String()
}

// PageLinks renders the next and previous links of a paginated listing over
// the given collection. A link is omitted at its edge of the result set.
func (s *Splitter) PageLinks(collection string, page, pageSize, total int) (next, previous string) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	collectionURL := s.baseURL + "/" + strings.Trim(collection, "/")
	if page*pageSize < total {
		next = fmt.Sprintf("%s?page=%d&pageSize=%d", collectionURL, page+1, pageSize)
	}
	if page > 1 {
		previous = fmt.Sprintf("%s?page=%d&pageSize=%d", collectionURL, page-1, pageSize)
	}
	return next, previous
}
