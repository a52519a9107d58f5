package middleware

import (
	"net/http"
	"strings"

	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/httputil"
)

// AllowedQueryParams rejects list requests carrying parameters the endpoint
// does not know, so typos never silently return unfiltered results.
func AllowedQueryParams(allowed ...string) func(http.Handler) http.Handler {
	allowSet := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allowSet[name] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var unknown []string
			for name := range r.URL.Query() {
				if _, ok := allowSet[name]; !ok {
					unknown = append(unknown, name)
				}
			}
			if len(unknown) > 0 {
				httputil.WriteError(w, dErrors.New(
					dErrors.CodeUnknownParameters,
					"unknown query parameters: "+strings.Join(unknown, ", "),
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
