package middleware

import (
	"net/http"

	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/httputil"
)

// CRSEPSG4326 is the only coordinate reference system the API accepts.
const CRSEPSG4326 = "EPSG:4326"

// RequireCRS enforces the Accept-Crs and Content-Crs headers on routes that
// carry geometry. A missing Accept-Crs is a precondition failure; a wrong
// value is not acceptable.
func RequireCRS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acceptCrs := r.Header.Get("Accept-Crs")
		if acceptCrs == "" {
			httputil.WriteJSON(w, http.StatusPreconditionFailed, httputil.Problem{
				Code:   "missing-crs",
				Title:  "Accept-Crs header is required.",
				Status: http.StatusPreconditionFailed,
			})
			return
		}
		if acceptCrs != CRSEPSG4326 {
			httputil.WriteJSON(w, http.StatusNotAcceptable, httputil.Problem{
				Code:   "crs-not-acceptable",
				Title:  "The requested CRS is not supported.",
				Status: http.StatusNotAcceptable,
			})
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if contentCrs := r.Header.Get("Content-Crs"); contentCrs != "" && contentCrs != CRSEPSG4326 {
				httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "Content-Crs must be "+CRSEPSG4326))
				return
			}
		}

		w.Header().Set("Content-Crs", CRSEPSG4326)
		next.ServeHTTP(w, r)
	})
}
