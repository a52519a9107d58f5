// Package httputil centralizes JSON writing and problem-detail error
// rendering so every component returns the same error envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/sentinel"
)

// Problem is the problem-detail JSON body returned on every error.
type Problem struct {
	Code          string                 `json:"code"`
	Title         string                 `json:"title"`
	Status        int                    `json:"status"`
	Detail        string                 `json:"detail,omitempty"`
	Instance      string                 `json:"instance"`
	InvalidParams []dErrors.InvalidParam `json:"invalidParams,omitempty"`
}

var titles = map[dErrors.Code]string{
	dErrors.CodeInvalidInput: "Invalid input.",
	dErrors.CodeUnauthorized: "Authentication credentials were not provided or are invalid.",
	dErrors.CodeForbidden:    "You do not have permission to perform this action.",
	dErrors.CodeNotFound:     "Not found.",
	dErrors.CodeConflict:     "Conflict.",
	dErrors.CodeInternal:     "Internal server error.",
	dErrors.CodeUpstream:     "Upstream service unavailable.",
}

func titleFor(code dErrors.Code) string {
	if t, ok := titles[code]; ok {
		return t
	}
	return "Invalid input."
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a problem-detail response.
// Internal errors omit the detail so infrastructure facts never leak.
func WriteError(w http.ResponseWriter, err error) {
	problem := Problem{
		Instance: "urn:uuid:" + uuid.NewString(),
	}

	var ve *dErrors.ValidationError
	var de dErrors.Error
	switch {
	case errors.As(err, &ve):
		problem.Code = string(dErrors.CodeInvalidInput)
		problem.Status = http.StatusBadRequest
		problem.InvalidParams = ve.Params
	case errors.As(err, &de):
		problem.Code = string(de.Code)
		problem.Status = dErrors.ToHTTPStatus(de.Code)
		if de.Code != dErrors.CodeInternal {
			problem.Detail = de.Detail
		}
	case errors.Is(err, sentinel.ErrNotFound):
		problem.Code = string(dErrors.CodeNotFound)
		problem.Status = http.StatusNotFound
	default:
		problem.Code = string(dErrors.CodeInternal)
		problem.Status = http.StatusInternalServerError
	}
	problem.Title = titleFor(dErrors.Code(problem.Code))

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// Decode parses the JSON request body into T. On failure it writes a 400
// problem and returns ok=false so handlers can bail out with one line.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var out T
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "malformed request body", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "request body is not valid JSON"))
		return out, false
	}
	return out, true
}
