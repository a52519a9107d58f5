// Package domainerrors defines coded domain errors shared by all components.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate those into coded errors from this package so the HTTP
// layer can render stable problem-detail bodies without inspecting internals.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error code. Codes below the divider are
// part of the ZGW API standard and must not be renamed.
type Code string

const (
	CodeInvalidInput Code = "invalid"
	CodeUnauthorized Code = "not_authenticated"
	CodeForbidden    Code = "permission_denied"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
	CodeUpstream     Code = "upstream_unavailable"

	// Standardized 4xx codes.
	CodeBadURL                        Code = "bad-url"
	CodeInvalidResource               Code = "invalid-resource"
	CodeUnique                        Code = "unique"
	CodeExistingLock                  Code = "existing-lock"
	CodeUnlocked                      Code = "unlocked"
	CodeIncorrectLockID               Code = "incorrect-lock-id"
	CodeFileSize                      Code = "file-size"
	CodeIncompleteUpload              Code = "incomplete-upload"
	CodePendingRelations              Code = "pending-relations"
	CodeZaaktypeMismatch              Code = "zaaktype-mismatch"
	CodeMissingZaaktypeIOTRelation    Code = "missing-zaaktype-informatieobjecttype-relation"
	CodeMissingBesluittypeIOTRelation Code = "missing-besluittype-informatieobjecttype-relation"
	CodeIdentificatieNietUniek        Code = "identificatie-niet-uniek"
	CodeExistingGebruiksrechten       Code = "existing-gebruiksrechten"
	CodeMissingGebruiksrechten        Code = "missing-gebruiksrechten"
	CodeJWTExpired                    Code = "jwt-expired"
	CodeUnknownParameters             Code = "unknown-parameters"
	CodeNotPublished                  Code = "not-published"
	CodeDeelzaakAlsHoofdzaak          Code = "deelzaak-als-hoofdzaak"
	CodeSelfForbidden                 Code = "self-forbidden"
	CodeEmptySearchBody               Code = "empty_search_body"
	CodeImmutableField                Code = "wijzigen-niet-toegelaten"
)

// Error is a comparable coded error. Equal code+detail values compare equal,
// so tests can use errors.Is against a freshly constructed instance.
type Error struct {
	Code   Code
	Detail string
}

// New constructs a coded domain error.
func New(code Code, detail string) Error {
	return Error{Code: code, Detail: detail}
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// InvalidParam describes a single offending field in a validation error.
type InvalidParam struct {
	Name   string `json:"name"`
	Code   Code   `json:"code"`
	Reason string `json:"reason"`
}

// ValidationError carries per-field codes so clients can map errors to form
// controls. It always renders as HTTP 400 with top-level code "invalid".
type ValidationError struct {
	Params []InvalidParam
}

// Invalid constructs a validation error from one or more offending fields.
func Invalid(params ...InvalidParam) *ValidationError {
	return &ValidationError{Params: params}
}

// Param is shorthand for a single-field validation error.
func Param(name string, code Code, reason string) *ValidationError {
	return Invalid(InvalidParam{Name: name, Code: code, Reason: reason})
}

func (e *ValidationError) Error() string {
	if len(e.Params) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s (%s)", e.Params[0].Name, e.Params[0].Code)
}

// HasCode reports whether err carries the given code, either as a top-level
// coded error or as one of the invalid params of a validation error.
func HasCode(err error, code Code) bool {
	var de Error
	if errors.As(err, &de) && de.Code == code {
		return true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, p := range ve.Params {
			if p.Code == code {
				return true
			}
		}
	}
	return false
}

// CodeOf extracts the top-level code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de Error
	if errors.As(err, &de) {
		return de.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CodeInvalidInput
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status. Standardized state and
// conflict codes are client errors per the API standard.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized, CodeJWTExpired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInternal:
		return http.StatusInternalServerError
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
