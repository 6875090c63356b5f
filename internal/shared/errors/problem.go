// Package errors renders failures as RFC 7807 Problem Details.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem body.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// Problem type URIs, relative to the responder's base URI.
const (
	TypeValidation         = "/problems/validation-error"
	TypeBadRequest         = "/problems/bad-request"
	TypeUnauthorized       = "/problems/unauthorized"
	TypeForbidden          = "/problems/forbidden"
	TypeNotFound           = "/problems/not-found"
	TypeConflict           = "/problems/conflict"
	TypeInternal           = "/problems/internal-error"
	TypeServiceUnavailable = "/problems/service-unavailable"
)

func problem(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

var (
	// ErrValidation rejects input the domain refused, such as a blank table.
	ErrValidation = problem(TypeValidation, "Validation Error", http.StatusBadRequest)

	// ErrBadRequest rejects bodies that could not be decoded.
	ErrBadRequest = problem(TypeBadRequest, "Bad Request", http.StatusBadRequest)

	ErrUnauthorized = problem(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)

	ErrForbidden = problem(TypeForbidden, "Forbidden", http.StatusForbidden)

	ErrNotFound = problem(TypeNotFound, "Resource Not Found", http.StatusNotFound)

	// ErrConflict covers disallowed status changes and reused idempotency keys.
	ErrConflict = problem(TypeConflict, "Conflict", http.StatusConflict)

	ErrInternal = problem(TypeInternal, "Internal Server Error", http.StatusInternalServerError)

	// ErrServiceUnavailable reports a failing document store or identity backend.
	ErrServiceUnavailable = problem(TypeServiceUnavailable, "Service Unavailable", http.StatusServiceUnavailable)
)
