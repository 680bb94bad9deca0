// Package domainerrors defines the coded errors shared by services and
// handlers. Services return these so the transport layer can translate them
// without inspecting error strings.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	// CodeValidation covers malformed or contradictory input, e.g. a
	// declaration with an expiration date in the past.
	CodeValidation Code = "validation_error"
	// CodeInvalidState marks an operation attempted from a workflow status
	// that does not permit it.
	CodeInvalidState Code = "invalid_state"
	// CodePermissionDenied marks an actor whose role is not authorized for
	// the operation.
	CodePermissionDenied Code = "permission_denied"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks an operation that violates a uniqueness constraint.
	CodeConflict Code = "conflict"
	// CodeBadRequest marks a request the transport layer could not decode.
	CodeBadRequest Code = "bad_request"
	// CodeTimeout marks a transaction aborted by context cancellation.
	CodeTimeout Code = "timeout"
	// CodeInternal marks unexpected failures; details are not exposed.
	CodeInternal Code = "internal_error"
)

// DomainError carries a code plus a human-readable explanation.
type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New creates a DomainError with the given code and message.
func New(code Code, message string) error {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err is not a
// DomainError.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer responds
// with. Unknown codes map to 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState, CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
