package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a Pantry error code.
type ErrorCode string

const (
	ErrInvalidRequest          ErrorCode = "INVALID_REQUEST"          // 400
	ErrNotFound                ErrorCode = "NOT_FOUND"                // 404
	ErrInternal                ErrorCode = "INTERNAL"                 // 500
	ErrMalformedStoredData     ErrorCode = "MALFORMED_STORED_DATA"    // 500, recovered locally
	ErrUpstreamFailure         ErrorCode = "UPSTREAM_FAILURE"         // 502
	ErrCollaboratorUnavailable ErrorCode = "COLLABORATOR_UNAVAILABLE" // 503, recovered locally
)

// PantryError represents a structured error with code, status, and details.
type PantryError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *PantryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *PantryError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for rejected input.
// No state has been mutated when this error is returned.
func NewInvalidRequest(msg string) *PantryError {
	return &PantryError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidFields creates a 400 error carrying per-field validation messages.
func NewInvalidFields(fields map[string]string) *PantryError {
	return &PantryError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: "validation failed",
		Details: map[string]any{"fields": fields},
	}
}

// NewNotFound creates a 404 error for a barcode or id that matched nothing.
func NewNotFound(identifier string) *PantryError {
	return &PantryError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewProductNotFound creates a 404 error for a barcode the lookup has no record of.
func NewProductNotFound(barcode string) *PantryError {
	return &PantryError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "Product not found",
		Details: map[string]any{"barcode": barcode},
	}
}

// NewUpstreamFailure creates a 502 error for transport or HTTP failures of the product lookup.
func NewUpstreamFailure(service string, err error) *PantryError {
	msg := fmt.Sprintf("%s request failed", service)
	if err != nil {
		msg = fmt.Sprintf("%s request failed: %v", service, err)
	}
	return &PantryError{
		Code:    ErrUpstreamFailure,
		Status:  502,
		Message: msg,
		Details: map[string]any{"service": service},
		Err:     err,
	}
}

// NewMalformedStoredData creates an error for a persisted collection that failed to parse.
// Callers recover from it by starting with an empty collection.
func NewMalformedStoredData(key string, err error) *PantryError {
	return &PantryError{
		Code:    ErrMalformedStoredData,
		Status:  500,
		Message: fmt.Sprintf("stored collection %q could not be parsed", key),
		Details: map[string]any{"key": key},
		Err:     err,
	}
}

// NewCollaboratorUnavailable creates an error for a failed AI enrichment call.
// Callers recover from it by substituting placeholder content.
func NewCollaboratorUnavailable(name string, err error) *PantryError {
	return &PantryError{
		Code:    ErrCollaboratorUnavailable,
		Status:  503,
		Message: fmt.Sprintf("%s unavailable", name),
		Details: map[string]any{"collaborator": name},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PantryError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PantryError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if err (or anything it wraps) is a PantryError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PantryError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// As returns the PantryError in err's chain, if any.
func As(err error) (*PantryError, bool) {
	var pErr *PantryError
	if stderrors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}

// Message returns the PantryError message in err's chain, prefixed with any
// context added by wrapping. Errors without a PantryError return err.Error().
func Message(err error) string {
	pErr, ok := As(err)
	if !ok {
		return err.Error()
	}
	return strings.TrimSuffix(err.Error(), pErr.Error()) + pErr.Message
}
