package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError reports a write that collides with existing state, such
// as a second copy into a workspace whose graph already has those ids
type ConflictError struct {
	Message      string
	ResourceType string // graph, workspace, collection
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status for a conflict
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Invalid wraps a validation failure so it matches ErrValidation
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StatusCode maps an error returned by a service to an HTTP status.
// Unknown errors are internal.
func StatusCode(err error) int {
	var coded interface{ StatusCode() int }
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &coded):
		return coded.StatusCode()
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
