// Package apperror defines the typed error taxonomy for the API.
package apperror

import (
	"errors"
	"fmt"
)

// Error kinds. Callers branch on these with errors.Is instead of
// string-matching messages.
var (
	ErrAuth     = errors.New("authentication required")
	ErrUpstream = errors.New("upstream api failure")
	ErrStorage  = errors.New("storage failure")
	ErrNotFound = errors.New("not found")
)

// AppError carries an error kind, a human-readable message and an
// optional underlying cause.
type AppError struct {
	Kind    error  // one of the kind sentinels above
	Message string // human-readable error message
	Err     error  // underlying cause, may be nil
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Auth returns an AppError indicating the caller must re-authenticate.
// HTTP handlers map this to 401 Unauthorized.
func Auth(message string, cause error) *AppError {
	return &AppError{
		Kind:    ErrAuth,
		Message: message,
		Err:     cause,
	}
}

// Upstream returns an AppError for a failed third-party API call.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Kind:    ErrUpstream,
		Message: message,
		Err:     cause,
	}
}

// Storage returns an AppError for a database or blob-store failure.
func Storage(message string, cause error) *AppError {
	return &AppError{
		Kind:    ErrStorage,
		Message: message,
		Err:     cause,
	}
}

// NotFound returns an AppError for a missing resource.
// HTTP handlers map this to 404 Not Found.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}
