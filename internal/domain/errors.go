package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	// ErrNotFound indicates a referenced id is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an operation would violate an invariant
	// (folder cycle, duplicate unique key).
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream indicates the external AI service is unavailable or
	// returned a malformed response.
	ErrUpstream = errors.New("upstream error")
	// ErrStorage indicates an underlying persistence failure.
	ErrStorage = errors.New("storage error")
)

// ConflictError carries details about the invariant an operation would
// have violated.
type ConflictError struct {
	Message      string
	ResourceType string // folder, note, tag
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
