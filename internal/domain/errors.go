package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrLocked indicates a checkout attempt on a document that already
	// has an editor. Retryable after backoff.
	ErrLocked = errors.New("document locked")

	// ErrNotEmpty indicates a non-recursive delete of a populated folder.
	ErrNotEmpty = errors.New("folder not empty")

	// Collaborator failure classes. Repository and blob-store layers wrap
	// the underlying pgx/os errors with one of these so callers never have
	// to match on collaborator-specific error values.
	ErrDatabase  = errors.New("database failure")
	ErrStorageIO = errors.New("storage i/o failure")
)

// LockedError carries the identity of the current lock holder so callers
// can surface it or decide to retry.
type LockedError struct {
	DocumentID string
	HolderID   string
}

// Error implements the error interface
func (e *LockedError) Error() string {
	return fmt.Sprintf("document %s is checked out by %s", e.DocumentID, e.HolderID)
}

// StatusCode implements the HTTPError interface
func (e *LockedError) StatusCode() int {
	return http.StatusLocked
}

// Is allows errors.Is() to match against ErrLocked
func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

// NotEmptyError reports a folder that still has documents or subfolders.
type NotEmptyError struct {
	FolderID string
}

// Error implements the error interface
func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("folder %s is not empty", e.FolderID)
}

// StatusCode implements the HTTPError interface
func (e *NotEmptyError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrNotEmpty
func (e *NotEmptyError) Is(target error) bool {
	return target == ErrNotEmpty
}

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, folder)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
