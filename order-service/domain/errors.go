package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the order store contract.
var (
	// ErrOrderNotFound is returned when a write targets an unknown order id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrVersionConflict is returned when a write targets a stale version.
	// The stored record is left unchanged; the caller must not retry with
	// the same snapshot.
	ErrVersionConflict = errors.New("order version conflict")
)

// ValidationError rejects a malformed request before any saga work begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a request field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a request validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps a persistence I/O failure. It is fatal to the current
// saga invocation and surfaced to the operator.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps an I/O failure from the storage engine
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// DependencyUnavailableError reports that a downstream notification call
// failed, timed out, or was rejected by an open circuit breaker. It triggers
// saga-level rollback.
type DependencyUnavailableError struct {
	Dependency string
	Err        error
}

func (e *DependencyUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyUnavailableError) Unwrap() error {
	return e.Err
}

// NewDependencyUnavailable creates an unavailability error for a dependency
func NewDependencyUnavailable(dependency string, err error) *DependencyUnavailableError {
	return &DependencyUnavailableError{Dependency: dependency, Err: err}
}

// IsDependencyUnavailable reports whether err is a downstream availability failure
func IsDependencyUnavailable(err error) bool {
	var de *DependencyUnavailableError
	return errors.As(err, &de)
}
