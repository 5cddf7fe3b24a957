package ledger

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. Nothing was sent to storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ledger: invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports a companion or payment id that does not exist.
type NotFoundError struct {
	Kind string // "companion" or "payment"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ledger: %s not found: %s", e.Kind, e.ID)
}

// ConflictError reports a duplicate companion name or derived id.
type ConflictError struct {
	Field string // "name" or "id"
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ledger: companion with %s %q already exists", e.Field, e.Value)
}

// StorageError wraps a persistence failure. It is never retried by the engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger: storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation returns true if err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound returns true if err is (or wraps) a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict returns true if err is (or wraps) a *ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsStorage returns true if err is (or wraps) a *StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
