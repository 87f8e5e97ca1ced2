// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation indicates a quote or filter value failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrFormat indicates an import document has the wrong shape.
	ErrFormat = errors.New("invalid document format")

	// ErrPersistence indicates the persistence adapter failed to read or write.
	ErrPersistence = errors.New("persistence failure")

	// ErrUnavailable indicates the remote quote source could not be reached.
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// FormatError reports a document that cannot be imported at all.
type FormatError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid document format: %s: %v", e.Reason, e.Cause)
	}

	return "invalid document format: " + e.Reason
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *FormatError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrFormat, e.Cause}
	}

	return []error{ErrFormat}
}

// NewFormatError creates a format error with an optional underlying cause.
func NewFormatError(reason string, cause error) error {
	return &FormatError{Reason: reason, Cause: cause}
}

// PersistenceError provides context for a failed read or write of a storage key.
type PersistenceError struct {
	Op    string // "get" or "set"
	Key   string
	Cause error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persistence %s %q failed: %v", e.Op, e.Key, e.Cause)
	}

	return fmt.Sprintf("persistence %s %q failed", e.Op, e.Key)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *PersistenceError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrPersistence, e.Cause}
	}

	return []error{ErrPersistence}
}

// NewPersistenceError creates a persistence error for the given operation and key.
func NewPersistenceError(op, key string, cause error) error {
	return &PersistenceError{Op: op, Key: key, Cause: cause}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsFormat checks if an error is a document format error.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsPersistence checks if an error is a persistence failure.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
