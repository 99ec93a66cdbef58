// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/CLI exit codes by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrGeneration indicates the language model could not produce a quote.
	// It is fatal to the current hourly run; no record is persisted.
	ErrGeneration = errors.New("generation failed")

	// ErrStore indicates the quote store could not be read or written.
	ErrStore = errors.New("store failure")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

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

// GenerationError reports a failed call to the text generation provider.
// Cause carries the adapter-level error (transport, rate limit, circuit open).
type GenerationError struct {
	Provider string
	Reason   string
	Cause    error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("generation via %q failed", e.Provider)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// ErrGeneration as well as whatever the provider returned.
func (e *GenerationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrGeneration}
	}

	return []error{ErrGeneration, e.Cause}
}

// NewGenerationError creates a generation error with context.
func NewGenerationError(provider, reason string, cause error) error {
	return &GenerationError{Provider: provider, Reason: reason, Cause: cause}
}

// StoreError reports a failed store operation. Key is the store entry
// (a date key, "today" or "latest") the operation was working on.
type StoreError struct {
	Op    string
	Key   string
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := "store " + e.Op
	if e.Key != "" {
		msg += fmt.Sprintf(" %q", e.Key)
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap exposes both the sentinel and the cause.
func (e *StoreError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrStore}
	}

	return []error{ErrStore, e.Cause}
}

// NewStoreError creates a store error with context.
func NewStoreError(op, key string, cause error) error {
	return &StoreError{Op: op, Key: key, Cause: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsGeneration checks if an error is a generation error.
func IsGeneration(err error) bool {
	return errors.Is(err, ErrGeneration)
}

// IsStore checks if an error is a store error.
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}
