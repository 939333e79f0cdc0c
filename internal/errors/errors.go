// Package errors holds the error taxonomy shared by the address comparison
// packages. Per-record problems never surface as errors from the core; they
// are reported as diagnostics. The types here cover caller-level failures
// (upstream API, configuration, lookups) plus the validation of rule tables.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported so callers need a single errors import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Sentinel errors
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupported indicates a scheme or format the system does not handle
	ErrUnsupported = errors.New("unsupported")

	// ErrUpstream indicates a failure of a remote collaborator
	ErrUpstream = errors.New("upstream failure")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a failed call to a remote API
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	return target == ErrUpstream
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

// WrapAPIError wraps a transport error from endpoint
func WrapAPIError(endpoint string, err error) *APIError {
	return &APIError{Endpoint: endpoint, Message: err.Error(), Err: err}
}
