package errors

import (
	"errors"
	"fmt"
)

// Error types for the export taxonomy
type ErrorType string

const (
	ErrorTypeConfiguration      ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeEnumeration        ErrorType = "ENUMERATION_ERROR"
	ErrorTypePartialEnumeration ErrorType = "PARTIAL_ENUMERATION_ERROR"
	ErrorTypeSerialization      ErrorType = "SERIALIZATION_ERROR"
	ErrorTypePersistence        ErrorType = "PERSISTENCE_ERROR"
	ErrorTypeInternal           ErrorType = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrMissingCredentials = errors.New("must supply either a connection string or both account and key")
	ErrInvalidSource      = errors.New("unknown source")
	ErrInvalidFormat      = errors.New("unknown output format")
	ErrInvalidDestination = errors.New("invalid destination")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common error constructors

// NewConfigurationError is raised before any network activity when the run cannot be configured
func NewConfigurationError(message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, message)
}

// NewEnumerationError reports a failed database listing; the run aborts
func NewEnumerationError(message string) *AppError {
	return NewAppError(ErrorTypeEnumeration, message)
}

// NewPartialEnumerationError reports a dropped database or collection subtree
func NewPartialEnumerationError(message string) *AppError {
	return NewAppError(ErrorTypePartialEnumeration, message)
}

// NewSerializationError creates a serialization error
func NewSerializationError(message string) *AppError {
	return NewAppError(ErrorTypeSerialization, message)
}

// NewPersistenceError creates a persistence error
func NewPersistenceError(message string) *AppError {
	return NewAppError(ErrorTypePersistence, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message)
}

// Helper functions for common error scenarios

// WrapError wraps an error with context, keeping an existing AppError as-is
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// TypeOf returns the ErrorType of the first AppError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

func isType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return isType(err, ErrorTypeConfiguration) || errors.Is(err, ErrMissingCredentials)
}

// IsEnumeration checks if an error is a fatal enumeration error
func IsEnumeration(err error) bool {
	return isType(err, ErrorTypeEnumeration)
}

// IsPartialEnumeration checks if an error only dropped a subtree
func IsPartialEnumeration(err error) bool {
	return isType(err, ErrorTypePartialEnumeration)
}

// IsSerialization checks if an error is a serialization error
func IsSerialization(err error) bool {
	return isType(err, ErrorTypeSerialization)
}

// IsPersistence checks if an error is a persistence error
func IsPersistence(err error) bool {
	return isType(err, ErrorTypePersistence)
}

// ExitCode maps a run error to the process exit status
func ExitCode(err error) int {
	if err == nil || IsPartialEnumeration(err) {
		return 0
	}
	return 1
}
