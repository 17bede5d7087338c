// Package errors defines the application error taxonomy shared by every layer.
// Handlers map these types to HTTP status codes; the executor maps them to
// per-action log entries.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeOwnership   ErrorType = "OWNERSHIP"
	ErrorTypePersistence ErrorType = "PERSISTENCE"
	ErrorTypeQuality     ErrorType = "QUALITY"
	ErrorTypeProvider    ErrorType = "PROVIDER"
	ErrorTypeRateLimited ErrorType = "RATE_LIMITED"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeTimeout     ErrorType = "TIMEOUT"
	ErrorTypeInternal    ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewOwnership creates an ownership conflict error (entity belongs to another user)
func NewOwnership(message string) error {
	return &AppError{Type: ErrorTypeOwnership, Message: message}
}

// NewPersistence creates a store-level failure error
func NewPersistence(message string, err error) error {
	return &AppError{Type: ErrorTypePersistence, Message: message, Err: err}
}

// NewQuality creates a quality-too-low error (model reply rejected after repair)
func NewQuality(message string) error {
	return &AppError{Type: ErrorTypeQuality, Message: message}
}

// NewProvider creates a model-backend error (timeout/auth/quota)
func NewProvider(message string, err error) error {
	return &AppError{Type: ErrorTypeProvider, Message: message, Err: err}
}

// NewRateLimited creates a rate-limit rejection error
func NewRateLimited(message string) error {
	return &AppError{Type: ErrorTypeRateLimited, Message: message}
}

// NewUnavailable creates an error for requests rejected by an open circuit breaker
func NewUnavailable(message string) error {
	return &AppError{Type: ErrorTypeUnavailable, Message: message}
}

// NewTimeout creates an operation timeout error
func NewTimeout(message string) error {
	return &AppError{Type: ErrorTypeTimeout, Message: message}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for unknown errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks whether err is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks whether err is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsOwnership checks whether err is an ownership conflict error
func IsOwnership(err error) bool { return isType(err, ErrorTypeOwnership) }

// IsPersistence checks whether err is a store-level failure
func IsPersistence(err error) bool { return isType(err, ErrorTypePersistence) }

// IsQuality checks whether err is a quality-too-low error
func IsQuality(err error) bool { return isType(err, ErrorTypeQuality) }

// IsProvider checks whether err is a model-backend error
func IsProvider(err error) bool { return isType(err, ErrorTypeProvider) }

// IsRateLimited checks whether err is a rate-limit rejection
func IsRateLimited(err error) bool { return isType(err, ErrorTypeRateLimited) }

// IsUnavailable checks whether err is a circuit-breaker rejection
func IsUnavailable(err error) bool { return isType(err, ErrorTypeUnavailable) }

// IsTimeout checks whether err is an operation timeout
func IsTimeout(err error) bool { return isType(err, ErrorTypeTimeout) }
