// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Request validation errors (100-199): Rejected before any terminal call
//   - Session errors (200-299): Connection lifecycle and call scheduling
//   - Venue operation errors (300-399): Terminal calls that failed or
//     returned nil where data was expected
//   - Market data errors (400-499): Absent or degenerate symbol/tick data
//   - Trading errors (500-599): Order dispatch and classification
//   - Storage/export errors (600-699): Embedded store and Parquet encoding
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidRequest, "volume must be positive")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeMissingMarketData, "no tick for symbol %s", symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeVenueOperation, "positions_get failed", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeNotInitialized) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// VenueError represents a failed terminal call. It keeps the terminal's own
// last-error code and description next to the operation that triggered it.
type VenueError struct {
	Operation   string // terminal function that failed, e.g. "positions_get"
	VenueCode   int    // terminal last_error code
	Description string // terminal last_error description
}

// NewVenueError creates a new VenueError.
func NewVenueError(operation string, venueCode int, description string) *VenueError {
	return &VenueError{
		Operation:   operation,
		VenueCode:   venueCode,
		Description: description,
	}
}

// Error implements the error interface.
func (e *VenueError) Error() string {
	return fmt.Sprintf("%s failed: %d - %s", e.Operation, e.VenueCode, e.Description)
}

// IsVenueError checks if an error is (or wraps) a VenueError.
func IsVenueError(err error) bool {
	var venueErr *VenueError

	return errors.As(err, &venueErr)
}
