package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates invalid input data at the route boundary.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeAuthentication indicates missing or rejected credentials.
	ErrCodeAuthentication ErrorCode = "authentication"
	// ErrCodeConflict indicates a conflict with an existing resource
	// (e.g., duplicate account on registration).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeUnprocessable indicates the upstream rejected a structurally
	// valid payload with a 422. The status and detail are relayed as-is
	// rather than folded into a local 400.
	ErrCodeUnprocessable ErrorCode = "unprocessable"
	// ErrCodeDecode indicates a malformed bearer token. Decode failures are
	// fail-closed: they surface as unauthenticated, never as a 500.
	ErrCodeDecode ErrorCode = "decode"
	// ErrCodeUpstreamUnavailable indicates a network/connection failure
	// reaching a dependency.
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	// ErrCodeUpstreamTimeout indicates a dependency did not answer within
	// the request's time budget.
	ErrCodeUpstreamTimeout ErrorCode = "upstream_timeout"
	// ErrCodeInternal indicates an unexpected internal error. The detail is
	// logged; clients receive a generic message.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is and errors.As via Unwrap.
type AppError struct {
	// Code categorizes the error type.
	Code ErrorCode
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error that caused this error (optional).
	Cause error
	// Field is the specific field that caused the error (optional, for
	// validation errors).
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to the HTTP status returned to clients.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnprocessable:
		return http.StatusUnprocessableEntity
	case ErrCodeAuthentication, ErrCodeDecode:
		return http.StatusUnauthorized
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Unprocessable creates a new Unprocessable error.
func Unprocessable(message string) *AppError {
	return &AppError{Code: ErrCodeUnprocessable, Message: message}
}

// Authentication creates a new Authentication error.
func Authentication(message string) *AppError {
	return &AppError{Code: ErrCodeAuthentication, Message: message}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Decode creates a new Decode error.
func Decode(message string) *AppError {
	return &AppError{Code: ErrCodeDecode, Message: message}
}

// UpstreamUnavailable creates a new UpstreamUnavailable error.
func UpstreamUnavailable(message string) *AppError {
	return &AppError{Code: ErrCodeUpstreamUnavailable, Message: message}
}

// UpstreamTimeout creates a new UpstreamTimeout error.
func UpstreamTimeout(message string) *AppError {
	return &AppError{Code: ErrCodeUpstreamTimeout, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if any AppError in the chain carries the given code, so a
// wrapped error keeps answering for its original category.
func isCode(err error, code ErrorCode) bool {
	for {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Unwrap()
	}
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsUnprocessable checks if an error is an Unprocessable error.
func IsUnprocessable(err error) bool {
	return isCode(err, ErrCodeUnprocessable)
}

// IsAuthentication checks if an error is an Authentication error.
func IsAuthentication(err error) bool {
	return isCode(err, ErrCodeAuthentication)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsUpstreamUnavailable checks if an error is an UpstreamUnavailable error.
func IsUpstreamUnavailable(err error) bool {
	return isCode(err, ErrCodeUpstreamUnavailable)
}

// IsUpstreamTimeout checks if an error is an UpstreamTimeout error.
func IsUpstreamTimeout(err error) bool {
	return isCode(err, ErrCodeUpstreamTimeout)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// StatusFor returns the HTTP status for any error, defaulting to 500 for
// non-AppError values.
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
