package errorx

import (
	"fmt"
	"net/http"
)

// Category represents different categories of API errors
type Category string

const (
	CategoryValidation     Category = "validation"
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryNotFound       Category = "not_found"
	CategoryConflict       Category = "conflict"
	CategoryRateLimit      Category = "rate_limit"
	CategoryInternal       Category = "internal"
)

// APIError is a typed error carrying the HTTP status and the public message
// rendered into the {success:false, msg} envelope. The category keeps client
// error and server error distinguishable even though the envelope itself only
// exposes a message string.
type APIError struct {
	Category   Category
	Message    string
	HTTPStatus int
	cause      error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *APIError) Unwrap() error { return e.cause }

// WithCause attaches an underlying cause, preserving the public message.
func (e *APIError) WithCause(err error) *APIError {
	return &APIError{Category: e.Category, Message: e.Message, HTTPStatus: e.HTTPStatus, cause: err}
}

// Validation creates a validation failure (bad input shape or length).
func Validation(msg string) *APIError {
	return &APIError{Category: CategoryValidation, Message: msg, HTTPStatus: http.StatusBadRequest}
}

// AuthFailed creates an authentication failure (missing or invalid token,
// wrong credentials).
func AuthFailed(msg string) *APIError {
	return &APIError{Category: CategoryAuthentication, Message: msg, HTTPStatus: http.StatusUnauthorized}
}

// Forbidden creates an authorization failure.
func Forbidden(msg string) *APIError {
	return &APIError{Category: CategoryAuthorization, Message: msg, HTTPStatus: http.StatusForbidden}
}

// NotFound creates a not-found error.
func NotFound(msg string) *APIError {
	return &APIError{Category: CategoryNotFound, Message: msg, HTTPStatus: http.StatusNotFound}
}

// Conflict creates a conflict error (duplicate signup and the like).
func Conflict(msg string) *APIError {
	return &APIError{Category: CategoryConflict, Message: msg, HTTPStatus: http.StatusConflict}
}

// RateLimited creates a rate-limit error.
func RateLimited(msg string) *APIError {
	return &APIError{Category: CategoryRateLimit, Message: msg, HTTPStatus: http.StatusTooManyRequests}
}

// Internal creates a downstream/internal failure with a generic public
// message; the cause is kept for logging only.
func Internal(msg string, cause error) *APIError {
	return &APIError{Category: CategoryInternal, Message: msg, HTTPStatus: http.StatusInternalServerError, cause: cause}
}
