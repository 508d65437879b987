// Package apierr defines the typed error taxonomy shared by the service
// layer and the HTTP handlers. Handlers map an *Error to a response status;
// anything else surfaces as a 500.
package apierr

import (
	"errors"
	"net/http"
)

// Error carries a user-facing message together with the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// WithCause attaches an underlying error for logging without changing the
// user-facing message.
func (e *Error) WithCause(err error) *Error {
	return &Error{Status: e.Status, Message: e.Message, err: err}
}

// Validation reports malformed input caught before any core logic runs.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Parse reports an unreadable or empty source file.
func Parse(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// NotFound reports an absent referenced entity.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict reports duplicate membership, invitation, or registration.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Forbidden reports an authorization mismatch.
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Unauthorized reports missing or failed authentication.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// InvalidToken reports a token with a bad signature, an expired payload, or
// one referencing an invitation in the wrong lifecycle state.
func InvalidToken(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// StatusOf resolves the HTTP status an error maps to.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf resolves the user-facing message for an error. Internal errors
// collapse to a generic message unless dev is set.
func MessageOf(err error, dev bool) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if dev {
		return err.Error()
	}
	return "internal server error"
}
