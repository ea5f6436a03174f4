// Package apperror defines the error kinds services return and the HTTP
// status each one maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind string

// Error kinds
const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindConflict          Kind = "CONFLICT"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindTooManyRequests   Kind = "TOO_MANY_REQUESTS"
	KindInternal          Kind = "INTERNAL"
)

// Error is the application error carried from services to handlers
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Public marks an internal error whose Message may be shown to clients
	Public bool
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// HTTPStatus returns the status code for the error kind
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation reports malformed or missing input (400)
func Validation(message string) *Error { return New(KindValidation, message) }

// NotFound reports a missing entity (404)
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Forbidden reports an account that may not perform the action (403)
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Conflict reports a uniqueness or dependent-record violation (409)
func Conflict(message string) *Error { return New(KindConflict, message) }

// Unauthorized reports a missing or invalid credential (401)
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// InvalidTransition reports a complaint status change the lifecycle forbids (400)
func InvalidTransition(message string) *Error { return New(KindInvalidTransition, message) }

// TooManyRequests reports a throttled caller (429)
func TooManyRequests(message string) *Error { return New(KindTooManyRequests, message) }

// Internal wraps an unexpected failure. The message is safe for clients; the
// wrapped error is for logs only.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// InternalPublic is an internal error with a client-facing message
func InternalPublic(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err, Public: true}
}

// As extracts an *Error from err. Anything else is reported as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
