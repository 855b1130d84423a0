// Package apperr defines the error taxonomy shared by every module.
//
// Errors cross the request-reply bus as plain strings, so services return
// *Error values inside their replies and adapters hand them back to callers
// unchanged. The API layer maps each Kind to an HTTP status in one place.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
	KindNotImplemented Kind = "not_implemented"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + " (" + strings.Join(e.Details, "; ") + ")"
}

// HTTPStatus returns the status code the API responds with for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports rejected input. Details carries one message per failed field.
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Unauthorized reports a token or credential problem.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden reports access to a resource owned by someone else.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict reports a duplicate value for a unique field.
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// RateLimited reports a request rejected by a limiter.
func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

// NotImplemented reports a route that exists but has no behavior yet.
func NotImplemented(message string) *Error {
	return &Error{Kind: KindNotImplemented, Message: message}
}

// Internal wraps an unexpected failure. The message is the cause's text and is
// only shown to clients in development mode.
func Internal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindInternal, Message: msg}
}

// From returns err as an *Error, classifying anything unknown as internal.
// It returns nil for a nil err.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
