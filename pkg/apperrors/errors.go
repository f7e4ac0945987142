package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for presentation and retry decisions.
type Code string

const (
	ErrCodeInvalidInput Code = "invalid_input"
	ErrCodeUnauthorized Code = "unauthorized"
	ErrCodeForbidden    Code = "forbidden"
	ErrCodeNotFound     Code = "not_found"
	ErrCodeConflict     Code = "conflict"
	ErrCodeUnavailable  Code = "unavailable"
	ErrCodeInternal     Code = "internal"
)

// Error is the coded error carried across package boundaries.
type Error struct {
	Code    Code
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// InvalidInput reports a client-side validation failure for a named field.
func InvalidInput(field, message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Field: field, Message: message}
}

// Unauthorized reports an authentication failure.
func Unauthorized(message string) *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: message}
}

// Forbidden reports an authorization failure.
func Forbidden(message string) *Error {
	return &Error{Code: ErrCodeForbidden, Message: message}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: message}
}

// Conflict reports a stale-state or already-transitioned resource.
func Conflict(message string) *Error {
	return &Error{Code: ErrCodeConflict, Message: message}
}

// Unavailable reports a transport-level failure.
func Unavailable(message string, cause error) *Error {
	return &Error{Code: ErrCodeUnavailable, Message: message, cause: cause}
}

// CodeOf returns the code carried by err, or ErrCodeInternal when err is
// not a coded error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// UserMessage returns the text suitable for a user-facing notification:
// the coded message when present, otherwise a generic fallback.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An error occurred"
}
