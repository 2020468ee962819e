// Package apperr carries domain error codes from services to HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeInvalidState     = "INVALID_STATE"
	CodeConflict         = "CONFLICT"
	CodeConcurrentUpdate = "CONCURRENT_UPDATE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
)

// Error is a business error with a stable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NotFound(entity string) *Error {
	return New(CodeNotFound, entity+" not found")
}

func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message)
}

func InvalidAmount(message string) *Error {
	return New(CodeInvalidAmount, message)
}

func InvalidState(message string) *Error {
	return New(CodeInvalidState, message)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

// ErrConcurrentUpdate is returned when a versioned save lost the race.
var ErrConcurrentUpdate = New(CodeConcurrentUpdate, "record was modified concurrently, retry the request")

// Is reports whether err wraps an *Error with the given code.
func Is(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts the *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
