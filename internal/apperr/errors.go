// Package apperr defines the error kinds shared by services and the HTTP
// layer. Match kinds with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// Error is a business-rule failure with a message safe to show to callers.
type Error struct {
	Kind  error
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Msg + ": " + e.cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

func newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error   { return newf(ErrConflict, format, args...) }
func NotFound(format string, args ...any) error   { return newf(ErrNotFound, format, args...) }
func BadRequest(format string, args ...any) error { return newf(ErrBadRequest, format, args...) }
func Forbidden(format string, args ...any) error  { return newf(ErrForbidden, format, args...) }

func Unauthorized(format string, args ...any) error {
	return newf(ErrUnauthorized, format, args...)
}

// Internal wraps an unexpected store or transport failure. The public
// message stays generic; the cause is kept for logs.
func Internal(op string, err error) error {
	return &Error{Kind: ErrInternal, Msg: op, cause: err}
}

// Message returns the caller-facing text of err. Internal causes are hidden.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
