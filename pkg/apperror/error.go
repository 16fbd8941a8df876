// Package apperror carries typed failures from usecases to the HTTP layer.
//
// Usecases return *Error values only; handlers read the Kind to pick a status
// code and the Message to show the client. The wrapped error is for logs.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindAccountNotFound     Kind = "ACCOUNT_NOT_FOUND"
	KindNoPendingOTP        Kind = "NO_PENDING_OTP"
	KindExpired             Kind = "EXPIRED"
	KindMismatch            Kind = "MISMATCH"
	KindNotificationFailure Kind = "NOTIFICATION_FAILURE"
	KindInternal            Kind = "INTERNAL_ERROR"

	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
)

// Error is a classified failure with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindAccountNotFound, KindNoPendingOTP, KindExpired, KindMismatch,
		KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an error of the given kind around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Internal hides err behind a generic message.
func Internal(err error) *Error {
	return Wrap(KindInternal, "Internal server error", err)
}

// KindOf reports the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
