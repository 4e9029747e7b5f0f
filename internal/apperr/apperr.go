// Package apperr holds the error taxonomy shared by the services and the API boundary.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyReviewed = errors.New("proposal already reviewed")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("service unavailable")
)

// Error attaches a user-facing message to one of the sentinel kinds.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// New returns an error of the given kind carrying msg.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func NotFound(msg string) error     { return New(ErrNotFound, msg) }
func Forbidden(msg string) error    { return New(ErrForbidden, msg) }
func Unauthorized(msg string) error { return New(ErrUnauthorized, msg) }
func Conflict(msg string) error     { return New(ErrConflict, msg) }
func Unavailable(msg string) error  { return New(ErrUnavailable, msg) }

// ValidationError lists every offending input field.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a ValidationError. Fields may be empty.
func Validation(msg string, fields ...string) error {
	return &ValidationError{Message: msg, Fields: fields}
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to API clients. Unclassified errors get a generic text.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnavailable):
		return err.Error()
	}
	return "internal server error"
}

// Fields returns the invalid field names carried by a ValidationError, if any.
func Fields(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
