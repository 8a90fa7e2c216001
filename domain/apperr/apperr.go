// Package apperr defines the error kinds shared by the auth service, the
// access gate and the HTTP error handler.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind classifies an error for transport and status mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindToken      Kind = "token"
	KindInternal   Kind = "internal"
)

// Error is a classified application error. It is JSON friendly so it can
// travel inside request-reply payloads between modules.
type Error struct {
	Kind    Kind              `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Detail  string            `json:"detail,omitempty"`

	err error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Validation returns a validation error with optional field details.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Auth returns an authentication error.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Forbidden returns an authorization error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound returns a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Token wraps a token verification failure.
func Token(err error) *Error {
	return &Error{Kind: KindToken, Message: "invalid or expired token", err: err}
}

// Internal wraps an unexpected failure. The cause is kept as Detail so it
// can be shown in development mode after crossing a module boundary.
func Internal(message string, err error) *Error {
	e := &Error{Kind: KindInternal, Message: message, err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// FromValidation converts ozzo validation errors into a validation Error.
// Non-validation errors are returned as internal errors.
func FromValidation(err error) *Error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return Internal("validation failed", err)
	}
	fields := make(map[string]string, len(verrs))
	flattenFields("", verrs, fields)
	return Validation("invalid data", fields)
}

func flattenFields(prefix string, verrs validation.Errors, out map[string]string) {
	for name, ferr := range verrs {
		if ferr == nil {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		var nested validation.Errors
		if errors.As(ferr, &nested) {
			flattenFields(key, nested, out)
			continue
		}
		out[key] = ferr.Error()
	}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts an *Error from err, wrapping unclassified errors as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal server error", err)
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth, KindToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
