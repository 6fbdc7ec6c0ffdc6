// Package apperrors defines the error kinds shared by the generation pipeline
// and the QA assistant, and how each kind maps onto an HTTP response.
package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindEmptyContent       Kind = "empty_content"
	KindUpstreamLookup     Kind = "upstream_lookup"
	KindUpstreamGeneration Kind = "upstream_generation"
	KindNotFound           Kind = "not_found"
	KindInternal           Kind = "internal"
)

// Error carries a kind, a client-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Validationf formats a validation error.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// EmptyContent reports a source that produced no usable text.
func EmptyContent(message string) *Error {
	return New(KindEmptyContent, message)
}

// UpstreamLookup reports a document or issue source that rejected the lookup.
func UpstreamLookup(cause error) *Error {
	return Wrap(KindUpstreamLookup, cause.Error(), cause)
}

// UpstreamGeneration reports a failed provider call.
func UpstreamGeneration(cause error) *Error {
	return Wrap(KindUpstreamGeneration, cause.Error(), cause)
}

// NotFound reports a referenced record that does not exist.
func NotFound(message string) *Error {
	return Wrap(KindNotFound, message, ErrNotFound)
}

// Internal wraps an unanticipated failure.
func Internal(cause error) *Error {
	return Wrap(KindInternal, cause.Error(), cause)
}

// KindOf returns the kind carried by err, or KindInternal when err has none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind onto its transport status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindEmptyContent, KindUpstreamLookup:
		return http.StatusBadRequest
	case KindUpstreamGeneration:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteHTTP writes err as a JSON response. Client errors use a "detail" body,
// everything else an "error" body.
func WriteHTTP(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	status := HTTPStatus(kind)

	key := "error"
	if status == http.StatusBadRequest {
		key = "detail"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{key: err.Error()})
}
