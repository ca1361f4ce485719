package internal

import (
	"errors"
	"net/http"
)

// RequestError is a structured, client-facing error: an explicit HTTP status
// code, a user-facing message, and optional metadata (e.g. field-level
// validation details). Collaborators raise their own structured errors for
// client conditions; controllers can return a RequestError directly.
type RequestError struct {
	// Err is the underlying cause (for logging, never exposed to clients).
	Err error

	// Message is the user-facing error message.
	Message string

	// Meta carries additional client-facing detail.
	Meta map[string]any

	// Code is the HTTP status code.
	Code int
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) StatusCode() int {
	return e.Code
}

func (e *RequestError) Metadata() map[string]any {
	return e.Meta
}

// RequestErrorOption configures a RequestError.
type RequestErrorOption func(*RequestError)

// NewRequestError creates a RequestError with the given status and message.
func NewRequestError(code int, message string, opts ...RequestErrorOption) *RequestError {
	e := &RequestError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithMeta attaches client-facing metadata to the error.
func WithMeta(meta map[string]any) RequestErrorOption {
	return func(e *RequestError) {
		e.Meta = meta
	}
}

// WithCause attaches the underlying error for logging.
func WithCause(err error) RequestErrorOption {
	return func(e *RequestError) {
		e.Err = err
	}
}

// Convenience constructors for common request errors.

func ErrBadRequest(message string, opts ...RequestErrorOption) *RequestError {
	return NewRequestError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...RequestErrorOption) *RequestError {
	return NewRequestError(http.StatusUnauthorized, message, opts...)
}

func ErrNotFound(message string, opts ...RequestErrorOption) *RequestError {
	return NewRequestError(http.StatusNotFound, message, opts...)
}

func ErrUnprocessable(message string, opts ...RequestErrorOption) *RequestError {
	return NewRequestError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrTooManyRequests(message string, opts ...RequestErrorOption) *RequestError {
	return NewRequestError(http.StatusTooManyRequests, message, opts...)
}

func ErrInternal(message string, opts ...RequestErrorOption) *RequestError {
	return NewRequestError(http.StatusInternalServerError, message, opts...)
}

// statusCoder is the structural marker of a client-facing error. Collaborator
// packages implement it without importing this package.
type statusCoder interface {
	error
	StatusCode() int
}

// metadataCarrier optionally extends a structured error with client-facing
// metadata.
type metadataCarrier interface {
	Metadata() map[string]any
}

// genericMessage is what unstructured failures surface to clients.
// Internal detail stays in logs.
const genericMessage = "internal server error"

// Translate maps any propagated failure to a (status, message, metadata)
// triple for the transport boundary. Structured request errors surface their
// status, message, and metadata verbatim; anything else becomes a 500 with a
// generic message. Translation happens exactly once, at the boundary - never
// inside pipeline steps.
func Translate(err error) (int, string, map[string]any) {
	var sc statusCoder
	if errors.As(err, &sc) {
		var meta map[string]any
		var mc metadataCarrier
		if errors.As(err, &mc) {
			meta = mc.Metadata()
		}
		return sc.StatusCode(), sc.Error(), meta
	}
	return http.StatusInternalServerError, genericMessage, nil
}
