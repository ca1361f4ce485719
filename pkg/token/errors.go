package token

import (
	"errors"
	"net/http"
)

// ErrSecretTooShort is returned by NewVerifier for secrets under 32 bytes.
var ErrSecretTooShort = errors.New("token: secret must be at least 32 bytes")

// Error is a structured authentication failure. It carries the 401 status
// the boundary-side error translator surfaces to clients; the underlying
// parse error stays server-side.
type Error struct {
	// Reason is the client-facing message.
	Reason string

	// Err is the underlying cause, for logging only.
	Err error
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return http.StatusUnauthorized
}
