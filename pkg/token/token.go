// Package token verifies HMAC-signed JWT credentials and resolves them into
// principals.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Options narrows verification for a single route.
type Options struct {
	// Audience, when set, must appear in the token's aud claim.
	Audience string

	// Issuer, when set, must equal the token's iss claim.
	Issuer string

	// Leeway tolerates clock skew when checking time-based claims.
	Leeway time.Duration
}

// Principal is the resolved identity produced by verification.
type Principal struct {
	// Subject is the token's sub claim.
	Subject string

	// Claims is the decoded claim set.
	Claims map[string]any

	// Token is the raw credential the principal was resolved from.
	Token string
}

// Verifier validates HS256-signed JWTs against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier. The secret must be at least 32 bytes.
func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// MustNewVerifier creates a Verifier or panics. For static wiring at
// startup.
func MustNewVerifier(secret string) *Verifier {
	v, err := NewVerifier(secret)
	if err != nil {
		panic(err)
	}
	return v
}

// Verify parses and validates a raw credential, returning the resolved
// Principal. Missing, malformed, or expired credentials fail with a
// structured *Error (401).
func (v *Verifier) Verify(_ context.Context, raw string, opts Options) (*Principal, error) {
	if raw == "" {
		return nil, &Error{Reason: "missing authentication token"}
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(opts.Leeway))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &Error{Reason: "token expired", Err: err}
		}
		return nil, &Error{Reason: "invalid token", Err: err}
	}
	if !parsed.Valid {
		return nil, &Error{Reason: "invalid token"}
	}

	subject, _ := claims.GetSubject()

	return &Principal{
		Subject: subject,
		Claims:  map[string]any(claims),
		Token:   raw,
	}, nil
}
