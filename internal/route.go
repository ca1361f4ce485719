package internal

import (
	"context"
	"time"

	"github.com/relaykit/relay/pkg/payload"
	"github.com/relaykit/relay/pkg/token"
)

// Controller is the business-logic function invoked as the final pipeline
// step. It receives the normalized payload and returns the response body.
type Controller func(ctx context.Context, payload map[string]any) (any, error)

// KeyFunc derives a custom rate-limit bucket key from the call context.
type KeyFunc func(rc *RequestContext) string

// AuthConfig configures the authentication step of a route.
type AuthConfig struct {
	// Options is passed through to the Authenticator collaborator.
	Options token.Options
}

// RateLimitConfig configures the rate-limit step of a route.
type RateLimitConfig struct {
	// Max is the number of calls allowed per window.
	Max int64

	// Window is the accounting window length.
	Window time.Duration

	// KeyFunc overrides the default per-client, per-endpoint bucket key.
	KeyFunc KeyFunc
}

// CacheConfig configures the cache-check step of a route.
type CacheConfig struct {
	// Expire is the TTL applied when the controller's response is stored.
	Expire time.Duration

	// AuthBased partitions cached responses per authenticated identity by
	// extending the cache key with the resolved principal's claims.
	AuthBased bool
}

// Route is an immutable endpoint descriptor: an address (path pattern or
// logical name), optional step configuration, and the controller. Routes are
// compiled once at registration and are read-only afterwards, so they are
// safely shared across concurrent calls.
type Route struct {
	pattern string
	name    string

	auth      *AuthConfig
	schema    payload.Schema
	rateLimit *RateLimitConfig
	cache     *CacheConfig

	controller Controller

	// Set by Dispatcher.Register.
	matcher *pathMatcher
	steps   []step
}

// RouteOption configures a Route at construction time.
type RouteOption func(*Route)

// NewRoute creates a path-addressed route. The pattern may contain named
// segments prefixed with a colon, e.g. "/users/:id"; matched segment values
// are injected into the call payload under the segment name.
func NewRoute(pattern string, controller Controller, opts ...RouteOption) *Route {
	r := &Route{pattern: pattern, controller: controller}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewNamedRoute creates a name-addressed route for non-path invocation
// (internal RPC). Matching is exact and case-sensitive.
func NewNamedRoute(name string, controller Controller, opts ...RouteOption) *Route {
	r := &Route{name: name, controller: controller}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithAuth enables the authentication step for the route.
func WithAuth(cfg AuthConfig) RouteOption {
	return func(r *Route) {
		r.auth = &cfg
	}
}

// WithValidation enables the payload-validation step for the route.
func WithValidation(schema payload.Schema) RouteOption {
	return func(r *Route) {
		r.schema = schema
	}
}

// WithRateLimit enables the rate-limit step for the route.
func WithRateLimit(cfg RateLimitConfig) RouteOption {
	return func(r *Route) {
		r.rateLimit = &cfg
	}
}

// WithCache enables the cache-check step for the route. Responses produced
// by the controller are stored for expire; authBased partitions entries per
// authenticated identity.
func WithCache(expire time.Duration, authBased bool) RouteOption {
	return func(r *Route) {
		r.cache = &CacheConfig{Expire: expire, AuthBased: authBased}
	}
}

// Address returns the route's pattern or logical name, whichever addressing
// mode is active. Used in log and error messages.
func (r *Route) Address() string {
	if r.pattern != "" {
		return r.pattern
	}
	return r.name
}
