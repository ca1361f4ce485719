package relay

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/relaykit/relay/internal"
	"github.com/relaykit/relay/pkg/cache"
	"github.com/relaykit/relay/pkg/logger"
	"github.com/relaykit/relay/pkg/payload"
)

// Type aliases - public API
type (
	// Dispatcher matches incoming calls to registered routes and runs
	// their middleware pipelines.
	Dispatcher = internal.Dispatcher

	// Route is an immutable endpoint descriptor.
	Route = internal.Route

	// RequestContext is the mutable per-call state threaded through the
	// pipeline.
	RequestContext = internal.RequestContext

	// Response is the accumulated result of a pipeline run.
	Response = internal.Response

	// CacheWriteOptions describes a pending cache write.
	CacheWriteOptions = internal.CacheWriteOptions

	// Controller is the business-logic function of a route.
	Controller = internal.Controller

	// KeyFunc derives a custom rate-limit bucket key.
	KeyFunc = internal.KeyFunc

	// Option configures a Dispatcher.
	Option = internal.Option

	// RouteOption configures a Route.
	RouteOption = internal.RouteOption

	// HTTPOption configures the HTTP boundary.
	HTTPOption = internal.HTTPOption

	// AuthConfig configures a route's authentication step.
	AuthConfig = internal.AuthConfig

	// RateLimitConfig configures a route's rate-limit step.
	RateLimitConfig = internal.RateLimitConfig

	// CacheConfig configures a route's cache-check step.
	CacheConfig = internal.CacheConfig

	// RequestError is a structured, client-facing error.
	RequestError = internal.RequestError

	// RequestErrorOption configures a RequestError.
	RequestErrorOption = internal.RequestErrorOption

	// Authenticator resolves raw credentials into principals.
	Authenticator = internal.Authenticator

	// PayloadValidator normalizes payloads against schemas.
	PayloadValidator = internal.PayloadValidator

	// RateLimiter accounts calls and reports quota state.
	RateLimiter = internal.RateLimiter

	// Cacher reads and writes previously produced responses.
	Cacher = internal.Cacher

	// CachedResponse is the unit stored by the response cache.
	CachedResponse = internal.CachedResponse

	// Schema describes the expected payload fields of a route.
	Schema = payload.Schema

	// Field describes one payload field.
	Field = payload.Field

	// ContextExtractor pulls a slog attribute out of a context.
	ContextExtractor = logger.ContextExtractor
)

// Constructors

// New creates a Dispatcher with the given collaborators.
//
// Example:
//
//	d := relay.New(
//	    relay.WithAuthenticator(token.MustNewVerifier(secret)),
//	    relay.WithPayloadValidator(payload.New()),
//	    relay.WithCacher(relay.NewCacheStore(cache.NewMemory[relay.CachedResponse]())),
//	    relay.WithLogger(log),
//	)
func New(opts ...Option) *Dispatcher {
	return internal.New(opts...)
}

// NewRoute creates a path-addressed route. Pattern segments prefixed with a
// colon capture into the payload: "/users/:id" matched against "/users/42"
// yields payload["id"] == "42".
func NewRoute(pattern string, controller Controller, opts ...RouteOption) *Route {
	return internal.NewRoute(pattern, controller, opts...)
}

// NewNamedRoute creates a name-addressed route for internal RPC invocation.
func NewNamedRoute(name string, controller Controller, opts ...RouteOption) *Route {
	return internal.NewNamedRoute(name, controller, opts...)
}

// NewHTTPHandler adapts a Dispatcher to net/http.
func NewHTTPHandler(d *Dispatcher, opts ...HTTPOption) http.Handler {
	return internal.NewHTTPHandler(d, opts...)
}

// NewCacheStore wraps a generic cache backend as the dispatcher's Cacher.
func NewCacheStore(c cache.Cache[CachedResponse]) Cacher {
	return internal.NewCacheStore(c)
}

// Dispatcher options

// WithAuthenticator sets the authentication collaborator.
func WithAuthenticator(a Authenticator) Option {
	return internal.WithAuthenticator(a)
}

// WithPayloadValidator sets the validation collaborator.
func WithPayloadValidator(v PayloadValidator) Option {
	return internal.WithPayloadValidator(v)
}

// WithRateLimiter sets the rate-limit collaborator.
func WithRateLimiter(l RateLimiter) Option {
	return internal.WithRateLimiter(l)
}

// WithCacher sets the response-cache collaborator.
func WithCacher(c Cacher) Option {
	return internal.WithCacher(c)
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// Route options

// WithAuth enables the authentication step for a route.
func WithAuth(cfg AuthConfig) RouteOption {
	return internal.WithAuth(cfg)
}

// WithValidation enables the payload-validation step for a route.
func WithValidation(schema Schema) RouteOption {
	return internal.WithValidation(schema)
}

// WithRateLimit enables the rate-limit step for a route.
func WithRateLimit(cfg RateLimitConfig) RouteOption {
	return internal.WithRateLimit(cfg)
}

// WithCache enables the cache-check step for a route.
func WithCache(expire time.Duration, authBased bool) RouteOption {
	return internal.WithCache(expire, authBased)
}

// Boundary options

// WithHTTPLogger sets the HTTP boundary logger.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return internal.WithHTTPLogger(l)
}

// WithRequestIDHeader overrides the request-ID header name.
func WithRequestIDHeader(name string) HTTPOption {
	return internal.WithRequestIDHeader(name)
}

// RequestIDExtractor returns a logger extractor that adds "request_id" to
// log entries emitted within a request.
func RequestIDExtractor() ContextExtractor {
	return internal.RequestIDExtractor()
}

// Errors

// NewRequestError creates a structured request error.
func NewRequestError(code int, message string, opts ...RequestErrorOption) *RequestError {
	return internal.NewRequestError(code, message, opts...)
}

// WithMeta attaches client-facing metadata to a request error.
func WithMeta(meta map[string]any) RequestErrorOption {
	return internal.WithMeta(meta)
}

// WithCause attaches the underlying error for logging.
func WithCause(err error) RequestErrorOption {
	return internal.WithCause(err)
}

// Convenience constructors for common request errors.

func ErrBadRequest(message string, opts ...RequestErrorOption) *RequestError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...RequestErrorOption) *RequestError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrNotFound(message string, opts ...RequestErrorOption) *RequestError {
	return internal.ErrNotFound(message, opts...)
}

func ErrUnprocessable(message string, opts ...RequestErrorOption) *RequestError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrTooManyRequests(message string, opts ...RequestErrorOption) *RequestError {
	return internal.ErrTooManyRequests(message, opts...)
}

func ErrInternal(message string, opts ...RequestErrorOption) *RequestError {
	return internal.ErrInternal(message, opts...)
}

// Translate maps any propagated failure to the (status, message, metadata)
// triple a transport boundary renders. Exposed for custom boundaries;
// NewHTTPHandler applies it automatically.
func Translate(err error) (int, string, map[string]any) {
	return internal.Translate(err)
}
