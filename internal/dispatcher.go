package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relaykit/relay/pkg/logger"
)

// Dispatcher couples route matching with pipeline execution: given a call
// context it finds the registered route and runs the route's compiled step
// chain. A Dispatcher is read-only after registration and safe for
// concurrent use; all per-call state lives on the RequestContext.
type Dispatcher struct {
	routes []*Route

	authenticator Authenticator
	validator     PayloadValidator
	limiter       RateLimiter
	cacher        Cacher

	log *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAuthenticator sets the authentication collaborator. Required for
// routes configured with WithAuth.
func WithAuthenticator(a Authenticator) Option {
	return func(d *Dispatcher) {
		d.authenticator = a
	}
}

// WithPayloadValidator sets the validation collaborator. Required for routes
// configured with WithValidation.
func WithPayloadValidator(v PayloadValidator) Option {
	return func(d *Dispatcher) {
		d.validator = v
	}
}

// WithRateLimiter sets the rate-limit collaborator. Required for routes
// configured with WithRateLimit.
func WithRateLimiter(l RateLimiter) Option {
	return func(d *Dispatcher) {
		d.limiter = l
	}
}

// WithCacher sets the response-cache collaborator. Required for routes
// configured with WithCache.
func WithCacher(c Cacher) Option {
	return func(d *Dispatcher) {
		d.cacher = c
	}
}

// WithLogger sets the dispatcher logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates a Dispatcher with the given collaborators.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{log: logger.NewNope()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register compiles and adds routes. Each route's matcher and pipeline are
// built exactly once here; registration fails if a route requires a
// collaborator the dispatcher was not constructed with.
func (d *Dispatcher) Register(routes ...*Route) error {
	for _, r := range routes {
		if r.controller == nil {
			return fmt.Errorf("route %q: missing controller", r.Address())
		}
		if r.pattern == "" && r.name == "" {
			return fmt.Errorf("route: missing address")
		}
		if r.auth != nil && d.authenticator == nil {
			return fmt.Errorf("route %q: authentication configured but no authenticator set", r.Address())
		}
		if r.schema != nil && d.validator == nil {
			return fmt.Errorf("route %q: validation configured but no payload validator set", r.Address())
		}
		if r.rateLimit != nil && d.limiter == nil {
			return fmt.Errorf("route %q: rate limit configured but no rate limiter set", r.Address())
		}
		if r.cache != nil && d.cacher == nil {
			return fmt.Errorf("route %q: cache configured but no cacher set", r.Address())
		}

		r.matcher = compileMatcher(r)
		r.steps = d.buildPipeline(r)
		d.routes = append(d.routes, r)

		d.log.Debug("route registered", slog.String("address", r.Address()))
	}
	return nil
}

// MustRegister registers routes or panics. For static route tables built at
// startup.
func (d *Dispatcher) MustRegister(routes ...*Route) {
	if err := d.Register(routes...); err != nil {
		panic(err)
	}
}

// Match returns the first registered route matching the call context, or nil.
// Matching a path-addressed route injects captured parameters into the
// context payload.
func (d *Dispatcher) Match(rc *RequestContext) *Route {
	for _, r := range d.routes {
		if r.matcher.match(rc) {
			return r
		}
	}
	return nil
}

// Handle runs the route's pipeline over the call context.
//
// The response accumulator is reset first, then steps run strictly in their
// configured order. After each step, a present response body terminates the
// run: a pending cache write recorded earlier in the same call is performed,
// and the response is returned with the remaining steps skipped. Step
// failures are not caught here - they propagate to the caller, and
// translation happens once at the boundary.
//
// A pipeline that completes without producing a body returns (nil, nil); the
// controller step always sets a body for well-formed routes, so this is a
// degenerate case the caller must tolerate, not an error.
func (d *Dispatcher) Handle(ctx context.Context, r *Route, rc *RequestContext) (*Response, error) {
	rc.Response = Response{Headers: make(map[string]string)}

	for _, s := range r.steps {
		if err := s(ctx, rc); err != nil {
			return nil, err
		}
		if rc.Response.Body == nil {
			continue
		}

		if w := rc.CacheWrite; w != nil {
			value := CachedResponse{Body: rc.Response.Body, Header: CacheContentType}
			if err := d.cacher.Store(ctx, w.Key, value, w.Expire); err != nil {
				return nil, err
			}
		}
		return &rc.Response, nil
	}

	return nil, nil
}

// MatchHandle finds the route for the call context and runs it. An unmatched
// context yields a structured 404.
func (d *Dispatcher) MatchHandle(ctx context.Context, rc *RequestContext) (*Response, error) {
	r := d.Match(rc)
	if r == nil {
		return nil, ErrNotFound("route not found")
	}
	return d.Handle(ctx, r, rc)
}

// Call dispatches to a name-addressed route, the entry point for internal
// RPC invocation without a transport request.
func (d *Dispatcher) Call(ctx context.Context, name string, p map[string]any) (*Response, error) {
	rc := &RequestContext{Name: name, Payload: p}
	return d.MatchHandle(ctx, rc)
}
