// Package relay is a request-dispatch layer: it matches an incoming call
// (HTTP path or logical name) to a registered route and executes a fixed,
// ordered chain of processing steps - authentication, payload normalization
// and validation, rate-limit accounting, response caching, and the final
// business-logic controller - producing a single response or propagating the
// first failure.
//
// # Quick start
//
// Create a dispatcher with its collaborators, register routes, and mount the
// HTTP boundary:
//
//	d := relay.New(
//	    relay.WithAuthenticator(token.MustNewVerifier(secret)),
//	    relay.WithPayloadValidator(payload.New()),
//	    relay.WithRateLimiter(limiter.NewMemory(time.Minute)),
//	    relay.WithCacher(relay.NewCacheStore(cache.NewMemory[relay.CachedResponse]())),
//	)
//
//	d.MustRegister(
//	    relay.NewRoute("/users/:id", getUser,
//	        relay.WithValidation(relay.Schema{"id": {Type: payload.Int, Required: true}}),
//	        relay.WithCache(time.Minute, false),
//	    ),
//	)
//
//	http.ListenAndServe(":8080", relay.NewHTTPHandler(d))
//
// # Pipeline
//
// Each route's pipeline is built once at registration, in a fixed order:
// authentication (if configured), payload normalization (always), payload
// validation, rate limiting, cache check (each if configured), and the
// controller (always last). Per call, steps run strictly in order; the first
// step to produce a response body short-circuits the rest. A cache hit
// therefore skips the controller entirely, while a cache miss records a
// pending write that is performed once the controller's body exists.
//
// Step failures are never handled inside the pipeline. They propagate to the
// boundary, where [Translate] maps structured request errors (status +
// metadata) verbatim and everything else to a generic 500.
//
// # Collaborators
//
// The concrete algorithms live behind narrow interfaces: [Authenticator]
// (pkg/token, HS256 JWTs), [PayloadValidator] (pkg/payload), [RateLimiter]
// (pkg/limiter, memory or Redis fixed windows), and [Cacher] (pkg/cache,
// memory or Redis). Any implementation of these interfaces can be wired in.
package relay
