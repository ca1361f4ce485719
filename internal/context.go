package internal

import (
	"time"

	"github.com/relaykit/relay/pkg/token"
)

// RequestContext is the mutable per-call state threaded through the pipeline.
// The transport boundary (or Dispatcher.Call) creates one per incoming call,
// pipeline steps mutate it in place, and it is discarded once a response has
// been produced. A RequestContext is never shared across calls, so no locking
// is needed; concurrency exists only across distinct calls.
type RequestContext struct {
	// Addressing fields. Exactly one of Path or Name identifies the call:
	// a populated Path selects pattern matching, an empty Path with a
	// populated Name selects exact-name matching.
	Path string
	Name string

	// Descriptive fields used to derive cache and rate-limit keys.
	Method      string
	IP          string
	OriginalURL string

	// EncodedAuthentication is the raw scheme-prefixed credential from the
	// transport layer, e.g. "Bearer <token>". May be empty.
	EncodedAuthentication string

	// Payload accumulates request data: transport input, path parameters
	// injected by the matcher, and the validator's normalized result.
	// It may be nil until the normalization step runs.
	Payload map[string]any

	// Principal is set by the authentication step on success.
	Principal *token.Principal

	// CacheWrite is set by the cache-check step on a miss and consumed by
	// the pipeline driver once a response body exists. It is never set on
	// a cache hit.
	CacheWrite *CacheWriteOptions

	// Response under construction. Terminal once Body is non-nil: the
	// pipeline stops iterating and returns it.
	Response Response
}

// CacheWriteOptions describes a pending cache write: the precomputed key and
// the route's configured expiry.
type CacheWriteOptions struct {
	Key    string
	Expire time.Duration
}

// Response is the accumulated result of a pipeline run. At most one step per
// call sets Body; headers may be contributed by several steps before that.
type Response struct {
	Headers map[string]string
	Body    any
}
