package internal

import (
	"context"
	"errors"
	"time"

	"github.com/relaykit/relay/pkg/cache"
	"github.com/relaykit/relay/pkg/limiter"
	"github.com/relaykit/relay/pkg/payload"
	"github.com/relaykit/relay/pkg/token"
)

// The pipeline delegates all domain decisions to collaborators. Steps call
// these narrow contracts and thread the results through the RequestContext;
// failures propagate untranslated to the boundary.

// Authenticator resolves a raw credential into a Principal. Invalid, missing
// or expired credentials are signaled by the implementation's own structured
// error.
type Authenticator interface {
	Verify(ctx context.Context, tok string, opts token.Options) (*token.Principal, error)
}

// PayloadValidator checks a payload against a schema and returns the
// normalized (coerced, defaulted) payload, or a structured validation error
// carrying field-level metadata.
type PayloadValidator interface {
	Validate(ctx context.Context, p map[string]any, schema payload.Schema) (map[string]any, error)
}

// RateLimiter accounts one call against the bucket named by cfg.Key and
// reports the bucket's quota state. A nil quota means no usable state; the
// call proceeds without rate-limit headers. Exceeded limits are signaled by
// the implementation as an error - the pipeline itself never rejects a call.
type RateLimiter interface {
	Setup(ctx context.Context, cfg limiter.Config) (*limiter.Quota, error)
}

// CachedResponse is the unit stored by the response cache: the response body
// plus the Content-Type it was produced with.
type CachedResponse struct {
	Body   any    `json:"body"`
	Header string `json:"header"`
}

// Cacher reads and writes previously produced responses.
// Retrieve returns (nil, nil) on a miss.
type Cacher interface {
	Retrieve(ctx context.Context, key string) (*CachedResponse, error)
	Store(ctx context.Context, key string, value CachedResponse, expire time.Duration) error
}

// cacheStore adapts a generic cache backend to the Cacher contract,
// translating the backend's not-found error into a plain miss.
type cacheStore struct {
	c cache.Cache[CachedResponse]
}

// NewCacheStore wraps a cache backend (memory or redis) as a Cacher.
func NewCacheStore(c cache.Cache[CachedResponse]) Cacher {
	return &cacheStore{c: c}
}

func (s *cacheStore) Retrieve(ctx context.Context, key string) (*CachedResponse, error) {
	v, err := s.c.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (s *cacheStore) Store(ctx context.Context, key string, value CachedResponse, expire time.Duration) error {
	return s.c.Set(ctx, key, value, expire)
}
