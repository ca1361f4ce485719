package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/relaykit/relay/pkg/limiter"
)

// step is one stage of a route's pipeline. Steps mutate the RequestContext
// in place; a non-nil error aborts the run and propagates untranslated.
type step func(ctx context.Context, rc *RequestContext) error

// Rate-limit response headers emitted by the pipeline.
const (
	HeaderRateLimitLimit     = "X-Rate-Limit-Limit"
	HeaderRateLimitRemaining = "X-Rate-Limit-Remaining"
	HeaderRateLimitReset     = "X-Rate-Limit-Reset"
	HeaderRateLimitWait      = "X-Rate-Limit-Wait"
)

// CacheContentType is the Content-Type recorded with every cached response.
const CacheContentType = "application/json; charset=utf-8"

// buildPipeline assembles the route's steps. The relative order is a
// contract: authentication before validation, rate-limit and cache-check
// before the controller they may short-circuit, the controller always last.
// Reordering breaks the stop-on-first-body and pending-cache-write rules, so
// the order lives in this single constructor and nowhere else.
func (d *Dispatcher) buildPipeline(r *Route) []step {
	steps := make([]step, 0, 6)
	if r.auth != nil {
		steps = append(steps, d.authStep(r))
	}
	steps = append(steps, normalizePayload)
	if r.schema != nil {
		steps = append(steps, d.validateStep(r))
	}
	if r.rateLimit != nil {
		steps = append(steps, d.rateLimitStep(r))
	}
	if r.cache != nil {
		steps = append(steps, d.cacheCheckStep(r))
	}
	steps = append(steps, controllerStep(r))
	return steps
}

// authStep extracts the credential from the scheme-prefixed header value and
// resolves it through the Authenticator. The token is whatever follows the
// first space; a missing or unprefixed header yields an empty token and the
// collaborator decides what that means.
func (d *Dispatcher) authStep(r *Route) step {
	cfg := *r.auth
	return func(ctx context.Context, rc *RequestContext) error {
		var tok string
		if _, after, ok := strings.Cut(rc.EncodedAuthentication, " "); ok {
			tok = after
		}

		principal, err := d.authenticator.Verify(ctx, tok, cfg.Options)
		if err != nil {
			return err
		}
		rc.Principal = principal
		return nil
	}
}

// normalizePayload guarantees rc.Payload is a non-nil map before any later
// step reads it. Always present, never fails.
func normalizePayload(_ context.Context, rc *RequestContext) error {
	if rc.Payload == nil {
		rc.Payload = make(map[string]any)
	}
	return nil
}

// validateStep replaces the payload with the validator's normalized result.
func (d *Dispatcher) validateStep(r *Route) step {
	schema := r.schema
	return func(ctx context.Context, rc *RequestContext) error {
		normalized, err := d.validator.Validate(ctx, rc.Payload, schema)
		if err != nil {
			return err
		}
		rc.Payload = normalized
		return nil
	}
}

// rateLimitStep accounts the call and reflects the quota state in response
// headers. It never rejects on its own: an exceeded limit is the
// collaborator's error, and a nil quota simply omits the headers.
func (d *Dispatcher) rateLimitStep(r *Route) step {
	cfg := *r.rateLimit
	return func(ctx context.Context, rc *RequestContext) error {
		key := rateLimitKey(rc)
		if cfg.KeyFunc != nil {
			key = cfg.KeyFunc(rc)
		}

		quota, err := d.limiter.Setup(ctx, limiter.Config{Key: key, Max: cfg.Max, Window: cfg.Window})
		if err != nil {
			return err
		}
		if quota == nil {
			return nil
		}

		h := rc.Response.Headers
		h[HeaderRateLimitLimit] = strconv.FormatInt(quota.Limit, 10)
		h[HeaderRateLimitRemaining] = strconv.FormatInt(quota.Limit-quota.Requests, 10)
		h[HeaderRateLimitReset] = strconv.FormatInt(int64(quota.Window/time.Second), 10)
		h[HeaderRateLimitWait] = strconv.FormatInt(int64(math.Round(float64(quota.Wait.Milliseconds())/1000)), 10)
		return nil
	}
}

// cacheCheckStep looks up a previously stored response. On a hit it sets the
// response headers and body, which short-circuits the pipeline before the
// controller runs. On a miss it records the pending cache write that the
// driver performs once a body exists.
func (d *Dispatcher) cacheCheckStep(r *Route) step {
	cfg := *r.cache
	return func(ctx context.Context, rc *RequestContext) error {
		key := cacheKey(rc)
		if cfg.AuthBased && rc.Principal != nil {
			// Partition cached responses per authenticated identity.
			claims, err := json.Marshal(rc.Principal.Claims)
			if err != nil {
				return err
			}
			key += "_" + string(claims)
		}

		cached, err := d.cacher.Retrieve(ctx, key)
		if err != nil {
			return err
		}
		if cached != nil {
			rc.Response.Headers["Content-Type"] = cached.Header
			rc.Response.Body = cached.Body
			return nil
		}

		rc.CacheWrite = &CacheWriteOptions{Key: key, Expire: cfg.Expire}
		return nil
	}
}

// controllerStep invokes the route's business logic with the normalized
// payload and assigns the result as the response body. In the well-formed
// case this is the step that terminates the pipeline.
func controllerStep(r *Route) step {
	return func(ctx context.Context, rc *RequestContext) error {
		result, err := r.controller(ctx, rc.Payload)
		if err != nil {
			return err
		}
		rc.Response.Body = result
		return nil
	}
}

// rateLimitKey buckets calls per client and endpoint by default.
func rateLimitKey(rc *RequestContext) string {
	return fmt.Sprintf("ratelimit_%s_%s_%s", rc.IP, rc.Method, rc.OriginalURL)
}

// cacheKey buckets cached responses per client and endpoint.
func cacheKey(rc *RequestContext) string {
	return fmt.Sprintf("cache_%s_%s_%s", rc.IP, rc.Method, rc.OriginalURL)
}
