// Package limiter provides fixed-window rate-limit accounting with
// in-memory and Redis backends.
//
// A limiter accounts one call per Setup invocation and reports the bucket's
// quota state. When the bucket is over its limit, Setup fails with a
// structured *ExceededError; callers that only reflect quota state in
// headers never reject on their own.
package limiter

import (
	"context"
	"net/http"
	"time"
)

// Config names a bucket and its window for a single accounting call.
type Config struct {
	// Key identifies the bucket, typically derived from client address,
	// method, and target.
	Key string

	// Max is the number of calls allowed per window.
	Max int64

	// Window is the accounting window length.
	Window time.Duration
}

// Quota is the bucket state after accounting one call.
type Quota struct {
	// Limit is the number of calls allowed per window.
	Limit int64

	// Requests is the number of calls counted in the current window,
	// including this one.
	Requests int64

	// Window is the accounting window length.
	Window time.Duration

	// Wait is the time remaining until the current window resets.
	Wait time.Duration
}

// Limiter accounts calls against named buckets.
type Limiter interface {
	Setup(ctx context.Context, cfg Config) (*Quota, error)
}

// ExceededError signals that a bucket is over its limit. It carries the
// status and metadata the boundary-side error translator surfaces to
// clients.
type ExceededError struct {
	Key   string
	Limit int64
	Wait  time.Duration
}

func (e *ExceededError) Error() string {
	return "rate limit exceeded"
}

func (e *ExceededError) StatusCode() int {
	return http.StatusTooManyRequests
}

func (e *ExceededError) Metadata() map[string]any {
	return map[string]any{
		"limit":       e.Limit,
		"retry_after": int64(e.Wait.Round(time.Second).Seconds()),
	}
}
