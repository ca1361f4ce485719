package limiter

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter backed by Redis, suitable for sharing
// buckets across instances. Counters are plain INCR keys with a window-long
// expiry set on first increment.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed limiter. The client lifecycle is managed
// by the caller (see pkg/redis).
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Setup accounts one call against the bucket named by cfg.Key.
func (r *Redis) Setup(ctx context.Context, cfg Config) (*Quota, error) {
	key := cfg.Key
	if r.prefix != "" {
		key = r.prefix + ":" + key
	}

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if count == 1 {
		if err := r.client.PExpire(ctx, key, cfg.Window).Err(); err != nil {
			return nil, err
		}
	}

	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	// A key without expiry (lost between INCR and PEXPIRE) reports a
	// negative TTL; treat the full window as remaining.
	wait := ttl
	if wait < 0 {
		wait = cfg.Window
	}

	if cfg.Max > 0 && count > cfg.Max {
		return nil, &ExceededError{Key: cfg.Key, Limit: cfg.Max, Wait: wait}
	}

	return &Quota{
		Limit:    cfg.Max,
		Requests: count,
		Window:   cfg.Window,
		Wait:     wait,
	}, nil
}
