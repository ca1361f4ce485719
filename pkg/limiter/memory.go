package limiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	resetAt time.Time
	count   int64
}

// Memory is an in-process fixed-window limiter. Stale buckets are replaced
// lazily when their window has passed and swept by a background janitor.
type Memory struct {
	buckets map[string]*bucket
	done    chan struct{}
	mu      sync.Mutex
}

// NewMemory creates an in-process limiter. sweepInterval controls how often
// stale buckets are dropped; non-positive disables the sweeper.
func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweep(sweepInterval)
	}
	return m
}

// Setup accounts one call against the bucket named by cfg.Key.
func (m *Memory) Setup(_ context.Context, cfg Config) (*Quota, error) {
	now := time.Now()

	m.mu.Lock()
	b, ok := m.buckets[cfg.Key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(cfg.Window)}
		m.buckets[cfg.Key] = b
	}
	b.count++
	count := b.count
	wait := b.resetAt.Sub(now)
	m.mu.Unlock()

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

// Close stops the sweeper.
func (m *Memory) Close() error {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	return nil
}

func (m *Memory) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for k, b := range m.buckets {
				if now.After(b.resetAt) {
					delete(m.buckets, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
