package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	ts     time.Time
}

// MemoryLimiter is a per-process token bucket. Idle buckets are swept
// periodically until Close is called.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryLimiter creates a limiter and starts its sweeper
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	l := &MemoryLimiter{
		cfg:     cfg.normalized(),
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow takes one token for key
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.Limit), ts: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.ts).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(l.cfg.Limit), b.tokens+elapsed*l.cfg.tokensPerSecond())
	}
	b.ts = now

	res := Result{Limit: l.cfg.Limit}
	if b.tokens >= 1 {
		b.tokens--
		res.Allowed = true
	} else {
		res.RetryAfter = l.cfg.retryAfter(b.tokens)
	}
	res.Remaining = int(b.tokens)
	return res, nil
}

func (l *MemoryLimiter) sweep() {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			cutoff := l.now().Add(-l.cfg.Window)
			for key, b := range l.buckets {
				if b.ts.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the sweeper
func (l *MemoryLimiter) Close() error {
	l.closeOnce.Do(func() { close(l.stop) })
	return nil
}

var _ Limiter = (*MemoryLimiter)(nil)
