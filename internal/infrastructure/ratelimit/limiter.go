// Package ratelimit implements token-bucket request limiting, shared
// through Redis or local to the process.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Result describes one limiter decision
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Config sizes a bucket: Limit requests may burst, and the bucket refills
// completely over Window
type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) normalized() Config {
	if c.Limit <= 0 {
		c.Limit = 100
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

// tokensPerSecond is the refill rate
func (c Config) tokensPerSecond() float64 {
	return float64(c.Limit) / c.Window.Seconds()
}

// retryAfter is the wait until one token is available
func (c Config) retryAfter(tokens float64) time.Duration {
	missing := 1 - tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / c.tokensPerSecond() * float64(time.Second))
}
