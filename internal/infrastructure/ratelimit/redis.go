package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] bucket, ARGV capacity, refill per ms, now in ms, ttl in s.
// Returns {allowed, tokens left * 1000}.
var tokenBucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])
if tokens == nil then
	tokens = capacity
	ts = now
end

tokens = math.min(capacity, tokens + math.max(0, now - ts) * rate)
local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, math.floor(tokens * 1000)}
`)

// RedisLimiter is a token bucket kept in Redis so that every instance
// shares the same budget. The refill runs inside a Lua script and is atomic.
type RedisLimiter struct {
	client redis.Scripter
	cfg    Config
	prefix string
	now    func() time.Time
}

// NewRedisLimiter creates a limiter storing buckets under prefix
func NewRedisLimiter(client redis.Scripter, prefix string, cfg Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		cfg:    cfg.normalized(),
		prefix: "shop:ratelimit:" + prefix + ":",
		now:    time.Now,
	}
}

// Allow takes one token for key
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	ttl := int64(math.Ceil(l.cfg.Window.Seconds())) + 1
	res, err := tokenBucketScript.Run(ctx, l.client, []string{l.prefix + key},
		l.cfg.Limit,
		strconv.FormatFloat(l.cfg.tokensPerSecond()/1000, 'f', -1, 64),
		l.now().UnixMilli(),
		ttl,
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(res) != 2 {
		return Result{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}

	tokens := float64(res[1]) / 1000
	out := Result{
		Allowed:   res[0] == 1,
		Limit:     l.cfg.Limit,
		Remaining: int(tokens),
	}
	if !out.Allowed {
		out.RetryAfter = l.cfg.retryAfter(tokens)
	}
	return out, nil
}

var _ Limiter = (*RedisLimiter)(nil)
