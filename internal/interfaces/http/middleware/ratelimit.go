package middleware

import (
	"context"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/ratelimit"
	"go.uber.org/zap"
)

// RateLimitRecorder is notified of every rejected request
type RateLimitRecorder interface {
	RecordRateLimited(ctx context.Context, scope string)
}

// RateLimitConfig holds configuration for the rate limit middleware
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	// Scope prefixes the key so separate limits do not share buckets
	Scope string
	// KeyFunc identifies the caller. Defaults to the client IP.
	KeyFunc  func(*gin.Context) string
	Recorder RateLimitRecorder
}

// RateLimit returns a rate limiting middleware keyed by client IP
func RateLimit(limiter ratelimit.Limiter, scope string, recorder RateLimitRecorder) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{Limiter: limiter, Scope: scope, Recorder: recorder})
}

// RateLimitWithConfig returns a rate limiting middleware. Limiter errors let
// the request through.
func RateLimitWithConfig(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return func(c *gin.Context) {
		key := cfg.Scope + ":" + cfg.KeyFunc(c)
		res, err := cfg.Limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.GetGinLogger(c).Warn("Rate limiter unavailable", zap.String("scope", cfg.Scope), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			if cfg.Recorder != nil {
				cfg.Recorder.RecordRateLimited(c.Request.Context(), cfg.Scope)
			}
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			abortWithError(c, shared.CodeRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
