package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/ratelimit"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
)

type countingRecorder struct {
	scopes []string
}

func (r *countingRecorder) RecordRateLimited(_ context.Context, scope string) {
	r.scopes = append(r.scopes, scope)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}

func limitedEngine(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/limited", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{Limit: 2, Window: time.Minute})
	defer limiter.Close()
	recorder := &countingRecorder{}
	router := limitedEngine(RateLimit(limiter, "auth", recorder))

	for i := 0; i < 2; i++ {
		w := testutil.Do(t, router, testutil.Request{Path: "/limited"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := testutil.Do(t, router, testutil.Request{Path: "/limited"})
	testutil.AssertErrorResponse(t, w, http.StatusTooManyRequests, shared.CodeRateLimited)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, []string{"auth"}, recorder.scopes)
}

func TestRateLimit_ScopesDoNotShareBuckets(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{Limit: 1, Window: time.Minute})
	defer limiter.Close()
	auth := limitedEngine(RateLimit(limiter, "auth", nil))
	contact := limitedEngine(RateLimit(limiter, "contact", nil))

	assert.Equal(t, http.StatusOK, testutil.Do(t, auth, testutil.Request{Path: "/limited"}).Code)
	assert.Equal(t, http.StatusOK, testutil.Do(t, contact, testutil.Request{Path: "/limited"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, testutil.Do(t, auth, testutil.Request{Path: "/limited"}).Code)
}

func TestRateLimit_LimiterErrorLetsRequestThrough(t *testing.T) {
	router := limitedEngine(RateLimit(brokenLimiter{}, "api", nil))

	w := testutil.Do(t, router, testutil.Request{Path: "/limited"})

	assert.Equal(t, http.StatusOK, w.Code)
}
