package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopfront/backend/internal/domain/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemorySettingsCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySettingsCache(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	s := site.DefaultSettings()
	s.StoreName = "Cached"
	c.Set(ctx, s)
	s.StoreName = "Mutated"

	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "Cached", got.StoreName, "cache keeps its own copy")

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx)
	assert.False(t, ok, "expired")

	c.Set(ctx, s)
	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestRedisSettingsCache_UnavailableIsMiss(t *testing.T) {
	// Nothing listens on this port; every call fails fast.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisSettingsCache(client, 0, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, site.DefaultSettings())
	_, ok := c.Get(ctx)
	assert.False(t, ok)
	c.Invalidate(ctx)
}
