package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopfront/backend/internal/domain/site"
	"go.uber.org/zap"
)

const (
	settingsKey             = "shop:settings"
	defaultSettingsCacheTTL = 10 * time.Minute
)

// RedisSettingsCache caches the settings row as JSON. Redis failures are
// logged and treated as a miss so the database stays authoritative.
type RedisSettingsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSettingsCache creates the cache. A zero ttl means ten minutes.
func NewRedisSettingsCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisSettingsCache {
	if ttl <= 0 {
		ttl = defaultSettingsCacheTTL
	}
	return &RedisSettingsCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached settings
func (c *RedisSettingsCache) Get(ctx context.Context) (*site.Settings, bool) {
	raw, err := c.client.Get(ctx, settingsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Settings cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var s site.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		c.logger.Warn("Discarding malformed cached settings", zap.Error(err))
		c.Invalidate(ctx)
		return nil, false
	}
	s.ID = site.SettingsID
	return &s, true
}

// Set stores settings
func (c *RedisSettingsCache) Set(ctx context.Context, s *site.Settings) {
	raw, err := json.Marshal(s)
	if err != nil {
		c.logger.Warn("Failed to encode settings for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, settingsKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Settings cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached settings
func (c *RedisSettingsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		c.logger.Warn("Settings cache invalidation failed", zap.Error(err))
	}
}

var _ site.SettingsCache = (*RedisSettingsCache)(nil)

// InMemorySettingsCache caches settings in process for single-instance
// deployments
type InMemorySettingsCache struct {
	mu        sync.RWMutex
	value     *site.Settings
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewInMemorySettingsCache creates the cache. A zero ttl means ten minutes.
func NewInMemorySettingsCache(ttl time.Duration) *InMemorySettingsCache {
	if ttl <= 0 {
		ttl = defaultSettingsCacheTTL
	}
	return &InMemorySettingsCache{ttl: ttl, now: time.Now}
}

// Get returns a copy of the cached settings
func (c *InMemorySettingsCache) Get(context.Context) (*site.Settings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil || c.now().After(c.expiresAt) {
		return nil, false
	}
	cp := *c.value
	return &cp, true
}

// Set stores a copy of s
func (c *InMemorySettingsCache) Set(_ context.Context, s *site.Settings) {
	cp := *s
	c.mu.Lock()
	c.value = &cp
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
}

// Invalidate drops the cached settings
func (c *InMemorySettingsCache) Invalidate(context.Context) {
	c.mu.Lock()
	c.value = nil
	c.mu.Unlock()
}

var _ site.SettingsCache = (*InMemorySettingsCache)(nil)
