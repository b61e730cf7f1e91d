package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shopfront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "shopfront", cfg.Database.DBName)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, int64(5<<20), cfg.Upload.MaxImageSize)
		assert.Equal(t, int64(50<<20), cfg.Upload.MaxVideoSize)
		assert.Equal(t, int64(10<<20), cfg.Upload.MaxBulkSize)
		assert.Equal(t, "shopfront.orders", cfg.Kafka.Topic)
		assert.False(t, cfg.Redis.Enabled)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.Scheduler.AbandonedOrderInterval)
		assert.Equal(t, 24*time.Hour, cfg.Scheduler.AbandonedOrderMaxAge)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		t.Setenv("SHOP_APP_NAME", "test-app")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_DATABASE_HOST", "testdb.local")
		t.Setenv("SHOP_DATABASE_PORT", "5433")
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("SHOP_JWT_ACCESS_TOKEN_EXPIRATION", "5m")
		t.Setenv("SHOP_REDIS_ENABLED", "true")
		t.Setenv("SHOP_SCHEDULER_ABANDONED_ORDER_MAX_AGE", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "test-app", cfg.Telemetry.ServiceName)
		assert.Equal(t, 2*time.Hour, cfg.Scheduler.AbandonedOrderMaxAge)
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		assert.Error(t, err)
	})
}

func validProductionConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.Database.Password = "secret"
	cfg.Cookie.Secure = true
	cfg.Admin.Password = "a-real-password"
	return cfg
}

func TestValidate_Production(t *testing.T) {
	require.NoError(t, validProductionConfig().validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }},
		{"missing db password", func(c *Config) { c.Database.Password = "" }},
		{"insecure cookies", func(c *Config) { c.Cookie.Secure = false }},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }},
		{"default admin password", func(c *Config) { c.Admin.Password = defaultAdminPassword }},
		{"payment without webhook secret", func(c *Config) {
			c.Payment.Enabled = true
			c.Payment.SecretKey = "sk_live_x"
		}},
		{"full sql logging", func(c *Config) { c.Telemetry.DBLogFullSQL = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProductionConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidate_Common(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	require.NoError(t, cfg.validate())

	cfg.Cookie.SameSite = "none"
	assert.Error(t, cfg.validate())

	cfg = &Config{}
	applyDefaults(cfg)
	cfg.Storage.Enabled = true
	assert.Error(t, cfg.validate())

	cfg = &Config{}
	applyDefaults(cfg)
	cfg.Telemetry.SamplingRatio = 1.5
	assert.Error(t, cfg.validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "shop", Password: "p@ss/word", DBName: "shopfront", SSLMode: "disable"}
	assert.Equal(t, "postgres://shop:p%40ss%2Fword@db:5432/shopfront?sslmode=disable", d.DSN())
}
