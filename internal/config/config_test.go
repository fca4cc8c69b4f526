package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadBookingConfigDefaults(t *testing.T) {
	bc := LoadBookingConfig()
	assert.Equal(t, 10, bc.MinGuests)
	assert.Equal(t, 10.0, bc.FallbackItemPrice)
	assert.Equal(t, 10, bc.DailyLimit)
	assert.Equal(t, "+977", bc.CountryCode)
}

func TestLoadBookingConfigFromEnv(t *testing.T) {
	t.Setenv("BOOKING_MIN_GUESTS", "25")
	t.Setenv("MENU_FALLBACK_PRICE", "12.5")
	t.Setenv("DAILY_BOOKING_LIMIT", "oops")
	bc := LoadBookingConfig()
	assert.Equal(t, 25, bc.MinGuests)
	assert.Equal(t, 12.5, bc.FallbackItemPrice)
	assert.Equal(t, 10, bc.DailyLimit)
}

func TestMockModes(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMS_AUTH_TOKEN", "")
	assert.True(t, LoadMailConfig().Mock)
	assert.True(t, LoadSMSConfig().Mock)

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMS_AUTH_TOKEN", "tok")
	assert.False(t, LoadMailConfig().Mock)
	assert.False(t, LoadSMSConfig().Mock)
}

func TestLoadQueueConfig(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "")
	qc := LoadQueueConfig()
	assert.False(t, qc.PublishEnabled)
	assert.Equal(t, "booking.status_changed", qc.StatusQueue)

	t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
	qc = LoadQueueConfig()
	assert.True(t, qc.PublishEnabled)
	assert.Equal(t, "amqp://u:p@mq:5672/", qc.URL)
}

func TestRateLimitNormalization(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 10*time.Second, rl.TTL)

	auth := rl.ForAuth()
	assert.Equal(t, "rl:auth", auth.Prefix)
	assert.Equal(t, "ip_route", auth.KeyStrategy)
	assert.Equal(t, 10, auth.Capacity)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TLS", "1")
	rc := LoadRedisConfig()
	assert.Equal(t, "cache:6380", rc.Addr)
	assert.True(t, rc.TLS)
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, Config{Env: "dev"}.IsDevelopment())
	assert.False(t, Config{Env: "prod"}.IsDevelopment())
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CACHE_PREFIX", "")
	t.Setenv("CACHE_MAX_BODY_BYTES", "-5")
	cc := LoadCacheConfig()
	assert.False(t, cc.Enabled)
	assert.Equal(t, 2*time.Minute, cc.TTL)
	assert.Equal(t, "cache:catalog", cc.Prefix)
	assert.Equal(t, int64(1<<20), cc.MaxBodyBytes)

	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("CACHE_TTL", "soon")
	cc = LoadCacheConfig()
	assert.True(t, cc.Enabled)
	assert.Equal(t, 30*time.Second, cc.TTL)
}
