package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig controls the Redis cache in front of the public catalog
// reads.  Keys live under Prefix; any successful admin write purges them.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int64 // larger responses are served but not stored
}

// LoadCacheConfig reads CACHE_ENABLED, CACHE_TTL, CACHE_PREFIX and
// CACHE_MAX_BODY_BYTES.  Unparsable values fall back to the defaults.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      true,
		TTL:          30 * time.Second,
		Prefix:       "cache:catalog",
		MaxBodyBytes: 1 << 20,
	}
	if b, err := strconv.ParseBool(os.Getenv("CACHE_ENABLED")); err == nil {
		cfg.Enabled = b
	}
	if d, err := time.ParseDuration(os.Getenv("CACHE_TTL")); err == nil && d > 0 {
		cfg.TTL = d
	}
	if p := os.Getenv("CACHE_PREFIX"); p != "" {
		cfg.Prefix = p
	}
	if n, err := strconv.ParseInt(os.Getenv("CACHE_MAX_BODY_BYTES"), 10, 64); err == nil && n >= 0 {
		cfg.MaxBodyBytes = n
	}
	return cfg
}
