package config

import "time"

// CacheConfig drives the report response cache. Reports aggregate
// several joined tables and are read far more often than records
// change, so successful report responses are held in Redis for a short
// TTL. Caching is disabled when Enabled is false or no Redis client is
// available.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads cache settings with defaults suitable for the
// report endpoints.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "reports"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
