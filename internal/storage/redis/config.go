package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string `mapstructure:"url"`

	// Pool settings
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// RoomTTL bounds how long an idle room and its roster survive. Every
	// write refreshes it.
	RoomTTL time.Duration `mapstructure:"room_ttl"`

	// MaxUpdateRetries caps optimistic-lock retries on concurrent updates
	MaxUpdateRetries int `mapstructure:"max_update_retries"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		RoomTTL:          24 * time.Hour,
		MaxUpdateRetries: 5,
	}
}
