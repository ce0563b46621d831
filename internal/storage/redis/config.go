package redis

import "time"

// Config holds Redis connection and expiry settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	PoolSize     int
	MinIdleConns int

	// SessionTTL should match the session idle timeout so abandoned sessions
	// expire even when no sweeper runs
	SessionTTL time.Duration
	RoomTTL    time.Duration
}

// DefaultConfig returns the default Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		SessionTTL:   30 * time.Minute,
		RoomTTL:      12 * time.Hour,
	}
}
