package ratelimit

import (
	"time"
)

// Config holds rate limiter configuration.
type Config struct {
	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Window is the sliding time window for the rate limit.
	Window time.Duration

	// KeyHeader is the header the client key is extracted from
	// (default: "x-api-key").
	KeyHeader string

	// FallbackToIP uses the client IP when the header is absent.
	FallbackToIP bool
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Limit:        60,
		Window:       time.Minute,
		KeyHeader:    "x-api-key",
		FallbackToIP: true,
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithLimit sets the request limit and its window.
func WithLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.Limit = limit
		c.Window = window
	}
}

// WithKeyHeader sets the header name for client key extraction.
func WithKeyHeader(header string) Option {
	return func(c *Config) {
		c.KeyHeader = header
	}
}

// WithoutIPFallback disables keying by client IP when the header is absent;
// such requests then share a single "anonymous" window.
func WithoutIPFallback() Option {
	return func(c *Config) {
		c.FallbackToIP = false
	}
}
