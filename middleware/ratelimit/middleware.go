// Package ratelimit provides per-client sliding window rate limiting as a
// Fiber middleware backed by in-process state.
package ratelimit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// errorBody is the JSON payload returned on a rejected request.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New builds a Fiber middleware enforcing the configured limits. Requests
// are keyed by the configured header, falling back to the client IP.
func New(opts ...Option) fiber.Handler {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	limiter := NewLimiter(config.Limit, config.Window)
	logger := slog.Default()

	return func(c *fiber.Ctx) error {
		key := c.Get(config.KeyHeader)
		if key == "" {
			if config.FallbackToIP {
				key = c.IP()
			} else {
				key = "anonymous"
			}
		}

		result := limiter.Allow(key)

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			logger.Warn("Rate limit exceeded", "limit", result.Limit)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{
				Error:   "rate_limited",
				Message: "Rate limit exceeded, retry later",
			})
		}

		return c.Next()
	}
}
