package api

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader is the header carrying the client's API key. Fiber header
// lookups are case-insensitive, so any casing of the name is accepted.
const APIKeyHeader = "x-api-key"

// APIKeyMiddleware validates the static API key on every request. A missing
// server-side secret is a deployment fault and surfaces as a server error,
// never as unauthorized.
func APIKeyMiddleware(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error:   "server_error",
				Message: "Service authentication is not configured",
			})
		}

		provided := c.Get(APIKeyHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or missing API key",
			})
		}

		return c.Next()
	}
}
