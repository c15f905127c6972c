package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth guards service-to-service routes with a shared key sent in the
// X-API-Key header. An empty configured key rejects every request.
func APIKeyAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-API-Key")
		if key == "" {
			return Unauthorized("API key required")
		}

		if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			return Unauthorized("Invalid API key")
		}

		return c.Next()
	}
}
