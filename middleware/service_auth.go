// middleware/service_auth.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServiceAuthMiddleware validates the shared service token on internal
// endpoints (ops tooling, cross-service calls). Regular user traffic never
// hits these routes.
func ServiceAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("BATTLE_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ BATTLE_SERVICE_TOKEN is not set — internal endpoints cannot be secured")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("X-Service-Token")
		if authHeader == "" {
			// fall back to Authorization: Bearer <token>
			authHeader = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}

		if authHeader == "" {
			log.Printf("🚫 [SERVICE_AUTH] Missing service token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service token missing",
			})
		}

		if authHeader != expectedToken {
			log.Printf("❌ [SERVICE_AUTH] Invalid service token for %s (got prefix: %.8s...)", c.Path(), authHeader)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}

		return c.Next()
	}
}
