// middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/services"
)

// SSEAuthMiddleware validates a `token` query param for EventSource clients.
// Browsers cannot set headers on SSE connections, so the JWT rides in the
// query string instead of the Authorization header.
//
// Usage:
//
//	app.Get("/battles/:id/stream", middleware.SSEAuthMiddleware(), battleService.StreamBattleSSE)
func SSEAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			log.Printf("[SSEAuth] ❌ Missing token query param for %s", c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing token in query",
			})
		}

		claims, err := services.ParseToken(token)
		if err != nil {
			log.Printf("[SSEAuth] ❌ Validation failed for token (prefix: %.10s...): %v", token, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("is_admin", claims.IsAdmin)

		return c.Next()
	}
}
