// handlers/auth.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/middleware"
	"rap-battle-platform/services"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	// 🔓 Public routes
	app.Post("/auth/signup", authService.Signup)
	app.Post("/auth/login", authService.Login)

	// 🔐 Secured routes — require a valid session token
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/auth/me", authService.GetMe)
	secured.Get("/users/me", authService.GetMe)
	secured.Put("/auth/me", authService.UpdateMe)
	secured.Patch("/auth/me", authService.UpdateMe)
}
