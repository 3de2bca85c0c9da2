// handlers/voice.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/middleware"
	"rap-battle-platform/services"
)

func SetupVoiceRoutes(app *fiber.App, voiceService *services.VoiceService) {
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/voice/command", voiceService.HandleCommand)
}
