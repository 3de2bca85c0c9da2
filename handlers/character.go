// handlers/character.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/middleware"
	"rap-battle-platform/services"
)

func SetupCharacterRoutes(app *fiber.App, characterService *services.CharacterService) {
	// 🔓 Public routes — published roster only
	app.Get("/characters", characterService.GetPublishedCharacters)
	app.Get("/characters/minimal", characterService.GetMinimalCharacters)
	app.Get("/characters/:id", characterService.GetCharacterByID)

	// 🔒 Admin-only character management
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminOnly())

	admin.Get("/characters", characterService.GetAllCharacters)
	admin.Post("/characters", characterService.CreateCharacter)
	admin.Put("/characters/:id", characterService.UpdateCharacter)
	admin.Patch("/characters/:id", characterService.UpdateCharacter)
	admin.Delete("/characters/:id", characterService.DeleteCharacter)
	admin.Post("/characters/:id/avatar", characterService.UploadCharacterAvatar)

	// Publish scheduling
	admin.Post("/characters/:id/publish/now", characterService.PublishNow)
	admin.Post("/characters/:id/publish/schedule", characterService.SchedulePublish)
	admin.Post("/characters/:id/publish/cancel", characterService.CancelScheduledPublish)
}
