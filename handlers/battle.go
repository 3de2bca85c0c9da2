// handlers/battle.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/middleware"
	"rap-battle-platform/services"
)

func SetupBattleRoutes(app *fiber.App, battleService *services.BattleService, cloneService *services.CloneService) {
	// 🔐 All battle routes require user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/battles", battleService.CreateBattle)
	secured.Get("/battles", battleService.GetBattles)
	secured.Get("/battles/:id", battleService.GetBattleByID)
	secured.Post("/battles/:id/verses", battleService.SubmitVerse)
	secured.Post("/battles/:id/complete", battleService.CompleteBattle)

	// SSE stream — EventSource can't set headers, so auth rides the query string
	app.Get("/battles/:id/stream", middleware.SSEAuthMiddleware(), battleService.StreamBattleSSE)

	// Clones
	secured.Get("/clones/me", cloneService.GetMyClone)
	secured.Get("/users/me/clone", cloneService.GetMyClone)
	secured.Get("/clones/:id", cloneService.GetCloneByID)

	// Internal ops endpoints — service token, not user sessions
	internal := app.Group("/internal", middleware.ServiceAuthMiddleware())
	internal.Post("/battles/abandon-stale", func(c *fiber.Ctx) error {
		battleService.AbandonStaleBattles()
		return c.JSON(fiber.Map{"ok": true})
	})
}
