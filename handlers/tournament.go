// handlers/tournament.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"rap-battle-platform/middleware"
	"rap-battle-platform/services"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// 🔓 Public routes (only published/active/completed tournaments)
	app.Get("/tournaments", tournamentService.GetTournaments)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)
	app.Get("/tournaments/:id/leaderboard", tournamentService.GetLeaderboard)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/tournaments/:id/enter", tournamentService.EnterTournament)
	secured.Get("/users/me/entries", tournamentService.GetMyEntries)

	// 🔒 Admin-only tournament management
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminOnly())

	admin.Get("/tournaments", tournamentService.GetAllTournaments)
	admin.Post("/tournaments", tournamentService.CreateTournament)
	admin.Put("/tournaments/:id", tournamentService.UpdateTournament)
	admin.Patch("/tournaments/:id", tournamentService.UpdateTournament)
	admin.Delete("/tournaments/:id", tournamentService.DeleteTournament)

	// Publish scheduling
	admin.Post("/tournaments/:id/publish/now", tournamentService.PublishTournamentNow)
	admin.Post("/tournaments/:id/publish/schedule", tournamentService.ScheduleTournamentPublish)
	admin.Post("/tournaments/:id/publish/cancel", tournamentService.CancelTournamentPublish)

	// Settlement
	admin.Post("/tournaments/:id/finalize", tournamentService.FinalizeTournament)
}
