// handlers/progression_routes.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rap-battle-platform/middleware"
	"rap-battle-platform/models"
	"rap-battle-platform/services"
)

func SetupProgressionRoutes(app *fiber.App, progressionService *services.ProgressionService, badgeService *services.BadgeService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	progressHandler := func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prog, err := progressionService.EnsureProgressRecord(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progress record",
				"cause": err.Error(),
			})
		}

		// Tournaments won
		var tournamentsWon int64
		if err := progressionService.DB.
			Model(&models.TournamentEntry{}).
			Where("user_id = ? AND final_rank = 1", userID).
			Count(&tournamentsWon).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to count tournament wins",
				"cause": err.Error(),
			})
		}

		// Recent tournament wins
		type RecentWin struct {
			TournamentID string    `json:"tournament_id"`
			Name         string    `json:"name"`
			Rank         int       `json:"rank"`
			PrizeCoins   int64     `json:"prize_coins"`
			JoinedAt     time.Time `json:"joined_at"`
		}
		var recentWins []RecentWin
		if err := progressionService.DB.Raw(`
		SELECT te.tournament_id, t.name, te.final_rank AS rank, te.prize_coins, te.joined_at
		FROM tournament_entries te
		INNER JOIN tournaments t ON t.id = te.tournament_id
		WHERE te.user_id = ? AND te.final_rank = 1
		ORDER BY te.joined_at DESC
		LIMIT 3
	`, userID).Scan(&recentWins).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch recent wins",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"id":                     prog.ID,
			"xp":                     prog.TotalXP,
			"level":                  prog.Level,
			"rank":                   prog.Rank,
			"rank_name":              services.RankName(prog.Rank),
			"total_battles":          prog.TotalBattles,
			"total_wins":             prog.TotalWins,
			"total_tournaments":      prog.TotalTournaments,
			"total_clone_wins":       prog.TotalCloneWins,
			"tournaments_won":        tournamentsWon,
			"recent_tournament_wins": recentWins,
			"last_level_up_at":       prog.LastLevelUpAt,
			"last_rank_up_at":        prog.LastRankUpAt,
		})
	}
	securedGroup.Get("/user/progress", progressHandler)
	securedGroup.Get("/users/me/progress", progressHandler)

	badgesHandler := func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type BadgeRow struct {
			Code        string    `json:"code"`
			Name        string    `json:"name"`
			Description string    `json:"description"`
			IconURL     string    `json:"icon_url"`
			Rarity      string    `json:"rarity"`
			AwardedAt   time.Time `json:"awarded_at"`
		}
		var badges []BadgeRow
		if err := badgeService.DB.Raw(`
		SELECT bt.code, bt.name, bt.description, bt.icon_url, bt.rarity, ub.awarded_at
		FROM user_badges ub
		INNER JOIN badge_types bt ON bt.id = ub.badge_type_id
		WHERE ub.user_id = ?
		ORDER BY ub.awarded_at DESC
	`, userID).Scan(&badges).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch badges",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"badges": badges})
	}
	securedGroup.Get("/user/badges", badgesHandler)
	securedGroup.Get("/users/me/badges", badgesHandler)

	// 🔒 Admin-only: manual XP grant (support / promo corrections)
	admin := securedGroup.Group("/admin", middleware.AdminOnly())

	admin.Post("/users/:user_id/xp/grant", func(c *fiber.Ctx) error {
		targetID := c.Params("user_id")

		var req struct {
			XP     int64  `json:"xp"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil || req.XP <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a positive xp amount is required"})
		}

		var user models.User
		if err := progressionService.DB.First(&user, "id = ?", targetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		prog, err := progressionService.AwardXP(targetID, req.XP, "admin:"+req.Reason)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to grant XP"})
		}

		if err := badgeService.AutoAwardBadges(targetID); err != nil {
			// Badge failures shouldn't fail the grant
			return c.JSON(fiber.Map{"progress": prog, "badge_check": "failed"})
		}

		return c.JSON(fiber.Map{"progress": prog})
	})
}
