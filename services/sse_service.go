// services/sse_service.go
package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rap-battle-platform/models"
)

// StreamBattleSSE streams new verses for a battle as they land. Spectators
// and PvP opponents poll this instead of refetching the whole battle.
func (s *BattleService) StreamBattleSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	battleID := c.Params("id")

	var battle models.Battle
	if err := s.DB.First(&battle, "id = ?", battleID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Battle not found"})
	}
	if battle.UserID != userID && (battle.OpponentUserID == nil || *battle.OpponentUserID != userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your battle"})
	}

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastSubmittedAt time.Time

		var latest models.Verse
		if err := s.DB.
			Where("battle_id = ?", battleID).
			Order("submitted_at DESC").
			First(&latest).Error; err == nil {
			lastSubmittedAt = latest.SubmittedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for battle %s: %v", battleID, err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var verses []models.Verse
				err := s.DB.
					Where("battle_id = ? AND submitted_at > ?", battleID, lastSubmittedAt).
					Order("submitted_at ASC").
					Find(&verses).Error
				if err != nil {
					log.Printf("SSE query error for battle %s: %v", battleID, err)
					continue
				}

				if len(verses) == 0 {
					// Battle settled with nothing new to stream → close out
					var current models.Battle
					if err := s.DB.Select("status").First(&current, "id = ?", battleID).Error; err == nil &&
						current.Status != models.BattleStatusActive {
						fmt.Fprintf(w, "event: battle_%s\ndata: {}\n\n", current.Status)
						w.Flush()
						return
					}
					continue
				}

				lastSubmittedAt = verses[len(verses)-1].SubmittedAt

				for _, v := range verses {
					payload, _ := json.Marshal(v)
					fmt.Fprintf(w, "event: verse\ndata: %s\n\n", payload)
				}

				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}

// StreamRewardsSSE streams new wallet ledger rows for the authenticated user
// so the client can toast coin awards in real time.
func (s *WalletService) StreamRewardsSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastCreatedAt time.Time

		var latest models.Transaction
		if err := s.DB.
			Where("user_id = ?", userID).
			Order("created_at DESC").
			First(&latest).Error; err == nil {
			lastCreatedAt = latest.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for user %s: %v", userID, err)
		}

		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var txns []models.Transaction
				err := s.DB.
					Where("user_id = ? AND created_at > ?", userID, lastCreatedAt).
					Order("created_at ASC").
					Find(&txns).Error
				if err != nil {
					log.Printf("SSE query error for user %s: %v", userID, err)
					continue
				}

				if len(txns) == 0 {
					continue
				}

				lastCreatedAt = txns[len(txns)-1].CreatedAt

				for _, t := range txns {
					payload, _ := json.Marshal(t)
					fmt.Fprintf(w, "event: transaction\ndata: %s\n\n", payload)
				}

				if err := w.Flush(); err != nil {
					return
				}

			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
