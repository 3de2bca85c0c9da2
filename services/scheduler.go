// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"rap-battle-platform/models"
)

// StartPublishScheduler runs the periodic publish and cleanup jobs.
func (s *BattleService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: publish scheduled characters
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var characters []models.Character
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_at <= ?", models.CharacterStatusScheduled, now).
				Find(&characters).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, ch := range characters {
				ch.Status = models.CharacterStatusPublished
				ch.PublishAt = nil
				if err := s.DB.Save(&ch).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish character %s: %v", ch.ID, err)
				} else {
					log.Printf("✅ Auto-published character: %s", ch.Name)
				}
			}
		}),
	)

	// Every minute: publish scheduled tournaments
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var tournaments []models.Tournament
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_schedule <= ?", models.TournamentStatusScheduled, now).
				Find(&tournaments).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, t := range tournaments {
				t.Status = models.TournamentStatusPublished
				t.PublishSchedule = nil
				t.PublishedAt = &now
				if err := s.DB.Save(&t).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish tournament %s: %v", t.ID, err)
				} else {
					log.Printf("✅ Auto-published tournament: %s", t.Name)
				}
			}
		}),
	)

	// Every hour: abandon battles with no verse activity for 24h
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.AbandonStaleBattles),
	)
}
