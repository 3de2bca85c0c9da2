// workers/leaderboard_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"rap-battle-platform/models"
	"rap-battle-platform/services"
)

// LeaderboardSyncWorker periodically rebuilds the Redis standings for every
// live tournament from Postgres, so cache drift (missed updates, evictions)
// self-heals within one interval.
type LeaderboardSyncWorker struct {
	db       *gorm.DB
	cache    *services.LeaderboardCache
	interval time.Duration
}

func NewLeaderboardSyncWorker(db *gorm.DB, cache *services.LeaderboardCache) *LeaderboardSyncWorker {
	return &LeaderboardSyncWorker{
		db:       db,
		cache:    cache,
		interval: 30 * time.Second,
	}
}

func (w *LeaderboardSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Leaderboard Sync Worker (postgres → redis)…")
	go w.run(ctx)
}

func (w *LeaderboardSyncWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx); err != nil {
				log.Printf("❌ [SYNC] Leaderboard sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Leaderboard Sync Worker stopped")
			return
		}
	}
}

func (w *LeaderboardSyncWorker) syncBatch(ctx context.Context) error {
	var tournaments []models.Tournament
	if err := w.db.
		Where("status IN ?", []string{models.TournamentStatusPublished, models.TournamentStatusActive}).
		Find(&tournaments).Error; err != nil {
		return err
	}

	for _, t := range tournaments {
		var rows []models.LeaderboardEntry
		if err := w.db.Where("tournament_id = ?", t.ID).Find(&rows).Error; err != nil {
			log.Printf("❌ [SYNC] Failed to load standings for %s: %v", t.ID, err)
			continue
		}

		scores := make(map[string]int64, len(rows))
		for _, r := range rows {
			scores[r.UserID] = r.Score
		}
		w.cache.Rebuild(ctx, t.ID, scores)
	}

	return nil
}
