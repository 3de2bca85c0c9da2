// services/leaderboard_cache.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache keeps tournament standings in Redis sorted sets so the
// leaderboard endpoint doesn't hit Postgres on every poll. Cache misses fall
// back to the database; all cache errors are best-effort.
type LeaderboardCache struct {
	rdb *redis.Client
}

func NewLeaderboardCache(rdb *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb}
}

func leaderboardKey(tournamentID string) string {
	return fmt.Sprintf("tournament:%s:leaderboard", tournamentID)
}

// RankedScore is one cached leaderboard row.
type RankedScore struct {
	UserID string `json:"user_id"`
	Score  int64  `json:"score"`
	Rank   int    `json:"rank"`
}

// UpdateScore writes a user's best score into the tournament ZSET.
func (l *LeaderboardCache) UpdateScore(ctx context.Context, tournamentID, userID string, score int64) {
	if l == nil || l.rdb == nil {
		return
	}
	key := leaderboardKey(tournamentID)
	if err := l.rdb.ZAdd(ctx, key, redis.Z{
		Score:  float64(score),
		Member: userID,
	}).Err(); err != nil {
		log.Printf("⚠️ [CACHE] Failed to update leaderboard %s: %v", key, err)
		return
	}
	l.rdb.Expire(ctx, key, 24*time.Hour)
}

// Top returns the top-n standings from the cache, or ok=false on miss/error.
func (l *LeaderboardCache) Top(ctx context.Context, tournamentID string, n int64) ([]RankedScore, bool) {
	if l == nil || l.rdb == nil {
		return nil, false
	}
	key := leaderboardKey(tournamentID)

	entries, err := l.rdb.ZRevRangeWithScores(ctx, key, 0, n-1).Result()
	if err != nil || len(entries) == 0 {
		return nil, false
	}

	ranked := make([]RankedScore, 0, len(entries))
	for i, e := range entries {
		member, _ := e.Member.(string)
		ranked = append(ranked, RankedScore{
			UserID: member,
			Score:  int64(e.Score),
			Rank:   i + 1,
		})
	}
	return ranked, true
}

// Rebuild replaces the tournament ZSET with the given standings.
func (l *LeaderboardCache) Rebuild(ctx context.Context, tournamentID string, scores map[string]int64) {
	if l == nil || l.rdb == nil {
		return
	}
	key := leaderboardKey(tournamentID)

	members := make([]redis.Z, 0, len(scores))
	for userID, score := range scores {
		members = append(members, redis.Z{Score: float64(score), Member: userID})
	}

	pipe := l.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
	}
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("⚠️ [CACHE] Failed to rebuild leaderboard %s: %v", key, err)
	}
}

// Invalidate drops a tournament's cached standings (e.g., after finalize).
func (l *LeaderboardCache) Invalidate(ctx context.Context, tournamentID string) {
	if l == nil || l.rdb == nil {
		return
	}
	l.rdb.Del(ctx, leaderboardKey(tournamentID))
}
