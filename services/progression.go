// services/progression.go
package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rap-battle-platform/models"
)

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// LevelForXP maps total XP to a level: 1000 XP per level, capped at 100.
func LevelForXP(xp int64) int {
	level := int(xp/1000) + 1
	if level > 100 {
		return 100
	}
	return level
}

// RankForLevel maps a level to a rank tier.
func RankForLevel(level int) int {
	switch {
	case level >= 80:
		return 6 // Diamond
	case level >= 60:
		return 5 // Platinum
	case level >= 40:
		return 4 // Gold
	case level >= 25:
		return 3 // Silver
	case level >= 10:
		return 2 // Bronze
	default:
		return 1 // Rookie
	}
}

// RankName returns the display name for a rank tier.
func RankName(rank int) string {
	switch rank {
	case 1:
		return "Rookie"
	case 2:
		return "Bronze"
	case 3:
		return "Silver"
	case 4:
		return "Gold"
	case 5:
		return "Platinum"
	case 6:
		return "Diamond"
	default:
		if rank > 6 {
			return "Legend"
		}
		return "Rookie"
	}
}

// EnsureProgressRecord creates the progress row for a user if missing.
func (s *ProgressionService) EnsureProgressRecord(userID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := s.DB.Where("user_id = ?", userID).First(&prog).Error
	if err == nil {
		return &prog, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prog = models.UserProgress{
		ID:     uuid.NewString(),
		UserID: userID,
		Level:  1,
		Rank:   1,
	}
	if err := s.DB.Create(&prog).Error; err != nil {
		return nil, err
	}
	return &prog, nil
}

// AwardXP adds XP, recomputes level/rank, and stamps milestone times.
func (s *ProgressionService) AwardXP(userID string, xp int64, reason string) (*models.UserProgress, error) {
	prog, err := s.EnsureProgressRecord(userID)
	if err != nil {
		return nil, err
	}

	prog.TotalXP += xp
	now := time.Now()

	newLevel := LevelForXP(prog.TotalXP)
	if newLevel > prog.Level {
		prog.Level = newLevel
		prog.LastLevelUpAt = &now
		log.Printf("⬆️ [XP] %s leveled up to %d (%s)", userID, newLevel, reason)
	}

	newRank := RankForLevel(prog.Level)
	if newRank > prog.Rank {
		prog.Rank = newRank
		prog.LastRankUpAt = &now
		log.Printf("🏅 [XP] %s ranked up to %s", userID, RankName(newRank))
	}

	if err := s.DB.Save(prog).Error; err != nil {
		return nil, err
	}
	return prog, nil
}

// RecordBattle bumps the battle counters after a completed battle.
func (s *ProgressionService) RecordBattle(userID string, won, vsClone bool) error {
	prog, err := s.EnsureProgressRecord(userID)
	if err != nil {
		return err
	}

	prog.TotalBattles++
	if won {
		prog.TotalWins++
		if vsClone {
			prog.TotalCloneWins++
		}
	}
	return s.DB.Save(prog).Error
}

// RecordTournament bumps the tournament counter on entry.
func (s *ProgressionService) RecordTournament(userID string) error {
	prog, err := s.EnsureProgressRecord(userID)
	if err != nil {
		return err
	}
	prog.TotalTournaments++
	return s.DB.Save(prog).Error
}
