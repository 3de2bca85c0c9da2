package services

import (
	"fmt"

	"gorm.io/gorm"

	"rap-battle-platform/models"
)

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// SeedBadgeTypes upserts the static badge catalog at boot.
func (s *BadgeService) SeedBadgeTypes() error {
	for _, trigger := range models.BadgeTriggers {
		var existing models.BadgeType
		err := s.DB.Where("code = ?", trigger.Code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := s.DB.Create(&trigger).Error; err != nil {
				return fmt.Errorf("failed to seed badge %s: %w", trigger.Code, err)
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// AutoAwardBadges checks all badge triggers for a user after a progress update
func (s *BadgeService) AutoAwardBadges(userID string) error {
	var prog models.UserProgress
	if err := s.DB.Where("user_id = ?", userID).First(&prog).Error; err != nil {
		return err
	}

	var tournamentWins int64
	s.DB.Model(&models.TournamentEntry{}).
		Where("user_id = ? AND final_rank = 1", userID).
		Count(&tournamentWins)

	var triggers []models.BadgeType
	if err := s.DB.Find(&triggers).Error; err != nil {
		return err
	}

	var awarded []string
	for _, trigger := range triggers {
		if s.meetsThreshold(&prog, tournamentWins, trigger.Threshold) {
			// Check if already awarded
			var count int64
			s.DB.Model(&models.UserBadge{}).
				Where("user_id = ? AND badge_type_id = ?", userID, trigger.ID).
				Count(&count)
			if count == 0 {
				userBadge := models.UserBadge{
					UserID:      userID,
					BadgeTypeID: trigger.ID,
				}
				if err := s.DB.Create(&userBadge).Error; err != nil {
					return err
				}
				awarded = append(awarded, trigger.Name)
				fmt.Printf("🎖️ Badge awarded: %s → %s\n", trigger.Name, userID)
			}
		}
	}

	if len(awarded) > 0 {
		// Optional: emit event for push notification
	}
	return nil
}

func (s *BadgeService) meetsThreshold(prog *models.UserProgress, tournamentWins int64, req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case "total_battles":
			if prog.TotalBattles < required {
				return false
			}
		case "total_wins":
			if prog.TotalWins < required {
				return false
			}
		case "total_tournaments":
			if prog.TotalTournaments < required {
				return false
			}
		case "total_clone_wins":
			if prog.TotalCloneWins < required {
				return false
			}
		case "tournament_wins":
			if tournamentWins < required {
				return false
			}
		case "coins_spent":
			if prog.CoinsSpent < required {
				return false
			}
		case "level":
			if int64(prog.Level) < required {
				return false
			}
		case "rank":
			if int64(prog.Rank) < required {
				return false
			}
		case "event": // special: always true (e.g., signup)
			return true
		}
	}
	return true
}
