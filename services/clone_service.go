// services/clone_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rap-battle-platform/models"
)

type CloneService struct {
	DB *gorm.DB
}

func NewCloneService(db *gorm.DB) *CloneService {
	return &CloneService{DB: db}
}

// CloneAverages is the aggregate of a user's scored verses.
type CloneAverages struct {
	Rhyme      float64
	Flow       float64
	Creativity float64
	Overall    float64
	Verses     int64
}

// AverageVerseScores aggregates the user-authored verses that feed a clone
// profile. Pure — callers pass the verses in.
func AverageVerseScores(verses []models.Verse) CloneAverages {
	if len(verses) == 0 {
		return CloneAverages{}
	}

	var avg CloneAverages
	for _, v := range verses {
		avg.Rhyme += float64(v.RhymeScore)
		avg.Flow += float64(v.FlowScore)
		avg.Creativity += float64(v.CreativityScore)
		avg.Overall += float64(v.OverallScore)
	}

	n := float64(len(verses))
	avg.Rhyme = round1(avg.Rhyme / n)
	avg.Flow = round1(avg.Flow / n)
	avg.Creativity = round1(avg.Creativity / n)
	avg.Overall = round1(avg.Overall / n)
	avg.Verses = int64(len(verses))
	return avg
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// CloneDifficulty maps an average overall score to a difficulty tier.
func CloneDifficulty(avgOverall float64) string {
	switch {
	case avgOverall >= 70:
		return models.DifficultyHard
	case avgOverall >= 45:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}

// CloneDisplayName builds the public clone name from the user's stage name.
func CloneDisplayName(stageName string) string {
	titled := cases.Title(language.English, cases.NoLower).String(stageName)
	return fmt.Sprintf("%s's Clone", titled)
}

// RebuildClone recomputes the user's clone profile from their scored verses
// and upserts it. Called after every completed battle.
func (s *CloneService) RebuildClone(userID string) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to load user %s for clone rebuild: %w", userID, err)
	}

	var verses []models.Verse
	if err := s.DB.
		Joins("JOIN battles ON battles.id = verses.battle_id").
		Where("verses.author = ? AND verses.author_id = ? AND battles.status = ?",
			models.VerseAuthorUser, userID, models.BattleStatusCompleted).
		Find(&verses).Error; err != nil {
		return fmt.Errorf("failed to load verses for clone rebuild: %w", err)
	}

	avg := AverageVerseScores(verses)

	clone := models.Clone{
		ID:            uuid.NewString(),
		UserID:        userID,
		DisplayName:   CloneDisplayName(user.StageName),
		AvgRhyme:      avg.Rhyme,
		AvgFlow:       avg.Flow,
		AvgCreativity: avg.Creativity,
		AvgOverall:    avg.Overall,
		SourceVerses:  avg.Verses,
		Difficulty:    CloneDifficulty(avg.Overall),
	}

	if err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "avg_rhyme", "avg_flow", "avg_creativity",
			"avg_overall", "source_verses", "difficulty", "updated_at",
		}),
	}).Create(&clone).Error; err != nil {
		return fmt.Errorf("failed to upsert clone for user %s: %w", userID, err)
	}

	log.Printf("🧬 [CLONE] Rebuilt clone for %s: overall=%.1f over %d verses (%s)",
		user.Username, avg.Overall, avg.Verses, clone.Difficulty)
	return nil
}

// ClonePersona builds the Groq system-prompt material for a clone opponent.
func ClonePersona(clone *models.Clone) string {
	return fmt.Sprintf(
		"You are %s, an AI clone of a rap battler. Your style profile (0-100): rhyme %.0f, flow %.0f, creativity %.0f. "+
			"Match that skill level — a low-scoring clone writes sloppier bars, a high-scoring one goes hard.",
		clone.DisplayName, clone.AvgRhyme, clone.AvgFlow, clone.AvgCreativity,
	)
}

// --- Handlers ---

// GetMyClone returns the authenticated user's clone profile.
func (s *CloneService) GetMyClone(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var clone models.Clone
	if err := s.DB.Where("user_id = ?", userID).First(&clone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no clone yet — complete a battle first",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(clone)
}

// GetCloneByID returns another user's clone profile, so authenticated users
// can scout an opponent before challenging it.
func (s *CloneService) GetCloneByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid clone ID"})
	}

	var clone models.Clone
	if err := s.DB.First(&clone, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Clone not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(clone)
}
