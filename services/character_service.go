// services/character_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"rap-battle-platform/models"
	"rap-battle-platform/utils"
)

type CharacterService struct {
	DB *gorm.DB
}

func NewCharacterService(db *gorm.DB) *CharacterService {
	return &CharacterService{DB: db}
}

// MinimalCharacter struct for lightweight listing
type MinimalCharacter struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Tagline    string `json:"tagline"`
	AvatarURL  string `json:"avatar_url"`
	Difficulty string `json:"difficulty"`
}

// CreateCharacter creates a new **draft** AI character (admin only).
func (s *CharacterService) CreateCharacter(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Tagline     string `json:"tagline"`
		Description string `json:"description"`
		Persona     string `json:"persona"`
		Difficulty  string `json:"difficulty"`
		VoiceID     string `json:"voice_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.Persona == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and persona are required"})
	}

	switch req.Difficulty {
	case "":
		req.Difficulty = models.DifficultyMedium
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "difficulty must be easy, medium or hard"})
	}

	character := &models.Character{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Tagline:     req.Tagline,
		Description: req.Description,
		Persona:     req.Persona,
		Difficulty:  req.Difficulty,
		VoiceID:     req.VoiceID,
		Status:      models.CharacterStatusDraft,
	}

	if err := s.DB.Create(character).Error; err != nil {
		log.Printf("DB Error creating character: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create character"})
	}

	return c.Status(fiber.StatusCreated).JSON(character)
}

// UploadCharacterAvatar uploads the character's avatar to R2 (admin only).
func (s *CharacterService) UploadCharacterAvatar(c *fiber.Ctx) error {
	id := c.Params("id")

	var character models.Character
	if err := s.DB.First(&character, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Character not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if avatarFile.Size > 5*1024*1024 { // 5MB
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar too large (max 5MB)"})
	}

	ext := filepath.Ext(avatarFile.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := fmt.Sprintf("avatars/characters/%s%s", uuid.NewString(), ext)

	url, err := utils.UploadFileToR2(avatarFile, key)
	if err != nil {
		log.Printf("R2 upload failed for character %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
	}

	character.AvatarURL = url
	if err := s.DB.Save(&character).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save avatar URL"})
	}

	return c.JSON(fiber.Map{"avatar_url": url})
}

// UpdateCharacter updates editable fields (admin only).
func (s *CharacterService) UpdateCharacter(c *fiber.Ctx) error {
	id := c.Params("id")

	var character models.Character
	if err := s.DB.First(&character, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Character not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Name        *string `json:"name"`
		Tagline     *string `json:"tagline"`
		Description *string `json:"description"`
		Persona     *string `json:"persona"`
		Difficulty  *string `json:"difficulty"`
		VoiceID     *string `json:"voice_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Name != nil && *req.Name != "" {
		character.Name = *req.Name
		character.Slug = slug.Make(*req.Name)
	}
	if req.Tagline != nil {
		character.Tagline = *req.Tagline
	}
	if req.Description != nil {
		character.Description = *req.Description
	}
	if req.Persona != nil && *req.Persona != "" {
		character.Persona = *req.Persona
	}
	if req.Difficulty != nil {
		switch *req.Difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			character.Difficulty = *req.Difficulty
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid difficulty"})
		}
	}
	if req.VoiceID != nil {
		character.VoiceID = *req.VoiceID
	}

	if err := s.DB.Save(&character).Error; err != nil {
		log.Printf("DB Error updating character %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update character"})
	}

	return c.JSON(character)
}

// DeleteCharacter soft-deletes a character (admin only).
func (s *CharacterService) DeleteCharacter(c *fiber.Ctx) error {
	id := c.Params("id")

	var character models.Character
	if err := s.DB.First(&character, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Character not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.DB.Delete(&character).Error; err != nil {
		log.Printf("DB Error deleting character %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete character"})
	}

	return c.JSON(fiber.Map{"message": "Character deleted successfully"})
}

// --- Publishing lifecycle ---

// PublishNow publishes a character immediately (admin only).
func (s *CharacterService) PublishNow(c *fiber.Ctx) error {
	return s.setPublishState(c, models.CharacterStatusPublished, nil)
}

// SchedulePublish schedules a character for future publication (admin only).
func (s *CharacterService) SchedulePublish(c *fiber.Ctx) error {
	var req struct {
		PublishAt time.Time `json:"publish_at"`
	}
	if err := c.BodyParser(&req); err != nil || req.PublishAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at is required"})
	}
	if req.PublishAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at must be in the future"})
	}
	return s.setPublishState(c, models.CharacterStatusScheduled, &req.PublishAt)
}

// CancelScheduledPublish reverts a scheduled character to draft (admin only).
func (s *CharacterService) CancelScheduledPublish(c *fiber.Ctx) error {
	return s.setPublishState(c, models.CharacterStatusDraft, nil)
}

func (s *CharacterService) setPublishState(c *fiber.Ctx, status string, publishAt *time.Time) error {
	id := c.Params("id")

	var character models.Character
	if err := s.DB.First(&character, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Character not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	character.Status = status
	character.PublishAt = publishAt
	if err := s.DB.Save(&character).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update publish state"})
	}

	log.Printf("🎤 [CHARACTER] %s → %s", character.Name, status)
	return c.JSON(character)
}

// --- Public reads ---

// GetPublishedCharacters lists the battleable roster.
func (s *CharacterService) GetPublishedCharacters(c *fiber.Ctx) error {
	var characters []models.Character
	query := s.DB.Where("status = ?", models.CharacterStatusPublished)

	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	if err := query.Order("name ASC").Find(&characters).Error; err != nil {
		log.Printf("DB Error fetching characters: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch characters"})
	}

	return c.JSON(characters)
}

// GetMinimalCharacters lists the roster in lightweight form.
func (s *CharacterService) GetMinimalCharacters(c *fiber.Ctx) error {
	var minimal []MinimalCharacter
	if err := s.DB.Model(&models.Character{}).
		Where("status = ?", models.CharacterStatusPublished).
		Order("name ASC").
		Find(&minimal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch characters"})
	}
	return c.JSON(minimal)
}

// GetCharacterByID returns one published character; admins can read any state.
func (s *CharacterService) GetCharacterByID(c *fiber.Ctx) error {
	id := c.Params("id")
	isAdmin, _ := c.Locals("is_admin").(bool)

	query := s.DB.Where("id = ? OR slug = ?", id, id)
	if !isAdmin {
		query = query.Where("status = ?", models.CharacterStatusPublished)
	}

	var character models.Character
	if err := query.First(&character).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Character not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(character)
}

// GetAllCharacters lists every state for the admin console.
func (s *CharacterService) GetAllCharacters(c *fiber.Ctx) error {
	var characters []models.Character
	if err := s.DB.Order("created_at DESC").Find(&characters).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch characters"})
	}
	return c.JSON(characters)
}
