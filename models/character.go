// models/character.go
package models

import (
	"time"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	CharacterStatusDraft     = "draft"
	CharacterStatusScheduled = "scheduled"
	CharacterStatusPublished = "published"
)

// Character is an AI opponent in the public catalog.
// Follows the draft → scheduled → published lifecycle; only published
// characters are battleable.
type Character struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`

	// Persona drives Groq verse generation (system prompt material)
	Persona    string `json:"persona" gorm:"type:text"`
	Difficulty string `json:"difficulty" gorm:"type:varchar(16);default:'medium'"` // easy | medium | hard

	// 🖼️ Media
	AvatarURL string `json:"avatar_url"` // e.g., R2 URL

	// 🔊 TTS voice for generated verses (ElevenLabs voice ID)
	VoiceID string `json:"voice_id"`

	// 🎛️ Publishing state
	Status    string     `json:"status" gorm:"default:'draft'"` // draft | scheduled | published
	PublishAt *time.Time `json:"publish_at"`                    // only used if scheduled

	// Aggregate battle stats (denormalized)
	TotalBattles int64 `json:"total_battles" gorm:"default:0"`
	TotalWins    int64 `json:"total_wins" gorm:"default:0"`

	Timestamps
}
