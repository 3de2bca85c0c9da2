// models/battle.go
package models

import "time"

const (
	BattleStatusActive    = "active"
	BattleStatusCompleted = "completed"
	BattleStatusAbandoned = "abandoned"
)

const (
	VerseAuthorUser      = "user"
	VerseAuthorCharacter = "character"
	VerseAuthorOpponent  = "opponent"
	VerseAuthorClone     = "clone"
)

// Battle records a verse-exchange session between a user and an AI character,
// a cloned opponent, or another user. Exactly one of CharacterID, CloneID and
// OpponentUserID is set.
type Battle struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	CharacterID    *string `gorm:"index" json:"character_id,omitempty"`
	CloneID        *string `gorm:"index" json:"clone_id,omitempty"`
	OpponentUserID *string `gorm:"index" json:"opponent_user_id,omitempty"`

	TournamentID *string `gorm:"index" json:"tournament_id,omitempty"` // nil = casual battle

	Rounds int    `json:"rounds" gorm:"default:3"` // verses per side
	Status string `json:"status" gorm:"type:varchar(16);default:'active'"` // active | completed | abandoned

	// Summed overall verse scores per side (filled on completion)
	UserScore     int64   `json:"user_score" gorm:"default:0"`
	OpponentScore int64   `json:"opponent_score" gorm:"default:0"`
	WinnerID      *string `json:"winner_id,omitempty"` // user ID, or nil for AI/clone wins and draws

	CoinsAwarded int64 `json:"coins_awarded" gorm:"default:0"`
	XPEarned     int64 `json:"xp_earned" gorm:"default:0"`

	LastVerseAt *time.Time `json:"last_verse_at,omitempty"` // staleness marker for the abandon sweep
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Verses []Verse `json:"verses,omitempty" gorm:"foreignKey:BattleID"`

	Timestamps
}

// Verse is a single scored contribution to a battle.
type Verse struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	BattleID string `gorm:"index;not null" json:"battle_id"`

	// Author side: "user" (battle owner), "opponent" (PvP opponent),
	// "character" or "clone" (AI-generated)
	Author   string  `json:"author" gorm:"type:varchar(16);not null"`
	AuthorID *string `gorm:"index" json:"author_id,omitempty"` // user/character/clone ID

	Text       string `json:"text" gorm:"type:text;not null"`
	Transcript bool   `json:"transcript" gorm:"default:false"` // true when text came from audio transcription
	AudioURL   string `json:"audio_url,omitempty"`             // TTS rendering for AI verses

	// Heuristic scores, 0–100 each
	RhymeScore      int `json:"rhyme_score"`
	FlowScore       int `json:"flow_score"`
	CreativityScore int `json:"creativity_score"`
	OverallScore    int `json:"overall_score"`

	Round       int       `json:"round" gorm:"default:1"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}
