package models

import (
	"time"
)

const (
	TournamentStatusDraft     = "draft"
	TournamentStatusScheduled = "scheduled"
	TournamentStatusPublished = "published"
	TournamentStatusActive    = "active"
	TournamentStatusCompleted = "completed"
)

// Tournament is a leaderboard-style battle tournament. Entry fees and prize
// pools are denominated in platform coins.
type Tournament struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	Rules       string `json:"rules"`

	EntryFee    int64 `json:"entry_fee" gorm:"default:0"`  // coins
	PrizePool   int64 `json:"prize_pool" gorm:"default:0"` // coins, split 50/30/20
	MaxEntrants int   `json:"max_entrants" gorm:"default:0"`

	// Optional character restriction: battles must face this character
	CharacterID *string `json:"character_id,omitempty" gorm:"index"`

	MainPhotoURL string `json:"main_photo_url"`
	SponsorName  string `json:"sponsor_name"`
	IsFeatured   bool   `json:"is_featured" gorm:"default:false"`

	Status          string     `json:"status" gorm:"default:'draft'"`
	StartTime       time.Time  `json:"start_time" gorm:"not null"`
	EndTime         time.Time  `json:"end_time"`
	PublishedAt     *time.Time `json:"published_at,omitempty" gorm:"index"`
	PublishSchedule *time.Time `json:"publish_schedule,omitempty"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`

	// Relationships
	Entries []TournamentEntry `json:"entries,omitempty" gorm:"foreignKey:TournamentID"`

	// Calculated fields (not stored in DB)
	EntrantsCount  int64 `json:"entrants_count,omitempty" gorm:"-"`
	AvailableSlots int64 `json:"available_slots,omitempty" gorm:"-"`

	Timestamps
}

// TournamentEntry tracks a user's paid participation.
type TournamentEntry struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TournamentID string `gorm:"not null;index:idx_tournament_user,unique" json:"tournament_id"`
	UserID       string `gorm:"not null;index:idx_tournament_user,unique" json:"user_id"`

	FeePaid       int64  `json:"fee_paid"`
	TransactionID string `json:"transaction_id,omitempty"` // wallet ledger row for the fee debit

	// Engagement
	BattlesPlayed int64 `json:"battles_played" gorm:"default:0"`
	BestScore     int64 `json:"best_score" gorm:"default:0"`
	FinalRank     int   `json:"final_rank" gorm:"default:0"` // 0 = not ranked

	// Payouts (filled on finalization)
	PrizeCoins int64   `json:"prize_coins" gorm:"default:0"`
	ArcTxHash  string  `json:"arc_tx_hash,omitempty"` // demo USDC reward
	ArcUSDC    float64 `json:"arc_usdc" gorm:"default:0"`

	Status string `json:"status" gorm:"type:varchar(16);default:'joined'"` // joined → active → completed → disqualified

	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// LeaderboardEntry — one row per (tournament, user), best overall battle score.
type LeaderboardEntry struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TournamentID string    `json:"tournament_id" gorm:"not null;index:idx_lb_tournament_user,unique"`
	UserID       string    `json:"user_id" gorm:"not null;index:idx_lb_tournament_user,unique"`
	Username     string    `json:"username"` // denormalized for leaderboard rendering
	Score        int64     `json:"score"`
	Rank         int       `json:"rank" gorm:"-"` // computed when served
	SubmittedAt  time.Time `json:"submitted_at" gorm:"autoUpdateTime"`
}

// MiniTournament is the lightweight listing shape.
type MiniTournament struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Status       string     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	MainPhotoURL string     `json:"main_photo_url"`
	EntryFee     int64      `json:"entry_fee"`
	PrizePool    int64      `json:"prize_pool"`
	SponsorName  string     `json:"sponsor_name"`
	IsFeatured   bool       `json:"is_featured"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	MaxEntrants  int        `json:"max_entrants"`
	CreatedAt    time.Time  `json:"created_at"`
}
