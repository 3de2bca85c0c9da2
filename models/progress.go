package models

import "time"

// UserProgress tracks gamified progression for each user (denormalized for performance)
type UserProgress struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	// Core progression
	TotalXP int64 `json:"total_xp" gorm:"default:0"`
	Level   int   `json:"level" gorm:"default:1"`
	Rank    int   `json:"rank" gorm:"default:1"` // Rookie(1)→Bronze(2)→Silver(3)→Gold(4)→Platinum(5)→Diamond(6)

	// Activity counters
	TotalBattles     int64 `json:"total_battles" gorm:"default:0"`
	TotalWins        int64 `json:"total_wins" gorm:"default:0"`
	TotalTournaments int64 `json:"total_tournaments" gorm:"default:0"`
	TotalCloneWins   int64 `json:"total_clone_wins" gorm:"default:0"` // wins against other users' clones
	CoinsSpent       int64 `json:"coins_spent" gorm:"default:0"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`
	LastRankUpAt  *time.Time `json:"last_rank_up_at,omitempty"`

	Timestamps
}

// BadgeType: static config (loaded from DB or JSON)
type BadgeType struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code        string `gorm:"uniqueIndex;not null"` // e.g., "FIRST_BATTLE", "TOURNAMENT_CHAMP"
	Name        string `gorm:"not null"`
	Description string
	IconURL     string           `gorm:"type:text"`
	Rarity      string           `gorm:"type:varchar(16);default:'common'"` // common, rare, epic, legendary
	Threshold   map[string]int64 `gorm:"type:jsonb;serializer:json"`        // e.g., {"total_battles": 10}
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
}

// UserBadge: awarded instance (many-to-many)
type UserBadge struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string    `gorm:"index;not null"`
	BadgeTypeID string    `gorm:"index;not null"`
	AwardedAt   time.Time `gorm:"autoCreateTime"`
	Metadata    string    `gorm:"type:jsonb"` // e.g., {"battle_id": "...", "score": 97}
}

// Predefined badge triggers
var BadgeTriggers = []BadgeType{
	{
		Code:        "WELCOME",
		Name:        "Mic Check",
		Description: "Joined the platform",
		Rarity:      "common",
		Threshold:   map[string]int64{"event": 1}, // awarded on signup
	},
	{
		Code:        "FIRST_BATTLE",
		Name:        "First Bars",
		Description: "Finished your first battle",
		Rarity:      "common",
		Threshold:   map[string]int64{"total_battles": 1},
	},
	{
		Code:        "TEN_WINS",
		Name:        "Double Digits",
		Description: "Won 10 battles",
		Rarity:      "rare",
		Threshold:   map[string]int64{"total_wins": 10},
	},
	{
		Code:        "TOURNAMENT_CHAMP",
		Name:        "Crowned",
		Description: "Won a tournament",
		Rarity:      "epic",
		Threshold:   map[string]int64{"tournament_wins": 1},
	},
	{
		Code:        "CLONE_MASTER",
		Name:        "Mirror Match",
		Description: "Beat 5 clones",
		Rarity:      "rare",
		Threshold:   map[string]int64{"total_clone_wins": 5},
	},
	{
		Code:        "BIG_SPENDER",
		Name:        "Big Spender",
		Description: "Spent 1,000 coins",
		Rarity:      "rare",
		Threshold:   map[string]int64{"coins_spent": 1000},
	},
	{
		Code:        "LEVEL_50",
		Name:        "Halfway Legend",
		Description: "Reached Level 50",
		Rarity:      "epic",
		Threshold:   map[string]int64{"level": 50},
	},
}
