package models

// Clone is a per-user AI opponent profile derived by averaging the user's
// past scored verses. Rebuilt after every completed battle.
type Clone struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	DisplayName string `json:"display_name"` // e.g., "MC Flow's Clone"

	// Averages over the source user's verses, 0–100
	AvgRhyme      float64 `json:"avg_rhyme" gorm:"default:0"`
	AvgFlow       float64 `json:"avg_flow" gorm:"default:0"`
	AvgCreativity float64 `json:"avg_creativity" gorm:"default:0"`
	AvgOverall    float64 `json:"avg_overall" gorm:"default:0"`

	SourceVerses int64  `json:"source_verses" gorm:"default:0"` // verses averaged
	Difficulty   string `json:"difficulty" gorm:"type:varchar(16);default:'easy'"`

	// Battles fought *as* an opponent
	TotalBattles int64 `json:"total_battles" gorm:"default:0"`
	TotalWins    int64 `json:"total_wins" gorm:"default:0"`

	Timestamps
}
