package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a locally registered account (username/password auth).
type User struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"` // bcrypt, never serialized
	AvatarURL    *string `json:"avatar_url,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	StageName    string  `json:"stage_name"` // display name shown in battles

	// Stripe linkage (set after first checkout)
	StripeCustomerID string `gorm:"index" json:"-"`

	IsAdmin  bool `gorm:"default:false" json:"is_admin"`
	IsBanned bool `gorm:"default:false" json:"is_banned"`

	LastSeen *time.Time `json:"last_seen,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
