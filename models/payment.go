// models/payment.go
package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription mirrors the user's Stripe subscription state.
type Subscription struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	PlanID               string `gorm:"not null" json:"plan_id"` // local plan code, e.g. "premium_monthly"
	StripeSubscriptionID string `gorm:"index" json:"-"`

	Status           string     `gorm:"type:varchar(16);default:'active'" json:"status"` // active | past_due | canceled
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CanceledAt       *time.Time `json:"canceled_at,omitempty"`

	Timestamps
}

// WebhookEvent records processed Stripe event IDs. The uniqueness of EventID
// is the entire idempotency mechanism: a duplicate delivery hits the
// existence check and returns 200 without reprocessing.
type WebhookEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	EventID   string    `gorm:"uniqueIndex;not null" json:"event_id"` // Stripe evt_... ID
	EventType string    `json:"event_type"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// CreditPack is a purchasable coin bundle (config, not a DB row).
type CreditPack struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Coins    int64  `json:"coins"`
	PriceUSD int64  `json:"price_usd"` // cents
}

// SubscriptionPlan is a recurring plan (config, not a DB row).
type SubscriptionPlan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceUSD     int64  `json:"price_usd"` // cents per month
	MonthlyCoins int64  `json:"monthly_coins"`
}

// Catalog of purchasable packs and plans. Prices in cents.
var CreditPacks = []CreditPack{
	{ID: "starter_500", Name: "Starter Pack", Coins: 500, PriceUSD: 499},
	{ID: "hustler_1200", Name: "Hustler Pack", Coins: 1200, PriceUSD: 999},
	{ID: "mogul_3000", Name: "Mogul Pack", Coins: 3000, PriceUSD: 1999},
}

var SubscriptionPlans = []SubscriptionPlan{
	{ID: "premium_monthly", Name: "Premium", PriceUSD: 799, MonthlyCoins: 1000},
	{ID: "legend_monthly", Name: "Legend", PriceUSD: 1499, MonthlyCoins: 2500},
}
