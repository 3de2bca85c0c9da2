// models/wallet.go
package models

import "time"

// TransactionType classifies wallet ledger entries
type TransactionType string

const (
	TxTypeBattleReward      TransactionType = "battle_reward"
	TxTypeEntryFee          TransactionType = "entry_fee"
	TxTypeCreditPurchase    TransactionType = "credit_purchase"
	TxTypeSubscriptionBonus TransactionType = "subscription_bonus"
	TxTypeTournamentPrize   TransactionType = "tournament_prize"
	TxTypeDailyBonus        TransactionType = "daily_bonus"
	TxTypeRefund            TransactionType = "refund"
)

// Wallet holds a user's in-app coin balance. Balance is only ever mutated
// through WalletService under a row lock; every change has a ledger row.
type Wallet struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  string `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance int64  `gorm:"not null;default:0" json:"balance"` // coins

	TotalEarned int64 `gorm:"default:0" json:"total_earned"`
	TotalSpent  int64 `gorm:"default:0" json:"total_spent"`

	Timestamps
}

// Transaction is an immutable wallet ledger row.
type Transaction struct {
	ID       string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WalletID string          `gorm:"index;not null" json:"wallet_id"`
	UserID   string          `gorm:"index;not null" json:"user_id"`
	Type     TransactionType `gorm:"type:varchar(32);not null" json:"type"`

	Amount       int64  `gorm:"not null" json:"amount"` // signed: credit > 0, debit < 0
	BalanceAfter int64  `gorm:"not null" json:"balance_after"`
	Reference    string `gorm:"index" json:"reference,omitempty"` // battle/tournament/stripe event ID
	Description  string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
