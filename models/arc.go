// models/arc.go
package models

import "time"

const (
	ArcTxStatusPending   = "pending"
	ArcTxStatusConfirmed = "confirmed"
)

// ArcFaucetUSDC is the demo balance every new Arc wallet starts with.
// The Arc chain is a simulation — there is no real ledger behind it.
const ArcFaucetUSDC = 100.0

// ArcWallet is a simulated blockchain account used for the demo USDC
// rewards feature.
type ArcWallet struct {
	ID      string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  string  `gorm:"uniqueIndex;not null" json:"user_id"`
	Address string  `gorm:"uniqueIndex;not null" json:"address"` // arc1... (fake bech32-ish)
	USDC    float64 `gorm:"not null;default:0" json:"usdc"`

	Timestamps
}

// ArcTransaction is a simulated on-chain transfer. Hashes are random,
// block numbers are assigned by the settlement worker.
type ArcTransaction struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TxHash string `gorm:"uniqueIndex;not null" json:"tx_hash"` // 0x + 64 hex

	FromAddress string  `gorm:"index;not null" json:"from_address"`
	ToAddress   string  `gorm:"index;not null" json:"to_address"`
	AmountUSDC  float64 `gorm:"not null" json:"amount_usdc"`

	Status      string     `gorm:"type:varchar(16);default:'pending'" json:"status"` // pending | confirmed
	BlockNumber int64      `json:"block_number,omitempty"`
	Memo        string     `json:"memo,omitempty"` // e.g., "tournament reward"
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
