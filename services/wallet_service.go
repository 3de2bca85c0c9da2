// services/wallet_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rap-battle-platform/models"
)

// ErrInsufficientBalance is returned by Debit when the wallet can't cover
// the amount.
var ErrInsufficientBalance = errors.New("insufficient coin balance")

type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// Credit adds coins to a user's wallet and writes the ledger row, all under
// a FOR UPDATE row lock. Returns the created transaction.
func (s *WalletService) Credit(userID string, amount int64, txType models.TransactionType, reference, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.apply(userID, amount, txType, reference, description)
}

// Debit removes coins; fails with ErrInsufficientBalance when the wallet
// can't cover it.
func (s *WalletService) Debit(userID string, amount int64, txType models.TransactionType, reference, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return s.apply(userID, -amount, txType, reference, description)
}

// CreditTx is Credit running inside the caller's transaction, for flows that
// must commit the wallet mutation atomically with their own rows.
func (s *WalletService) CreditTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType, reference, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return s.applyTx(tx, userID, amount, txType, reference, description)
}

// DebitTx is Debit running inside the caller's transaction.
func (s *WalletService) DebitTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType, reference, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return s.applyTx(tx, userID, -amount, txType, reference, description)
}

func (s *WalletService) apply(userID string, amount int64, txType models.TransactionType, reference, description string) (*models.Transaction, error) {
	var ledger *models.Transaction

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		ledger, err = s.applyTx(tx, userID, amount, txType, reference, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *WalletService) applyTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType, reference, description string) (*models.Transaction, error) {
	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to lock wallet for user %s: %w", userID, err)
	}

	newBalance := wallet.Balance + amount
	if newBalance < 0 {
		return nil, ErrInsufficientBalance
	}

	wallet.Balance = newBalance
	if amount > 0 {
		wallet.TotalEarned += amount
	} else {
		wallet.TotalSpent += -amount
	}
	if err := tx.Save(&wallet).Error; err != nil {
		return nil, err
	}

	ledger := &models.Transaction{
		ID:           uuid.NewString(),
		WalletID:     wallet.ID,
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reference:    reference,
		Description:  description,
	}
	if err := tx.Create(ledger).Error; err != nil {
		return nil, err
	}

	// keep the progression counter in step for spend-based badges
	if amount < 0 {
		tx.Model(&models.UserProgress{}).
			Where("user_id = ?", userID).
			Update("coins_spent", gorm.Expr("coins_spent + ?", -amount))
	}
	return ledger, nil
}

// EnsureWallet creates a wallet row for users that predate the bootstrap
// (idempotent via the unique index on user_id).
func (s *WalletService) EnsureWallet(userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.DB.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.Wallet{ID: uuid.NewString(), UserID: userID}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// --- Handlers ---

// GetWallet returns the authenticated user's wallet.
func (s *WalletService) GetWallet(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	wallet, err := s.EnsureWallet(userID)
	if err != nil {
		log.Printf("DB Error fetching wallet for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch wallet"})
	}

	return c.JSON(wallet)
}

// GetTransactions returns the user's ledger, newest first, paged.
func (s *WalletService) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.Query("size", "20"))
	if size < 1 || size > 100 {
		size = 20
	}

	query := s.DB.Where("user_id = ?", userID)
	if txType := c.Query("type"); txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	if err := query.Model(&models.Transaction{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var txns []models.Transaction
	if err := query.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&txns).Error; err != nil {
		log.Printf("DB Error fetching transactions for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	return c.JSON(fiber.Map{
		"transactions": txns,
		"page":         page,
		"size":         size,
		"total":        total,
	})
}

// DailyBonusCoins is the once-per-day login reward.
const DailyBonusCoins = 25

var errBonusAlreadyClaimed = errors.New("daily bonus already claimed")

// dailyBonusReady reports whether enough time has passed since the last claim.
func dailyBonusReady(lastClaim, now time.Time) bool {
	return now.Sub(lastClaim) >= 24*time.Hour
}

// ClaimDailyBonus credits the daily reward, once per rolling 24 hours. The
// last-claim check and the credit run under one wallet lock so concurrent
// claims can't both pay out.
func (s *WalletService) ClaimDailyBonus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if _, err := s.EnsureWallet(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch wallet"})
	}

	var txn *models.Transaction
	var nextAt time.Time
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&wallet).Error; err != nil {
			return err
		}

		var last models.Transaction
		err := tx.Where("user_id = ? AND type = ?", userID, models.TxTypeDailyBonus).
			Order("created_at DESC").
			First(&last).Error
		if err == nil && !dailyBonusReady(last.CreatedAt, time.Now()) {
			nextAt = last.CreatedAt.Add(24 * time.Hour)
			return errBonusAlreadyClaimed
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		txn, err = s.CreditTx(tx, userID, DailyBonusCoins, models.TxTypeDailyBonus, "", "Daily bonus")
		return err
	})
	if errors.Is(err, errBonusAlreadyClaimed) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "daily bonus already claimed",
			"next_at": nextAt,
		})
	}
	if err != nil {
		log.Printf("❌ Daily bonus credit failed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to claim bonus"})
	}

	return c.Status(fiber.StatusCreated).JSON(txn)
}
