// services/arc_service.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rap-battle-platform/models"
)

// ArcService is a simulated blockchain backend for the demo USDC rewards
// feature. Hashes are random, balances live in Postgres, and "confirmation"
// is a timer — there is no real chain behind any of this.
type ArcService struct {
	DB *gorm.DB
}

func NewArcService(db *gorm.DB) *ArcService {
	return &ArcService{DB: db}
}

// NewArcAddress generates a fake bech32-style address: arc1 + 38 hex chars.
func NewArcAddress() string {
	buf := make([]byte, 19)
	_, _ = rand.Read(buf)
	return "arc1" + hex.EncodeToString(buf)
}

// NewArcTxHash generates a fake transaction hash: 0x + 64 hex chars.
func NewArcTxHash() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return "0x" + hex.EncodeToString(buf)
}

// EnsureArcWallet creates the user's demo wallet with the faucet balance if
// it doesn't exist yet.
func (s *ArcService) EnsureArcWallet(userID string) (*models.ArcWallet, error) {
	var wallet models.ArcWallet
	err := s.DB.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.ArcWallet{
		ID:      uuid.NewString(),
		UserID:  userID,
		Address: NewArcAddress(),
		USDC:    models.ArcFaucetUSDC,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// orderedAddresses returns the two addresses in lexicographic order, which
// is the lock acquisition order for transfers.
func orderedAddresses(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Transfer records a simulated USDC transfer between two Arc addresses.
// Balances move immediately; the transaction confirms later via the
// settlement worker.
func (s *ArcService) Transfer(fromAddress, toAddress string, amount float64, memo string) (*models.ArcTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive, got %f", amount)
	}
	if fromAddress == toAddress {
		return nil, fmt.Errorf("cannot transfer to the same address %s", fromAddress)
	}

	var arcTx *models.ArcTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Lock both wallets in address order so opposite concurrent
		// transfers can't deadlock
		first, second := orderedAddresses(fromAddress, toAddress)

		wallets := make(map[string]*models.ArcWallet, 2)
		for _, addr := range []string{first, second} {
			var w models.ArcWallet
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("address = ?", addr).
				First(&w).Error; err != nil {
				side := "source"
				if addr == toAddress {
					side = "destination"
				}
				return fmt.Errorf("%s arc wallet %s not found: %w", side, addr, err)
			}
			wallets[addr] = &w
		}

		from := wallets[fromAddress]
		to := wallets[toAddress]

		if from.USDC < amount {
			return ErrInsufficientBalance
		}

		from.USDC -= amount
		to.USDC += amount
		if err := tx.Save(from).Error; err != nil {
			return err
		}
		if err := tx.Save(to).Error; err != nil {
			return err
		}

		arcTx = &models.ArcTransaction{
			ID:          uuid.NewString(),
			TxHash:      NewArcTxHash(),
			FromAddress: fromAddress,
			ToAddress:   toAddress,
			AmountUSDC:  amount,
			Status:      models.ArcTxStatusPending,
			Memo:        memo,
		}
		return tx.Create(arcTx).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⛓️ [ARC] Transfer %.2f USDC %s → %s (tx %s)", amount, fromAddress, toAddress, arcTx.TxHash)
	return arcTx, nil
}

// RewardUSDC mints a demo reward into the user's Arc wallet from the
// platform treasury address. The treasury is bottomless — it's a simulation.
func (s *ArcService) RewardUSDC(userID string, amount float64, memo string) (*models.ArcTransaction, error) {
	wallet, err := s.EnsureArcWallet(userID)
	if err != nil {
		return nil, err
	}

	var arcTx *models.ArcTransaction
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ArcWallet{}).
			Where("id = ?", wallet.ID).
			Update("usdc", gorm.Expr("usdc + ?", amount)).Error; err != nil {
			return err
		}

		arcTx = &models.ArcTransaction{
			ID:          uuid.NewString(),
			TxHash:      NewArcTxHash(),
			FromAddress: TreasuryAddress,
			ToAddress:   wallet.Address,
			AmountUSDC:  amount,
			Status:      models.ArcTxStatusPending,
			Memo:        memo,
		}
		return tx.Create(arcTx).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⛓️ [ARC] Rewarded %.2f USDC to %s (%s)", amount, userID, memo)
	return arcTx, nil
}

// TreasuryAddress is the fixed fake treasury account rewards are paid from.
const TreasuryAddress = "arc1treasury000000000000000000000000000000"

// --- Handlers ---

// GetArcWallet returns the user's simulated chain wallet.
func (s *ArcService) GetArcWallet(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	wallet, err := s.EnsureArcWallet(userID)
	if err != nil {
		log.Printf("DB Error fetching arc wallet for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch arc wallet"})
	}

	return c.JSON(wallet)
}

// GetArcTransactions lists transfers touching the user's address.
func (s *ArcService) GetArcTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	wallet, err := s.EnsureArcWallet(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch arc wallet"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var txns []models.ArcTransaction
	if err := s.DB.
		Where("from_address = ? OR to_address = ?", wallet.Address, wallet.Address).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error; err != nil {
		log.Printf("DB Error fetching arc transactions for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	return c.JSON(txns)
}

// TransferUSDC sends demo USDC from the user's wallet to another address.
func (s *ArcService) TransferUSDC(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		ToAddress string  `json:"to_address"`
		Amount    float64 `json:"amount"`
		Memo      string  `json:"memo"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ToAddress == "" || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to_address and a positive amount are required"})
	}

	wallet, err := s.EnsureArcWallet(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch arc wallet"})
	}

	if req.ToAddress == wallet.Address {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot transfer to your own address"})
	}

	arcTx, err := s.Transfer(wallet.Address, req.ToAddress, req.Amount, req.Memo)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient USDC balance"})
		}
		log.Printf("Arc transfer failed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transfer failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(arcTx)
}
