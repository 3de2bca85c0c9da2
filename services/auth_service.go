// services/auth_service.go
package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rap-battle-platform/models"
)

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// Signup registers a new user and bootstraps their wallet, progress record
// and Arc wallet in a single transaction.
func (s *AuthService) Signup(c *fiber.Ctx) error {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		StageName string `json:"stage_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and email are required"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 8 characters"})
	}
	if req.StageName == "" {
		req.StageName = req.Username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to hash password"})
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		StageName:    req.StageName,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", req.Username, req.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errUserExists
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Wallet{ID: uuid.NewString(), UserID: user.ID}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.UserProgress{ID: uuid.NewString(), UserID: user.ID, Level: 1, Rank: 1}).Error; err != nil {
			return err
		}
		// Demo chain wallet with faucet balance
		return tx.Create(&models.ArcWallet{
			ID:      uuid.NewString(),
			UserID:  user.ID,
			Address: NewArcAddress(),
			USDC:    models.ArcFaucetUSDC,
		}).Error
	})
	if err != nil {
		if errors.Is(err, errUserExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username or email already taken"})
		}
		log.Printf("DB Error creating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
	}

	token, err := GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		log.Printf("Token generation failed for new user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
	}

	log.Printf("✅ New user signed up: %s (%s)", user.Username, user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

var errUserExists = errors.New("user already exists")

// Login exchanges credentials for a session token.
func (s *AuthService) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var user models.User
	if err := s.DB.Where("username = ? OR email = ?", req.Username, strings.ToLower(req.Username)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if user.IsBanned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account is banned"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
	}

	now := time.Now()
	s.DB.Model(&user).Update("last_seen", &now)

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// GetMe returns the authenticated user's profile with progression summary.
func (s *AuthService) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var prog models.UserProgress
	_ = s.DB.Where("user_id = ?", userID).First(&prog).Error

	var wallet models.Wallet
	_ = s.DB.Where("user_id = ?", userID).First(&wallet).Error

	return c.JSON(fiber.Map{
		"user": user,
		"progress": fiber.Map{
			"xp":            prog.TotalXP,
			"level":         prog.Level,
			"rank":          prog.Rank,
			"total_battles": prog.TotalBattles,
			"total_wins":    prog.TotalWins,
		},
		"wallet": fiber.Map{
			"balance": wallet.Balance,
		},
	})
}

// UpdateMe lets the user edit their public profile fields.
func (s *AuthService) UpdateMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		StageName *string `json:"stage_name"`
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if req.StageName != nil && *req.StageName != "" {
		user.StageName = *req.StageName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.DB.Save(&user).Error; err != nil {
		log.Printf("DB Error updating user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(user)
}
