// services/tournament_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rap-battle-platform/models"
)

// Prize pool split for the top three finishers.
var prizeSplit = []float64{0.50, 0.30, 0.20}

// Demo USDC reward paid on-chain (simulated) alongside the coin prizes.
var arcPrizeUSDC = []float64{25.0, 10.0, 5.0}

type TournamentService struct {
	DB          *gorm.DB
	Wallet      *WalletService
	Arc         *ArcService
	Progression *ProgressionService
	Badges      *BadgeService
	Cache       *LeaderboardCache
}

func NewTournamentService(db *gorm.DB, wallet *WalletService, arc *ArcService,
	progression *ProgressionService, badges *BadgeService, cache *LeaderboardCache) *TournamentService {
	return &TournamentService{
		DB:          db,
		Wallet:      wallet,
		Arc:         arc,
		Progression: progression,
		Badges:      badges,
		Cache:       cache,
	}
}

// --- Admin CRUD ---

// CreateTournament creates a draft tournament (admin only).
func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	var req struct {
		Name         string    `json:"name"`
		Description  string    `json:"description"`
		Rules        string    `json:"rules"`
		EntryFee     int64     `json:"entry_fee"`
		PrizePool    int64     `json:"prize_pool"`
		MaxEntrants  int       `json:"max_entrants"`
		CharacterID  *string   `json:"character_id"`
		MainPhotoURL string    `json:"main_photo_url"`
		SponsorName  string    `json:"sponsor_name"`
		IsFeatured   bool      `json:"is_featured"`
		StartTime    time.Time `json:"start_time"`
		EndTime      time.Time `json:"end_time"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" || req.StartTime.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and start_time are required"})
	}
	if req.EntryFee < 0 || req.PrizePool < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "entry_fee and prize_pool cannot be negative"})
	}

	if req.CharacterID != nil {
		var character models.Character
		if err := s.DB.First(&character, "id = ?", *req.CharacterID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "character_id does not exist"})
		}
	}

	tournament := &models.Tournament{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		Description:  req.Description,
		Rules:        req.Rules,
		EntryFee:     req.EntryFee,
		PrizePool:    req.PrizePool,
		MaxEntrants:  req.MaxEntrants,
		CharacterID:  req.CharacterID,
		MainPhotoURL: req.MainPhotoURL,
		SponsorName:  req.SponsorName,
		IsFeatured:   req.IsFeatured,
		Status:       models.TournamentStatusDraft,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}

	if err := s.DB.Create(tournament).Error; err != nil {
		log.Printf("DB Error creating tournament: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create tournament"})
	}

	return c.Status(fiber.StatusCreated).JSON(tournament)
}

// UpdateTournament patches editable fields (admin only). Finalized
// tournaments are immutable.
func (s *TournamentService) UpdateTournament(c *fiber.Ctx) error {
	id := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if tournament.FinalizedAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "tournament is finalized"})
	}

	var req struct {
		Name         *string    `json:"name"`
		Description  *string    `json:"description"`
		Rules        *string    `json:"rules"`
		EntryFee     *int64     `json:"entry_fee"`
		PrizePool    *int64     `json:"prize_pool"`
		MaxEntrants  *int       `json:"max_entrants"`
		MainPhotoURL *string    `json:"main_photo_url"`
		SponsorName  *string    `json:"sponsor_name"`
		IsFeatured   *bool      `json:"is_featured"`
		StartTime    *time.Time `json:"start_time"`
		EndTime      *time.Time `json:"end_time"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Name != nil && *req.Name != "" {
		tournament.Name = *req.Name
		tournament.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		tournament.Description = *req.Description
	}
	if req.Rules != nil {
		tournament.Rules = *req.Rules
	}
	if req.EntryFee != nil && *req.EntryFee >= 0 {
		tournament.EntryFee = *req.EntryFee
	}
	if req.PrizePool != nil && *req.PrizePool >= 0 {
		tournament.PrizePool = *req.PrizePool
	}
	if req.MaxEntrants != nil {
		tournament.MaxEntrants = *req.MaxEntrants
	}
	if req.MainPhotoURL != nil {
		tournament.MainPhotoURL = *req.MainPhotoURL
	}
	if req.SponsorName != nil {
		tournament.SponsorName = *req.SponsorName
	}
	if req.IsFeatured != nil {
		tournament.IsFeatured = *req.IsFeatured
	}
	if req.StartTime != nil {
		tournament.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		tournament.EndTime = *req.EndTime
	}

	if err := s.DB.Save(&tournament).Error; err != nil {
		log.Printf("DB Error updating tournament %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tournament"})
	}

	return c.JSON(tournament)
}

// DeleteTournament soft-deletes a tournament with no entrants (admin only).
func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	id := c.Params("id")

	var entrants int64
	s.DB.Model(&models.TournamentEntry{}).Where("tournament_id = ?", id).Count(&entrants)
	if entrants > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cannot delete a tournament with entrants"})
	}

	result := s.DB.Delete(&models.Tournament{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete tournament"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
	}

	return c.JSON(fiber.Map{"message": "Tournament deleted successfully"})
}

// --- Publishing lifecycle ---

// PublishTournamentNow makes a tournament visible and joinable (admin only).
func (s *TournamentService) PublishTournamentNow(c *fiber.Ctx) error {
	return s.setPublishState(c, models.TournamentStatusPublished, nil)
}

// ScheduleTournamentPublish sets a future publish time (admin only).
func (s *TournamentService) ScheduleTournamentPublish(c *fiber.Ctx) error {
	var req struct {
		PublishAt time.Time `json:"publish_at"`
	}
	if err := c.BodyParser(&req); err != nil || req.PublishAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at is required"})
	}
	if req.PublishAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at must be in the future"})
	}
	return s.setPublishState(c, models.TournamentStatusScheduled, &req.PublishAt)
}

// CancelTournamentPublish reverts a scheduled tournament to draft (admin only).
func (s *TournamentService) CancelTournamentPublish(c *fiber.Ctx) error {
	return s.setPublishState(c, models.TournamentStatusDraft, nil)
}

func (s *TournamentService) setPublishState(c *fiber.Ctx, status string, publishAt *time.Time) error {
	id := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if tournament.FinalizedAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "tournament is finalized"})
	}

	tournament.Status = status
	tournament.PublishSchedule = publishAt
	if status == models.TournamentStatusPublished {
		now := time.Now()
		tournament.PublishedAt = &now
	}

	if err := s.DB.Save(&tournament).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update publish state"})
	}

	log.Printf("🏆 [TOURNAMENT] %s → %s", tournament.Name, status)
	return c.JSON(tournament)
}

// --- Entry ---

var (
	errTournamentNotOpen = errors.New("tournament is not open for entry")
	errTournamentEnded   = errors.New("tournament has ended")
	errAlreadyEntered    = errors.New("already entered")
	errTournamentFull    = errors.New("tournament is full")
)

// tournamentOpenForEntry checks the status and end-time gates for joining.
func tournamentOpenForEntry(t *models.Tournament, now time.Time) error {
	if t.Status != models.TournamentStatusPublished && t.Status != models.TournamentStatusActive {
		return errTournamentNotOpen
	}
	if !t.EndTime.IsZero() && now.After(t.EndTime) {
		return errTournamentEnded
	}
	return nil
}

// EnterTournament joins a tournament. The status, duplicate and capacity
// checks, the fee debit and the entry insert all run in one transaction with
// the tournament row locked, so concurrent entrants can't overfill it and a
// fee can never be charged without its entry row.
func (s *TournamentService) EnterTournament(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id := c.Params("id")

	if _, err := s.Wallet.EnsureWallet(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch wallet"})
	}

	var tournament models.Tournament
	var entry models.TournamentEntry

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&tournament, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tournamentOpenForEntry(&tournament, time.Now()); err != nil {
			return err
		}

		var existing models.TournamentEntry
		if err := tx.Where("tournament_id = ? AND user_id = ?", id, userID).
			First(&existing).Error; err == nil {
			return errAlreadyEntered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if tournament.MaxEntrants > 0 {
			var entrants int64
			if err := tx.Model(&models.TournamentEntry{}).
				Where("tournament_id = ?", id).
				Count(&entrants).Error; err != nil {
				return err
			}
			if entrants >= int64(tournament.MaxEntrants) {
				return errTournamentFull
			}
		}

		entry = models.TournamentEntry{
			ID:           uuid.NewString(),
			TournamentID: id,
			UserID:       userID,
			FeePaid:      tournament.EntryFee,
			Status:       "joined",
		}

		if tournament.EntryFee > 0 {
			desc := fmt.Sprintf("Entry fee: %s", tournament.Name)
			txn, err := s.Wallet.DebitTx(tx, userID, tournament.EntryFee, models.TxTypeEntryFee, tournament.ID, desc)
			if err != nil {
				return err
			}
			entry.TransactionID = txn.ID
		}

		return tx.Create(&entry).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
	case errors.Is(err, errTournamentNotOpen), errors.Is(err, errTournamentEnded):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, errAlreadyEntered), errors.Is(err, errTournamentFull):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInsufficientBalance):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient coins for entry fee"})
	default:
		log.Printf("❌ Tournament entry failed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enter tournament"})
	}

	if err := s.Progression.RecordTournament(userID); err != nil {
		log.Printf("⚠️ Failed to record tournament entry for %s: %v", userID, err)
	}
	if err := s.Badges.AutoAwardBadges(userID); err != nil {
		log.Printf("⚠️ Badge check failed for %s: %v", userID, err)
	}

	log.Printf("🎟️ %s entered tournament %s (fee %d)", userID, tournament.Name, tournament.EntryFee)
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetMyEntries lists the user's tournament entries.
func (s *TournamentService) GetMyEntries(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var entries []models.TournamentEntry
	if err := s.DB.Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch entries"})
	}

	return c.JSON(entries)
}

// --- Leaderboard ---

// GetLeaderboard serves the standings from Redis when warm, falling back to
// Postgres on a cache miss.
func (s *TournamentService) GetLeaderboard(c *fiber.Ctx) error {
	id := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ? OR slug = ?", id, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
	}

	if cached, ok := s.Cache.Top(c.Context(), tournament.ID, 100); ok {
		rows := make([]models.LeaderboardEntry, 0, len(cached))
		for _, r := range cached {
			var row models.LeaderboardEntry
			if err := s.DB.Where("tournament_id = ? AND user_id = ?", tournament.ID, r.UserID).
				First(&row).Error; err != nil {
				continue
			}
			row.Rank = r.Rank
			rows = append(rows, row)
		}
		if len(rows) > 0 {
			return c.JSON(fiber.Map{"leaderboard": rows, "source": "cache"})
		}
	}

	rows, err := s.leaderboardFromDB(tournament.ID, 100)
	if err != nil {
		log.Printf("DB Error fetching leaderboard for %s: %v", tournament.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
	}

	// Warm the cache for the next poll
	scores := make(map[string]int64, len(rows))
	for _, r := range rows {
		scores[r.UserID] = r.Score
	}
	s.Cache.Rebuild(c.Context(), tournament.ID, scores)

	return c.JSON(fiber.Map{"leaderboard": rows, "source": "db"})
}

func (s *TournamentService) leaderboardFromDB(tournamentID string, limit int) ([]models.LeaderboardEntry, error) {
	var rows []models.LeaderboardEntry
	if err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("score DESC, submitted_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// --- Finalization ---

// FinalizeTournament closes a tournament: ranks every entrant, pays the top
// three from the prize pool, and mints demo USDC on the simulated chain
// (admin only).
func (s *TournamentService) FinalizeTournament(c *fiber.Ctx) error {
	id := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if tournament.FinalizedAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "tournament already finalized"})
	}

	standings, err := s.leaderboardFromDB(tournament.ID, 0x7fffffff)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute standings"})
	}

	type payout struct {
		UserID     string  `json:"user_id"`
		Rank       int     `json:"rank"`
		PrizeCoins int64   `json:"prize_coins"`
		ArcUSDC    float64 `json:"arc_usdc"`
		ArcTxHash  string  `json:"arc_tx_hash,omitempty"`
	}
	payouts := make([]payout, 0, len(standings))

	for _, row := range standings {
		p := payout{UserID: row.UserID, Rank: row.Rank}

		if row.Rank <= len(prizeSplit) {
			p.PrizeCoins = int64(float64(tournament.PrizePool) * prizeSplit[row.Rank-1])
			p.ArcUSDC = arcPrizeUSDC[row.Rank-1]
		}

		if p.PrizeCoins > 0 {
			desc := fmt.Sprintf("Tournament prize: %s (rank %d)", tournament.Name, row.Rank)
			if _, err := s.Wallet.Credit(row.UserID, p.PrizeCoins, models.TxTypeTournamentPrize, tournament.ID, desc); err != nil {
				log.Printf("❌ Prize payout failed for %s: %v", row.UserID, err)
			}
		}
		if p.ArcUSDC > 0 {
			memo := fmt.Sprintf("tournament:%s rank:%d", tournament.Slug, row.Rank)
			if arcTx, err := s.Arc.RewardUSDC(row.UserID, p.ArcUSDC, memo); err != nil {
				log.Printf("❌ Arc USDC reward failed for %s: %v", row.UserID, err)
			} else {
				p.ArcTxHash = arcTx.TxHash
			}
		}

		s.DB.Model(&models.TournamentEntry{}).
			Where("tournament_id = ? AND user_id = ?", tournament.ID, row.UserID).
			Updates(map[string]interface{}{
				"final_rank":  row.Rank,
				"prize_coins": p.PrizeCoins,
				"arc_usdc":    p.ArcUSDC,
				"arc_tx_hash": p.ArcTxHash,
				"status":      "completed",
			})

		if err := s.Badges.AutoAwardBadges(row.UserID); err != nil {
			log.Printf("⚠️ Badge check failed for %s: %v", row.UserID, err)
		}

		payouts = append(payouts, p)
	}

	now := time.Now()
	tournament.Status = models.TournamentStatusCompleted
	tournament.FinalizedAt = &now
	if err := s.DB.Save(&tournament).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to finalize tournament"})
	}

	s.Cache.Invalidate(c.Context(), tournament.ID)

	log.Printf("🏁 [TOURNAMENT] Finalized %s: %d entrants, pool %d coins", tournament.Name, len(standings), tournament.PrizePool)
	return c.JSON(fiber.Map{
		"tournament": tournament,
		"payouts":    payouts,
	})
}

// --- Public reads ---

// GetTournaments lists published/active/completed tournaments.
func (s *TournamentService) GetTournaments(c *fiber.Ctx) error {
	publicStatuses := []string{
		models.TournamentStatusPublished,
		models.TournamentStatusActive,
		models.TournamentStatusCompleted,
	}

	query := s.DB.Model(&models.Tournament{}).Where("status IN ?", publicStatuses)
	if status := c.Query("status"); status != "" {
		// the filter can only narrow the public set, never widen it
		query = query.Where("status = ?", status)
	}

	var minis []models.MiniTournament
	if err := query.Order("is_featured DESC, start_time DESC").Find(&minis).Error; err != nil {
		log.Printf("DB Error fetching tournaments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tournaments"})
	}

	return c.JSON(minis)
}

// GetTournamentByID returns one tournament (by id or slug) with entrant counts.
func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	id := c.Params("id")
	isAdmin, _ := c.Locals("is_admin").(bool)

	query := s.DB.Where("id = ? OR slug = ?", id, id)
	if !isAdmin {
		query = query.Where("status IN ?", []string{
			models.TournamentStatusPublished,
			models.TournamentStatusActive,
			models.TournamentStatusCompleted,
		})
	}

	var tournament models.Tournament
	if err := query.First(&tournament).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	s.DB.Model(&models.TournamentEntry{}).
		Where("tournament_id = ?", tournament.ID).
		Count(&tournament.EntrantsCount)
	if tournament.MaxEntrants > 0 {
		tournament.AvailableSlots = int64(tournament.MaxEntrants) - tournament.EntrantsCount
		if tournament.AvailableSlots < 0 {
			tournament.AvailableSlots = 0
		}
	}

	return c.JSON(tournament)
}

// GetAllTournaments lists every state for the admin console.
func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	if err := s.DB.Order("created_at DESC").Find(&tournaments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}
