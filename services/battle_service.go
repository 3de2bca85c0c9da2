// services/battle_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rap-battle-platform/models"
	"rap-battle-platform/utils"
)

const (
	winnerCoinsBase  = 50
	loserCoins       = 10
	winXP            = 100
	lossXP           = 25
	maxVerseLen      = 4000
	staleBattleAfter = 24 * time.Hour
)

type BattleService struct {
	DB          *gorm.DB
	Groq        *GroqClient
	TTS         *ElevenLabsClient
	Wallet      *WalletService
	Progression *ProgressionService
	Badges      *BadgeService
	Clones      *CloneService
	Cache       *LeaderboardCache
}

func NewBattleService(db *gorm.DB, groq *GroqClient, tts *ElevenLabsClient, wallet *WalletService,
	progression *ProgressionService, badges *BadgeService, clones *CloneService, cache *LeaderboardCache) *BattleService {
	return &BattleService{
		DB:          db,
		Groq:        groq,
		TTS:         tts,
		Wallet:      wallet,
		Progression: progression,
		Badges:      badges,
		Clones:      clones,
		Cache:       cache,
	}
}

// DecideWinner compares summed overall scores. Returns "user", "opponent"
// or "draw".
func DecideWinner(userTotal, opponentTotal int64) string {
	switch {
	case userTotal > opponentTotal:
		return "user"
	case opponentTotal > userTotal:
		return "opponent"
	default:
		return "draw"
	}
}

// WinnerCoins computes the winner's coin award from their summed score.
func WinnerCoins(winnerTotal int64) int64 {
	return winnerCoinsBase + winnerTotal/2
}

// CreateBattle starts a battle against a character, a clone, or another user.
func (s *BattleService) CreateBattle(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		CharacterID    *string `json:"character_id"`
		CloneID        *string `json:"clone_id"`
		OpponentUserID *string `json:"opponent_user_id"`
		TournamentID   *string `json:"tournament_id"`
		Rounds         int     `json:"rounds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	opponents := 0
	for _, set := range []bool{req.CharacterID != nil, req.CloneID != nil, req.OpponentUserID != nil} {
		if set {
			opponents++
		}
	}
	if opponents != 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "exactly one of character_id, clone_id, opponent_user_id is required",
		})
	}

	if req.Rounds <= 0 {
		req.Rounds = 3
	}
	if req.Rounds > 10 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rounds cannot exceed 10"})
	}

	// Validate the opponent
	switch {
	case req.CharacterID != nil:
		var character models.Character
		if err := s.DB.Where("id = ? AND status = ?", *req.CharacterID, models.CharacterStatusPublished).
			First(&character).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Character not found or not published"})
		}
	case req.CloneID != nil:
		var clone models.Clone
		if err := s.DB.First(&clone, "id = ?", *req.CloneID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Clone not found"})
		}
		if clone.UserID == userID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot battle your own clone"})
		}
	case req.OpponentUserID != nil:
		if *req.OpponentUserID == userID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot battle yourself"})
		}
		var opponent models.User
		if err := s.DB.First(&opponent, "id = ?", *req.OpponentUserID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Opponent not found"})
		}
	}

	// Tournament battles need a live tournament and a paid entry
	if req.TournamentID != nil {
		var tournament models.Tournament
		if err := s.DB.First(&tournament, "id = ?", *req.TournamentID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
		}
		if tournament.Status != models.TournamentStatusPublished && tournament.Status != models.TournamentStatusActive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tournament is not open for battles"})
		}
		var entry models.TournamentEntry
		if err := s.DB.Where("tournament_id = ? AND user_id = ?", *req.TournamentID, userID).
			First(&entry).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "enter the tournament before battling"})
		}
		if tournament.CharacterID != nil && (req.CharacterID == nil || *req.CharacterID != *tournament.CharacterID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "this tournament requires battling its featured character"})
		}
	}

	battle := &models.Battle{
		ID:             uuid.NewString(),
		UserID:         userID,
		CharacterID:    req.CharacterID,
		CloneID:        req.CloneID,
		OpponentUserID: req.OpponentUserID,
		TournamentID:   req.TournamentID,
		Rounds:         req.Rounds,
		Status:         models.BattleStatusActive,
	}

	if err := s.DB.Create(battle).Error; err != nil {
		log.Printf("DB Error creating battle: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create battle"})
	}

	return c.Status(fiber.StatusCreated).JSON(battle)
}

// GetBattles lists the authenticated user's battles, newest first.
func (s *BattleService) GetBattles(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	query := s.DB.Where("user_id = ? OR opponent_user_id = ?", userID, userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var battles []models.Battle
	if err := query.Order("created_at DESC").Limit(50).Find(&battles).Error; err != nil {
		log.Printf("DB Error fetching battles for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch battles"})
	}

	return c.JSON(battles)
}

// GetBattleByID returns a battle with its verses.
func (s *BattleService) GetBattleByID(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	id := c.Params("id")

	var battle models.Battle
	if err := s.DB.Preload("Verses", func(db *gorm.DB) *gorm.DB {
		return db.Order("submitted_at ASC")
	}).First(&battle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Battle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if battle.UserID != userID && (battle.OpponentUserID == nil || *battle.OpponentUserID != userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your battle"})
	}

	return c.JSON(battle)
}

// SubmitVerse accepts a verse as JSON text or as a multipart audio upload
// (transcribed via Whisper), scores it, and — in AI battles — generates the
// opponent's reply verse.
func (s *BattleService) SubmitVerse(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	battleID := c.Params("id")

	var battle models.Battle
	if err := s.DB.First(&battle, "id = ?", battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Battle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if battle.Status != models.BattleStatusActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "battle is not active"})
	}

	// Which side is submitting?
	var author string
	switch {
	case battle.UserID == userID:
		author = models.VerseAuthorUser
	case battle.OpponentUserID != nil && *battle.OpponentUserID == userID:
		author = models.VerseAuthorOpponent
	default:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your battle"})
	}

	text, isTranscript, err := s.extractVerseText(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if strings.TrimSpace(text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "verse text is empty"})
	}
	if len(text) > maxVerseLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "verse too long"})
	}

	// Round limit per side
	var ownVerses int64
	s.DB.Model(&models.Verse{}).
		Where("battle_id = ? AND author = ?", battle.ID, author).
		Count(&ownVerses)
	if int(ownVerses) >= battle.Rounds {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "all your rounds are already submitted"})
	}

	score := AnalyzeVerse(text)
	verse := &models.Verse{
		ID:              uuid.NewString(),
		BattleID:        battle.ID,
		Author:          author,
		AuthorID:        &userID,
		Text:            text,
		Transcript:      isTranscript,
		RhymeScore:      score.Rhyme,
		FlowScore:       score.Flow,
		CreativityScore: score.Creativity,
		OverallScore:    score.Overall,
		Round:           int(ownVerses) + 1,
	}

	if err := s.DB.Create(verse).Error; err != nil {
		log.Printf("DB Error creating verse: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save verse"})
	}

	now := time.Now()
	s.DB.Model(&battle).Update("last_verse_at", &now)

	response := fiber.Map{"verse": verse}

	// AI battles: the character/clone answers the user's verse in-line
	if author == models.VerseAuthorUser && (battle.CharacterID != nil || battle.CloneID != nil) {
		reply, err := s.generateReplyVerse(c.Context(), &battle, text, int(ownVerses)+1)
		if err != nil {
			log.Printf("⚠️ AI reply generation failed for battle %s: %v", battle.ID, err)
		} else {
			response["reply"] = reply
		}
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// extractVerseText pulls the verse from JSON {"text": ...} or from an
// uploaded audio file (transcribed).
func (s *BattleService) extractVerseText(c *fiber.Ctx) (string, bool, error) {
	if audioFile, err := c.FormFile("audio"); err == nil {
		if !utils.IsAudioUpload(audioFile) {
			return "", false, errors.New("unsupported audio format")
		}
		if audioFile.Size > 25*1024*1024 { // Whisper limit
			return "", false, errors.New("audio too large (max 25MB)")
		}
		text, err := s.Groq.Transcribe(c.Context(), audioFile)
		if err != nil {
			return "", false, fmt.Errorf("transcription failed: %w", err)
		}
		return text, true, nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", false, errors.New("provide verse text or an audio file")
	}
	return req.Text, false, nil
}

// generateReplyVerse produces, scores and stores the AI opponent's verse,
// with a TTS rendering when a voice is configured.
func (s *BattleService) generateReplyVerse(ctx context.Context, battle *models.Battle, userVerse string, round int) (*models.Verse, error) {
	var persona, voiceID, author string
	var authorID string

	if battle.CharacterID != nil {
		var character models.Character
		if err := s.DB.First(&character, "id = ?", *battle.CharacterID).Error; err != nil {
			return nil, err
		}
		persona = fmt.Sprintf("You are %s, an AI rap battle character. %s Difficulty: %s.",
			character.Name, character.Persona, character.Difficulty)
		voiceID = character.VoiceID
		author = models.VerseAuthorCharacter
		authorID = character.ID
	} else {
		var clone models.Clone
		if err := s.DB.First(&clone, "id = ?", *battle.CloneID).Error; err != nil {
			return nil, err
		}
		persona = ClonePersona(&clone)
		author = models.VerseAuthorClone
		authorID = clone.ID
	}

	text := s.generateVerseText(ctx, persona, userVerse)
	score := AnalyzeVerse(text)

	verse := &models.Verse{
		ID:              uuid.NewString(),
		BattleID:        battle.ID,
		Author:          author,
		AuthorID:        &authorID,
		Text:            text,
		RhymeScore:      score.Rhyme,
		FlowScore:       score.Flow,
		CreativityScore: score.Creativity,
		OverallScore:    score.Overall,
		Round:           round,
	}

	// Best-effort TTS — the verse stands without audio
	if s.TTS != nil && s.TTS.Enabled() {
		if url, err := s.TTS.SynthesizeToURL(ctx, text, voiceID); err != nil {
			log.Printf("⚠️ TTS failed for battle %s: %v", battle.ID, err)
		} else {
			verse.AudioURL = url
		}
	}

	if err := s.DB.Create(verse).Error; err != nil {
		return nil, err
	}
	return verse, nil
}

func (s *BattleService) generateVerseText(ctx context.Context, persona, userVerse string) string {
	prompt := fmt.Sprintf(
		"Your opponent just dropped this verse:\n\n%s\n\nAnswer with a 4-8 line diss verse. Only output the verse, no commentary.",
		userVerse,
	)

	if s.Groq != nil && s.Groq.Enabled() {
		text, err := s.Groq.ChatCompletion(ctx, persona, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		log.Printf("⚠️ Groq verse generation failed, using fallback: %v", err)
	}

	return fallbackVerse()
}

// fallbackVerse keeps dev environments without a Groq key functional.
func fallbackVerse() string {
	return "You brought them weak bars, now you standing in the rain,\n" +
		"I recycle your whole flow and flush it down the drain,\n" +
		"Every line that you spit sounds exactly the same,\n" +
		"Step off my stage before you drown in the shame."
}

// battleSettlement is the computed outcome of a battle's verses.
type battleSettlement struct {
	UserTotal     int64
	OpponentTotal int64
	Outcome       string
	UserWon       bool
	Coins         int64
	XP            int64
}

// settleScores totals each side's verses and derives the winner and the
// owner's coin/XP awards.
func settleScores(verses []models.Verse) battleSettlement {
	var st battleSettlement
	for _, v := range verses {
		if v.Author == models.VerseAuthorUser {
			st.UserTotal += int64(v.OverallScore)
		} else {
			st.OpponentTotal += int64(v.OverallScore)
		}
	}

	st.Outcome = DecideWinner(st.UserTotal, st.OpponentTotal)
	st.UserWon = st.Outcome == "user"
	if st.UserWon {
		st.Coins = WinnerCoins(st.UserTotal)
		st.XP = winXP
	} else {
		st.Coins = loserCoins
		st.XP = lossXP
	}
	return st
}

// CompleteBattle settles an active battle: totals, winner, coin and XP
// awards, clone rebuilds and tournament leaderboard updates.
func (s *BattleService) CompleteBattle(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	battleID := c.Params("id")

	var battle models.Battle
	if err := s.DB.Preload("Verses").First(&battle, "id = ?", battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Battle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if battle.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the battle owner can complete it"})
	}
	if battle.Status != models.BattleStatusActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "battle already settled"})
	}
	if len(battle.Verses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no verses submitted"})
	}

	st := settleScores(battle.Verses)
	now := time.Now()

	battle.UserScore = st.UserTotal
	battle.OpponentScore = st.OpponentTotal
	battle.Status = models.BattleStatusCompleted
	battle.CompletedAt = &now
	if st.UserWon {
		battle.WinnerID = &battle.UserID
	} else if st.Outcome == "opponent" && battle.OpponentUserID != nil {
		battle.WinnerID = battle.OpponentUserID
	}
	battle.CoinsAwarded = st.Coins
	battle.XPEarned = st.XP

	// Conditional update: only the request that flips active→completed gets
	// to settle, so a concurrent complete can't double-pay.
	result := s.DB.Model(&models.Battle{}).
		Where("id = ? AND status = ?", battle.ID, models.BattleStatusActive).
		Updates(map[string]interface{}{
			"user_score":     st.UserTotal,
			"opponent_score": st.OpponentTotal,
			"status":         models.BattleStatusCompleted,
			"completed_at":   &now,
			"winner_id":      battle.WinnerID,
			"coins_awarded":  st.Coins,
			"xp_earned":      st.XP,
		})
	if result.Error != nil {
		log.Printf("DB Error completing battle %s: %v", battle.ID, result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete battle"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "battle already settled"})
	}

	s.settleRewards(c.Context(), &battle, st.UserWon, st.Coins, st.XP, st.UserTotal, st.OpponentTotal)

	return c.JSON(fiber.Map{
		"battle":  battle,
		"outcome": st.Outcome,
		"coins":   st.Coins,
		"xp":      st.XP,
	})
}

// settleRewards runs the post-completion side effects. Failures here are
// logged, not surfaced — the battle itself is already settled.
func (s *BattleService) settleRewards(ctx context.Context, battle *models.Battle, userWon bool, coins, xp, userTotal, opponentTotal int64) {
	desc := fmt.Sprintf("Battle reward (score %d vs %d)", userTotal, opponentTotal)
	if _, err := s.Wallet.Credit(battle.UserID, coins, models.TxTypeBattleReward, battle.ID, desc); err != nil {
		log.Printf("❌ Failed to credit battle reward for %s: %v", battle.UserID, err)
	}
	if _, err := s.Progression.AwardXP(battle.UserID, xp, "battle"); err != nil {
		log.Printf("❌ Failed to award XP for %s: %v", battle.UserID, err)
	}
	if err := s.Progression.RecordBattle(battle.UserID, userWon, battle.CloneID != nil); err != nil {
		log.Printf("❌ Failed to record battle for %s: %v", battle.UserID, err)
	}
	if err := s.Badges.AutoAwardBadges(battle.UserID); err != nil {
		log.Printf("❌ Badge check failed for %s: %v", battle.UserID, err)
	}
	if err := s.Clones.RebuildClone(battle.UserID); err != nil {
		log.Printf("❌ Clone rebuild failed for %s: %v", battle.UserID, err)
	}

	// PvP opponents get the mirror-image settlement
	if battle.OpponentUserID != nil {
		oppID := *battle.OpponentUserID
		oppWon := !userWon && battle.WinnerID != nil && *battle.WinnerID == oppID
		oppCoins := int64(loserCoins)
		oppXP := int64(lossXP)
		if oppWon {
			oppCoins = WinnerCoins(opponentTotal)
			oppXP = winXP
		}
		if _, err := s.Wallet.Credit(oppID, oppCoins, models.TxTypeBattleReward, battle.ID, desc); err != nil {
			log.Printf("❌ Failed to credit opponent reward for %s: %v", oppID, err)
		}
		if _, err := s.Progression.AwardXP(oppID, oppXP, "battle"); err != nil {
			log.Printf("❌ Failed to award opponent XP for %s: %v", oppID, err)
		}
		if err := s.Progression.RecordBattle(oppID, oppWon, false); err != nil {
			log.Printf("❌ Failed to record battle for opponent %s: %v", oppID, err)
		}
		if err := s.Clones.RebuildClone(oppID); err != nil {
			log.Printf("❌ Clone rebuild failed for opponent %s: %v", oppID, err)
		}
	}

	// Character / clone opponent stats
	if battle.CharacterID != nil {
		updates := map[string]interface{}{"total_battles": gorm.Expr("total_battles + 1")}
		if !userWon {
			updates["total_wins"] = gorm.Expr("total_wins + 1")
		}
		s.DB.Model(&models.Character{}).Where("id = ?", *battle.CharacterID).Updates(updates)
	}
	if battle.CloneID != nil {
		updates := map[string]interface{}{"total_battles": gorm.Expr("total_battles + 1")}
		if !userWon {
			updates["total_wins"] = gorm.Expr("total_wins + 1")
		}
		s.DB.Model(&models.Clone{}).Where("id = ?", *battle.CloneID).Updates(updates)
	}

	// Tournament standings: keep the user's best score
	if battle.TournamentID != nil {
		s.recordTournamentScore(ctx, *battle.TournamentID, battle.UserID, userTotal)
	}
}

func (s *BattleService) recordTournamentScore(ctx context.Context, tournamentID, userID string, score int64) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		log.Printf("❌ Failed to load user %s for leaderboard: %v", userID, err)
		return
	}

	displayName := user.StageName
	if displayName == "" {
		displayName = user.Username
	}

	entry := models.LeaderboardEntry{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		Username:     displayName,
		Score:        score,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tournament_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"score": gorm.Expr("GREATEST(leaderboard_entries.score, EXCLUDED.score)")}),
	}).Create(&entry).Error; err != nil {
		log.Printf("❌ Failed to upsert leaderboard entry: %v", err)
		return
	}

	s.DB.Model(&models.TournamentEntry{}).
		Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		Updates(map[string]interface{}{
			"battles_played": gorm.Expr("battles_played + 1"),
			"best_score":     gorm.Expr("GREATEST(best_score, ?)", score),
		})

	// Refresh the cached standings with whatever the row now holds
	var current models.LeaderboardEntry
	if err := s.DB.Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		First(&current).Error; err == nil {
		s.Cache.UpdateScore(ctx, tournamentID, userID, current.Score)
	}
}

// AbandonStaleBattles marks active battles with no verse activity for 24h
// as abandoned. Called from the scheduler.
func (s *BattleService) AbandonStaleBattles() {
	cutoff := time.Now().Add(-staleBattleAfter)

	result := s.DB.Model(&models.Battle{}).
		Where("status = ?", models.BattleStatusActive).
		Where("(last_verse_at IS NOT NULL AND last_verse_at < ?) OR (last_verse_at IS NULL AND created_at < ?)", cutoff, cutoff).
		Update("status", models.BattleStatusAbandoned)

	if result.Error != nil {
		log.Printf("[Scheduler] Failed to abandon stale battles: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("🧹 [Scheduler] Abandoned %d stale battle(s)", result.RowsAffected)
	}
}
