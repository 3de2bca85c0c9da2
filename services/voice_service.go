// services/voice_service.go
package services

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rap-battle-platform/utils"
)

// Voice command intents.
const (
	IntentStartBattle     = "start_battle"
	IntentShowWallet      = "show_wallet"
	IntentShowLeaderboard = "show_leaderboard"
	IntentJoinTournament  = "join_tournament"
	IntentShowProgress    = "show_progress"
	IntentUnknown         = "unknown"
)

type VoiceService struct {
	DB   *gorm.DB
	Groq *GroqClient
}

func NewVoiceService(db *gorm.DB, groq *GroqClient) *VoiceService {
	return &VoiceService{DB: db, Groq: groq}
}

// ParseIntent maps a transcript to a navigation intent by keyword matching.
// Deliberately simple: the client falls back to manual navigation on
// "unknown", so a miss costs nothing.
func ParseIntent(transcript string) string {
	t := strings.ToLower(transcript)

	switch {
	case containsAny(t, "start a battle", "start battle", "new battle", "battle me", "let's battle", "lets battle"):
		return IntentStartBattle
	case containsAny(t, "wallet", "balance", "my coins", "how many coins"):
		return IntentShowWallet
	case containsAny(t, "leaderboard", "standings", "rankings", "who's winning", "whos winning"):
		return IntentShowLeaderboard
	case containsAny(t, "join tournament", "enter tournament", "join the tournament", "enter the tournament"):
		return IntentJoinTournament
	case containsAny(t, "progress", "my level", "my rank", "my badges", "my stats"):
		return IntentShowProgress
	default:
		return IntentUnknown
	}
}

func containsAny(s string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// HandleCommand transcribes an uploaded audio command and returns the parsed
// intent plus the raw transcript.
func (s *VoiceService) HandleCommand(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	audioFile, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "audio file is required"})
	}
	if !utils.IsAudioUpload(audioFile) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported audio format"})
	}
	if audioFile.Size > 10*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "audio too large (max 10MB)"})
	}

	if !s.Groq.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "voice commands are not configured"})
	}

	transcript, err := s.Groq.Transcribe(c.Context(), audioFile)
	if err != nil {
		log.Printf("❌ Voice transcription failed for %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "transcription failed"})
	}

	intent := ParseIntent(transcript)
	log.Printf("🎙️ [VOICE] %s: %q → %s", userID, transcript, intent)

	return c.JSON(fiber.Map{
		"transcript": transcript,
		"intent":     intent,
	})
}
