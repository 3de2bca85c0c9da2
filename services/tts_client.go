// services/tts_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"rap-battle-platform/utils"
)

// ElevenLabsClient wraps the ElevenLabs text-to-speech API. Generated audio
// is uploaded to R2 and served from the CDN.
type ElevenLabsClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	DefaultVoiceID string
}

func NewElevenLabsClient() *ElevenLabsClient {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		log.Println("⚠️  ELEVENLABS_API_KEY not set — AI verses will have no audio")
	}

	voiceID := os.Getenv("ELEVENLABS_DEFAULT_VOICE")
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM" // ElevenLabs stock voice
	}

	return &ElevenLabsClient{
		BaseURL:        "https://api.elevenlabs.io/v1",
		APIKey:         apiKey,
		DefaultVoiceID: voiceID,
		Client: &http.Client{
			Timeout: 60 * time.Second, // TTS renders can be slow
		},
	}
}

// Enabled reports whether TTS calls can be made.
func (e *ElevenLabsClient) Enabled() bool {
	return e.APIKey != ""
}

// Synthesize renders text to mp3 bytes with the given voice.
func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if !e.Enabled() {
		return nil, fmt.Errorf("elevenlabs client not configured (ELEVENLABS_API_KEY missing)")
	}
	if voiceID == "" {
		voiceID = e.DefaultVoiceID
	}

	reqBody := map[string]interface{}{
		"text":     text,
		"model_id": "eleven_turbo_v2_5",
		"voice_settings": map[string]float64{
			"stability":        0.45,
			"similarity_boost": 0.75,
		},
	}
	jsonData, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/text-to-speech/%s", e.BaseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("ElevenLabs TTS returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("elevenlabs tts failed: %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}
	return audio, nil
}

// SynthesizeToURL renders text and uploads the mp3 to R2, returning the
// public CDN URL. Best-effort callers can drop the URL on error.
func (e *ElevenLabsClient) SynthesizeToURL(ctx context.Context, text, voiceID string) (string, error) {
	audio, err := e.Synthesize(ctx, text, voiceID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("audio/verses/%s.mp3", uuid.NewString())
	url, err := utils.UploadBytesToR2(audio, key, "audio/mpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload verse audio: %w", err)
	}
	return url, nil
}
