// services/groq_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// GroqClient wraps the Groq OpenAI-compatible API: chat completions for AI
// verse generation and Whisper for transcription.
type GroqClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	ChatModel       string
	TranscribeModel string
}

func NewGroqClient() *GroqClient {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Println("⚠️  GROQ_API_KEY not set — AI verse generation and transcription disabled")
	}

	baseURL := os.Getenv("GROQ_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	return &GroqClient{
		BaseURL:         baseURL,
		APIKey:          apiKey,
		ChatModel:       "llama-3.3-70b-versatile",
		TranscribeModel: "whisper-large-v3",
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether the client has credentials to make calls.
func (g *GroqClient) Enabled() bool {
	return g.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletion sends a system + user prompt pair and returns the first
// choice's content.
func (g *GroqClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	if !g.Enabled() {
		return "", fmt.Errorf("groq client not configured (GROQ_API_KEY missing)")
	}

	reqBody := map[string]interface{}{
		"model": g.ChatModel,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"temperature": 0.9,
		"max_tokens":  400,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		log.Printf("Groq /chat/completions returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("groq chat completion failed: %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}

// Transcribe sends an uploaded audio file to the Whisper endpoint and
// returns the transcript text.
func (g *GroqClient) Transcribe(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if !g.Enabled() {
		return "", fmt.Errorf("groq client not configured (GROQ_API_KEY missing)")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileHeader.Filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := writer.WriteField("model", g.TranscribeModel); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		log.Printf("Groq /audio/transcriptions returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("groq transcription failed: %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}

	return out.Text, nil
}
