package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// Config configures a generation provider. The credential is deliberately
// absent: it arrives per call through the factory.
type Config struct {
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIFactory builds per-call generators against an OpenAI-compatible
// chat completions endpoint. Every Ask gets its own generator bound to its
// own credential; nothing is cached across callers.
type OpenAIFactory struct {
	cfg Config
}

func NewOpenAIFactory(cfg Config) *OpenAIFactory {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIFactory{cfg: cfg}
}

// New validates the credential shape without any network traffic and
// returns a generator holding a fresh client.
func (f *OpenAIFactory) New(credential string) (port.Generator, error) {
	if !strings.HasPrefix(credential, "sk-") {
		return nil, &domain.GenerationError{
			Provider: "openai",
			Err:      fmt.Errorf("credential is not an OpenAI API key (must start with sk-)"),
		}
	}
	return &openAIGenerator{
		cfg:        f.cfg,
		credential: credential,
		client:     &http.Client{Timeout: f.cfg.Timeout},
	}, nil
}

type openAIGenerator struct {
	cfg        Config
	credential string
	client     *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the assembled prompt and returns the first reply's text.
func (g *openAIGenerator) Generate(ctx context.Context, payload domain.PromptPayload) (string, error) {
	reqBody := chatRequest{
		Model:     g.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: payload.Text}},
		MaxTokens: g.cfg.MaxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &domain.GenerationError{Provider: "openai", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", &domain.GenerationError{Provider: "openai", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.credential)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &domain.GenerationError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.GenerationError{Provider: "openai", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.GenerationError{
			Provider: "openai",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", statusReason(resp.StatusCode)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &domain.GenerationError{Provider: "openai", Err: fmt.Errorf("unparseable response: %w", err)}
	}
	if chatResp.Error != nil {
		return "", &domain.GenerationError{Provider: "openai", Err: fmt.Errorf("provider error: %s", chatResp.Error.Message)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.GenerationError{Provider: "openai", Err: fmt.Errorf("no reply generated")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) ModelID() string { return g.cfg.Model }

func statusReason(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "authentication failed"
	case status == http.StatusTooManyRequests:
		return "rate limited"
	case status >= 500:
		return "provider unavailable"
	default:
		return fmt.Sprintf("unexpected status %d", status)
	}
}
