package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// AnthropicFactory builds per-call generators against the Anthropic
// messages API. The SDK client is constructed inside New, so each caller's
// credential lives only in its own generator.
type AnthropicFactory struct {
	cfg Config
}

func NewAnthropicFactory(cfg Config) *AnthropicFactory {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &AnthropicFactory{cfg: cfg}
}

func (f *AnthropicFactory) New(credential string) (port.Generator, error) {
	if !strings.HasPrefix(credential, "sk-ant-") {
		return nil, &domain.GenerationError{
			Provider: "anthropic",
			Err:      fmt.Errorf("credential is not an Anthropic API key (must start with sk-ant-)"),
		}
	}
	return &anthropicGenerator{cfg: f.cfg, credential: credential}, nil
}

type anthropicGenerator struct {
	cfg        Config
	credential string
}

func (g *anthropicGenerator) Generate(ctx context.Context, payload domain.PromptPayload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	client := anthropic.NewClient(option.WithAPIKey(g.credential))

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: int64(g.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(payload.Text)),
		},
	})
	if err != nil {
		return "", &domain.GenerationError{Provider: "anthropic", Err: err}
	}

	var reply strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	if reply.Len() == 0 {
		return "", &domain.GenerationError{Provider: "anthropic", Err: fmt.Errorf("no reply generated")}
	}

	return reply.String(), nil
}

func (g *anthropicGenerator) ModelID() string { return g.cfg.Model }
