package generator

import (
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// NewFactory returns the generator factory for the configured provider.
func NewFactory(provider string, cfg Config) (port.GeneratorFactory, error) {
	switch provider {
	case "openai":
		return NewOpenAIFactory(cfg), nil
	case "anthropic":
		return NewAnthropicFactory(cfg), nil
	default:
		return nil, &domain.WiringError{
			Stage:  "generator",
			Reason: fmt.Sprintf("unknown generation provider: %q", provider),
		}
	}
}
