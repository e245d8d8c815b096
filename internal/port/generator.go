package port

import (
	"context"

	"docqa/internal/domain"
)

// Generator calls an external generation provider and returns the text of
// its first reply. It holds no shared pipeline state and never touches the
// document store.
type Generator interface {
	Generate(ctx context.Context, payload domain.PromptPayload) (string, error)

	// ModelID returns the identifier of the generation model.
	ModelID() string
}

// GeneratorFactory builds a fresh generator bound to the supplied per-call
// credential. Implementations must construct a new provider client for each
// call; credentials from different callers are never mixed or cached. An
// obviously malformed credential fails fast, without a network call.
type GeneratorFactory interface {
	New(credential string) (Generator, error)
}
