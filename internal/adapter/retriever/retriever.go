package retriever

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// StoreRetriever is thin orchestration over the store's query: it forwards
// the already-embedded vector and topK and returns the result unchanged.
// Re-ranking deliberately does not happen here.
type StoreRetriever struct {
	store port.DocumentStore
	topK  int
}

func New(store port.DocumentStore, topK int) (*StoreRetriever, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be > 0, got %d", topK)
	}
	return &StoreRetriever{store: store, topK: topK}, nil
}

func (r *StoreRetriever) Retrieve(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}
	return r.store.Query(ctx, vector, topK)
}
