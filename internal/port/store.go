package port

import (
	"context"

	"docqa/internal/domain"
)

// DocumentStore is the persistent index mapping chunk records to their
// embeddings. It is the sole mutator of records: writes happen during
// indexing, reads during retrieval.
type DocumentStore interface {
	// Write persists the records atomically: either every record in the call
	// becomes visible or none does. Returns the number written.
	Write(ctx context.Context, records []domain.Record) (int, error)

	// Query returns the topK records nearest to the vector under the store's
	// similarity metric, descending by score, ties broken by insertion
	// order. Fewer than topK stored records yields a shorter result, never
	// an error. Safe for concurrent readers.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored records.
	Count() (int, error)

	// Dimension returns the embedding dimension the index was built with.
	Dimension() int

	// ModelID returns the embedding model the index was built with.
	ModelID() string

	Close() error
}

// Retriever forwards an already-embedded query vector to the store and
// returns the result unchanged. No additional ranking.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error)
}
