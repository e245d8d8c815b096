package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts, one vector per input,
	// each of Dimension() length. Batch boundaries never affect the output:
	// each vector depends only on its own text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelID returns the identifier of the embedding model. The indexing
	// and query embedders must agree on it.
	ModelID() string

	// Normalized reports whether returned vectors are unit length.
	Normalized() bool
}
