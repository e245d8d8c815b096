package embedding

import "context"

// MockEmbedder produces deterministic vectors derived from the input text.
// Used in tests and offline runs; the same text always embeds to the same
// vector, so self-retrieval behaves like a real model's.
type MockEmbedder struct {
	dimension  int
	normalized bool
}

func NewMockEmbedder(dimension int, normalized bool) *MockEmbedder {
	return &MockEmbedder{dimension: dimension, normalized: normalized}
}

func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dimension)
		for j, r := range text {
			v[j%e.dimension] += float32(r) / 1000.0
		}
		if e.normalized {
			normalize(v)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (e *MockEmbedder) Dimension() int { return e.dimension }

func (e *MockEmbedder) ModelID() string { return "mock" }

func (e *MockEmbedder) Normalized() bool { return e.normalized }
