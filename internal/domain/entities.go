package domain

// Document is the immutable unit produced by conversion. Content is the
// extracted text; Metadata carries provenance such as source path and page
// number. Downstream stages read it, never mutate it.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Chunk is a contiguous slice of a cleaned document's content. Chunks from
// one document, ordered by Sequence, reconstruct the document's word
// sequence modulo the declared overlap.
type Chunk struct {
	ID           string
	DocumentID   string
	Sequence     int
	Content      string
	WordStart    int
	WordEnd      int
	OverlapWords int
}

// Record is the persisted unit: a chunk, its embedding vector and the parent
// document's metadata. The document store is its sole owner and mutator.
type Record struct {
	Chunk    Chunk
	Vector   []float32
	Metadata map[string]string
}

// ScoredChunk pairs a retrieved chunk with its similarity score. A retrieval
// result is a slice of these, descending by score.
type ScoredChunk struct {
	Chunk    Chunk
	Score    float64
	Metadata map[string]string
}

// Query is a single question plus the caller-supplied generation credential.
// It exists only for the duration of one query-pipeline invocation.
type Query struct {
	Question   string
	Credential string
}

// PromptPayload is the assembled generation request: the rendered prompt
// text plus the parts it was built from. Ephemeral, consumed immediately by
// the generator.
type PromptPayload struct {
	Question  string
	Documents []string
	Text      string
}
