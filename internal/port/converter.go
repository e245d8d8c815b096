package port

import (
	"context"

	"docqa/internal/domain"
)

// Source is a handle to a raw input: a file path or an in-memory byte
// stream, plus its declared media type. MediaType may be empty, in which
// case the converter infers it from the path extension.
type Source struct {
	Path      string
	Data      []byte
	MediaType string
}

// Converter extracts text from a source and produces one or more documents
// with provenance metadata. Multi-page sources keep their original page
// order in metadata.
type Converter interface {
	Convert(ctx context.Context, src Source) ([]domain.Document, error)
}

// Cleaner is a deterministic text-normalization transform over a document's
// content. Same document in, same document out. Cleaning always precedes
// splitting: chunk word offsets are computed against the cleaned text.
type Cleaner interface {
	Clean(doc domain.Document) domain.Document
}

// Splitter produces the ordered chunk sequence of a cleaned document.
type Splitter interface {
	Split(doc domain.Document) ([]domain.Chunk, error)
}
