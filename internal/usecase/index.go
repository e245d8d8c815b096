package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// Indexer runs the indexing pipeline: convert, clean, split, embed, write.
// It is a one-shot batch job; the only internal parallelism is the
// embedder's own batching. A source that fails conversion is skipped and
// recorded; embedding and store failures abort the run.
type Indexer struct {
	converter port.Converter
	cleaner   port.Cleaner
	splitter  port.Splitter
	embedder  port.Embedder
	store     port.DocumentStore

	// Progress is called after each source completes. Optional.
	Progress func(done, total int)
}

// NewIndexer wires the indexing stages and validates their contracts before
// any I/O happens.
func NewIndexer(
	converter port.Converter,
	cleaner port.Cleaner,
	splitter port.Splitter,
	embedder port.Embedder,
	store port.DocumentStore,
) (*Indexer, error) {
	if err := checkIndexWiring(converter, cleaner, splitter, embedder, store); err != nil {
		return nil, err
	}
	return &Indexer{
		converter: converter,
		cleaner:   cleaner,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
	}, nil
}

func checkIndexWiring(
	converter port.Converter,
	cleaner port.Cleaner,
	splitter port.Splitter,
	embedder port.Embedder,
	store port.DocumentStore,
) error {
	switch {
	case converter == nil:
		return &domain.WiringError{Stage: "converter", Reason: "no converter configured"}
	case cleaner == nil:
		return &domain.WiringError{Stage: "cleaner", Reason: "no cleaner configured"}
	case splitter == nil:
		return &domain.WiringError{Stage: "splitter", Reason: "no splitter configured"}
	case embedder == nil:
		return &domain.WiringError{Stage: "embedder", Reason: "no embedder configured"}
	case store == nil:
		return &domain.WiringError{Stage: "writer", Reason: "no document store configured"}
	}
	if embedder.Dimension() != store.Dimension() {
		return &domain.WiringError{
			Stage:  "writer",
			Reason: fmt.Sprintf("embedder dimension %d does not match store dimension %d", embedder.Dimension(), store.Dimension()),
		}
	}
	if embedder.ModelID() != store.ModelID() {
		return &domain.WiringError{
			Stage:  "writer",
			Reason: fmt.Sprintf("embedder model %q does not match store model %q", embedder.ModelID(), store.ModelID()),
		}
	}
	return nil
}

// IndexResult summarizes an indexing run. DocumentsWritten counts index
// records (chunks), matching what the store now holds for the run.
type IndexResult struct {
	RunID            string
	SourcesIndexed   int
	SourcesSkipped   int
	DocumentsWritten int
	Errors           []string
}

// Run indexes the given sources to completion.
func (ix *Indexer) Run(ctx context.Context, sources []port.Source) (*IndexResult, error) {
	result := &IndexResult{RunID: uuid.NewString()}

	log.Info().Str("run_id", result.RunID).Int("sources", len(sources)).Msg("indexing started")

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		written, err := ix.indexSource(ctx, src)
		if err != nil {
			var convErr *domain.ConversionError
			if errors.As(err, &convErr) {
				// Bad source, not a bad pipeline: skip and continue.
				result.SourcesSkipped++
				result.Errors = append(result.Errors, convErr.Error())
				log.Warn().Str("source", src.Path).Err(err).Msg("source skipped")
			} else {
				return nil, fmt.Errorf("indexing aborted at %s: %w", src.Path, err)
			}
		} else {
			result.SourcesIndexed++
			result.DocumentsWritten += written
		}

		if ix.Progress != nil {
			ix.Progress(i+1, len(sources))
		}
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("sources_indexed", result.SourcesIndexed).
		Int("sources_skipped", result.SourcesSkipped).
		Int("documents_written", result.DocumentsWritten).
		Msg("indexing finished")

	return result, nil
}

// indexSource runs one source through the full stage sequence. Cleaning
// must precede splitting: chunk word offsets are relative to cleaned text.
func (ix *Indexer) indexSource(ctx context.Context, src port.Source) (int, error) {
	docs, err := ix.converter.Convert(ctx, src)
	if err != nil {
		return 0, err
	}

	var chunks []domain.Chunk
	docMeta := make(map[string]map[string]string)

	for _, doc := range docs {
		cleaned := ix.cleaner.Clean(doc)
		split, err := ix.splitter.Split(cleaned)
		if err != nil {
			return 0, fmt.Errorf("split failed for %s: %w", doc.ID, err)
		}
		chunks = append(chunks, split...)
		docMeta[doc.ID] = doc.Metadata
	}

	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, &domain.EmbeddingError{
			Model: ix.embedder.ModelID(),
			Err:   fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors)),
		}
	}

	records := make([]domain.Record, len(chunks))
	for i, c := range chunks {
		records[i] = domain.Record{
			Chunk:    c,
			Vector:   vectors[i],
			Metadata: docMeta[c.DocumentID],
		}
	}

	return ix.store.Write(ctx, records)
}
