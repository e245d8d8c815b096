package usecase

import (
	"time"

	"docqa/config"
	"docqa/internal/adapter/cleaner"
	"docqa/internal/adapter/converter"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/generator"
	"docqa/internal/adapter/retriever"
	"docqa/internal/adapter/splitter"
	"docqa/internal/adapter/store"
	"docqa/internal/domain"
	"docqa/internal/port"
	"docqa/internal/prompt"
)

// Factory builds pipeline orchestrators from explicit configuration. It
// replaces any notion of process-wide pipeline singletons: callers construct
// a factory, open a store, and get fresh orchestrators wired and validated.
// Both pipelines derive their embedder from the same EmbeddingConfig, so the
// indexing-time and query-time model and normalization settings cannot
// drift apart.
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) (*Factory, error) {
	if cfg == nil {
		return nil, &domain.WiringError{Stage: "factory", Reason: "no configuration supplied"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &domain.WiringError{Stage: "factory", Reason: err.Error()}
	}
	return &Factory{cfg: cfg}, nil
}

// OpenStore opens the configured store backend at the given path. recreate
// overrides the configured recreate flag when non-nil, so the CLI can force
// a clean rebuild for a single run.
func (f *Factory) OpenStore(path string, recreate *bool) (port.DocumentStore, error) {
	opts := store.Options{
		Path:       path,
		Collection: f.cfg.Store.Collection,
		Dimension:  f.cfg.Embedding.Dimension,
		Model:      f.cfg.Embedding.Model,
		Normalize:  f.cfg.Embedding.Normalize,
		Metric:     f.cfg.Store.Metric,
		Recreate:   f.cfg.Store.Recreate,
	}
	if recreate != nil {
		opts.Recreate = *recreate
	}
	return store.Open(f.cfg.Store.Backend, opts)
}

// embedder builds an embedding client for one side of the system. The
// prefix is the only per-side setting; model, dimension and normalization
// come from the shared config so indexing and querying cannot drift.
func (f *Factory) embedder(prefix string) (port.Embedder, error) {
	return embedding.NewClient(embedding.Config{
		BaseURL:   f.cfg.Embedding.BaseURL,
		APIKeyEnv: f.cfg.Embedding.APIKeyEnv,
		Model:     f.cfg.Embedding.Model,
		Dimension: f.cfg.Embedding.Dimension,
		BatchSize: f.cfg.Embedding.BatchSize,
		Normalize: f.cfg.Embedding.Normalize,
		Prefix:    prefix,
		Device:    f.cfg.Embedding.Device,
		Timeout:   time.Duration(f.cfg.Embedding.TimeoutS) * time.Second,
	})
}

// Indexer wires the indexing pipeline against an open store.
func (f *Factory) Indexer(st port.DocumentStore) (*Indexer, error) {
	emb, err := f.embedder(f.cfg.Embedding.DocumentPrefix)
	if err != nil {
		return nil, &domain.WiringError{Stage: "embedder", Reason: err.Error()}
	}

	split, err := splitter.New(f.cfg.Split.Unit, f.cfg.Split.ChunkSize, f.cfg.Split.Overlap)
	if err != nil {
		return nil, &domain.WiringError{Stage: "splitter", Reason: err.Error()}
	}

	cln := cleaner.New(
		f.cfg.Clean.RemoveEmptyLines,
		f.cfg.Clean.NormalizeWhitespace,
		f.cfg.Clean.CollapseRepeats,
	)

	return NewIndexer(converter.New(), cln, split, emb, st)
}

// Query wires the query pipeline against an open store.
func (f *Factory) Query(st port.DocumentStore) (*Query, error) {
	emb, err := f.embedder(f.cfg.Embedding.QueryPrefix)
	if err != nil {
		return nil, &domain.WiringError{Stage: "query_embedder", Reason: err.Error()}
	}
	if emb.Dimension() != st.Dimension() || emb.ModelID() != st.ModelID() {
		return nil, &domain.WiringError{
			Stage:  "query_embedder",
			Reason: "query embedder does not match the model the index was built with",
		}
	}

	ret, err := retriever.New(st, f.cfg.Retrieve.TopK)
	if err != nil {
		return nil, &domain.WiringError{Stage: "retriever", Reason: err.Error()}
	}

	asm, err := prompt.NewAssembler()
	if err != nil {
		return nil, &domain.WiringError{Stage: "prompt_assembler", Reason: err.Error()}
	}

	gens, err := generator.NewFactory(f.cfg.Generation.Provider, generator.Config{
		BaseURL:   f.cfg.Generation.BaseURL,
		Model:     f.cfg.Generation.Model,
		MaxTokens: f.cfg.Generation.MaxTokens,
		Timeout:   time.Duration(f.cfg.Generation.TimeoutS) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	return NewQuery(emb, ret, asm, gens, f.cfg.Retrieve.TopK)
}
