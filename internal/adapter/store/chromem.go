package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"docqa/internal/domain"
)

const chromemMetaFile = "index_meta.json"

// ChromemStore backs the document store with an embedded chromem-go
// collection. Search quality follows chromem's own index, so the contract
// here is approximate top-k; the bolt backend is the exact one.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	opts       Options
	mu         sync.RWMutex
}

func NewChromemStore(opts Options) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(opts.Path, false)
	if err != nil {
		return nil, &domain.StoreError{Op: "open", Err: err}
	}

	metaPath := filepath.Join(opts.Path, chromemMetaFile)

	if opts.Recreate {
		if err := db.DeleteCollection(opts.Collection); err != nil {
			return nil, &domain.StoreError{Op: "recreate", Err: err}
		}
		if err := os.Remove(metaPath); err != nil && !os.IsNotExist(err) {
			return nil, &domain.StoreError{Op: "recreate", Err: err}
		}
	}

	// chromem never compares collection metadata on reuse, so the index
	// configuration is recorded in a sidecar file and checked here, the
	// same fail-fast the bolt backend gets from its meta bucket.
	if err := checkChromemMeta(metaPath, opts); err != nil {
		return nil, err
	}

	meta := map[string]string{
		"hnsw:space": opts.Metric,
		"dimension":  strconv.Itoa(opts.Dimension),
		"model":      opts.Model,
		"normalize":  strconv.FormatBool(opts.Normalize),
	}
	collection, err := db.GetOrCreateCollection(opts.Collection, meta, nil)
	if err != nil {
		return nil, &domain.StoreError{Op: "open", Err: err}
	}

	return &ChromemStore{db: db, collection: collection, opts: opts}, nil
}

func checkChromemMeta(metaPath string, opts Options) error {
	data, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		m := indexMeta{
			Collection: opts.Collection,
			Dimension:  opts.Dimension,
			Model:      opts.Model,
			Normalize:  opts.Normalize,
			Metric:     opts.Metric,
		}
		encoded, err := json.Marshal(m)
		if err != nil {
			return &domain.StoreError{Op: "open", Err: err}
		}
		if err := os.WriteFile(metaPath, encoded, 0644); err != nil {
			return &domain.StoreError{Op: "open", Err: err}
		}
		return nil
	}
	if err != nil {
		return &domain.StoreError{Op: "open", Err: err}
	}

	var m indexMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return &domain.StoreError{Op: "open", Err: fmt.Errorf("corrupt index metadata: %w", err)}
	}
	switch {
	case m.Dimension != opts.Dimension:
		return &domain.StoreError{
			Op:  "open",
			Err: fmt.Errorf("dimension mismatch: index has %d, configured %d", m.Dimension, opts.Dimension),
		}
	case m.Model != opts.Model:
		return &domain.StoreError{
			Op:  "open",
			Err: fmt.Errorf("model mismatch: index built with %q, configured %q", m.Model, opts.Model),
		}
	case m.Normalize != opts.Normalize:
		return &domain.StoreError{
			Op:  "open",
			Err: fmt.Errorf("normalization mismatch: index built with normalize=%v", m.Normalize),
		}
	case m.Metric != opts.Metric:
		return &domain.StoreError{
			Op:  "open",
			Err: fmt.Errorf("metric mismatch: index built with %q, configured %q", m.Metric, opts.Metric),
		}
	}
	return nil
}

func (s *ChromemStore) Write(ctx context.Context, records []domain.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	metadatas := make([]map[string]string, len(records))
	contents := make([]string, len(records))

	for i, rec := range records {
		if len(rec.Vector) != s.opts.Dimension {
			return 0, &domain.StoreError{
				Op:  "write",
				Err: fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.opts.Dimension, len(rec.Vector)),
			}
		}

		md := map[string]string{
			"document_id":   rec.Chunk.DocumentID,
			"sequence":      strconv.Itoa(rec.Chunk.Sequence),
			"word_start":    strconv.Itoa(rec.Chunk.WordStart),
			"word_end":      strconv.Itoa(rec.Chunk.WordEnd),
			"overlap_words": strconv.Itoa(rec.Chunk.OverlapWords),
		}
		for k, v := range rec.Metadata {
			md["doc."+k] = v
		}

		ids[i] = rec.Chunk.ID
		vectors[i] = rec.Vector
		metadatas[i] = md
		contents[i] = rec.Chunk.Content
	}

	if err := s.collection.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return 0, &domain.StoreError{Op: "write", Err: err}
	}
	return len(records), nil
}

func (s *ChromemStore) Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	if len(vector) != s.opts.Dimension {
		return nil, &domain.StoreError{
			Op:  "query",
			Err: fmt.Errorf("query dimension mismatch: expected %d, got %d", s.opts.Dimension, len(vector)),
		}
	}
	if topK <= 0 {
		return nil, &domain.StoreError{Op: "query", Err: fmt.Errorf("topK must be > 0, got %d", topK)}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem rejects nResults above the stored count; an under-supplied
	// store returns fewer results, never an error.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, &domain.StoreError{Op: "query", Err: err}
	}

	scored := make([]domain.ScoredChunk, 0, len(results))
	for _, res := range results {
		scored = append(scored, domain.ScoredChunk{
			Chunk:    chunkFromResult(res),
			Score:    float64(res.Similarity),
			Metadata: docMetadata(res.Metadata),
		})
	}
	return scored, nil
}

func (s *ChromemStore) Dimension() int { return s.opts.Dimension }

func (s *ChromemStore) ModelID() string { return s.opts.Model }

func (s *ChromemStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count(), nil
}

func (s *ChromemStore) Close() error {
	// chromem's persistent DB flushes on every write; nothing to release.
	return nil
}

func chunkFromResult(res chromem.Result) domain.Chunk {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(res.Metadata[key])
		return n
	}
	return domain.Chunk{
		ID:           res.ID,
		DocumentID:   res.Metadata["document_id"],
		Sequence:     atoi("sequence"),
		Content:      res.Content,
		WordStart:    atoi("word_start"),
		WordEnd:      atoi("word_end"),
		OverlapWords: atoi("overlap_words"),
	}
}

func docMetadata(md map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range md {
		if len(k) > 4 && k[:4] == "doc." {
			out[k[4:]] = v
		}
	}
	return out
}
