package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"docqa/internal/domain"
)

var (
	bucketRecords = []byte("records")
	bucketMeta    = []byte("meta")
	keyMeta       = []byte("index_meta")
)

// Options configures a store backend. Dimension and Model are recorded in
// the index; reopening with different values fails fast instead of
// corrupting the index. Recreate wipes the index on open.
type Options struct {
	Path       string
	Collection string
	Dimension  int
	Model      string
	Normalize  bool
	Metric     string
	Recreate   bool
}

type indexMeta struct {
	Collection string `json:"collection"`
	Dimension  int    `json:"dimension"`
	Model      string `json:"model"`
	Normalize  bool   `json:"normalize"`
	Metric     string `json:"metric"`
}

type storedRecord struct {
	Chunk    domain.Chunk      `json:"chunk"`
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// BoltStore persists index records in bbolt, keyed by insertion sequence,
// with an in-memory copy for search. Search is exact brute force; record
// counts for a single corpus stay small enough that an ANN structure would
// buy nothing.
type BoltStore struct {
	db     *bbolt.DB
	opts   Options
	mu     sync.RWMutex
	cached []storedRecord // insertion order
}

// NewBoltStore opens (or creates) the index at opts.Path and verifies that
// its recorded dimension, model and metric match the configuration.
func NewBoltStore(opts Options) (*BoltStore, error) {
	db, err := bbolt.Open(opts.Path, 0600, nil)
	if err != nil {
		return nil, &domain.StoreError{Op: "open", Err: err}
	}

	s := &BoltStore{db: db, opts: opts}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *BoltStore) init() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if s.opts.Recreate {
			for _, b := range [][]byte{bucketRecords, bucketMeta} {
				if tx.Bucket(b) != nil {
					if err := tx.DeleteBucket(b); err != nil {
						return err
					}
				}
			}
		}
		for _, b := range [][]byte{bucketRecords, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		data := meta.Get(keyMeta)
		if data == nil {
			m := indexMeta{
				Collection: s.opts.Collection,
				Dimension:  s.opts.Dimension,
				Model:      s.opts.Model,
				Normalize:  s.opts.Normalize,
				Metric:     s.opts.Metric,
			}
			encoded, err := json.Marshal(m)
			if err != nil {
				return err
			}
			return meta.Put(keyMeta, encoded)
		}

		var m indexMeta
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("corrupt index metadata: %w", err)
		}
		if m.Dimension != s.opts.Dimension {
			return fmt.Errorf("dimension mismatch: index has %d, configured %d", m.Dimension, s.opts.Dimension)
		}
		if m.Model != s.opts.Model {
			return fmt.Errorf("model mismatch: index built with %q, configured %q", m.Model, s.opts.Model)
		}
		if m.Normalize != s.opts.Normalize {
			return fmt.Errorf("normalization mismatch: index built with normalize=%v", m.Normalize)
		}
		if m.Metric != s.opts.Metric {
			return fmt.Errorf("metric mismatch: index built with %q, configured %q", m.Metric, s.opts.Metric)
		}
		return nil
	})
	if err != nil {
		return &domain.StoreError{Op: "open", Err: err}
	}
	return nil
}

func (s *BoltStore) load() error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			var rec storedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %x: %w", k, err)
			}
			s.cached = append(s.cached, rec)
			return nil
		})
	})
	if err != nil {
		return &domain.StoreError{Op: "load", Err: err}
	}
	return nil
}

// Write persists records in one transaction. Either the whole batch becomes
// visible or, if the transaction fails, none of it: the in-memory copy is
// appended only after commit.
func (s *BoltStore) Write(ctx context.Context, records []domain.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]storedRecord, 0, len(records))
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		for _, rec := range records {
			if len(rec.Vector) != s.opts.Dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.opts.Dimension, len(rec.Vector))
			}

			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)

			sr := storedRecord{Chunk: rec.Chunk, Vector: rec.Vector, Metadata: rec.Metadata}
			data, err := json.Marshal(sr)
			if err != nil {
				return err
			}
			if err := b.Put(key, data); err != nil {
				return err
			}
			stored = append(stored, sr)
		}
		return nil
	})
	if err != nil {
		return 0, &domain.StoreError{Op: "write", Err: err}
	}

	s.cached = append(s.cached, stored...)
	return len(records), nil
}

// Query scores every record against the vector and returns the topK best,
// descending by score. The stable sort keeps insertion order for ties.
func (s *BoltStore) Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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

	results := rankRecords(s.cached, vector, topK, s.opts.Metric)
	return results, nil
}

func (s *BoltStore) Dimension() int { return s.opts.Dimension }

func (s *BoltStore) ModelID() string { return s.opts.Model }

func (s *BoltStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cached), nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
