package store

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/domain"
)

func testChromemOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Path:       t.TempDir(),
		Collection: "documents",
		Dimension:  4,
		Model:      "bge-small-en-v1.5",
		Normalize:  true,
		Metric:     "cosine",
	}
}

func TestChromemWriteQueryRoundTrip(t *testing.T) {
	s, err := NewChromemStore(testChromemOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	rec := domain.Record{
		Chunk: domain.Chunk{
			ID:         "c1",
			DocumentID: "doc1",
			Sequence:   2,
			Content:    "indexed chunk text",
			WordStart:  16,
			WordEnd:    20,
		},
		Vector:   []float32{1, 0, 0, 0},
		Metadata: map[string]string{"source": "a.txt", "page": "1"},
	}
	if _, err := s.Write(ctx, []domain.Record{
		rec,
		{Chunk: domain.Chunk{ID: "c2", Content: "other"}, Vector: []float32{0, 1, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Query(ctx, []float32{1, 0, 0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Chunk.ID != "c1" {
		t.Fatalf("self retrieval failed: %+v", got)
	}

	// Chunk fields and document metadata survive the metadata encoding.
	c := got[0].Chunk
	if c.DocumentID != "doc1" || c.Sequence != 2 || c.WordStart != 16 || c.WordEnd != 20 {
		t.Errorf("chunk fields lost: %+v", c)
	}
	if c.Content != "indexed chunk text" {
		t.Errorf("content lost: %q", c.Content)
	}
	if got[0].Metadata["source"] != "a.txt" || got[0].Metadata["page"] != "1" {
		t.Errorf("document metadata lost: %v", got[0].Metadata)
	}
}

func TestChromemQueryUnderSupply(t *testing.T) {
	s, err := NewChromemStore(testChromemOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.Write(ctx, []domain.Record{
		{Chunk: domain.Chunk{ID: "a", Content: "a"}, Vector: []float32{1, 0, 0, 0}},
		{Chunk: domain.Chunk{ID: "b", Content: "b"}, Vector: []float32{0, 1, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Query(ctx, []float32{1, 0, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("topK above record count should return all records, got %d", len(got))
	}
}

func TestChromemQueryEmpty(t *testing.T) {
	s, err := NewChromemStore(testChromemOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, err := s.Query(context.Background(), []float32{1, 0, 0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("empty collection should return nothing, got %d", len(got))
	}
}

func TestChromemReopenMismatchFails(t *testing.T) {
	opts := testChromemOptions(t)

	s, err := NewChromemStore(opts)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := s.Write(ctx, []domain.Record{
		{Chunk: domain.Chunk{ID: "a", Content: "a"}, Vector: []float32{1, 0, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"dimension", func(o *Options) { o.Dimension = 8 }},
		{"model", func(o *Options) { o.Model = "all-MiniLM-L6-v2" }},
		{"normalize", func(o *Options) { o.Normalize = false }},
		{"metric", func(o *Options) { o.Metric = "dot" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := opts
			tt.mutate(&changed)
			if _, err := NewChromemStore(changed); err == nil {
				t.Error("expected mismatch error on reopen, got nil")
			} else {
				var serr *domain.StoreError
				if !errors.As(err, &serr) {
					t.Errorf("expected StoreError, got %T", err)
				}
			}
		})
	}

	// Matching options still reopen cleanly, and a mismatched write can
	// never reach the collection.
	s, err = NewChromemStore(opts)
	if err != nil {
		t.Fatalf("matching reopen should succeed: %v", err)
	}
	defer s.Close()
	if _, err := s.Write(ctx, []domain.Record{
		{Chunk: domain.Chunk{ID: "b", Content: "b"}, Vector: []float32{1, 0, 0, 0, 0, 0, 0, 0}},
	}); err == nil {
		t.Error("expected dimension error on write")
	}
	if got, err := s.Query(ctx, []float32{1, 0, 0, 0}, 1); err != nil || len(got) != 1 {
		t.Errorf("index unusable after rejected write: %v %v", got, err)
	}
}

func TestChromemRecreate(t *testing.T) {
	opts := testChromemOptions(t)

	s, err := NewChromemStore(opts)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := s.Write(ctx, []domain.Record{
		{Chunk: domain.Chunk{ID: "a", Content: "a"}, Vector: []float32{1, 0, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	recreate := opts
	recreate.Recreate = true
	s, err = NewChromemStore(recreate)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	count, _ := s.Count()
	if count != 0 {
		t.Errorf("recreate should start empty, got %d records", count)
	}

	// Recreate also clears a previous metadata mismatch.
	s.Close()
	changed := opts
	changed.Dimension = 8
	changed.Recreate = true
	s2, err := NewChromemStore(changed)
	if err != nil {
		t.Fatalf("recreate should accept new settings: %v", err)
	}
	s2.Close()
}

func TestOpenDispatch(t *testing.T) {
	opts := testChromemOptions(t)

	if _, err := Open("chromem", opts); err != nil {
		t.Errorf("chromem backend: %v", err)
	}

	boltOpts := testOptions(t)
	st, err := Open("bolt", boltOpts)
	if err != nil {
		t.Fatalf("bolt backend: %v", err)
	}
	st.Close()

	if _, err := Open("sqlite", opts); err == nil {
		t.Error("expected error for unknown backend")
	}
}
