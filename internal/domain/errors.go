package domain

import "fmt"

// ConversionError marks a source that could not be converted to documents.
// Fatal to that source; the indexing run may skip it and continue.
type ConversionError struct {
	Source string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed for %s: %v", e.Source, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// EmbeddingError marks an unreachable or misconfigured embedding provider.
// Fatal to the current pipeline run.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (model %s): %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError marks a document store failure: dimension mismatch, index
// corruption, capacity. Fatal.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// GenerationError marks a generation provider failure. Surfaced to the
// caller of Ask; never retried by the pipeline itself.
type GenerationError struct {
	Provider string
	Status   int
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation failed (%s, status %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// WiringError marks a stage contract mismatch detected at pipeline
// construction, before any I/O.
type WiringError struct {
	Stage  string
	Reason string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("pipeline wiring invalid at %s: %s", e.Stage, e.Reason)
}
