package store

import (
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// Open constructs the configured store backend.
func Open(backend string, opts Options) (port.DocumentStore, error) {
	switch backend {
	case "bolt":
		return NewBoltStore(opts)
	case "chromem":
		return NewChromemStore(opts)
	default:
		return nil, &domain.StoreError{
			Op:  "open",
			Err: fmt.Errorf("unknown store backend: %q", backend),
		}
	}
}
