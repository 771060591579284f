package interfaces

import (
	"context"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
)

// VectorIndex defines the interface for the durable vector store.
// Entries are append-only: there is no delete operation in the current
// design, so a removed project may leave stale renderings searchable.
// The shape does not preclude adding deletion later.
type VectorIndex interface {
	// Add appends entries as one atomic batch, durable on return
	Add(ctx context.Context, entries []model.IndexEntry) error

	// Search returns up to k entries ordered by descending cosine
	// similarity, ties broken by insertion order. A nil filter matches
	// everything; k <= 0 yields no results.
	Search(ctx context.Context, vector []float32, k int, filter model.MetadataFilter) ([]model.ScoredChunk, error)

	// Count returns the number of stored entries
	Count(ctx context.Context) (int, error)

	// Collection returns the collection name for status reporting
	Collection() string

	Close() error
}
