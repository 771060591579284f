// Package memory provides an in-memory vector index for development
// and tests.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
)

// Index stores entries in insertion order and scans them with cosine
// similarity. Searches observe a consistent snapshot; batch appends
// are atomic under the write lock.
type Index struct {
	mu         sync.RWMutex
	collection string
	entries    []model.IndexEntry
}

var _ interfaces.VectorIndex = (*Index)(nil)

// New creates an empty in-memory index
func New(collection string) *Index {
	return &Index{collection: collection}
}

// Add appends the batch to the index
func (x *Index) Add(ctx context.Context, entries []model.IndexEntry) error {
	copied := make([]model.IndexEntry, len(entries))
	for i, e := range entries {
		copied[i] = copyEntry(e)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = append(x.entries, copied...)
	return nil
}

// Search scans all entries and returns the top k by cosine similarity
func (x *Index) Search(ctx context.Context, vector []float32, k int, filter model.MetadataFilter) ([]model.ScoredChunk, error) {
	if k <= 0 {
		return []model.ScoredChunk{}, nil
	}
	if len(vector) == 0 {
		return nil, goerr.New("query vector is empty")
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]model.ScoredChunk, 0, len(x.entries))
	for _, e := range x.entries {
		if filter != nil && !filter.Match(e.Chunk.Metadata) {
			continue
		}
		results = append(results, model.ScoredChunk{
			Chunk: copyChunk(e.Chunk),
			Score: cosineSimilarity(vector, e.Vector),
		})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Count returns the number of stored entries
func (x *Index) Count(ctx context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Collection returns the collection name
func (x *Index) Collection() string {
	return x.collection
}

// Close is a no-op for the in-memory index
func (x *Index) Close() error {
	return nil
}

// copyEntry and copyChunk isolate stored state from callers on both
// the write and the read path.
func copyEntry(e model.IndexEntry) model.IndexEntry {
	copied := model.IndexEntry{
		Chunk: copyChunk(e.Chunk),
	}
	if e.Vector != nil {
		copied.Vector = make([]float32, len(e.Vector))
		copy(copied.Vector, e.Vector)
	}
	return copied
}

func copyChunk(c model.Chunk) model.Chunk {
	if c.Metadata == nil {
		return c
	}
	md := make(map[string]any, len(c.Metadata))
	for k, v := range c.Metadata {
		md[k] = v
	}
	c.Metadata = md
	return c
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
