// Package retrieval performs top-k similarity search over the vector
// index for a free-text query.
package retrieval

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/service/embedding"
)

// DefaultTopK is the number of chunks retrieved when callers pass no
// explicit k.
const DefaultTopK = 5

// Retriever embeds a query and searches the index. Results keep the
// index's native ordering; no re-ranking is applied.
type Retriever struct {
	embedder *embedding.Service
	index    interfaces.VectorIndex
}

// New creates a retriever over the given embedder and index
func New(embedder *embedding.Service, index interfaces.VectorIndex) (*Retriever, error) {
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}
	if index == nil {
		return nil, goerr.New("vector index is required")
	}
	return &Retriever{embedder: embedder, index: index}, nil
}

// Retrieve returns up to k chunks ranked by similarity to the query.
// k <= 0 falls back to DefaultTopK.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, filter model.MetadataFilter) ([]model.ScoredChunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	results, err := r.index.Search(ctx, vector, k, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "vector search failed", goerr.V("k", k))
	}
	return results, nil
}
