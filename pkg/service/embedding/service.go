// Package embedding maps chunk text onto fixed-dimensional vectors
// through the configured LLM backend.
package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
)

// DefaultDimension matches the reference embedding model
// (all-MiniLM-L6-v2 and its Ollama counterparts emit 384 dimensions).
const DefaultDimension = 384

// batchSize is the number of texts sent per backend call in EmbedBatch.
const batchSize = 16

// maxParallelBatches bounds concurrent backend calls within a batch.
const maxParallelBatches = 4

// Service embeds document and query text in the same vector space.
// The mapping is pure for a fixed model version.
type Service struct {
	client    interfaces.LLMClient
	dimension int
}

// Option configures the service
type Option func(*Service)

// WithDimension overrides the embedding dimension to match the model
func WithDimension(dimension int) Option {
	return func(s *Service) {
		if dimension > 0 {
			s.dimension = dimension
		}
	}
}

// New creates an embedding service over the given LLM client
func New(client interfaces.LLMClient, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}

	s := &Service{
		client:    client,
		dimension: DefaultDimension,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Dimension returns the vector dimension of the loaded model
func (s *Service) Dimension() int {
	return s.dimension
}

// Embed maps a single text onto its embedding vector
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts, preserving input order. Backend calls
// fan out over bounded parallel batches.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelBatches)
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		eg.Go(func() error {
			vectors, err := s.embed(ctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(results[start:end], vectors)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Service) embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := s.client.GenerateEmbedding(ctx, s.dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings", goerr.V("count", len(texts)))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(texts)), goerr.V("got", len(embeddings)))
	}

	vectors := make([][]float32, len(embeddings))
	for i, embedding := range embeddings {
		vector := make([]float32, len(embedding))
		for j, v := range embedding {
			vector[j] = float32(v)
		}
		vectors[i] = vector
	}
	return vectors, nil
}
