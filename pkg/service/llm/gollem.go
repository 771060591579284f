// Package llm adapts language model backends to the uniform client
// contract used by the embedding service and the answer composer.
package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
)

// GollemClient adapts a gollem.LLMClient (e.g. Gemini) to the
// interfaces.LLMClient contract.
type GollemClient struct {
	client gollem.LLMClient
}

var _ interfaces.LLMClient = (*GollemClient)(nil)

// NewGollem wraps the given gollem client
func NewGollem(client gollem.LLMClient) (*GollemClient, error) {
	if client == nil {
		return nil, goerr.New("gollem client is required")
	}
	return &GollemClient{client: client}, nil
}

// GenerateEmbedding embeds the texts through the backing model
func (c *GollemClient) GenerateEmbedding(ctx context.Context, dimension int, texts []string) ([][]float64, error) {
	embeddings, err := c.client.GenerateEmbedding(ctx, dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(types.ErrModelUnavailable, "embedding request failed",
			goerr.V("cause", err.Error()))
	}
	return embeddings, nil
}

// GenerateText runs one synchronous completion in a fresh session.
// The backend controls sampling; the request temperature is advisory
// and not forwarded here.
func (c *GollemClient) GenerateText(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	var opts []gollem.SessionOption
	if req.System != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(req.System))
	}

	session, err := c.client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(types.ErrGenerationBackend, "failed to create LLM session",
			goerr.V("cause", err.Error()))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(req.Prompt))
	if err != nil {
		return "", goerr.Wrap(types.ErrGenerationBackend, "failed to generate content",
			goerr.V("cause", err.Error()))
	}
	if len(resp.Texts) == 0 {
		return "", goerr.Wrap(types.ErrGenerationBackend, "LLM returned no text")
	}

	return resp.Texts[0], nil
}
