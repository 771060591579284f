package interfaces

import "context"

// GenerateRequest carries one synchronous text generation call.
type GenerateRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// LLMClient defines the uniform contract of a language model backend.
// Both embedding and generation latency dominate request time, so
// implementations must honor context cancellation.
type LLMClient interface {
	// GenerateEmbedding embeds each input text into a vector of the
	// requested dimension, preserving input order.
	GenerateEmbedding(ctx context.Context, dimension int, texts []string) ([][]float64, error)

	// GenerateText produces a completion for the composed prompt.
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}
