// Package ollama provides an LLM backend client for a local Ollama
// server over its REST API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "mistral"
	DefaultEmbedModel = "all-minilm"
	DefaultTimeout    = 120 * time.Second
)

// Config holds configuration for the Ollama client.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the generation model (default: mistral).
	Model string

	// EmbedModel is the embedding model (default: all-minilm).
	EmbedModel string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// Client talks to one Ollama server for both embedding and generation.
type Client struct {
	client     *http.Client
	baseURL    string
	model      string
	embedModel string
}

var _ interfaces.LLMClient = (*Client)(nil)

// New creates an Ollama client
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// GenerateEmbedding embeds each text through /api/embeddings. Ollama
// has no batch endpoint, so texts are sent one call each. The model
// fixes the dimension; the requested dimension is validated against
// the response when positive.
func (c *Client) GenerateEmbedding(ctx context.Context, dimension int, texts []string) ([][]float64, error) {
	embeddings := make([][]float64, len(texts))
	for i, text := range texts {
		var resp embedResponse
		err := c.postJSON(ctx, "/api/embeddings", embedRequest{Model: c.embedModel, Prompt: text}, &resp)
		if err != nil {
			return nil, goerr.Wrap(types.ErrModelUnavailable, "ollama embedding request failed",
				goerr.V("model", c.embedModel), goerr.V("cause", err.Error()))
		}
		if dimension > 0 && len(resp.Embedding) != dimension {
			return nil, goerr.Wrap(types.ErrModelUnavailable, "embedding dimension mismatch",
				goerr.V("model", c.embedModel),
				goerr.V("want", dimension), goerr.V("got", len(resp.Embedding)))
		}
		embeddings[i] = resp.Embedding
	}
	return embeddings, nil
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// GenerateText runs one non-streaming completion via /api/generate.
func (c *Client) GenerateText(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	body := generateRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  false,
		Options: generateOptions{Temperature: req.Temperature},
	}

	var resp generateResponse
	if err := c.postJSON(ctx, "/api/generate", body, &resp); err != nil {
		return "", goerr.Wrap(types.ErrGenerationBackend, "ollama generate request failed",
			goerr.V("model", c.model), goerr.V("cause", err.Error()))
	}

	return resp.Response, nil
}

// Ping checks server reachability via /api/tags without running
// inference.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return goerr.Wrap(err, "failed to create ping request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return goerr.Wrap(types.ErrModelUnavailable, "ollama is not reachable",
			goerr.V("base_url", c.baseURL), goerr.V("cause", err.Error()))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return goerr.Wrap(types.ErrModelUnavailable, "ollama returned non-OK status",
			goerr.V("status", resp.StatusCode))
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("path", path))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("non-OK response",
			goerr.V("path", path), goerr.V("status", resp.StatusCode), goerr.V("body", string(raw)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
		}
	}
	return nil
}
