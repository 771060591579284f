package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/service/llm"
	"github.com/aethon-lab/mnemosyne/pkg/service/llm/ollama"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// LLM holds CLI flags for the model backend configuration
type LLM struct {
	backend string

	ollamaBaseURL    string
	ollamaModel      string
	ollamaEmbedModel string
	ollamaTimeout    time.Duration

	geminiProject  string
	geminiLocation string
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-backend",
			Usage:       "LLM backend type (ollama or gemini)",
			Value:       "ollama",
			Sources:     cli.EnvVars("MNEMOSYNE_LLM_BACKEND"),
			Destination: &l.backend,
		},
		&cli.StringFlag{
			Name:        "ollama-base-url",
			Usage:       "Base URL of the Ollama server",
			Value:       "http://localhost:11434",
			Sources:     cli.EnvVars("MNEMOSYNE_OLLAMA_BASE_URL"),
			Destination: &l.ollamaBaseURL,
		},
		&cli.StringFlag{
			Name:        "ollama-model",
			Usage:       "Ollama model used for answer generation",
			Value:       "mistral",
			Sources:     cli.EnvVars("MNEMOSYNE_OLLAMA_MODEL"),
			Destination: &l.ollamaModel,
		},
		&cli.StringFlag{
			Name:        "ollama-embed-model",
			Usage:       "Ollama model used for embeddings",
			Value:       "all-minilm",
			Sources:     cli.EnvVars("MNEMOSYNE_OLLAMA_EMBED_MODEL"),
			Destination: &l.ollamaEmbedModel,
		},
		&cli.DurationFlag{
			Name:        "ollama-timeout",
			Usage:       "Request timeout for Ollama calls",
			Value:       120 * time.Second,
			Sources:     cli.EnvVars("MNEMOSYNE_OLLAMA_TIMEOUT"),
			Destination: &l.ollamaTimeout,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for the Gemini backend",
			Sources:     cli.EnvVars("MNEMOSYNE_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for the Gemini backend",
			Value:       "us-central1",
			Sources:     cli.EnvVars("MNEMOSYNE_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
	}
}

// LogAttrs returns log attributes for the LLM configuration
func (l *LLM) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("backend", l.backend)}
	switch l.backend {
	case "ollama":
		attrs = append(attrs,
			slog.String("base_url", l.ollamaBaseURL),
			slog.String("model", l.ollamaModel),
			slog.String("embed_model", l.ollamaEmbedModel),
		)
	case "gemini":
		attrs = append(attrs,
			slog.String("project", l.geminiProject),
			slog.String("location", l.geminiLocation),
		)
	}
	return attrs
}

// Configure creates the model client for the configured backend.
func (l *LLM) Configure(ctx context.Context) (interfaces.LLMClient, error) {
	switch l.backend {
	case "ollama":
		client := ollama.New(ollama.Config{
			BaseURL:    l.ollamaBaseURL,
			Model:      l.ollamaModel,
			EmbedModel: l.ollamaEmbedModel,
			Timeout:    l.ollamaTimeout,
		})

		// Startup check only: the server may come up later, so a
		// failed ping is a warning, not an error.
		if err := client.Ping(ctx); err != nil {
			logging.Default().Warn("Ollama server is not reachable yet",
				"base_url", l.ollamaBaseURL,
				"error", err.Error(),
			)
		}
		return client, nil

	case "gemini":
		if l.geminiProject == "" {
			return nil, goerr.New("gemini-project is required when using gemini backend")
		}
		base, err := gemini.New(ctx, l.geminiProject, l.geminiLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return llm.NewGollem(base)

	default:
		return nil, goerr.New("invalid LLM backend", goerr.V("backend", l.backend))
	}
}
