package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/service/chunker"
	"github.com/aethon-lab/mnemosyne/pkg/service/embedding"
	"github.com/aethon-lab/mnemosyne/pkg/service/retrieval"
	"github.com/aethon-lab/mnemosyne/pkg/usecase"
)

// Assistant holds CLI flags for retrieval and generation behavior,
// plus the optional persona file.
type Assistant struct {
	personaPath  string
	topK         int
	temperature  float64
	dimension    int
	chunkSize    int
	chunkOverlap int
}

// personaFile is the TOML shape of the persona configuration
type personaFile struct {
	Subject     string `toml:"subject"`
	Description string `toml:"description"`
	Prompt      string `toml:"prompt"`
}

// Flags returns CLI flags for assistant configuration
func (a *Assistant) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "persona-file",
			Usage:       "Path to a TOML persona file (subject, description, optional prompt override)",
			Sources:     cli.EnvVars("MNEMOSYNE_PERSONA_FILE"),
			Destination: &a.personaPath,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "Number of chunks retrieved per question",
			Value:       retrieval.DefaultTopK,
			Sources:     cli.EnvVars("MNEMOSYNE_TOP_K"),
			Destination: &a.topK,
		},
		&cli.FloatFlag{
			Name:        "temperature",
			Usage:       "Sampling temperature for answer generation",
			Value:       0.7,
			Sources:     cli.EnvVars("MNEMOSYNE_TEMPERATURE"),
			Destination: &a.temperature,
		},
		&cli.IntFlag{
			Name:        "embed-dimension",
			Usage:       "Dimension of embedding vectors",
			Value:       embedding.DefaultDimension,
			Sources:     cli.EnvVars("MNEMOSYNE_EMBED_DIMENSION"),
			Destination: &a.dimension,
		},
		&cli.IntFlag{
			Name:        "chunk-size",
			Usage:       "Maximum chunk size in bytes",
			Value:       chunker.DefaultChunkSize,
			Sources:     cli.EnvVars("MNEMOSYNE_CHUNK_SIZE"),
			Destination: &a.chunkSize,
		},
		&cli.IntFlag{
			Name:        "chunk-overlap",
			Usage:       "Overlap between consecutive chunks in bytes",
			Value:       chunker.DefaultOverlap,
			Sources:     cli.EnvVars("MNEMOSYNE_CHUNK_OVERLAP"),
			Destination: &a.chunkOverlap,
		},
	}
}

// Persona loads the persona file, falling back to the default
// persona when no path is configured.
func (a *Assistant) Persona() (model.Persona, error) {
	if a.personaPath == "" {
		return model.DefaultPersona(), nil
	}

	data, err := os.ReadFile(a.personaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Persona{}, goerr.Wrap(ErrConfigNotFound, "persona file not found", goerr.V("path", a.personaPath))
		}
		return model.Persona{}, goerr.Wrap(err, "failed to read persona file", goerr.V("path", a.personaPath))
	}

	var file personaFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return model.Persona{}, goerr.Wrap(ErrInvalidConfig, "failed to parse persona file",
			goerr.V("path", a.personaPath), goerr.V("error", err.Error()))
	}

	persona := model.Persona{
		Subject:     file.Subject,
		Description: file.Description,
		Prompt:      file.Prompt,
	}
	if err := persona.Validate(); err != nil {
		return model.Persona{}, goerr.Wrap(err, "persona validation failed", goerr.V("path", a.personaPath))
	}

	return persona, nil
}

// UseCaseOptions converts the assistant configuration into usecase
// options, including the loaded persona and a tuned splitter.
func (a *Assistant) UseCaseOptions() ([]usecase.Option, error) {
	persona, err := a.Persona()
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(a.chunkSize),
		chunker.WithOverlap(a.chunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	return []usecase.Option{
		usecase.WithPersona(persona),
		usecase.WithTopK(a.topK),
		usecase.WithTemperature(a.temperature),
		usecase.WithDimension(a.dimension),
		usecase.WithSplitter(splitter),
	}, nil
}
