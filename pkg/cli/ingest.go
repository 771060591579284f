package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aethon-lab/mnemosyne/pkg/cli/config"
	"github.com/aethon-lab/mnemosyne/pkg/usecase"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// cmdIngest indexes local files from the command line, using the same
// index and model configuration as the server.
func cmdIngest() *cli.Command {
	var repoCfg config.Repository
	var indexCfg config.Index
	var llmCfg config.LLM
	var assistantCfg config.Assistant

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, assistantCfg.Flags()...)

	return &cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Ingest local files into the vector index",
		ArgsUsage: "<file> [<file>...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one file argument is required")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			index, err := indexCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize vector index")
			}
			defer func() {
				if err := index.Close(); err != nil {
					logging.Default().Error("failed to close vector index", "error", err.Error())
				}
			}()

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM backend")
			}

			ucOpts, err := assistantCfg.UseCaseOptions()
			if err != nil {
				return goerr.Wrap(err, "failed to configure assistant")
			}

			uc, err := usecase.New(repo, index, llmClient, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			for _, path := range paths {
				data, err := os.ReadFile(path)
				if err != nil {
					return goerr.Wrap(err, "failed to read file", goerr.V("path", path))
				}

				result, err := uc.Ingest.IngestFile(ctx, path, data, nil)
				if err != nil {
					return goerr.Wrap(err, "failed to ingest file", goerr.V("path", path))
				}

				logging.Default().Info("ingested",
					"path", path,
					"document_id", result.DocumentID,
					"chunks", result.Chunks,
				)
			}

			return nil
		},
	}
}
