package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aethon-lab/mnemosyne/pkg/cli/config"
	httpctrl "github.com/aethon-lab/mnemosyne/pkg/controller/http"
	"github.com/aethon-lab/mnemosyne/pkg/service/worker"
	"github.com/aethon-lab/mnemosyne/pkg/usecase"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var corsOrigins []string
	var reindexInterval time.Duration
	var repoCfg config.Repository
	var indexCfg config.Index
	var llmCfg config.LLM
	var assistantCfg config.Assistant

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MNEMOSYNE_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origins (repeatable)",
			Sources:     cli.EnvVars("MNEMOSYNE_CORS_ORIGINS"),
			Destination: &corsOrigins,
		},
		&cli.DurationFlag{
			Name:        "reindex-interval",
			Usage:       "Interval of the background project reindex (0 disables it)",
			Sources:     cli.EnvVars("MNEMOSYNE_REINDEX_INTERVAL"),
			Destination: &reindexInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, assistantCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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
			logging.Default().LogAttrs(ctx, slog.LevelInfo, "LLM backend configured", llmCfg.LogAttrs()...)

			ucOpts, err := assistantCfg.UseCaseOptions()
			if err != nil {
				return goerr.Wrap(err, "failed to configure assistant")
			}

			uc, err := usecase.New(repo, index, llmClient, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			var reindexWorker *worker.ProjectReindexWorker
			if reindexInterval > 0 {
				reindexWorker = worker.NewProjectReindexWorker(repo, uc.Project, reindexInterval)
				if err := reindexWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start project reindex worker")
				}
			}

			var httpOpts []httpctrl.Options
			if len(corsOrigins) > 0 {
				httpOpts = append(httpOpts, httpctrl.WithAllowedOrigins(corsOrigins))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if reindexWorker != nil {
					reindexWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
