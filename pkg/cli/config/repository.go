package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/repository/firestore"
	"github.com/aethon-lab/mnemosyne/pkg/repository/localfile"
	"github.com/aethon-lab/mnemosyne/pkg/repository/memory"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	filePath   string
	projectID  string
	databaseID string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (localfile, firestore or memory)",
			Value:       "localfile",
			Sources:     cli.EnvVars("MNEMOSYNE_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "repository-file",
			Usage:       "Path of the JSON store (localfile backend)",
			Value:       "data/projects.json",
			Sources:     cli.EnvVars("MNEMOSYNE_REPOSITORY_FILE"),
			Destination: &r.filePath,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("MNEMOSYNE_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("MNEMOSYNE_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
	}
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "localfile":
		repo, err := localfile.New(r.filePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize localfile repository")
		}
		logging.Default().Info("Using localfile repository", "path", r.filePath)
		return repo, nil

	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
