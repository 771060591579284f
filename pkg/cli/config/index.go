package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	indexmemory "github.com/aethon-lab/mnemosyne/pkg/index/memory"
	indexsqlite "github.com/aethon-lab/mnemosyne/pkg/index/sqlite"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// Index holds CLI flags for the vector index configuration
type Index struct {
	backend    string
	dataDir    string
	collection string
}

// Flags returns CLI flags for index configuration
func (i *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-backend",
			Usage:       "Vector index backend type (sqlite or memory)",
			Value:       "sqlite",
			Sources:     cli.EnvVars("MNEMOSYNE_INDEX_BACKEND"),
			Destination: &i.backend,
		},
		&cli.StringFlag{
			Name:        "index-data-dir",
			Usage:       "Directory holding the index database files",
			Value:       "data/index",
			Sources:     cli.EnvVars("MNEMOSYNE_INDEX_DATA_DIR"),
			Destination: &i.dataDir,
		},
		&cli.StringFlag{
			Name:        "index-collection",
			Usage:       "Collection name of the vector index",
			Value:       "assistant_docs",
			Sources:     cli.EnvVars("MNEMOSYNE_INDEX_COLLECTION"),
			Destination: &i.collection,
		},
	}
}

// Configure initializes and returns the vector index. The caller is
// responsible for calling Close() on the returned index.
func (i *Index) Configure() (interfaces.VectorIndex, error) {
	switch i.backend {
	case "sqlite":
		idx, err := indexsqlite.New(i.dataDir, i.collection)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite index")
		}
		logging.Default().Info("Using SQLite vector index",
			"data_dir", i.dataDir,
			"collection", i.collection,
		)
		return idx, nil

	case "memory":
		logging.Default().Info("Using in-memory vector index (development mode)", "collection", i.collection)
		return indexmemory.New(i.collection), nil

	default:
		return nil, goerr.New("invalid index backend", goerr.V("backend", i.backend))
	}
}
