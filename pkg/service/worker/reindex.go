// Package worker holds background loops that run alongside the HTTP
// server.
package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// ProjectIndexer re-ingests one project into the vector index.
type ProjectIndexer interface {
	Reindex(ctx context.Context, project *model.Project) error
}

// ProjectReindexWorker periodically re-ingests the whole project
// catalog so the index reflects edits made outside this process, e.g.
// directly in Firestore.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type ProjectReindexWorker struct {
	repo     interfaces.Repository
	indexer  ProjectIndexer
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewProjectReindexWorker creates a new worker for refreshing the
// project index
func NewProjectReindexWorker(repo interfaces.Repository, indexer ProjectIndexer, interval time.Duration) *ProjectReindexWorker {
	return &ProjectReindexWorker{
		repo:     repo,
		indexer:  indexer,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. It does not block server
// startup; the first cycle runs after one full interval so restarts
// do not re-embed the catalog every time.
func (w *ProjectReindexWorker) Start(ctx context.Context) error {
	logging.Default().Info("Project reindex worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ProjectReindexWorker) Stop() {
	logging.Default().Info("Project reindex worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Project reindex worker stopped")
}

func (w *ProjectReindexWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Project reindex failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Project reindex worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Project reindex worker context cancelled")
			return
		}
	}
}

// refresh performs a single reindex cycle over the full catalog. A
// failing project is skipped so one bad record cannot starve the rest.
func (w *ProjectReindexWorker) refresh(ctx context.Context) error {
	startTime := time.Now()
	logging.Default().Info("Starting project reindex")

	projects, err := w.repo.Project().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list projects")
	}

	var failed int
	for _, project := range projects {
		if err := w.indexer.Reindex(ctx, project); err != nil {
			failed++
			logging.Default().Error("failed to reindex project",
				"projectID", project.ID,
				"error", err.Error())
		}
	}

	logging.Default().Info("Project reindex completed",
		"count", len(projects),
		"failed", failed,
		"duration", time.Since(startTime).String())

	return nil
}
