package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/service/retrieval"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// ProjectUseCase manages the project catalog and keeps the vector
// index in sync with it: every create and update re-ingests the
// project's textual rendering so chat answers reflect the catalog.
type ProjectUseCase struct {
	repo      interfaces.Repository
	ingest    *IngestUseCase
	retriever *retrieval.Retriever
}

func (uc *ProjectUseCase) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	if project.ID == "" {
		project.ID = types.NewProjectID()
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Project().Upsert(ctx, project)
	if err != nil {
		return nil, err
	}

	if err := uc.Reindex(ctx, created); err != nil {
		return nil, err
	}

	return created, nil
}

func (uc *ProjectUseCase) Update(ctx context.Context, project *model.Project) (*model.Project, error) {
	if project.ID == "" {
		return nil, goerr.Wrap(types.ErrValidation, "project id is required")
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	// Must exist: Update never creates.
	if _, err := uc.repo.Project().Get(ctx, project.ID); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Project().Upsert(ctx, project)
	if err != nil {
		return nil, err
	}

	if err := uc.Reindex(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

func (uc *ProjectUseCase) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	return uc.repo.Project().Get(ctx, id)
}

// List returns the catalog, optionally filtered by status. The status
// match is case-insensitive.
func (uc *ProjectUseCase) List(ctx context.Context, status string) ([]*model.Project, error) {
	projects, err := uc.repo.Project().List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return projects, nil
	}

	filtered := make([]*model.Project, 0, len(projects))
	for _, p := range projects {
		if strings.EqualFold(p.Status, status) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Delete removes the project from the catalog. Index entries produced
// by earlier ingestions are left behind; Search drops hits whose
// project no longer resolves.
func (uc *ProjectUseCase) Delete(ctx context.Context, id types.ProjectID) error {
	return uc.repo.Project().Delete(ctx, id)
}

// Search runs a semantic search restricted to project-sourced chunks
// and resolves the hits back to catalog entries, preserving score
// order and deduplicating projects reached through several chunks.
func (uc *ProjectUseCase) Search(ctx context.Context, query string, k int) ([]*model.Project, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(types.ErrValidation, "search query is required")
	}

	chunks, err := uc.retriever.Retrieve(ctx, query, k, model.MetadataFilter{
		model.MetaSource: model.SourceProject,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[types.ProjectID]bool)
	var projects []*model.Project
	for _, c := range chunks {
		raw, ok := c.Chunk.Metadata[model.MetaProjectID].(string)
		if !ok || raw == "" {
			continue
		}
		id := types.ProjectID(raw)
		if seen[id] {
			continue
		}
		seen[id] = true

		project, err := uc.repo.Project().Get(ctx, id)
		if err != nil {
			// Stale index entry for a deleted project.
			logging.From(ctx).Debug("skipping unresolvable project hit", "projectID", id)
			continue
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// Reindex ingests the project's current rendering into the vector
// index. Called on every create and update, and by the background
// reindex worker.
func (uc *ProjectUseCase) Reindex(ctx context.Context, project *model.Project) error {
	if _, err := uc.ingest.IngestText(ctx, project.Render(), project.RenderMetadata()); err != nil {
		return goerr.Wrap(err, "failed to index project", goerr.V("projectID", project.ID))
	}
	return nil
}
