// Package memory provides an in-memory repository backend for tests
// and local development. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/repository"
)

type Memory struct {
	project *projectRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		project: newProjectRepository(),
	}
}

func (m *Memory) Project() interfaces.ProjectRepository {
	return m.project
}

func (m *Memory) Close() error {
	return nil
}

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.Project
	order    map[types.ProjectID]int
	nextSeq  int
}

func newProjectRepository() *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.Project),
		order:    make(map[types.ProjectID]int),
	}
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, ok := r.projects[id]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "project not found", goerr.V("id", id))
	}
	return project.Clone(), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]*model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		projects = append(projects, p.Clone())
	}
	sort.Slice(projects, func(i, j int) bool {
		return r.order[projects[i].ID] < r.order[projects[j].ID]
	})
	return projects, nil
}

func (r *projectRepository) Upsert(ctx context.Context, project *model.Project) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := project.Clone()
	if existing, ok := r.projects[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
		r.order[stored.ID] = r.nextSeq
		r.nextSeq++
	}
	stored.UpdatedAt = now

	r.projects[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *projectRepository) Delete(ctx context.Context, id types.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return goerr.Wrap(repository.ErrNotFound, "project not found", goerr.V("id", id))
	}
	delete(r.projects, id)
	delete(r.order, id)
	return nil
}
