package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/service/worker"
)

type fakeProjectRepo struct {
	projects []*model.Project
}

func (r *fakeProjectRepo) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	return nil, nil
}

func (r *fakeProjectRepo) List(ctx context.Context) ([]*model.Project, error) {
	return r.projects, nil
}

func (r *fakeProjectRepo) Upsert(ctx context.Context, project *model.Project) (*model.Project, error) {
	return project, nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id types.ProjectID) error {
	return nil
}

type fakeRepo struct {
	project fakeProjectRepo
}

func (r *fakeRepo) Project() interfaces.ProjectRepository { return &r.project }
func (r *fakeRepo) Close() error                          { return nil }

type countingIndexer struct {
	mu    sync.Mutex
	seen  map[types.ProjectID]int
	calls int
}

func (i *countingIndexer) Reindex(ctx context.Context, project *model.Project) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.seen == nil {
		i.seen = make(map[types.ProjectID]int)
	}
	i.seen[project.ID]++
	i.calls++
	return nil
}

func (i *countingIndexer) total() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

func TestReindexCycle(t *testing.T) {
	repo := &fakeRepo{
		project: fakeProjectRepo{
			projects: []*model.Project{
				{ID: types.NewProjectID(), Name: "one"},
				{ID: types.NewProjectID(), Name: "two"},
			},
		},
	}
	indexer := &countingIndexer{}

	w := worker.NewProjectReindexWorker(repo, indexer, 10*time.Millisecond)
	gt.NoError(t, w.Start(context.Background())).Required()

	deadline := time.Now().Add(2 * time.Second)
	for indexer.total() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	gt.Bool(t, indexer.total() >= 2).True()
	indexer.mu.Lock()
	defer indexer.mu.Unlock()
	gt.Value(t, len(indexer.seen)).Equal(2)
}

func TestStopBeforeFirstCycle(t *testing.T) {
	repo := &fakeRepo{}
	indexer := &countingIndexer{}

	w := worker.NewProjectReindexWorker(repo, indexer, time.Hour)
	gt.NoError(t, w.Start(context.Background())).Required()
	w.Stop()

	gt.Value(t, indexer.total()).Equal(0)
}
