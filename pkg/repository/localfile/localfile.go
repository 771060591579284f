// Package localfile provides a single-file JSON repository backend
// for self-hosted setups that do not want a cloud dependency. The
// whole data set is loaded at startup and rewritten on every change,
// which is fine for the catalog sizes this serves.
package localfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/repository"
)

type LocalFile struct {
	project *projectRepository
}

var _ interfaces.Repository = &LocalFile{}

// New loads the repository from path, creating an empty store when
// the file does not exist yet.
func New(path string) (*LocalFile, error) {
	project, err := newProjectRepository(path)
	if err != nil {
		return nil, err
	}
	return &LocalFile{project: project}, nil
}

func (f *LocalFile) Project() interfaces.ProjectRepository {
	return f.project
}

func (f *LocalFile) Close() error {
	return nil
}

type projectRecord struct {
	Seq     int            `json:"seq"`
	Project *model.Project `json:"project"`
}

type projectRepository struct {
	mu       sync.Mutex
	path     string
	projects map[types.ProjectID]*projectRecord
	nextSeq  int
}

func newProjectRepository(path string) (*projectRepository, error) {
	r := &projectRepository{
		path:     path,
		projects: make(map[types.ProjectID]*projectRecord),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *projectRepository) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to read project store", goerr.V("path", r.path))
	}
	if len(data) == 0 {
		return nil
	}

	var records []*projectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return goerr.Wrap(err, "failed to parse project store", goerr.V("path", r.path))
	}

	for _, rec := range records {
		if rec.Project == nil {
			continue
		}
		r.projects[rec.Project.ID] = rec
		if rec.Seq >= r.nextSeq {
			r.nextSeq = rec.Seq + 1
		}
	}
	return nil
}

// save writes the given record set through a temp file rename so a
// crash mid-write never leaves a truncated store behind.
func (r *projectRepository) save(records []*projectRecord) error {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal project store")
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write project store", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return goerr.Wrap(err, "failed to replace project store", goerr.V("path", r.path))
	}
	return nil
}

func (r *projectRepository) sorted() []*projectRecord {
	records := make([]*projectRecord, 0, len(r.projects))
	for _, rec := range r.projects {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	return records
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.projects[id]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "project not found", goerr.V("id", id))
	}
	return rec.Project.Clone(), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.sorted()
	projects := make([]*model.Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, rec.Project.Clone())
	}
	return projects, nil
}

func (r *projectRepository) Upsert(ctx context.Context, project *model.Project) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := project.Clone()
	rec := &projectRecord{Project: stored}
	existing, exists := r.projects[stored.ID]
	if exists {
		stored.CreatedAt = existing.Project.CreatedAt
		stored.UpdatedAt = now
		rec.Seq = existing.Seq
	} else {
		stored.CreatedAt = now
		stored.UpdatedAt = now
		rec.Seq = r.nextSeq
	}

	// Stage the change and persist before touching in-memory state,
	// so a failed save leaves memory and disk in agreement.
	staged := make([]*projectRecord, 0, len(r.projects)+1)
	for _, other := range r.projects {
		if other.Project.ID == stored.ID {
			continue
		}
		staged = append(staged, other)
	}
	staged = append(staged, rec)

	if err := r.save(staged); err != nil {
		return nil, err
	}

	r.projects[stored.ID] = rec
	if !exists {
		r.nextSeq++
	}
	return stored.Clone(), nil
}

func (r *projectRepository) Delete(ctx context.Context, id types.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return goerr.Wrap(repository.ErrNotFound, "project not found", goerr.V("id", id))
	}

	staged := make([]*projectRecord, 0, len(r.projects))
	for _, rec := range r.projects {
		if rec.Project.ID == id {
			continue
		}
		staged = append(staged, rec)
	}

	if err := r.save(staged); err != nil {
		return err
	}
	delete(r.projects, id)
	return nil
}
