package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/repository"
	"github.com/aethon-lab/mnemosyne/pkg/repository/firestore"
	"github.com/aethon-lab/mnemosyne/pkg/repository/localfile"
	"github.com/aethon-lab/mnemosyne/pkg/repository/memory"
)

func newProject(name string) *model.Project {
	return &model.Project{
		ID:           types.NewProjectID(),
		Name:         name,
		Description:  "A test project",
		Status:       "completed",
		Technologies: []string{"Go", "SQLite"},
		StartDate:    "2024-01",
		EndDate:      "2024-06",
		RepoURL:      "https://github.com/example/" + name,
	}
}

func runProjectRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert creates project with timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		project := newProject("chatbot")
		created, err := repo.Project().Upsert(ctx, project)
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).Equal(project.ID)
		gt.Value(t, created.Name).Equal(project.Name)
		gt.Value(t, created.Description).Equal(project.Description)
		gt.Value(t, created.Technologies).Equal(project.Technologies)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
	})

	t.Run("Get retrieves existing project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Upsert(ctx, newProject("portfolio"))
		gt.NoError(t, err).Required()

		retrieved, err := repo.Project().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.Name).Equal("portfolio")
	})

	t.Run("Get returns ErrNotFound for missing project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Project().Get(ctx, types.NewProjectID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()
	})

	t.Run("Upsert with existing ID updates and keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Upsert(ctx, newProject("tracker"))
		gt.NoError(t, err).Required()

		updated := created.Clone()
		updated.Description = "Reworked description"
		updated.Status = "ongoing"

		result, err := repo.Project().Upsert(ctx, updated)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Description).Equal("Reworked description")
		gt.Value(t, result.Status).Equal("ongoing")
		gt.Value(t, result.CreatedAt.Unix()).Equal(created.CreatedAt.Unix())

		listed, err := repo.Project().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(1)
	})

	t.Run("List returns projects in insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Project().Upsert(ctx, newProject("first"))
		gt.NoError(t, err).Required()
		second, err := repo.Project().Upsert(ctx, newProject("second"))
		gt.NoError(t, err).Required()

		listed, err := repo.Project().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(2)
		gt.Value(t, listed[0].ID).Equal(first.ID)
		gt.Value(t, listed[1].ID).Equal(second.ID)
	})

	t.Run("Delete removes project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Upsert(ctx, newProject("to-delete"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Project().Delete(ctx, created.ID))

		_, err = repo.Project().Get(ctx, created.ID)
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()
	})

	t.Run("Delete returns ErrNotFound for missing project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Project().Delete(ctx, types.NewProjectID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMemoryProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestLocalFileProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := localfile.New(filepath.Join(t.TempDir(), "projects.json"))
		gt.NoError(t, err).Required()
		return repo
	})
}

func TestLocalFileProjectPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "projects.json")

	repo, err := localfile.New(path)
	gt.NoError(t, err).Required()

	created, err := repo.Project().Upsert(ctx, newProject("durable"))
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Close())

	reopened, err := localfile.New(path)
	gt.NoError(t, err).Required()

	retrieved, err := reopened.Project().Get(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, retrieved.Name).Equal("durable")
	gt.Value(t, retrieved.Technologies).Equal([]string{"Go", "SQLite"})
}

func TestLocalFileFailedSaveKeepsStateConsistent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "projects.json")

	repo, err := localfile.New(path)
	gt.NoError(t, err).Required()

	// A directory at the store path makes the rename in save fail.
	gt.NoError(t, os.Mkdir(path, 0o755)).Required()

	project := newProject("phantom")
	_, err = repo.Project().Upsert(ctx, project)
	gt.Error(t, err)

	// The failed write must not leave the record visible in memory.
	_, err = repo.Project().Get(ctx, project.ID)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, repository.ErrNotFound)).True()

	listed, err := repo.Project().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, listed).Length(0)
}

func TestFirestoreProjectRepository(t *testing.T) {
	runProjectRepositoryTest(t, newFirestoreRepository)
}
