package interfaces

import (
	"context"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
)

// ProjectRepository defines the interface for project record
// persistence. Upsert is atomic per record: the same ID overwrites.
type ProjectRepository interface {
	// Get retrieves a project record by ID
	Get(ctx context.Context, id types.ProjectID) (*model.Project, error)

	// List retrieves all project records in insertion order
	List(ctx context.Context) ([]*model.Project, error)

	// Upsert creates or replaces a project record by ID
	Upsert(ctx context.Context, project *model.Project) (*model.Project, error)

	// Delete removes a project record by ID
	Delete(ctx context.Context, id types.ProjectID) error
}
