package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/repository"
)

type projectDocument struct {
	ID           string    `firestore:"id"`
	Name         string    `firestore:"name"`
	Description  string    `firestore:"description"`
	Status       string    `firestore:"status"`
	Technologies []string  `firestore:"technologies"`
	StartDate    string    `firestore:"start_date"`
	EndDate      string    `firestore:"end_date"`
	RepoURL      string    `firestore:"repo_url"`
	Notes        string    `firestore:"notes"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

type projectRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProjectRepository(client *firestore.Client) *projectRepository {
	return &projectRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *projectRepository) projectsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_projects"
	}
	return "projects"
}

func projectToDocument(project *model.Project) *projectDocument {
	return &projectDocument{
		ID:           string(project.ID),
		Name:         project.Name,
		Description:  project.Description,
		Status:       project.Status,
		Technologies: project.Technologies,
		StartDate:    project.StartDate,
		EndDate:      project.EndDate,
		RepoURL:      project.RepoURL,
		Notes:        project.Notes,
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

func projectToModel(doc *projectDocument) *model.Project {
	return &model.Project{
		ID:           types.ProjectID(doc.ID),
		Name:         doc.Name,
		Description:  doc.Description,
		Status:       doc.Status,
		Technologies: doc.Technologies,
		StartDate:    doc.StartDate,
		EndDate:      doc.EndDate,
		RepoURL:      doc.RepoURL,
		Notes:        doc.Notes,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	docRef := r.client.Collection(r.projectsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(repository.ErrNotFound, "project not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	var projDoc projectDocument
	if err := doc.DataTo(&projDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", id))
	}

	return projectToModel(&projDoc), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	iter := r.client.Collection(r.projectsCollection()).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var projects []*model.Project
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects")
		}

		var projDoc projectDocument
		if err := doc.DataTo(&projDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project")
		}

		projects = append(projects, projectToModel(&projDoc))
	}

	return projects, nil
}

func (r *projectRepository) Upsert(ctx context.Context, project *model.Project) (*model.Project, error) {
	docRef := r.client.Collection(r.projectsCollection()).Doc(string(project.ID))

	now := time.Now().UTC()
	stored := project.Clone()
	stored.UpdatedAt = now

	existing, err := docRef.Get(ctx)
	switch {
	case err == nil:
		var existingDoc projectDocument
		if err := existing.DataTo(&existingDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", project.ID))
		}
		stored.CreatedAt = existingDoc.CreatedAt
	case status.Code(err) == codes.NotFound:
		stored.CreatedAt = now
	default:
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", project.ID))
	}

	doc := projectToDocument(stored)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to upsert project", goerr.V("id", project.ID))
	}

	return projectToModel(doc), nil
}

func (r *projectRepository) Delete(ctx context.Context, id types.ProjectID) error {
	docRef := r.client.Collection(r.projectsCollection()).Doc(string(id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(repository.ErrNotFound, "project not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V("id", id))
	}

	return nil
}
