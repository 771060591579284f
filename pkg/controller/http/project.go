package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/usecase"
)

type projectListResponse struct {
	Projects []*model.Project `json:"projects"`
}

func listProjectsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		projects, err := uc.Project.List(ctx, r.URL.Query().Get("status"))
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		if projects == nil {
			projects = []*model.Project{}
		}

		respondJSON(ctx, w, http.StatusOK, projectListResponse{Projects: projects})
	}
}

func createProjectHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var project model.Project
		if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "invalid request body", goerr.V("error", err.Error())))
			return
		}

		created, err := uc.Project.Create(ctx, &project)
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		respondJSON(ctx, w, http.StatusCreated, created)
	}
}

func getProjectHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		project, err := uc.Project.Get(ctx, types.ProjectID(chi.URLParam(r, "projectID")))
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		respondJSON(ctx, w, http.StatusOK, project)
	}
}

func updateProjectHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var project model.Project
		if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "invalid request body", goerr.V("error", err.Error())))
			return
		}
		// The path wins over any ID in the body.
		project.ID = types.ProjectID(chi.URLParam(r, "projectID"))

		updated, err := uc.Project.Update(ctx, &project)
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		respondJSON(ctx, w, http.StatusOK, updated)
	}
}

func deleteProjectHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := uc.Project.Delete(ctx, types.ProjectID(chi.URLParam(r, "projectID"))); err != nil {
			respondError(ctx, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func searchProjectsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		k := 0
		if raw := r.URL.Query().Get("k"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				respondError(ctx, w, goerr.Wrap(types.ErrValidation, "k must be an integer", goerr.V("k", raw)))
				return
			}
			k = parsed
		}

		projects, err := uc.Project.Search(ctx, r.URL.Query().Get("q"), k)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		if projects == nil {
			projects = []*model.Project{}
		}

		respondJSON(ctx, w, http.StatusOK, projectListResponse{Projects: projects})
	}
}
