package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/usecase"
	"github.com/aethon-lab/mnemosyne/pkg/utils/safe"
)

type embedTextRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// embedTextHandler ingests a raw text snippet into the index.
func embedTextHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req embedTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "invalid request body", goerr.V("error", err.Error())))
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "text is required"))
			return
		}

		metadata := req.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, ok := metadata[model.MetaSource]; !ok {
			metadata[model.MetaSource] = "api"
		}

		result, err := uc.Ingest.IngestText(ctx, req.Text, metadata)
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		respondJSON(ctx, w, http.StatusOK, result)
	}
}

// embedFileHandler ingests an uploaded file. The format is picked
// from the filename extension; an optional metadata form field
// carries a JSON object merged into every chunk's metadata.
func embedFileHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "invalid multipart form", goerr.V("error", err.Error())))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "file field is required"))
			return
		}
		defer safe.Close(ctx, file)

		var metadata map[string]any
		if raw := r.FormValue("metadata"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				respondError(ctx, w, goerr.Wrap(types.ErrValidation, "metadata must be a JSON object", goerr.V("error", err.Error())))
				return
			}
		}

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(ctx, w, goerr.Wrap(err, "failed to read upload", goerr.V("filename", header.Filename)))
			return
		}

		result, err := uc.Ingest.IngestFile(ctx, header.Filename, data, metadata)
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		respondJSON(ctx, w, http.StatusOK, result)
	}
}

// embedStatusHandler reports the index collection and chunk count.
func embedStatusHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status, err := uc.Ingest.Status(ctx)
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		respondJSON(ctx, w, http.StatusOK, status)
	}
}
