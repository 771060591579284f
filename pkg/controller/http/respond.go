package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/repository"
	"github.com/aethon-lab/mnemosyne/pkg/utils/errutil"
	"github.com/aethon-lab/mnemosyne/pkg/utils/safe"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

// respondError maps domain sentinels to HTTP status codes. Anything
// unclassified is a 500.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, statusFromError(err))
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, types.ErrModelUnavailable), errors.Is(err, types.ErrGenerationBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
