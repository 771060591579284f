package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/usecase"
)

type chatRequest struct {
	Messages []model.Message `json:"messages"`
}

type chatSource struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type chatResponse struct {
	Answer  string       `json:"answer"`
	Sources []chatSource `json:"sources"`
}

// chatHandler answers a question grounded in the indexed content. The
// request carries the full message history; the last message must be
// from the user.
func chatHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "invalid request body", goerr.V("error", err.Error())))
			return
		}
		if len(req.Messages) == 0 {
			respondError(ctx, w, goerr.Wrap(types.ErrValidation, "messages are required"))
			return
		}

		question, history, err := model.PairMessages(req.Messages)
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		answer, err := uc.Chat.Answer(ctx, model.NewConversation(history), question)
		if err != nil {
			respondError(ctx, w, err)
			return
		}

		resp := chatResponse{
			Answer:  answer.Text,
			Sources: make([]chatSource, len(answer.Sources)),
		}
		for i, src := range answer.Sources {
			resp.Sources[i] = chatSource{
				Text:     src.Chunk.Text,
				Score:    src.Score,
				Metadata: src.Chunk.Metadata,
			}
		}

		respondJSON(ctx, w, http.StatusOK, resp)
	}
}
