package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/service/retrieval"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

//go:embed prompt/chat_system.md
var chatSystemPromptTmpl string

//go:embed prompt/chat_user.md
var chatUserPromptTmpl string

var (
	chatSystemPrompt = template.Must(template.New("chat_system").Parse(chatSystemPromptTmpl))
	chatUserPrompt   = template.Must(template.New("chat_user").Parse(chatUserPromptTmpl))
)

// systemPromptTemplate returns the system prompt template for the
// persona, parsing the persona's override when one is set.
func systemPromptTemplate(persona model.Persona) (*template.Template, error) {
	if persona.Prompt == "" {
		return chatSystemPrompt, nil
	}
	tmpl, err := template.New("chat_system").Parse(persona.Prompt)
	if err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid persona prompt template",
			goerr.V("error", err.Error()))
	}
	return tmpl, nil
}

// ChatUseCase answers questions grounded in retrieved chunks.
type ChatUseCase struct {
	llm         interfaces.LLMClient
	retriever   *retrieval.Retriever
	persona     model.Persona
	systemTmpl  *template.Template
	temperature float64
	topK        int
}

// ChatAnswer is the generated answer plus the chunks that grounded it.
type ChatAnswer struct {
	Text    string
	Sources []model.ScoredChunk
}

type chatPromptData struct {
	Context  string
	History  string
	Question string
}

// Answer retrieves context for the question, builds the prompt and
// asks the generation backend. On success the turn is appended to the
// conversation. An empty retrieval result still produces an answer;
// the model is simply told nothing relevant was found.
func (uc *ChatUseCase) Answer(ctx context.Context, conv *model.Conversation, question string) (*ChatAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, goerr.Wrap(types.ErrValidation, "question is required")
	}

	chunks, err := uc.retriever.Retrieve(ctx, question, uc.topK, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve context")
	}

	logging.From(ctx).Debug("retrieved context for question",
		"chunks", len(chunks),
		"topK", uc.topK,
	)

	systemPrompt, err := renderTemplate(uc.systemTmpl, uc.persona)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render system prompt")
	}

	userPrompt, err := renderTemplate(chatUserPrompt, chatPromptData{
		Context:  formatContext(chunks),
		History:  conv.Format(),
		Question: question,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render user prompt")
	}

	answer, err := uc.llm.GenerateText(ctx, interfaces.GenerateRequest{
		System:      systemPrompt,
		Prompt:      userPrompt,
		Temperature: uc.temperature,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate answer")
	}

	conv.Append(question, answer)

	return &ChatAnswer{Text: answer, Sources: chunks}, nil
}

func formatContext(chunks []model.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Chunk.Text
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
