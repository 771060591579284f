package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/index/memory"
	repomemory "github.com/aethon-lab/mnemosyne/pkg/repository/memory"
	"github.com/aethon-lab/mnemosyne/pkg/usecase"
)

// fakeLLM is a deterministic stand-in for the model backend. Texts
// embed to their byte histogram, so identical texts always score 1.0
// against each other and unrelated texts score lower.
type fakeLLM struct {
	generateFn   func(ctx context.Context, req interfaces.GenerateRequest) (string, error)
	lastGenerate *interfaces.GenerateRequest
}

var _ interfaces.LLMClient = (*fakeLLM)(nil)

func (f *fakeLLM) GenerateEmbedding(ctx context.Context, dimension int, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		v := make([]float64, dimension)
		for _, b := range []byte(text) {
			v[int(b)%dimension]++
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (f *fakeLLM) GenerateText(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
	f.lastGenerate = &req
	if f.generateFn != nil {
		return f.generateFn(ctx, req)
	}
	return "canned answer", nil
}

func newUseCases(t *testing.T, llm *fakeLLM) *usecase.UseCases {
	t.Helper()
	uc, err := usecase.New(repomemory.New(), memory.New("test"), llm, usecase.WithDimension(16))
	gt.NoError(t, err).Required()
	return uc
}

func TestIngestAndRetrieve(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{}
	uc := newUseCases(t, llm)

	texts := []string{
		"Go is a statically typed language designed at Google.",
		"SQLite is an embedded relational database engine.",
		"Kubernetes orchestrates containerized workloads.",
	}
	for _, text := range texts {
		result, err := uc.Ingest.IngestText(ctx, text, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Chunks).Equal(1)
		gt.Value(t, string(result.DocumentID)).NotEqual("")
	}

	status, err := uc.Ingest.Status(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, status.Chunks).Equal(3)
	gt.Value(t, status.Collection).Equal("test")
	gt.Value(t, status.Dimension).Equal(16)

	answer, err := uc.Chat.Answer(ctx, model.NewConversation(nil), texts[1])
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Text).Equal("canned answer")
	gt.Bool(t, len(answer.Sources) > 0).True()
	gt.Value(t, answer.Sources[0].Chunk.Text).Equal(texts[1])
}

func TestIngestEmptyText(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	result, err := uc.Ingest.IngestText(ctx, "   \n\t ", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Chunks).Equal(0)
	gt.Value(t, string(result.DocumentID)).NotEqual("")

	status, err := uc.Ingest.Status(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, status.Chunks).Equal(0)
}

func TestIngestFileUnsupportedFormat(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	_, err := uc.Ingest.IngestFile(ctx, "slides.pptx", []byte("data"), nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrUnsupportedFormat)).True()
}

func TestIngestTextFile(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	result, err := uc.Ingest.IngestFile(ctx, "notes.txt", []byte("Short note about nothing in particular."), nil)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Chunks).Equal(1)
}

func TestIngestFileMergesCallerMetadata(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	metadata := map[string]any{
		"category": "biography",
		// Upload keys always win over caller values.
		model.MetaSource: "spoofed",
	}
	result, err := uc.Ingest.IngestFile(ctx, "bio.txt", []byte("A short biography of the subject."), metadata)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Chunks).Equal(1)

	chunks, err := uc.Chat.Answer(ctx, model.NewConversation(nil), "biography of the subject")
	gt.NoError(t, err).Required()
	gt.Bool(t, len(chunks.Sources) > 0).True()
	md := chunks.Sources[0].Chunk.Metadata
	gt.Value(t, md["category"]).Equal("biography")
	gt.Value(t, md[model.MetaSource]).Equal("bio.txt")
	gt.Value(t, md[model.MetaFilename]).Equal("bio.txt")
}

func TestChatPromptContainsContextAndHistory(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{}
	uc := newUseCases(t, llm)

	_, err := uc.Ingest.IngestText(ctx, "The portfolio owner built a weather station in 2023.", nil)
	gt.NoError(t, err).Required()

	conv := model.NewConversation([]model.Turn{
		{Question: "Who are you?", Answer: "An assistant."},
	})

	answer, err := uc.Chat.Answer(ctx, conv, "What did they build?")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Text).Equal("canned answer")

	gt.Value(t, llm.lastGenerate).NotNil()
	gt.Bool(t, strings.Contains(llm.lastGenerate.Prompt, "weather station")).True()
	gt.Bool(t, strings.Contains(llm.lastGenerate.Prompt, "Who are you?")).True()
	gt.Bool(t, strings.Contains(llm.lastGenerate.Prompt, "What did they build?")).True()
	gt.Bool(t, strings.Contains(llm.lastGenerate.System, "the profile owner")).True()

	// Successful answers extend the conversation.
	turns := conv.Turns()
	gt.Array(t, turns).Length(2)
	gt.Value(t, turns[1].Question).Equal("What did they build?")
	gt.Value(t, turns[1].Answer).Equal("canned answer")
}

func TestChatEmptyQuestion(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	_, err := uc.Chat.Answer(ctx, model.NewConversation(nil), "  ")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
}

func TestChatGenerationFailureLeavesConversation(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{
		generateFn: func(ctx context.Context, req interfaces.GenerateRequest) (string, error) {
			return "", types.ErrGenerationBackend
		},
	}
	uc := newUseCases(t, llm)

	conv := model.NewConversation(nil)
	_, err := uc.Chat.Answer(ctx, conv, "Anything?")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrGenerationBackend)).True()
	gt.Array(t, conv.Turns()).Length(0)
}

func TestChatWithEmptyIndex(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{}
	uc := newUseCases(t, llm)

	answer, err := uc.Chat.Answer(ctx, model.NewConversation(nil), "Is anyone there?")
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Text).Equal("canned answer")
	gt.Array(t, answer.Sources).Length(0)
	gt.Bool(t, strings.Contains(llm.lastGenerate.Prompt, "Context:")).False()
}

func testProject(name string) *model.Project {
	return &model.Project{
		Name:         name,
		Description:  "A " + name + " project",
		Status:       "completed",
		Technologies: []string{"Go"},
		StartDate:    "2024-01",
	}
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	created, err := uc.Project.Create(ctx, testProject("weather-station"))
	gt.NoError(t, err).Required()
	gt.Value(t, string(created.ID)).NotEqual("")

	retrieved, err := uc.Project.Get(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, retrieved.Name).Equal("weather-station")

	// Creation ingests the rendered project into the index.
	status, err := uc.Ingest.Status(ctx)
	gt.NoError(t, err).Required()
	gt.Bool(t, status.Chunks > 0).True()

	updated := retrieved.Clone()
	updated.Description = "A rebuilt weather station with LoRa telemetry"
	result, err := uc.Project.Update(ctx, updated)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Description).Equal(updated.Description)

	listed, err := uc.Project.List(ctx, "")
	gt.NoError(t, err).Required()
	gt.Array(t, listed).Length(1)

	gt.NoError(t, uc.Project.Delete(ctx, created.ID))
	listed, err = uc.Project.List(ctx, "")
	gt.NoError(t, err).Required()
	gt.Array(t, listed).Length(0)
}

func TestProjectCreateValidation(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	invalid := testProject("no-status")
	invalid.Status = ""
	_, err := uc.Project.Create(ctx, invalid)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
}

func TestProjectUpdateMissing(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	ghost := testProject("ghost")
	ghost.ID = types.NewProjectID()
	_, err := uc.Project.Update(ctx, ghost)
	gt.Error(t, err)
}

func TestProjectListByStatus(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	done := testProject("done-thing")
	ongoing := testProject("ongoing-thing")
	ongoing.Status = "ongoing"

	_, err := uc.Project.Create(ctx, done)
	gt.NoError(t, err).Required()
	_, err = uc.Project.Create(ctx, ongoing)
	gt.NoError(t, err).Required()

	listed, err := uc.Project.List(ctx, "Ongoing")
	gt.NoError(t, err).Required()
	gt.Array(t, listed).Length(1)
	gt.Value(t, listed[0].Name).Equal("ongoing-thing")
}

func TestProjectSearch(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	created, err := uc.Project.Create(ctx, testProject("telemetry-dashboard"))
	gt.NoError(t, err).Required()

	// Non-project content must not surface in project search.
	_, err = uc.Ingest.IngestText(ctx, "telemetry-dashboard mentioned in a random note", nil)
	gt.NoError(t, err).Required()

	found, err := uc.Project.Search(ctx, "telemetry-dashboard", 5)
	gt.NoError(t, err).Required()
	gt.Array(t, found).Length(1)
	gt.Value(t, found[0].ID).Equal(created.ID)
}

func TestProjectSearchReflectsUpdate(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	created, err := uc.Project.Create(ctx, testProject("greenhouse"))
	gt.NoError(t, err).Required()

	updated := created.Clone()
	updated.Description = "Rewritten greenhouse automation with soil moisture sensors"
	_, err = uc.Project.Update(ctx, updated)
	gt.NoError(t, err).Required()

	// Search on the new description must return the current canonical
	// record, not the pre-update text.
	found, err := uc.Project.Search(ctx, "soil moisture sensors", 5)
	gt.NoError(t, err).Required()
	gt.Array(t, found).Length(1)
	gt.Value(t, found[0].ID).Equal(created.ID)
	gt.Value(t, found[0].Description).Equal(updated.Description)
}

func TestProjectSearchSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	created, err := uc.Project.Create(ctx, testProject("abandoned"))
	gt.NoError(t, err).Required()
	gt.NoError(t, uc.Project.Delete(ctx, created.ID))

	// Index entries are stale now; search must not fail or return
	// the deleted project.
	found, err := uc.Project.Search(ctx, "abandoned", 5)
	gt.NoError(t, err).Required()
	gt.Array(t, found).Length(0)
}

func TestProjectSearchEmptyQuery(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t, &fakeLLM{})

	_, err := uc.Project.Search(ctx, "   ", 5)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
}

func TestChatPersonaPromptOverride(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{}
	persona := model.Persona{
		Subject:     "Jordan",
		Description: "their open source work",
		Prompt:      "Answer as the agent of {{.Subject}}.",
	}
	uc, err := usecase.New(repomemory.New(), memory.New("test"), llm,
		usecase.WithDimension(16), usecase.WithPersona(persona))
	gt.NoError(t, err).Required()

	_, err = uc.Chat.Answer(ctx, model.NewConversation(nil), "hello")
	gt.NoError(t, err).Required()
	gt.Value(t, llm.lastGenerate.System).Equal("Answer as the agent of Jordan.")
}

func TestChatPersonaPromptInvalid(t *testing.T) {
	persona := model.Persona{
		Subject: "Jordan",
		Prompt:  "broken {{.Subject",
	}
	_, err := usecase.New(repomemory.New(), memory.New("test"), &fakeLLM{},
		usecase.WithPersona(persona))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
}
