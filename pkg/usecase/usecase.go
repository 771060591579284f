package usecase

import (
	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/service/chunker"
	"github.com/aethon-lab/mnemosyne/pkg/service/embedding"
	"github.com/aethon-lab/mnemosyne/pkg/service/retrieval"
)

type UseCases struct {
	repo        interfaces.Repository
	index       interfaces.VectorIndex
	llm         interfaces.LLMClient
	dimension   int
	persona     model.Persona
	temperature float64
	topK        int
	splitter    *chunker.Splitter

	Ingest  *IngestUseCase
	Chat    *ChatUseCase
	Project *ProjectUseCase
}

type Option func(*UseCases)

func WithDimension(dimension int) Option {
	return func(uc *UseCases) {
		uc.dimension = dimension
	}
}

func WithPersona(persona model.Persona) Option {
	return func(uc *UseCases) {
		uc.persona = persona
	}
}

func WithTemperature(temperature float64) Option {
	return func(uc *UseCases) {
		uc.temperature = temperature
	}
}

func WithTopK(k int) Option {
	return func(uc *UseCases) {
		uc.topK = k
	}
}

func WithSplitter(splitter *chunker.Splitter) Option {
	return func(uc *UseCases) {
		uc.splitter = splitter
	}
}

func New(repo interfaces.Repository, index interfaces.VectorIndex, llm interfaces.LLMClient, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:        repo,
		index:       index,
		llm:         llm,
		dimension:   embedding.DefaultDimension,
		persona:     model.DefaultPersona(),
		temperature: 0.7,
		topK:        retrieval.DefaultTopK,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.splitter == nil {
		splitter, err := chunker.New()
		if err != nil {
			return nil, err
		}
		uc.splitter = splitter
	}

	embedder, err := embedding.New(llm, embedding.WithDimension(uc.dimension))
	if err != nil {
		return nil, err
	}
	retriever, err := retrieval.New(embedder, index)
	if err != nil {
		return nil, err
	}

	uc.Ingest = &IngestUseCase{
		index:    index,
		embedder: embedder,
		splitter: uc.splitter,
	}
	systemTmpl, err := systemPromptTemplate(uc.persona)
	if err != nil {
		return nil, err
	}
	uc.Chat = &ChatUseCase{
		llm:         llm,
		retriever:   retriever,
		persona:     uc.persona,
		systemTmpl:  systemTmpl,
		temperature: uc.temperature,
		topK:        uc.topK,
	}
	uc.Project = &ProjectUseCase{
		repo:      repo,
		ingest:    uc.Ingest,
		retriever: retriever,
	}

	return uc, nil
}
