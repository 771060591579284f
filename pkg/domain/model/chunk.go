package model

import (
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/google/uuid"
)

// Metadata keys attached by the ingestion pipeline and the project
// usecase. Values are strings or numbers (JSON scalars).
const (
	MetaDocID         = "doc_id"
	MetaSource        = "source"
	MetaFilename      = "filename"
	MetaPage          = "page"
	MetaProjectID     = "project_id"
	MetaProjectName   = "project_name"
	MetaProjectStatus = "project_status"
)

// SourceProject marks chunks derived from a project record rendering.
const SourceProject = "project"

// Chunk is a bounded text fragment produced from a larger document.
// Chunks are immutable once created.
type Chunk struct {
	ID         string
	DocumentID types.DocumentID
	Text       string
	Metadata   map[string]any
}

// NewChunk creates a chunk with a fresh UUID and its own copy of the
// metadata map.
func NewChunk(docID types.DocumentID, text string, metadata map[string]any) Chunk {
	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	md[MetaDocID] = string(docID)
	return Chunk{
		ID:         uuid.New().String(),
		DocumentID: docID,
		Text:       text,
		Metadata:   md,
	}
}

// IndexEntry is one (vector, chunk) pair stored in a vector index.
type IndexEntry struct {
	Vector []float32
	Chunk  Chunk
}

// ScoredChunk is a retrieval result ordered by descending similarity.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// MetadataFilter is an equality predicate over chunk metadata: an
// entry matches when every key is present with an equal value.
type MetadataFilter map[string]any

// Match reports whether the given metadata satisfies the filter.
func (f MetadataFilter) Match(metadata map[string]any) bool {
	for k, want := range f {
		got, ok := metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
