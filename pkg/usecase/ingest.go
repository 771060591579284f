package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/service/chunker"
	"github.com/aethon-lab/mnemosyne/pkg/service/embedding"
	"github.com/aethon-lab/mnemosyne/pkg/service/parser"
	"github.com/aethon-lab/mnemosyne/pkg/utils/logging"
)

// IngestUseCase turns raw text and uploaded files into indexed,
// embedded chunks.
type IngestUseCase struct {
	index    interfaces.VectorIndex
	embedder *embedding.Service
	splitter *chunker.Splitter
}

// IngestResult reports what a single ingestion produced.
type IngestResult struct {
	DocumentID types.DocumentID `json:"document_id"`
	Chunks     int              `json:"chunks"`
}

// IndexStatus describes the vector index for the status endpoint.
type IndexStatus struct {
	Collection string `json:"collection"`
	Chunks     int    `json:"chunks"`
	Dimension  int    `json:"dimension"`
}

// IngestText chunks, embeds and indexes a single piece of text under
// a fresh document ID. Whitespace-only text yields a document with
// zero chunks, which is not an error.
func (uc *IngestUseCase) IngestText(ctx context.Context, text string, metadata map[string]any) (*IngestResult, error) {
	docID := types.NewDocumentID()
	count, err := uc.indexSegments(ctx, docID, []parser.Segment{{Text: text}}, metadata)
	if err != nil {
		return nil, err
	}
	return &IngestResult{DocumentID: docID, Chunks: count}, nil
}

// IngestFile parses the file according to its extension and indexes
// the extracted text. Page-aware formats carry page numbers into
// chunk metadata. Caller metadata is merged in; the source and
// filename keys always reflect the upload.
func (uc *IngestUseCase) IngestFile(ctx context.Context, filename string, data []byte, metadata map[string]any) (*IngestResult, error) {
	format, err := types.FormatFromPath(filename)
	if err != nil {
		return nil, err
	}

	segments, err := parser.Parse(format, data)
	if err != nil {
		return nil, err
	}

	docID := types.NewDocumentID()
	merged := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		merged[k] = v
	}
	merged[model.MetaSource] = filename
	merged[model.MetaFilename] = filename
	count, err := uc.indexSegments(ctx, docID, segments, merged)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("ingested file",
		"filename", filename,
		"format", string(format),
		"documentID", docID,
		"chunks", count,
	)

	return &IngestResult{DocumentID: docID, Chunks: count}, nil
}

// Status reports the current size of the vector index.
func (uc *IngestUseCase) Status(ctx context.Context) (*IndexStatus, error) {
	count, err := uc.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &IndexStatus{
		Collection: uc.index.Collection(),
		Chunks:     count,
		Dimension:  uc.embedder.Dimension(),
	}, nil
}

// indexSegments chunks each segment, embeds everything in one batch
// and appends the entries to the index in a single call so a search
// never sees a half-ingested document.
func (uc *IngestUseCase) indexSegments(ctx context.Context, docID types.DocumentID, segments []parser.Segment, metadata map[string]any) (int, error) {
	var chunks []model.Chunk
	for _, seg := range segments {
		for _, text := range uc.splitter.Split(seg.Text) {
			merged := make(map[string]any, len(metadata)+len(seg.Metadata))
			for k, v := range metadata {
				merged[k] = v
			}
			for k, v := range seg.Metadata {
				merged[k] = v
			}
			chunks = append(chunks, model.NewChunk(docID, text, merged))
		}
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to embed chunks", goerr.V("documentID", docID))
	}

	entries := make([]model.IndexEntry, len(chunks))
	for i := range chunks {
		entries[i] = model.IndexEntry{Vector: vectors[i], Chunk: chunks[i]}
	}
	if err := uc.index.Add(ctx, entries); err != nil {
		return 0, goerr.Wrap(err, "failed to index chunks", goerr.V("documentID", docID))
	}

	return len(chunks), nil
}
