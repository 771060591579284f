package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/aethon-lab/mnemosyne/pkg/index/memory"
)

func entry(docID, text string, vector []float32, metadata map[string]any) model.IndexEntry {
	return model.IndexEntry{
		Vector: vector,
		Chunk:  model.NewChunk(types.DocumentID(docID), text, metadata),
	}
}

func TestSearchOrdering(t *testing.T) {
	ctx := context.Background()
	idx := memory.New("test")

	gt.NoError(t, idx.Add(ctx, []model.IndexEntry{
		entry("doc-1", "orthogonal", []float32{0, 1, 0}, nil),
		entry("doc-1", "exact", []float32{1, 0, 0}, nil),
		entry("doc-1", "close", []float32{1, 0.2, 0}, nil),
	}))

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2)
	gt.Value(t, results[0].Chunk.Text).Equal("exact")
	gt.Value(t, results[1].Chunk.Text).Equal("close")
	gt.Bool(t, results[0].Score > results[1].Score).True()
}

func TestSearchStableTies(t *testing.T) {
	ctx := context.Background()
	idx := memory.New("test")

	// Identical vectors score identically; insertion order breaks ties.
	gt.NoError(t, idx.Add(ctx, []model.IndexEntry{
		entry("doc-1", "first", []float32{1, 1}, nil),
		entry("doc-1", "second", []float32{1, 1}, nil),
		entry("doc-1", "third", []float32{1, 1}, nil),
	}))

	results, err := idx.Search(ctx, []float32{1, 1}, 3, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(3)
	gt.Value(t, results[0].Chunk.Text).Equal("first")
	gt.Value(t, results[1].Chunk.Text).Equal("second")
	gt.Value(t, results[2].Chunk.Text).Equal("third")
}

func TestSearchMetadataFilter(t *testing.T) {
	ctx := context.Background()
	idx := memory.New("test")

	gt.NoError(t, idx.Add(ctx, []model.IndexEntry{
		entry("doc-1", "project chunk", []float32{1, 0}, map[string]any{
			model.MetaSource: model.SourceProject,
		}),
		entry("doc-2", "file chunk", []float32{1, 0}, map[string]any{
			model.MetaSource: "upload.txt",
		}),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 10, model.MetadataFilter{
		model.MetaSource: model.SourceProject,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(1)
	gt.Value(t, results[0].Chunk.Text).Equal("project chunk")
}

func TestSearchZeroK(t *testing.T) {
	ctx := context.Background()
	idx := memory.New("test")
	gt.NoError(t, idx.Add(ctx, []model.IndexEntry{
		entry("doc-1", "chunk", []float32{1, 0}, nil),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 0, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(0)
}

func TestSearchEmptyVector(t *testing.T) {
	idx := memory.New("test")
	_, err := idx.Search(context.Background(), nil, 5, nil)
	gt.Error(t, err)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	idx := memory.New("test")

	count, err := idx.Count(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(0)

	gt.NoError(t, idx.Add(ctx, []model.IndexEntry{
		entry("doc-1", "a", []float32{1}, nil),
		entry("doc-1", "b", []float32{1}, nil),
	}))

	count, err = idx.Count(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(2)
	gt.Value(t, idx.Collection()).Equal("test")
}

func TestAddCopiesEntries(t *testing.T) {
	ctx := context.Background()
	idx := memory.New("test")

	vector := []float32{1, 0}
	e := entry("doc-1", "chunk", vector, map[string]any{"k": "v"})
	gt.NoError(t, idx.Add(ctx, []model.IndexEntry{e}))

	// Mutating the caller's slices must not affect stored entries.
	vector[0] = 0
	e.Chunk.Metadata["k"] = "mutated"

	results, err := idx.Search(ctx, []float32{1, 0}, 1, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(1)
	gt.Value(t, results[0].Chunk.Metadata["k"]).Equal("v")
	gt.Bool(t, results[0].Score > 0.99).True()
}

func TestSearchCopiesMetadata(t *testing.T) {
	ctx := context.Background()
	idx := memory.New("test")

	gt.NoError(t, idx.Add(ctx, []model.IndexEntry{
		entry("doc-1", "chunk", []float32{1, 0}, map[string]any{"k": "v"}),
	}))

	first, err := idx.Search(ctx, []float32{1, 0}, 1, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, first).Length(1)

	// Mutating a returned result must not leak into stored entries.
	first[0].Chunk.Metadata["k"] = "mutated"

	second, err := idx.Search(ctx, []float32{1, 0}, 1, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, second).Length(1)
	gt.Value(t, second[0].Chunk.Metadata["k"]).Equal("v")
}
