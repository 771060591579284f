// Package sqlite provides the durable vector index backend. One
// collection maps to one SQLite database file under the data
// directory; vectors are stored as little-endian float32 blobs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/aethon-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	chunk_id   TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	text       TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	vector     BLOB NOT NULL,
	dimension  INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_doc_id ON entries (doc_id);
`

// Index is the SQLite-backed vector index. Appends run in one
// transaction per batch; searches scan a read snapshot (WAL), so a
// search never observes a partially written batch.
type Index struct {
	db         *sql.DB
	collection string
}

var _ interfaces.VectorIndex = (*Index)(nil)

// New opens or creates the collection database under dir
func New(dir, collection string) (*Index, error) {
	if collection == "" {
		return nil, goerr.New("collection name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create index directory", goerr.V("dir", dir))
	}

	path := filepath.Join(dir, collection+".db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode=WAL&_pragma=synchronous=NORMAL")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open index database", goerr.V("path", path))
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping index database", goerr.V("path", path))
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create index schema", goerr.V("path", path))
	}

	return &Index{db: db, collection: collection}, nil
}

// Add appends the batch atomically, durable on return
func (x *Index) Add(ctx context.Context, entries []model.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (chunk_id, doc_id, text, metadata, vector, dimension, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return goerr.Wrap(err, "failed to prepare insert")
	}
	defer func() {
		_ = stmt.Close()
	}()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		metadata, err := json.Marshal(e.Chunk.Metadata)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal chunk metadata", goerr.V("chunk_id", e.Chunk.ID))
		}
		_, err = stmt.ExecContext(ctx,
			e.Chunk.ID, string(e.Chunk.DocumentID), e.Chunk.Text,
			string(metadata), vectorToBlob(e.Vector), len(e.Vector), now)
		if err != nil {
			return goerr.Wrap(err, "failed to insert entry", goerr.V("chunk_id", e.Chunk.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit batch")
	}
	return nil
}

// Search scans all entries ordered by insertion and returns the top k
func (x *Index) Search(ctx context.Context, vector []float32, k int, filter model.MetadataFilter) ([]model.ScoredChunk, error) {
	if k <= 0 {
		return []model.ScoredChunk{}, nil
	}
	if len(vector) == 0 {
		return nil, goerr.New("query vector is empty")
	}

	rows, err := x.db.QueryContext(ctx,
		"SELECT chunk_id, doc_id, text, metadata, vector FROM entries ORDER BY seq")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []model.ScoredChunk
	for rows.Next() {
		var chunkID, docID, text, rawMetadata string
		var blob []byte
		if err := rows.Scan(&chunkID, &docID, &text, &rawMetadata, &blob); err != nil {
			return nil, goerr.Wrap(err, "failed to scan entry")
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(rawMetadata), &metadata); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk metadata", goerr.V("chunk_id", chunkID))
		}
		if filter != nil && !filter.Match(metadata) {
			continue
		}

		results = append(results, model.ScoredChunk{
			Chunk: model.Chunk{
				ID:         chunkID,
				DocumentID: types.DocumentID(docID),
				Text:       text,
				Metadata:   metadata,
			},
			Score: cosineSimilarity(vector, blobToVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate entries")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	out := results[:k]
	if out == nil {
		out = []model.ScoredChunk{}
	}
	return out, nil
}

// Count returns the number of stored entries
func (x *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := x.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, goerr.Wrap(err, "failed to count entries")
	}
	return count, nil
}

// Collection returns the collection name
func (x *Index) Collection() string {
	return x.collection
}

// Close closes the database
func (x *Index) Close() error {
	return x.db.Close()
}

func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

func blobToVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
