// Package chunker splits raw text into overlapping fixed-size windows
// suitable for embedding.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultChunkSize is the default window size in characters.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of characters shared between
// consecutive chunks.
const DefaultOverlap = 200

// boundaryPatterns are tried in order when cutting a window: paragraph
// break, sentence end, line break, word break. Hard character cut is
// the fallback.
var boundaryPatterns = []string{"\n\n", ". ", ".\n", "! ", "? ", "\n", " "}

// Splitter produces overlapping chunks of text. Consecutive chunks
// share `overlap` bytes (a few less when the offset would tear a
// multibyte rune), so concatenating chunks while discarding each
// overlapping head reconstructs the input.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter
type Option func(*Splitter)

// WithChunkSize sets the window size in characters
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// New creates a splitter. The overlap must be non-negative and
// strictly smaller than the chunk size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		return nil, goerr.Wrap(types.ErrValidation, "chunk size must be positive",
			goerr.V("chunk_size", s.chunkSize))
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		return nil, goerr.Wrap(types.ErrValidation, "overlap must be smaller than chunk size",
			goerr.V("chunk_size", s.chunkSize), goerr.V("overlap", s.overlap))
	}

	return s, nil
}

// Split produces the ordered chunk sequence for the given text.
// Whitespace-only input yields no chunks; input shorter than the
// chunk size yields exactly one.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		end = s.cut(text, start, end)
		chunks = append(chunks, text[start:end])
		start = end - s.overlap
		// The overlap offset can land mid-rune; move forward to the
		// next rune start so no chunk begins with a torn character.
		for start < end && !utf8.RuneStart(text[start]) {
			start++
		}
	}
	return chunks
}

// cut selects the window end, preferring a natural boundary within the
// tail of the window. The returned position always exceeds
// start+overlap so the sequence makes progress.
func (s *Splitter) cut(text string, start, end int) int {
	floor := end - s.overlap
	if min := start + s.overlap + 1; floor < min {
		floor = min
	}

	region := text[floor:end]
	for _, pattern := range boundaryPatterns {
		if idx := strings.LastIndex(region, pattern); idx >= 0 {
			return floor + idx + len(pattern)
		}
	}

	// Hard cut: back off to a rune start so no character is torn.
	for end > floor && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}
