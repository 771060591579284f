package parser

import (
	"bytes"
	"strings"

	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
)

// parsePDF extracts plain text per page. Pages without extractable
// text are skipped; page numbers are 1-based in the segment metadata.
func parsePDF(data []byte) ([]Segment, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "failed to open PDF",
			goerr.V("cause", err.Error()))
	}

	var segments []Segment
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, goerr.Wrap(types.ErrValidation, "failed to extract PDF page text",
				goerr.V("page", i), goerr.V("cause", err.Error()))
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, pageSegment(text, i))
	}

	return segments, nil
}
