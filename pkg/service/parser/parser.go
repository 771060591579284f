// Package parser converts uploaded file bytes into raw text segments.
// The set of supported formats is the closed enumeration in
// types.SourceFormat; each variant maps to one pure parse function.
package parser

import (
	"github.com/aethon-lab/mnemosyne/pkg/domain/model"
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Segment is one raw text unit produced from a parsed file, e.g. a
// PDF page. Metadata carries segment-specific fields merged into every
// chunk derived from the segment.
type Segment struct {
	Text     string
	Metadata map[string]any
}

// Parse dispatches the file content to the parse function of its
// format.
func Parse(format types.SourceFormat, data []byte) ([]Segment, error) {
	switch format {
	case types.FormatText:
		return parseText(data)
	case types.FormatPDF:
		return parsePDF(data)
	case types.FormatDocx:
		return parseDocx(data)
	case types.FormatHTML:
		return parseHTML(data)
	default:
		return nil, goerr.Wrap(types.ErrUnsupportedFormat, "no parse function for format",
			goerr.V("format", format.String()))
	}
}

func parseText(data []byte) ([]Segment, error) {
	return []Segment{{Text: string(data)}}, nil
}

func pageSegment(text string, page int) Segment {
	return Segment{
		Text:     text,
		Metadata: map[string]any{model.MetaPage: page},
	}
}
