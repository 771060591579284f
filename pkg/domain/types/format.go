package types

import (
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// SourceFormat is a closed enumeration of ingestible file formats.
// Adding a format means adding a constant here and a parse function in
// the parser package, not extending a runtime lookup table.
type SourceFormat string

const (
	FormatText SourceFormat = "text"
	FormatPDF  SourceFormat = "pdf"
	FormatDocx SourceFormat = "docx"
	FormatHTML SourceFormat = "html"
)

// Validate checks if the SourceFormat is a known variant
func (f SourceFormat) Validate() error {
	switch f {
	case FormatText, FormatPDF, FormatDocx, FormatHTML:
		return nil
	default:
		return goerr.Wrap(ErrUnsupportedFormat, "unknown source format", goerr.V("format", string(f)))
	}
}

// String returns the string representation of SourceFormat
func (f SourceFormat) String() string {
	return string(f)
}

// FormatFromPath maps a file name to its SourceFormat by extension.
// The registry is fixed: .txt, .pdf, .docx, .html and .htm.
func FormatFromPath(path string) (SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return FormatText, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", goerr.Wrap(ErrUnsupportedFormat, "no parser registered for extension",
			goerr.V("path", path), goerr.V("ext", filepath.Ext(path)))
	}
}
