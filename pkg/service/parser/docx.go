package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// parseDocx opens the DOCX ZIP container and extracts the paragraph
// text of word/document.xml as a single segment.
func parseDocx(data []byte) ([]Segment, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "failed to open DOCX container",
			goerr.V("cause", err.Error()))
	}

	var raw []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, goerr.Wrap(types.ErrValidation, "failed to open word/document.xml",
				goerr.V("cause", err.Error()))
		}
		raw, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, goerr.Wrap(types.ErrValidation, "failed to read word/document.xml",
				goerr.V("cause", err.Error()))
		}
		break
	}
	if raw == nil {
		return nil, goerr.Wrap(types.ErrValidation, "DOCX container has no word/document.xml")
	}

	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "failed to parse word/document.xml",
			goerr.V("cause", err.Error()))
	}

	var sb strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				sb.WriteString(text.Content)
			}
		}
	}

	return []Segment{{Text: strings.TrimSpace(sb.String())}}, nil
}
