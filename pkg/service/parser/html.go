package parser

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// parseHTML strips markup and returns the visible text as a single
// segment. Script and style bodies are dropped.
func parseHTML(data []byte) ([]Segment, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var sb strings.Builder
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// Tokenizer errors terminate the stream; whatever text was
			// collected so far is the result.
			return []Segment{{Text: collapseWhitespace(sb.String())}}, nil

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isHiddenTag(string(name)) {
				skipDepth++
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isHiddenTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
	}
}

func isHiddenTag(name string) bool {
	return name == "script" || name == "style" || name == "noscript"
}

func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
