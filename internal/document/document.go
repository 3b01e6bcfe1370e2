// Package document loads source documents from disk and normalizes them to
// plain text for the analysis pipeline.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a loaded document ready for analysis.
type File struct {
	Name  string
	Title string
	Text  string
}

// Load reads a document from path. HTML is reduced to readable text, PDF is
// extracted page by page, everything else is treated as plain text
// (covers .txt and .md inputs).
func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read document: %w", err)
	}
	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		title, text := fromHTML(raw)
		if strings.TrimSpace(text) == "" {
			return File{}, fmt.Errorf("no readable text in %s", name)
		}
		return File{Name: name, Title: title, Text: text}, nil
	case ".pdf":
		text, err := fromPDF(path)
		if err != nil {
			return File{}, err
		}
		return File{Name: name, Text: text}, nil
	default:
		return File{Name: name, Text: normalizeText(string(raw))}, nil
	}
}

// normalizeText unifies line endings and trims trailing whitespace per line
// while keeping blank-line paragraph separation intact.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
