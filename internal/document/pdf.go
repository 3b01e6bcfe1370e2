package document

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// fromPDF extracts plain text from a PDF, page by page. Pages that fail to
// extract are skipped rather than failing the whole document.
func fromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	text := normalizeText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text in pdf %s", path)
	}
	return text, nil
}
