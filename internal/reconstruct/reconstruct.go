// Package reconstruct splices processed paragraph text back into the
// original block order to produce the full modified document.
package reconstruct

import (
	"strings"

	"github.com/demarklabs/demark/internal/queue"
	"github.com/demarklabs/demark/internal/split"
)

// Document copies the original blocks and, for every completed item with a
// non-empty processed text, overwrites the block at the item's original
// position. Titles, unprocessed, locked and skipped paragraphs keep their
// original text. The result is rejoined with the delimiter the splitter
// detected, so a document parsed on single newlines is not silently widened
// to blank-line separation.
func Document(blocks []string, items []*queue.Item, delim split.Delimiter) string {
	out := make([]string, len(blocks))
	copy(out, blocks)
	for _, item := range items {
		if item == nil || item.Status != queue.StatusCompleted {
			continue
		}
		if strings.TrimSpace(item.ProcessedText) == "" {
			continue
		}
		if item.OriginalBlockIndex < 0 || item.OriginalBlockIndex >= len(out) {
			continue
		}
		out[item.OriginalBlockIndex] = item.ProcessedText
	}
	return strings.Join(out, string(delim))
}
