package reconstruct

import (
	"strings"
	"testing"

	"github.com/demarklabs/demark/internal/queue"
	"github.com/demarklabs/demark/internal/split"
)

var blocks = []string{
	"1. Introduction",
	"First body paragraph, original wording preserved throughout the whole test.",
	"Second body paragraph that may be rewritten by the pipeline under test.",
}

func TestDocument_RoundTripWhenNothingCompleted(t *testing.T) {
	items := []*queue.Item{
		{Index: 0, OriginalBlockIndex: 1, Status: queue.StatusPending},
		{Index: 1, OriginalBlockIndex: 2, Status: queue.StatusSkipped, ProcessedText: "must be ignored"},
	}
	got := Document(blocks, items, split.DelimiterBlankLine)
	want := strings.Join(blocks, "\n\n")
	if got != want {
		t.Fatalf("round trip mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestDocument_SelectiveOverwrite(t *testing.T) {
	items := []*queue.Item{
		{Index: 0, OriginalBlockIndex: 1, Status: queue.StatusPending},
		{Index: 1, OriginalBlockIndex: 2, Status: queue.StatusCompleted, ProcessedText: "Rewritten second paragraph."},
	}
	got := Document(blocks, items, split.DelimiterBlankLine)
	parts := strings.Split(got, "\n\n")
	if len(parts) != 3 {
		t.Fatalf("parts: got %d", len(parts))
	}
	if parts[0] != blocks[0] || parts[1] != blocks[1] {
		t.Fatal("untouched blocks must stay byte-identical")
	}
	if parts[2] != "Rewritten second paragraph." {
		t.Fatalf("overwritten block: got %q", parts[2])
	}
}

func TestDocument_CompletedWithEmptyTextKeepsOriginal(t *testing.T) {
	items := []*queue.Item{
		{Index: 0, OriginalBlockIndex: 1, Status: queue.StatusCompleted, ProcessedText: "   "},
	}
	got := Document(blocks, items, split.DelimiterBlankLine)
	if got != strings.Join(blocks, "\n\n") {
		t.Fatal("completed item with blank processed text must not overwrite")
	}
}

func TestDocument_ReusesDetectedDelimiter(t *testing.T) {
	lines := []string{"Line one", "Line two"}
	got := Document(lines, nil, split.DelimiterNewline)
	if got != "Line one\nLine two" {
		t.Fatalf("got %q", got)
	}
}
