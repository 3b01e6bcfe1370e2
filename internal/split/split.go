package split

import (
	"regexp"
	"strings"
)

// Delimiter records how a document was divided into blocks so that callers
// can rejoin edited blocks the same way the input was parsed.
type Delimiter string

const (
	// DelimiterBlankLine separates blocks with an empty line.
	DelimiterBlankLine Delimiter = "\n\n"
	// DelimiterNewline is the fallback for documents without blank-line
	// paragraph separation.
	DelimiterNewline Delimiter = "\n"
)

// Result holds the ordered non-empty blocks and the delimiter that
// produced them.
type Result struct {
	Blocks    []string
	Delimiter Delimiter
}

// blankRunRe matches one or more consecutive blank lines, tolerating
// trailing spaces or tabs on the otherwise empty lines.
var blankRunRe = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// Split divides raw document text into an ordered sequence of non-empty
// blocks. The primary delimiter is a run of blank lines. If that yields at
// most one block and the text contains a newline, the text is re-split on
// single newlines instead. A document with no newlines is a single block.
// Whitespace-only blocks are dropped rather than kept as empty paragraphs.
func Split(text string) Result {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	blocks := trimNonEmpty(blankRunRe.Split(normalized, -1))
	if len(blocks) > 1 || !strings.Contains(normalized, "\n") {
		return Result{Blocks: blocks, Delimiter: DelimiterBlankLine}
	}

	lines := trimNonEmpty(strings.Split(normalized, "\n"))
	if len(lines) > 1 {
		return Result{Blocks: lines, Delimiter: DelimiterNewline}
	}
	return Result{Blocks: blocks, Delimiter: DelimiterBlankLine}
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		t := strings.TrimSpace(s)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
