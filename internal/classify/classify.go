// Package classify decides whether a text block is a heading or a content
// paragraph. Headings are excluded from per-paragraph risk processing.
//
// The decision is an ordered cascade of heuristic rules; the first matching
// rule wins. Headings are structurally short, unpunctuated, or follow common
// academic numbering, while full sentences terminated by periods are assumed
// to be body text. False positives and negatives are expected on atypical
// formatting.
package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule identifies which heuristic decided a block is a heading.
type Rule string

const (
	RuleNone              Rule = ""
	RuleStructuralKeyword Rule = "structural_keyword"
	RuleNumberedSection   Rule = "numbered_section"
	RuleChapterPrefix     Rule = "chapter_prefix"
	RuleShortTitleLine    Rule = "short_title_line"
	RuleShortFragment     Rule = "short_fragment"
	RuleUnterminatedLine  Rule = "unterminated_line"
)

// structuralKeywords are section names that are headings regardless of shape.
var structuralKeywords = map[string]struct{}{
	"abstract":        {},
	"introduction":    {},
	"conclusion":      {},
	"references":      {},
	"acknowledgment":  {},
	"acknowledgments": {},
	"bibliography":    {},
	"appendix":        {},
}

var (
	// "1. Introduction" style: leading integer, period, capitalized word.
	numberedSectionRe = regexp.MustCompile(`^\d+\.\s+[A-Z]`)
	// "2.3.1 Results" style: dotted multi-level numbering.
	dottedSectionRe = regexp.MustCompile(`^\d+(?:\.\d+)+\.?\s+\S`)
	// "Chapter 4", "Section 2", "Part 3" prefixes.
	chapterPrefixRe = regexp.MustCompile(`(?i)^(?:chapter|section|part)\s+\d+`)
	// Standalone title line: letters, spaces, colons, hyphens only.
	titleCharsRe = regexp.MustCompile(`^[A-Za-z][A-Za-z :\-]*$`)
)

const (
	shortTitleMaxChars    = 50
	shortFragmentMaxWords = 10
	shortLineMaxWords     = 15
)

type rule struct {
	tag   Rule
	match func(string) bool
}

// rules is the ordered cascade. Order matters: earlier rules take priority,
// and each rule is independently testable through Classify's returned tag.
var rules = []rule{
	{RuleStructuralKeyword, isStructuralKeyword},
	{RuleNumberedSection, isNumberedSection},
	{RuleChapterPrefix, isChapterPrefix},
	{RuleShortTitleLine, isShortTitleLine},
	{RuleShortFragment, isShortFragment},
	{RuleUnterminatedLine, isUnterminatedLine},
}

// Classify reports whether the block is a heading and which rule decided.
// It is pure and deterministic: identical input always yields the same
// classification.
func Classify(block string) (bool, Rule) {
	text := strings.TrimSpace(block)
	if text == "" {
		return false, RuleNone
	}
	for _, r := range rules {
		if r.match(text) {
			return true, r.tag
		}
	}
	return false, RuleNone
}

// IsTitle is the boolean-only form of Classify.
func IsTitle(block string) bool {
	isHeading, _ := Classify(block)
	return isHeading
}

func isStructuralKeyword(text string) bool {
	_, ok := structuralKeywords[strings.ToLower(text)]
	return ok
}

func isNumberedSection(text string) bool {
	return numberedSectionRe.MatchString(text) || dottedSectionRe.MatchString(text)
}

func isChapterPrefix(text string) bool {
	return chapterPrefixRe.MatchString(text)
}

// isShortTitleLine matches a short standalone line that starts with a
// capital letter and carries no terminal punctuation.
func isShortTitleLine(text string) bool {
	if len(text) > shortTitleMaxChars || strings.Contains(text, "\n") {
		return false
	}
	first := []rune(text)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	return titleCharsRe.MatchString(text)
}

// isShortFragment matches a short fragment without sentence structure: few
// words, at most one sentence-ending boundary, and no period anywhere.
func isShortFragment(text string) bool {
	if strings.Contains(text, ".") {
		return false
	}
	if len(strings.Fields(text)) >= shortFragmentMaxWords {
		return false
	}
	return sentenceBoundaries(text) <= 1
}

// isUnterminatedLine matches a single short line that does not end in a
// period.
func isUnterminatedLine(text string) bool {
	if strings.Contains(text, "\n") {
		return false
	}
	if len(strings.Fields(text)) >= shortLineMaxWords {
		return false
	}
	return !strings.HasSuffix(text, ".")
}

func sentenceBoundaries(text string) int {
	n := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			n++
		}
	}
	return n
}
