// Package wizard sequences the five analysis layers over a document and
// carries text between them through session snapshots.
package wizard

import "fmt"

// Step is one wizard layer. Steps always run in declaration order.
type Step string

const (
	StepDocument  Step = "document"
	StepSection   Step = "section"
	StepParagraph Step = "paragraph"
	StepSentence  Step = "sentence"
	StepLexical   Step = "lexical"
)

var stepOrder = []Step{StepDocument, StepSection, StepParagraph, StepSentence, StepLexical}

// Steps returns the wizard steps in order.
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// Next returns the step after s, or false when s is the last step.
func Next(s Step) (Step, bool) {
	for i, step := range stepOrder {
		if step == s && i+1 < len(stepOrder) {
			return stepOrder[i+1], true
		}
	}
	return "", false
}

// Parse validates a user-supplied step name.
func Parse(s string) (Step, error) {
	for _, step := range stepOrder {
		if string(step) == s {
			return step, nil
		}
	}
	return "", fmt.Errorf("unknown step %q", s)
}
