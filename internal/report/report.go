// Package report renders a wizard run into a Markdown summary and an
// optional PDF export.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/demarklabs/demark/internal/orchestrate"
	"github.com/demarklabs/demark/internal/wizard"
)

// Report holds everything a finished run produced.
type Report struct {
	DocumentName string
	SessionID    string
	GeneratedAt  time.Time
	Outcomes     []wizard.Outcome
	Entries      []orchestrate.Entry
	FinalText    string
}

// Markdown renders the report as a Markdown document: one section per wizard
// step with its findings, then the paragraph processing log, then the final
// text.
func Markdown(r Report) string {
	var b strings.Builder
	b.WriteString("# Writing analysis report\n\n")
	if r.DocumentName != "" {
		fmt.Fprintf(&b, "- Document: %s\n", r.DocumentName)
	}
	if r.SessionID != "" {
		fmt.Fprintf(&b, "- Session: %s\n", r.SessionID)
	}
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n")

	for _, out := range r.Outcomes {
		fmt.Fprintf(&b, "## Step: %s\n\n", out.Step)
		if len(out.Findings) == 0 {
			b.WriteString("No findings.\n\n")
		} else {
			for _, f := range out.Findings {
				if f.Severity != "" {
					fmt.Fprintf(&b, "- **%s** (%s): %s\n", f.Kind, f.Severity, f.Message)
				} else {
					fmt.Fprintf(&b, "- **%s**: %s\n", f.Kind, f.Message)
				}
			}
			b.WriteString("\n")
		}
		if out.Changed {
			b.WriteString("Text modified in this step.\n\n")
		}
	}

	if len(r.Entries) > 0 {
		b.WriteString("## Processing log\n\n")
		for _, e := range r.Entries {
			fmt.Fprintf(&b, "- [%s] item %d, stage %s: %s\n",
				e.Time.UTC().Format("15:04:05"), e.ItemIndex, e.Stage, e.Message)
		}
		b.WriteString("\n")
	}

	if strings.TrimSpace(r.FinalText) != "" {
		b.WriteString("## Final text\n\n")
		b.WriteString(r.FinalText)
		if !strings.HasSuffix(r.FinalText, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WriteMarkdown renders the report and writes it to path.
func WriteMarkdown(r Report, path string) error {
	if err := os.WriteFile(path, []byte(Markdown(r)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
