package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/demarklabs/demark/internal/orchestrate"
	"github.com/demarklabs/demark/internal/wizard"
)

func sampleReport() Report {
	return Report{
		DocumentName: "draft.txt",
		SessionID:    "sess-1",
		GeneratedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Outcomes: []wizard.Outcome{
			{
				Step: wizard.StepDocument,
				Findings: []wizard.Finding{
					{Kind: "document_risk", Severity: "high", Message: "document risk 80 (high), 3 sections, 2 issues"},
				},
			},
			{
				Step:    wizard.StepParagraph,
				Changed: true,
				Findings: []wizard.Finding{
					{Kind: "rewrites", Message: "2 paragraphs rewritten"},
				},
			},
			{Step: wizard.StepSentence},
		},
		Entries: []orchestrate.Entry{
			{Time: time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC), ItemIndex: 0, Stage: "diversify_patterns", Message: "stage finished"},
		},
		FinalText: "The final document text.",
	}
}

func TestMarkdown_Sections(t *testing.T) {
	md := Markdown(sampleReport())
	for _, want := range []string{
		"# Writing analysis report",
		"- Document: draft.txt",
		"- Session: sess-1",
		"## Step: document",
		"**document_risk** (high): document risk 80",
		"## Step: paragraph",
		"Text modified in this step.",
		"## Step: sentence",
		"No findings.",
		"## Processing log",
		"item 0, stage diversify_patterns: stage finished",
		"## Final text",
		"The final document text.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdown_StepOrderPreserved(t *testing.T) {
	md := Markdown(sampleReport())
	doc := strings.Index(md, "## Step: document")
	par := strings.Index(md, "## Step: paragraph")
	sen := strings.Index(md, "## Step: sentence")
	if !(doc < par && par < sen) {
		t.Fatalf("step sections out of order: %d %d %d", doc, par, sen)
	}
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := WriteMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(b), "# Writing analysis report") {
		t.Fatalf("unexpected file head: %q", string(b)[:40])
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := WritePDF(Markdown(sampleReport()), path); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(b), "%PDF-") {
		t.Fatal("output is not a PDF")
	}
}
