// Command analysis-stub serves deterministic canned responses for every
// analysis endpoint, so the wizard can be exercised end to end without the
// real service. Heuristics are intentionally crude: word counts, fixed
// replacement tables, and a simple connector swap.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/demarklabs/demark/internal/analysis"
	"github.com/demarklabs/demark/internal/split"
)

type textRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type stageRequest struct {
	Text           string `json:"text"`
	ParagraphIndex int    `json:"paragraphIndex"`
	Language       string `json:"language"`
}

type issueRequest struct {
	DocumentID string         `json:"documentId"`
	Issue      analysis.Issue `json:"issue"`
}

type modifyRequest struct {
	DocumentID string           `json:"documentId"`
	Issues     []analysis.Issue `json:"issues"`
}

var replacements = []analysis.Replacement{
	{Original: "delve into", Suggested: "examine", Category: "ai_phrase"},
	{Original: "Furthermore,", Suggested: "Also,", Category: "connector"},
	{Original: "Moreover,", Suggested: "Beyond that,", Category: "connector"},
	{Original: "utilize", Suggested: "use", Category: "formal_verb"},
	{Original: "leverage", Suggested: "use", Category: "formal_verb"},
	{Original: "a testament to", Suggested: "proof of", Category: "ai_phrase"},
}

func main() {
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/analyze/document", textHandler(analyzeDocument))
	mux.HandleFunc("/v1/analyze/length", textHandler(analyzeLength))
	mux.HandleFunc("/v1/analyze/progression", textHandler(func(text string) any {
		return analysis.ProgressionClosure{
			ProgressionScore: 65, ProgressionType: "linear",
			ClosureScore: 70, ClosureType: "summary",
			Markers: closureMarkers(text),
		}
	}))
	mux.HandleFunc("/v1/analyze/connectors", textHandler(analyzeConnectors))
	mux.HandleFunc("/v1/analyze/substantiality", textHandler(analyzeSubstantiality))
	mux.HandleFunc("/v1/analyze/sentences", textHandler(analyzeSentences))
	mux.HandleFunc("/v1/analyze/patterns", textHandler(analyzePatterns))
	mux.HandleFunc("/v1/generate/replacements", textHandler(generateReplacements))

	mux.HandleFunc("/v1/stage/analyze-length", stageHandler(func(req stageRequest) analysis.StageResult {
		return analysis.StageResult{}
	}))
	mux.HandleFunc("/v1/stage/suggest-merges", stageHandler(func(req stageRequest) analysis.StageResult {
		return analysis.StageResult{}
	}))
	mux.HandleFunc("/v1/stage/optimize-connectors", stageHandler(optimizeConnectors))
	mux.HandleFunc("/v1/stage/diversify-patterns", stageHandler(func(req stageRequest) analysis.StageResult {
		return analysis.StageResult{}
	}))

	mux.HandleFunc("/v1/issue/suggestion", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req issueRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, analysis.IssueSuggestion{
			Analysis:    "The flagged passage reads as formulaic " + req.Issue.Type + ".",
			Suggestions: []string{"Vary sentence openers", "Replace the stock phrasing with a concrete claim"},
			ExampleFix:  req.Issue.Excerpt,
		})
	})
	mux.HandleFunc("/v1/modify/prompt", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req modifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, analysis.ModifyPrompt{
			Prompt: "Revise the document to address the listed issues while preserving meaning.",
		})
	})
	mux.HandleFunc("/v1/modify/apply", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req modifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		// The stub never rewrites whole documents; callers keep their text.
		writeJSON(w, analysis.ModifyResult{ChangesSummary: "no changes", ChangesCount: 0})
	})

	log.Printf("analysis-stub listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func textHandler(fn func(text string) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req textRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, fn(req.Text))
	}
}

func stageHandler(fn func(req stageRequest) analysis.StageResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req stageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, fn(req))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func analyzeDocument(text string) any {
	blocks := split.Split(text).Blocks
	issues := []analysis.Issue{}
	for i, b := range blocks {
		for _, rep := range replacements {
			if strings.Contains(b, rep.Original) {
				issues = append(issues, analysis.Issue{
					Index:          len(issues),
					Type:           rep.Category,
					Severity:       "medium",
					Description:    "stock phrase " + rep.Original,
					Excerpt:        rep.Original,
					ParagraphIndex: i,
				})
				break
			}
		}
	}
	score := 20.0 + float64(len(issues))*15
	if score > 95 {
		score = 95
	}
	return analysis.DocumentAnalysis{
		RiskScore: score,
		RiskLevel: level(score),
		Sections: []analysis.Section{
			{Title: "Body", Summary: "full document", RiskLevel: level(score)},
		},
		Issues: issues,
	}
}

func analyzeLength(text string) any {
	blocks := split.Split(text).Blocks
	out := analysis.LengthAnalysis{RiskLevel: "low"}
	total := 0
	for i, b := range blocks {
		words := len(strings.Fields(b))
		total += words
		out.Paragraphs = append(out.Paragraphs, analysis.ParagraphLength{Index: i, Words: words})
	}
	if len(blocks) > 0 {
		out.MeanLength = float64(total) / float64(len(blocks))
	}
	out.CV = 0.25
	out.LengthRegularityScore = 40
	return out
}

func closureMarkers(text string) []analysis.Marker {
	var out []analysis.Marker
	for i, b := range split.Split(text).Blocks {
		if strings.HasPrefix(b, "In conclusion") || strings.HasPrefix(b, "To summarize") {
			out = append(out, analysis.Marker{Type: "closure", Text: firstLine(b), ParagraphIndex: i})
		}
	}
	return out
}

func analyzeConnectors(text string) any {
	blocks := split.Split(text).Blocks
	out := analysis.ConnectorAnalysis{OverallSmoothnessScore: 60, RiskLevel: "low"}
	connectors := 0
	for i := 1; i < len(blocks); i++ {
		word := strings.SplitN(strings.TrimSpace(blocks[i]), " ", 2)[0]
		c := strings.TrimRight(word, ",")
		smooth := 70.0
		switch c {
		case "Furthermore", "Moreover", "Additionally", "However":
			connectors++
			smooth = 40
		}
		out.Transitions = append(out.Transitions, analysis.Transition{
			FromParagraph: i - 1, ToParagraph: i, Connector: c, Smoothness: smooth,
		})
	}
	if len(blocks) > 1 {
		out.ConnectorDensity = float64(connectors) / float64(len(blocks)-1)
	}
	if out.ConnectorDensity > 0.5 {
		out.RiskLevel = "high"
	}
	return out
}

func analyzeSubstantiality(text string) any {
	out := analysis.SubstantialityAnalysis{OverallSpecificityScore: 55, RiskLevel: "medium"}
	for i, b := range split.Split(text).Blocks {
		generic := !strings.ContainsAny(b, "0123456789")
		score := 70.0
		if generic {
			score = 40
		}
		out.Paragraphs = append(out.Paragraphs, analysis.ParagraphSpecificity{
			Index: i, SpecificityScore: score, Generic: generic,
		})
	}
	return out
}

func analyzeSentences(text string) any {
	out := analysis.SentenceAnalysis{
		TypeDistribution:     map[string]int{},
		ParagraphSentenceMap: map[int][]int{},
	}
	idx := 0
	for pi, b := range split.Split(text).Blocks {
		for _, s := range strings.Split(b, ". ") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			typ := "simple"
			if strings.Contains(s, ",") {
				typ = "complex"
			}
			out.Sentences = append(out.Sentences, analysis.Sentence{
				Index: idx, Text: s, Type: typ, Opener: strings.SplitN(s, " ", 2)[0],
			})
			out.TypeDistribution[typ]++
			out.ParagraphSentenceMap[pi] = append(out.ParagraphSentenceMap[pi], idx)
			idx++
		}
	}
	if n := len(out.Sentences); n > 0 {
		out.RiskScore = float64(out.TypeDistribution["simple"]) / float64(n) * 100
	}
	return out
}

func analyzePatterns(text string) any {
	out := analysis.PatternAnalysis{HighRiskParagraphs: map[int]analysis.ParagraphRisk{}}
	for i, b := range split.Split(text).Blocks {
		words := len(strings.Fields(b))
		if words < 15 {
			continue
		}
		score := 30.0
		for _, rep := range replacements {
			if strings.Contains(b, rep.Original) {
				score += 25
			}
		}
		if score <= 30 {
			continue
		}
		if score > 95 {
			score = 95
		}
		out.HighRiskParagraphs[i] = analysis.ParagraphRisk{
			SimpleRatio:      0.6,
			LengthCV:         0.2,
			OpenerRepetition: 0.3,
			RiskScore:        score,
			RiskLevel:        level(score),
		}
	}
	return out
}

func generateReplacements(text string) any {
	out := analysis.ReplacementAnalysis{ByCategory: map[string]int{}, RiskLevel: "low"}
	for _, rep := range replacements {
		n := strings.Count(text, rep.Original)
		if n == 0 {
			continue
		}
		rep.Count = n
		out.Replacements = append(out.Replacements, rep)
		out.ReplacementCount += n
		out.ByCategory[rep.Category] += n
	}
	if out.ReplacementCount > 3 {
		out.RiskLevel = "medium"
	}
	return out
}

func optimizeConnectors(req stageRequest) analysis.StageResult {
	text := req.Text
	count := 0
	for _, rep := range replacements {
		if rep.Category != "connector" {
			continue
		}
		if n := strings.Count(text, rep.Original); n > 0 {
			text = strings.ReplaceAll(text, rep.Original, rep.Suggested)
			count += n
		}
	}
	if count == 0 {
		return analysis.StageResult{}
	}
	return analysis.StageResult{
		ModifiedText: text,
		Changes:      []analysis.ChangeCount{{Type: "connector", Count: count}},
	}
}

func level(score float64) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
