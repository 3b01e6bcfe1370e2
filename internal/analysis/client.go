// Package analysis is the HTTP client for the remote text-analysis and
// generation service. All linguistic analysis is delegated to that service;
// this client only shapes requests and decodes responses.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Client talks to one analysis service instance.
type Client struct {
	BaseURL    string
	APIKey     string // optional
	HTTPClient *http.Client
	UserAgent  string // optional custom UA
	// Language is an optional hint forwarded with every request, already
	// canonicalized by NormalizeLanguage.
	Language string
}

// NormalizeLanguage canonicalizes a user-supplied language hint (for
// example "EN-us" to "en-US"). Unparseable hints are passed through trimmed
// so the service can apply its own handling.
func NormalizeLanguage(hint string) string {
	s := strings.TrimSpace(hint)
	if s == "" {
		return ""
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	return tag.String()
}

type textRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type stageRequest struct {
	Text           string `json:"text"`
	ParagraphIndex int    `json:"paragraphIndex"`
	Language       string `json:"language,omitempty"`
}

type issueRequest struct {
	DocumentID string `json:"documentId"`
	Issue      Issue  `json:"issue"`
}

type modifyRequest struct {
	DocumentID string  `json:"documentId"`
	Issues     []Issue `json:"issues"`
}

// AnalyzeDocumentText runs the document-level structural analysis.
func (c *Client) AnalyzeDocumentText(ctx context.Context, text string) (DocumentAnalysis, error) {
	var out DocumentAnalysis
	err := c.post(ctx, "/v1/analyze/document", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// AnalyzeParagraphLength measures paragraph length regularity.
func (c *Client) AnalyzeParagraphLength(ctx context.Context, text string) (LengthAnalysis, error) {
	var out LengthAnalysis
	err := c.post(ctx, "/v1/analyze/length", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// AnalyzeProgressionClosure scores document progression and closure.
func (c *Client) AnalyzeProgressionClosure(ctx context.Context, text string) (ProgressionClosure, error) {
	var out ProgressionClosure
	err := c.post(ctx, "/v1/analyze/progression", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// AnalyzeConnectors scores transition smoothness.
func (c *Client) AnalyzeConnectors(ctx context.Context, text string) (ConnectorAnalysis, error) {
	var out ConnectorAnalysis
	err := c.post(ctx, "/v1/analyze/connectors", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// AnalyzeContentSubstantiality scores per-paragraph specificity.
func (c *Client) AnalyzeContentSubstantiality(ctx context.Context, text string) (SubstantialityAnalysis, error) {
	var out SubstantialityAnalysis
	err := c.post(ctx, "/v1/analyze/substantiality", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// IdentifySentences types every sentence in the text.
func (c *Client) IdentifySentences(ctx context.Context, text string) (SentenceAnalysis, error) {
	var out SentenceAnalysis
	err := c.post(ctx, "/v1/analyze/sentences", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// AnalyzePatterns returns the per-paragraph risk map used to build the
// processing queue.
func (c *Client) AnalyzePatterns(ctx context.Context, text string) (PatternAnalysis, error) {
	var out PatternAnalysis
	err := c.post(ctx, "/v1/analyze/patterns", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// GenerateReplacements proposes lexical substitutions.
func (c *Client) GenerateReplacements(ctx context.Context, text string) (ReplacementAnalysis, error) {
	var out ReplacementAnalysis
	err := c.post(ctx, "/v1/generate/replacements", textRequest{Text: text, Language: c.Language}, &out)
	return out, err
}

// AnalyzeLength runs the length-analysis remediation stage for one paragraph.
func (c *Client) AnalyzeLength(ctx context.Context, paragraphIndex int, text string) (StageResult, error) {
	return c.stage(ctx, "/v1/stage/analyze-length", paragraphIndex, text)
}

// SuggestMerges runs the merge-suggestion stage for one paragraph.
func (c *Client) SuggestMerges(ctx context.Context, paragraphIndex int, text string) (StageResult, error) {
	return c.stage(ctx, "/v1/stage/suggest-merges", paragraphIndex, text)
}

// OptimizeConnectors runs the connector-optimization stage for one paragraph.
func (c *Client) OptimizeConnectors(ctx context.Context, paragraphIndex int, text string) (StageResult, error) {
	return c.stage(ctx, "/v1/stage/optimize-connectors", paragraphIndex, text)
}

// DiversifyPatterns runs the diversification stage for one paragraph.
func (c *Client) DiversifyPatterns(ctx context.Context, paragraphIndex int, text string) (StageResult, error) {
	return c.stage(ctx, "/v1/stage/diversify-patterns", paragraphIndex, text)
}

// GetIssueSuggestion fetches remediation advice for a single issue.
func (c *Client) GetIssueSuggestion(ctx context.Context, documentID string, issue Issue) (IssueSuggestion, error) {
	var out IssueSuggestion
	err := c.post(ctx, "/v1/issue/suggestion", issueRequest{DocumentID: documentID, Issue: issue}, &out)
	return out, err
}

// GenerateModifyPrompt builds a bulk remediation prompt for the selected
// issues.
func (c *Client) GenerateModifyPrompt(ctx context.Context, documentID string, issues []Issue) (ModifyPrompt, error) {
	var out ModifyPrompt
	err := c.post(ctx, "/v1/modify/prompt", modifyRequest{DocumentID: documentID, Issues: issues}, &out)
	return out, err
}

// ApplyModify applies bulk remediation for the selected issues.
func (c *Client) ApplyModify(ctx context.Context, documentID string, issues []Issue) (ModifyResult, error) {
	var out ModifyResult
	err := c.post(ctx, "/v1/modify/apply", modifyRequest{DocumentID: documentID, Issues: issues}, &out)
	return out, err
}

func (c *Client) stage(ctx context.Context, path string, paragraphIndex int, text string) (StageResult, error) {
	var out StageResult
	err := c.post(ctx, path, stageRequest{Text: text, ParagraphIndex: paragraphIndex, Language: c.Language}, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	if c == nil || c.BaseURL == "" {
		return fmt.Errorf("analysis service not configured")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("analysis service %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
