// Package rewrite is the LLM-backed stage provider. When no analysis
// service is configured, the per-paragraph remediation stages and per-issue
// suggestions run against an OpenAI-compatible endpoint with a JSON-only
// contract; responses are cached in the stage cache for deterministic
// re-runs.
package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/demarklabs/demark/internal/analysis"
	"github.com/demarklabs/demark/internal/cache"
	"github.com/demarklabs/demark/internal/llm"
	"github.com/demarklabs/demark/internal/orchestrate"
	"github.com/demarklabs/demark/internal/queue"
)

const systemMessage = "You are an editing assistant that removes AI-writing markers from one paragraph at a time. Respond with strict JSON only, no narration. The JSON schema is {\"text\": string, \"changes\": [{\"type\": string, \"count\": int}]}. \"text\" is the full rewritten paragraph preserving the author's meaning and facts. Return the input unchanged with an empty changes list when no edit improves it."

var stageInstructions = map[string]string{
	orchestrate.StageAnalyzeLength:      "Adjust sentence and clause lengths so they vary naturally instead of clustering around a uniform length.",
	orchestrate.StageSuggestMerges:      "Merge choppy adjacent sentences where a combined sentence reads more naturally; do not merge when flow would suffer.",
	orchestrate.StageOptimizeConnectors: "Replace formulaic transition connectors (\"moreover\", \"furthermore\", \"in conclusion\") with varied, context-fitting transitions or none.",
	orchestrate.StageDiversifyPatterns:  "Diversify sentence openers and structures so no repetitive pattern remains across the paragraph.",
}

// Provider runs the remediation stages against a chat model.
type Provider struct {
	Client       llm.Client
	Model        string
	Cache        *cache.StageCache
	DocumentID   string
	LanguageHint string
}

type stagePayload struct {
	Text    string `json:"text"`
	Changes []struct {
		Type  string `json:"type"`
		Count int    `json:"count"`
	} `json:"changes"`
}

// AnalyzeLength implements orchestrate.StageProvider.
func (p *Provider) AnalyzeLength(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	return p.runStage(ctx, orchestrate.StageAnalyzeLength, paragraphIndex, text)
}

// SuggestMerges implements orchestrate.StageProvider.
func (p *Provider) SuggestMerges(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	return p.runStage(ctx, orchestrate.StageSuggestMerges, paragraphIndex, text)
}

// OptimizeConnectors implements orchestrate.StageProvider.
func (p *Provider) OptimizeConnectors(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	return p.runStage(ctx, orchestrate.StageOptimizeConnectors, paragraphIndex, text)
}

// DiversifyPatterns implements orchestrate.StageProvider.
func (p *Provider) DiversifyPatterns(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	return p.runStage(ctx, orchestrate.StageDiversifyPatterns, paragraphIndex, text)
}

func (p *Provider) runStage(ctx context.Context, stage string, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	if p.Client == nil || strings.TrimSpace(p.Model) == "" {
		return orchestrate.StageResult{}, errors.New("rewrite provider not configured")
	}
	instruction, ok := stageInstructions[stage]
	if !ok {
		return orchestrate.StageResult{}, fmt.Errorf("unknown stage %q", stage)
	}
	user := buildUserPrompt(instruction, text, p.LanguageHint)

	key := cache.Key(p.DocumentID, stage, paragraphIndex, text)
	if p.Cache != nil {
		if raw, ok, _ := p.Cache.Get(ctx, key); ok {
			if res, err := parseStagePayload(raw); err == nil {
				return res, nil
			}
		}
	}

	resp, err := p.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.3,
		N:           1,
	})
	if err != nil {
		return orchestrate.StageResult{}, fmt.Errorf("%s call: %w", stage, err)
	}
	if len(resp.Choices) == 0 {
		return orchestrate.StageResult{}, errors.New("no choices")
	}
	raw := []byte(strings.TrimSpace(resp.Choices[0].Message.Content))
	res, err := parseStagePayload(raw)
	if err != nil {
		return orchestrate.StageResult{}, fmt.Errorf("parse %s json: %w", stage, err)
	}
	if p.Cache != nil {
		_ = p.Cache.Save(ctx, key, raw)
	}
	return res, nil
}

func parseStagePayload(raw []byte) (orchestrate.StageResult, error) {
	var payload stagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return orchestrate.StageResult{}, err
	}
	if strings.TrimSpace(payload.Text) == "" {
		return orchestrate.StageResult{}, errors.New("empty text in stage payload")
	}
	changes := make([]queue.Change, 0, len(payload.Changes))
	for _, c := range payload.Changes {
		changes = append(changes, queue.Change{Type: c.Type, Count: c.Count})
	}
	return orchestrate.StageResult{Text: payload.Text, Changes: changes}, nil
}

const suggestionSystemMessage = "You are an editing advisor. Respond with strict JSON only: {\"analysis\": string, \"suggestions\": string[1..4], \"exampleFix\": string}. Explain briefly why the flagged passage reads as machine-written and how a human editor would fix it."

// IssueSuggestion produces single-issue remediation advice from the model.
func (p *Provider) IssueSuggestion(ctx context.Context, issue analysis.Issue) (analysis.IssueSuggestion, error) {
	if p.Client == nil || strings.TrimSpace(p.Model) == "" {
		return analysis.IssueSuggestion{}, errors.New("rewrite provider not configured")
	}
	var sb strings.Builder
	sb.WriteString("Issue type: ")
	sb.WriteString(issue.Type)
	sb.WriteString("\nSeverity: ")
	sb.WriteString(issue.Severity)
	sb.WriteString("\nDescription: ")
	sb.WriteString(issue.Description)
	if issue.Excerpt != "" {
		sb.WriteString("\nFlagged passage:\n")
		sb.WriteString(issue.Excerpt)
	}

	key := cache.Key(p.DocumentID, "issue_suggestion", issue.Index, sb.String())
	if p.Cache != nil {
		if raw, ok, _ := p.Cache.Get(ctx, key); ok {
			var out analysis.IssueSuggestion
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
		}
	}

	resp, err := p.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestionSystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: 0.3,
		N:           1,
	})
	if err != nil {
		return analysis.IssueSuggestion{}, fmt.Errorf("issue suggestion call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return analysis.IssueSuggestion{}, errors.New("no choices")
	}
	raw := []byte(strings.TrimSpace(resp.Choices[0].Message.Content))
	var out analysis.IssueSuggestion
	if err := json.Unmarshal(raw, &out); err != nil {
		return analysis.IssueSuggestion{}, fmt.Errorf("parse suggestion json: %w", err)
	}
	if p.Cache != nil {
		_ = p.Cache.Save(ctx, key, raw)
	}
	return out, nil
}

func buildUserPrompt(instruction, text, lang string) string {
	var sb strings.Builder
	sb.WriteString(instruction)
	if lang != "" {
		sb.WriteString("\nLanguage: ")
		sb.WriteString(lang)
	}
	sb.WriteString("\n\nParagraph:\n")
	sb.WriteString(text)
	return sb.String()
}

// NoopProvider completes every stage without touching the text. It keeps
// dry runs and unconfigured setups flowing through the same orchestrator
// path.
type NoopProvider struct{}

func (NoopProvider) AnalyzeLength(context.Context, int, string) (orchestrate.StageResult, error) {
	return orchestrate.StageResult{}, nil
}
func (NoopProvider) SuggestMerges(context.Context, int, string) (orchestrate.StageResult, error) {
	return orchestrate.StageResult{}, nil
}
func (NoopProvider) OptimizeConnectors(context.Context, int, string) (orchestrate.StageResult, error) {
	return orchestrate.StageResult{}, nil
}
func (NoopProvider) DiversifyPatterns(context.Context, int, string) (orchestrate.StageResult, error) {
	return orchestrate.StageResult{}, nil
}
