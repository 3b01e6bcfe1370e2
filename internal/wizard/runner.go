package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/demarklabs/demark/internal/analysis"
	"github.com/demarklabs/demark/internal/cache"
	"github.com/demarklabs/demark/internal/orchestrate"
	"github.com/demarklabs/demark/internal/queue"
	"github.com/demarklabs/demark/internal/reconstruct"
	"github.com/demarklabs/demark/internal/session"
	"github.com/demarklabs/demark/internal/split"
)

// Suggester produces remediation advice for a single issue. The remote
// service and the LLM-backed rewrite provider both satisfy it.
type Suggester interface {
	IssueSuggestion(ctx context.Context, issue analysis.Issue) (analysis.IssueSuggestion, error)
}

// Finding is one rendered analysis observation.
type Finding struct {
	Kind     string
	Severity string
	Message  string
}

// Outcome is the result of running one step.
type Outcome struct {
	Step     Step
	Findings []Finding
	Input    string
	Output   string
	Changed  bool
}

// Runner executes wizard steps. Service may be nil (analyses are then
// skipped with a warning); Stages must always be set so the paragraph step
// can run.
type Runner struct {
	Store   *session.Store
	Service *analysis.Client
	Stages  orchestrate.StageProvider
	Suggest Suggester
	Log     *orchestrate.Log

	// ProcessAll widens the paragraph step's selection from the auto-selected
	// medium/high risk items to every pending item. Used when no pattern
	// analysis is available to drive risk scores.
	ProcessAll bool

	dedup cache.SuggestionGroup
}

// Run executes the wizard from the context's current step through the last
// step, persisting a snapshot after each one.
func (r *Runner) Run(ctx context.Context, wctx Context) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(stepOrder))
	step := wctx.Step
	for {
		out, err := r.RunStep(ctx, wctx, step)
		if err != nil {
			return outcomes, fmt.Errorf("step %s: %w", step, err)
		}
		outcomes = append(outcomes, out)
		next, ok := Next(step)
		if !ok {
			break
		}
		if err := r.Store.SetStep(wctx.SessionID, string(next)); err != nil {
			return outcomes, err
		}
		step = next
	}
	return outcomes, nil
}

// RunStep executes a single step: fetch the step's input text, run the
// layer's analyses, apply remediation where the layer has any, and save the
// step snapshot.
func (r *Runner) RunStep(ctx context.Context, wctx Context, step Step) (Outcome, error) {
	input, err := r.stepInput(wctx, step)
	if err != nil {
		return Outcome{}, err
	}
	if strings.TrimSpace(input) == "" {
		return Outcome{}, session.ErrDocumentNotFound
	}

	var out Outcome
	switch step {
	case StepDocument:
		out, err = r.runDocumentStep(ctx, wctx, input)
	case StepSection:
		out, err = r.runSectionStep(ctx, input)
	case StepParagraph:
		out, err = r.runParagraphStep(ctx, input)
	case StepSentence:
		out, err = r.runSentenceStep(ctx, input)
	case StepLexical:
		out, err = r.runLexicalStep(ctx, input)
	default:
		return Outcome{}, fmt.Errorf("unknown step %q", step)
	}
	if err != nil {
		return Outcome{}, err
	}
	out.Step = step
	out.Input = input
	if out.Output == "" {
		out.Output = input
	}
	out.Changed = out.Output != input

	if err := r.Store.SaveSnapshot(wctx.SessionID, string(step), out.Output); err != nil {
		return Outcome{}, fmt.Errorf("save snapshot: %w", err)
	}
	log.Info().Str("step", string(step)).Int("findings", len(out.Findings)).Bool("changed", out.Changed).Msg("step finished")
	return out, nil
}

// stepInput returns the text a step works on: the nearest earlier step's
// snapshot, falling back to the original document text.
func (r *Runner) stepInput(wctx Context, step Step) (string, error) {
	idx := -1
	for i, s := range stepOrder {
		if s == step {
			idx = i
			break
		}
	}
	for i := idx - 1; i >= 0; i-- {
		text, ok, err := r.Store.Snapshot(wctx.SessionID, string(stepOrder[i]))
		if err != nil {
			return "", err
		}
		if ok && strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	doc, err := r.Store.Document(wctx.DocumentID)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

func (r *Runner) runDocumentStep(ctx context.Context, wctx Context, input string) (Outcome, error) {
	var out Outcome
	if r.Service == nil {
		log.Warn().Msg("no analysis service configured; document layer runs without findings")
		return out, nil
	}
	doc, err := r.Service.AnalyzeDocumentText(ctx, input)
	if err != nil {
		return out, fmt.Errorf("analyze document: %w", err)
	}
	out.Findings = append(out.Findings, Finding{
		Kind:     "document_risk",
		Severity: doc.RiskLevel,
		Message:  fmt.Sprintf("document risk %.0f (%s), %d sections, %d issues", doc.RiskScore, doc.RiskLevel, len(doc.Sections), len(doc.Issues)),
	})
	for _, issue := range doc.Issues {
		out.Findings = append(out.Findings, Finding{Kind: issue.Type, Severity: issue.Severity, Message: issue.Description})
		if advice, err := r.suggestionFor(ctx, wctx.DocumentID, issue); err == nil && advice.Analysis != "" {
			out.Findings = append(out.Findings, Finding{Kind: "suggestion", Severity: issue.Severity, Message: advice.Analysis})
		}
	}
	if len(doc.Issues) == 0 {
		return out, nil
	}
	// Bulk remediation over all detected issues.
	if prompt, err := r.Service.GenerateModifyPrompt(ctx, wctx.DocumentID, doc.Issues); err != nil {
		log.Warn().Err(err).Msg("generate modify prompt failed")
	} else if prompt.Prompt != "" {
		log.Debug().Int("prompt_len", len(prompt.Prompt)).Msg("modify prompt generated")
	}
	res, err := r.Service.ApplyModify(ctx, wctx.DocumentID, doc.Issues)
	if err != nil {
		// Recoverable: keep findings, carry the text forward unchanged.
		log.Warn().Err(err).Msg("apply modify failed; keeping original text")
		return out, nil
	}
	if strings.TrimSpace(res.ModifiedText) != "" {
		out.Output = res.ModifiedText
		out.Findings = append(out.Findings, Finding{
			Kind:    "modification",
			Message: fmt.Sprintf("%s (%d changes)", res.ChangesSummary, res.ChangesCount),
		})
	}
	return out, nil
}

// suggestionFor fetches advice for one issue, deduplicating concurrent
// identical requests and preferring the configured suggester.
func (r *Runner) suggestionFor(ctx context.Context, documentID string, issue analysis.Issue) (analysis.IssueSuggestion, error) {
	if r.Suggest == nil {
		return analysis.IssueSuggestion{}, fmt.Errorf("no suggester configured")
	}
	v, err := r.dedup.Do(documentID, "issue_suggestion", issue.Index, func() (any, error) {
		return r.Suggest.IssueSuggestion(ctx, issue)
	})
	if err != nil {
		return analysis.IssueSuggestion{}, err
	}
	return v.(analysis.IssueSuggestion), nil
}

func (r *Runner) runSectionStep(ctx context.Context, input string) (Outcome, error) {
	var out Outcome
	if r.Service == nil {
		log.Warn().Msg("no analysis service configured; section layer runs without findings")
		return out, nil
	}
	prog, err := r.Service.AnalyzeProgressionClosure(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("progression analysis failed")
	} else {
		out.Findings = append(out.Findings, Finding{
			Kind:    "progression",
			Message: fmt.Sprintf("progression %.0f (%s), closure %.0f (%s), %d markers", prog.ProgressionScore, prog.ProgressionType, prog.ClosureScore, prog.ClosureType, len(prog.Markers)),
		})
	}
	sub, err := r.Service.AnalyzeContentSubstantiality(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("substantiality analysis failed")
	} else {
		out.Findings = append(out.Findings, Finding{
			Kind:     "substantiality",
			Severity: sub.RiskLevel,
			Message:  fmt.Sprintf("overall specificity %.0f across %d paragraphs", sub.OverallSpecificityScore, len(sub.Paragraphs)),
		})
	}
	return out, nil
}

// runParagraphStep is the core of the wizard: split the text into blocks,
// build the content-paragraph queue with the service's risk map, process the
// selection through the remediation stages, and splice the rewrites back
// into block order.
func (r *Runner) runParagraphStep(ctx context.Context, input string) (Outcome, error) {
	var out Outcome
	res := split.Split(input)
	if len(res.Blocks) == 0 {
		return out, fmt.Errorf("document produced no blocks")
	}

	risks := map[int]queue.Risk{}
	if r.Service != nil {
		patterns, err := r.Service.AnalyzePatterns(ctx, input)
		if err != nil {
			log.Warn().Err(err).Msg("pattern analysis failed; using default risk for all paragraphs")
		} else {
			for blockIndex, pr := range patterns.HighRiskParagraphs {
				risks[blockIndex] = queue.Risk{
					SimpleRatio:      pr.SimpleRatio,
					LengthCV:         pr.LengthCV,
					OpenerRepetition: pr.OpenerRepetition,
					Score:            pr.RiskScore,
					Level:            queue.RiskLevel(pr.RiskLevel),
				}
			}
		}
	}

	items, selected := queue.Build(res.Blocks, risks)
	if len(items) == 0 {
		return out, queue.ErrNoParagraphs
	}
	if r.ProcessAll {
		selected = selected[:0]
		for _, item := range items {
			selected = append(selected, item.Index)
		}
	}
	out.Findings = append(out.Findings, Finding{
		Kind:    "queue",
		Message: fmt.Sprintf("%d blocks, %d content paragraphs, %d selected for processing", len(res.Blocks), len(items), len(selected)),
	})

	orch := &orchestrate.Orchestrator{Stages: r.Stages, Log: r.Log}
	if err := orch.ProcessBatch(ctx, items, selected); err != nil {
		return out, fmt.Errorf("process batch: %w", err)
	}

	completed := 0
	for _, item := range items {
		if item.Status == queue.StatusCompleted && item.ProcessedText != "" {
			completed++
		}
	}
	if completed > 0 {
		out.Findings = append(out.Findings, Finding{
			Kind:    "rewrites",
			Message: fmt.Sprintf("%d paragraphs rewritten", completed),
		})
	}
	out.Output = reconstruct.Document(res.Blocks, items, res.Delimiter)
	return out, nil
}

func (r *Runner) runSentenceStep(ctx context.Context, input string) (Outcome, error) {
	var out Outcome
	if r.Service == nil {
		log.Warn().Msg("no analysis service configured; sentence layer runs without findings")
		return out, nil
	}
	sentences, err := r.Service.IdentifySentences(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("sentence identification failed")
	} else {
		out.Findings = append(out.Findings, Finding{
			Kind:    "sentences",
			Message: fmt.Sprintf("%d sentences, risk %.0f, %d structural types", len(sentences.Sentences), sentences.RiskScore, len(sentences.TypeDistribution)),
		})
	}
	conn, err := r.Service.AnalyzeConnectors(ctx, input)
	if err != nil {
		log.Warn().Err(err).Msg("connector analysis failed")
	} else {
		out.Findings = append(out.Findings, Finding{
			Kind:     "connectors",
			Severity: conn.RiskLevel,
			Message:  fmt.Sprintf("smoothness %.0f, connector density %.2f, %d transitions", conn.OverallSmoothnessScore, conn.ConnectorDensity, len(conn.Transitions)),
		})
	}
	return out, nil
}

// runLexicalStep applies the service's lexical replacements locally. The
// replacements arrive fully specified, so application is plain string
// substitution in block order.
func (r *Runner) runLexicalStep(ctx context.Context, input string) (Outcome, error) {
	var out Outcome
	if r.Service == nil {
		log.Warn().Msg("no analysis service configured; lexical layer runs without findings")
		return out, nil
	}
	repl, err := r.Service.GenerateReplacements(ctx, input)
	if err != nil {
		return out, fmt.Errorf("generate replacements: %w", err)
	}
	out.Findings = append(out.Findings, Finding{
		Kind:     "replacements",
		Severity: repl.RiskLevel,
		Message:  fmt.Sprintf("%d lexical replacements across %d categories", repl.ReplacementCount, len(repl.ByCategory)),
	})
	text := input
	applied := 0
	for _, rep := range repl.Replacements {
		if rep.Original == "" || rep.Original == rep.Suggested {
			continue
		}
		if strings.Contains(text, rep.Original) {
			text = strings.ReplaceAll(text, rep.Original, rep.Suggested)
			applied++
		}
	}
	if applied > 0 {
		out.Output = text
		out.Findings = append(out.Findings, Finding{
			Kind:    "applied",
			Message: fmt.Sprintf("%d replacements applied", applied),
		})
	}
	return out, nil
}

// ServiceSuggester adapts the analysis client to the Suggester interface.
type ServiceSuggester struct {
	Client     *analysis.Client
	DocumentID string
}

func (s *ServiceSuggester) IssueSuggestion(ctx context.Context, issue analysis.Issue) (analysis.IssueSuggestion, error) {
	return s.Client.GetIssueSuggestion(ctx, s.DocumentID, issue)
}
