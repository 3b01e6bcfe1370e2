package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/demarklabs/demark/internal/analysis"
	"github.com/demarklabs/demark/internal/cache"
	"github.com/demarklabs/demark/internal/classify"
	"github.com/demarklabs/demark/internal/document"
	"github.com/demarklabs/demark/internal/llm"
	"github.com/demarklabs/demark/internal/orchestrate"
	"github.com/demarklabs/demark/internal/queue"
	"github.com/demarklabs/demark/internal/report"
	"github.com/demarklabs/demark/internal/rewrite"
	"github.com/demarklabs/demark/internal/session"
	"github.com/demarklabs/demark/internal/split"
	"github.com/demarklabs/demark/internal/wizard"
)

// App wires the session store, the analysis service client, and the rewrite
// provider into a runnable wizard.
type App struct {
	cfg     Config
	store   *session.Store
	service *analysis.Client
	ai      *openai.Client
}

func New(ctx context.Context, cfg Config) (*App, error) {
	store, err := session.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	a := &App{cfg: cfg, store: store}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			// Purge by age; ignore errors to avoid failing startup
			_, _ = cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
	}

	if cfg.ServiceURL != "" {
		a.service = &analysis.Client{
			BaseURL:    cfg.ServiceURL,
			APIKey:     cfg.ServiceKey,
			HTTPClient: newServiceHTTPClient(),
			UserAgent:  cfg.ServiceUA,
			Language:   analysis.NormalizeLanguage(cfg.LanguageHint),
		}
	}

	if cfg.LLMModel != "" {
		transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			transportCfg.BaseURL = cfg.LLMBaseURL
		}
		transportCfg.HTTPClient = newServiceHTTPClient()
		a.ai = openai.NewClientWithConfig(transportCfg)

		// Quick connectivity check by listing models. Preflight is
		// best-effort: warn and continue, downstream calls surface real errors.
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		models, err := a.ai.ListModels(pctx)
		if err != nil {
			log.Warn().Err(err).Msg("LLM model list failed; continuing")
		} else if len(models.Models) == 0 {
			log.Warn().Msg("LLM returned zero models")
		} else {
			log.Info().Int("count", len(models.Models)).Msg("LLM models available")
		}
	}

	return a, nil
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// Run resolves the working session, executes the wizard from its current
// step, and writes the revised text plus the run report.
func (a *App) Run(ctx context.Context) error {
	wctx, name, err := a.resolveContext()
	if err != nil {
		return err
	}
	if a.cfg.Step != "" {
		step, err := wizard.Parse(a.cfg.Step)
		if err != nil {
			return err
		}
		wctx.Step = step
		if err := a.store.SetStep(wctx.SessionID, string(step)); err != nil {
			return err
		}
	}

	if a.cfg.DryRun {
		return a.dryRun(wctx, name)
	}

	stages, suggest := a.buildProviders(wctx.DocumentID)
	runLog := &orchestrate.Log{}
	runner := &wizard.Runner{
		Store:      a.store,
		Service:    a.service,
		Stages:     stages,
		Suggest:    suggest,
		Log:        runLog,
		ProcessAll: a.cfg.ProcessAll || a.service == nil,
	}

	outcomes, err := runner.Run(ctx, wctx)
	if err != nil {
		return err
	}

	final := ""
	if len(outcomes) > 0 {
		final = outcomes[len(outcomes)-1].Output
	}
	if err := os.WriteFile(a.cfg.OutputPath, []byte(final), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", a.cfg.OutputPath).Msg("wrote revised text")

	rep := report.Report{
		DocumentName: name,
		SessionID:    wctx.SessionID,
		GeneratedAt:  time.Now(),
		Outcomes:     outcomes,
		Entries:      runLog.Entries(),
		FinalText:    final,
	}
	if a.cfg.ReportPath != "" {
		if err := report.WriteMarkdown(rep, a.cfg.ReportPath); err != nil {
			return err
		}
		log.Info().Str("report", a.cfg.ReportPath).Msg("wrote report")
	}
	if a.cfg.OutputPDFPath != "" {
		if err := report.WritePDF(report.Markdown(rep), a.cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("pdf", a.cfg.OutputPDFPath).Msg("wrote pdf report")
	}
	return nil
}

// resolveContext ingests the input file when one is given and no explicit
// session is requested, then resolves the working session.
func (a *App) resolveContext() (wizard.Context, string, error) {
	documentID := a.cfg.DocumentID
	name := ""
	if a.cfg.InputPath != "" && a.cfg.SessionID == "" && documentID == "" {
		file, err := document.Load(a.cfg.InputPath)
		if err != nil {
			return wizard.Context{}, "", err
		}
		doc, err := a.store.SaveDocument(file.Name, file.Text)
		if err != nil {
			return wizard.Context{}, "", err
		}
		documentID = doc.ID
		name = file.Name
		log.Info().Str("document", doc.ID).Str("name", file.Name).Msg("document ingested")
	}
	wctx, err := wizard.ResolveContext(a.store, a.cfg.SessionID, documentID)
	if err != nil {
		return wizard.Context{}, "", err
	}
	if name == "" {
		if doc, err := a.store.Document(wctx.DocumentID); err == nil {
			name = doc.Name
		}
	}
	return wctx, name, nil
}

// buildProviders picks the rewrite backend: the LLM when one is configured,
// the service's stage endpoints otherwise, a no-op as the last resort.
func (a *App) buildProviders(documentID string) (orchestrate.StageProvider, wizard.Suggester) {
	if a.ai != nil {
		var stageCache *cache.StageCache
		if a.cfg.CacheDir != "" {
			stageCache = &cache.StageCache{Dir: filepath.Join(a.cfg.CacheDir, "stages")}
		}
		p := &rewrite.Provider{
			Client:       &llm.OpenAIProvider{Inner: a.ai},
			Model:        a.cfg.LLMModel,
			Cache:        stageCache,
			DocumentID:   documentID,
			LanguageHint: analysis.NormalizeLanguage(a.cfg.LanguageHint),
		}
		return p, p
	}
	if a.service != nil {
		return &wizard.ServiceStages{Client: a.service}, &wizard.ServiceSuggester{Client: a.service, DocumentID: documentID}
	}
	log.Warn().Msg("no LLM and no analysis service configured; paragraphs pass through unchanged")
	return rewrite.NoopProvider{}, nil
}

// dryRun reports what the paragraph step would process without calling any
// backend: block count, title blocks, and the queue selection.
func (a *App) dryRun(wctx wizard.Context, name string) error {
	doc, err := a.store.Document(wctx.DocumentID)
	if err != nil {
		return err
	}
	res := split.Split(doc.Text)
	items, selected := queue.Build(res.Blocks, nil)

	var b strings.Builder
	fmt.Fprintf(&b, "# demark (dry run)\n\n")
	fmt.Fprintf(&b, "Document: %s\nSession: %s\nResume step: %s\n\n", name, wctx.SessionID, wctx.Step)
	fmt.Fprintf(&b, "Blocks: %d\nContent paragraphs: %d\nAuto-selected: %d\n\nTitles:\n", len(res.Blocks), len(items), len(selected))
	for i, block := range res.Blocks {
		if ok, rule := classify.Classify(block); ok {
			line := block
			if nl := strings.IndexByte(line, '\n'); nl >= 0 {
				line = line[:nl]
			}
			fmt.Fprintf(&b, "%d. [%s] %s\n", i, rule, line)
		}
	}
	if err := os.WriteFile(a.cfg.OutputPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", a.cfg.OutputPath).Msg("wrote dry-run output")
	return nil
}
