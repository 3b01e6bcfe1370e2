package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/demarklabs/demark/internal/app"
	"github.com/demarklabs/demark/internal/session"
	"github.com/demarklabs/demark/internal/wizard"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load dotenv before flag registration so env-backed flag defaults see it.
	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("env file load failed")
	}

	var (
		configPath  string
		inputPath   string
		outputPath  string
		reportPath  string
		reportPDF   string
		serviceURL  string
		serviceKey  string
		serviceUA   string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		language    string
		sessionID   string
		documentID  string
		step        string
		processAll  bool
		dryRun      bool
		verbose     bool
		dbPath      string
		cacheDir    string
		cacheMaxAge time.Duration
		cacheClear  bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("DEMARK_CONFIG"), "Path to YAML or JSON config file")
	flag.StringVar(&inputPath, "input", "", "Path to the document to analyze (.txt, .md, .html, .pdf)")
	flag.StringVar(&outputPath, "output", app.OutputDefault, "Path to write the revised text")
	flag.StringVar(&reportPath, "report", app.ReportDefault, "Path to write the Markdown run report")
	flag.StringVar(&reportPDF, "report.pdf", "", "Optional path for a PDF copy of the run report")
	flag.StringVar(&serviceURL, "service.url", os.Getenv("ANALYSIS_URL"), "Analysis service base URL")
	flag.StringVar(&serviceKey, "service.key", os.Getenv("ANALYSIS_KEY"), "Analysis service API key (optional)")
	flag.StringVar(&serviceUA, "service.ua", "demark/1.0 (+https://github.com/demarklabs/demark)", "Custom User-Agent for analysis service requests")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name; when set, rewrites run through the LLM")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.StringVar(&language, "lang", "", "Optional language hint, e.g. 'en' or 'fi'")
	flag.StringVar(&sessionID, "session", os.Getenv("DEMARK_SESSION"), "Resume an existing session by id")
	flag.StringVar(&documentID, "document", "", "Start a new session over an already ingested document id")
	flag.StringVar(&step, "step", "", "Start from this wizard step (document, section, paragraph, sentence, lexical)")
	flag.BoolVar(&processAll, "all", false, "Process every content paragraph, not only the risk-selected ones")
	flag.BoolVar(&dryRun, "dry-run", false, "Show the block split and queue plan without calling any backend")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.StringVar(&dbPath, "db", app.DBDefault, "Path to the session database")
	flag.StringVar(&cacheDir, "cache.dir", app.CacheDirDefault, "Cache directory path")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		ReportPath:    reportPath,
		OutputPDFPath: reportPDF,
		ServiceURL:    serviceURL,
		ServiceKey:    serviceKey,
		ServiceUA:     serviceUA,
		LLMBaseURL:    llmBaseURL,
		LLMModel:      llmModel,
		LLMAPIKey:     llmKey,
		LanguageHint:  language,
		SessionID:     sessionID,
		DocumentID:    documentID,
		Step:          step,
		ProcessAll:    processAll,
		DryRun:        dryRun,
		Verbose:       verbose,
		DBPath:        dbPath,
		CacheDir:      cacheDir,
		CacheMaxAge:   cacheMaxAge,
		CacheClear:    cacheClear,
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("config", configPath).Msg("config file load failed")
			os.Exit(2)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 for unusable input (missing document or
		// session), 1 for everything else.
		if errors.Is(err, session.ErrDocumentNotFound) ||
			errors.Is(err, session.ErrSessionNotFound) ||
			errors.Is(err, wizard.ErrNoSession) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
