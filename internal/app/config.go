package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	InputPath     string
	OutputPath    string
	ReportPath    string
	OutputPDFPath string

	// Analysis service
	ServiceURL string
	ServiceKey string
	ServiceUA  string

	// LLM (optional; when set, rewrites run through the LLM instead of the
	// service's stage endpoints)
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	LanguageHint string

	// Session selection
	SessionID  string
	DocumentID string
	Step       string

	// Behavior
	ProcessAll bool
	DryRun     bool
	Verbose    bool

	DBPath      string
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool
}
