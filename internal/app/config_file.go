package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
	Input     string `yaml:"input" json:"input"`
	Output    string `yaml:"output" json:"output"`
	Report    string `yaml:"report" json:"report"`
	ReportPDF string `yaml:"reportPDF" json:"reportPDF"`

	Service struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
		UA  string `yaml:"ua" json:"ua"`
	} `yaml:"service" json:"service"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Language string `yaml:"language" json:"language"`

	Session struct {
		ID       string `yaml:"id" json:"id"`
		Document string `yaml:"document" json:"document"`
		Step     string `yaml:"step" json:"step"`
	} `yaml:"session" json:"session"`

	ProcessAll bool `yaml:"processAll" json:"processAll"`
	DryRun     bool `yaml:"dryRun" json:"dryRun"`
	Verbose    bool `yaml:"verbose" json:"verbose"`

	DB string `yaml:"db" json:"db"`

	Cache struct {
		Dir    string `yaml:"dir" json:"dir"`
		MaxAge string `yaml:"maxAge" json:"maxAge"`
		Clear  bool   `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// Defaults shared between flag parsing and the file-config overlay. A flag
// still holding its default can be overridden by the file; an explicitly set
// flag wins.
const (
	OutputDefault   = "revised.md"
	ReportDefault   = "report.md"
	DBDefault       = "demark.db"
	CacheDirDefault = ".demark-cache"
)

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg. Flags should already have been parsed; this
// function lets file config supply defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}

	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if (cfg.OutputPath == "" || cfg.OutputPath == OutputDefault) && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if (cfg.ReportPath == "" || cfg.ReportPath == ReportDefault) && fc.Report != "" {
		cfg.ReportPath = fc.Report
	}
	if cfg.OutputPDFPath == "" && fc.ReportPDF != "" {
		cfg.OutputPDFPath = fc.ReportPDF
	}

	if cfg.ServiceURL == "" && fc.Service.URL != "" {
		cfg.ServiceURL = fc.Service.URL
	}
	if cfg.ServiceKey == "" && fc.Service.Key != "" {
		cfg.ServiceKey = fc.Service.Key
	}
	if cfg.ServiceUA == "" && fc.Service.UA != "" {
		cfg.ServiceUA = fc.Service.UA
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if cfg.LanguageHint == "" && fc.Language != "" {
		cfg.LanguageHint = fc.Language
	}

	if cfg.SessionID == "" && fc.Session.ID != "" {
		cfg.SessionID = fc.Session.ID
	}
	if cfg.DocumentID == "" && fc.Session.Document != "" {
		cfg.DocumentID = fc.Session.Document
	}
	if cfg.Step == "" && fc.Session.Step != "" {
		cfg.Step = fc.Session.Step
	}

	if !cfg.ProcessAll && fc.ProcessAll {
		cfg.ProcessAll = true
	}
	if !cfg.DryRun && fc.DryRun {
		cfg.DryRun = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	if (cfg.DBPath == "" || cfg.DBPath == DBDefault) && fc.DB != "" {
		cfg.DBPath = fc.DB
	}
	if (cfg.CacheDir == "" || cfg.CacheDir == CacheDirDefault) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge != "" {
		if d, err := time.ParseDuration(fc.Cache.MaxAge); err == nil && d > 0 {
			cfg.CacheMaxAge = d
		}
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if trim(cfg.InputPath) == "" && trim(cfg.SessionID) == "" && trim(cfg.DocumentID) == "" {
		return errors.New("config: an input file, a session id, or a document id is required")
	}
	if trim(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if trim(cfg.DBPath) == "" {
		return errors.New("config: db path is required")
	}
	if trim(cfg.LLMModel) != "" && trim(cfg.LLMBaseURL) == "" && trim(cfg.LLMAPIKey) == "" {
		return errors.New("config: llm.model is set but neither llm.base nor llm.key is configured")
	}
	return nil
}

func trim(s string) string {
	i := 0
	j := len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\n' || s[j-1] == '\r') {
		j--
	}
	return s[i:j]
}
