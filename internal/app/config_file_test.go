package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demark.yaml")
	data := []byte(`
input: draft.txt
output: out.md
service:
  url: http://localhost:8080
  key: secret
llm:
  base: http://localhost:1234/v1
  model: local-model
language: en
cache:
  dir: /tmp/demark-cache
  maxAge: 24h
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Input != "draft.txt" || fc.Output != "out.md" {
		t.Fatalf("paths: got %q %q", fc.Input, fc.Output)
	}
	if fc.Service.URL != "http://localhost:8080" || fc.Service.Key != "secret" {
		t.Fatalf("service: got %+v", fc.Service)
	}
	if fc.LLM.Model != "local-model" {
		t.Fatalf("llm: got %+v", fc.LLM)
	}
	var cfg Config
	ApplyFileConfig(&cfg, fc)
	if cfg.CacheMaxAge != 24*time.Hour {
		t.Fatalf("cache maxAge: got %v", cfg.CacheMaxAge)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	cfg := Config{
		InputPath:  "explicit.txt",
		OutputPath: OutputDefault,
		DBPath:     DBDefault,
	}
	var fc FileConfig
	fc.Input = "from-file.txt"
	fc.Output = "file-out.md"
	fc.DB = "file.db"
	fc.Service.URL = "http://svc"
	ApplyFileConfig(&cfg, fc)

	if cfg.InputPath != "explicit.txt" {
		t.Fatalf("explicit flag must win, got %q", cfg.InputPath)
	}
	if cfg.OutputPath != "file-out.md" {
		t.Fatalf("default flag must yield to file, got %q", cfg.OutputPath)
	}
	if cfg.DBPath != "file.db" {
		t.Fatalf("default db must yield to file, got %q", cfg.DBPath)
	}
	if cfg.ServiceURL != "http://svc" {
		t.Fatalf("unset field must come from file, got %q", cfg.ServiceURL)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(Config{OutputPath: "o.md", DBPath: "d.db"}); err == nil {
		t.Fatal("missing input/session/document must fail")
	}
	if err := ValidateConfig(Config{InputPath: "in.txt", DBPath: "d.db"}); err == nil {
		t.Fatal("missing output must fail")
	}
	if err := ValidateConfig(Config{InputPath: "in.txt", OutputPath: "o.md", DBPath: "d.db", LLMModel: "m"}); err == nil {
		t.Fatal("llm model without base or key must fail")
	}
	ok := Config{SessionID: "s", OutputPath: "o.md", DBPath: "d.db"}
	if err := ValidateConfig(ok); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
