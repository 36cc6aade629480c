package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile_YAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "gosummary.yaml")
	content := `
llm:
  provider: openai
  model: gpt-test
  base: http://localhost:1234/v1
  keys:
    openai: sk-test
contents:
  key: exa-key
  timeout: 12s
fetch:
  maxConcurrent: 2
server:
  addr: ":9999"
verbose: true
`
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)

	if cfg.LLMProvider != "openai" || cfg.LLMModel != "gpt-test" || cfg.LLMAPIKey() != "sk-test" {
		t.Fatalf("llm section not applied: %+v", cfg)
	}
	if cfg.ExaAPIKey != "exa-key" || cfg.ProviderTimeout != 12*time.Second {
		t.Fatalf("contents section not applied: %+v", cfg)
	}
	if cfg.MaxConcurrentFetches != 2 || cfg.HTTPAddr != ":9999" || !cfg.Verbose {
		t.Fatalf("fetch/server section not applied: %+v", cfg)
	}
	if cfg.FetchTimeout != 15*time.Second || cfg.LLMMaxTokens != 2000 {
		t.Fatalf("unset file values must keep defaults: %+v", cfg)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "gosummary.json")
	if err := os.WriteFile(p, []byte(`{"llm":{"provider":"anthropic","keys":{"anthropic":"a"}}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if fc.LLM.Keys.Anthropic != "a" {
		t.Fatalf("unexpected file config: %+v", fc)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(p, []byte("llm: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfigFile(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	cfg.LLMProvider = "mystery"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	cfg = DefaultConfig()
	cfg.MaxConcurrentFetches = -1
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected negative limit error")
	}
	cfg = DefaultConfig()
	cfg.FetchTimeout = -time.Second
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected negative timeout error")
	}
}

func TestLLMAPIKeyFollowsProvider(t *testing.T) {
	cfg := Config{AnthropicAPIKey: "a", OpenAIAPIKey: "o", GeminiAPIKey: "g"}
	for provider, want := range map[string]string{"": "a", "claude": "a", "openai": "o", "GEMINI": "g"} {
		cfg.LLMProvider = provider
		if got := cfg.LLMAPIKey(); got != want {
			t.Errorf("provider %q: got %q want %q", provider, got, want)
		}
	}
}
