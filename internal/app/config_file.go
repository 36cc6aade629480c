package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	LLM struct {
		Provider  string `yaml:"provider" json:"provider"`
		Model     string `yaml:"model" json:"model"`
		BaseURL   string `yaml:"base" json:"base"`
		MaxTokens int    `yaml:"maxTokens" json:"maxTokens"`
		Keys      struct {
			Anthropic string `yaml:"anthropic" json:"anthropic"`
			OpenAI    string `yaml:"openai" json:"openai"`
			Gemini    string `yaml:"gemini" json:"gemini"`
		} `yaml:"keys" json:"keys"`
	} `yaml:"llm" json:"llm"`

	Contents struct {
		Key     string        `yaml:"key" json:"key"`
		BaseURL string        `yaml:"base" json:"base"`
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"contents" json:"contents"`

	Fetch struct {
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
		UserAgent     string        `yaml:"userAgent" json:"userAgent"`
	} `yaml:"fetch" json:"fetch"`

	Server struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"server" json:"server"`

	Verbose bool `yaml:"verbose" json:"verbose"`
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

// ApplyFileConfig overlays every value the file sets onto cfg. It runs right
// after DefaultConfig, so file values replace defaults and are in turn
// replaced by env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString(&cfg.LLMProvider, fc.LLM.Provider)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setInt(&cfg.LLMMaxTokens, fc.LLM.MaxTokens)
	setString(&cfg.AnthropicAPIKey, fc.LLM.Keys.Anthropic)
	setString(&cfg.OpenAIAPIKey, fc.LLM.Keys.OpenAI)
	setString(&cfg.GeminiAPIKey, fc.LLM.Keys.Gemini)

	setString(&cfg.ExaAPIKey, fc.Contents.Key)
	setString(&cfg.ExaBaseURL, fc.Contents.BaseURL)
	setDuration(&cfg.ProviderTimeout, fc.Contents.Timeout)

	setDuration(&cfg.FetchTimeout, fc.Fetch.Timeout)
	setInt(&cfg.MaxConcurrentFetches, fc.Fetch.MaxConcurrent)
	setString(&cfg.UserAgent, fc.Fetch.UserAgent)

	setString(&cfg.HTTPAddr, fc.Server.Addr)
	if fc.Verbose {
		cfg.Verbose = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
