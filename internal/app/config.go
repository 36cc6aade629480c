package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/gosummary/internal/llm"
)

// Config holds runtime configuration for the application.
type Config struct {
	// LLM
	LLMProvider     string `env:"LLM_PROVIDER"`
	LLMModel        string `env:"LLM_MODEL"`
	LLMBaseURL      string `env:"LLM_BASE_URL"`
	LLMMaxTokens    int    `env:"LLM_MAX_TOKENS"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`

	// Content provider
	ExaAPIKey       string        `env:"EXA_API_KEY"`
	ExaBaseURL      string        `env:"EXA_BASE_URL"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT"`

	// Fetching
	FetchTimeout         time.Duration `env:"FETCH_TIMEOUT"`
	MaxConcurrentFetches int           `env:"MAX_CONCURRENT_FETCHES"`
	UserAgent            string        `env:"USER_AGENT"`

	// Serving
	HTTPAddr string `env:"HTTP_ADDR"`

	Verbose bool `env:"VERBOSE"`
}

// DefaultConfig returns the values used before any file, env or flag layer.
func DefaultConfig() Config {
	return Config{
		LLMProvider:          llm.ProviderAnthropic,
		LLMMaxTokens:         2000,
		ProviderTimeout:      30 * time.Second,
		FetchTimeout:         15 * time.Second,
		MaxConcurrentFetches: 5,
		HTTPAddr:             ":8000",
	}
}

// LLMAPIKey returns the key matching the selected provider.
func (c Config) LLMAPIKey() string {
	switch llm.NormalizeProvider(c.LLMProvider) {
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	case llm.ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.AnthropicAPIKey
	}
}

// EffectiveModel returns the configured model or the provider default.
func (c Config) EffectiveModel() string {
	if strings.TrimSpace(c.LLMModel) != "" {
		return c.LLMModel
	}
	return llm.DefaultModels[llm.NormalizeProvider(c.LLMProvider)]
}

// ValidateConfig performs minimal schema validation. Missing API keys are not
// an error here: the service starts and reports itself unconfigured.
func ValidateConfig(cfg Config) error {
	switch llm.NormalizeProvider(cfg.LLMProvider) {
	case llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("config: unknown llm provider %q", cfg.LLMProvider)
	}
	if cfg.LLMMaxTokens < 0 || cfg.MaxConcurrentFetches < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.FetchTimeout < 0 || cfg.ProviderTimeout < 0 {
		return errors.New("config: negative timeouts are not allowed")
	}
	return nil
}
