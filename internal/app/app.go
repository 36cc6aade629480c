package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gosummary/internal/api"
	"github.com/hyperifyio/gosummary/internal/contents"
	"github.com/hyperifyio/gosummary/internal/extract"
	"github.com/hyperifyio/gosummary/internal/fetch"
	"github.com/hyperifyio/gosummary/internal/llm"
	"github.com/hyperifyio/gosummary/internal/model"
	"github.com/hyperifyio/gosummary/internal/summary"
)

// App wires configuration into the summary generator and its surfaces.
type App struct {
	cfg       Config
	generator *summary.Generator
	llmReady  bool
	provider  bool
}

// New builds every collaborator from cfg. Missing API keys leave the
// corresponding collaborator absent rather than failing construction.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	providerTimeout := cfg.ProviderTimeout
	if providerTimeout <= 0 {
		providerTimeout = contents.DefaultTimeout
	}

	client, err := llm.New(ctx, llm.Options{
		Provider:   cfg.LLMProvider,
		Model:      cfg.LLMModel,
		APIKey:     cfg.LLMAPIKey(),
		BaseURL:    cfg.LLMBaseURL,
		HTTPClient: newHTTPClient(2 * time.Minute),
	})
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	scfg := summary.Config{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Concurrency: cfg.MaxConcurrentFetches,
		Extractor: &extract.Extractor{Fetcher: &fetch.Client{
			UserAgent:         cfg.UserAgent,
			PerRequestTimeout: cfg.FetchTimeout,
			MaxConcurrent:     cfg.MaxConcurrentFetches,
		}},
	}
	if client != nil {
		scfg.LLM = client
	} else {
		log.Warn().Str("provider", llm.NormalizeProvider(cfg.LLMProvider)).Msg("no LLM API key configured; summaries will be rejected")
	}
	if strings.TrimSpace(cfg.ExaAPIKey) != "" {
		scfg.Provider = &contents.Client{
			BaseURL:    cfg.ExaBaseURL,
			APIKey:     cfg.ExaAPIKey,
			HTTPClient: newHTTPClient(providerTimeout),
			Timeout:    providerTimeout,
		}
	} else {
		log.Info().Msg("no content provider key; only the scraping tier is available")
	}

	a := &App{
		cfg:       cfg,
		generator: summary.New(scfg),
		llmReady:  client != nil,
		provider:  scfg.Provider != nil,
	}
	log.Debug().Strs("tiers", a.generator.Tiers()).Str("model", cfg.EffectiveModel()).Msg("app initialized")
	return a, nil
}

// Generate runs one summary request.
func (a *App) Generate(ctx context.Context, req summary.Request) (model.SummaryResult, error) {
	return a.generator.Generate(ctx, req)
}

// Info describes the running configuration.
func (a *App) Info() api.Info {
	return api.Info{
		Version:         BuildVersion,
		LLMProvider:     llm.NormalizeProvider(a.cfg.LLMProvider),
		LLMModel:        a.cfg.EffectiveModel(),
		LLMConfigured:   a.llmReady,
		ProviderEnabled: a.provider,
	}
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.generator, a.Info()).Router()
}

// Serve runs the HTTP API on cfg.HTTPAddr until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.HTTPAddr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
