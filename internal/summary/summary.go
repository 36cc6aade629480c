// Package summary runs the acquisition tiers for one request and returns the
// first successful SummaryResult.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gosummary/internal/contents"
	"github.com/hyperifyio/gosummary/internal/llm"
	"github.com/hyperifyio/gosummary/internal/model"
	"github.com/hyperifyio/gosummary/internal/synth"
	"github.com/hyperifyio/gosummary/internal/tier"
)

// MaxReferences bounds each of the URL and ID lists.
const MaxReferences = 5

var (
	// ErrConfiguration means no generative model is configured.
	ErrConfiguration = errors.New("summary service not configured")
	// ErrInvalidRequest covers malformed requests and requests that cannot be
	// served with the configured collaborators.
	ErrInvalidRequest = errors.New("invalid summary request")
	// ErrExhausted means every applicable tier failed.
	ErrExhausted = errors.New("all acquisition strategies failed")
)

// Request is one summary generation request.
type Request struct {
	URLs       []string `json:"urls,omitempty"`
	IDs        []string `json:"ids,omitempty"`
	Query      string   `json:"query,omitempty"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}

// Config lists the collaborators of a Generator. LLM is required; Provider is
// optional and enables the provider tiers.
type Config struct {
	LLM       llm.Client
	Provider  contents.Provider
	Extractor tier.Extractor
	// Synthesizer is built from LLM, Model and MaxTokens when nil.
	Synthesizer tier.Synthesizer
	Model       string
	MaxTokens   int
	// Concurrency bounds parallel extractions in the scrape tier.
	Concurrency int
	// Now is used for GeneratedAt; time.Now when nil.
	Now func() time.Time
}

// Generator is the acquisition orchestrator.
type Generator struct {
	llm     llm.Client
	tiers   []tier.Strategy
	scrape  tier.Strategy
	hasProv bool
	now     func() time.Time
}

// New assembles the tier chain from cfg.
func New(cfg Config) *Generator {
	synthesizer := cfg.Synthesizer
	if synthesizer == nil && cfg.LLM != nil {
		synthesizer = &synth.Synthesizer{Client: cfg.LLM, Model: cfg.Model, MaxTokens: cfg.MaxTokens}
	}
	g := &Generator{llm: cfg.LLM, now: cfg.Now}
	if g.now == nil {
		g.now = time.Now
	}
	if cfg.Provider != nil {
		g.hasProv = true
		g.tiers = append(g.tiers,
			&tier.ProviderSummary{Provider: cfg.Provider},
			&tier.ProviderText{Provider: cfg.Provider, Synthesizer: synthesizer},
		)
	}
	g.scrape = &tier.Scrape{Extractor: cfg.Extractor, Synthesizer: synthesizer, Concurrency: cfg.Concurrency}
	g.tiers = append(g.tiers, g.scrape)
	return g
}

// Tiers returns the ordered strategy names.
func (g *Generator) Tiers() []string {
	names := make([]string, len(g.tiers))
	for i, t := range g.tiers {
		names[i] = t.Name()
	}
	return names
}

// Validate checks a request against the configured collaborators without
// performing any I/O.
func (g *Generator) Validate(req Request) error {
	if g.llm == nil {
		return fmt.Errorf("%w: no generative model API key configured", ErrConfiguration)
	}
	urls, ids := clean(req.URLs), clean(req.IDs)
	if len(urls) == 0 && len(ids) == 0 {
		return fmt.Errorf("%w: either urls or ids must be provided", ErrInvalidRequest)
	}
	if len(urls) > MaxReferences || len(ids) > MaxReferences {
		return fmt.Errorf("%w: at most %d urls and %d ids are allowed", ErrInvalidRequest, MaxReferences, MaxReferences)
	}
	if !g.hasProv && len(urls) == 0 {
		return fmt.Errorf("%w: content provider unavailable and no URLs for scraping fallback", ErrInvalidRequest)
	}
	return nil
}

// Generate runs the tiers in order and returns the first success.
func (g *Generator) Generate(ctx context.Context, req Request) (model.SummaryResult, error) {
	if err := g.Validate(req); err != nil {
		return model.SummaryResult{}, err
	}
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Logger()
	ctx = logger.WithContext(ctx)

	treq := tier.Request{
		IDs:        clean(req.IDs),
		URLs:       clean(req.URLs),
		Query:      strings.TrimSpace(req.Query),
		FocusAreas: clean(req.FocusAreas),
	}
	logger.Info().Int("urls", len(treq.URLs)).Int("ids", len(treq.IDs)).Bool("provider", g.hasProv).Msg("generating summary")

	var failures []string
	for _, t := range g.tiers {
		if t == g.scrape && len(treq.URLs) == 0 {
			failures = append(failures, t.Name()+": no URLs available for scraping")
			continue
		}
		if err := ctx.Err(); err != nil {
			return model.SummaryResult{}, err
		}
		started := time.Now()
		res, err := t.Attempt(ctx, treq)
		if err != nil {
			logger.Warn().Err(err).Str("tier", t.Name()).Dur("took", time.Since(started)).Msg("tier failed")
			failures = append(failures, err.Error())
			continue
		}
		res.RequestID = requestID
		res.GeneratedAt = g.now().UTC()
		logEvent(logger.Info(), res).Str("tier", t.Name()).Dur("took", time.Since(started)).Msg("summary generated")
		return res, nil
	}
	return model.SummaryResult{}, exhausted(treq, failures)
}

func exhausted(req tier.Request, failures []string) error {
	var sb strings.Builder
	sb.WriteString("could not process the following sources")
	if len(req.URLs) == 0 {
		sb.WriteString(" (no URLs were available for scraping)")
	}
	sb.WriteString(":")
	refs := req.URLs
	if len(refs) == 0 {
		refs = req.IDs
	}
	for _, r := range refs {
		sb.WriteString("\n- ")
		sb.WriteString(r)
	}
	if len(failures) > 0 {
		sb.WriteString("\n\nAttempts:\n")
		sb.WriteString(strings.Join(failures, "\n"))
	}
	return fmt.Errorf("%w: %s", ErrExhausted, sb.String())
}

func logEvent(e *zerolog.Event, res model.SummaryResult) *zerolog.Event {
	return e.Str("generated_by", res.GeneratedBy).
		Int("sources_ok", res.SucceededCount()).
		Int("sources_total", len(res.Sources)).
		Bool("degraded", res.Degraded)
}

func clean(items []string) []string {
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
