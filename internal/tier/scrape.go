package tier

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/gosummary/internal/model"
	"github.com/hyperifyio/gosummary/internal/synth"
)

// DefaultScrapeConcurrency bounds in-flight extractions per request.
const DefaultScrapeConcurrency = 5

// Extractor fetches and extracts one URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (model.ExtractedContent, error)
}

// Scrape extracts every URL directly and synthesizes the usable ones.
type Scrape struct {
	Extractor   Extractor
	Synthesizer Synthesizer
	// Concurrency overrides DefaultScrapeConcurrency when positive.
	Concurrency int
}

func (t *Scrape) Name() string { return ScrapeName }

type scrapeSlot struct {
	content model.ExtractedContent
	err     error
}

func (t *Scrape) Attempt(ctx context.Context, req Request) (model.SummaryResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("tier", t.Name()).Logger()
	if t.Extractor == nil || t.Synthesizer == nil {
		return model.SummaryResult{}, failf(t.Name(), "not configured")
	}
	if len(req.URLs) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "no URLs to scrape")
	}

	limit := t.Concurrency
	if limit <= 0 {
		limit = DefaultScrapeConcurrency
	}
	slots := make([]scrapeSlot, len(req.URLs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range req.URLs {
		g.Go(func() error {
			c, err := t.Extractor.Extract(ctx, u)
			if err == nil && !c.Usable() {
				err = failf(t.Name(), "insufficient content from %s", u)
			}
			slots[i] = scrapeSlot{content: c, err: err}
			return nil
		})
	}
	_ = g.Wait()

	sources := make([]model.SourceInfo, len(req.URLs))
	var usable []model.ExtractedContent
	refs := make([]model.Reference, len(req.URLs))
	for i, u := range req.URLs {
		refs[i] = model.Reference{URL: u}
		s := slots[i]
		if s.err != nil {
			sources[i] = model.SourceInfo{URL: u}
			continue
		}
		sources[i] = model.SourceInfo{URL: u, Title: s.content.Title, ScrapedSuccessfully: true}
		usable = append(usable, s.content)
	}
	logger.Info().Int("succeeded", len(usable)).Int("total", len(req.URLs)).Msg("scraping finished")
	if len(usable) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "could not scrape content from any URL; failed URLs:\n%s", describeRefs(refs))
	}

	out, err := t.Synthesizer.Synthesize(ctx, synth.Input{Sources: usable, Query: req.Query, FocusAreas: req.FocusAreas})
	if err != nil {
		return model.SummaryResult{}, failf(t.Name(), "synthesis: %v", err)
	}
	return model.SummaryResult{
		Summary:      out.Summary,
		KeyPoints:    keyPoints(out.KeyPoints),
		Sources:      sources,
		QueryContext: req.Query,
		GeneratedBy:  t.Name(),
		Degraded:     out.Degraded,
	}, nil
}
