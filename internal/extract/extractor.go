package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/gosummary/internal/budget"
	"github.com/hyperifyio/gosummary/internal/fetch"
	"github.com/hyperifyio/gosummary/internal/model"
)

var (
	// ErrExtraction marks any per-source failure. Callers treat it as "this
	// source did not contribute" and never surface it directly.
	ErrExtraction = errors.New("extraction failed")
	// ErrContentTooShort is wrapped together with ErrExtraction when the page
	// yields fewer than model.MinContentChars characters.
	ErrContentTooShort = errors.New("content too short")
)

// Getter is the fetch capability the extractor needs.
type Getter interface {
	Get(ctx context.Context, url string) (fetch.Result, error)
}

// Extractor fetches a single URL and reduces it to bounded plain text.
type Extractor struct {
	Fetcher Getter
	// Selectors overrides ContentSelectors when non-empty.
	Selectors []string
}

// Extract returns usable content for url or an error wrapping ErrExtraction.
// Network and parse errors are logged here.
func (e *Extractor) Extract(ctx context.Context, url string) (model.ExtractedContent, error) {
	if e == nil || e.Fetcher == nil {
		return model.ExtractedContent{}, fmt.Errorf("%w: extractor not configured", ErrExtraction)
	}
	logger := zerolog.Ctx(ctx)
	res, err := e.Fetcher.Get(ctx, url)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("fetch failed")
		return model.ExtractedContent{}, fmt.Errorf("%w: fetch %s: %w", ErrExtraction, url, err)
	}

	selectors := e.Selectors
	if len(selectors) == 0 {
		selectors = ContentSelectors
	}
	doc := fromHTML(res.Body, selectors)
	if doc.Root == "" {
		logger.Warn().Str("url", url).Msg("no content root")
		return model.ExtractedContent{}, fmt.Errorf("%w: %s: no content root", ErrExtraction, url)
	}
	if n := budget.RuneLen(doc.Text); n < model.MinContentChars {
		logger.Warn().Str("url", url).Int("chars", n).Msg("content too short")
		return model.ExtractedContent{}, fmt.Errorf("%w: %s: %w (%d chars)", ErrExtraction, url, ErrContentTooShort, n)
	}

	body := budget.TruncateRunes(doc.Text, budget.MaxExtractedChars)
	length := budget.RuneLen(body)
	logger.Info().Str("url", url).Int("chars", length).Str("root", doc.Root).Int("attempts", res.Attempts).Msg("extracted content")
	return model.ExtractedContent{
		URL:    url,
		Title:  doc.Title,
		Body:   body,
		Length: length,
	}, nil
}
