package tier

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/gosummary/internal/budget"
	"github.com/hyperifyio/gosummary/internal/contents"
	"github.com/hyperifyio/gosummary/internal/model"
	"github.com/hyperifyio/gosummary/internal/synth"
)

// ProviderSummary asks the content provider for ready-made summaries.
type ProviderSummary struct {
	Provider contents.Provider
}

func (t *ProviderSummary) Name() string { return ProviderSummaryName }

func (t *ProviderSummary) Attempt(ctx context.Context, req Request) (model.SummaryResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("tier", t.Name()).Logger()
	refs := req.ProviderRefs()
	if t.Provider == nil {
		return model.SummaryResult{}, failf(t.Name(), "no content provider")
	}
	if len(refs) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "no references")
	}
	ids, urls := splitRefs(refs)
	results, err := t.Provider.Summaries(ctx, ids, urls, SummaryQuery(req.Query, req.FocusAreas))
	if err != nil {
		return model.SummaryResult{}, failf(t.Name(), "%v", err)
	}
	logger.Info().Int("results", len(results)).Msg("provider returned summaries")
	if len(results) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "no results")
	}

	matched := matchResults(refs, results)
	sources := make([]model.SourceInfo, len(refs))
	var summaries []string
	for i, ref := range refs {
		res := matched[i]
		ok := res != nil && strings.TrimSpace(res.Summary) != ""
		if ok {
			summaries = append(summaries, strings.TrimSpace(res.Summary))
		}
		sources[i] = sourceFor(ref, res, ok)
	}
	if len(summaries) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "no summaries in response")
	}
	return model.SummaryResult{
		Summary:      strings.Join(summaries, "\n\n"),
		KeyPoints:    []string{},
		Sources:      sources,
		QueryContext: req.Query,
		GeneratedBy:  t.Name(),
	}, nil
}

// ProviderText fetches cleaned page text from the content provider and
// synthesizes it.
type ProviderText struct {
	Provider    contents.Provider
	Synthesizer Synthesizer
}

func (t *ProviderText) Name() string { return ProviderTextName }

func (t *ProviderText) Attempt(ctx context.Context, req Request) (model.SummaryResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("tier", t.Name()).Logger()
	refs := req.ProviderRefs()
	if t.Provider == nil || t.Synthesizer == nil {
		return model.SummaryResult{}, failf(t.Name(), "not configured")
	}
	if len(refs) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "no references")
	}
	ids, urls := splitRefs(refs)
	results, err := t.Provider.Texts(ctx, ids, urls, budget.ProviderTextChars)
	if err != nil {
		return model.SummaryResult{}, failf(t.Name(), "%v", err)
	}
	logger.Info().Int("results", len(results)).Msg("provider returned text")
	if len(results) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "no results")
	}

	matched := matchResults(refs, results)
	sources := make([]model.SourceInfo, len(refs))
	var usable []model.ExtractedContent
	for i, ref := range refs {
		res := matched[i]
		ok := res != nil && model.Usable(res.Text)
		sources[i] = sourceFor(ref, res, ok)
		if ok {
			usable = append(usable, model.ExtractedContent{
				URL:    sources[i].URL,
				Title:  res.Title,
				Body:   res.Text,
				Length: budget.RuneLen(res.Text),
			})
		}
	}
	if len(usable) == 0 {
		return model.SummaryResult{}, failf(t.Name(), "no usable text in response")
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

func splitRefs(refs []model.Reference) (ids, urls []string) {
	for _, r := range refs {
		if r.ID != "" {
			ids = append(ids, r.ID)
		} else {
			urls = append(urls, r.URL)
		}
	}
	return ids, urls
}

func keyPoints(points []string) []string {
	if points == nil {
		return []string{}
	}
	return points
}
