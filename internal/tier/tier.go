// Package tier holds the interchangeable acquisition strategies. Each one
// turns a set of references into a SummaryResult or fails with ErrTierFailed.
package tier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/gosummary/internal/contents"
	"github.com/hyperifyio/gosummary/internal/model"
	"github.com/hyperifyio/gosummary/internal/synth"
)

// Values stamped into SummaryResult.GeneratedBy.
const (
	ProviderSummaryName = "exa-summary-api"
	ProviderTextName    = "exa-text-api-claude"
	ScrapeName          = "web-scraping-claude"
)

// ErrTierFailed wraps every strategy failure. The orchestrator moves on to the
// next tier when it sees it.
var ErrTierFailed = errors.New("tier failed")

// Request is the input shared by all tiers.
type Request struct {
	IDs        []string
	URLs       []string
	Query      string
	FocusAreas []string
}

// ProviderRefs returns the references sent to the content provider: the IDs
// when present, otherwise the URLs.
func (r Request) ProviderRefs() []model.Reference {
	if len(r.IDs) > 0 {
		refs := make([]model.Reference, len(r.IDs))
		for i, id := range r.IDs {
			refs[i] = model.Reference{ID: id}
		}
		return refs
	}
	refs := make([]model.Reference, len(r.URLs))
	for i, u := range r.URLs {
		refs[i] = model.Reference{URL: u}
	}
	return refs
}

// Strategy is one acquisition tier.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) (model.SummaryResult, error)
}

// Synthesizer is the synthesis capability used by tiers B and C.
type Synthesizer interface {
	Synthesize(ctx context.Context, in synth.Input) (synth.Output, error)
}

func failf(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrTierFailed, name, fmt.Sprintf(format, args...))
}

// SummaryQuery renders the directive passed to the provider's summary call.
func SummaryQuery(query string, focusAreas []string) string {
	parts := []string{"Create a comprehensive summary"}
	if q := strings.TrimSpace(query); q != "" {
		parts = append(parts, "about: "+q)
	}
	var focus []string
	for _, f := range focusAreas {
		if f = strings.TrimSpace(f); f != "" {
			focus = append(focus, f)
		}
	}
	if len(focus) > 0 {
		parts = append(parts, "focusing on: "+strings.Join(focus, ", "))
	}
	return strings.Join(parts, " ")
}

// matchResults pairs each reference with the provider result describing it.
// Results are matched by ID, then by URL; leftover references are then paired
// in order with the results nothing claimed, since providers may rewrite URLs
// and reorder their answers. Unmatched references get a nil entry.
func matchResults(refs []model.Reference, results []contents.Result) []*contents.Result {
	out := make([]*contents.Result, len(refs))
	used := make([]bool, len(results))
	byID := make(map[string]int, len(results))
	byURL := make(map[string]int, len(results))
	for i, r := range results {
		if r.ID != "" {
			if _, dup := byID[r.ID]; !dup {
				byID[r.ID] = i
			}
		}
		if u := normalizeURL(r.URL); u != "" {
			if _, dup := byURL[u]; !dup {
				byURL[u] = i
			}
		}
	}
	for i, ref := range refs {
		idx, ok := -1, false
		if ref.ID != "" {
			idx, ok = byID[ref.ID]
		} else {
			idx, ok = byURL[normalizeURL(ref.URL)]
		}
		if ok && !used[idx] {
			used[idx] = true
			out[i] = &results[idx]
		}
	}
	next := 0
	for i := range refs {
		if out[i] != nil {
			continue
		}
		for next < len(results) && used[next] {
			next++
		}
		if next == len(results) {
			break
		}
		used[next] = true
		out[i] = &results[next]
	}
	return out
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func sourceFor(ref model.Reference, res *contents.Result, ok bool) model.SourceInfo {
	info := model.SourceInfo{URL: ref.URL, ID: ref.ID, ScrapedSuccessfully: ok}
	if res != nil {
		if res.URL != "" {
			info.URL = res.URL
		}
		info.Title = res.Title
	}
	return info
}

func describeRefs(refs []model.Reference) string {
	lines := make([]string, len(refs))
	for i, r := range refs {
		lines[i] = "- " + r.Key()
	}
	return strings.Join(lines, "\n")
}
