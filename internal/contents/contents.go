// Package contents is a client for an Exa-compatible content provider that
// returns summaries or cleaned page text for ids and URLs.
package contents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/gosummary/internal/budget"
)

// DefaultBaseURL is the public Exa API.
const DefaultBaseURL = "https://api.exa.ai"

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 30 * time.Second

// ErrPaymentRequired is returned when the provider answers 402.
var ErrPaymentRequired = errors.New("content provider: payment required")

// StatusError reports any other non-200 provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content provider status %d: %s", e.StatusCode, e.Body)
}

// Result is one provider record. Summary or Text is set depending on the call.
type Result struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Text    string `json:"text"`
}

// Provider is the capability the acquisition tiers need.
type Provider interface {
	Summaries(ctx context.Context, ids, urls []string, query string) ([]Result, error)
	Texts(ctx context.Context, ids, urls []string, maxChars int) ([]Result, error)
}

// Client implements Provider over HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func (c *Client) Name() string { return "exa" }

type summaryOptions struct {
	Query string `json:"query"`
}

type textOptions struct {
	MaxCharacters int `json:"maxCharacters"`
}

type contentsRequest struct {
	IDs     []string        `json:"ids,omitempty"`
	URLs    []string        `json:"urls,omitempty"`
	Summary *summaryOptions `json:"summary,omitempty"`
	Text    *textOptions    `json:"text,omitempty"`
}

type contentsResponse struct {
	Results []Result `json:"results"`
}

// Summaries asks the provider for a query-directed summary per reference.
// When ids is non-empty it is sent instead of urls.
func (c *Client) Summaries(ctx context.Context, ids, urls []string, query string) ([]Result, error) {
	req := contentsRequest{Summary: &summaryOptions{Query: query}}
	setTargets(&req, ids, urls)
	return c.post(ctx, req)
}

// Texts asks the provider for cleaned page text capped at maxChars.
func (c *Client) Texts(ctx context.Context, ids, urls []string, maxChars int) ([]Result, error) {
	if maxChars <= 0 {
		maxChars = budget.ProviderTextChars
	}
	req := contentsRequest{Text: &textOptions{MaxCharacters: maxChars}}
	setTargets(&req, ids, urls)
	return c.post(ctx, req)
}

func setTargets(req *contentsRequest, ids, urls []string) {
	if len(ids) > 0 {
		req.IDs = ids
		return
	}
	req.URLs = urls
}

func (c *Client) post(ctx context.Context, body contentsRequest) ([]Result, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("missing content provider api key")
	}
	if len(body.IDs) == 0 && len(body.URLs) == 0 {
		return nil, fmt.Errorf("content provider: no ids or urls")
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := strings.TrimRight(base, "/") + "/contents"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content provider request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		zerolog.Ctx(ctx).Warn().Str("provider", c.Name()).Int("status", resp.StatusCode).Msg("content provider credits exhausted")
		return nil, ErrPaymentRequired
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var cr contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode content provider response: %w", err)
	}
	out := make([]Result, 0, len(cr.Results))
	for _, r := range cr.Results {
		r.Title = strings.TrimSpace(r.Title)
		r.URL = strings.TrimSpace(r.URL)
		out = append(out, r)
	}
	return out, nil
}
