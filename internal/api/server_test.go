package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/gosummary/internal/model"
	"github.com/hyperifyio/gosummary/internal/summary"
)

type stubGenerator struct {
	res  model.SummaryResult
	err  error
	last summary.Request
}

func (s *stubGenerator) Generate(_ context.Context, req summary.Request) (model.SummaryResult, error) {
	s.last = req
	return s.res, s.err
}

func newTestServer(t *testing.T, g Generator, info Info) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(g, info).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, Info{Version: "1.2.3", LLMProvider: "anthropic", LLMModel: "m", LLMConfigured: true, ProviderEnabled: true})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "healthy", payload["status"])
	require.Equal(t, "gosummary", payload["app_name"])
	require.Equal(t, "1.2.3", payload["version"])
	require.Equal(t, true, payload["exa_api_connected"])
	require.Equal(t, "anthropic", payload["llm_provider"])
}

func TestHealth_DegradedWithoutModel(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, Info{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "degraded", payload["status"])
}

func TestGenerateSummary_Success(t *testing.T) {
	g := &stubGenerator{res: model.SummaryResult{
		Summary:     "S",
		KeyPoints:   []string{"a"},
		Sources:     []model.SourceInfo{{URL: "https://a", Title: "A", ScrapedSuccessfully: true}},
		GeneratedBy: "web-scraping-claude",
		GeneratedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	srv := newTestServer(t, g, Info{})

	body := `{"urls": ["https://a"], "query": "topic", "focus_areas": ["cost"]}`
	resp, err := http.Post(srv.URL+"/api/generate-summary", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"https://a"}, g.last.URLs)
	require.Equal(t, "topic", g.last.Query)
	require.Equal(t, []string{"cost"}, g.last.FocusAreas)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "S", payload["summary"])
	require.Equal(t, "web-scraping-claude", payload["generated_by"])
	sources, ok := payload["sources"].([]any)
	require.True(t, ok)
	require.Len(t, sources, 1)
	first := sources[0].(map[string]any)
	require.Equal(t, true, first["scraped_successfully"])
}

func TestGenerateSummary_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: empty", summary.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: no key", summary.ErrConfiguration), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: all failed", summary.ErrExhausted), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.want), func(t *testing.T) {
			srv := newTestServer(t, &stubGenerator{err: tc.err}, Info{})
			resp, err := http.Post(srv.URL+"/api/generate-summary", "application/json", strings.NewReader(`{"urls":["https://a"]}`))
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tc.want, resp.StatusCode)
			var payload errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			require.Equal(t, tc.want, payload.StatusCode)
			require.Contains(t, payload.Detail, tc.err.Error())
		})
	}
}

func TestGenerateSummary_MalformedJSON(t *testing.T) {
	g := &stubGenerator{}
	srv := newTestServer(t, g, Info{})
	resp, err := http.Post(srv.URL+"/api/generate-summary", "application/json", strings.NewReader(`{"urls": [`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Nil(t, g.last.URLs)
}

func TestGenerateSummary_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, Info{})
	resp, err := http.Get(srv.URL + "/api/generate-summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
