package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/gosummary/internal/summary"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "gosummary ") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(fmt.Errorf("wrapped: %w", summary.ErrExhausted)); got != 2 {
		t.Fatalf("exhausted: got %d", got)
	}
	if got := exitCode(summary.ErrInvalidRequest); got != 1 {
		t.Fatalf("invalid: got %d", got)
	}
}

// Generate runs end to end against a local page and an OpenAI-compatible
// stub, writing Markdown to a file.
func TestGenerate_WritesMarkdown(t *testing.T) {
	for _, k := range []string{"EXA_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")

	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]string{"role": "assistant", "content": `{"summary":"CLI summary text.","key_points":["one"]}`},
			}},
		})
	}))
	defer chat.Close()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><head><title>CLI Page</title></head><body><p>%s</p></body></html>", strings.Repeat("Body text for the command line test. ", 10))
	}))
	defer page.Close()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "summary.md")
	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout)
	cmd.SetArgs([]string{
		"generate",
		"--env-file", filepath.Join(dir, "absent.env"),
		"--llm.provider", "openai",
		"--llm.base", chat.URL + "/v1",
		"--query", "cli",
		"--format", "markdown",
		"--output", outPath,
		page.URL,
	})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	md := string(b)
	if !strings.Contains(md, "# Summary: cli") || !strings.Contains(md, "CLI summary text.") || !strings.Contains(md, "[CLI Page]") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout must stay empty when --output is set")
	}
}

func TestGenerate_InvalidRequest(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("LLM_PROVIDER", "")
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	err := cmd.Execute()
	if !errors.Is(err, summary.ErrInvalidRequest) {
		t.Fatalf("expected invalid request error, got %v", err)
	}
}
