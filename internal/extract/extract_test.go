package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/gosummary/internal/budget"
	"github.com/hyperifyio/gosummary/internal/fetch"
	"github.com/hyperifyio/gosummary/internal/model"
)

var longParagraph = strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)

func TestFromHTML_PrefersArticleOverMain(t *testing.T) {
	html := `<!doctype html>
    <html>
      <head><title>Test Page</title></head>
      <body>
        <nav>Nav should be ignored</nav>
        <main><p>Main wrapper text</p>
          <article>
            <h1>Article Heading</h1>
            <p>This is the article paragraph.</p>
          </article>
        </main>
        <footer>Footer text</footer>
      </body>
    </html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "Test Page" {
		t.Fatalf("expected title 'Test Page', got %q", doc.Title)
	}
	if doc.Root != "article" {
		t.Fatalf("expected article root, got %q", doc.Root)
	}
	if doc.Text != "Article Heading This is the article paragraph." {
		t.Fatalf("unexpected text: %q", doc.Text)
	}
}

func TestFromHTML_SelectorPriority(t *testing.T) {
	html := `<html><body>
      <div class="content">class content</div>
      <div role="main">role main</div>
    </body></html>`
	doc := FromHTML([]byte(html))
	if doc.Root != `[role="main"]` || doc.Text != "role main" {
		t.Fatalf("expected role=main to win, got root %q text %q", doc.Root, doc.Text)
	}
}

func TestFromHTML_FallbackToBody(t *testing.T) {
	html := `<!doctype html>
    <html>
      <head><title>No Main</title></head>
      <body>
        <header>Site header</header>
        <h2>Body Heading</h2>
        <p>Body   paragraph</p>
        <script>var x = 1;</script>
        <style>p { color: red }</style>
      </body>
    </html>`

	doc := FromHTML([]byte(html))
	if doc.Root != "body" {
		t.Fatalf("expected body root, got %q", doc.Root)
	}
	if doc.Text != "Body Heading Body paragraph" {
		t.Fatalf("unexpected text: %q", doc.Text)
	}
}

func TestFromHTML_ShortTitleFallsBackToOGTitle(t *testing.T) {
	html := `<html><head><title>Hi</title><meta property="og:title" content=" Open Graph Title "></head><body>x</body></html>`
	doc := FromHTML([]byte(html))
	if doc.Title != "Open Graph Title" {
		t.Fatalf("expected og:title, got %q", doc.Title)
	}
}

func TestFromHTML_NoTitle(t *testing.T) {
	doc := FromHTML([]byte(`<html><body>text</body></html>`))
	if doc.Title != "" {
		t.Fatalf("expected empty title, got %q", doc.Title)
	}
}

func TestFromHTML_SkipsCookieBanner(t *testing.T) {
	html := `<html><body><div id="cookie-banner">Accept cookies</div><p>Real content</p></body></html>`
	doc := FromHTML([]byte(html))
	if strings.Contains(doc.Text, "Accept cookies") {
		t.Fatalf("cookie banner text leaked: %q", doc.Text)
	}
}

type stubGetter struct {
	body  string
	err   error
	calls int
}

func (s *stubGetter) Get(_ context.Context, _ string) (fetch.Result, error) {
	s.calls++
	if s.err != nil {
		return fetch.Result{}, s.err
	}
	return fetch.Result{Body: []byte(s.body), ContentType: "text/html", Attempts: 1}, nil
}

func TestExtractor_Success(t *testing.T) {
	g := &stubGetter{body: "<html><head><title>Example</title></head><body><article>" + longParagraph + "</article></body></html>"}
	e := &Extractor{Fetcher: g}
	got, err := e.Extract(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URL != "https://example.com/a" || got.Title != "Example" {
		t.Fatalf("unexpected content: %+v", got)
	}
	if !got.Usable() || got.Length != budget.RuneLen(got.Body) {
		t.Fatalf("expected usable content with consistent length, got %d/%d", got.Length, len(got.Body))
	}
}

func TestExtractor_ShortContentIsFailure(t *testing.T) {
	g := &stubGetter{body: "<html><head><title>Short</title></head><body><p>tiny</p></body></html>"}
	e := &Extractor{Fetcher: g}
	got, err := e.Extract(context.Background(), "https://example.com/short")
	if !errors.Is(err, ErrExtraction) || !errors.Is(err, ErrContentTooShort) {
		t.Fatalf("expected too-short extraction failure, got %v", err)
	}
	if got.Title != "" || got.Body != "" {
		t.Fatalf("failure must not carry content: %+v", got)
	}
}

func TestExtractor_CapsLength(t *testing.T) {
	big := strings.Repeat("word ", 5000)
	g := &stubGetter{body: "<html><body><main>" + big + "</main></body></html>"}
	e := &Extractor{Fetcher: g}
	got, err := e.Extract(context.Background(), "https://example.com/big")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Length != budget.MaxExtractedChars {
		t.Fatalf("expected %d chars, got %d", budget.MaxExtractedChars, got.Length)
	}
}

func TestExtractor_FetchErrorWrapped(t *testing.T) {
	g := &stubGetter{err: fetch.ErrBotDefense}
	e := &Extractor{Fetcher: g}
	_, err := e.Extract(context.Background(), "https://www.linkedin.com/in/x")
	if !errors.Is(err, ErrExtraction) || !errors.Is(err, fetch.ErrBotDefense) {
		t.Fatalf("expected wrapped bot-defense failure, got %v", err)
	}
}

func TestExtractor_CustomSelectors(t *testing.T) {
	g := &stubGetter{body: `<html><body><div class="story">` + longParagraph + `</div><p>other</p></body></html>`}
	e := &Extractor{Fetcher: g, Selectors: []string{".story"}}
	got, err := e.Extract(context.Background(), "https://example.com/s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got.Body, "other") {
		t.Fatalf("custom selector not applied: %q", got.Body)
	}
}

func TestMinContentCharsBoundary(t *testing.T) {
	if model.Usable(strings.Repeat("a", model.MinContentChars-1)) {
		t.Fatalf("99 chars must not be usable")
	}
	if !model.Usable(strings.Repeat("a", model.MinContentChars)) {
		t.Fatalf("100 chars must be usable")
	}
}
