package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/gosummary/internal/budget"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
	// Root is the selector that supplied Text, "body" when none matched.
	Root string
}

// RemovedElements are dropped from the tree before any text is collected.
var RemovedElements = []string{"script", "style", "nav", "footer", "header", "aside", "iframe", "noscript"}

// ContentSelectors are tried in order; the first selector that matches any
// element supplies the content root. The document body is the fallback.
var ContentSelectors = []string{
	"article",
	`[role="main"]`,
	"main",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"#content",
}

const minTitleChars = 3

// FromHTML extracts readable text using the default ContentSelectors.
func FromHTML(input []byte) Document {
	return fromHTML(input, ContentSelectors)
}

func fromHTML(input []byte, selectors []string) Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return Document{}
	}

	title := findTitle(doc)
	doc.Find(strings.Join(RemovedElements, ", ")).Remove()

	root, name := selectRoot(doc, selectors)
	if root == nil {
		return Document{Title: title}
	}
	var b strings.Builder
	for _, n := range root.Nodes {
		collectText(&b, n)
	}
	text := norm.NFC.String(collapseSpaces(b.String()))
	return Document{Title: title, Text: text, Root: name}
}

// findTitle prefers <title> when it carries at least three characters and
// falls back to the og:title meta property.
func findTitle(doc *goquery.Document) string {
	t := strings.TrimSpace(doc.Find("title").First().Text())
	if budget.RuneLen(t) >= minTitleChars {
		return t
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return ""
}

func selectRoot(doc *goquery.Document, selectors []string) (*goquery.Selection, string) {
	for _, sel := range selectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s, sel
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body, "body"
	}
	return nil, ""
}

// collectText writes every visible text node under n separated by spaces.
func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode && isBoilerplateContainer(n) {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "aria-label" {
			continue
		}
		val := strings.ToLower(attr.Val)
		if containsAny(val, []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// collapseSpaces replaces every whitespace run with a single space and trims.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
