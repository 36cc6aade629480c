// Package model holds the data shapes shared by the acquisition tiers and the
// orchestrator.
package model

import "time"

// MinContentChars is the smallest body accepted as usable source text.
const MinContentChars = 100

// MaxKeyPoints bounds the key points carried on a SummaryResult.
const MaxKeyPoints = 7

// Reference designates one input: either an opaque provider ID or a URL.
type Reference struct {
	ID  string
	URL string
}

// Key returns whichever of ID or URL identifies the reference.
func (r Reference) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.URL
}

// ExtractedContent is usable text for one source.
type ExtractedContent struct {
	URL    string
	Title  string
	Body   string
	Length int
}

// Usable reports whether the body meets the minimum viable length.
func (c ExtractedContent) Usable() bool {
	return Usable(c.Body)
}

// Usable reports whether text meets MinContentChars, counted in runes.
func Usable(text string) bool {
	n := 0
	for range text {
		n++
		if n >= MinContentChars {
			return true
		}
	}
	return false
}

// SourceInfo is the per-reference provenance record.
type SourceInfo struct {
	URL                 string `json:"url"`
	ID                  string `json:"id,omitempty"`
	Title               string `json:"title,omitempty"`
	ScrapedSuccessfully bool   `json:"scraped_successfully"`
}

// SummaryResult is the outcome of one generation request.
type SummaryResult struct {
	Summary      string       `json:"summary"`
	KeyPoints    []string     `json:"key_points"`
	Sources      []SourceInfo `json:"sources"`
	QueryContext string       `json:"query_context,omitempty"`
	GeneratedBy  string       `json:"generated_by"`
	// Degraded is set when synthesis fell back to concatenated source text
	// because the model call failed.
	Degraded    bool      `json:"degraded,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SucceededCount returns how many sources contributed content.
func (r SummaryResult) SucceededCount() int {
	n := 0
	for _, s := range r.Sources {
		if s.ScrapedSuccessfully {
			n++
		}
	}
	return n
}
