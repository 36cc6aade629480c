package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gosummary/internal/budget"
	"github.com/hyperifyio/gosummary/internal/llm"
	"github.com/hyperifyio/gosummary/internal/model"
)

// DefaultMaxTokens is the output budget of one synthesis call.
const DefaultMaxTokens = 2000

// Input bundles the sources and optional hints for one synthesis.
type Input struct {
	Sources    []model.ExtractedContent
	Query      string
	FocusAreas []string
}

// Output is the parsed model answer.
type Output struct {
	Summary   string
	KeyPoints []string
	// Degraded is set when the model call failed and Summary holds the
	// concatenated source excerpts instead.
	Degraded bool
}

// Synthesizer turns extracted sources into a summary plus key points.
type Synthesizer struct {
	Client llm.Client
	// Model overrides the backend default when non-empty.
	Model     string
	MaxTokens int
}

var (
	// ErrNotConfigured is returned when no model client is set.
	ErrNotConfigured = errors.New("synthesizer not configured")
	// ErrNoSources is returned for an empty source list.
	ErrNoSources = errors.New("no sources to synthesize")
)

// Synthesize builds the prompt, calls the model and parses the answer. A
// failed model call does not produce an error: the result carries the
// deterministic fallback text with Degraded set.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Client == nil {
		return Output{}, ErrNotConfigured
	}
	if len(in.Sources) == 0 {
		return Output{}, ErrNoSources
	}
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	prompt := BuildPrompt(in)
	req := openai.ChatCompletionRequest{
		Model:     s.Model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		N: 1,
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("sources", len(in.Sources)).Int("est_tokens", budget.EstimateTokens(prompt)).Msg("calling model for synthesis")
	resp, err := s.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("synthesis call failed; using fallback")
		return Output{Summary: Fallback(in.Sources), Degraded: true}, nil
	}
	text := llm.FirstContent(resp)
	if text == "" {
		logger.Error().Msg("synthesis returned no content; using fallback")
		return Output{Summary: Fallback(in.Sources), Degraded: true}, nil
	}
	summary, points, perr := parseResponse(text)
	if perr != nil {
		logger.Warn().Err(perr).Msg("synthesis response is not valid JSON; using raw text")
	}
	return Output{Summary: summary, KeyPoints: points}, nil
}

// BuildPrompt renders the single user message sent to the model.
func BuildPrompt(in Input) string {
	parts := make([]string, 0, len(in.Sources)*4)
	for i, src := range in.Sources {
		parts = append(parts,
			fmt.Sprintf("Source %d: %s", i+1, sourceTitle(src)),
			"URL: "+src.URL,
			"Content: "+budget.TruncateRunes(src.Body, budget.MaxSourcePromptChars),
			"---",
		)
	}
	joined := budget.TruncateRunes(strings.Join(parts, "\n\n"), budget.MaxContextChars)

	var sb strings.Builder
	sb.WriteString("You are an expert research analyst. Create a comprehensive summary from multiple sources.\n\n")
	if q := strings.TrimSpace(in.Query); q != "" {
		sb.WriteString("\n\nOriginal search query: \"")
		sb.WriteString(q)
		sb.WriteString("\"")
	}
	if focus := joinNonEmpty(in.FocusAreas); focus != "" {
		sb.WriteString("\n\nFocus particularly on: ")
		sb.WriteString(focus)
	}
	sb.WriteString("\n\nInformation from sources:\n")
	sb.WriteString(joined)
	sb.WriteString("\n\nProvide:\n")
	sb.WriteString("1. A comprehensive summary (3-4 paragraphs) that synthesizes all sources\n")
	sb.WriteString("2. A list of 5-7 key points\n\n")
	sb.WriteString("Format as JSON:\n")
	sb.WriteString("{\n  \"summary\": \"Your comprehensive summary...\",\n  \"key_points\": [\"Point 1\", \"Point 2\", ...]\n}\n\n")
	sb.WriteString("Write naturally without citations in the text.")
	return sb.String()
}

// ParseResponse extracts summary and key points from the model text. The span
// from the first '{' to the last '}' is decoded as JSON; anything else yields
// the raw text as summary with no key points.
func ParseResponse(text string) (string, []string) {
	summary, points, _ := parseResponse(text)
	return summary, points
}

// parseResponse also reports a JSON decode error so the caller can log it.
func parseResponse(text string) (string, []string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text, nil, nil
	}
	var parsed struct {
		Summary   *string  `json:"summary"`
		KeyPoints []string `json:"key_points"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return text, nil, err
	}
	if parsed.Summary == nil {
		return text, nil, nil
	}
	points := make([]string, 0, len(parsed.KeyPoints))
	for _, p := range parsed.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) > model.MaxKeyPoints {
		points = points[:model.MaxKeyPoints]
	}
	return *parsed.Summary, points, nil
}

// Fallback concatenates "title: excerpt..." per source, capped overall.
func Fallback(sources []model.ExtractedContent) string {
	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, fmt.Sprintf("%s: %s...", sourceTitle(src), budget.TruncateRunes(src.Body, budget.FallbackExcerptChars)))
	}
	return budget.TruncateRunes(strings.Join(parts, "\n\n"), budget.MaxFallbackChars)
}

func sourceTitle(src model.ExtractedContent) string {
	if t := strings.TrimSpace(src.Title); t != "" {
		return t
	}
	return src.URL
}

func joinNonEmpty(items []string) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return strings.Join(out, ", ")
}
