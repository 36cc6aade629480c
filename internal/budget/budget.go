package budget

import (
	"math"
	"unicode/utf8"
)

// Character limits applied along the acquisition pipeline. All limits count
// runes, not bytes.
const (
	// MaxExtractedChars caps the body produced by the web extractor.
	MaxExtractedChars = 15_000
	// MaxSourcePromptChars caps each source's text inside the synthesis prompt.
	MaxSourcePromptChars = 5_000
	// MaxContextChars caps the combined source context of a synthesis prompt.
	MaxContextChars = 30_000
	// ProviderTextChars is the text size requested from the content provider.
	ProviderTextChars = 5_000
	// FallbackExcerptChars is the per-source excerpt used when synthesis degrades.
	FallbackExcerptChars = 500
	// MaxFallbackChars caps the whole degraded summary.
	MaxFallbackChars = 2_000
)

// EstimateTokensFromChars converts a character count into an estimated token
// count using a conservative heuristic (~4 chars per token in English). The
// result is always at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(utf8.RuneCountInString(s))
}

// TruncateRunes returns the prefix of s holding at most maxRunes runes. It
// never splits a UTF-8 sequence. A non-positive limit yields "".
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if len(s) <= maxRunes {
		// byte length bounds rune count
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// RuneLen is utf8.RuneCountInString, named for call-site readability.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
