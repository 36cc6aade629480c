package budget

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEstimateTokensFromChars(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 0},
		{1, 1}, // ceil(1/4)=1
		{3, 1},
		{4, 1},
		{5, 2},
		{400, 100},
	}
	for _, c := range cases {
		got := EstimateTokensFromChars(c.in)
		if got != c.want {
			t.Fatalf("EstimateTokensFromChars(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestEstimateTokens_CountsRunes(t *testing.T) {
	// 4 runes, 8 bytes
	if got := EstimateTokens("ääää"); got != 1 {
		t.Fatalf("EstimateTokens() = %d, want 1", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("hello", 10); got != "hello" {
		t.Fatalf("short input changed: %q", got)
	}
	if got := TruncateRunes("hello", 3); got != "hel" {
		t.Fatalf("got %q, want hel", got)
	}
	if got := TruncateRunes("hello", 0); got != "" {
		t.Fatalf("zero limit should yield empty, got %q", got)
	}
	s := strings.Repeat("日本", 10)
	got := TruncateRunes(s, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got)
	}
	if RuneLen(got) != 5 {
		t.Fatalf("expected 5 runes, got %d", RuneLen(got))
	}
}
