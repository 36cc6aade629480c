package app

import (
	"os"
	"strings"

	"mvdan.cc/xurls/v2"
)

var webURLs = xurls.Strict()

// URLsFromText returns the distinct http(s) URLs found in text, in order of
// first appearance.
func URLsFromText(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range webURLs.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;")
		lower := strings.ToLower(u)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			continue
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// URLsFromFile extracts the URLs found in the file at path.
func URLsFromFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return URLsFromText(string(b)), nil
}
