package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperifyio/gosummary/internal/model"
)

// Output formats accepted by WriteResult.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

// RenderMarkdown renders a result as a small Markdown document.
func RenderMarkdown(res model.SummaryResult) string {
	var sb strings.Builder
	title := "Summary"
	if res.QueryContext != "" {
		title = "Summary: " + res.QueryContext
	}
	sb.WriteString("# " + title + "\n\n")
	if !res.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated %s by %s\n\n", res.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), res.GeneratedBy))
	}
	if res.Degraded {
		sb.WriteString("> Note: the model call failed; this summary is a concatenation of source excerpts.\n\n")
	}
	sb.WriteString(strings.TrimSpace(res.Summary))
	sb.WriteString("\n")

	if len(res.KeyPoints) > 0 {
		sb.WriteString("\n## Key points\n\n")
		for _, kp := range res.KeyPoints {
			sb.WriteString("- " + kp + "\n")
		}
	}
	if len(res.Sources) > 0 {
		sb.WriteString("\n## Sources\n\n")
		for i, src := range res.Sources {
			mark := "✗"
			if src.ScrapedSuccessfully {
				mark = "✓"
			}
			label := src.Title
			if label == "" {
				label = src.URL
			}
			if label == "" {
				label = src.ID
			}
			if src.URL != "" {
				sb.WriteString(fmt.Sprintf("%d. %s [%s](%s)\n", i+1, mark, label, src.URL))
			} else {
				sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, mark, label))
			}
		}
	}
	return sb.String()
}

// WriteResult writes res in the given format to path, or to w when path is
// empty. PDF output requires a path.
func WriteResult(res model.SummaryResult, format, path string, w io.Writer) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		return writeOut(append(b, '\n'), path, w)
	case FormatMarkdown, "md":
		return writeOut([]byte(RenderMarkdown(res)), path, w)
	case FormatPDF:
		if path == "" {
			return fmt.Errorf("pdf output requires --output")
		}
		return writeSimplePDF(RenderMarkdown(res), path)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeOut(b []byte, path string, w io.Writer) error {
	if path == "" {
		_, err := w.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
