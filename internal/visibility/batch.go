package visibility

import (
	"strings"

	"github.com/markserbol/ai-optimisation-tool/internal/model"
)

// Both the page count and the per-page size are bounded so the combined
// prompt stays inside the context window of either backend. Pages beyond the
// cap stay persisted, they are just invisible to the analysis.
const (
	maxPagesPerPrompt = 10
	maxCharsPerPage   = 2000

	truncationMarker = "... [truncated]"
	noTitle          = "(no title)"
)

// buildCorpus concatenates up to maxPagesPerPrompt pages, in the order
// supplied, into a single prompt payload: one delimited section per page
// with its URL, title, and content truncated to maxCharsPerPage characters.
// The cut falls on a rune boundary so the corpus is always valid UTF-8.
// Pure function of its input.
func buildCorpus(pages []model.Page) string {
	if len(pages) > maxPagesPerPrompt {
		pages = pages[:maxPagesPerPrompt]
	}

	sections := make([]string, 0, len(pages))
	for _, p := range pages {
		content := p.Content
		if runes := []rune(content); len(runes) > maxCharsPerPage {
			content = string(runes[:maxCharsPerPage]) + truncationMarker
		}

		title := p.Title
		if title == "" {
			title = noTitle
		}

		var b strings.Builder
		b.WriteString("=== PAGE: ")
		b.WriteString(p.URL)
		b.WriteString(" ===\n")
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
		b.WriteString(content)
		sections = append(sections, b.String())
	}

	return strings.Join(sections, "\n\n")
}
