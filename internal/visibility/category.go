package visibility

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/markserbol/ai-optimisation-tool/internal/llm"
	"github.com/markserbol/ai-optimisation-tool/internal/model"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/metrics"
)

const (
	completionTemperature = 0.2
	completionMaxTokens   = 2000
)

// systemPrompt fixes the output contract for every category. The category
// prompt supplies what to look for; this supplies how to answer.
const systemPrompt = `You are an expert in AI search optimisation. You review website content and
identify concrete issues that hurt how well AI assistants and search systems
understand the site.

Respond with a JSON array only. Each element must have exactly these fields:
  "issue":    short name of the problem
  "why":      why it hurts AI comprehension of the site
  "fix":      a specific, actionable fix
  "severity": one of "high", "medium" or "low"
  "pageUrl":  URL of the affected page, or "" if it applies site-wide

If you find no issues, respond with an empty array: []. Do not write any
prose outside the JSON array.`

// rawSuggestion is the shape the model is asked to emit. Category is
// attached by us afterwards; models are not trusted to echo it back.
type rawSuggestion struct {
	Issue    string `json:"issue"`
	Why      string `json:"why"`
	Fix      string `json:"fix"`
	Severity string `json:"severity"`
	PageURL  string `json:"pageUrl"`
}

// jsonArrayRe matches the first '[' through the last ']' across newlines,
// which strips code fences and any prose the model wrapped around the array.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// runCategory invokes the provider for one category against the prepared
// corpus and returns the suggestions it produced. A malformed response is a
// logged degradation, not an error: the category simply yields nothing.
// Only invocation failures (or a nil provider) are returned to the caller.
func runCategory(ctx context.Context, provider *llm.Provider, cat Category, corpus string, knownURLs map[string]bool, logger *slog.Logger) ([]model.Suggestion, error) {
	if provider == nil {
		metrics.ProviderRequests.WithLabelValues("none", "unconfigured").Inc()
		return nil, llm.ErrNoProviderConfigured
	}

	raw, err := provider.Client.Complete(ctx, llm.CompletionRequest{
		Model:       provider.Model,
		System:      systemPrompt,
		User:        cat.Prompt + "\n\n" + corpus,
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(provider.Name, "error").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues(provider.Name, "ok").Inc()

	return parseSuggestions(raw, cat.ID, knownURLs, logger), nil
}

// parseSuggestions extracts suggestions from a model response, tolerating
// code fences, surrounding prose, and out-of-range severities. Responses
// with no parseable array degrade to zero suggestions.
func parseSuggestions(raw, categoryID string, knownURLs map[string]bool, logger *slog.Logger) []model.Suggestion {
	span := jsonArrayRe.FindString(raw)
	if span == "" {
		logger.Warn("no JSON array in provider response", "category", categoryID, "response_len", len(raw))
		return nil
	}

	var parsed []rawSuggestion
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		logger.Warn("provider response span is not valid JSON", "category", categoryID, "error", err)
		return nil
	}

	suggestions := make([]model.Suggestion, 0, len(parsed))
	for _, rs := range parsed {
		severity := model.Severity(strings.ToLower(strings.TrimSpace(rs.Severity)))
		if !severity.Valid() {
			logger.Debug("coercing unknown severity", "category", categoryID, "severity", rs.Severity)
			severity = model.SeverityMedium
		}
		// Cited URLs are passed through as-is; the model may reference a
		// page outside the crawled set and discarding that would lose the
		// finding.
		if rs.PageURL != "" && !knownURLs[rs.PageURL] {
			logger.Debug("suggestion cites page outside the crawled set", "category", categoryID, "page_url", rs.PageURL)
		}
		suggestions = append(suggestions, model.Suggestion{
			Category: categoryID,
			Issue:    rs.Issue,
			Why:      rs.Why,
			Fix:      rs.Fix,
			Severity: severity,
			PageURL:  rs.PageURL,
		})
	}
	return suggestions
}
