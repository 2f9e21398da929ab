package model

import "time"

// Status is the lifecycle state of an Analysis.
//
// pending is never entered by the current flow (records are created directly
// in crawling) but remains a valid stored value for display purposes.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCrawling  Status = "crawling"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Severity ranks how strongly a suggestion affects AI visibility.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether s is one of the three recognised severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Analysis is the root job entity: one end-to-end request to evaluate a
// website. Error is non-empty only when Status is failed.
type Analysis struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is one crawled document, scoped to a single Analysis. Immutable after
// the bulk insert that follows a successful crawl.
type Page struct {
	ID         string `json:"id"`
	AnalysisID string `json:"analysisId"`
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content,omitempty"`
	HTML       string `json:"html,omitempty"`
}

// Suggestion is one actionable finding produced by a category analyzer.
// PageURL is empty for site-wide findings.
type Suggestion struct {
	ID         string   `json:"id"`
	AnalysisID string   `json:"analysisId"`
	Category   string   `json:"category"`
	Issue      string   `json:"issue"`
	Why        string   `json:"why"`
	Fix        string   `json:"fix"`
	Severity   Severity `json:"severity"`
	PageURL    string   `json:"pageUrl,omitempty"`
}

// PageRef is the page shape returned by the status/result read: enough for
// display without shipping full page content to pollers.
type PageRef struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// AnalysisDetail is the full result of an Analysis as exposed for polling.
type AnalysisDetail struct {
	Analysis
	Pages       []PageRef    `json:"pages"`
	Suggestions []Suggestion `json:"suggestions"`
}

// AnalysisSummary is one row of the history listing.
type AnalysisSummary struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	PageCount       int       `json:"pageCount"`
	SuggestionCount int       `json:"suggestionCount"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
