// Package crawler is the crawl collaborator boundary: given a start URL and
// a page ceiling it returns extracted content for a bounded set of pages.
package crawler

import "context"

// Page is one crawled document. Content is the extracted text (markdown when
// the remote crawl service provides it); HTML is the raw markup when
// available. URL may be empty if the source address could not be determined,
// in which case the caller falls back to the analysis target URL.
type Page struct {
	URL     string
	Title   string
	Content string
	HTML    string
}

// Crawler fetches up to limit pages starting from url. A failed or cancelled
// crawl is reported as an error; a successful crawl may still return fewer
// pages than the limit.
type Crawler interface {
	Crawl(ctx context.Context, url string, limit int) ([]Page, error)
}
