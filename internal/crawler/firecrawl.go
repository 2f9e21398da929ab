package crawler

import (
	"context"
	"log/slog"

	"github.com/rotisserie/eris"

	"github.com/markserbol/ai-optimisation-tool/pkg/firecrawl"
)

// Firecrawl delegates crawling to the Firecrawl API: start a crawl, poll
// until it reaches a terminal status, and map the returned documents.
type Firecrawl struct {
	client firecrawl.Client
	logger *slog.Logger
}

// NewFirecrawl returns a Crawler backed by the given Firecrawl client.
func NewFirecrawl(client firecrawl.Client, logger *slog.Logger) *Firecrawl {
	return &Firecrawl{client: client, logger: logger}
}

// Crawl implements Crawler.
func (f *Firecrawl) Crawl(ctx context.Context, url string, limit int) ([]Page, error) {
	started, err := f.client.Crawl(ctx, firecrawl.CrawlRequest{
		URL:   url,
		Limit: limit,
		ScrapeOptions: &firecrawl.ScrapeOptions{
			Formats:         []string{"markdown", "html"},
			OnlyMainContent: true,
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "crawler: start crawl")
	}

	f.logger.Debug("crawl started", "crawl_id", started.ID, "url", url)

	status, err := firecrawl.PollCrawl(ctx, f.client, started.ID)
	if err != nil {
		return nil, eris.Wrap(err, "crawler: await crawl")
	}

	pages := make([]Page, 0, len(status.Data))
	for _, doc := range status.Data {
		pages = append(pages, Page{
			URL:     doc.Metadata.SourceURL,
			Title:   doc.Metadata.Title,
			Content: doc.Markdown,
			HTML:    doc.HTML,
		})
	}
	return pages, nil
}
