package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

const defaultFetchConcurrency = 5

// Local is a bounded same-host crawler used when no external crawl service
// is configured. It walks internal links breadth-first from the target URL,
// fetching each frontier with bounded concurrency, until the page limit is
// reached or no unvisited links remain.
type Local struct {
	fetcher     Fetcher
	concurrency int
	logger      *slog.Logger
}

// NewLocal returns a Local crawler backed by an SSRF-safe HTTP fetcher.
func NewLocal(logger *slog.Logger) *Local {
	return &Local{
		fetcher:     NewHTTPFetcher(),
		concurrency: defaultFetchConcurrency,
		logger:      logger,
	}
}

type fetchResult struct {
	page  Page
	links []string
	err   error
}

// Crawl implements Crawler. Individual page failures are logged and skipped;
// the crawl as a whole fails only when not a single page could be fetched.
func (c *Local) Crawl(ctx context.Context, target string, limit int) ([]Page, error) {
	base, err := url.Parse(target)
	if err != nil {
		return nil, eris.Wrap(err, "crawler: parse target URL")
	}

	visited := map[string]bool{target: true}
	frontier := []string{target}
	var pages []Page

	for len(frontier) > 0 && len(pages) < limit {
		batch := frontier
		if remaining := limit - len(pages); len(batch) > remaining {
			batch = batch[:remaining]
		}

		results := make([]fetchResult, len(batch))
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for i, pageURL := range batch {
			g.Go(func() error {
				results[i] = c.fetchOne(gCtx, pageURL, base)
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "crawler: crawl cancelled")
		}

		var next []string
		for i, r := range results {
			if r.err != nil {
				c.logger.Warn("page fetch failed", "url", batch[i], "error", r.err)
				continue
			}
			pages = append(pages, r.page)
			for _, link := range r.links {
				if !visited[link] {
					visited[link] = true
					next = append(next, link)
				}
			}
		}
		frontier = next
	}

	if len(pages) == 0 {
		return nil, eris.New("crawler: could not fetch any page from " + target)
	}
	return pages, nil
}

func (c *Local) fetchOne(ctx context.Context, pageURL string, base *url.URL) fetchResult {
	body, status, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fetchResult{err: err}
	}
	if status >= 400 {
		return fetchResult{err: fmt.Errorf("status %d", status)}
	}

	parsed, err := parsePage(bytes.NewReader(body), base)
	if err != nil {
		return fetchResult{err: eris.Wrap(err, "parse page")}
	}

	return fetchResult{
		page: Page{
			URL:     pageURL,
			Title:   parsed.Title,
			Content: parsed.Text,
			HTML:    string(body),
		},
		links: parsed.InternalLinks,
	}
}
