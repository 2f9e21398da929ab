package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher defines how the local crawler retrieves raw HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, statusCode int, err error)
}

const (
	maxRedirects = 5
	userAgent    = "AIVisibilityBot/1.0"

	// Response bodies are capped to protect against extremely large or
	// infinite responses.
	maxResponseBody = 10 << 20
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
	errNotHTML          = errors.New("response is not HTML")
)

// HTTPFetcher implements Fetcher with a 10s timeout, a transport that blocks
// connections to private/reserved IP ranges, and redirect validation that
// prevents SSRF via redirect chains.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a ready-to-use HTTPFetcher.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext:         safeDialer().DialContext,
				MaxConnsPerHost:     10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: safeRedirectPolicy,
		},
	}
}

func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch retrieves the page at the given URL and returns its body, capped at
// maxResponseBody bytes. Non-HTML content types are rejected so the crawler
// never feeds binary responses to the parser.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return nil, resp.StatusCode, fmt.Errorf("%w: %s", errNotHTML, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

func isHTMLContentType(ct string) bool {
	for _, prefix := range []string{"text/html", "application/xhtml+xml"} {
		if len(ct) >= len(prefix) && ct[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
