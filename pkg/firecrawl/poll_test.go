package firecrawl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns one canned status per GetCrawlStatus call.
type scriptedClient struct {
	statuses []CrawlStatusResponse
	calls    atomic.Int32
}

func (c *scriptedClient) Crawl(context.Context, CrawlRequest) (*CrawlResponse, error) {
	return &CrawlResponse{Success: true, ID: "crawl-1"}, nil
}

func (c *scriptedClient) GetCrawlStatus(context.Context, string) (*CrawlStatusResponse, error) {
	i := int(c.calls.Add(1)) - 1
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	return &c.statuses[i], nil
}

func TestPollCrawl_CompletesAfterScraping(t *testing.T) {
	client := &scriptedClient{statuses: []CrawlStatusResponse{
		{Status: StatusScraping},
		{Status: StatusScraping},
		{Status: StatusCompleted, Total: 1, Data: []Document{{Markdown: "# Hi"}}},
	}}

	resp, err := PollCrawl(context.Background(), client, "crawl-1",
		WithPollInterval(time.Millisecond), WithPollCap(2*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.EqualValues(t, 3, client.calls.Load())
}

func TestPollCrawl_FailedAndCancelledAreErrors(t *testing.T) {
	for _, status := range []string{StatusFailed, StatusCancelled} {
		t.Run(status, func(t *testing.T) {
			client := &scriptedClient{statuses: []CrawlStatusResponse{{Status: status}}}

			_, err := PollCrawl(context.Background(), client, "crawl-1",
				WithPollInterval(time.Millisecond))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCrawlFailed)
		})
	}
}

func TestPollCrawl_ContextExpiry(t *testing.T) {
	client := &scriptedClient{statuses: []CrawlStatusResponse{{Status: StatusScraping}}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := PollCrawl(ctx, client, "crawl-1", WithPollInterval(50*time.Millisecond))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
