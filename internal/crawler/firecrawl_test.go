package crawler

import (
	"context"
	"testing"

	"github.com/markserbol/ai-optimisation-tool/pkg/firecrawl"
)

// fakeFirecrawl completes immediately with canned documents, or fails.
type fakeFirecrawl struct {
	status  string
	docs    []firecrawl.Document
	gotReq  firecrawl.CrawlRequest
}

func (f *fakeFirecrawl) Crawl(_ context.Context, req firecrawl.CrawlRequest) (*firecrawl.CrawlResponse, error) {
	f.gotReq = req
	return &firecrawl.CrawlResponse{Success: true, ID: "crawl-1"}, nil
}

func (f *fakeFirecrawl) GetCrawlStatus(context.Context, string) (*firecrawl.CrawlStatusResponse, error) {
	return &firecrawl.CrawlStatusResponse{Status: f.status, Data: f.docs}, nil
}

func TestFirecrawl_Crawl_MapsDocuments(t *testing.T) {
	fake := &fakeFirecrawl{
		status: firecrawl.StatusCompleted,
		docs: []firecrawl.Document{
			{
				Markdown: "# Home\nWelcome",
				HTML:     "<h1>Home</h1>",
				Metadata: firecrawl.DocumentMetadata{Title: "Home", SourceURL: "https://example.com/"},
			},
			{
				Markdown: "# Rooms",
				Metadata: firecrawl.DocumentMetadata{SourceURL: "https://example.com/rooms"},
			},
		},
	}

	pages, err := NewFirecrawl(fake, discard()).Crawl(context.Background(), "https://example.com/", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fake.gotReq.Limit != 20 {
		t.Errorf("request limit = %d, want 20", fake.gotReq.Limit)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Title != "Home" || pages[0].Content != "# Home\nWelcome" || pages[0].HTML != "<h1>Home</h1>" {
		t.Errorf("pages[0] mapped incorrectly: %+v", pages[0])
	}
	if pages[1].URL != "https://example.com/rooms" {
		t.Errorf("pages[1].URL = %q", pages[1].URL)
	}
}

func TestFirecrawl_Crawl_FailedCrawlIsError(t *testing.T) {
	fake := &fakeFirecrawl{status: firecrawl.StatusFailed}

	_, err := NewFirecrawl(fake, discard()).Crawl(context.Background(), "https://example.com/", 20)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
