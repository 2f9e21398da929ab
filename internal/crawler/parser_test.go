package crawler

import (
	"net/url"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestParsePage_ExtractsTitleAndText(t *testing.T) {
	doc := `<!DOCTYPE html><html><head><title> Grand Hotel </title>
	<script>var tracking = "ignore me";</script>
	<style>.x { color: red }</style></head>
	<body><h1>Welcome</h1><p>Sea view rooms and a rooftop pool.</p></body></html>`

	got, err := parsePage(strings.NewReader(doc), mustParse(t, "https://example.com/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Title != "Grand Hotel" {
		t.Errorf("Title = %q, want %q", got.Title, "Grand Hotel")
	}
	if !strings.Contains(got.Text, "Welcome") || !strings.Contains(got.Text, "rooftop pool") {
		t.Errorf("Text missing visible content: %q", got.Text)
	}
	if strings.Contains(got.Text, "tracking") || strings.Contains(got.Text, "color: red") {
		t.Errorf("Text contains script/style content: %q", got.Text)
	}
}

func TestParsePage_InternalLinksOnly(t *testing.T) {
	doc := `<html><body>
	<a href="/rooms">Rooms</a>
	<a href="https://example.com/spa#booking">Spa</a>
	<a href="https://other.com/away">External</a>
	<a href="mailto:stay@example.com">Mail</a>
	<a href="/rooms">Rooms again</a>
	</body></html>`

	got, err := parsePage(strings.NewReader(doc), mustParse(t, "https://example.com/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://example.com/rooms", "https://example.com/spa"}
	if len(got.InternalLinks) != len(want) {
		t.Fatalf("InternalLinks = %v, want %v", got.InternalLinks, want)
	}
	for i, link := range want {
		if got.InternalLinks[i] != link {
			t.Errorf("InternalLinks[%d] = %q, want %q", i, got.InternalLinks[i], link)
		}
	}
}

func TestParsePage_CollapsesWhitespace(t *testing.T) {
	doc := "<html><body><p>a</p>\n\n\n<p>   b   \t c</p></body></html>"

	got, err := parsePage(strings.NewReader(doc), mustParse(t, "https://example.com/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "a\nb c" {
		t.Errorf("Text = %q, want %q", got.Text, "a\nb c")
	}
}
