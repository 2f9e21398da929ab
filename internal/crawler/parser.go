package crawler

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ParsedPage holds everything extracted from a single-pass HTML parse.
type ParsedPage struct {
	Title         string
	Text          string
	InternalLinks []string
}

// skippedTags are elements whose text content is never visible page content.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
}

// blockTags end a visual block; a newline is emitted after them so the
// extracted text keeps a rough paragraph structure.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"li": true, "tr": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// parsePage performs a single-pass traversal of the HTML body, extracting
// the title, the visible text content, and all same-host links resolved
// against baseURL (fragments stripped, duplicates removed).
func parsePage(body io.Reader, baseURL *url.URL) (*ParsedPage, error) {
	result := &ParsedPage{}

	z := html.NewTokenizer(body)
	var (
		text    strings.Builder
		inTitle bool
		skip    int
		seen    = map[string]bool{}
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				result.Text = collapseText(text.String())
				return result, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			tag := string(tn)

			switch {
			case skippedTags[tag] && tt == html.StartTagToken:
				skip++
			case tag == "title":
				inTitle = true
			case tag == "a" && hasAttr && skip == 0:
				if href := extractAttr(z, "href"); href != "" {
					if link, ok := internalLink(href, baseURL); ok && !seen[link] {
						seen[link] = true
						result.InternalLinks = append(result.InternalLinks, link)
					}
				}
			}

		case html.TextToken:
			switch {
			case inTitle:
				result.Title = strings.TrimSpace(string(z.Text()))
				inTitle = false
			case skip == 0:
				if t := strings.TrimSpace(string(z.Text())); t != "" {
					text.WriteString(t)
					text.WriteByte(' ')
				}
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			tag := string(tn)
			switch {
			case skippedTags[tag]:
				if skip > 0 {
					skip--
				}
			case tag == "title":
				inTitle = false
			case blockTags[tag] && skip == 0:
				text.WriteByte('\n')
			}
		}
	}
}

func extractAttr(z *html.Tokenizer, target string) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == target {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

// internalLink resolves href against baseURL and returns it only when it is
// an http(s) URL on the same host as the crawl target.
func internalLink(href string, baseURL *url.URL) (string, bool) {
	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := baseURL.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(resolved.Host, baseURL.Host) {
		return "", false
	}

	resolved.Fragment = ""
	return resolved.String(), true
}

// collapseText squeezes runs of blank lines and trailing spaces out of the
// extracted text.
func collapseText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
