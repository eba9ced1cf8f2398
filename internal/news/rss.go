package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"portfolio-advisor/internal/api"
)

const googleNewsURL = "https://news.google.com"

// RSSFeed reads headlines from a Google News search feed.
type RSSFeed struct {
	client *api.Client
	query  string
}

// NewRSSFeed builds a feed client. query is appended to the ticker in the search.
func NewRSSFeed(baseURL string, timeout time.Duration) *RSSFeed {
	if baseURL == "" {
		baseURL = googleNewsURL
	}
	return &RSSFeed{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithHeaders(api.BrowserHeaders()),
		),
		query: "stock",
	}
}

func (f *RSSFeed) Headlines(ctx context.Context, symbol string, max int) ([]string, error) {
	q := url.Values{}
	q.Set("q", symbol+" "+f.query)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	resp, err := f.client.GET(ctx, "/rss/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("google news feed: %w", err)
	}
	return parseFeed(resp.Body, max)
}

// parseFeed extracts item titles from an RSS document, dropping the trailing " - Publisher".
func parseFeed(body []byte, max int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var out []string
	doc.Find("item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if len(out) >= max {
			return false
		}
		title := cleanTitle(item.Find("title").First().Text())
		// <source> parses as a void element, so its publisher name is not its child text
		if item.Find("source").Length() > 0 {
			if i := strings.LastIndex(title, " - "); i > 0 {
				title = title[:i]
			}
		}
		if title != "" {
			out = append(out, title)
		}
		return true
	})
	return out, nil
}
