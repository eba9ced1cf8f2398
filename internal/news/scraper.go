package news

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"portfolio-advisor/internal/api"
	"portfolio-advisor/internal/logger"
)

// Scraper collects headline text for a ticker from HTML news pages.
type Scraper struct {
	sources []Source
	timeout time.Duration
}

// Source is one news page. URL holds a {symbol} placeholder.
type Source struct {
	Name      string
	URL       string
	Item      string
	Title     string
	RateLimit time.Duration
}

func NewScraper(timeout time.Duration, sources ...Source) *Scraper {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &Scraper{sources: sources, timeout: timeout}
}

// DefaultSources returns the news pages scraped when none are configured.
func DefaultSources() []Source {
	return []Source{
		{
			Name:      "YahooFinance",
			URL:       "https://finance.yahoo.com/quote/{symbol}/news",
			Item:      "li.stream-item, div.news-stream li",
			Title:     "h3",
			RateLimit: time.Second,
		},
	}
}

// Headlines scrapes every source in turn until max headlines are collected. A failing source
// is logged and skipped.
func (s *Scraper) Headlines(ctx context.Context, symbol string, max int) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for i, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		titles, err := s.scrapeSource(ctx, src, symbol, max-len(out))
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", src.Name, "symbol", symbol)
			continue
		}
		for _, t := range titles {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
		if len(out) >= max {
			break
		}
		if i < len(s.sources)-1 && src.RateLimit > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(src.RateLimit):
			}
		}
	}
	logger.Debug(ctx, "News scraping completed", "symbol", symbol, "headlines", len(out))
	return out, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, src Source, symbol string, max int) ([]string, error) {
	pageURL := strings.ReplaceAll(src.URL, "{symbol}", url.PathEscape(symbol))

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(pageURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
	})

	var titles []string
	c.OnHTML(src.Item, func(e *colly.HTMLElement) {
		if len(titles) >= max {
			return
		}
		title := cleanTitle(e.ChildText(src.Title))
		if title == "" || slices.Contains(titles, title) {
			return
		}
		titles = append(titles, title)
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("%s returned %d: %w", src.Name, r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()
	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return titles, nil
}

// cleanTitle collapses whitespace.
func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
