package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-advisor/internal/store"
)

type stubSource struct {
	headlines []string
	err       error
	calls     int
}

func (s *stubSource) Headlines(_ context.Context, _ string, limit int) ([]string, error) {
	s.calls++
	return truncate(s.headlines, limit), s.err
}

func enabledConfig() store.NewsConfig {
	cfg := store.Default().News
	cfg.Enabled = true
	cfg.MaxHeadlines = 3
	return cfg
}

func TestServiceDisabled(t *testing.T) {
	primary := &stubSource{headlines: []string{"a"}}
	svc := NewServiceWithSources(store.Default().News, primary, nil)

	got, err := svc.Headlines(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, primary.calls)
}

func TestServiceCachesAndCaps(t *testing.T) {
	primary := &stubSource{headlines: []string{"a", "b", "c", "d"}}
	svc := NewServiceWithSources(enabledConfig(), primary, nil)

	got, err := svc.Headlines(context.Background(), "aapl", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got, "limit is capped at MaxHeadlines")

	got, err = svc.Headlines(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, primary.calls, "second call served from cache")
}

func TestServiceCacheServesLargerLimit(t *testing.T) {
	primary := &stubSource{headlines: []string{"a", "b", "c", "d"}}
	svc := NewServiceWithSources(enabledConfig(), primary, nil)

	got, err := svc.Headlines(context.Background(), "MSFT", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	got, err = svc.Headlines(context.Background(), "MSFT", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 1, primary.calls)
}

func TestServiceCacheExpires(t *testing.T) {
	cfg := enabledConfig()
	cfg.CacheTTL = 10 * time.Millisecond
	primary := &stubSource{headlines: []string{"a"}}
	svc := NewServiceWithSources(cfg, primary, nil)

	_, _ = svc.Headlines(context.Background(), "AAPL", 1)
	time.Sleep(30 * time.Millisecond)
	_, _ = svc.Headlines(context.Background(), "AAPL", 1)
	assert.Equal(t, 2, primary.calls)
}

func TestServiceFallback(t *testing.T) {
	tests := []struct {
		name     string
		primary  *stubSource
		fallback *stubSource
		want     []string
		wantErr  bool
	}{
		{"primary empty", &stubSource{}, &stubSource{headlines: []string{"f"}}, []string{"f"}, false},
		{"primary fails", &stubSource{err: errors.New("403")}, &stubSource{headlines: []string{"f"}}, []string{"f"}, false},
		{"both fail", &stubSource{err: errors.New("403")}, &stubSource{err: errors.New("timeout")}, nil, true},
		{"primary empty fallback fails", &stubSource{}, &stubSource{err: errors.New("timeout")}, nil, false},
		{"primary wins", &stubSource{headlines: []string{"p"}}, &stubSource{headlines: []string{"f"}}, []string{"p"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewServiceWithSources(enabledConfig(), tt.primary, tt.fallback)
			got, err := svc.Headlines(context.Background(), "AAPL", 3)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const newsPage = `<html><body><ul>
<li class="stream-item"><h3>  Apple beats   earnings estimates </h3></li>
<li class="stream-item"><h3>Apple beats earnings estimates</h3></li>
<li class="stream-item"><h3></h3></li>
<li class="stream-item"><h3>iPhone sales slump in China</h3></li>
<li class="stream-item"><h3>Analysts raise price target</h3></li>
</ul></body></html>`

func TestScraperHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/AAPL/news", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(newsPage))
	}))
	defer srv.Close()

	s := NewScraper(5*time.Second, Source{
		Name:  "test",
		URL:   srv.URL + "/quote/{symbol}/news",
		Item:  "li.stream-item",
		Title: "h3",
	})
	got, err := s.Headlines(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple beats earnings estimates", "iPhone sales slump in China"}, got)
}

func TestScraperSkipsFailingSource(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(newsPage))
	}))
	defer good.Close()

	s := NewScraper(5*time.Second,
		Source{Name: "bad", URL: bad.URL + "/{symbol}", Item: "li", Title: "h3"},
		Source{Name: "good", URL: good.URL + "/{symbol}", Item: "li.stream-item", Title: "h3"},
	)
	got, err := s.Headlines(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>"AAPL stock" - Google News</title>
<item><title>Apple shares climb after upbeat guidance - Reuters</title><source url="https://www.reuters.com">Reuters</source></item>
<item><title>Is Apple stock a buy? - The Motley Fool</title><source url="https://www.fool.com">The Motley Fool</source></item>
<item><title>Apple faces antitrust probe</title></item>
</channel></rss>`

func TestParseFeed(t *testing.T) {
	got, err := parseFeed([]byte(feed), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Apple shares climb after upbeat guidance",
		"Is Apple stock a buy?",
		"Apple faces antitrust probe",
	}, got)

	got, err = parseFeed([]byte(feed), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRSSFeedHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rss/search", r.URL.Path)
		assert.Equal(t, "MSFT stock", r.URL.Query().Get("q"))
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	got, err := NewRSSFeed(srv.URL, 5*time.Second).Headlines(context.Background(), "MSFT", 5)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
