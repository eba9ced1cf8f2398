package news

import (
	"context"
	"strings"
	"sync"
	"time"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/store"
)

// Service returns recent headlines for a ticker with caching and a feed fallback.
type Service struct {
	primary  interfaces.HeadlineSource
	fallback interfaces.HeadlineSource
	cache    *headlineCache
	cfg      store.NewsConfig
}

var _ interfaces.HeadlineSource = (*Service)(nil)

type headlineCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	headlines []string
	timestamp time.Time
}

func newHeadlineCache(ttl time.Duration) *headlineCache {
	return &headlineCache{data: make(map[string]cacheEntry), ttl: ttl}
}

func (c *headlineCache) get(symbol string) ([]string, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.data[symbol]
	if !ok || time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.headlines, true
}

func (c *headlineCache) set(symbol string, headlines []string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[symbol] = cacheEntry{headlines: headlines, timestamp: time.Now()}

	// drop expired entries while holding the lock
	for k, e := range c.data {
		if time.Since(e.timestamp) > c.ttl {
			delete(c.data, k)
		}
	}
}

// NewService wires the default scraper and the Google News feed.
func NewService(cfg store.NewsConfig) *Service {
	return NewServiceWithSources(cfg, NewScraper(cfg.Timeout), NewRSSFeed("", cfg.Timeout))
}

// NewServiceWithSources is NewService with explicit sources. fallback may be nil.
func NewServiceWithSources(cfg store.NewsConfig, primary, fallback interfaces.HeadlineSource) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
		cache:    newHeadlineCache(cfg.CacheTTL),
		cfg:      cfg,
	}
}

// Headlines returns up to limit headlines. Sources are always asked for MaxHeadlines so the
// cached list serves any later limit. Source failures degrade to an empty list; an error is
// returned only when every source failed.
func (s *Service) Headlines(ctx context.Context, ticker string, limit int) ([]string, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}
	if limit <= 0 || limit > s.cfg.MaxHeadlines {
		limit = s.cfg.MaxHeadlines
	}
	symbol := strings.ToUpper(ticker)

	if cached, ok := s.cache.get(symbol); ok {
		logger.Debug(ctx, "Using cached headlines", "symbol", symbol, "count", len(cached))
		return truncate(cached, limit), nil
	}

	headlines, err := s.primary.Headlines(ctx, symbol, s.cfg.MaxHeadlines)
	if err != nil {
		logger.ErrorWithErr(ctx, "Primary news source failed", err, "symbol", symbol)
	}
	if len(headlines) == 0 && s.fallback != nil {
		logger.Info(ctx, "No headlines from primary source, trying feed", "symbol", symbol)
		var ferr error
		headlines, ferr = s.fallback.Headlines(ctx, symbol, s.cfg.MaxHeadlines)
		if ferr != nil {
			logger.ErrorWithErr(ctx, "News feed fallback failed", ferr, "symbol", symbol)
			if err != nil {
				return nil, ferr
			}
		} else {
			err = nil
		}
	}
	if len(headlines) == 0 && err != nil {
		return nil, err
	}

	s.cache.set(symbol, truncate(headlines, s.cfg.MaxHeadlines))
	return truncate(headlines, limit), nil
}

func truncate(h []string, n int) []string {
	if len(h) > n {
		return h[:n]
	}
	return h
}
