package datasource

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is a file-based cache for raw provider responses. A nil *Cache is valid and caches nothing.
type Cache struct {
	cacheDir string
	ttl      time.Duration
	mu       sync.RWMutex
}

// CacheEntry represents a cached item
type CacheEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCache creates the cache directory. An empty dir or a zero ttl disables caching.
func NewCache(cacheDir string, ttl time.Duration) (*Cache, error) {
	if cacheDir == "" || ttl <= 0 {
		return nil, nil
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		cacheDir: cacheDir,
		ttl:      ttl,
	}, nil
}

// Get retrieves an item from cache
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	cacheFile := c.path(key)
	info, err := os.Stat(cacheFile)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		os.Remove(cacheFile)
		return nil, false
	}

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, false
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return entry.Data, true
}

// Set stores an item in cache
func (c *Cache) Set(key string, data []byte) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entryData, err := json.Marshal(CacheEntry{
		Key:       key,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), entryData, 0o644)
}

// CleanupExpired removes expired cache entries
func (c *Cache) CleanupExpired() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > c.ttl {
			os.Remove(filepath.Join(c.cacheDir, entry.Name()))
		}
	}
	return nil
}

func (c *Cache) path(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(c.cacheDir, fmt.Sprintf("%x.json", hash))
}

// GetOrFetch retrieves from cache or fetches using fetchFn. Failed fetches are not cached.
func (c *Cache) GetOrFetch(key string, fetchFn func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}
	data, err := fetchFn()
	if err != nil {
		return nil, err
	}
	_ = c.Set(key, data)
	return data, nil
}

// MakeKey creates a cache key from parts
func MakeKey(parts ...string) string {
	return strings.Join(parts, "|")
}
