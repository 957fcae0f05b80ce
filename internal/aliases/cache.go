package aliases

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// cachedAliases is one persisted cache entry.
type cachedAliases struct {
	Ticker    string `badgerhold:"key"`
	Aliases   []string
	FetchedAt time.Time
}

// Cache is a persistent, TTL-bounded ticker -> alias-list cache backed by
// Badger. Entries are evicted lazily: a stale entry is deleted on read and
// reported as a miss. A nil Cache is safe to skip entirely.
type Cache struct {
	store  *badgerhold.Store
	ttl    time.Duration
	logger arbor.ILogger
}

// OpenCache opens (or creates) the alias cache at dir.
// A ttl <= 0 disables expiry.
func OpenCache(dir string, ttl time.Duration, logger arbor.ILogger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open alias cache: %w", err)
	}

	if logger != nil {
		logger.Debug().Str("path", dir).Msg("Alias cache opened")
	}

	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Get returns the cached alias list for a ticker, or false on a miss or a
// stale entry.
func (c *Cache) Get(ticker string) ([]string, bool) {
	var entry cachedAliases
	err := c.store.Get(ticker, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, false
	}
	if err != nil {
		if c.logger != nil {
			c.logger.Warn().Err(err).Str("ticker", ticker).Msg("Alias cache read failed")
		}
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.FetchedAt) >= c.ttl {
		// Stale entry: evict and treat as a miss
		if err := c.store.Delete(ticker, &cachedAliases{}); err != nil && c.logger != nil {
			c.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to evict stale alias entry")
		}
		return nil, false
	}

	return entry.Aliases, true
}

// Put stores the alias list for a ticker, replacing any existing entry.
func (c *Cache) Put(ticker string, aliases []string) {
	entry := cachedAliases{
		Ticker:    ticker,
		Aliases:   aliases,
		FetchedAt: time.Now(),
	}

	if err := c.store.Upsert(ticker, &entry); err != nil && c.logger != nil {
		c.logger.Warn().Err(err).Str("ticker", ticker).Msg("Alias cache write failed")
	}
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
