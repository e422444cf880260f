package dashboard

import (
	"context"
	"sync"
	"time"

	"CryptoFlow/internal/collector"
	"CryptoFlow/internal/metrics"
	"CryptoFlow/internal/model"
)

// DefaultCacheTTL is how long fetched candles are reused.
const DefaultCacheTTL = 300 * time.Second

type cacheKey struct {
	symbol string
	tf     model.Timeframe
}

type cacheEntry struct {
	bars    []model.OHLCV
	fetched time.Time
}

// Cache is a collector.Fetcher that memoizes candle fetches per
// (symbol, timeframe) for TTL. Entries are never invalidated early.
// Symbol listing passes straight through.
type Cache struct {
	Fetcher collector.Fetcher
	TTL     time.Duration
	// Now is the clock; tests replace it.
	Now func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

// NewCache wraps f with a TTL cache.
func NewCache(f collector.Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		Fetcher: f,
		TTL:     ttl,
		Now:     time.Now,
		entries: map[cacheKey]cacheEntry{},
	}
}

func (c *Cache) Name() string { return c.Fetcher.Name() + "+cache" }

func (c *Cache) ActiveSymbols(ctx context.Context) ([]string, error) {
	return c.Fetcher.ActiveSymbols(ctx)
}

// FetchCandles returns cached bars when younger than TTL. Failed fetches are
// not cached.
func (c *Cache) FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error) {
	key := cacheKey{symbol, tf}
	now := c.Now()

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Sub(e.fetched) < c.TTL {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return e.bars, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	bars, err := c.Fetcher.FetchCandles(ctx, symbol, tf, limit)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{bars: bars, fetched: now}
	c.mu.Unlock()
	return bars, nil
}

// Len returns the number of cached series, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
