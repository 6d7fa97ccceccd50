package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/types"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL matches how long a fetched series is considered fresh.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	series  types.PriceSeries
	expires time.Time
}

// CachedSource wraps a Source and serves repeated fetches of the same symbol
// and period from memory until the entry expires. Concurrent misses for the
// same key share one underlying fetch. Errors are not cached.
type CachedSource struct {
	underlying Source
	ttl        time.Duration
	entries    map[string]cacheEntry
	group      singleflight.Group
	now        func() time.Time
	mu         sync.RWMutex
}

// NewCachedSource creates a CachedSource wrapping the given Source.
func NewCachedSource(underlying Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		underlying: underlying,
		ttl:        ttl,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// Name implements Source.
func (c *CachedSource) Name() string {
	return c.underlying.Name()
}

// Fetch implements Source with caching.
func (c *CachedSource) Fetch(ctx context.Context, symbol string, period Period) (types.PriceSeries, error) {
	key := c.buildKey(symbol, period)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Before(entry.expires) {
		return entry.series, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		series, err := c.underlying.Fetch(ctx, symbol, period)
		if err != nil {
			return types.PriceSeries{}, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{series: series, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()

		return series, nil
	})
	if err != nil {
		return types.PriceSeries{}, err
	}

	series, _ := result.(types.PriceSeries)

	return series, nil
}

// ClearCache drops every entry.
func (c *CachedSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached entries, expired ones included.
func (c *CachedSource) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *CachedSource) buildKey(symbol string, period Period) string {
	return fmt.Sprintf("%s:%s:%s", c.underlying.Name(), symbol, period)
}
