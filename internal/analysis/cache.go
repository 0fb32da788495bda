package analysis

import (
	"sync/atomic"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/prodcon/internal/alphabet"
)

// CachedAnalyzer memoizes reports. There are only 26 distinct products, so
// entries never expire and no janitor goroutine is started.
type CachedAnalyzer struct {
	next   Analyzer
	cache  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// NewCachedAnalyzer wraps next; a nil next uses ProductAnalyzer.
func NewCachedAnalyzer(next Analyzer) *CachedAnalyzer {
	if next == nil {
		next = ProductAnalyzer{}
	}
	return &CachedAnalyzer{
		next:  next,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Analyze implements Analyzer.
func (c *CachedAnalyzer) Analyze(p alphabet.Product) Report {
	key := p.String()
	if v, ok := c.cache.Get(key); ok {
		if r, ok := v.(Report); ok {
			c.hits.Add(1)
			return r
		}
	}
	c.misses.Add(1)
	r := c.next.Analyze(p)
	c.cache.SetDefault(key, r)
	return r
}

// Stats returns a snapshot of hit and miss counts.
func (c *CachedAnalyzer) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.cache.ItemCount(),
	}
}
