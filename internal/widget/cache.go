// cache.go
//
// The API-key-to-site cache. One instance lives for the whole process and
// bounds how often widget loads hit the upstream sites resource. Entries
// expire on read after the TTL; there is no background eviction and no
// request coalescing, so concurrent misses for the same key may each fetch.

package widget

import (
	"sync"
	"time"

	"github.com/recorre/indie-comments-cloud/internal/models"
)

// DefaultCacheTTL bounds the staleness window of a cached site.
const DefaultCacheTTL = 5 * time.Minute

// SiteCache maps widget api_keys to their sites with a fixed TTL. The
// clock is injectable so expiry is testable.
type SiteCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	site     models.Site
	storedAt time.Time
}

// NewSiteCache constructs a SiteCache. A nil clock means time.Now; a zero
// ttl means DefaultCacheTTL.
func NewSiteCache(ttl time.Duration, now func() time.Time) *SiteCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SiteCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached site for apiKey if present and fresh. Expired
// entries are dropped on the way out.
func (c *SiteCache) Get(apiKey string) (models.Site, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[apiKey]
	if !ok {
		return models.Site{}, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, apiKey)
		return models.Site{}, false
	}
	return entry.site, true
}

// Put stores a site under apiKey, restarting its TTL.
func (c *SiteCache) Put(apiKey string, site models.Site) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[apiKey] = cacheEntry{site: site, storedAt: c.now()}
}

// Invalidate drops the entry for apiKey, if any.
func (c *SiteCache) Invalidate(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, apiKey)
}
