package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/types"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time          { return f.current }
func (f *fakeClock) Advance(d time.Duration) { f.current = f.current.Add(d) }

func TestCacheHitWithinTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewSiteCache(5*time.Minute, clock.Now)

	site := models.Site{ID: types.FlexUint64(1), SiteName: "Blog", APIKey: "ic_x"}
	cache.Put("ic_x", site)

	clock.Advance(4 * time.Minute)
	got, ok := cache.Get("ic_x")
	assert.True(t, ok)
	assert.Equal(t, "Blog", got.SiteName)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewSiteCache(5*time.Minute, clock.Now)

	cache.Put("ic_x", models.Site{SiteName: "Blog"})

	clock.Advance(5 * time.Minute)
	_, ok := cache.Get("ic_x")
	assert.False(t, ok)

	// The expired entry was dropped, not just skipped.
	clock.Advance(-2 * time.Minute)
	_, ok = cache.Get("ic_x")
	assert.False(t, ok)
}

func TestCachePutRestartsTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewSiteCache(5*time.Minute, clock.Now)

	cache.Put("ic_x", models.Site{SiteName: "Blog"})
	clock.Advance(4 * time.Minute)
	cache.Put("ic_x", models.Site{SiteName: "Blog v2"})
	clock.Advance(4 * time.Minute)

	got, ok := cache.Get("ic_x")
	assert.True(t, ok)
	assert.Equal(t, "Blog v2", got.SiteName)
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewSiteCache(5*time.Minute, nil)

	cache.Put("ic_x", models.Site{SiteName: "Blog"})
	cache.Invalidate("ic_x")

	_, ok := cache.Get("ic_x")
	assert.False(t, ok)
}

func TestCacheMiss(t *testing.T) {
	cache := NewSiteCache(0, nil) // defaults
	_, ok := cache.Get("absent")
	assert.False(t, ok)
}
