package widget

import (
	"sync"
	"time"
)

// DefaultSubmitInterval is the minimum gap between two comment submissions
// from the same source.
const DefaultSubmitInterval = 3 * time.Second

// throttlePruneSize bounds the timestamp map; stale entries are dropped
// once it grows past this.
const throttlePruneSize = 1024

// Throttle rejects actions that repeat faster than a fixed interval. It is
// advisory only: in-memory, per process, trivially bypassable, exactly the
// guarantee the product has always offered.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	last     map[string]time.Time
}

// NewThrottle constructs a Throttle. A nil clock means time.Now; a zero
// interval means DefaultSubmitInterval.
func NewThrottle(interval time.Duration, now func() time.Time) *Throttle {
	if interval <= 0 {
		interval = DefaultSubmitInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Throttle{
		interval: interval,
		now:      now,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether an action for key may proceed now, recording the
// attempt when it may. A rejected attempt does not reset the window.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.last[key]; ok && now.Sub(last) < t.interval {
		return false
	}

	if len(t.last) >= throttlePruneSize {
		t.prune(now)
	}
	t.last[key] = now
	return true
}

func (t *Throttle) prune(now time.Time) {
	for key, last := range t.last {
		if now.Sub(last) >= t.interval {
			delete(t.last, key)
		}
	}
}
