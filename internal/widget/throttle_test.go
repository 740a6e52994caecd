package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleWindow(t *testing.T) {
	clock := newFakeClock()
	throttle := NewThrottle(3*time.Second, clock.Now)

	assert.True(t, throttle.Allow("a"))
	assert.False(t, throttle.Allow("a"))

	clock.Advance(2 * time.Second)
	assert.False(t, throttle.Allow("a"))

	clock.Advance(time.Second)
	assert.True(t, throttle.Allow("a"))
}

func TestThrottleRejectionDoesNotResetWindow(t *testing.T) {
	clock := newFakeClock()
	throttle := NewThrottle(3*time.Second, clock.Now)

	assert.True(t, throttle.Allow("a"))

	// Hammering during the window must not extend it.
	clock.Advance(2 * time.Second)
	assert.False(t, throttle.Allow("a"))
	clock.Advance(1500 * time.Millisecond)
	assert.True(t, throttle.Allow("a"))
}

func TestThrottleKeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	throttle := NewThrottle(3*time.Second, clock.Now)

	assert.True(t, throttle.Allow("a"))
	assert.True(t, throttle.Allow("b"))
	assert.False(t, throttle.Allow("a"))
	assert.False(t, throttle.Allow("b"))
}

func TestThrottlePrunesStaleEntries(t *testing.T) {
	clock := newFakeClock()
	throttle := NewThrottle(3*time.Second, clock.Now)

	for i := 0; i < throttlePruneSize; i++ {
		throttle.Allow(string(rune(i)) + "-key")
	}
	assert.GreaterOrEqual(t, len(throttle.last), throttlePruneSize)

	clock.Advance(time.Minute)
	assert.True(t, throttle.Allow("fresh"))
	assert.Less(t, len(throttle.last), throttlePruneSize)
}
