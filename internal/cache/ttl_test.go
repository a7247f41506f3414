package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(t *testing.T) (*TTL[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(WithClock[string](clock.Now)), clock
}

func TestTTL_GetMissing(t *testing.T) {
	c, _ := newTestCache(t)

	v, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestTTL_ServesWithinTTL(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", "v1", 30*time.Second)

	clock.Advance(29 * time.Second)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	// Exactly at the TTL boundary the entry is still valid.
	clock.Advance(time.Second)
	v, ok = c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestTTL_ExpiresLazily(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", "v1", 30*time.Second)
	assert.Equal(t, 1, c.Len())

	clock.Advance(30*time.Second + time.Millisecond)

	// The stale entry survives until a read observes it.
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_SetOverwritesAndResetsAge(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", "v1", 30*time.Second)
	clock.Advance(25 * time.Second)
	c.Set("k", "v2", 30*time.Second)
	clock.Advance(20 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestTTL_PerEntryTTL(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("short", "a", 30*time.Second)
	c.Set("long", "b", 60*time.Second)

	clock.Advance(45 * time.Second)

	_, ok := c.Get("short")
	assert.False(t, ok)

	v, ok := c.Get("long")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestTTL_Clear(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("a", "1", time.Minute)
	c.Set("b", "2", time.Minute)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
