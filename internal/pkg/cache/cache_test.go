// internal/pkg/cache/cache_test.go
package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestSetAndGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := New(5*time.Minute, clock)

	c.Set("report:1:2026-08-01:2026-08-31", 42)

	got, ok := c.Get("report:1:2026-08-01:2026-08-31")
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	_, ok = c.Get("report:2:2026-08-01:2026-08-31")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := New(5*time.Minute, clock)

	c.Set("k", "v")

	clock.Advance(5 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry is still live exactly at the TTL boundary")

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired entry is removed on read")
}

func TestSetRefreshesTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	c := New(5*time.Minute, clock)

	c.Set("k", 1)
	clock.Advance(4 * time.Minute)
	c.Set("k", 2)
	clock.Advance(4 * time.Minute)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestInvalidate(t *testing.T) {
	c := New(time.Minute, &fakeClock{now: time.Now()})

	c.Set("k", 1)
	c.Invalidate("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(time.Minute, &fakeClock{now: time.Now()})

	c.Set("report:7:a", 1)
	c.Set("report:7:b", 2)
	c.Set("report:77:a", 3)
	c.Set("other", 4)

	c.InvalidatePrefix("report:7:")

	_, ok := c.Get("report:7:a")
	assert.False(t, ok)
	_, ok = c.Get("report:7:b")
	assert.False(t, ok)

	_, ok = c.Get("report:77:a")
	assert.True(t, ok, "a different seller's prefix must survive")
	_, ok = c.Get("other")
	assert.True(t, ok)
}
