package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLRU_SetGetExpire(t *testing.T) {
	clk := newClock()
	c := NewLRU(LRUConfig{Capacity: 4, Now: clk.Now})

	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	clk.Advance(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "expired entry must miss")

	_, ok = c.Get("b")
	assert.True(t, ok, "zero ttl never expires")

	s := c.Stats()
	assert.EqualValues(t, 2, s.Hits)
	assert.EqualValues(t, 1, s.Misses)
	assert.Equal(t, 1, s.Size)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(LRUConfig{Capacity: 2})
	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)
	c.Get("a")
	c.Set("c", []byte("3"), 0)

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.EqualValues(t, 1, c.Stats().Evictions)
}

func TestLRU_UpdateRefreshesExpiry(t *testing.T) {
	clk := newClock()
	c := NewLRU(LRUConfig{Now: clk.Now})

	c.Set("k", []byte("v1"), time.Minute)
	clk.Advance(50 * time.Second)
	c.Set("k", []byte("v2"), time.Minute)
	clk.Advance(50 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), v)
}

func TestLRU_GetTouchRefreshesExpiry(t *testing.T) {
	clk := newClock()
	c := NewLRU(LRUConfig{Now: clk.Now})

	c.Set("k", []byte("v"), time.Minute)
	clk.Advance(50 * time.Second)
	_, ok := c.GetTouch("k", time.Minute)
	require.True(t, ok)
	clk.Advance(50 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok, "touch restarts the ttl")
	assert.Equal(t, []byte("v"), v)

	clk.Advance(61 * time.Second)
	_, ok = c.GetTouch("k", time.Minute)
	assert.False(t, ok, "expired entries are not revived")

	c.Set("forever", []byte("v"), 0)
	clk.Advance(time.Hour)
	_, ok = c.GetTouch("forever", 0)
	assert.True(t, ok)
}

func TestLRU_SweepAndDelete(t *testing.T) {
	clk := newClock()
	c := NewLRU(LRUConfig{Now: clk.Now})

	c.Set("old1", nil, time.Second)
	c.Set("old2", nil, time.Second)
	c.Set("keep", nil, time.Hour)
	clk.Advance(time.Minute)

	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.Delete("keep"))
	assert.False(t, c.Delete("keep"))
}
