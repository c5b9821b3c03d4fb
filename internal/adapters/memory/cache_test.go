package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_CopiesValues(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", in, time.Minute))
	in[0] = 'X'

	out, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestCache_MissAndDelete(t *testing.T) {
	c := NewCache(NewLRU(LRUConfig{Capacity: 8}))
	ctx := context.Background()

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	deleted, err := c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = c.Get(ctx, "")
	assert.Error(t, err)
	assert.NoError(t, c.Health(ctx))
	assert.EqualValues(t, 1, c.Stats().Misses)
}
