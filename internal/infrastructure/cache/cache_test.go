package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abcstore/internal/infrastructure/cache"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheRoundTrip(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Stop()

	require.NoError(t, c.Set("k", payload{Name: "mouse", Count: 3}))

	var got payload
	hit, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "mouse", Count: 3}, got)
}

func TestCacheMiss(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Stop()

	var got payload
	hit, err := c.Get("absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheExpiry(t *testing.T) {
	c := cache.New(20 * time.Millisecond)
	defer c.Stop()

	require.NoError(t, c.Set("k", payload{Name: "mouse"}))
	time.Sleep(40 * time.Millisecond)

	var got payload
	hit, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Stop()

	require.NoError(t, c.Set("a", payload{}))
	require.NoError(t, c.Set("b", payload{}))
	assert.Equal(t, 2, c.Size())

	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
