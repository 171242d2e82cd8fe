package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewScraper/internal/cache"
	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/fetcher/fetchertest"
)

func newCache(t *testing.T) (*cache.PageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	pc := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = pc.Close() })
	return pc, mr
}

func TestPageCache_GetSet(t *testing.T) {
	pc, mr := newCache(t)
	ctx := context.Background()

	_, ok, err := pc.Get(ctx, "https://shop.test/p")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, pc.Set(ctx, "https://shop.test/p", []byte("body"), time.Minute))

	got, ok, err := pc.Get(ctx, "https://shop.test/p")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "body", string(got))

	mr.FastForward(2 * time.Minute)
	_, ok, err = pc.Get(ctx, "https://shop.test/p")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after its ttl")
}

func TestPageCache_BacksCachedFetcher(t *testing.T) {
	pc, _ := newCache(t)
	next := fetchertest.New().Page("https://shop.test/reviews?page=1", "<html></html>")
	f := &fetcher.Cached{Next: next, Store: pc, TTL: time.Hour}

	for i := 0; i < 2; i++ {
		body, err := f.Fetch(context.Background(), "https://shop.test/reviews?page=1", nil)
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", string(body))
	}
	assert.Equal(t, []string{"https://shop.test/reviews?page=1"}, next.Requests())
}

func TestPageCache_ReadErrorFallsThrough(t *testing.T) {
	pc, mr := newCache(t)
	mr.Close()

	next := fetchertest.New().Page("https://shop.test/x", "fresh")
	f := &fetcher.Cached{Next: next, Store: pc, TTL: time.Hour}

	body, err := f.Fetch(context.Background(), "https://shop.test/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(body))
}
