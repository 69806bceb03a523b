package pagecache

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, max int) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "pages.db"), max, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	c := openTestCache(t, 0)

	_, ok := c.Get("https://example.org/a.jpg")
	assert.False(t, ok)

	require.NoError(t, c.Put("https://example.org/a.jpg", []byte("jpeg")))
	got, ok := c.Get("https://example.org/a.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg"), got)
	assert.Equal(t, 1, c.Len())
}

func TestPutOverwriteKeepsSingleEntry(t *testing.T) {
	c := openTestCache(t, 0)

	require.NoError(t, c.Put("k", []byte("one")))
	require.NoError(t, c.Put("k", []byte("two")))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("two"), got)
	assert.Equal(t, 1, c.Len())
}

func TestPutPrunesOldest(t *testing.T) {
	c := openTestCache(t, 3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, c.Put(fmt.Sprintf("k%d", i), []byte{byte(i)}))
	}

	assert.Equal(t, 3, c.Len())
	for _, gone := range []string{"k1", "k2"} {
		_, ok := c.Get(gone)
		assert.False(t, ok, gone)
	}
	for _, kept := range []string{"k3", "k4", "k5"} {
		_, ok := c.Get(kept)
		assert.True(t, ok, kept)
	}
}

func TestPruneRewrittenKeyIsYoungest(t *testing.T) {
	c := openTestCache(t, 0)

	require.NoError(t, c.Put("a", []byte("1")))
	require.NoError(t, c.Put("b", []byte("2")))
	require.NoError(t, c.Put("a", []byte("3")))

	removed, err := c.Prune(1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok := c.Get("b")
	assert.False(t, ok)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("3"), got)
}

func TestPruneNoop(t *testing.T) {
	c := openTestCache(t, 0)
	require.NoError(t, c.Put("a", []byte("1")))

	removed, err := c.Prune(10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
