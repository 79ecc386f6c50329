package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)

	key := ArtifactKey("chart", "session-1", 3)
	c.Set(key, []byte("<svg/>"), "image/svg+xml")

	item, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("<svg/>"), item.Data)
	assert.Equal(t, "image/svg+xml", item.ContentType)

	_, ok = c.Get(ArtifactKey("chart", "session-1", 4))
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := New(10 * time.Millisecond)

	c.Set("k", []byte("v"), "text/plain")
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestCache_RevisionKeysAreDistinct(t *testing.T) {
	// A mutation bumps the revision, so the stale artifact is simply never
	// requested again.
	c := New(time.Minute)

	c.Set(ArtifactKey("export-csv", "s", 1), []byte("old"), "text/csv")
	c.Set(ArtifactKey("export-csv", "s", 2), []byte("new"), "text/csv")

	item, ok := c.Get(ArtifactKey("export-csv", "s", 2))
	require.True(t, ok)
	assert.Equal(t, []byte("new"), item.Data)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(time.Minute)

	c.Set("a", []byte("1"), "text/plain")
	c.Set("b", []byte("2"), "text/plain")

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCache_Stats(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", []byte("12345"), "text/plain")

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 1, stats["active_items"])
	assert.Equal(t, 5, stats["total_bytes"])
	assert.Equal(t, 60.0, stats["ttl_seconds"])
}
