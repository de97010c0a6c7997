package querycache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(ws, query string) Key {
	return Key{WorkspaceHash: ws, Query: query, ResponseMode: "Standard"}
}

func TestPutThenGetHits(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	c.Put(key("ws1", "foo"), "cached-response", 5, 100)
	got, ok := c.Get(key("ws1", "foo"), 5)
	require.True(t, ok)
	assert.Equal(t, "cached-response", got)
}

func TestGetMissesOnStaleGeneration(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	c.Put(key("ws1", "foo"), "cached-response", 5, 100)
	_, ok := c.Get(key("ws1", "foo"), 6)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestGetMissesAfterTTLExpires(t *testing.T) {
	c, err := NewWithLimits(defaultMaxBytes, 10*time.Millisecond)
	require.NoError(t, err)

	fakeNow := time.Now()
	c.now = func() time.Time { return fakeNow }
	c.Put(key("ws1", "foo"), "cached-response", 5, 100)

	fakeNow = fakeNow.Add(20 * time.Millisecond)
	_, ok := c.Get(key("ws1", "foo"), 5)
	assert.False(t, ok)
}

func TestByteBudgetEvictsOldestEntries(t *testing.T) {
	c, err := NewWithLimits(250, 0)
	require.NoError(t, err)

	c.Put(key("ws1", "a"), "a", 1, 100)
	c.Put(key("ws1", "b"), "b", 1, 100)
	c.Put(key("ws1", "c"), "c", 1, 100)

	assert.LessOrEqual(t, c.Bytes(), int64(250))
	_, ok := c.Get(key("ws1", "a"), 1)
	assert.False(t, ok, "oldest entry should have been evicted to stay under the byte budget")
}

func TestDifferentFiltersProduceDifferentFingerprints(t *testing.T) {
	k1 := Key{WorkspaceHash: "ws1", Query: "foo", Filters: []string{"go"}}
	k2 := Key{WorkspaceHash: "ws1", Query: "foo", Filters: []string{"py"}}
	assert.NotEqual(t, k1.Fingerprint(), k2.Fingerprint())
}

func TestInvalidateWorkspaceDropsOnlyThatWorkspace(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.Put(key("ws1", "foo"), "r1", 1, 10)
	c.Put(key("ws2", "foo"), "r2", 1, 10)

	c.InvalidateWorkspace("ws1")

	_, ok := c.Get(key("ws1", "foo"), 1)
	assert.False(t, ok)
	_, ok = c.Get(key("ws2", "foo"), 1)
	assert.True(t, ok)
}

func TestNoCacheBypassIsCallerResponsibility(t *testing.T) {
	// querycache has no built-in "no_cache" flag -- the caller (service
	// facade) simply skips calling Get/Put when no_cache=true is set on
	// the request, per spec §4.10.
	c, err := New()
	require.NoError(t, err)
	_, ok := c.Get(key("ws1", "foo"), 1)
	assert.False(t, ok)
}
