package indexsvc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCreatesAndReturnsHandle(t *testing.T) {
	svc, err := New(10, 15*time.Minute)
	require.NoError(t, err)
	defer svc.Stop()

	dir := filepath.Join(t.TempDir(), "ws")
	h, err := svc.Acquire("hash1", dir)
	require.NoError(t, err)
	assert.Equal(t, StateReady, h.State())

	again, err := svc.Acquire("hash1", dir)
	require.NoError(t, err)
	assert.Same(t, h, again)
}

func TestAddOrUpdateAndSearch(t *testing.T) {
	svc, err := New(10, 15*time.Minute)
	require.NoError(t, err)
	defer svc.Stop()

	dir := filepath.Join(t.TempDir(), "ws")
	h, err := svc.Acquire("hash1", dir)
	require.NoError(t, err)

	batch := h.NewBatch()
	require.NoError(t, batch.AddOrUpdate(Document{
		Path:         "/ws/main.go",
		RelativePath: "main.go",
		Filename:     "main.go",
		Extension:    ".go",
		Content:      "func main() { fmt.Println(\"hello\") }",
		ContentCode:  "func main() { fmt.Println(\"hello\") }",
	}))
	require.NoError(t, batch.Commit())
	assert.Equal(t, uint64(1), h.CommitGeneration())

	count, err := h.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	req := bleve.NewSearchRequest(bleve.NewMatchQuery("hello"))
	result, err := h.Search(req)
	require.NoError(t, err)
	assert.NotZero(t, result.Total)
}

func TestDeleteRemovesDocument(t *testing.T) {
	svc, err := New(10, 15*time.Minute)
	require.NoError(t, err)
	defer svc.Stop()

	dir := filepath.Join(t.TempDir(), "ws")
	h, err := svc.Acquire("hash1", dir)
	require.NoError(t, err)

	batch := h.NewBatch()
	require.NoError(t, batch.AddOrUpdate(Document{Path: "/ws/a.go", Content: "alpha"}))
	require.NoError(t, batch.Commit())

	del := h.NewBatch()
	del.Delete("/ws/a.go")
	require.NoError(t, del.Commit())

	count, err := h.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestCloseIsIdempotent(t *testing.T) {
	svc, err := New(10, 15*time.Minute)
	require.NoError(t, err)
	defer svc.Stop()

	dir := filepath.Join(t.TempDir(), "ws")
	_, err = svc.Acquire("hash1", dir)
	require.NoError(t, err)

	require.NoError(t, svc.Close("hash1"))
	require.NoError(t, svc.Close("hash1"))
}
