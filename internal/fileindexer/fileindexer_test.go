package fileindexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anortham/codesearch-mcp/internal/indexsvc"
	"github.com/anortham/codesearch-mcp/internal/memorypressure"
)

type fakePressure struct {
	limits memorypressure.Limits
}

func (f fakePressure) Current() memorypressure.Limits { return f.limits }

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkSkipsIgnoredDirsAndExtensions(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.go", "package main")
	writeTestFile(t, root, "node_modules/pkg/index.js", "console.log(1)")
	writeTestFile(t, root, "README.md", "# hi")

	files, err := Walk(root, map[string]bool{".go": true})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].RelPath)
}

func TestIndexWorkspaceIndexesMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeTestFile(t, root, "util.go", "package main\n\nfunc helper() {}\n")

	svc, err := indexsvc.New(10, 15*time.Minute)
	require.NoError(t, err)
	defer svc.Stop()

	handle, err := svc.Acquire("hash1", filepath.Join(t.TempDir(), "idx"))
	require.NoError(t, err)

	fi := New(Config{
		Extensions:    map[string]bool{".go": true},
		MaxFileSize:   10 << 20,
		MmapThreshold: 1 << 20,
	})

	stats, err := fi.IndexWorkspace(context.Background(), handle, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 2, stats.FilesIndexed)

	count, err := handle.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestAcquireWeightDoublesUnderHalvedPressure(t *testing.T) {
	fi := New(Config{MaxConcurrency: 8})
	normal := fakePressure{limits: memorypressure.Limits{MaxConcurrency: 8, RAMBufferBytes: 100}}
	throttled := fakePressure{limits: memorypressure.Limits{MaxConcurrency: 4, RAMBufferBytes: 50}}

	assert.Equal(t, int64(1), fi.acquireWeight(nil))
	assert.Equal(t, int64(1), fi.acquireWeight(normal))
	assert.Equal(t, int64(2), fi.acquireWeight(throttled))
}

func TestRAMBufferLimitFollowsPressureAtBatchBoundary(t *testing.T) {
	fi := New(Config{RAMBufferBytes: 1000})
	throttled := fakePressure{limits: memorypressure.Limits{RAMBufferBytes: 250}}

	assert.Equal(t, int64(1000), fi.ramBufferLimit(nil))
	assert.Equal(t, int64(250), fi.ramBufferLimit(throttled))
}

func TestIndexWorkspaceHonorsThrottledRAMBufferAcrossMultipleFlushes(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.go", "package main\n\nfunc A() {}\n")
	writeTestFile(t, root, "b.go", "package main\n\nfunc B() {}\n")
	writeTestFile(t, root, "c.go", "package main\n\nfunc C() {}\n")

	svc, err := indexsvc.New(10, 15*time.Minute)
	require.NoError(t, err)
	defer svc.Stop()

	handle, err := svc.Acquire("hash1", filepath.Join(t.TempDir(), "idx"))
	require.NoError(t, err)

	fi := New(Config{
		Extensions:     map[string]bool{".go": true},
		MaxFileSize:    10 << 20,
		MmapThreshold:  1 << 20,
		BatchSize:      500,
		RAMBufferBytes: 1 << 30,
	})

	// A RAM budget of 1 byte forces a flush after every single document,
	// regardless of the much larger configured RAMBufferBytes above.
	pressure := fakePressure{limits: memorypressure.Limits{MaxConcurrency: 8, RAMBufferBytes: 1}}

	stats, err := fi.IndexWorkspace(context.Background(), handle, root, nil, pressure)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesIndexed)

	count, err := handle.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestProcessFileNormalizesFilenameToNFC(t *testing.T) {
	root := t.TempDir()
	decomposed := "cafe\u0301.go" // "e" + combining acute accent (NFD)
	writeTestFile(t, root, decomposed, "package main\n")

	fi := New(Config{Extensions: map[string]bool{".go": true}, MaxFileSize: 10 << 20, MmapThreshold: 1 << 20})
	doc, ok, err := fi.IndexSingle(root, filepath.Join(root, decomposed))
	require.NoError(t, err)
	require.True(t, ok)

	composed := "caf\u00e9.go" // single precomposed "e with acute" (NFC)
	assert.Equal(t, composed, doc.Filename)
	assert.Equal(t, composed, doc.RelativePath)
}

func TestIndexWorkspaceSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "big.go", "package main\n// too big\n")

	svc, err := indexsvc.New(10, 15*time.Minute)
	require.NoError(t, err)
	defer svc.Stop()

	handle, err := svc.Acquire("hash1", filepath.Join(t.TempDir(), "idx"))
	require.NoError(t, err)

	fi := New(Config{
		Extensions:    map[string]bool{".go": true},
		MaxFileSize:   1,
		MmapThreshold: 1 << 20,
	})

	stats, err := fi.IndexWorkspace(context.Background(), handle, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesSkippedSize)
	assert.Equal(t, 0, stats.FilesIndexed)
}
