package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anortham/codesearch-mcp/internal/config"
	"github.com/anortham/codesearch-mcp/internal/queryplanner"
)

// newTestService builds a Service rooted at a fresh temp directory so
// every test gets its own registry, indexes, and cache, and writes a
// small real workspace of source files for it to index.
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	cfg := config.Default()
	cfg.BasePath = t.TempDir()
	cfg.Watcher.DebounceMs = 20
	cfg.Watcher.QuietMs = 20

	workspace := t.TempDir()
	writeFile(t, workspace, "widget.go", "package widget\n\nfunc HandleRequest(id string) error {\n\treturn nil\n}\n")
	writeFile(t, workspace, "gadget.go", "package widget\n\nfunc HandleRequest2(id string) error {\n\treturn nil\n}\n")
	writeFile(t, workspace, filepath.Join("sub", "helper.go"), "package sub\n\nfunc Helper() int {\n\treturn 42\n}\n")

	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	return svc, workspace
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestIndexWorkspaceIndexesEveryMatchingFile(t *testing.T) {
	svc, workspace := newTestService(t)

	result, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Indexed)
	assert.Equal(t, 0, result.Failures)
}

func TestTextSearchFindsIndexedFunction(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	resp, err := svc.TextSearch(TextSearchRequest{
		Query:         "HandleRequest",
		WorkspacePath: workspace,
		Mode:          queryplanner.ModeAuto,
		ResponseMode:  "full",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.GreaterOrEqual(t, len(resp.Data.Files), 1)
}

func TestTextSearchOnUnindexedWorkspaceReturnsErrorEnvelope(t *testing.T) {
	svc, workspace := newTestService(t)

	resp, err := svc.TextSearch(TextSearchRequest{
		Query:         "anything",
		WorkspacePath: workspace,
		Mode:          queryplanner.ModeAuto,
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
}

func TestFileSearchMatchesByFilename(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	matches, err := svc.FileSearch(workspace, "*widget*", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "widget.go", matches[0].Filename)
}

func TestDirectorySearchGroupsByDirectory(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	matches, err := svc.DirectorySearch(workspace, "sub", true, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].FileCount)
}

func TestRecentFilesSortsNewestFirst(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	files, err := svc.RecentFiles(workspace, "24h", 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(files), 3)
}

func TestRecentFilesRejectsEmptyTimeFrame(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	_, err = svc.RecentFiles(workspace, "", 10)
	assert.Error(t, err)
}

func TestSimilarFilesExcludesSourceFile(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	similar, err := svc.SimilarFiles(workspace, filepath.Join(workspace, "widget.go"), 10, 0)
	require.NoError(t, err)
	for _, s := range similar {
		assert.NotEqual(t, filepath.Join(workspace, "widget.go"), s.Path)
	}
}

func TestBatchOperationsRunsEachIndependently(t *testing.T) {
	svc, workspace := newTestService(t)

	results := svc.BatchOperations(context.Background(), []BatchOperation{
		{Op: "index_workspace", WorkspacePath: workspace},
		{Op: "unsupported_op"},
	}, workspace)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "unknown operation", results[1].Error)
}

func TestIndexHealthCheckReportsWorkspaceState(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	report, aggregate, err := svc.IndexHealthCheck(workspace)
	require.NoError(t, err)
	require.Nil(t, aggregate)
	require.NotNil(t, report)
	assert.Equal(t, "closed", report.BreakerState)
	assert.True(t, report.WatcherRunning)
	assert.EqualValues(t, 3, report.DocCount)
}

func TestIndexHealthCheckWithNoPathReturnsRegistryAggregate(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	report, aggregate, err := svc.IndexHealthCheck("")
	require.NoError(t, err)
	require.Nil(t, report)
	require.NotNil(t, aggregate)
}

func TestForceRebuildReindexesFromScratch(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	result, err := svc.IndexWorkspace(context.Background(), workspace, true)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)
}

func TestWatcherPicksUpNewFile(t *testing.T) {
	svc, workspace := newTestService(t)
	_, err := svc.IndexWorkspace(context.Background(), workspace, false)
	require.NoError(t, err)

	writeFile(t, workspace, "latecomer.go", "package widget\n\nfunc LateArrival() {}\n")
	// the watcher's debounce window (configured to 20ms in newTestService)
	// needs a little real time to fire before the new file is searchable
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		matches, err := svc.FileSearch(workspace, "*latecomer*", 10)
		require.NoError(t, err)
		if len(matches) == 1 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("watcher did not pick up new file within deadline")
}
