package lockmanager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anortham/codesearch-mcp/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLockFile(t *testing.T, dir string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, WriteLockName)
	require.NoError(t, os.WriteFile(path, []byte("1234"), 0o644))
	stale := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stale, stale))
	return path
}

func TestScanAndRepairRemovesSuspiciousLockWithNoLiveHolder(t *testing.T) {
	indexesDir := t.TempDir()
	wsDir := filepath.Join(indexesDir, "my-workspace_abc123def456")
	require.NoError(t, os.MkdirAll(wsDir, 0o755))
	lockPath := writeLockFile(t, wsDir, 30*time.Minute)

	reg := registry.New(filepath.Join(indexesDir, "registry.json"))

	neverLive := func(pid int) (bool, bool) { return false, true }
	report, err := ScanAndRepair(indexesDir, reg, 15*time.Minute, neverLive)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Suspicious)
	assert.Equal(t, 1, report.Repaired)
	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err))
}

func TestScanAndRepairKeepsLockWithLiveHolder(t *testing.T) {
	indexesDir := t.TempDir()
	wsDir := filepath.Join(indexesDir, "my-workspace_abc123def456")
	require.NoError(t, os.MkdirAll(wsDir, 0o755))
	lockPath := writeLockFile(t, wsDir, 30*time.Minute)

	reg := registry.New(filepath.Join(indexesDir, "registry.json"))
	_, err := reg.GetOrCreate("abc123def456", "/tmp/my-workspace", "my-workspace_abc123def456", "my-workspace")
	require.NoError(t, err)
	entry, err := reg.Get("abc123def456")
	require.NoError(t, err)
	entry.LockedBy = "4242"
	require.NoError(t, reg.Update(entry))

	alwaysLive := func(pid int) (bool, bool) { return true, true }
	report, err := ScanAndRepair(indexesDir, reg, 15*time.Minute, alwaysLive)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Suspicious)
	assert.Equal(t, 0, report.Repaired)
	_, err = os.Stat(lockPath)
	assert.NoError(t, err)
}

func TestScanAndRepairClassifiesWorkspaceOwned(t *testing.T) {
	indexesDir := t.TempDir()
	wsDir := filepath.Join(indexesDir, "active-workspace_abc123def456")
	require.NoError(t, os.MkdirAll(wsDir, 0o755))
	writeLockFile(t, wsDir, 5*time.Minute)

	reg := registry.New(filepath.Join(indexesDir, "registry.json"))
	report, err := ScanAndRepair(indexesDir, reg, 15*time.Minute, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.WorkspaceOwned)
	assert.Equal(t, 0, report.Repaired)
}

func TestScanAndRepairClassifiesTestFixture(t *testing.T) {
	indexesDir := t.TempDir()
	wsDir := filepath.Join(indexesDir, "unit-test-fixture_abc123def456")
	require.NoError(t, os.MkdirAll(wsDir, 0o755))
	writeLockFile(t, wsDir, 10*time.Second)

	reg := registry.New(filepath.Join(indexesDir, "registry.json"))
	report, err := ScanAndRepair(indexesDir, reg, 15*time.Minute, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TestFixtures)
}
