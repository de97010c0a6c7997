package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCreatesThenReuses(t *testing.T) {
	dir := t.TempDir()
	r := New(filepath.Join(dir, "registry.json"))

	entry, err := r.GetOrCreate("hash1", "/tmp/workspace", "workspace_hash1", "workspace")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, entry.Status)

	again, err := r.GetOrCreate("hash1", "/tmp/workspace", "workspace_hash1", "workspace")
	require.NoError(t, err)
	assert.Equal(t, entry.CreatedAt, again.CreatedAt)
}

func TestUpdateAndList(t *testing.T) {
	dir := t.TempDir()
	r := New(filepath.Join(dir, "registry.json"))

	_, err := r.GetOrCreate("h1", "/a", "a_h1", "a")
	require.NoError(t, err)
	_, err = r.GetOrCreate("h2", "/b", "b_h2", "b")
	require.NoError(t, err)

	list, err := r.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].DisplayName)
	assert.Equal(t, "b", list[1].DisplayName)
}

func TestScanAndReconcileMarksOrphan(t *testing.T) {
	base := t.TempDir()
	indexesDir := filepath.Join(base, "indexes")
	require.NoError(t, os.MkdirAll(filepath.Join(indexesDir, "orphan_abc123def456"), 0o755))

	r := New(filepath.Join(indexesDir, "registry.json"))
	discovered, err := r.ScanAndReconcile(indexesDir)
	require.NoError(t, err)
	assert.Equal(t, 1, discovered)

	orphans, err := r.ListOrphans()
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, ReasonNoMetadata, orphans[0].Reason)
}

func TestScanAndReconcileSkipsKnownDirectories(t *testing.T) {
	base := t.TempDir()
	indexesDir := filepath.Join(base, "indexes")
	require.NoError(t, os.MkdirAll(filepath.Join(indexesDir, "known_abc123def456"), 0o755))

	r := New(filepath.Join(indexesDir, "registry.json"))
	_, err := r.GetOrCreate("abc123def456", "/tmp/known", "known_abc123def456", "known")
	require.NoError(t, err)

	discovered, err := r.ScanAndReconcile(indexesDir)
	require.NoError(t, err)
	assert.Equal(t, 0, discovered)
}

func TestMigrateFromLegacyImportsUnknownDirectories(t *testing.T) {
	dir := t.TempDir()
	r := New(filepath.Join(dir, "registry.json"))

	imported, err := r.MigrateFromLegacy(dir, []string{"old-workspace_abc123def456"})
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	entry, err := r.Get("abc123def456")
	require.NoError(t, err)
	assert.Equal(t, "old-workspace", entry.DisplayName)
}
