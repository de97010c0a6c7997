package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
)

// ScanAndReconcile walks indexesDir and reconciles it against the registry:
// any index directory with no matching workspace entry is recorded as an
// orphan (if not already), and any orphan whose directory has since
// disappeared is cleared. It returns the number of newly discovered
// orphans.
func (r *Registry) ScanAndReconcile(indexesDir string) (int, error) {
	entries, err := os.ReadDir(indexesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, cserrors.Wrap("scan indexes directory", err)
	}

	known := make(map[string]bool)
	doc, err := r.load()
	if err != nil {
		return 0, err
	}
	for _, w := range doc.Workspaces {
		known[w.DirectoryName] = true
	}

	discovered := 0
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "registry.json" {
			continue
		}
		if known[e.Name()] {
			continue
		}
		if _, exists := doc.OrphanedIndexes[e.Name()]; exists {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if err := r.MarkOrphan(OrphanedIndex{
			DirectoryName: e.Name(),
			DiscoveredAt:  nowFunc(),
			LastModified:  info.ModTime(),
			Reason:        classifyOrphanReason(filepath.Join(indexesDir, e.Name())),
			SizeBytes:     dirSize(filepath.Join(indexesDir, e.Name())),
		}); err != nil {
			return discovered, err
		}
		discovered++
	}

	// Clear orphans whose directories have since been removed from disk.
	orphans, err := r.ListOrphans()
	if err != nil {
		return discovered, err
	}
	for _, o := range orphans {
		if _, err := os.Stat(filepath.Join(indexesDir, o.DirectoryName)); os.IsNotExist(err) {
			if err := r.ClearOrphan(o.DirectoryName); err != nil {
				return discovered, err
			}
		}
	}

	return discovered, nil
}

// classifyOrphanReason inspects an orphaned directory's on-disk shape to
// decide why it has no live workspace entry, matching spec §3's
// OrphanReason enum.
func classifyOrphanReason(dir string) OrphanReason {
	metaPath := filepath.Join(dir, "metadata.json")
	content, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return ReasonNoMetadata
	}
	if err != nil {
		return ReasonCorruptedMetadata
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return ReasonCorruptedMetadata
	}
	return ReasonUnresolvable
}

func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}

// MigrateFromLegacy imports workspace entries from a pre-registry
// installation that tracked workspaces as a flat list of directory names
// with no metadata, seeding Active entries whose OriginalPath is the
// directory name itself and whose DisplayName is the directory name with
// its hash suffix stripped. No per-index metadata file is read.
func (r *Registry) MigrateFromLegacy(indexesDir string, legacyDirNames []string) (int, error) {
	imported := 0
	for _, dirName := range legacyDirNames {
		hash := hashSuffix(dirName)
		if hash == "" {
			continue
		}
		if _, err := r.Get(hash); err == nil {
			continue
		}
		entry := WorkspaceEntry{
			Hash:          hash,
			OriginalPath:  dirName,
			DirectoryName: dirName,
			DisplayName:   strings.TrimSuffix(dirName, "_"+hash),
			Status:        StatusActive,
			CreatedAt:     nowFunc(),
			LastAccessed:  nowFunc(),
		}
		if err := r.Update(entry); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// hashSuffix extracts the trailing "_<12-hex>" fingerprint a directory
// name carries, per pathresolver.DirectoryName's naming scheme.
func hashSuffix(dirName string) string {
	idx := strings.LastIndex(dirName, "_")
	if idx < 0 || idx+13 != len(dirName) {
		return ""
	}
	return dirName[idx+1:]
}
