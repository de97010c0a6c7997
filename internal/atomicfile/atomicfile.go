// Package atomicfile writes files via temp-file-plus-rename, adapted
// verbatim in spirit from the teacher's pkg/obsidian/fsutil.go
// WriteFileAtomic, generalized for any caller that needs crash-safe writes
// (the workspace registry, in particular).
package atomicfile

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Write writes data to path atomically: it writes to a temp file in the
// same directory, syncs it, then renames it over the target so a crash
// mid-write never leaves a partial file in place.
func Write(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	tmp = nil

	return os.Rename(tmpName, path)
}
