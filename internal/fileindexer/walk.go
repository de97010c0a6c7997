package fileindexer

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// defaultIgnoredDirs mirrors the teacher's shouldSkipDir in
// pkg/embeddings/indexer.go (hidden directories plus a handful of
// well-known non-source directories), generalized with the build-output
// directories a source-code workspace actually produces.
var defaultIgnoredDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"bin":          true,
	"obj":          true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"target":       true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vs":          true,
	".vscode":      true,
}

func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return defaultIgnoredDirs[strings.ToLower(name)]
}

// candidateFile is one file surviving the extension allow-list and
// ignore rules, with its root-relative path precomputed.
type candidateFile struct {
	AbsPath string
	RelPath string
	Info    fs.FileInfo
}

// Walk enumerates every file under root whose extension is in
// extensions (lowercased, leading dot), skipping hidden and
// well-known build-output directories.
func Walk(root string, extensions map[string]bool) ([]candidateFile, error) {
	var files []candidateFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A single unreadable entry shouldn't abort the whole walk;
			// skip it and let the caller's error-budget tracking see it
			// via the returned partial list falling short of the tree.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !extensions[ext] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, candidateFile{
			AbsPath: path,
			RelPath: filepath.ToSlash(rel),
			Info:    info,
		})
		return nil
	})
	if err != nil {
		return files, err
	}
	return files, nil
}
