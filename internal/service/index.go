package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
	"github.com/anortham/codesearch-mcp/internal/registry"
)

// IndexWorkspace implements index_workspace (spec §6): resolve the
// path, acquire (or create) its index, run the bulk FileIndexer pass
// gated by the workspace's circuit breaker, update the registry entry,
// and start its FileWatcher so subsequent changes stay incremental.
func (s *Service) IndexWorkspace(ctx context.Context, workspacePath string, forceRebuild bool) (IndexWorkspaceResult, error) {
	rw, err := s.resolveWorkspace(workspacePath)
	if err != nil {
		return IndexWorkspaceResult{}, err
	}

	if forceRebuild {
		_ = s.indexes.Close(rw.hash)
		if err := os.RemoveAll(rw.indexDir); err != nil && !os.IsNotExist(err) {
			return IndexWorkspaceResult{}, cserrors.Wrap("remove existing index for rebuild", err)
		}
	}

	b := s.breakerFor(rw.hash)
	if !b.Allow() {
		return IndexWorkspaceResult{}, cserrors.ErrBreakerOpen
	}

	entry, err := s.registry.GetOrCreate(rw.hash, rw.canonical, rw.dirName, filepath.Base(rw.canonical))
	if err != nil {
		return IndexWorkspaceResult{}, err
	}

	handle, err := s.indexes.Acquire(rw.hash, rw.indexDir)
	if err != nil {
		b.RecordFailure()
		return IndexWorkspaceResult{}, err
	}

	start := time.Now()
	stats, err := s.indexer.IndexWorkspace(ctx, handle, rw.canonical, b, s.pressure)
	if err != nil {
		b.RecordFailure()
		return IndexWorkspaceResult{}, err
	}
	b.RecordSuccess()

	docCount, _ := handle.DocCount()
	entry.DocumentCount = int(docCount)
	entry.IndexSizeBytes = dirSize(rw.indexDir)
	entry.Status = registry.StatusActive
	entry.LastAccessed = time.Now()
	if err := s.registry.Update(entry); err != nil {
		return IndexWorkspaceResult{}, err
	}

	s.ensureWatcher(rw, handle)

	return IndexWorkspaceResult{
		Indexed:    stats.FilesIndexed,
		Skipped:    stats.FilesSkippedBinary + stats.FilesSkippedSize,
		Failures:   stats.Errors,
		DurationMs: stats.Duration.Milliseconds(),
	}, nil
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
