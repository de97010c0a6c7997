package service

import (
	"path/filepath"
	"time"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
	"github.com/anortham/codesearch-mcp/internal/indexsvc"
	"github.com/anortham/codesearch-mcp/internal/registry"
	"github.com/anortham/codesearch-mcp/internal/watcher"
)

// resolvedWorkspace bundles everything operations need after resolving
// a caller-supplied workspace path.
type resolvedWorkspace struct {
	canonical string
	hash      string
	dirName   string
	indexDir  string
}

func (s *Service) resolveWorkspace(workspacePath string) (resolvedWorkspace, error) {
	canonical, hash, dirName, err := s.resolver.Resolve(workspacePath)
	if err != nil {
		return resolvedWorkspace{}, err
	}
	return resolvedWorkspace{
		canonical: canonical,
		hash:      hash,
		dirName:   dirName,
		indexDir:  filepath.Join(s.resolver.IndexesDir(), dirName),
	}, nil
}

// acquireIndexed resolves workspacePath and returns its handle only if
// the workspace already has a registry entry, per the spec's
// distinction between "never indexed" (ErrWorkspaceNotIndexed) and "not
// currently open" (transparently reopened).
func (s *Service) acquireIndexed(workspacePath string) (resolvedWorkspace, *indexsvc.IndexHandle, registry.WorkspaceEntry, error) {
	rw, err := s.resolveWorkspace(workspacePath)
	if err != nil {
		return resolvedWorkspace{}, nil, registry.WorkspaceEntry{}, err
	}
	entry, err := s.registry.Get(rw.hash)
	if err != nil {
		return resolvedWorkspace{}, nil, registry.WorkspaceEntry{}, cserrors.ErrWorkspaceNotIndexed
	}
	handle, err := s.indexes.Acquire(rw.hash, rw.indexDir)
	if err != nil {
		return resolvedWorkspace{}, nil, registry.WorkspaceEntry{}, err
	}
	return rw, handle, entry, nil
}

// ensureWatcher starts a debounced FileWatcher over a workspace root if
// one isn't already running, wiring its coalesced changes to
// incremental re-indexing via fileindexer.IndexSingle, per spec §4.7.
func (s *Service) ensureWatcher(rw resolvedWorkspace, handle *indexsvc.IndexHandle) {
	s.mu.Lock()
	if _, ok := s.watchers[rw.hash]; ok {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	debounce := time.Duration(s.cfg.Watcher.DebounceMs) * time.Millisecond
	quiet := time.Duration(s.cfg.Watcher.QuietMs) * time.Millisecond

	w, err := watcher.New(rw.canonical, debounce, quiet, func(change watcher.Change) bool {
		s.applyChange(rw, handle, change)
		return true
	})
	if err != nil {
		return
	}
	if err := w.Start(); err != nil {
		return
	}

	s.mu.Lock()
	s.watchers[rw.hash] = w
	s.mu.Unlock()
}

// applyChange commits one coalesced filesystem change straight to the
// workspace's index, outside the bulk IndexWorkspace batching path.
func (s *Service) applyChange(rw resolvedWorkspace, handle *indexsvc.IndexHandle, change watcher.Change) {
	batch := handle.NewBatch()
	switch change.Kind {
	case watcher.ChangeDeleted:
		batch.Delete(change.Path)
	case watcher.ChangeModified:
		doc, ok, err := s.indexer.IndexSingle(rw.canonical, change.Path)
		if err != nil || !ok {
			return
		}
		if err := batch.AddOrUpdate(doc); err != nil {
			return
		}
	}
	_ = batch.Commit()
}

func (s *Service) watcherRunning(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watchers[hash]
	return ok
}
