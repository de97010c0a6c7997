// Package registry implements the cross-workspace registry of spec §3/§6:
// a single JSON document tracking every known workspace and any orphaned
// index directories, guarded by an OS file lock so that concurrent CLI
// invocations and the long-lived MCP server never interleave writes. The
// locking discipline generalizes the teacher's pkg/cache/service.go mutex
// pattern from an in-process mutex to a cross-process gofrs/flock guard,
// since the registry is shared by multiple OS processes rather than
// multiple goroutines in one.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/anortham/codesearch-mcp/internal/atomicfile"
	"github.com/anortham/codesearch-mcp/internal/cserrors"
	"github.com/gofrs/flock"
)

// Registry is the handle onto the on-disk registry.json for one
// installation (one BasePath).
type Registry struct {
	path     string
	lockPath string
}

// New returns a Registry backed by the given registry.json path.
func New(path string) *Registry {
	return &Registry{path: path, lockPath: path + ".lock"}
}

// withLock runs fn while holding an exclusive cross-process file lock,
// loading the current document before fn and persisting whatever fn
// returns afterward. fn may mutate doc in place.
func (r *Registry) withLock(fn func(doc *document) error) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return cserrors.Wrap("create registry directory", err)
	}

	fl := flock.New(r.lockPath)
	locked, err := fl.TryLockContext(timeoutContext(), 50*time.Millisecond)
	if err != nil {
		return cserrors.Wrap("acquire registry lock", err)
	}
	if !locked {
		return cserrors.ErrTimeout
	}
	defer fl.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	doc.recomputeStatistics()
	doc.LastUpdated = nowFunc()
	return r.persist(doc)
}

func (r *Registry) load() (*document, error) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDocument(), nil
		}
		return nil, cserrors.Wrap("read registry", err)
	}
	if len(content) == 0 {
		return newDocument(), nil
	}
	var doc document
	if err := json.Unmarshal(content, &doc); err != nil {
		// A corrupted registry is recoverable: start fresh rather than
		// wedge every workspace behind an unparsable file.
		return newDocument(), nil
	}
	if doc.Workspaces == nil {
		doc.Workspaces = make(map[string]WorkspaceEntry)
	}
	if doc.OrphanedIndexes == nil {
		doc.OrphanedIndexes = make(map[string]OrphanedIndex)
	}
	return &doc, nil
}

func (r *Registry) persist(doc *document) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return cserrors.Wrap("marshal registry", err)
	}
	if err := atomicfile.Write(r.path, content, 0o644); err != nil {
		return cserrors.Wrap("write registry", err)
	}
	return nil
}

// GetOrCreate returns the existing entry for hash, or creates one using
// the supplied seed fields when no entry exists yet.
func (r *Registry) GetOrCreate(hash, originalPath, directoryName, displayName string) (WorkspaceEntry, error) {
	var result WorkspaceEntry
	err := r.withLock(func(doc *document) error {
		if existing, ok := doc.Workspaces[hash]; ok {
			existing.LastAccessed = nowFunc()
			doc.Workspaces[hash] = existing
			result = existing
			return nil
		}
		entry := WorkspaceEntry{
			Hash:          hash,
			OriginalPath:  originalPath,
			DirectoryName: directoryName,
			DisplayName:   displayName,
			Status:        StatusActive,
			CreatedAt:     nowFunc(),
			LastAccessed:  nowFunc(),
		}
		doc.Workspaces[hash] = entry
		result = entry
		return nil
	})
	return result, err
}

// Get returns the entry for hash, or ErrNotFound.
func (r *Registry) Get(hash string) (WorkspaceEntry, error) {
	doc, err := r.load()
	if err != nil {
		return WorkspaceEntry{}, err
	}
	entry, ok := doc.Workspaces[hash]
	if !ok {
		return WorkspaceEntry{}, cserrors.ErrNotFound
	}
	return entry, nil
}

// List returns every known workspace, sorted by DisplayName for stable
// output.
func (r *Registry) List() ([]WorkspaceEntry, error) {
	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]WorkspaceEntry, 0, len(doc.Workspaces))
	for _, w := range doc.Workspaces {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

// ListOrphans returns every orphaned index directory, sorted by
// DiscoveredAt (oldest first).
func (r *Registry) ListOrphans() ([]OrphanedIndex, error) {
	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]OrphanedIndex, 0, len(doc.OrphanedIndexes))
	for _, o := range doc.OrphanedIndexes {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscoveredAt.Before(out[j].DiscoveredAt) })
	return out, nil
}

// Update replaces (or inserts) entry keyed by its Hash.
func (r *Registry) Update(entry WorkspaceEntry) error {
	return r.withLock(func(doc *document) error {
		doc.Workspaces[entry.Hash] = entry
		return nil
	})
}

// Remove deletes the entry for hash, if present.
func (r *Registry) Remove(hash string) error {
	return r.withLock(func(doc *document) error {
		delete(doc.Workspaces, hash)
		return nil
	})
}

// MarkOrphan records an index directory with no live workspace entry.
func (r *Registry) MarkOrphan(o OrphanedIndex) error {
	return r.withLock(func(doc *document) error {
		doc.OrphanedIndexes[o.DirectoryName] = o
		return nil
	})
}

// ClearOrphan removes a directoryName from the orphan set, typically
// after it has been deleted or reclaimed by a reconciled workspace.
func (r *Registry) ClearOrphan(directoryName string) error {
	return r.withLock(func(doc *document) error {
		delete(doc.OrphanedIndexes, directoryName)
		return nil
	})
}

// Statistics returns the current aggregate summary.
func (r *Registry) Statistics() (Statistics, error) {
	doc, err := r.load()
	if err != nil {
		return Statistics{}, err
	}
	doc.recomputeStatistics()
	return doc.Statistics, nil
}
