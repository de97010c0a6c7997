// Package watcher keeps a workspace index current without wasteful
// re-indexing, per spec §4.7: debounced Modified coalescing, a delete
// quiet period, and atomic-write coalescence (Deleted immediately
// followed by Created on the same path becomes one Modified). The
// Watcher interface and fsnotify wiring generalize the teacher's
// pkg/cache/service.go watchLoop/markDirty/addWatch machinery from an
// in-memory note cache to a dispatcher that hands each coalesced change
// to a caller-supplied Dispatch function instead of updating a map in
// place.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind is the coalesced action a pending path resolves to.
type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
)

// Change is one coalesced filesystem change ready to hand off to the
// indexer.
type Change struct {
	Path string
	Kind ChangeKind
}

// FSWatcher abstracts fsnotify for testability, mirroring the teacher's
// own Watcher interface in pkg/cache/service.go.
type FSWatcher interface {
	Add(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsNotifyWatcher struct{ *fsnotify.Watcher }

func (f *fsNotifyWatcher) Events() <-chan fsnotify.Event { return f.Watcher.Events }
func (f *fsNotifyWatcher) Errors() <-chan error          { return f.Watcher.Errors }

func newFSWatcher() (FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &fsNotifyWatcher{Watcher: w}, nil
}

// Dispatch hands a coalesced Change to the indexing layer. It returns
// false when the caller's queue is saturated, signaling the watcher to
// back off rather than drop the event.
type Dispatch func(Change) bool

type pendingEntry struct {
	kind  ChangeKind
	timer *time.Timer
	gen   uint64 // invalidates a fired timer that was rescheduled since
}

type fireEvent struct {
	path string
	kind ChangeKind
	gen  uint64
}

// Watcher runs one scheduling loop per workspace root: fsnotify events
// and timer firings both funnel through loop(). mu guards pending and
// gens, which Close() also touches once the loop has stopped.
type Watcher struct {
	root    string
	fs      FSWatcher
	debounce time.Duration
	quiet    time.Duration
	dispatch Dispatch

	mu      sync.Mutex // guards pending and gens
	pending map[string]*pendingEntry
	gens    map[string]uint64
	fireCh  chan fireEvent

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Watcher over root. Call Start to begin watching.
func New(root string, debounce, quiet time.Duration, dispatch Dispatch) (*Watcher, error) {
	fw, err := newFSWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		root:     root,
		fs:       fw,
		debounce: debounce,
		quiet:    quiet,
		dispatch: dispatch,
		pending:  make(map[string]*pendingEntry),
		gens:     make(map[string]uint64),
		fireCh:   make(chan fireEvent, 256),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start installs watches on every directory under root and begins the
// scheduling loop.
func (w *Watcher) Start() error {
	if err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(w.root) && shouldSkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	}); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Close cancels the scheduling loop, drains every pending timer without
// firing it, and closes the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.cancel()
	<-w.done

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.pending = make(map[string]*pendingEntry)
	w.mu.Unlock()

	return w.fs.Close()
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case evt, ok := <-w.fs.Events():
			if !ok {
				return
			}
			w.handleEvent(evt)
		case _, ok := <-w.fs.Errors():
			if !ok {
				return
			}
		case f := <-w.fireCh:
			w.handleFire(f)
		}
	}
}

func (w *Watcher) handleEvent(evt fsnotify.Event) {
	switch {
	case evt.Op&fsnotify.Create != 0:
		w.onCreateOrModify(evt.Name)
	case evt.Op&fsnotify.Write != 0:
		w.onCreateOrModify(evt.Name)
	case evt.Op&fsnotify.Remove != 0:
		w.onRemoveOrRename(evt.Name)
	case evt.Op&fsnotify.Rename != 0:
		w.onRemoveOrRename(evt.Name)
	}
}

// onCreateOrModify implements debounce coalescing and, when a delete is
// still pending for the same path within the quiet period, atomic-write
// coalescence: the pair collapses into a single Modified.
func (w *Watcher) onCreateOrModify(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.pending[path]; ok {
		existing.timer.Stop()
		delete(w.pending, path)
	}
	w.scheduleLocked(path, ChangeModified, w.debounce)
}

// onRemoveOrRename starts the delete quiet period; a superseding
// Created/Modified before it elapses cancels the delete entirely
// (handled by onCreateOrModify stopping this timer).
func (w *Watcher) onRemoveOrRename(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.pending[path]; ok {
		existing.timer.Stop()
		delete(w.pending, path)
	}
	w.scheduleLocked(path, ChangeDeleted, w.quiet)
}

func (w *Watcher) scheduleLocked(path string, kind ChangeKind, after time.Duration) {
	w.gens[path]++
	gen := w.gens[path]
	entry := &pendingEntry{kind: kind, gen: gen}
	entry.timer = time.AfterFunc(after, func() {
		select {
		case w.fireCh <- fireEvent{path: path, kind: kind, gen: gen}:
		case <-w.ctx.Done():
		}
	})
	w.pending[path] = entry
}

func (w *Watcher) handleFire(f fireEvent) {
	w.mu.Lock()
	entry, ok := w.pending[f.path]
	if !ok || entry.gen != f.gen {
		w.mu.Unlock()
		return // superseded by a later reschedule
	}
	delete(w.pending, f.path)
	w.mu.Unlock()

	change := Change{Path: f.path, Kind: f.kind}
	if !w.dispatch(change) {
		// Backpressure: the indexer's queue is saturated. Coalesce
		// harder by rescheduling with a longer debounce rather than
		// dropping the change.
		w.mu.Lock()
		w.scheduleLocked(f.path, f.kind, w.debounce*4)
		w.mu.Unlock()
	}
}

var defaultIgnoredDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
	"bin":          true,
	"obj":          true,
	"dist":         true,
	"build":        true,
}

func shouldSkipDir(name string) bool {
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	return defaultIgnoredDirs[name]
}
