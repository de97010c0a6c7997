package indexsvc

import (
	"os"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
)

// Service owns every open IndexHandle for this process, bounded by an
// LRU of maxActive entries with an idle-cutoff reaper, per spec §4.5.
// The LRU choice is grounded on the sibling pack repo
// kadirpekel-hector's use of github.com/hashicorp/golang-lru/v2 for its
// own request/response caching, confirming it as this corpus's
// idiomatic bounded-cache library.
type Service struct {
	mu      sync.Mutex
	handles *lru.Cache[string, *IndexHandle]

	idleCutoff time.Duration

	stopReap chan struct{}
}

// New builds a Service with room for maxActive open handles. On
// eviction the LRU callback closes the evicted handle's bleve index so
// file descriptors and writer locks are released promptly.
func New(maxActive int, idleCutoff time.Duration) (*Service, error) {
	s := &Service{idleCutoff: idleCutoff, stopReap: make(chan struct{})}
	cache, err := lru.NewWithEvict(maxActive, func(_ string, h *IndexHandle) {
		_ = closeHandle(h)
	})
	if err != nil {
		return nil, cserrors.Wrap("construct index handle LRU", err)
	}
	s.handles = cache
	return s, nil
}

// Acquire opens (or returns the already-open) handle for a workspace
// hash, creating the on-disk index at dir if it doesn't exist yet.
func (s *Service) Acquire(hash, dir string) (*IndexHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.handles.Get(hash); ok {
		h.touch()
		return h, nil
	}

	h := newHandle(hash, dir)
	if !h.transition(StateOpening, StateClosed) {
		return nil, cserrors.ErrInvariant
	}

	idx, err := openOrCreate(dir)
	if err != nil {
		h.setState(StateFailed)
		return nil, err
	}
	h.index = idx
	h.setState(StateReady)

	s.handles.Add(hash, h)
	return h, nil
}

func openOrCreate(dir string) (bleve.Index, error) {
	if _, err := os.Stat(dir); err == nil {
		idx, err := bleve.Open(dir)
		if err != nil {
			return nil, cserrors.Wrap("open index", err)
		}
		return idx, nil
	}
	idx, err := bleve.NewUsing(dir, BuildIndexMapping(), bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, nil)
	if err != nil {
		return nil, cserrors.Wrap("create index", err)
	}
	return idx, nil
}

// Close closes and evicts a handle by workspace hash. Idempotent.
func (s *Service) Close(hash string) error {
	s.mu.Lock()
	h, ok := s.handles.Peek(hash)
	if ok {
		s.handles.Remove(hash)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return closeHandle(h)
}

func closeHandle(h *IndexHandle) error {
	if !h.transition(StateClosing, StateReady, StateFailed, StateOpening) {
		// Already closed or mid-transition elsewhere; nothing to do.
		return nil
	}
	h.writerMu.Lock()
	defer h.writerMu.Unlock()

	var err error
	if h.index != nil {
		err = h.index.Close()
		h.index = nil
	}
	h.setState(StateClosed)
	return err
}

// Active returns the workspace hashes with a currently open handle.
func (s *Service) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles.Keys()
}

// ReapIdle closes any handle whose LastAccess exceeds the configured
// idle cutoff, returning the number reaped.
func (s *Service) ReapIdle() int {
	s.mu.Lock()
	keys := s.handles.Keys()
	var idle []*IndexHandle
	for _, k := range keys {
		h, ok := s.handles.Peek(k)
		if ok && time.Since(h.LastAccess()) > s.idleCutoff {
			idle = append(idle, h)
		}
	}
	s.mu.Unlock()

	for _, h := range idle {
		_ = s.Close(h.WorkspaceHash)
	}
	return len(idle)
}

// RunIdleReaper starts a background goroutine that calls ReapIdle on the
// given interval until Stop is called.
func (s *Service) RunIdleReaper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.ReapIdle()
			case <-s.stopReap:
				return
			}
		}
	}()
}

// Stop halts the idle reaper and closes every open handle.
func (s *Service) Stop() {
	close(s.stopReap)
	s.mu.Lock()
	keys := s.handles.Keys()
	s.mu.Unlock()
	for _, k := range keys {
		_ = s.Close(k)
	}
}
