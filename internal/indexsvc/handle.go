package indexsvc

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
)

// State is a handle's position in the spec §4.5 state machine:
// Closed -> Opening -> Ready <-> Indexing -> Closing -> Closed, with
// Ready -> Repairing -> Ready|Failed as a side branch. From Failed, only
// Closing or Opening (force rebuild) are permitted.
type State string

const (
	StateClosed    State = "Closed"
	StateOpening   State = "Opening"
	StateReady     State = "Ready"
	StateIndexing  State = "Indexing"
	StateClosing   State = "Closing"
	StateRepairing State = "Repairing"
	StateFailed    State = "Failed"
)

// IndexHandle owns one workspace's bleve/scorch index. Writer operations
// serialize through writerMu; reads go directly against the index's own
// NRT reader snapshot and never block on writerMu, matching spec §4.5's
// "reads never block writes and vice versa."
type IndexHandle struct {
	WorkspaceHash string
	Dir           string

	mu    sync.RWMutex
	state State

	index bleve.Index

	writerMu sync.Mutex

	commitGeneration uint64
	lastAccess       atomic.Int64 // unix nanos
	openedAt         time.Time
}

func newHandle(hash, dir string) *IndexHandle {
	h := &IndexHandle{WorkspaceHash: hash, Dir: dir, state: StateClosed}
	h.touch()
	return h
}

func (h *IndexHandle) touch() {
	h.lastAccess.Store(time.Now().UnixNano())
}

func (h *IndexHandle) LastAccess() time.Time {
	return time.Unix(0, h.lastAccess.Load())
}

func (h *IndexHandle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

func (h *IndexHandle) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// transition moves the handle from one of `from` into `to`, returning
// false (without changing state) if the handle isn't currently in one of
// the allowed source states.
func (h *IndexHandle) transition(to State, from ...State) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, f := range from {
		if h.state == f {
			h.state = to
			return true
		}
	}
	return false
}

func (h *IndexHandle) CommitGeneration() uint64 {
	return atomic.LoadUint64(&h.commitGeneration)
}

func (h *IndexHandle) bumpGeneration() {
	atomic.AddUint64(&h.commitGeneration, 1)
}

// Index exposes the underlying bleve.Index for callers (queryplanner)
// that need to build and run a *bleve.SearchRequest directly.
func (h *IndexHandle) Index() bleve.Index {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}
