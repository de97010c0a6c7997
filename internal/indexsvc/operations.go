package indexsvc

import (
	"github.com/blevesearch/bleve/v2"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
)

// Batch accumulates add/update/delete operations for a single Commit
// call, letting FileIndexer amortize scorch's segment-flush cost across
// many documents per spec §4.6's batching policy.
type Batch struct {
	handle *IndexHandle
	batch  *bleve.Batch
	count  int
}

// NewBatch starts a batch of writes against handle. The caller must
// eventually call Commit (even an empty batch commit is cheap and keeps
// the NRT reader current).
func (h *IndexHandle) NewBatch() *Batch {
	return &Batch{handle: h, batch: h.index.NewBatch()}
}

// AddOrUpdate stages a delete-by-term-on-path followed by an add, so a
// re-indexed file never produces duplicate hits -- same discipline as
// spec §4.5's add_or_update contract.
func (b *Batch) AddOrUpdate(doc Document) error {
	b.batch.Delete(doc.BleveID())
	if err := b.batch.Index(doc.BleveID(), doc); err != nil {
		return cserrors.Wrap("stage document", err)
	}
	b.count++
	return nil
}

// Delete stages a delete-by-term on path.
func (b *Batch) Delete(path string) {
	b.batch.Delete(path)
	b.count++
}

func (b *Batch) Len() int { return b.count }

// Commit flushes the batch, advances the handle's commit generation,
// and lets scorch refresh its own NRT reader snapshot -- no manual
// refresh call is needed, per spec §4.5.
func (b *Batch) Commit() error {
	h := b.handle
	if !h.transition(StateIndexing, StateReady) {
		return cserrors.ErrIndexLocked
	}
	defer h.transition(StateReady, StateIndexing)

	h.writerMu.Lock()
	defer h.writerMu.Unlock()

	if b.count == 0 {
		return nil
	}
	if err := h.index.Batch(b.batch); err != nil {
		return cserrors.Wrap("commit batch", err)
	}
	h.bumpGeneration()
	return nil
}

// SearchOptions carries the knobs queryplanner needs beyond the raw
// bleve.SearchRequest -- currently just a place to extend without
// breaking Search's signature.
type SearchOptions struct {
	Request *bleve.SearchRequest
}

// Search runs req against the handle's current reader snapshot. Reads
// never take writerMu: scorch's reader is already a consistent
// point-in-time snapshot, so concurrent writers never block a search in
// flight.
func (h *IndexHandle) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	h.touch()
	idx := h.Index()
	if idx == nil {
		return nil, cserrors.ErrWorkspaceNotIndexed
	}
	result, err := idx.Search(req)
	if err != nil {
		return nil, cserrors.Wrap("search", err)
	}
	return result, nil
}

// DocCount returns the number of documents currently in the index.
func (h *IndexHandle) DocCount() (uint64, error) {
	idx := h.Index()
	if idx == nil {
		return 0, cserrors.ErrWorkspaceNotIndexed
	}
	count, err := idx.DocCount()
	if err != nil {
		return 0, cserrors.Wrap("doc count", err)
	}
	return count, nil
}

// Repair closes the index and reopens it from dir, taking a successful
// reopen plus a successful DocCount as its check that the index is not
// corrupt (scorch itself provides no segment-checksum API). On success
// the handle returns to Ready; otherwise it moves to Failed and
// ErrIndexCorrupt is returned. Repair does not rebuild the index from
// source files.
func (h *IndexHandle) Repair(dir string) error {
	if !h.transition(StateRepairing, StateReady, StateFailed) {
		return cserrors.ErrInvariant
	}

	h.writerMu.Lock()
	defer h.writerMu.Unlock()

	if h.index != nil {
		_ = h.index.Close()
		h.index = nil
	}

	idx, err := bleve.Open(dir)
	if err != nil {
		h.setState(StateFailed)
		return cserrors.ErrIndexCorrupt
	}
	if _, err := idx.DocCount(); err != nil {
		_ = idx.Close()
		h.setState(StateFailed)
		return cserrors.ErrIndexCorrupt
	}

	h.index = idx
	h.setState(StateReady)
	return nil
}
