// Package fileindexer materializes a workspace into indexsvc.Document
// values and writes them through an IndexHandle, per spec §4.6. The
// bounded worker pool generalizes the teacher's pkg/embeddings/indexer.go
// processTasks (channel-fed goroutines draining into a shared error
// channel), swapping the teacher's single-result embedding call for a
// batched bleve write and adding a golang.org/x/sync/semaphore gate plus
// a sync.WaitGroup for the bounded queue + backpressure spec §4.6 calls
// for explicitly.
package fileindexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/text/unicode/norm"

	"github.com/anortham/codesearch-mcp/internal/indexsvc"
	"github.com/anortham/codesearch-mcp/internal/memorypressure"
)

// Breaker is the subset of internal/breaker's circuit breaker this
// package needs; a nil Breaker disables circuit-breaking entirely.
type Breaker interface {
	Allow() bool
	RecordSuccess()
	RecordFailure()
}

// PressureMonitor is the subset of internal/memorypressure's Monitor
// this package needs; a nil PressureMonitor disables throttling
// entirely and IndexWorkspace runs at its configured Config values
// throughout. Current is read at every batch boundary (spec §4.11),
// not just once at startup, so a workspace that gets indexed while
// memory is already tight still reacts to it mid-run.
type PressureMonitor interface {
	Current() memorypressure.Limits
}

// Config holds every tunable in spec §4.6 (defaults live in
// internal/config; this package only consumes already-resolved values).
type Config struct {
	Extensions           map[string]bool
	MaxFileSize          int64
	MmapThreshold        int64
	MaxConcurrency       int
	MaxQueueSize         int
	BatchSize            int
	RAMBufferBytes       int64
	MaxConsecutiveErrors int
}

// Stats summarizes one IndexWorkspace run.
type Stats struct {
	FilesScanned       int
	FilesIndexed       int
	FilesSkippedBinary int
	FilesSkippedSize   int
	Errors             int
	SubtreesSkipped    []string
	Duration           time.Duration
}

type FileIndexer struct {
	cfg Config
}

func New(cfg Config) *FileIndexer {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 80
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.MaxConsecutiveErrors <= 0 {
		cfg.MaxConsecutiveErrors = 20
	}
	return &FileIndexer{cfg: cfg}
}

type fileResult struct {
	doc      indexsvc.Document
	ok       bool
	binary   bool
	tooLarge bool
	errFor   string // subtree (top-level relative dir) this error belongs to
	failed   bool
}

// IndexWorkspace walks root, reads and analyzes every matching file
// concurrently (bounded by cfg.MaxConcurrency / cfg.MaxQueueSize), and
// commits documents to handle in batches of cfg.BatchSize or when the
// estimated RAM buffer would exceed cfg.RAMBufferBytes, whichever comes
// first.
func (fi *FileIndexer) IndexWorkspace(ctx context.Context, handle *indexsvc.IndexHandle, root string, breaker Breaker, pressure PressureMonitor) (Stats, error) {
	start := time.Now()
	var stats Stats

	files, err := Walk(root, fi.cfg.Extensions)
	if err != nil {
		return stats, err
	}
	stats.FilesScanned = len(files)

	results := make(chan fileResult, fi.cfg.MaxQueueSize)
	sem := semaphore.NewWeighted(int64(fi.cfg.MaxConcurrency))
	var wg sync.WaitGroup

	go func() {
		for _, f := range files {
			f := f
			weight := fi.acquireWeight(pressure)
			if err := sem.Acquire(ctx, weight); err != nil {
				break
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(weight)
				results <- fi.processFile(f)
			}()
		}
		wg.Wait()
		close(results)
	}()

	consecutiveErrors := make(map[string]int)
	skippedSubtrees := make(map[string]bool)

	batch := handle.NewBatch()
	var estimatedBytes int64

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := batch.Commit(); err != nil {
			return err
		}
		batch = handle.NewBatch()
		estimatedBytes = 0
		return nil
	}

	for res := range results {
		if breaker != nil && !breaker.Allow() {
			continue
		}

		switch {
		case res.binary:
			stats.FilesSkippedBinary++
			continue
		case res.tooLarge:
			stats.FilesSkippedSize++
			continue
		case res.failed:
			stats.Errors++
			subtree := res.errFor
			if skippedSubtrees[subtree] {
				continue
			}
			consecutiveErrors[subtree]++
			if consecutiveErrors[subtree] >= fi.cfg.MaxConsecutiveErrors {
				skippedSubtrees[subtree] = true
				stats.SubtreesSkipped = append(stats.SubtreesSkipped, subtree)
			}
			if breaker != nil {
				breaker.RecordFailure()
			}
			continue
		}

		consecutiveErrors[topLevelSubtree(res.doc.RelativePath)] = 0
		if err := batch.AddOrUpdate(res.doc); err != nil {
			stats.Errors++
			if breaker != nil {
				breaker.RecordFailure()
			}
			continue
		}
		stats.FilesIndexed++
		estimatedBytes += int64(len(res.doc.Content))
		if breaker != nil {
			breaker.RecordSuccess()
		}

		if batch.Len() >= fi.cfg.BatchSize || estimatedBytes >= fi.ramBufferLimit(pressure) {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// acquireWeight reports how many units of the (fixed-capacity) worker
// semaphore one more file should consume. Under pressure, cfg's normal
// MaxConcurrency stays the semaphore's ceiling, but each goroutine
// claims proportionally more of it, so the number actually running
// concurrently shrinks toward pressure.Current()'s reduced budget
// without resizing the semaphore mid-run.
func (fi *FileIndexer) acquireWeight(pressure PressureMonitor) int64 {
	if pressure == nil || fi.cfg.MaxConcurrency <= 0 {
		return 1
	}
	cur := pressure.Current()
	if cur.MaxConcurrency <= 0 || cur.MaxConcurrency >= fi.cfg.MaxConcurrency {
		return 1
	}
	ratio := fi.cfg.MaxConcurrency / cur.MaxConcurrency
	if ratio < 1 {
		ratio = 1
	}
	return int64(ratio)
}

// ramBufferLimit returns the RAM buffer threshold the next flush
// decision should use, consulting pressure at this batch boundary
// instead of a value fixed at FileIndexer construction time.
func (fi *FileIndexer) ramBufferLimit(pressure PressureMonitor) int64 {
	if pressure == nil {
		return fi.cfg.RAMBufferBytes
	}
	if cur := pressure.Current(); cur.RAMBufferBytes > 0 {
		return cur.RAMBufferBytes
	}
	return fi.cfg.RAMBufferBytes
}

func (fi *FileIndexer) processFile(f candidateFile) fileResult {
	subtree := topLevelSubtree(f.RelPath)

	if f.Info.Size() > fi.cfg.MaxFileSize {
		return fileResult{tooLarge: true}
	}

	raw, err := readContent(f.AbsPath, f.Info.Size(), fi.cfg.MmapThreshold)
	if err != nil {
		return fileResult{failed: true, errFor: subtree}
	}
	if isBinary(raw) {
		return fileResult{binary: true}
	}

	content := decodeLossy(raw)
	ext := strings.ToLower(filepath.Ext(f.RelPath))

	relSlash := norm.NFC.String(filepath.ToSlash(f.RelPath))
	dir := norm.NFC.String(filepath.ToSlash(filepath.Dir(f.RelPath)))
	if dir == "." {
		dir = ""
	}
	filename := norm.NFC.String(filepath.Base(f.RelPath))

	doc := indexsvc.Document{
		Path:                f.AbsPath,
		RelativePath:        relSlash,
		Filename:            filename,
		Extension:           ext,
		Language:            languageFor(ext),
		Size:                f.Info.Size(),
		ModifiedTicks:       f.Info.ModTime().UnixNano(),
		Content:             content,
		ContentCode:         content,
		ContentSymbols:      content,
		ContentLiteral:      content,
		ContentPatterns:     content,
		Directory:           dir,
		FilenameLiteral:     filename,
		RelativePathLiteral: relSlash,
	}
	return fileResult{doc: doc, ok: true}
}

// IndexSingle reads and analyzes one file under root for the watcher's
// incremental-update path (spec §4.7), bypassing the full-tree Walk and
// worker pool IndexWorkspace uses -- a single changed path doesn't
// warrant either. ok is false when the file's extension isn't indexed.
func (fi *FileIndexer) IndexSingle(root, absPath string) (doc indexsvc.Document, ok bool, err error) {
	rel, relErr := filepath.Rel(root, absPath)
	if relErr != nil {
		rel = absPath
	}
	rel = filepath.ToSlash(rel)

	ext := strings.ToLower(filepath.Ext(absPath))
	if !fi.cfg.Extensions[ext] {
		return indexsvc.Document{}, false, nil
	}

	info, statErr := os.Stat(absPath)
	if statErr != nil {
		return indexsvc.Document{}, false, statErr
	}

	res := fi.processFile(candidateFile{AbsPath: absPath, RelPath: rel, Info: info})
	if res.binary || res.tooLarge || res.failed {
		return indexsvc.Document{}, false, nil
	}
	return res.doc, true, nil
}

func topLevelSubtree(relPath string) string {
	parts := strings.SplitN(filepath.ToSlash(relPath), "/", 2)
	if len(parts) == 0 {
		return "."
	}
	if len(parts) == 1 {
		return "."
	}
	return parts[0]
}
