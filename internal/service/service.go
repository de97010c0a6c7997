package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/anortham/codesearch-mcp/internal/breaker"
	"github.com/anortham/codesearch-mcp/internal/config"
	"github.com/anortham/codesearch-mcp/internal/cserrors"
	"github.com/anortham/codesearch-mcp/internal/fileindexer"
	"github.com/anortham/codesearch-mcp/internal/indexsvc"
	"github.com/anortham/codesearch-mcp/internal/lockmanager"
	"github.com/anortham/codesearch-mcp/internal/memorypressure"
	"github.com/anortham/codesearch-mcp/internal/pathresolver"
	"github.com/anortham/codesearch-mcp/internal/querycache"
	"github.com/anortham/codesearch-mcp/internal/registry"
	"github.com/anortham/codesearch-mcp/internal/responsebuilder"
	"github.com/anortham/codesearch-mcp/internal/watcher"
)

// Service owns every long-lived dependency a request-surface operation
// needs, one instance per process (CLI invocations construct and tear
// one down per command; the MCP server holds one for its lifetime).
type Service struct {
	cfg      config.Config
	resolver *pathresolver.Resolver
	registry *registry.Registry
	indexes  *indexsvc.Service
	cache    *querycache.Cache
	pressure *memorypressure.Monitor
	indexer  *fileindexer.FileIndexer

	mu       sync.Mutex
	breakers map[string]*breaker.Breaker
	watchers map[string]*watcher.Watcher

	continuationKey []byte

	cancel context.CancelFunc
}

// New constructs a Service and runs the startup recovery pass spec §4.3
// calls for: stale lock repair followed by registry reconciliation,
// mirroring the teacher's own "repair before serve" ordering in
// cmd/mcp.go's cache warm-up.
func New(cfg config.Config) (*Service, error) {
	resolver := pathresolver.New(cfg.BasePath)
	reg := registry.New(resolver.RegistryPath())

	idxSvc, err := indexsvc.New(cfg.MaxActiveIndexes, time.Duration(cfg.IdleIndexCleanupMinutes)*time.Minute)
	if err != nil {
		return nil, cserrors.Wrap("construct index service", err)
	}

	cache, err := querycache.NewWithLimits(cfg.Cache.MaxBytes, cfg.Cache.TTL)
	if err != nil {
		return nil, cserrors.Wrap("construct query cache", err)
	}

	pressure, err := memorypressure.New(memorypressure.Limits{
		MaxConcurrency: cfg.Indexing.MaxConcurrency,
		RAMBufferBytes: int64(cfg.RamBufferMiB) << 20,
	}, 0.85, 10*time.Second)
	if err != nil {
		return nil, cserrors.Wrap("construct memory pressure monitor", err)
	}

	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[ext] = true
	}
	indexer := fileindexer.New(fileindexer.Config{
		Extensions:           extensions,
		MaxFileSize:          cfg.MaxFileSize,
		MmapThreshold:        cfg.LargeFileThreshold,
		MaxConcurrency:       cfg.Indexing.MaxConcurrency,
		MaxQueueSize:         cfg.Indexing.MaxQueueSize,
		BatchSize:            cfg.MaxBatchSize,
		RAMBufferBytes:       int64(cfg.RamBufferMiB) << 20,
		MaxConsecutiveErrors: 20,
	})

	ctx, cancel := context.WithCancel(context.Background())

	continuationKey, err := responsebuilder.NewProcessKey()
	if err != nil {
		cancel()
		return nil, cserrors.Wrap("generate continuation token key", err)
	}

	s := &Service{
		cfg:             cfg,
		resolver:        resolver,
		registry:        reg,
		indexes:         idxSvc,
		cache:           cache,
		pressure:        pressure,
		indexer:         indexer,
		breakers:        make(map[string]*breaker.Breaker),
		watchers:        make(map[string]*watcher.Watcher),
		continuationKey: continuationKey,
		cancel:          cancel,
	}

	if err := s.recover(); err != nil {
		log.Printf("startup recovery: %v", err)
	}

	idxSvc.RunIdleReaper(time.Minute)
	go pressure.Run(ctx)

	return s, nil
}

// recover runs the stale-lock repair and orphan reconciliation pass a
// freshly started process needs before serving any request.
func (s *Service) recover() error {
	staleThreshold := time.Duration(s.cfg.Locks.StaleMinutes) * time.Minute
	if _, err := lockmanager.ScanAndRepair(s.resolver.IndexesDir(), s.registry, staleThreshold, lockmanager.ProcessLiveness); err != nil {
		return cserrors.Wrap("scan and repair stale locks", err)
	}
	if _, err := s.registry.ScanAndReconcile(s.resolver.IndexesDir()); err != nil {
		return cserrors.Wrap("reconcile registry", err)
	}
	return nil
}

// Close stops background goroutines and every open index handle and
// watcher. Safe to call once at process shutdown.
func (s *Service) Close() {
	s.cancel()

	s.mu.Lock()
	watchers := make([]*watcher.Watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()
	for _, w := range watchers {
		_ = w.Close()
	}

	s.indexes.Stop()
}

func (s *Service) breakerFor(hash string) *breaker.Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[hash]
	if !ok {
		b = breaker.New()
		s.breakers[hash] = b
	}
	return b
}
