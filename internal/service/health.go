package service

import (
	"time"

	"github.com/anortham/codesearch-mcp/internal/lockmanager"
)

// IndexHealthCheck implements index_health_check (spec §6), expanded
// per SPEC_FULL.md §6 with the workspace's breaker state, whether its
// watcher is running, and the LockManager's findings for its index
// directory. HealthReport.WatcherBacklog is not filled in and stays 0.
// A blank workspacePath returns the registry-wide aggregate instead.
func (s *Service) IndexHealthCheck(workspacePath string) (*HealthReport, *RegistryHealth, error) {
	if workspacePath == "" {
		stats, err := s.registry.Statistics()
		if err != nil {
			return nil, nil, err
		}
		staleThreshold := time.Duration(s.cfg.Locks.StaleMinutes) * time.Minute
		report, err := lockmanager.ScanAndRepair(s.resolver.IndexesDir(), s.registry, staleThreshold, lockmanager.ProcessLiveness)
		if err != nil {
			return nil, nil, err
		}
		orphans, err := s.registry.ListOrphans()
		if err != nil {
			return nil, nil, err
		}
		return nil, &RegistryHealth{Statistics: stats, LockReport: report, OrphansFound: len(orphans)}, nil
	}

	rw, err := s.resolveWorkspace(workspacePath)
	if err != nil {
		return nil, nil, err
	}
	entry, err := s.registry.Get(rw.hash)
	if err != nil {
		return nil, nil, err
	}

	var docCount uint64
	if handle, herr := s.indexes.Acquire(rw.hash, rw.indexDir); herr == nil {
		docCount, _ = handle.DocCount()
	}

	staleThreshold := time.Duration(s.cfg.Locks.StaleMinutes) * time.Minute
	report, err := lockmanager.ScanAndRepair(s.resolver.IndexesDir(), s.registry, staleThreshold, lockmanager.ProcessLiveness)
	if err != nil {
		return nil, nil, err
	}
	var findings []lockmanager.Finding
	for _, f := range report.Findings {
		if f.DirectoryName == rw.dirName {
			findings = append(findings, f)
		}
	}

	return &HealthReport{
		Workspace:      entry,
		DocCount:       docCount,
		BreakerState:   string(s.breakerFor(rw.hash).State()),
		WatcherRunning: s.watcherRunning(rw.hash),
		LockFindings:   findings,
		CheckedAt:      time.Now(),
	}, nil, nil
}
