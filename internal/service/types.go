// Package service is the facade spec §6 describes: cmd/ and
// internal/mcpserver both call into exactly one Service so every
// request-surface operation has one implementation, wiring together
// internal/registry, internal/lockmanager, internal/indexsvc,
// internal/fileindexer, internal/watcher, internal/queryplanner,
// internal/responsebuilder, internal/querycache, internal/memorypressure
// and internal/breaker. It generalizes the teacher's pkg/mcp.Config +
// pkg/cache.Service pairing (a small config struct plus one long-lived
// orchestrator the CLI and the MCP tools both hold a reference to) from
// a single vault to many concurrently open workspaces.
package service

import (
	"time"

	"github.com/anortham/codesearch-mcp/internal/lockmanager"
	"github.com/anortham/codesearch-mcp/internal/queryplanner"
	"github.com/anortham/codesearch-mcp/internal/registry"
)

// IndexWorkspaceResult is index_workspace's response shape (spec §6).
type IndexWorkspaceResult struct {
	Indexed     int   `json:"indexed"`
	Skipped     int   `json:"skipped"`
	Failures    int   `json:"failures"`
	DurationMs  int64 `json:"durationMs"`
}

// TextSearchRequest is text_search's parameter set (spec §6).
type TextSearchRequest struct {
	Query         string
	WorkspacePath string
	Mode          queryplanner.Mode
	Filters       queryplanner.Filters
	ResponseMode  string
	MaxTokens     int
	NoCache       bool
}

// FileSearchMatch is one file_search hit.
type FileSearchMatch struct {
	Path          string `json:"path"`
	RelativePath  string `json:"relativePath"`
	Filename      string `json:"filename"`
	Extension     string `json:"extension"`
	Size          int64  `json:"size"`
	ModifiedTicks int64  `json:"modifiedTicks"`
}

// DirectoryMatch is one directory_search hit.
type DirectoryMatch struct {
	Path      string `json:"path"`
	FileCount int    `json:"fileCount"`
}

// RecentFile is one recent_files hit.
type RecentFile struct {
	Path          string `json:"path"`
	RelativePath  string `json:"relativePath"`
	Extension     string `json:"extension"`
	ModifiedTicks int64  `json:"modifiedTicks"`
}

// SimilarFile is one similar_files hit, score in [0,1].
type SimilarFile struct {
	Path         string  `json:"path"`
	RelativePath string  `json:"relativePath"`
	Score        float64 `json:"score"`
}

// BatchOperation is one entry of batch_operations' operations[] array.
type BatchOperation struct {
	Op            string         `json:"op"`
	WorkspacePath string         `json:"workspacePath,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
}

// BatchResult is one batch_operations result entry, aggregated
// alongside its siblings regardless of whether it succeeded.
type BatchResult struct {
	Op      string `json:"op"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthReport is index_health_check's diagnostic shape, expanded per
// SPEC_FULL.md §6 with lock findings, breaker state, and whether the
// watcher is running. WatcherBacklog is never set and is always 0.
type HealthReport struct {
	Workspace       registry.WorkspaceEntry `json:"workspace"`
	DocCount        uint64                  `json:"docCount"`
	BreakerState    string                  `json:"breakerState"`
	WatcherRunning  bool                    `json:"watcherRunning"`
	WatcherBacklog  int                     `json:"watcherBacklog"`
	LockFindings    []lockmanager.Finding   `json:"lockFindings,omitempty"`
	CheckedAt       time.Time               `json:"checkedAt"`
}

// RegistryHealth is the aggregate report index_health_check returns
// when called with no workspacePath.
type RegistryHealth struct {
	Statistics   registry.Statistics    `json:"statistics"`
	LockReport   lockmanager.Report     `json:"lockReport"`
	OrphansFound int                    `json:"orphansFound"`
}
