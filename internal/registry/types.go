package registry

import "time"

// WorkspaceStatus mirrors the lifecycle states of spec §3.
type WorkspaceStatus string

const (
	StatusActive   WorkspaceStatus = "Active"
	StatusMissing  WorkspaceStatus = "Missing"
	StatusError    WorkspaceStatus = "Error"
	StatusArchived WorkspaceStatus = "Archived"
)

// OrphanReason mirrors spec §3's OrphanedIndex.reason enum.
type OrphanReason string

const (
	ReasonNoMetadata        OrphanReason = "NoMetadata"
	ReasonCorruptedMetadata OrphanReason = "CorruptedMetadata"
	ReasonPathNotFound      OrphanReason = "PathNotFound"
	ReasonUnresolvable      OrphanReason = "Unresolvable"
	ReasonManuallyMarked    OrphanReason = "ManuallyMarked"
)

// WorkspaceEntry is the persisted shape of a Workspace (spec §3, wire shape
// in §6).
type WorkspaceEntry struct {
	Hash           string          `json:"hash"`
	OriginalPath   string          `json:"originalPath"`
	DirectoryName  string          `json:"directoryName"`
	DisplayName    string          `json:"displayName"`
	Status         WorkspaceStatus `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastAccessed   time.Time       `json:"lastAccessed"`
	DocumentCount  int             `json:"documentCount"`
	IndexSizeBytes int64           `json:"indexSizeBytes"`
	LockedBy       string          `json:"lockedBy,omitempty"`
}

// OrphanedIndex is the persisted shape of an OrphanedIndex (spec §3).
type OrphanedIndex struct {
	DirectoryName        string       `json:"directoryName"`
	DiscoveredAt         time.Time    `json:"discoveredAt"`
	LastModified         time.Time    `json:"lastModified"`
	Reason               OrphanReason `json:"reason"`
	ScheduledForDeletion time.Time    `json:"scheduledForDeletion"`
	SizeBytes            int64        `json:"sizeBytes"`
	AttemptedPath        string       `json:"attemptedPath,omitempty"`
}

// Statistics is the registry's aggregate summary (spec §6).
type Statistics struct {
	TotalWorkspaces     int   `json:"totalWorkspaces"`
	TotalOrphans        int   `json:"totalOrphans"`
	TotalIndexSizeBytes int64 `json:"totalIndexSizeBytes"`
	TotalDocuments      int   `json:"totalDocuments"`
}

// document is the exact on-disk JSON shape of spec §6.
type document struct {
	Version         string                    `json:"version"`
	LastUpdated     time.Time                 `json:"lastUpdated"`
	Workspaces      map[string]WorkspaceEntry `json:"workspaces"`
	OrphanedIndexes map[string]OrphanedIndex  `json:"orphanedIndexes"`
	Statistics      Statistics                `json:"statistics"`
}

func newDocument() *document {
	return &document{
		Version:         "1.0",
		Workspaces:      make(map[string]WorkspaceEntry),
		OrphanedIndexes: make(map[string]OrphanedIndex),
	}
}

func (d *document) recomputeStatistics() {
	stats := Statistics{}
	for _, w := range d.Workspaces {
		stats.TotalWorkspaces++
		stats.TotalIndexSizeBytes += w.IndexSizeBytes
		stats.TotalDocuments += w.DocumentCount
	}
	stats.TotalOrphans = len(d.OrphanedIndexes)
	d.Statistics = stats
}
