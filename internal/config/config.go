// Package config captures the user-configurable settings of the search
// service, following the teacher's DefaultConfig/Merge pattern
// (pkg/embeddings/config.go in the source example) rather than a bag of
// free-floating flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the full set of tunables from spec §6, with defaults matching
// the spec's stated values.
type Config struct {
	BasePath string `yaml:"basePath"`

	MaxFileSize        int64 `yaml:"maxFileSize"`
	LargeFileThreshold  int64 `yaml:"largeFileThreshold"`
	MaxAllowedResults   int   `yaml:"maxAllowedResults"`
	MaxBatchSize        int   `yaml:"maxBatchSize"`

	Indexing IndexingConfig `yaml:"indexing"`
	Watcher  WatcherConfig  `yaml:"watcher"`
	Locks    LocksConfig    `yaml:"locks"`
	Cache    CacheConfig    `yaml:"cache"`
	Scoring  ScoringConfig  `yaml:"scoring"`

	RamBufferMiB int `yaml:"ramBufferMiB"`

	IdleIndexCleanupMinutes int `yaml:"idleIndexCleanupMinutes"`
	MaxActiveIndexes        int `yaml:"maxActiveIndexes"`

	QueryTimeout time.Duration `yaml:"queryTimeout"`

	Extensions []string `yaml:"extensions"`
}

type IndexingConfig struct {
	MaxConcurrency int `yaml:"maxConcurrency"`
	MaxQueueSize   int `yaml:"maxQueueSize"`
}

type WatcherConfig struct {
	DebounceMs int `yaml:"debounceMs"`
	QuietMs    int `yaml:"quietMs"`
}

type LocksConfig struct {
	StaleMinutes int `yaml:"staleMinutes"`
}

type CacheConfig struct {
	MaxBytes int64         `yaml:"maxBytes"`
	TTL      time.Duration `yaml:"ttl"`
}

// ScoringConfig holds the conservative boost-weight defaults decided as an
// Open Question in SPEC_FULL.md §9.
type ScoringConfig struct {
	PathRelevanceBoost float64 `yaml:"pathRelevanceBoost"`
	RecencyBoost       float64 `yaml:"recencyBoost"`
}

// DefaultExtensions is the allow-list of source file extensions indexed by
// FileIndexer. Kept generous but finite, per the spec's "configurable" note.
var DefaultExtensions = []string{
	".go", ".cs", ".java", ".kt", ".py", ".rb", ".js", ".jsx", ".ts", ".tsx",
	".c", ".h", ".cc", ".cpp", ".hpp", ".rs", ".swift", ".m", ".mm", ".scala",
	".php", ".sh", ".bash", ".ps1", ".sql", ".yaml", ".yml", ".json", ".toml",
	".md", ".txt", ".html", ".css", ".scss", ".vue", ".proto", ".graphql",
}

// Default returns a Config populated with the defaults stated in spec §6.
func Default() Config {
	base, err := os.UserHomeDir()
	if err != nil {
		base = "."
	}
	return Config{
		BasePath:           filepath.Join(base, ".coa", "codesearch"),
		MaxFileSize:        10 * 1024 * 1024,
		LargeFileThreshold: 1 * 1024 * 1024,
		MaxAllowedResults:  10000,
		MaxBatchSize:       500,
		Indexing: IndexingConfig{
			MaxConcurrency: 8,
			MaxQueueSize:   80,
		},
		Watcher: WatcherConfig{
			DebounceMs: 500,
			QuietMs:    5000,
		},
		Locks: LocksConfig{
			StaleMinutes: 15,
		},
		Cache: CacheConfig{
			MaxBytes: 100 * 1024 * 1024,
			TTL:      15 * time.Minute,
		},
		Scoring: ScoringConfig{
			PathRelevanceBoost: 0.15,
			RecencyBoost:       0.10,
		},
		RamBufferMiB:            256,
		IdleIndexCleanupMinutes: 15,
		MaxActiveIndexes:        100,
		QueryTimeout:            30 * time.Second,
		Extensions:              append([]string(nil), DefaultExtensions...),
	}
}

// Merge applies non-zero fields from override onto base, the same sparse
// overlay idiom the teacher uses for per-vault embeddings settings.
func (c Config) Merge(override Config) Config {
	result := c
	if override.BasePath != "" {
		result.BasePath = override.BasePath
	}
	if override.MaxFileSize > 0 {
		result.MaxFileSize = override.MaxFileSize
	}
	if override.LargeFileThreshold > 0 {
		result.LargeFileThreshold = override.LargeFileThreshold
	}
	if override.MaxAllowedResults > 0 {
		result.MaxAllowedResults = override.MaxAllowedResults
	}
	if override.MaxBatchSize > 0 {
		result.MaxBatchSize = override.MaxBatchSize
	}
	if override.Indexing.MaxConcurrency > 0 {
		result.Indexing.MaxConcurrency = override.Indexing.MaxConcurrency
	}
	if override.Indexing.MaxQueueSize > 0 {
		result.Indexing.MaxQueueSize = override.Indexing.MaxQueueSize
	}
	if override.Watcher.DebounceMs > 0 {
		result.Watcher.DebounceMs = override.Watcher.DebounceMs
	}
	if override.Watcher.QuietMs > 0 {
		result.Watcher.QuietMs = override.Watcher.QuietMs
	}
	if override.Locks.StaleMinutes > 0 {
		result.Locks.StaleMinutes = override.Locks.StaleMinutes
	}
	if override.Cache.MaxBytes > 0 {
		result.Cache.MaxBytes = override.Cache.MaxBytes
	}
	if override.Cache.TTL > 0 {
		result.Cache.TTL = override.Cache.TTL
	}
	if override.RamBufferMiB > 0 {
		result.RamBufferMiB = override.RamBufferMiB
		if result.RamBufferMiB < 16 {
			result.RamBufferMiB = 16
		}
	}
	if override.IdleIndexCleanupMinutes > 0 {
		result.IdleIndexCleanupMinutes = override.IdleIndexCleanupMinutes
	}
	if override.MaxActiveIndexes > 0 {
		result.MaxActiveIndexes = override.MaxActiveIndexes
	}
	if override.QueryTimeout > 0 {
		result.QueryTimeout = override.QueryTimeout
	}
	if len(override.Extensions) > 0 {
		result.Extensions = override.Extensions
	}
	if override.Scoring.PathRelevanceBoost > 0 {
		result.Scoring.PathRelevanceBoost = override.Scoring.PathRelevanceBoost
	}
	if override.Scoring.RecencyBoost > 0 {
		result.Scoring.RecencyBoost = override.Scoring.RecencyBoost
	}
	return result
}

// IndexesDir, LogsDir and RegistryPath are pure functions over BasePath,
// mirroring the teacher's CliConfigPath/ObsidianConfigFile pure-function
// style in pkg/config.
func (c Config) IndexesDir() string  { return filepath.Join(c.BasePath, "indexes") }
func (c Config) LogsDir() string     { return filepath.Join(c.BasePath, "logs") }
func (c Config) RegistryPath() string {
	return filepath.Join(c.IndexesDir(), "registry.json")
}
