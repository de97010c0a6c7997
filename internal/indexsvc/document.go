// Package indexsvc owns bleve/scorch index handles per spec §4.5: one
// handle per workspace, a single serialized writer, a shared NRT reader,
// and an LRU-bounded pool of open handles. It generalizes the teacher's
// pkg/embeddings/index.go (one persisted index per vault, opened lazily
// and kept warm) from a single-index-per-process model to a multi-tenant
// LRU of indexes, since this service manages many workspaces at once.
package indexsvc

// Document is one source file in an index, matching spec §3's field
// list exactly. Content is indexed but never stored -- bleve snippet
// highlighting works from the on-disk file at read time, not from a
// stored copy, to keep the index small.
type Document struct {
	Path             string `json:"path"`
	RelativePath     string `json:"relative_path"`
	Filename         string `json:"filename"`
	Extension        string `json:"extension"`
	Language         string `json:"language"`
	Size             int64  `json:"size"`
	ModifiedTicks    int64  `json:"modified_ticks"`
	Content          string `json:"content"`
	ContentSymbols   string `json:"content_symbols"`
	ContentPatterns  string `json:"content_patterns"`
	ContentLiteral   string `json:"content_literal"`
	ContentCode      string `json:"content_code"`
	TypeHints        []string `json:"type_hints,omitempty"`
	MethodHints      []string `json:"method_hints,omitempty"`

	// Directory, FilenameLiteral and RelativePathLiteral are raw
	// (untokenized) copies used for file_search/directory_search's
	// wildcard/prefix matching, distinct from the code-analyzed
	// Filename/RelativePath fields used for token search.
	Directory            string `json:"directory"`
	FilenameLiteral      string `json:"filename_literal"`
	RelativePathLiteral  string `json:"relative_path_literal"`
}

// BleveID is the stable document identifier bleve uses for
// delete-by-term/replace semantics: the absolute path.
func (d Document) BleveID() string { return d.Path }
