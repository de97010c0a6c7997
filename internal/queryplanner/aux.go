package queryplanner

import (
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// BuildFileSearch plans a file-name-only search: a wildcard match
// against the raw filename, falling back to a regex match against the
// raw relative path when the pattern looks like a regex (contains
// unescaped regex metacharacters bleve's wildcard syntax doesn't share),
// per spec §4.8's "filename and relative_path fields with a regex
// fallback".
func BuildFileSearch(pattern string, limits Limits) *Plan {
	var q query.Query
	if looksLikeRegex(pattern) {
		rq := bleve.NewRegexpQuery(pattern)
		rq.SetField("relative_path_literal")
		q = rq
	} else {
		wq := bleve.NewWildcardQuery(wildcardify(pattern))
		wq.SetField("filename_literal")
		q = wq
	}
	req := bleve.NewSearchRequest(q)
	req.Size = capSize(limits)
	req.Fields = []string{"path", "relative_path", "filename", "extension", "language", "size", "modified_ticks"}
	return &Plan{Request: req, PathFilter: func(string) bool { return true }, EffectiveMode: ModeLiteral}
}

// BuildDirectorySearch plans a directory search: a prefix match against
// the synthesized "directory" field when the pattern contains no glob
// metacharacters, else a wildcard match, per spec §4.8's "synthesized
// directory field or a derived prefix query".
func BuildDirectorySearch(pattern string, limits Limits) *Plan {
	var q query.Query
	if hasGlobChars(pattern) {
		wq := bleve.NewWildcardQuery(wildcardify(pattern))
		wq.SetField("directory")
		q = wq
	} else {
		pq := bleve.NewPrefixQuery(pattern)
		pq.SetField("directory")
		q = pq
	}
	req := bleve.NewSearchRequest(q)
	req.Size = capSize(limits)
	req.Fields = []string{"path", "relative_path", "filename", "extension", "language", "size", "modified_ticks"}
	return &Plan{Request: req, PathFilter: func(string) bool { return true }, EffectiveMode: ModeLiteral}
}

// BuildRecentFiles plans a range query on modified_ticks for files
// touched since a given instant, per spec §4.8.
func BuildRecentFiles(since time.Time, limits Limits) *Plan {
	min := float64(since.UnixNano())
	rq := bleve.NewNumericRangeQuery(&min, nil)
	rq.SetField("modified_ticks")

	req := bleve.NewSearchRequest(rq)
	req.Size = capSize(limits)
	req.SortBy([]string{"-modified_ticks"})
	req.Fields = []string{"path", "relative_path", "filename", "extension", "language", "size", "modified_ticks"}
	return &Plan{Request: req, PathFilter: func(string) bool { return true }, EffectiveMode: ModeStandard}
}

// BuildSimilar plans a "more-like-this" approximation: a disjunction of
// the source document's top content_code terms, excluding the source
// document itself, per spec §4.8.
func BuildSimilar(terms []string, excludePath string, limits Limits) *Plan {
	disj := bleve.NewDisjunctionQuery()
	for _, t := range terms {
		tq := bleve.NewTermQuery(t)
		tq.SetField("content_code")
		disj.AddQuery(tq)
	}

	boolQ := bleve.NewBooleanQuery()
	boolQ.AddMust(disj)
	if excludePath != "" {
		exclude := bleve.NewTermQuery(excludePath)
		exclude.SetField("path")
		boolQ.AddMustNot(exclude)
	}

	req := bleve.NewSearchRequest(boolQ)
	req.Size = capSize(limits)
	req.Fields = []string{"path", "relative_path", "filename", "extension", "language", "size", "modified_ticks"}
	return &Plan{Request: req, PathFilter: func(string) bool { return true }, EffectiveMode: ModeCode}
}

func capSize(limits Limits) int {
	if limits.TotalCap <= 0 {
		limits = DefaultLimits()
	}
	return limits.TotalCap
}

func wildcardify(pattern string) string {
	if hasGlobChars(pattern) {
		return pattern
	}
	return "*" + pattern + "*"
}

func hasGlobChars(pattern string) bool {
	for _, r := range pattern {
		if r == '*' || r == '?' {
			return true
		}
	}
	return false
}

// looksLikeRegex is a light heuristic: patterns using regex-only
// metacharacters (anchors, character classes, alternation) that
// wildcard syntax doesn't share are routed to the regex fallback.
func looksLikeRegex(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '^', '$', '|', '(', ')', '[', ']', '+', '\\':
			return true
		}
	}
	return false
}
