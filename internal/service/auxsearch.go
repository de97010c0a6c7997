package service

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/anortham/codesearch-mcp/internal/analyzer"
	"github.com/anortham/codesearch-mcp/internal/cserrors"
	"github.com/anortham/codesearch-mcp/internal/queryplanner"
)

// topTerms tokenizes text the same way the Code mode query planner
// does and returns its most frequent terms, the "top terms" spec §4.8
// calls for in similar_files' more-like-this comparison.
func topTerms(text string, n int) []string {
	tokens := analyzer.TokenizeCode(text)
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	unique := make([]string, 0, len(counts))
	for t := range counts {
		unique = append(unique, t)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return unique[i] < unique[j]
	})
	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

func (s *Service) limitsFor(maxResults int) queryplanner.Limits {
	return queryplanner.Limits{
		PerFileCap: 10,
		TotalCap:   clampPositive(s.cfg.MaxAllowedResults, maxResults),
		HardCap:    s.cfg.MaxAllowedResults,
	}
}

// FileSearch implements file_search (spec §6).
func (s *Service) FileSearch(workspacePath, pattern string, maxResults int) ([]FileSearchMatch, error) {
	_, handle, _, err := s.acquireIndexed(workspacePath)
	if err != nil {
		return nil, err
	}
	plan := queryplanner.BuildFileSearch(pattern, s.limitsFor(maxResults))
	result, err := handle.Search(plan.Request)
	if err != nil {
		return nil, err
	}

	matches := make([]FileSearchMatch, 0, len(result.Hits))
	for _, dm := range result.Hits {
		m := FileSearchMatch{}
		m.Path, _ = dm.Fields["path"].(string)
		m.RelativePath, _ = dm.Fields["relative_path"].(string)
		m.Filename, _ = dm.Fields["filename"].(string)
		m.Extension, _ = dm.Fields["extension"].(string)
		if size, ok := dm.Fields["size"].(float64); ok {
			m.Size = int64(size)
		}
		if modified, ok := dm.Fields["modified_ticks"].(float64); ok {
			m.ModifiedTicks = int64(modified)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// DirectorySearch implements directory_search (spec §6). It takes no
// includeHidden option: FileIndexer's walk already excludes hidden
// directories from indexing, so they never appear in the synthesized
// directory field and are never returned.
func (s *Service) DirectorySearch(workspacePath, pattern string, includeSubdirectories bool, maxResults int) ([]DirectoryMatch, error) {
	_, handle, _, err := s.acquireIndexed(workspacePath)
	if err != nil {
		return nil, err
	}
	plan := queryplanner.BuildDirectorySearch(pattern, s.limitsFor(maxResults))
	result, err := handle.Search(plan.Request)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, dm := range result.Hits {
		dir, _ := dm.Fields["directory"].(string)
		if !includeSubdirectories {
			if top := firstSegment(dir); top != dir {
				continue
			}
		}
		if _, seen := counts[dir]; !seen {
			order = append(order, dir)
		}
		counts[dir]++
	}

	out := make([]DirectoryMatch, 0, len(order))
	for _, dir := range order {
		out = append(out, DirectoryMatch{Path: dir, FileCount: counts[dir]})
	}
	return out, nil
}

func firstSegment(dir string) string {
	for i := 0; i < len(dir); i++ {
		if dir[i] == '/' {
			return dir[:i]
		}
	}
	return dir
}

// RecentFiles implements recent_files (spec §6). timeFrame is a
// Go-duration-parseable string ("1h", "24h", "7d" normalized to hours).
func (s *Service) RecentFiles(workspacePath, timeFrame string, maxResults int) ([]RecentFile, error) {
	_, handle, _, err := s.acquireIndexed(workspacePath)
	if err != nil {
		return nil, err
	}
	since, err := parseTimeFrame(timeFrame)
	if err != nil {
		return nil, err
	}

	plan := queryplanner.BuildRecentFiles(since, s.limitsFor(maxResults))
	result, err := handle.Search(plan.Request)
	if err != nil {
		return nil, err
	}

	out := make([]RecentFile, 0, len(result.Hits))
	for _, dm := range result.Hits {
		rf := RecentFile{}
		rf.Path, _ = dm.Fields["path"].(string)
		rf.RelativePath, _ = dm.Fields["relative_path"].(string)
		rf.Extension, _ = dm.Fields["extension"].(string)
		if modified, ok := dm.Fields["modified_ticks"].(float64); ok {
			rf.ModifiedTicks = int64(modified)
		}
		out = append(out, rf)
	}
	return out, nil
}

// parseTimeFrame accepts Go duration syntax ("1h30m") plus a trailing
// "d" day suffix ("7d") the stdlib parser doesn't understand.
func parseTimeFrame(timeFrame string) (time.Time, error) {
	if timeFrame == "" {
		return time.Time{}, cserrors.ErrOutOfRange
	}
	if len(timeFrame) > 1 && timeFrame[len(timeFrame)-1] == 'd' {
		days, err := parseInt(timeFrame[:len(timeFrame)-1])
		if err != nil {
			return time.Time{}, cserrors.ErrInvalidPattern
		}
		return time.Now().Add(-time.Duration(days) * 24 * time.Hour), nil
	}
	d, err := time.ParseDuration(timeFrame)
	if err != nil {
		return time.Time{}, cserrors.ErrInvalidPattern
	}
	return time.Now().Add(-d), nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, cserrors.ErrInvalidPattern
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, cserrors.ErrInvalidPattern
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// SimilarFiles implements similar_files (spec §6): reads the source
// document's stored content_code-analyzed terms from disk (content
// isn't stored in the index, per internal/indexsvc.Document), takes the
// most frequent ones, and runs BuildSimilar excluding the source path.
// Scores are bleve's own relevance scores normalized into [0,1] by the
// top hit.
func (s *Service) SimilarFiles(workspacePath, filePath string, maxResults int, minScore float64) ([]SimilarFile, error) {
	rw, handle, _, err := s.acquireIndexed(workspacePath)
	if err != nil {
		return nil, err
	}

	abs := filePath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(rw.canonical, filePath)
	}
	doc, ok, err := s.indexer.IndexSingle(rw.canonical, abs)
	if err != nil || !ok {
		return nil, cserrors.ErrNotFound
	}

	terms := topTerms(doc.ContentCode, 12)
	if len(terms) == 0 {
		return nil, nil
	}

	plan := queryplanner.BuildSimilar(terms, doc.Path, s.limitsFor(maxResults))
	result, err := handle.Search(plan.Request)
	if err != nil {
		return nil, err
	}

	var maxScore float64
	for _, dm := range result.Hits {
		if dm.Score > maxScore {
			maxScore = dm.Score
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}

	out := make([]SimilarFile, 0, len(result.Hits))
	for _, dm := range result.Hits {
		normalized := dm.Score / maxScore
		if normalized < minScore {
			continue
		}
		sf := SimilarFile{Score: normalized}
		sf.Path, _ = dm.Fields["path"].(string)
		sf.RelativePath, _ = dm.Fields["relative_path"].(string)
		out = append(out, sf)
	}
	return out, nil
}
