package responsebuilder

import (
	"path/filepath"
	"sort"
)

type fileGroup struct {
	hit     Hit
	matches []MatchSpan
	best    float64
}

// groupByFile collapses hits that share a path into one fileGroup,
// ordered by the highest score any of its matches contributed.
func groupByFile(hits []Hit) []*fileGroup {
	order := make([]string, 0, len(hits))
	groups := make(map[string]*fileGroup, len(hits))
	for _, h := range hits {
		g, ok := groups[h.Path]
		if !ok {
			g = &fileGroup{hit: h}
			groups[h.Path] = g
			order = append(order, h.Path)
		}
		g.matches = append(g.matches, h.Matches...)
		if h.Score > g.best {
			g.best = h.Score
			if len(h.Lines) > 0 {
				g.hit.Lines = h.Lines
			}
		}
	}

	result := make([]*fileGroup, 0, len(order))
	for _, path := range order {
		result = append(result, groups[path])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].best > result[j].best
	})
	return result
}

// buildSnippet renders contextLines lines of context around a 1-based
// line number, per spec §4.9 step 2.
func buildSnippet(lines []string, line, contextLines int) (Snippet, bool) {
	if line < 1 || line > len(lines) {
		return Snippet{}, false
	}
	idx := line - 1
	s := Snippet{Line: line, Text: lines[idx]}
	for i := idx - contextLines; i < idx; i++ {
		if i >= 0 {
			s.ContextBefore = append(s.ContextBefore, lines[i])
		}
	}
	for i := idx + 1; i <= idx+contextLines; i++ {
		if i < len(lines) {
			s.ContextAfter = append(s.ContextAfter, lines[i])
		}
	}
	return s, true
}

func toFileMatch(g *fileGroup, contextLines, perFileCap int) FileMatch {
	fm := FileMatch{
		Path:         g.hit.Path,
		RelativePath: g.hit.RelativePath,
		Extension:    g.hit.Extension,
		MatchCount:   len(g.matches),
		Score:        g.best,
	}

	seenLines := make(map[int]bool)
	for _, m := range g.matches {
		if m.Line == 0 || seenLines[m.Line] {
			continue
		}
		seenLines[m.Line] = true
		fm.Lines = append(fm.Lines, m.Line)
	}
	sort.Ints(fm.Lines)

	cap := perFileCap
	if cap <= 0 || cap > len(fm.Lines) {
		cap = len(fm.Lines)
	}
	for _, line := range fm.Lines[:cap] {
		if snip, ok := buildSnippet(g.hit.Lines, line, contextLines); ok {
			fm.Snippets = append(fm.Snippets, snip)
		}
	}
	return fm
}

func extensionDistribution(groups []*fileGroup) []Distribution {
	counts := map[string]int{}
	var order []string
	for _, g := range groups {
		ext := g.hit.Extension
		if _, ok := counts[ext]; !ok {
			order = append(order, ext)
		}
		counts[ext]++
	}
	return toDistributions(order, counts)
}

func directoryDistribution(groups []*fileGroup) []Distribution {
	counts := map[string]int{}
	var order []string
	for _, g := range groups {
		dir := filepath.Dir(g.hit.RelativePath)
		if dir == "." {
			dir = ""
		}
		if _, ok := counts[dir]; !ok {
			order = append(order, dir)
		}
		counts[dir]++
	}
	return toDistributions(order, counts)
}

func toDistributions(order []string, counts map[string]int) []Distribution {
	dists := make([]Distribution, 0, len(order))
	for _, key := range order {
		dists = append(dists, Distribution{Key: key, Count: counts[key]})
	}
	sort.SliceStable(dists, func(i, j int) bool { return dists[i].Count > dists[j].Count })
	return dists
}

func hotspots(groups []*fileGroup, limit int) []Hotspot {
	sorted := make([]*fileGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].matches) > len(sorted[j].matches) })
	if limit <= 0 || limit > len(sorted) {
		limit = len(sorted)
	}
	out := make([]Hotspot, 0, limit)
	for _, g := range sorted[:limit] {
		out = append(out, Hotspot{Path: g.hit.Path, MatchCount: len(g.matches)})
	}
	return out
}
