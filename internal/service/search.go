package service

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"

	"github.com/anortham/codesearch-mcp/internal/cserrors"
	"github.com/anortham/codesearch-mcp/internal/queryplanner"
	"github.com/anortham/codesearch-mcp/internal/querycache"
	"github.com/anortham/codesearch-mcp/internal/responsebuilder"
)

// TextSearch implements text_search (spec §6): plan the query, run it
// against the workspace's current reader snapshot, re-read each matched
// file to turn bleve's byte-offset term locations into line/column
// matches and context snippets, and shape the result through
// responsebuilder, consulting the query cache unless bypassed.
func (s *Service) TextSearch(req TextSearchRequest) (*responsebuilder.Response, error) {
	rw, handle, _, err := s.acquireIndexed(req.WorkspacePath)
	if err != nil {
		return errorResponse("text_search", err), nil
	}

	limits := queryplanner.Limits{
		PerFileCap: 10,
		TotalCap:   clampPositive(s.cfg.MaxAllowedResults, 100),
		HardCap:    s.cfg.MaxAllowedResults,
	}
	weights := queryplanner.Weights{
		PathRelevanceBoost: s.cfg.Scoring.PathRelevanceBoost,
		RecencyBoost:       s.cfg.Scoring.RecencyBoost,
	}

	cacheKey := querycache.Key{
		WorkspaceHash: rw.hash,
		Query:         req.Query,
		Filters:       req.Filters,
		Limits:        limits,
		ResponseMode:  req.ResponseMode,
	}
	if !req.NoCache {
		if cached, ok := s.cache.Get(cacheKey, handle.CommitGeneration()); ok {
			if resp, ok := cached.(*responsebuilder.Response); ok {
				return resp, nil
			}
		}
	}

	plan, err := queryplanner.Build(req.Query, req.Mode, req.Filters, limits, weights, time.Now())
	if err != nil {
		return errorResponse("text_search", err), nil
	}

	result, err := handle.Search(plan.Request)
	if err != nil {
		return errorResponse("text_search", err), nil
	}

	hits := hitsFromResult(result, plan.PathFilter)

	opts := responsebuilder.DefaultBuildOptions()
	opts.Mode = string(plan.EffectiveMode)
	if req.MaxTokens > 0 {
		opts.TokenBudget = req.MaxTokens
	}
	if req.ResponseMode == "summary" {
		opts.Display = responsebuilder.DisplaySummary
	} else if req.ResponseMode == "full" {
		opts.Display = responsebuilder.DisplayFull
	}
	opts.QueryFingerprint = cacheKey.Fingerprint()
	opts.HMACKey = s.continuationKey

	resp := responsebuilder.Build(hits, opts)

	if !req.NoCache {
		s.cache.Put(cacheKey, resp, handle.CommitGeneration(), estimateResponseBytes(resp))
	}

	return resp, nil
}

func errorResponse(mode string, err error) *responsebuilder.Response {
	code := cserrors.Code(err)
	if code == "" {
		code = "Internal"
	}
	hint, _ := cserrors.Recovery(err)
	return responsebuilder.BuildError(mode, code, err.Error(), hint.Steps, hint.SuggestedActions)
}

func clampPositive(hardCap, want int) int {
	if want <= 0 {
		want = 100
	}
	if hardCap > 0 && want > hardCap {
		return hardCap
	}
	return want
}

func estimateResponseBytes(resp *responsebuilder.Response) int {
	if resp == nil || resp.Data == nil {
		return 256
	}
	total := 256
	for _, f := range resp.Data.Files {
		total += len(f.Path) + len(f.RelativePath)
		for _, sn := range f.Snippets {
			total += len(sn.Text)
		}
	}
	return total
}

// hitsFromResult converts bleve's search hits into responsebuilder.Hit
// values, re-reading each matched file to map byte-offset term
// locations to line numbers since content is indexed but never stored
// (per internal/indexsvc.Document's doc comment).
func hitsFromResult(result *bleve.SearchResult, pathFilter func(string) bool) []responsebuilder.Hit {
	var hits []responsebuilder.Hit
	for _, dm := range result.Hits {
		path, _ := dm.Fields["path"].(string)
		relPath, _ := dm.Fields["relative_path"].(string)
		if pathFilter != nil && !pathFilter(relPath) {
			continue
		}

		hit := responsebuilder.Hit{
			Path:         path,
			RelativePath: relPath,
			Score:        dm.Score,
		}
		if filename, ok := dm.Fields["filename"].(string); ok {
			hit.Filename = filename
		}
		if ext, ok := dm.Fields["extension"].(string); ok {
			hit.Extension = ext
		}
		if lang, ok := dm.Fields["language"].(string); ok {
			hit.Language = lang
		}
		if modified, ok := dm.Fields["modified_ticks"].(float64); ok {
			hit.ModifiedTicks = int64(modified)
		}

		lines, offsets := readLines(path)
		hit.Lines = lines
		hit.Matches = matchSpansFromLocations(dm.Locations, offsets)

		hits = append(hits, hit)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits
}

// readLines reads a file's lines and the cumulative byte offset each
// line starts at, so a bleve byte offset can be mapped back to a
// 1-based line number via a binary search over offsets.
func readLines(path string) (lines []string, offsets []int) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	offset := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		offsets = append(offsets, offset)
		line := scanner.Text()
		lines = append(lines, line)
		offset += len(line) + 1 // +1 for the newline the scanner stripped
	}
	return lines, offsets
}

func lineForOffset(offsets []int, byteOffset uint64) int {
	idx := sort.Search(len(offsets), func(i int) bool { return offsets[i] > int(byteOffset) })
	return idx - 1
}

func matchSpansFromLocations(locations search.FieldTermLocationMap, offsets []int) []responsebuilder.MatchSpan {
	var spans []responsebuilder.MatchSpan
	for field, terms := range locations {
		if !strings.HasPrefix(field, "content") {
			continue
		}
		for term, occurrences := range terms {
			for _, loc := range occurrences {
				line := lineForOffset(offsets, loc.Start)
				if line < 0 {
					continue
				}
				col := int(loc.Start) - offsets[line]
				spans = append(spans, responsebuilder.MatchSpan{
					Field: field,
					Term:  term,
					Line:  line + 1,
					Col:   col,
				})
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Line < spans[j].Line })
	return spans
}
