package queryplanner

import (
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/anortham/codesearch-mcp/internal/analyzer"
	"github.com/anortham/codesearch-mcp/internal/cserrors"
)

// Weights carries the two ranking boosts of spec §4.8/§6 (config
// defaults: PathRelevanceBoost=0.15, RecencyBoost=0.10).
type Weights struct {
	PathRelevanceBoost float64
	RecencyBoost       float64
}

// Plan is a fully built query ready to hand to an indexsvc.IndexHandle,
// plus a path predicate for the glob filters bleve itself can't express.
type Plan struct {
	Request    *bleve.SearchRequest
	PathFilter func(relativePath string) bool
	EffectiveMode Mode
}

const regexComplexityBudget = 200

// Build translates (text, mode, filters, limits) into a Plan, per spec
// §4.8. now is injected so recency boosts and ModifiedSince filters are
// deterministic in tests.
func Build(text string, mode Mode, filters Filters, limits Limits, weights Weights, now time.Time) (*Plan, error) {
	if limits.TotalCap <= 0 {
		limits = DefaultLimits()
	}
	if limits.TotalCap > limits.HardCap {
		return nil, cserrors.ErrOutOfRange
	}

	effective := mode
	if mode == ModeAuto {
		effective = classifyAuto(text)
	}

	core, err := coreQuery(text, effective)
	if err != nil {
		return nil, err
	}

	boosted := applyBoosts(core, text, weights, now)
	finalQuery := applyFilters(boosted, filters)

	req := bleve.NewSearchRequest(finalQuery)
	req.Size = limits.TotalCap
	req.Fields = []string{"path", "relative_path", "filename", "extension", "language", "size", "modified_ticks"}
	req.IncludeLocations = true

	return &Plan{
		Request:       req,
		PathFilter:    pathFilterFor(filters),
		EffectiveMode: effective,
	}, nil
}

// classifyAuto implements spec §4.8's Auto routing rule.
func classifyAuto(text string) Mode {
	switch {
	case analyzer.LooksPunctuationHeavy(text):
		return ModeLiteral
	case analyzer.LooksLikeSingleIdentifier(text):
		return ModeSymbol
	case analyzer.LooksStructural(text):
		return ModePattern
	default:
		return ModeStandard
	}
}

func coreQuery(text string, mode Mode) (query.Query, error) {
	switch mode {
	case ModeLiteral:
		return literalQuery(text), nil
	case ModeCode:
		return codeQuery(text), nil
	case ModeSymbol:
		return symbolQuery(text), nil
	case ModePattern:
		return patternsQuery(text), nil
	case ModeFuzzy:
		return fuzzyQuery(text), nil
	case ModeRegex:
		return regexQuery(text)
	case ModeStandard, "":
		return standardQuery(text), nil
	default:
		return standardQuery(text), nil
	}
}

func literalQuery(text string) query.Query {
	escaped := escapeWildcard(text)
	q := bleve.NewWildcardQuery("*" + escaped + "*")
	q.SetField("content_literal")
	return q
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer("*", `\*`, "?", `\?`)
	return r.Replace(s)
}

func codeQuery(text string) query.Query {
	terms := analyzer.TokenizeCode(text)
	if len(terms) == 0 {
		return bleve.NewMatchNoneQuery()
	}
	conj := bleve.NewConjunctionQuery()
	for _, t := range terms {
		tq := bleve.NewTermQuery(t)
		tq.SetField("content_code")
		conj.AddQuery(tq)
	}
	return conj
}

func symbolQuery(text string) query.Query {
	terms := analyzer.TokenizeSymbols(text)
	if len(terms) == 0 {
		return bleve.NewMatchNoneQuery()
	}
	disj := bleve.NewDisjunctionQuery()
	for _, t := range terms {
		term := bleve.NewTermQuery(t)
		term.SetField("content_symbols")
		disj.AddQuery(term)

		prefix := bleve.NewPrefixQuery(t)
		prefix.SetField("content_symbols")
		disj.AddQuery(prefix)
	}
	return disj
}

// patternsQuery matches structural patterns like ": ITool" or "[Fact]"
// against content_patterns, the field analyzed by patternTokenizer so
// identifier runs and their surrounding structural punctuation survive
// as single terms instead of being split apart like content_code would
// split them.
func patternsQuery(text string) query.Query {
	terms := analyzer.TokenizePatterns(text)
	if len(terms) == 0 {
		return bleve.NewMatchNoneQuery()
	}
	conj := bleve.NewConjunctionQuery()
	for _, t := range terms {
		tq := bleve.NewTermQuery(t)
		tq.SetField("content_patterns")
		conj.AddQuery(tq)
	}
	return conj
}

func fuzzyQuery(text string) query.Query {
	q := bleve.NewFuzzyQuery(text)
	q.SetField("content")
	if len(text) <= 4 {
		q.Fuzziness = 1
	} else {
		q.Fuzziness = 2
	}
	return q
}

func regexQuery(text string) (query.Query, error) {
	if err := checkRegexBudget(text); err != nil {
		return nil, err
	}
	if _, err := regexp.Compile(text); err != nil {
		return nil, cserrors.ErrInvalidPattern
	}
	q := bleve.NewRegexpQuery(text)
	q.SetField("content")
	return q, nil
}

// checkRegexBudget rejects patterns cheaply likely to be catastrophic:
// overlong patterns, or any occurrence of the nested-quantifier shapes
// "+*", "*+", "+)+" or "*)*", without actually running the regex engine
// against adversarial input.
func checkRegexBudget(pattern string) error {
	if len(pattern) > regexComplexityBudget {
		return cserrors.ErrQueryTooComplex
	}
	nestedQuantifiers := strings.Count(pattern, "+*") + strings.Count(pattern, "*+") +
		strings.Count(pattern, "+)+") + strings.Count(pattern, "*)*")
	if nestedQuantifiers > 0 {
		return cserrors.ErrQueryTooComplex
	}
	return nil
}

func standardQuery(text string) query.Query {
	return bleve.NewQueryStringQuery(text)
}

func applyBoosts(core query.Query, text string, w Weights, now time.Time) query.Query {
	boolQ := bleve.NewBooleanQuery()
	boolQ.AddMust(core)

	if w.PathRelevanceBoost > 0 {
		terms := analyzer.TokenizeCode(text)
		for _, t := range terms {
			pathQ := bleve.NewMatchQuery(t)
			pathQ.SetField("relative_path")
			pathQ.SetBoost(w.PathRelevanceBoost)
			boolQ.AddShould(pathQ)
		}
	}

	if w.RecencyBoost > 0 {
		for _, bucket := range recencyBuckets(now) {
			rq := bleve.NewNumericRangeQuery(&bucket.min, &bucket.max)
			rq.SetField("modified_ticks")
			rq.SetBoost(w.RecencyBoost * bucket.weight)
			boolQ.AddShould(rq)
		}
	}

	return boolQ
}

type recencyBucket struct {
	min, max float64
	weight   float64
}

// recencyBuckets implements the "inverse age bucket" recency boost:
// files modified within the last day get the full boost, within the
// last week a reduced boost, within the last month a smaller one still.
func recencyBuckets(now time.Time) []recencyBucket {
	nowTicks := float64(now.UnixNano())
	day := float64(24 * time.Hour)
	return []recencyBucket{
		{min: nowTicks - day, max: nowTicks, weight: 1.0},
		{min: nowTicks - 7*day, max: nowTicks - day, weight: 0.6},
		{min: nowTicks - 30*day, max: nowTicks - 7*day, weight: 0.3},
	}
}

func applyFilters(base query.Query, filters Filters) query.Query {
	clauses := []query.Query{base}

	if len(filters.Extensions) > 0 {
		disj := bleve.NewDisjunctionQuery()
		for _, ext := range filters.Extensions {
			tq := bleve.NewTermQuery(strings.ToLower(ext))
			tq.SetField("extension")
			disj.AddQuery(tq)
		}
		clauses = append(clauses, disj)
	}

	if filters.SizeMin > 0 || filters.SizeMax > 0 {
		min := float64(filters.SizeMin)
		var minPtr, maxPtr *float64
		if filters.SizeMin > 0 {
			minPtr = &min
		}
		if filters.SizeMax > 0 {
			max := float64(filters.SizeMax)
			maxPtr = &max
		}
		rq := bleve.NewNumericRangeQuery(minPtr, maxPtr)
		rq.SetField("size")
		clauses = append(clauses, rq)
	}

	if !filters.ModifiedSince.IsZero() {
		since := float64(filters.ModifiedSince.UnixNano())
		rq := bleve.NewNumericRangeQuery(&since, nil)
		rq.SetField("modified_ticks")
		clauses = append(clauses, rq)
	}

	if len(clauses) == 1 {
		return base
	}
	conj := bleve.NewConjunctionQuery()
	for _, c := range clauses {
		conj.AddQuery(c)
	}
	return conj
}

func pathFilterFor(filters Filters) func(string) bool {
	if len(filters.IncludeGlobs) == 0 && len(filters.ExcludeGlobs) == 0 {
		return func(string) bool { return true }
	}
	return func(relPath string) bool {
		for _, pattern := range filters.ExcludeGlobs {
			if ok, _ := doublestar.Match(pattern, relPath); ok {
				return false
			}
		}
		if len(filters.IncludeGlobs) == 0 {
			return true
		}
		for _, pattern := range filters.IncludeGlobs {
			if ok, _ := doublestar.Match(pattern, relPath); ok {
				return true
			}
		}
		return false
	}
}
