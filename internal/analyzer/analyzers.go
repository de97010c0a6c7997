package analyzer

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/registry"
)

// Field analyzer names, referenced by internal/indexsvc when building the
// IndexMapping -- one per field per spec §4.4.
const (
	ContentName         = "code_content"
	ContentCodeName     = "code_content_code"
	ContentSymbolsName  = "code_content_symbols"
	ContentLiteralName  = keyword.Name
	ContentPatternsName = "code_content_patterns"
)

func init() {
	registry.RegisterAnalyzer(ContentName, contentAnalyzerConstructor)
	registry.RegisterAnalyzer(ContentCodeName, contentCodeAnalyzerConstructor)
	registry.RegisterAnalyzer(ContentSymbolsName, contentSymbolsAnalyzerConstructor)
	registry.RegisterAnalyzer(ContentPatternsName, contentPatternsAnalyzerConstructor)
}

func contentAnalyzerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Analyzer, error) {
	return &analysis.DefaultAnalyzer{
		Tokenizer: newIdentifierTokenizer(),
		TokenFilters: []analysis.TokenFilter{
			newCamelSnakeFilter(false),
			newCaseFoldFilter(),
		},
	}, nil
}

// contentCodeAnalyzerConstructor keeps both the original token and its
// CamelCase/snake_case sub-tokens, so an exact compound-identifier query
// (e.g. "HTTPServerConfig") still matches even though "HTTP", "Server",
// and "Config" are also indexed individually.
func contentCodeAnalyzerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Analyzer, error) {
	return &analysis.DefaultAnalyzer{
		Tokenizer: newIdentifierTokenizer(),
		TokenFilters: []analysis.TokenFilter{
			newCamelSnakeFilter(true),
			newCaseFoldFilter(),
		},
	}, nil
}

func contentSymbolsAnalyzerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Analyzer, error) {
	return &analysis.DefaultAnalyzer{
		Tokenizer: newIdentifierTokenizer(),
		TokenFilters: []analysis.TokenFilter{
			newSymbolFilter(),
			newCamelSnakeFilter(true),
			newCaseFoldFilter(),
		},
	}, nil
}

func contentPatternsAnalyzerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Analyzer, error) {
	return &analysis.DefaultAnalyzer{
		Tokenizer:    newPatternTokenizer(),
		TokenFilters: nil,
	}, nil
}
