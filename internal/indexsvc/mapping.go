package indexsvc

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/anortham/codesearch-mcp/internal/analyzer"
)

// BuildIndexMapping constructs the document mapping used for every
// workspace index: one field per Document column, each analyzed by the
// matching code-aware analyzer from internal/analyzer where relevant.
func BuildIndexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = analyzer.ContentName
	im.DefaultMapping = documentMapping()
	return im
}

func documentMapping() *mapping.DocumentMapping {
	doc := bleve.NewDocumentMapping()

	doc.AddFieldMappingsAt("path", storedKeywordField())
	doc.AddFieldMappingsAt("relative_path", storedTextField(analyzer.ContentName))
	doc.AddFieldMappingsAt("filename", storedTextField(analyzer.ContentCodeName))
	doc.AddFieldMappingsAt("extension", storedKeywordField())
	doc.AddFieldMappingsAt("language", storedKeywordField())
	doc.AddFieldMappingsAt("size", numericField())
	doc.AddFieldMappingsAt("modified_ticks", numericField())

	doc.AddFieldMappingsAt("content", unstoredTextField(analyzer.ContentName))
	doc.AddFieldMappingsAt("content_code", unstoredTextField(analyzer.ContentCodeName))
	doc.AddFieldMappingsAt("content_symbols", unstoredTextField(analyzer.ContentSymbolsName))
	doc.AddFieldMappingsAt("content_literal", unstoredTextField(analyzer.ContentLiteralName))
	doc.AddFieldMappingsAt("content_patterns", unstoredTextField(analyzer.ContentPatternsName))

	doc.AddFieldMappingsAt("type_hints", storedTextField(analyzer.ContentSymbolsName))
	doc.AddFieldMappingsAt("method_hints", storedTextField(analyzer.ContentSymbolsName))

	doc.AddFieldMappingsAt("directory", storedKeywordField())
	doc.AddFieldMappingsAt("filename_literal", storedKeywordField())
	doc.AddFieldMappingsAt("relative_path_literal", storedKeywordField())

	return doc
}

func storedKeywordField() *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = keywordAnalyzerName
	f.Store = true
	f.IncludeInAll = false
	return f
}

func storedTextField(analyzerName string) *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = analyzerName
	f.Store = true
	f.IncludeTermVectors = true
	return f
}

func unstoredTextField(analyzerName string) *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = analyzerName
	f.Store = false
	f.IncludeTermVectors = true
	return f
}

func numericField() *mapping.FieldMapping {
	f := bleve.NewNumericFieldMapping()
	f.Store = true
	return f
}

const keywordAnalyzerName = "keyword"
