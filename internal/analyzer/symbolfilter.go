package analyzer

import (
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
)

// symbolFilter drops tokens that don't look like identifiers/symbols --
// keeping only tokens whose first rune is a letter or underscore, so
// content_symbols indexes attribute/type/keyword-shaped tokens and skips
// bare numeric literals that content_code already covers.
type symbolFilter struct{}

func newSymbolFilter() *symbolFilter { return &symbolFilter{} }

func (f *symbolFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	out := input[:0]
	for _, tok := range input {
		r, _ := utf8.DecodeRune(tok.Term)
		if r == utf8.RuneError {
			continue
		}
		if r == '_' || unicode.IsLetter(r) {
			out = append(out, tok)
		}
	}
	return out
}
