package analyzer

import (
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
)

// caseFoldFilter lowercases token terms, per the Open Question decision
// recorded in DESIGN.md: an ASCII fast path avoids per-rune unicode
// overhead for the overwhelmingly common case of ASCII identifiers, and
// falls back to unicode.ToLower only when a non-ASCII byte is observed.
type caseFoldFilter struct{}

func newCaseFoldFilter() *caseFoldFilter { return &caseFoldFilter{} }

func (f *caseFoldFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, tok := range input {
		tok.Term = foldCase(tok.Term)
	}
	return input
}

func foldCase(term []byte) []byte {
	asciiOnly := true
	for _, b := range term {
		if b >= unicode.MaxASCII {
			asciiOnly = false
			break
		}
	}
	if asciiOnly {
		out := make([]byte, len(term))
		for i, b := range term {
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			out[i] = b
		}
		return out
	}
	return []byte(toLowerUnicode(string(term)))
}

func toLowerUnicode(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return string(runes)
}
