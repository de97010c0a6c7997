package analyzer

import (
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
)

// camelSnakeFilter splits each incoming token on underscore runs and on
// CamelCase boundaries (lower-to-upper, and the last upper of an
// all-caps run before a following lower, e.g. "HTTPServer" -> "HTTP",
// "Server"), emitting the sub-tokens as additional positions after the
// token that produced them. It generalizes splitWords from the
// teacher's pkg/obsidian/file_filtering.go, which only split on
// hyphen/underscore/dot, to also split camel case.
type camelSnakeFilter struct {
	keepOriginal bool
}

func newCamelSnakeFilter(keepOriginal bool) *camelSnakeFilter {
	return &camelSnakeFilter{keepOriginal: keepOriginal}
}

func (f *camelSnakeFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	var out analysis.TokenStream
	position := 1
	for _, tok := range input {
		parts := splitBoundaries(string(tok.Term))
		if f.keepOriginal && len(parts) > 1 {
			out = append(out, &analysis.Token{
				Term:     tok.Term,
				Start:    tok.Start,
				End:      tok.End,
				Position: position,
				Type:     tok.Type,
			})
			position++
		}
		for _, p := range parts {
			out = append(out, &analysis.Token{
				Term:     []byte(p),
				Start:    tok.Start,
				End:      tok.End,
				Position: position,
				Type:     tok.Type,
			})
			position++
		}
	}
	return out
}

// splitBoundaries splits s on underscore/digit-letter/case boundaries.
// "HTTPServerConfig_v2" -> ["HTTP", "Server", "Config", "v2"].
func splitBoundaries(s string) []string {
	var parts []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			parts = append(parts, string(current))
			current = nil
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' {
			flush()
			continue
		}
		if i > 0 && isBoundary(runes, i) {
			flush()
		}
		current = append(current, r)
	}
	flush()

	if len(parts) == 0 {
		return []string{s}
	}
	return parts
}

// isBoundary reports whether a CamelCase boundary falls immediately
// before runes[i]: a lowercase-or-digit followed by an uppercase, or the
// last uppercase of a run followed by a lowercase (so "HTTPServer"
// splits as "HTTP"|"Server", not "HTTPS"|"erver").
func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if (unicode.IsLower(prev) || unicode.IsDigit(prev)) && unicode.IsUpper(cur) {
		return true
	}
	if unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}
	return false
}
