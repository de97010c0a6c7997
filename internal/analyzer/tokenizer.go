// Package analyzer implements the code-aware tokenization pipeline of
// spec §4.4: five bleve field analyzers sharing one identifier-boundary
// tokenizer, registered into bleve's global analysis registry so an
// IndexMapping can reference them by name. The boundary-splitting logic
// generalizes the teacher's splitWords in
// pkg/obsidian/file_filtering.go (hyphen/underscore/dot splitting) to
// also split CamelCase runs, which source identifiers need and vault
// note titles never did.
package analyzer

import (
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
)

// identifierTokenizer splits input into runs of identifier characters
// (letters, digits, underscore) separated by anything else. Each run
// becomes one token; the separators are discarded. This is the base
// tokenizer shared by content, content_code, and content_symbols -- the
// boundary-aware CamelCase/snake_case expansion happens afterward in a
// TokenFilter, matching bleve's tokenizer-then-filter pipeline idiom.
type identifierTokenizer struct{}

func newIdentifierTokenizer() *identifierTokenizer { return &identifierTokenizer{} }

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (t *identifierTokenizer) Tokenize(input []byte) analysis.TokenStream {
	var tokens analysis.TokenStream
	runes := []rune(string(input))
	position := 1
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		byteStart := runeIndexToByteOffset(runes, start)
		byteEnd := runeIndexToByteOffset(runes, end)
		tokens = append(tokens, &analysis.Token{
			Term:     []byte(string(runes[start:end])),
			Start:    byteStart,
			End:      byteEnd,
			Position: position,
			Type:     analysis.AlphaNumeric,
		})
		position++
		start = -1
	}

	for i, r := range runes {
		if isIdentifierRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(runes))

	return tokens
}

// runeIndexToByteOffset converts a rune index back into a byte offset;
// tokens track byte spans (per analysis.Token convention) even though
// the scan above walks runes to stay correct on multi-byte identifiers.
func runeIndexToByteOffset(runes []rune, runeIdx int) int {
	offset := 0
	for _, r := range runes[:runeIdx] {
		offset += len(string(r))
	}
	return offset
}

// patternTokenizer keeps a small allow-list of structural punctuation
// runs (used by content_patterns) plus the identifier runs around them,
// so a query like ": ITool" or "[Fact]" can match verbatim.
type patternTokenizer struct{}

func newPatternTokenizer() *patternTokenizer { return &patternTokenizer{} }

const patternPunctuation = ":()[]{}<>."

func isPatternPunct(r rune) bool {
	for _, p := range patternPunctuation {
		if r == p {
			return true
		}
	}
	return false
}

func (t *patternTokenizer) Tokenize(input []byte) analysis.TokenStream {
	var tokens analysis.TokenStream
	runes := []rune(string(input))
	position := 1
	start := -1

	isKept := func(r rune) bool { return isIdentifierRune(r) || isPatternPunct(r) }

	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = append(tokens, &analysis.Token{
			Term:     []byte(string(runes[start:end])),
			Start:    runeIndexToByteOffset(runes, start),
			End:      runeIndexToByteOffset(runes, end),
			Position: position,
			Type:     analysis.AlphaNumeric,
		})
		position++
		start = -1
	}

	for i, r := range runes {
		if isKept(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(runes))

	return tokens
}
