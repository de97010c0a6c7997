package analyzer

// TokenizeCode runs the content_code pipeline (identifier boundaries +
// CamelCase/snake_case expansion + case folding, keeping the original
// token) over text and returns the resulting terms. internal/queryplanner
// uses this to turn a Code-mode query into the same terms the analyzer
// would have produced at index time, without needing a live bleve index.
func TokenizeCode(text string) []string {
	stream := newIdentifierTokenizer().Tokenize([]byte(text))
	stream = newCamelSnakeFilter(true).Filter(stream)
	stream = newCaseFoldFilter().Filter(stream)
	terms := make([]string, 0, len(stream))
	seen := make(map[string]bool, len(stream))
	for _, tok := range stream {
		term := string(tok.Term)
		if seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}

// TokenizePatterns runs the content_patterns pipeline over text, the
// same patternTokenizer content_patterns is analyzed with at index
// time, so a structural query like ": ITool" or "[Fact]" produces the
// exact terms stored for it.
func TokenizePatterns(text string) []string {
	stream := newPatternTokenizer().Tokenize([]byte(text))
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// TokenizeSymbols runs the content_symbols pipeline over text.
func TokenizeSymbols(text string) []string {
	stream := newIdentifierTokenizer().Tokenize([]byte(text))
	stream = newSymbolFilter().Filter(stream)
	stream = newCamelSnakeFilter(true).Filter(stream)
	stream = newCaseFoldFilter().Filter(stream)
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// LooksLikeSingleIdentifier reports whether text is a single
// identifier-shaped token (no whitespace, starts with a letter or
// underscore) -- the Auto mode routing signal for content_symbols.
func LooksLikeSingleIdentifier(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		if i == 0 {
			if !(r == '_' || isLetter(r)) {
				return false
			}
			continue
		}
		if !isIdentifierRune(r) {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

// LooksPunctuationHeavy reports whether text contains enough structural
// punctuation to route to content_literal/content_patterns instead of
// content, per Auto mode's routing rule.
func LooksPunctuationHeavy(text string) bool {
	if text == "" {
		return false
	}
	punct := 0
	for _, r := range text {
		if isPatternPunct(r) || r == '"' || r == '\'' || r == ';' || r == ',' {
			punct++
		}
	}
	return float64(punct)/float64(len([]rune(text))) > 0.2
}

// LooksStructural reports whether text matches a common structural code
// pattern like ": IFoo", "[Attr]", or "Task<T>".
func LooksStructural(text string) bool {
	for _, r := range text {
		if r == '<' || r == '[' || (r == ':' && len(text) > 1) {
			return true
		}
	}
	return false
}
