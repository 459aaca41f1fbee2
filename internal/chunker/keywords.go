package chunker

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// stopWords are common English words excluded from keyword sets.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "can": true, "do": true, "for": true,
	"from": true, "has": true, "have": true, "how": true, "if": true,
	"in": true, "is": true, "it": true, "its": true, "more": true, "not": true,
	"of": true, "on": true, "or": true, "our": true, "so": true, "that": true,
	"the": true, "their": true, "then": true, "these": true, "they": true,
	"this": true, "to": true, "use": true, "used": true, "using": true,
	"was": true, "we": true, "what": true, "when": true, "which": true,
	"will": true, "with": true, "you": true, "your": true,
}

// Tokenize lowercases the input and returns its alphanumeric tokens with
// stop words removed. Queries and chunk text must go through the same
// tokenization so keyword overlap is comparable.
func Tokenize(s string) []string {
	var tokens []string
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		if len(tok) < 2 || stopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ExtractKeywords returns the deduplicated token set of title and text,
// preserving first-seen order.
func ExtractKeywords(title, text string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, tok := range Tokenize(title + " " + text) {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}
