package postgres

import (
	"regexp"
	"strings"
)

// stopwords are dropped before the query reaches the store. Stemming itself
// is delegated to the store's english dictionary, so the token list here only
// needs the words that would otherwise inflate an OR query with noise.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "if": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "such": {},
	"that": {}, "the": {}, "their": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "to": {}, "was": {}, "will": {}, "with": {},
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// buildTSQuery converts free text into a tsquery expression with OR semantics
// across terms: tokenize, lowercase, drop stopwords and duplicates, join with
// the "|" operator. OR is deliberate: requiring every term to match returns
// empty results for most natural multi-word queries. Returns "" when no
// indexable term remains.
func buildTSQuery(query string) string {
	tokens := tokenPattern.FindAllString(strings.ToLower(query), -1)

	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := stopwords[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}

	return strings.Join(terms, " | ")
}
