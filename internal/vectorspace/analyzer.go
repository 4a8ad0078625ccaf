// Package vectorspace fits a TF-IDF vocabulary over unigram and bigram terms
// and projects normalized text into sparse, L2-normalized vectors.
package vectorspace

import "strings"

// MinTokenLen is the shortest word kept as a token.
const MinTokenLen = 2

// Terms splits already-normalized text into unigram and bigram terms.
// Unigrams come first in text order, followed by bigrams of adjacent kept tokens.
func Terms(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= MinTokenLen {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
