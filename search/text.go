package search

import (
	"strings"
	"unicode"
)

// stopWords are dropped before whole-word matching. Transcripts are full
// of them and they carry no retrieval signal.
var stopWords = func() map[string]struct{} {
	const list = "the a an be is are was to of and in that have it for " +
		"not on with as you do at this but by from"
	set := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
	}
	return set
}()

// terms lowercases text and splits it on every non-alphanumeric rune, so
// "refund/chargeback" yields both words and trailing punctuation never
// sticks to a term. Stop words are removed.
func terms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	kept := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; !stop {
			kept = append(kept, f)
		}
	}
	return kept
}

// termSet is the deduplicated term vocabulary of a text.
type termSet map[string]struct{}

func newTermSet(text string) termSet {
	set := make(termSet)
	for _, t := range terms(text) {
		set[t] = struct{}{}
	}
	return set
}

// containsAll reports whether every query term appears in the set. An
// empty query never matches.
func (s termSet) containsAll(query []string) bool {
	if len(query) == 0 {
		return false
	}
	for _, q := range query {
		if _, ok := s[q]; !ok {
			return false
		}
	}
	return true
}
