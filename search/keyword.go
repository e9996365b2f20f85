package search

import (
	"context"

	"github.com/signalpath/recall/storage"
)

// KeywordMatcher finds the ids of calls whose content verbatim-matches a
// query. Implementations may scan, index, or delegate; the searcher only
// needs the id set.
type KeywordMatcher interface {
	Match(ctx context.Context, ownerID, query string) (map[string]bool, error)
}

// TextMatcher is the default KeywordMatcher: a stop-word-filtered
// whole-word scan over the owner's call corpus. Every query word that
// survives filtering must appear in the call's transcript or summary.
type TextMatcher struct {
	calls storage.CallRepository
}

var _ KeywordMatcher = (*TextMatcher)(nil)

// NewTextMatcher creates a TextMatcher over the given call repository.
func NewTextMatcher(calls storage.CallRepository) *TextMatcher {
	return &TextMatcher{calls: calls}
}

// Match scans the owner's calls and returns the set of ids containing
// every filtered query word.
func (m *TextMatcher) Match(ctx context.Context, ownerID, query string) (map[string]bool, error) {
	queryTerms := terms(query)
	if len(queryTerms) == 0 {
		return map[string]bool{}, nil
	}

	ids, err := m.calls.ListCallIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	calls, err := m.calls.GetCalls(ctx, ownerID, ids...)
	if err != nil {
		return nil, err
	}

	matches := make(map[string]bool)
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if newTermSet(call.Transcript + " " + call.Summary).containsAll(queryTerms) {
			matches[call.ID] = true
		}
	}
	return matches, nil
}
