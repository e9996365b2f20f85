package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/signalpath/recall/ai"
	"github.com/signalpath/recall/core"
)

const (
	// keywordBoost multiplies the similarity of a vector hit whose call
	// content also verbatim-matches the query.
	keywordBoost = 1.2

	// previewLength bounds the preview text joined into a result.
	previewLength = 160
)

// buildResult joins a similarity match with the call's current state.
// Similarity is clamped to [0,1] before any boost, and the boosted score
// is capped at 1.0 so keyword matches never push a result above a
// perfect similarity.
func buildResult(match *core.SimilarityMatch, call *core.CallRecord, keywordHit bool) *core.SearchResult {
	score := ai.Clamp01(match.Score)
	if keywordHit {
		score = min(score*keywordBoost, 1.0)
	}

	return &core.SearchResult{
		EntityID:        match.EntityID,
		Preview:         makePreview(call),
		Similarity:      score,
		KeywordMatch:    keywordHit,
		Sentiment:       call.Sentiment,
		Outcome:         call.Outcome,
		Language:        call.Language,
		DurationSeconds: call.DurationSeconds,
		OccurredAt:      call.OccurredAt,
		HasRedFlags:     call.HasRedFlags,
		HasActionItems:  call.HasActionItems,
	}
}

// makePreview returns a short excerpt of the call, preferring the summary.
func makePreview(call *core.CallRecord) string {
	text := strings.TrimSpace(call.Summary)
	if text == "" {
		text = strings.TrimSpace(call.Transcript)
	}
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:previewLength])) + "..."
}

// sortResults orders results by similarity descending, with entity id
// ascending as the deterministic tie-break.
func sortResults(results []*core.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].EntityID < results[j].EntityID
	})
}
