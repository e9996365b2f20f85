package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchFiltersMatches(t *testing.T) {
	occurred := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	call := &CallRecord{
		ID:              "call-1",
		OwnerID:         "acct-1",
		Transcript:      "hello",
		Sentiment:       "positive",
		Outcome:         "resolved",
		Language:        "en",
		DurationSeconds: 300,
		OccurredAt:      occurred,
		HasRedFlags:     false,
		HasActionItems:  true,
	}

	tests := []struct {
		name    string
		filters SearchFilters
		want    bool
	}{
		{"zero filters match everything", SearchFilters{}, true},
		{"date range containing call", SearchFilters{From: occurred.Add(-time.Hour), To: occurred.Add(time.Hour)}, true},
		{"from after call", SearchFilters{From: occurred.Add(time.Hour)}, false},
		{"to before call", SearchFilters{To: occurred.Add(-time.Hour)}, false},
		{"duration in range", SearchFilters{MinDurationSeconds: 60, MaxDurationSeconds: 600}, true},
		{"duration below minimum", SearchFilters{MinDurationSeconds: 400}, false},
		{"duration above maximum", SearchFilters{MaxDurationSeconds: 100}, false},
		{"sentiment match", SearchFilters{Sentiments: []string{"neutral", "positive"}}, true},
		{"sentiment mismatch", SearchFilters{Sentiments: []string{"negative"}}, false},
		{"outcome match", SearchFilters{Outcomes: []string{"resolved"}}, true},
		{"outcome mismatch", SearchFilters{Outcomes: []string{"escalated"}}, false},
		{"language match", SearchFilters{Languages: []string{"en"}}, true},
		{"language mismatch", SearchFilters{Languages: []string{"es"}}, false},
		{"red flags required but absent", SearchFilters{RequireRedFlags: true}, false},
		{"action items required and present", SearchFilters{RequireActionItems: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Matches(call))
		})
	}

	t.Run("nil call never matches", func(t *testing.T) {
		assert.False(t, SearchFilters{}.Matches(nil))
	})
}

func TestSearchFiltersIsZero(t *testing.T) {
	assert.True(t, SearchFilters{}.IsZero())
	assert.False(t, SearchFilters{Languages: []string{"en"}}.IsZero())
	assert.False(t, SearchFilters{RequireRedFlags: true}.IsZero())
	assert.False(t, SearchFilters{From: time.Now()}.IsZero())
}
