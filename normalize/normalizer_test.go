package normalize

import (
	"strings"
	"testing"

	"github.com/signalpath/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent(t *testing.T) {
	t.Run("strips timestamp markers", func(t *testing.T) {
		got, err := Content("[00:12:34] hello there (1:05) and 00:00:59 done", core.ContentTypeTranscript)
		require.NoError(t, err)
		assert.Equal(t, "hello there and done", got)
	})

	t.Run("strips speaker labels", func(t *testing.T) {
		raw := "Agent: good morning\nDr. Smith: thanks for calling\nCALLER 2: I have a question"
		got, err := Content(raw, core.ContentTypeTranscript)
		require.NoError(t, err)
		assert.Equal(t, "good morning thanks for calling I have a question", got)
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		got, err := Content("a \t b\n\n  c", core.ContentTypeTranscript)
		require.NoError(t, err)
		assert.Equal(t, "a b c", got)
	})

	t.Run("summary keeps colon prose", func(t *testing.T) {
		got, err := Content("Outcome: customer satisfied", core.ContentTypeSummary)
		require.NoError(t, err)
		assert.Equal(t, "Outcome: customer satisfied", got)
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, err := Content("", core.ContentTypeTranscript)
		assert.ErrorIs(t, err, core.ErrEmptyContent)
	})

	t.Run("blank input rejected", func(t *testing.T) {
		_, err := Content("  \n\t ", core.ContentTypeTranscript)
		assert.ErrorIs(t, err, core.ErrEmptyContent)
	})

	t.Run("blank after normalization rejected", func(t *testing.T) {
		_, err := Content("[00:01:02] ", core.ContentTypeTranscript)
		assert.ErrorIs(t, err, core.ErrEmptyContent)
	})

	t.Run("invalid content type rejected", func(t *testing.T) {
		_, err := Content("hello", core.ContentType(99))
		assert.ErrorIs(t, err, core.ErrInvalidContentType)
	})

	t.Run("over-budget text truncated with marker", func(t *testing.T) {
		raw := strings.Repeat("word ", 10000) // ~50k chars, over the budget
		got, err := Content(raw, core.ContentTypeTranscript)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), maxChars)
		assert.True(t, strings.HasSuffix(got, TruncationMarker))
		assert.LessOrEqual(t, EstimateTokens(got), TokenBudget)
	})

	t.Run("text within budget untouched", func(t *testing.T) {
		got, err := Content("short call", core.ContentTypeTranscript)
		require.NoError(t, err)
		assert.False(t, strings.HasSuffix(got, TruncationMarker))
	})
}

func TestCombined(t *testing.T) {
	t.Run("summary leads transcript", func(t *testing.T) {
		got, err := Combined("Agent: hello there", "Quick greeting call.")
		require.NoError(t, err)
		assert.Equal(t, "Quick greeting call. hello there", got)
	})

	t.Run("transcript only", func(t *testing.T) {
		got, err := Combined("Agent: hello", "")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("summary only", func(t *testing.T) {
		got, err := Combined("", "Billing question.")
		require.NoError(t, err)
		assert.Equal(t, "Billing question.", got)
	})

	t.Run("both empty rejected", func(t *testing.T) {
		_, err := Combined("", " ")
		assert.ErrorIs(t, err, core.ErrEmptyContent)
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}
