package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/signalpath/recall/core"
)

const (
	// TokenBudget is the maximum number of tokens the embedding model accepts.
	TokenBudget = 8191

	// charsPerToken approximates English text at 4 characters per token.
	charsPerToken = 4

	// TruncationMarker is appended to text cut down to the token budget.
	TruncationMarker = " [truncated]"
)

// maxChars is the character budget derived from the token budget.
const maxChars = TokenBudget * charsPerToken

var (
	// Timestamp markers like [00:12:34], (1:05) or a bare 00:12:34.
	timestampPattern = regexp.MustCompile(`[\[(]?\b\d{1,2}:\d{2}(?::\d{2})?\b[\])]?`)

	// Speaker labels at the start of a line: "Agent:", "Dr. Smith:", "CALLER 2:".
	speakerPattern = regexp.MustCompile(`(?m)^[ \t]*[A-Za-z][A-Za-z0-9 ._'-]{0,39}:[ \t]+`)
)

// Content cleans raw transcript or summary text into embeddable form.
//
// The steps, in order: strip timestamp markers, strip speaker-label
// prefixes, collapse all whitespace runs to single spaces, trim. Text
// exceeding the token budget is truncated and marked. The returned text
// is guaranteed non-empty; empty input, or input that is blank after
// normalization, fails with core.ErrEmptyContent. This check runs before
// any hashing or network call, so a rejected input never reaches the
// embedding provider.
func Content(raw string, contentType core.ContentType) (string, error) {
	if err := core.ValidateContentType(contentType); err != nil {
		return "", err
	}

	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: %s", core.ErrEmptyContent, contentType)
	}

	text := timestampPattern.ReplaceAllString(raw, " ")

	// Summaries are prose; speaker labels only appear in transcripts.
	if contentType != core.ContentTypeSummary {
		text = speakerPattern.ReplaceAllString(text, "")
	}

	text = strings.Join(strings.Fields(text), " ")

	if text == "" {
		return "", fmt.Errorf("%w: %s blank after normalization", core.ErrEmptyContent, contentType)
	}

	return truncate(text), nil
}

// Combined merges a transcript and summary into one embeddable text,
// normalizing each part with its own rules before joining.
func Combined(transcript, summary string) (string, error) {
	t, terr := Content(transcript, core.ContentTypeTranscript)
	s, serr := Content(summary, core.ContentTypeSummary)

	switch {
	case terr == nil && serr == nil:
		return truncate(s + " " + t), nil
	case terr == nil:
		return t, nil
	case serr == nil:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %s", core.ErrEmptyContent, core.ContentTypeCombined)
	}
}

// EstimateTokens approximates the token count of text at 4 characters
// per token, rounding up.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// truncate cuts text down to the character budget and appends the
// truncation marker. Cuts land on rune boundaries.
func truncate(text string) string {
	if len(text) <= maxChars {
		return text
	}

	limit := maxChars - len(TruncationMarker)
	for limit > 0 && !utf8Start(text[limit]) {
		limit--
	}
	return strings.TrimRight(text[:limit], " ") + TruncationMarker
}

// utf8Start reports whether b is the first byte of a UTF-8 sequence.
func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
