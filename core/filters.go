package core

import "slices"

// Matches reports whether a call's current state satisfies every
// constraint in the filter set. These checks run as a post-filter pass
// over joined results; they are never pushed down into the vector query.
func (f SearchFilters) Matches(call *CallRecord) bool {
	if call == nil {
		return false
	}

	if !f.From.IsZero() && call.OccurredAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && call.OccurredAt.After(f.To) {
		return false
	}

	if f.MinDurationSeconds > 0 && call.DurationSeconds < f.MinDurationSeconds {
		return false
	}
	if f.MaxDurationSeconds > 0 && call.DurationSeconds > f.MaxDurationSeconds {
		return false
	}

	if len(f.Sentiments) > 0 && !slices.Contains(f.Sentiments, call.Sentiment) {
		return false
	}
	if len(f.Outcomes) > 0 && !slices.Contains(f.Outcomes, call.Outcome) {
		return false
	}
	if len(f.Languages) > 0 && !slices.Contains(f.Languages, call.Language) {
		return false
	}

	if f.RequireRedFlags && !call.HasRedFlags {
		return false
	}
	if f.RequireActionItems && !call.HasActionItems {
		return false
	}

	return true
}

// IsZero reports whether no constraint is set.
func (f SearchFilters) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() &&
		f.MinDurationSeconds == 0 && f.MaxDurationSeconds == 0 &&
		len(f.Sentiments) == 0 && len(f.Outcomes) == 0 && len(f.Languages) == 0 &&
		!f.RequireRedFlags && !f.RequireActionItems
}
