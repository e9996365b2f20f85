package core

import "time"

// ContentType identifies which rendition of a call's content an embedding
// was generated from.
type ContentType int

const (
	// ContentTypeTranscript is the full call transcript.
	ContentTypeTranscript ContentType = iota + 1
	// ContentTypeSummary is the call summary.
	ContentTypeSummary
	// ContentTypeCombined is the transcript and summary embedded together.
	ContentTypeCombined
)

// String returns a stable textual name for the content type.
func (ct ContentType) String() string {
	switch ct {
	case ContentTypeTranscript:
		return "transcript"
	case ContentTypeSummary:
		return "summary"
	case ContentTypeCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// OperationType identifies what kind of operation produced a usage ledger entry.
type OperationType int

const (
	// OperationGenerate is a single on-demand embedding generation.
	OperationGenerate OperationType = iota + 1
	// OperationBatch is a generation driven by a batch run.
	OperationBatch
	// OperationRegenerate is a forced regeneration of an existing embedding.
	OperationRegenerate
)

// String returns a stable textual name for the operation type.
func (op OperationType) String() string {
	switch op {
	case OperationGenerate:
		return "generate"
	case OperationBatch:
		return "batch"
	case OperationRegenerate:
		return "regenerate"
	default:
		return "unknown"
	}
}

// EmbeddingRecord is one vector snapshot of one call's content.
// At most one record exists per (OwnerID, EntityID, ContentType) key;
// a regeneration for the same key replaces the prior vector.
type EmbeddingRecord struct {
	EntityID     string
	OwnerID      string
	Vector       []float32 // L2-normalized before storage
	ModelName    string
	ModelVersion int
	ContentType  ContentType
	ContentHash  string // fingerprint of the exact normalized text embedded
	TokenCount   int
	GeneratedAt  time.Time // when the provider produced the vector
	InsertedAt   time.Time // when the record was first stored
	UpdatedAt    time.Time // when the record was last replaced
}

// CallRecord holds the current state of a call as known to this core:
// the raw content to embed plus the denormalized metadata joined into
// search results. It is the contract surface with the surrounding system.
type CallRecord struct {
	ID              string
	OwnerID         string
	Transcript      string
	Summary         string
	Sentiment       string
	Outcome         string
	Language        string
	DurationSeconds int
	OccurredAt      time.Time
	HasRedFlags     bool
	HasActionItems  bool
	InsertedAt      time.Time
	UpdatedAt       time.Time
}

// SearchFilters is an immutable value object describing structured
// constraints applied to search results at query time. Zero values mean
// "unconstrained". Filters are never persisted.
type SearchFilters struct {
	From               time.Time
	To                 time.Time
	MinDurationSeconds int
	MaxDurationSeconds int
	Sentiments         []string
	Outcomes           []string
	Languages          []string
	RequireRedFlags    bool
	RequireActionItems bool
}

// SimilarityMatch is a raw nearest-neighbor hit from the vector store,
// before metadata is joined in.
type SimilarityMatch struct {
	EntityID    string
	ContentType ContentType
	Score       float32
}

// SearchResult is an ephemeral, fully joined search hit. Metadata reflects
// the call's current state at query time, not a snapshot frozen at
// embedding time.
type SearchResult struct {
	EntityID        string
	Preview         string
	Similarity      float32 // clamped to [0,1], possibly keyword-boosted
	KeywordMatch    bool
	Sentiment       string
	Outcome         string
	Language        string
	DurationSeconds int
	OccurredAt      time.Time
	HasRedFlags     bool
	HasActionItems  bool
}

// UsageRecord is one append-only ledger entry for a paid embedding
// operation. Records are never mutated or deleted by this core.
type UsageRecord struct {
	ID         string
	OwnerID    string
	EntityID   string
	TokenCount int
	ModelName  string
	CostAmount float64
	Operation  OperationType
	RecordedAt time.Time
}

// BatchItem is one unit of work in a batch embedding run.
type BatchItem struct {
	EntityID    string
	Text        string
	ContentType ContentType
}

// BatchItemResult is the per-item outcome of a batch run. Err is set
// when the item failed; failures never abort the remaining items.
type BatchItemResult struct {
	EntityID   string
	Cached     bool
	TokenCount int
	Cost       float64
	Err        error
}

// BatchSummary aggregates a batch run. Success+Failed always equals
// Total, and Cached never exceeds Success.
type BatchSummary struct {
	Total   int
	Success int
	Failed  int
	Cached  int
}

// BatchResult is the full outcome of one batch run.
type BatchResult struct {
	Items     []BatchItemResult
	Summary   BatchSummary
	TotalCost float64
}

// CoverageReport describes how much of an owner's call corpus has a
// current transcript embedding.
type CoverageReport struct {
	TotalEntities    int
	EmbeddedEntities int
	CoveragePercent  float64
	MissingIDs       []string
}
