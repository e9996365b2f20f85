package storage

import (
	"context"
	"time"

	"github.com/signalpath/recall/core"
)

// VectorSearcher finds stored embeddings near a query vector.
type VectorSearcher interface {
	// FindSimilar finds embedding records for one owner similar to the
	// given vector. Scores are cosine similarity (stored vectors are
	// normalized, so this is a dot product). Returns at most one match
	// per entity (the best-scoring content type), with similarity >=
	// minSimilarity, up to limit results, ordered by score descending
	// with entity id as the deterministic tie-break.
	FindSimilar(ctx context.Context, ownerID string, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)
}

// EmbeddingRepository persists embedding records keyed by
// (owner id, entity id, content type), one current record per key.
type EmbeddingRepository interface {
	VectorSearcher

	// Upsert stores an embedding record, atomically replacing any prior
	// record for the same (owner, entity, content type) key. The write
	// is an insert-or-replace, never a read-then-write across
	// transactions, so concurrent generations for one key cannot leave
	// two rows. InsertedAt is preserved across replacements; UpdatedAt
	// is set on every write.
	Upsert(ctx context.Context, record *core.EmbeddingRecord) (*core.EmbeddingRecord, error)

	// GetCurrent retrieves the current embedding record for a key.
	// Absence is not an error: returns (nil, nil) when the entity has
	// not been embedded yet.
	GetCurrent(ctx context.Context, ownerID, entityID string, contentType core.ContentType) (*core.EmbeddingRecord, error)

	// ListEmbeddedEntityIDs returns the sorted ids of all entities with
	// a current embedding of the given content type for the owner.
	ListEmbeddedEntityIDs(ctx context.Context, ownerID string, contentType core.ContentType) ([]string, error)

	// DeleteOlderThan removes embedding records generated before the
	// cutoff. An empty ownerID sweeps all owners. Returns the number of
	// records removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, ownerID string) (int, error)

	// Close releases repository resources.
	Close() error
}

// CallRepository stores the current state of calls: the content the
// pipeline embeds and the metadata joined into search results. It is the
// in-process stand-in for the surrounding system of record.
type CallRepository interface {
	// PutCalls inserts or updates call records. InsertedAt is set on
	// first write and preserved afterwards; UpdatedAt is set on every
	// write. Records are validated before storage.
	PutCalls(ctx context.Context, calls ...*core.CallRecord) ([]*core.CallRecord, error)

	// GetCall retrieves a single call by owner and id.
	// Returns ErrNotFound if the call doesn't exist.
	GetCall(ctx context.Context, ownerID, id string) (*core.CallRecord, error)

	// GetCalls retrieves multiple calls by id. Missing ids are skipped,
	// not an error.
	GetCalls(ctx context.Context, ownerID string, ids ...string) ([]*core.CallRecord, error)

	// ListCallIDs returns the sorted ids of all calls for the owner.
	ListCallIDs(ctx context.Context, ownerID string) ([]string, error)

	// Close releases repository resources.
	Close() error
}

// UsageRepository is the append-only cost ledger. Entries are never
// mutated or deleted.
type UsageRepository interface {
	// Append stores a new ledger entry. A missing ID is assigned and a
	// zero RecordedAt is set to the current time.
	Append(ctx context.Context, record *core.UsageRecord) (*core.UsageRecord, error)

	// GetByOwner returns the owner's ledger entries recorded within
	// [from, to], in recording order. Zero bounds are open.
	GetByOwner(ctx context.Context, ownerID string, from, to time.Time) ([]*core.UsageRecord, error)

	// TotalCost returns the sum of all cost amounts recorded for the owner.
	TotalCost(ctx context.Context, ownerID string) (float64, error)

	// Close releases repository resources.
	Close() error
}
