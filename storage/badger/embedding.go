package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/storage"
)

// upsertRetries bounds retries when an optimistic write transaction
// loses a conflict to a concurrent writer for the same key.
const upsertRetries = 3

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{backend: backend}
}

// Close releases repository resources.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, ownerID string, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	return r.backend.FindSimilar(ctx, ownerID, vector, minSimilarity, limit)
}

// Upsert stores an embedding record, replacing any prior record for the
// same (owner, entity, content type) key in a single transaction.
// InsertedAt survives replacement; UpdatedAt is set on every write.
// Conflicting concurrent writes for the same key are retried, so the
// losing generation still lands as a clean replacement rather than a
// second row.
func (r *EmbeddingRepository) Upsert(ctx context.Context, record *core.EmbeddingRecord) (*core.EmbeddingRecord, error) {
	if err := core.ValidateEmbeddingRecord(record, 0); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= upsertRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			key := makeEmbeddingKey(record.OwnerID, record.EntityID, record.ContentType)

			old, err := readEmbeddingRecord(tx, key)
			if err != nil {
				return err
			}

			// Stored times have microsecond precision
			now := time.Now().UTC().Truncate(time.Microsecond)
			if old != nil {
				record.InsertedAt = old.InsertedAt
			} else {
				record.InsertedAt = now
			}
			record.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %w", storage.ErrConflict, lastErr)
}

// GetCurrent retrieves the current embedding record for a key.
// Absence is not an error: returns (nil, nil).
func (r *EmbeddingRepository) GetCurrent(ctx context.Context, ownerID, entityID string, contentType core.ContentType) (*core.EmbeddingRecord, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}
	if err := core.ValidateIdentifier(entityID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEmbeddingKey(ownerID, entityID, contentType)
		var err error
		result, err = readEmbeddingRecord(tx, key)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListEmbeddedEntityIDs returns the sorted ids of all entities with a
// current embedding of the given content type for the owner.
func (r *EmbeddingRepository) ListEmbeddedEntityIDs(ctx context.Context, ownerID string, contentType core.ContentType) ([]string, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEmbeddingOwnerPrefix(ownerID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			entityID, keyType, err := parseEmbeddingKey(iter.Item().Key())
			if err != nil {
				return err
			}
			if keyType != contentType {
				continue
			}
			ids = append(ids, entityID)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}

// DeleteOlderThan removes embedding records generated before the cutoff.
// An empty ownerID sweeps every owner. Returns the number removed.
func (r *EmbeddingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, ownerID string) (int, error) {
	prefix := []byte(embeddingRecordPrefix + ":")
	if ownerID != "" {
		if err := core.ValidateIdentifier(ownerID); err != nil {
			return 0, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
		}
		prefix = makeEmbeddingOwnerPrefix(ownerID)
	}

	// Collect stale keys in a read pass, then delete in a write pass.
	// Keeping the scan out of the write transaction keeps it small.
	var stale [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			var record *core.EmbeddingRecord
			err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil && record.GeneratedAt.Before(cutoff) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}
	return r.deleteStale(cutoff, stale)
}

// deleteStale deletes the given keys, re-checking staleness inside the
// write transaction: a record regenerated between the read pass and
// here has a fresh GeneratedAt and must survive the sweep.
func (r *EmbeddingRepository) deleteStale(cutoff time.Time, keys [][]byte) (int, error) {
	removed := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			record, err := readEmbeddingRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil || !record.GeneratedAt.Before(cutoff) {
				continue
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// readEmbeddingRecord reads an embedding record from the transaction.
// Returns (nil, nil) when the key is absent.
func readEmbeddingRecord(tx *badger.Txn, key []byte) (*core.EmbeddingRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.EmbeddingRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalEmbeddingRecord(val)
		return unmarshalErr
	})
	return record, err
}
