package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/storage"
)

// UsageRepository implements storage.UsageRepository for BadgerDB.
// The ledger is append-only: entries are written once and never touched
// again. Keys embed the recording timestamp so a prefix scan returns
// entries in recording order.
type UsageRepository struct {
	backend *Backend
}

var _ storage.UsageRepository = (*UsageRepository)(nil)

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(backend *Backend) *UsageRepository {
	return &UsageRepository{backend: backend}
}

// Close releases repository resources.
func (r *UsageRepository) Close() error {
	return nil
}

// Append stores a new ledger entry. A missing ID is assigned and a zero
// RecordedAt is set to the current time.
func (r *UsageRepository) Append(ctx context.Context, record *core.UsageRecord) (*core.UsageRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	if err := core.ValidateUsageRecord(record); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeUsageKey(record.OwnerID, record.RecordedAt, record.ID)
		if err := tx.Set(key, storage.MarshalUsageRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetByOwner returns the owner's ledger entries recorded within
// [from, to], in recording order. Zero bounds are open.
func (r *UsageRepository) GetByOwner(ctx context.Context, ownerID string, from, to time.Time) ([]*core.UsageRecord, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.UsageRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeUsageOwnerPrefix(ownerID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := opts.Prefix
		if !from.IsZero() {
			start = makePartialUsageKey(ownerID, from)
		}

		for iter.Seek(start); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.UsageRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalUsageRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if !to.IsZero() && record.RecordedAt.After(to) {
				break
			}
			results = append(results, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// TotalCost returns the sum of all cost amounts recorded for the owner.
func (r *UsageRepository) TotalCost(ctx context.Context, ownerID string) (float64, error) {
	records, err := r.GetByOwner(ctx, ownerID, time.Time{}, time.Time{})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, record := range records {
		total += record.CostAmount
	}
	return total, nil
}
