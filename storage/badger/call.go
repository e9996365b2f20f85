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

// CallRepository implements storage.CallRepository for BadgerDB.
type CallRepository struct {
	backend *Backend
}

var _ storage.CallRepository = (*CallRepository)(nil)

// NewCallRepository creates a new CallRepository.
func NewCallRepository(backend *Backend) *CallRepository {
	return &CallRepository{backend: backend}
}

// Close releases repository resources.
func (r *CallRepository) Close() error {
	return nil
}

// PutCalls inserts or updates call records. InsertedAt is set on first
// write and preserved afterwards; UpdatedAt is set on every write.
func (r *CallRepository) PutCalls(ctx context.Context, calls ...*core.CallRecord) ([]*core.CallRecord, error) {
	for _, call := range calls {
		if err := core.ValidateCallRecord(call); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Stored times have microsecond precision
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, call := range calls {
			key := makeCallKey(call.OwnerID, call.ID)

			old, err := readCallRecord(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				call.InsertedAt = old.InsertedAt
			} else {
				call.InsertedAt = now
			}
			call.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalCallRecord(call)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return calls, nil
}

// GetCall retrieves a single call by owner and id.
// Returns storage.ErrNotFound if the call doesn't exist.
func (r *CallRepository) GetCall(ctx context.Context, ownerID, id string) (*core.CallRecord, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}
	if err := core.ValidateIdentifier(id); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var result *core.CallRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readCallRecord(tx, makeCallKey(ownerID, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCalls retrieves multiple calls by id. Missing ids are skipped.
func (r *CallRepository) GetCalls(ctx context.Context, ownerID string, ids ...string) ([]*core.CallRecord, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var result []*core.CallRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := readCallRecord(tx, makeCallKey(ownerID, id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListCallIDs returns the sorted ids of all calls for the owner.
func (r *CallRepository) ListCallIDs(ctx context.Context, ownerID string) ([]string, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}

	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCallOwnerPrefix(ownerID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id, err := parseCallKey(iter.Item().Key())
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}

// readCallRecord reads a call record from the transaction.
// Returns (nil, nil) when the key is absent.
func readCallRecord(tx *badger.Txn, key []byte) (*core.CallRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.CallRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalCallRecord(val)
		return unmarshalErr
	})
	return record, err
}
