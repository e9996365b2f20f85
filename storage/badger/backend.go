package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/storage"
)

// Backend owns the BadgerDB handle shared by the repositories. It also
// implements storage.VectorSearcher directly, since the similarity scan
// needs raw iterator access.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// dbLogger routes badger's internal logging through slog.
type dbLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*dbLogger)(nil)

func (l *dbLogger) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...))
}

func (l *dbLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...))
}

func (l *dbLogger) Infof(msg string, items ...any) {
	l.logger.Info(fmt.Sprintf(msg, items...))
}

func (l *dbLogger) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens the database at filePath, creating the directory
// when missing. With inMemory set, filePath is ignored and nothing
// touches disk; tests use this mode.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	logger := slog.Default().With("component", "storage")

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(filePath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		opts = badger.DefaultOptions(filePath)
	}
	opts.Logger = &dbLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{db: db, logger: logger}, nil
}

// Close closes the underlying database. Repositories sharing this
// backend become unusable afterwards.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a transaction, read-write when isWrite is set.
// fn is responsible for committing; the deferred Discard is a no-op
// after a successful commit.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// FindSimilar scans one owner's embedding records and scores them
// against the query vector. Stored vectors are L2-normalized, so the
// dot product is the cosine similarity. At most one match is returned
// per entity: when an entity carries embeddings for several content
// types, only the best-scoring one survives.
// Implements storage.VectorSearcher.
func (b *Backend) FindSimilar(ctx context.Context, ownerID string, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}
	if len(vector) == 0 || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	best := make(map[string]*core.SimilarityMatch)

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEmbeddingOwnerPrefix(ownerID)
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
			if record == nil || len(record.Vector) == 0 {
				continue
			}
			// Vectors from a different model dimensionality never match
			if len(record.Vector) != len(vector) {
				continue
			}

			similarity := dotProduct(vector, record.Vector)
			if similarity < minSimilarity {
				continue
			}

			prior, exists := best[record.EntityID]
			if !exists || similarity > prior.Score {
				best[record.EntityID] = &core.SimilarityMatch{
					EntityID:    record.EntityID,
					ContentType: record.ContentType,
					Score:       similarity,
				}
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	results := make([]*core.SimilarityMatch, 0, len(best))
	for _, match := range best {
		results = append(results, match)
	}

	// Sort by similarity descending, entity ID ascending for equal scores
	slices.SortFunc(results, func(a, b *core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return strings.Compare(a.EntityID, b.EntityID)
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
