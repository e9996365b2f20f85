package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/signalpath/recall/core"
)

// OwnerBatch pairs an owner with the items to embed for them.
type OwnerBatch struct {
	OwnerID string
	Items   []core.BatchItem
}

// BackfillResult collects the per-owner outcomes of a backfill run.
type BackfillResult struct {
	Results map[string]*core.BatchResult
	Errors  map[string]error
}

// BackfillRunner processes batches for independent owners concurrently
// on a worker pool. Each owner's batch still runs strictly sequentially
// through the underlying BatchRunner; only the owners are parallel.
type BackfillRunner struct {
	runner *BatchRunner
	pool   *ants.Pool
	logger *slog.Logger
}

// BackfillOption configures a BackfillRunner.
type BackfillOption func(*BackfillRunner) error

// WithPoolSize sets the worker pool size for concurrent owners.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BackfillOption {
	return func(r *BackfillRunner) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithBackfillLogger sets a custom logger.
// Default is slog.Default().
func WithBackfillLogger(logger *slog.Logger) BackfillOption {
	return func(r *BackfillRunner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewBackfillRunner creates a new backfill runner over a batch runner.
func NewBackfillRunner(runner *BatchRunner, opts ...BackfillOption) (*BackfillRunner, error) {
	if runner == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &BackfillRunner{
		runner: runner,
		pool:   pool,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}

	return r, nil
}

// Release shuts down the worker pool.
func (r *BackfillRunner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Run submits each owner's batch to the pool and waits for all of them.
// One owner's failure never affects another owner's batch; failures are
// collected per owner in the result.
func (r *BackfillRunner) Run(ctx context.Context, batches []OwnerBatch) (*BackfillResult, error) {
	result := &BackfillResult{
		Results: make(map[string]*core.BatchResult, len(batches)),
		Errors:  make(map[string]error),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, batch := range batches {
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()

			batchResult, runErr := r.runner.Run(ctx, batch.OwnerID, batch.Items)

			mu.Lock()
			defer mu.Unlock()
			if runErr != nil {
				result.Errors[batch.OwnerID] = runErr
				return
			}
			result.Results[batch.OwnerID] = batchResult
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	wg.Wait()

	r.logger.Info("backfill run finished",
		"owners", len(batches), "succeeded", len(result.Results), "failed", len(result.Errors))

	return result, nil
}
