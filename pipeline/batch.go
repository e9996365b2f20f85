package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/signalpath/recall/core"
)

// BatchRunner drives sequential, rate-paced batch embedding runs for a
// single owner. Items are processed strictly in order with a pacing
// delay between consecutive items; one item's failure never aborts the
// rest of the batch.
type BatchRunner struct {
	generator    *Generator
	maxBatchSize int
	pacingDelay  time.Duration
	tracker      *ProgressTracker
	logger       *slog.Logger
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner) error

// WithBatchLogger sets a custom logger.
// Default is slog.Default().
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(r *BatchRunner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMaxBatchSize overrides the batch size ceiling.
// Default is DefaultMaxBatchSize.
func WithMaxBatchSize(size int) BatchOption {
	return func(r *BatchRunner) error {
		if size > 0 {
			r.maxBatchSize = size
		}
		return nil
	}
}

// WithPacingDelay overrides the pause between consecutive items.
// Default is DefaultPacingDelay. Zero disables pacing.
func WithPacingDelay(delay time.Duration) BatchOption {
	return func(r *BatchRunner) error {
		if delay >= 0 {
			r.pacingDelay = delay
		}
		return nil
	}
}

// WithProgressTracker reports per-item progress during a run.
func WithProgressTracker(tracker *ProgressTracker) BatchOption {
	return func(r *BatchRunner) error {
		r.tracker = tracker
		return nil
	}
}

// NewBatchRunner creates a new batch runner over the given generator.
func NewBatchRunner(generator *Generator, opts ...BatchOption) (*BatchRunner, error) {
	if generator == nil {
		return nil, ErrEmbedderRequired
	}

	r := &BatchRunner{
		generator:    generator,
		maxBatchSize: DefaultMaxBatchSize,
		pacingDelay:  DefaultPacingDelay,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Run processes a batch for one owner. Oversized batches are rejected
// at the boundary before any item is processed. A cancelled context
// stops the run between items and returns the context error; item
// failures are isolated into per-item results instead.
func (r *BatchRunner) Run(ctx context.Context, ownerID string, items []core.BatchItem) (*core.BatchResult, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, err
	}
	if len(items) > r.maxBatchSize {
		return nil, ErrBatchTooLarge
	}

	result := &core.BatchResult{
		Items:   make([]core.BatchItemResult, 0, len(items)),
		Summary: core.BatchSummary{Total: len(items)},
	}

	if r.tracker != nil {
		r.tracker.Start()
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		itemResult := r.runItem(ctx, ownerID, item)
		result.Items = append(result.Items, itemResult)

		if itemResult.Err != nil {
			result.Summary.Failed++
			r.logger.Warn("batch item failed",
				"owner", ownerID, "entity", item.EntityID, "err", itemResult.Err)
		} else {
			result.Summary.Success++
			if itemResult.Cached {
				result.Summary.Cached++
			}
			result.TotalCost += itemResult.Cost
		}

		if r.tracker != nil {
			r.tracker.Increment(1)
		}

		// Pace between items, never after the last one
		if i < len(items)-1 && r.pacingDelay > 0 {
			if err := sleepContext(ctx, r.pacingDelay); err != nil {
				return nil, err
			}
		}
	}

	if r.tracker != nil {
		r.tracker.Finish()
	}

	r.logger.Info("batch run finished",
		"owner", ownerID,
		"total", result.Summary.Total,
		"success", result.Summary.Success,
		"failed", result.Summary.Failed,
		"cached", result.Summary.Cached,
		"cost", result.TotalCost)

	return result, nil
}

// runItem generates one item, capturing the error instead of returning it.
func (r *BatchRunner) runItem(ctx context.Context, ownerID string, item core.BatchItem) core.BatchItemResult {
	generated, err := r.generator.Generate(ctx, GenerateRequest{
		OwnerID:     ownerID,
		EntityID:    item.EntityID,
		Text:        item.Text,
		ContentType: item.ContentType,
		Operation:   core.OperationBatch,
	})
	if err != nil {
		return core.BatchItemResult{EntityID: item.EntityID, Err: err}
	}
	return core.BatchItemResult{
		EntityID:   item.EntityID,
		Cached:     generated.Cached,
		TokenCount: generated.TokenCount,
		Cost:       generated.Cost,
	}
}

// sleepContext pauses for the duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
