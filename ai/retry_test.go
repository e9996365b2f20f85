package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first attempt", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failure", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("attempt %d: %w", calls, ErrProviderUnavailable)
			}
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempt ceiling", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return ErrProviderUnavailable
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable short-circuits", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return ErrInvalidDimension
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidDimension)
		assert.Equal(t, 1, calls)
	})

	t.Run("configuration error short-circuits", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return ErrMissingAPIKey
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Equal(t, 1, calls)
	})

	t.Run("rate limit retried", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls == 1 {
				return ErrRateLimited
			}
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := RetryWithBackoff(cctx, func() error {
			calls++
			cancel()
			return ErrProviderUnavailable
		}, 3, 50*time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("already cancelled context never calls", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		calls := 0
		err := RetryWithBackoff(cctx, func() error {
			calls++
			return nil
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, calls)
	})
}

func TestRetryWithBackoffWrappedErrors(t *testing.T) {
	// Errors wrapped with %w keep their retry class.
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return fmt.Errorf("embed batch: %w", errors.Join(ErrRateLimited, errors.New("429")))
	}, 2, time.Millisecond)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2, calls)
}
