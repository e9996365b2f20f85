package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyProviderError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, ClassifyProviderError(nil))
	})

	t.Run("rate limit by status code", func(t *testing.T) {
		err := ClassifyProviderError(errors.New("API returned unexpected status code: 429"))
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.True(t, IsRetryable(err))
		assert.True(t, IsRateLimited(err))
	})

	t.Run("rate limit by message", func(t *testing.T) {
		err := ClassifyProviderError(errors.New("Rate limit reached for requests"))
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("server error is transient", func(t *testing.T) {
		err := ClassifyProviderError(errors.New("API returned unexpected status code: 503"))
		assert.ErrorIs(t, err, ErrProviderUnavailable)
		assert.True(t, IsRetryable(err))
		assert.False(t, IsRateLimited(err))
	})

	t.Run("connection failure is transient", func(t *testing.T) {
		err := ClassifyProviderError(errors.New("dial tcp: connection refused"))
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("deadline exceeded is transient", func(t *testing.T) {
		err := ClassifyProviderError(context.DeadlineExceeded)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		err := ClassifyProviderError(context.Canceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, IsRetryable(err))
	})

	t.Run("unknown error is non-retryable", func(t *testing.T) {
		orig := errors.New("model not found")
		err := ClassifyProviderError(orig)
		assert.Equal(t, orig, err)
		assert.False(t, IsRetryable(err))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimited))
	assert.True(t, IsRetryable(ErrProviderUnavailable))
	assert.False(t, IsRetryable(ErrMissingAPIKey))
	assert.False(t, IsRetryable(ErrInvalidDimension))
	assert.False(t, IsRetryable(ErrEmptyInput))
	assert.False(t, IsRetryable(ErrInvalidResponse))
	assert.False(t, IsRetryable(nil))
}
