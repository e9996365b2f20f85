package pipeline

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpath/recall/core"
)

func newTestBatchRunner(t *testing.T, opts ...BatchOption) (*BatchRunner, *generatorFixture) {
	t.Helper()
	f := newGeneratorFixture(t)
	opts = append([]BatchOption{WithPacingDelay(0)}, opts...)
	runner, err := NewBatchRunner(f.generator, opts...)
	require.NoError(t, err)
	return runner, f
}

func batchItems(n int) []core.BatchItem {
	items := make([]core.BatchItem, n)
	for i := range items {
		items[i] = core.BatchItem{
			EntityID:    string(rune('a' + i%26)),
			Text:        "call content number " + string(rune('a'+i%26)),
			ContentType: core.ContentTypeTranscript,
		}
	}
	return items
}

func TestBatchRun_AllSucceed(t *testing.T) {
	runner, _ := newTestBatchRunner(t)

	result, err := runner.Run(context.Background(), "owner-a", batchItems(5))
	require.NoError(t, err)

	assert.Equal(t, 5, result.Summary.Total)
	assert.Equal(t, 5, result.Summary.Success)
	assert.Zero(t, result.Summary.Failed)
	assert.Zero(t, result.Summary.Cached)
	assert.Greater(t, result.TotalCost, 0.0)
	assert.Len(t, result.Items, 5)
}

func TestBatchRun_PerItemIsolation(t *testing.T) {
	runner, f := newTestBatchRunner(t)

	items := batchItems(9)
	// Empty content fails at normalization; the rest must still process
	items[4].Text = "   "

	result, err := runner.Run(context.Background(), "owner-a", items)
	require.NoError(t, err)

	assert.Equal(t, 9, result.Summary.Total)
	assert.Equal(t, 8, result.Summary.Success)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, result.Summary.Total, result.Summary.Success+result.Summary.Failed)

	assert.ErrorIs(t, result.Items[4].Err, core.ErrEmptyContent)
	for i, item := range result.Items {
		if i == 4 {
			continue
		}
		assert.NoError(t, item.Err)
	}

	// The failed item never reached the provider
	assert.Equal(t, 8, f.embedder.CallCount())
}

func TestBatchRun_CachedItems(t *testing.T) {
	runner, _ := newTestBatchRunner(t)
	ctx := context.Background()
	items := batchItems(4)

	first, err := runner.Run(ctx, "owner-a", items)
	require.NoError(t, err)
	assert.Zero(t, first.Summary.Cached)

	second, err := runner.Run(ctx, "owner-a", items)
	require.NoError(t, err)
	assert.Equal(t, 4, second.Summary.Cached)
	assert.Equal(t, 4, second.Summary.Success)
	assert.LessOrEqual(t, second.Summary.Cached, second.Summary.Success)
	assert.Zero(t, second.TotalCost)
}

func TestBatchRun_TooLarge(t *testing.T) {
	runner, f := newTestBatchRunner(t, WithMaxBatchSize(3))

	_, err := runner.Run(context.Background(), "owner-a", batchItems(4))
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	// Rejected at the boundary: nothing was processed
	assert.Zero(t, f.embedder.CallCount())
}

func TestBatchRun_EmptyBatch(t *testing.T) {
	runner, _ := newTestBatchRunner(t)

	result, err := runner.Run(context.Background(), "owner-a", nil)
	require.NoError(t, err)
	assert.Zero(t, result.Summary.Total)
	assert.Empty(t, result.Items)
}

func TestBatchRun_ContextCancelled(t *testing.T) {
	runner, _ := newTestBatchRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, "owner-a", batchItems(3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchRun_Pacing(t *testing.T) {
	runner, _ := newTestBatchRunner(t, WithPacingDelay(20*time.Millisecond))

	started := time.Now()
	_, err := runner.Run(context.Background(), "owner-a", batchItems(3))
	require.NoError(t, err)

	// Two gaps between three items
	assert.GreaterOrEqual(t, time.Since(started), 40*time.Millisecond)
}

func TestBatchRun_ProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 1)
	runner, _ := newTestBatchRunner(t, WithProgressTracker(tracker))

	_, err := runner.Run(context.Background(), "owner-a", batchItems(3))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3/3")
}
