package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpath/recall/core"
)

func TestBackfillRun_MultipleOwners(t *testing.T) {
	runner, _ := newTestBatchRunner(t)
	backfill, err := NewBackfillRunner(runner, WithPoolSize(4))
	require.NoError(t, err)
	defer backfill.Release()

	result, err := backfill.Run(context.Background(), []OwnerBatch{
		{OwnerID: "owner-a", Items: batchItems(3)},
		{OwnerID: "owner-b", Items: batchItems(2)},
		{OwnerID: "owner-c", Items: batchItems(1)},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Results, 3)
	assert.Equal(t, 3, result.Results["owner-a"].Summary.Success)
	assert.Equal(t, 2, result.Results["owner-b"].Summary.Success)
	assert.Equal(t, 1, result.Results["owner-c"].Summary.Success)
}

func TestBackfillRun_OwnerFailureIsolated(t *testing.T) {
	runner, _ := newTestBatchRunner(t, WithMaxBatchSize(2))
	backfill, err := NewBackfillRunner(runner)
	require.NoError(t, err)
	defer backfill.Release()

	result, err := backfill.Run(context.Background(), []OwnerBatch{
		{OwnerID: "owner-a", Items: batchItems(2)},
		{OwnerID: "owner-b", Items: batchItems(3)}, // over the per-run ceiling
	})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, 2, result.Results["owner-a"].Summary.Success)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors["owner-b"], ErrBatchTooLarge)
}

func TestBackfillRun_Empty(t *testing.T) {
	runner, _ := newTestBatchRunner(t)
	backfill, err := NewBackfillRunner(runner)
	require.NoError(t, err)
	defer backfill.Release()

	result, err := backfill.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Errors)
}

func TestBackfillRun_SequentialWithinOwner(t *testing.T) {
	runner, f := newTestBatchRunner(t)
	backfill, err := NewBackfillRunner(runner, WithPoolSize(2))
	require.NoError(t, err)
	defer backfill.Release()

	items := []core.BatchItem{
		{EntityID: "call-1", Text: "first call", ContentType: core.ContentTypeTranscript},
		{EntityID: "call-2", Text: "second call", ContentType: core.ContentTypeTranscript},
	}
	result, err := backfill.Run(context.Background(), []OwnerBatch{{OwnerID: "owner-a", Items: items}})
	require.NoError(t, err)

	// Items land in submission order within the owner's result
	require.Len(t, result.Results["owner-a"].Items, 2)
	assert.Equal(t, "call-1", result.Results["owner-a"].Items[0].EntityID)
	assert.Equal(t, "call-2", result.Results["owner-a"].Items[1].EntityID)
	assert.Equal(t, 2, f.embedder.CallCount())
}
