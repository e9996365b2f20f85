package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpath/recall/core"
	badgerstore "github.com/signalpath/recall/storage/badger"
)

func TestCoverage_Report(t *testing.T) {
	embeddings, calls, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	for _, id := range []string{"call-1", "call-2", "call-3", "call-4"} {
		_, err := calls.PutCalls(ctx, &core.CallRecord{
			ID:         id,
			OwnerID:    "owner-a",
			Transcript: "content of " + id,
			OccurredAt: time.Now().UTC().Add(-time.Hour),
		})
		require.NoError(t, err)
	}
	for _, id := range []string{"call-1", "call-3"} {
		_, err := embeddings.Upsert(ctx, &core.EmbeddingRecord{
			EntityID:     id,
			OwnerID:      "owner-a",
			Vector:       []float32{1.0},
			ModelName:    "test-model",
			ModelVersion: 1,
			ContentType:  core.ContentTypeTranscript,
			ContentHash:  "hash-" + id,
			GeneratedAt:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	reporter, err := NewCoverageReporter(embeddings, calls)
	require.NoError(t, err)

	report, err := reporter.Report(ctx, "owner-a")
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalEntities)
	assert.Equal(t, 2, report.EmbeddedEntities)
	assert.InDelta(t, 50.0, report.CoveragePercent, 0.0001)
	assert.Equal(t, []string{"call-2", "call-4"}, report.MissingIDs)
}

func TestCoverage_EmptyCorpusIsFullyCovered(t *testing.T) {
	embeddings, calls, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	reporter, err := NewCoverageReporter(embeddings, calls)
	require.NoError(t, err)

	report, err := reporter.Report(context.Background(), "owner-a")
	require.NoError(t, err)

	assert.Zero(t, report.TotalEntities)
	assert.InDelta(t, 100.0, report.CoveragePercent, 0.0001)
	assert.Empty(t, report.MissingIDs)
}

func TestCoverage_SummaryEmbeddingsDoNotCount(t *testing.T) {
	embeddings, calls, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	_, err = calls.PutCalls(ctx, &core.CallRecord{
		ID:         "call-1",
		OwnerID:    "owner-a",
		Transcript: "content",
		OccurredAt: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = embeddings.Upsert(ctx, &core.EmbeddingRecord{
		EntityID:     "call-1",
		OwnerID:      "owner-a",
		Vector:       []float32{1.0},
		ModelName:    "test-model",
		ModelVersion: 1,
		ContentType:  core.ContentTypeSummary,
		ContentHash:  "hash-1",
		GeneratedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	reporter, err := NewCoverageReporter(embeddings, calls)
	require.NoError(t, err)

	report, err := reporter.Report(ctx, "owner-a")
	require.NoError(t, err)
	assert.Zero(t, report.EmbeddedEntities)
	assert.Equal(t, []string{"call-1"}, report.MissingIDs)
}
