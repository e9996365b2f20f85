package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEmbeddingRecord() *EmbeddingRecord {
	return &EmbeddingRecord{
		EntityID:     "call-1",
		OwnerID:      "acct-1",
		Vector:       []float32{0.1, 0.2, 0.3},
		ModelName:    "text-embedding-3-small",
		ModelVersion: 1,
		ContentType:  ContentTypeTranscript,
		ContentHash:  "abc123",
		TokenCount:   42,
		GeneratedAt:  time.Now().UTC(),
	}
}

func TestValidateEmbeddingRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		require.NoError(t, ValidateEmbeddingRecord(validEmbeddingRecord(), 3))
	})

	t.Run("nil record", func(t *testing.T) {
		err := ValidateEmbeddingRecord(nil, 3)
		assert.ErrorIs(t, err, ErrInvalidEmbeddingRecord)
	})

	t.Run("empty entity id", func(t *testing.T) {
		rec := validEmbeddingRecord()
		rec.EntityID = ""
		err := ValidateEmbeddingRecord(rec, 3)
		assert.ErrorIs(t, err, ErrInvalidEmbeddingRecord)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("entity id with reserved character", func(t *testing.T) {
		rec := validEmbeddingRecord()
		rec.EntityID = "call:1"
		err := ValidateEmbeddingRecord(rec, 3)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("empty owner id", func(t *testing.T) {
		rec := validEmbeddingRecord()
		rec.OwnerID = ""
		err := ValidateEmbeddingRecord(rec, 3)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("invalid content type", func(t *testing.T) {
		rec := validEmbeddingRecord()
		rec.ContentType = ContentType(99)
		err := ValidateEmbeddingRecord(rec, 3)
		assert.ErrorIs(t, err, ErrInvalidContentType)
	})

	t.Run("wrong dimension rejected", func(t *testing.T) {
		rec := validEmbeddingRecord()
		err := ValidateEmbeddingRecord(rec, 1536)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("dimension check skipped when unconfigured", func(t *testing.T) {
		rec := validEmbeddingRecord()
		require.NoError(t, ValidateEmbeddingRecord(rec, 0))
	})

	t.Run("empty content hash", func(t *testing.T) {
		rec := validEmbeddingRecord()
		rec.ContentHash = ""
		err := ValidateEmbeddingRecord(rec, 3)
		assert.ErrorIs(t, err, ErrInvalidEmbeddingRecord)
	})

	t.Run("negative token count", func(t *testing.T) {
		rec := validEmbeddingRecord()
		rec.TokenCount = -1
		err := ValidateEmbeddingRecord(rec, 3)
		assert.ErrorIs(t, err, ErrInvalidEmbeddingRecord)
	})
}

func TestValidateCallRecord(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid record", func(t *testing.T) {
		err := ValidateCallRecord(&CallRecord{
			ID:         "call-1",
			OwnerID:    "acct-1",
			Transcript: "Patient asked about billing.",
			OccurredAt: now,
		})
		require.NoError(t, err)
	})

	t.Run("summary only is valid", func(t *testing.T) {
		err := ValidateCallRecord(&CallRecord{
			ID:         "call-2",
			OwnerID:    "acct-1",
			Summary:    "Billing question, resolved.",
			OccurredAt: now,
		})
		require.NoError(t, err)
	})

	t.Run("nil record", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCallRecord(nil), ErrInvalidCallRecord)
	})

	t.Run("blank content", func(t *testing.T) {
		err := ValidateCallRecord(&CallRecord{
			ID:         "call-3",
			OwnerID:    "acct-1",
			Transcript: "   \n\t ",
			OccurredAt: now,
		})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("future timestamp", func(t *testing.T) {
		err := ValidateCallRecord(&CallRecord{
			ID:         "call-4",
			OwnerID:    "acct-1",
			Transcript: "hello",
			OccurredAt: now.Add(time.Hour),
		})
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})
}

func TestValidateUsageRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		err := ValidateUsageRecord(&UsageRecord{
			OwnerID:    "acct-1",
			EntityID:   "call-1",
			TokenCount: 100,
			ModelName:  "text-embedding-3-small",
			CostAmount: 0.002,
			Operation:  OperationGenerate,
		})
		require.NoError(t, err)
	})

	t.Run("invalid operation", func(t *testing.T) {
		err := ValidateUsageRecord(&UsageRecord{
			OwnerID:   "acct-1",
			Operation: OperationType(0),
		})
		assert.ErrorIs(t, err, ErrInvalidOperationType)
	})

	t.Run("negative cost", func(t *testing.T) {
		err := ValidateUsageRecord(&UsageRecord{
			OwnerID:    "acct-1",
			Operation:  OperationBatch,
			CostAmount: -0.5,
		})
		assert.ErrorIs(t, err, ErrInvalidUsageRecord)
	})
}

func TestContentTypeString(t *testing.T) {
	assert.Equal(t, "transcript", ContentTypeTranscript.String())
	assert.Equal(t, "summary", ContentTypeSummary.String())
	assert.Equal(t, "combined", ContentTypeCombined.String())
	assert.Equal(t, "unknown", ContentType(42).String())
}

func TestOperationTypeString(t *testing.T) {
	assert.Equal(t, "generate", OperationGenerate.String())
	assert.Equal(t, "batch", OperationBatch.String())
	assert.Equal(t, "regenerate", OperationRegenerate.String())
	assert.Equal(t, "unknown", OperationType(42).String())
}
