// Copyright 2025 Signalpath Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateIdentifier validates an owner or entity identifier.
// Identifiers must be non-empty and must not contain ':', which is the
// storage key delimiter.
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if strings.ContainsRune(id, ':') {
		return fmt.Errorf("%w: %q contains reserved character ':'", ErrInvalidIdentifier, id)
	}
	return nil
}

// ValidateContentType validates that a ContentType has a valid value.
func ValidateContentType(ct ContentType) error {
	switch ct {
	case ContentTypeTranscript, ContentTypeSummary, ContentTypeCombined:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidContentType, ct)
	}
}

// ValidateOperationType validates that an OperationType has a valid value.
func ValidateOperationType(op OperationType) error {
	switch op {
	case OperationGenerate, OperationBatch, OperationRegenerate:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidOperationType, op)
	}
}

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - EntityID and OwnerID must be valid identifiers
//   - ContentType must be valid
//   - Vector must be non-empty, and its length must exactly match
//     wantDimensions (when wantDimensions > 0)
//   - ContentHash must not be empty
//   - TokenCount must be >= 0
//
// NOT validated:
//   - Timestamps (populated by the storage layer)
func ValidateEmbeddingRecord(record *EmbeddingRecord, wantDimensions int) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbeddingRecord)
	}

	if err := ValidateIdentifier(record.EntityID); err != nil {
		return fmt.Errorf("%w: entity id: %w", ErrInvalidEmbeddingRecord, err)
	}

	if err := ValidateIdentifier(record.OwnerID); err != nil {
		return fmt.Errorf("%w: owner id: %w", ErrInvalidEmbeddingRecord, err)
	}

	if err := ValidateContentType(record.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, err)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: empty vector", ErrInvalidEmbeddingRecord)
	}

	if wantDimensions > 0 && len(record.Vector) != wantDimensions {
		return fmt.Errorf("%w: %w: got %d, want %d",
			ErrInvalidEmbeddingRecord, ErrDimensionMismatch, len(record.Vector), wantDimensions)
	}

	if record.ContentHash == "" {
		return fmt.Errorf("%w: content hash is empty", ErrInvalidEmbeddingRecord)
	}

	if record.TokenCount < 0 {
		return fmt.Errorf("%w: negative token count %d", ErrInvalidEmbeddingRecord, record.TokenCount)
	}

	return nil
}

// ValidateCallRecord validates a CallRecord according to domain rules.
//
// Validation rules:
//   - ID and OwnerID must be valid identifiers
//   - At least one of Transcript or Summary must be present
//   - OccurredAt must not be in the future
func ValidateCallRecord(record *CallRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidCallRecord)
	}

	if err := ValidateIdentifier(record.ID); err != nil {
		return fmt.Errorf("%w: id: %w", ErrInvalidCallRecord, err)
	}

	if err := ValidateIdentifier(record.OwnerID); err != nil {
		return fmt.Errorf("%w: owner id: %w", ErrInvalidCallRecord, err)
	}

	if strings.TrimSpace(record.Transcript) == "" && strings.TrimSpace(record.Summary) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCallRecord, ErrEmptyContent)
	}

	if !IsValidTimestamp(record.OccurredAt) {
		return fmt.Errorf("%w: %w", ErrInvalidCallRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateUsageRecord validates a UsageRecord according to domain rules.
func ValidateUsageRecord(record *UsageRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidUsageRecord)
	}

	if err := ValidateIdentifier(record.OwnerID); err != nil {
		return fmt.Errorf("%w: owner id: %w", ErrInvalidUsageRecord, err)
	}

	if err := ValidateOperationType(record.Operation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsageRecord, err)
	}

	if record.TokenCount < 0 {
		return fmt.Errorf("%w: negative token count %d", ErrInvalidUsageRecord, record.TokenCount)
	}

	if record.CostAmount < 0 {
		return fmt.Errorf("%w: negative cost %f", ErrInvalidUsageRecord, record.CostAmount)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// The zero time is valid and means "unknown".
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
