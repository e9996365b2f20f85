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

import "errors"

// Domain validation errors
var (
	// ErrEmptyContent indicates content is empty or blank after normalization.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidEmbeddingRecord indicates an EmbeddingRecord failed validation.
	ErrInvalidEmbeddingRecord = errors.New("invalid embedding record")

	// ErrInvalidCallRecord indicates a CallRecord failed validation.
	ErrInvalidCallRecord = errors.New("invalid call record")

	// ErrInvalidUsageRecord indicates a UsageRecord failed validation.
	ErrInvalidUsageRecord = errors.New("invalid usage record")

	// ErrDimensionMismatch indicates a vector length does not match the
	// configured model dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidContentType indicates an invalid ContentType value.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidOperationType indicates an invalid OperationType value.
	ErrInvalidOperationType = errors.New("invalid operation type")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidIdentifier indicates an owner or entity identifier is empty
	// or contains reserved characters.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)
