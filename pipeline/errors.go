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


package pipeline

import "errors"

var (
	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrCallRepositoryRequired is returned when a call repository is not provided.
	ErrCallRepositoryRequired = errors.New("call repository required")

	// ErrUsageRepositoryRequired is returned when a usage repository is not provided.
	ErrUsageRepositoryRequired = errors.New("usage repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrBatchTooLarge is returned at the boundary when a batch exceeds
	// the configured maximum size. Nothing in the batch is processed.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)
