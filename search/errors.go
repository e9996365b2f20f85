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


package search

import "errors"

var (
	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrCallRepositoryRequired is returned when a call repository is not provided.
	ErrCallRepositoryRequired = errors.New("call repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyQuery is returned when a search request carries neither
	// query text nor a precomputed query vector.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNotEmbedded is returned when a similar-to lookup names an
	// entity that has no current embedding.
	ErrNotEmbedded = errors.New("entity has no current embedding")
)
