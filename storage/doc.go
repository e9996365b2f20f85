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


// Package storage provides the storage abstraction layer for recall.
//
// This package defines repository interfaces that decouple storage
// implementation from the retrieval pipeline, and the binary
// serialization used for stored records. The badger subpackage is the
// durable implementation; tests use its in-memory mode.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return these interfaces,
// not concrete types, so consumers never couple to BadgerDB specifics and
// alternative backends (a relational+pgvector store, in-memory doubles)
// can be swapped in without modification.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
