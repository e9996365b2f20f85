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


// Package ai defines the embedding provider abstraction.
//
// The Embedder interface decouples the retrieval pipeline from any
// concrete provider. The openai subpackage implements it against
// OpenAI-compatible APIs; the mock subpackage provides deterministic
// test doubles. The package also owns the provider error taxonomy
// (configuration, rate-limit, transient, invalid-response) and the
// retry-with-backoff helper that consumes it.
package ai
