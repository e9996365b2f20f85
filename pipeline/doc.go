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


// Package pipeline drives embedding generation: single-item generation
// gated on a content fingerprint, cost ledger accounting, sequential
// rate-limited batch runs, a cross-owner backfill runner, and coverage
// reporting.
//
// Generation is idempotent on unchanged content. The normalized text is
// fingerprinted and compared against the stored record's hash; a match
// under the same model name and version, within the cache age window,
// skips the provider call entirely. Paid provider calls append to an
// append-only usage ledger; a ledger failure is logged and never fails
// the generation that triggered it.
package pipeline
