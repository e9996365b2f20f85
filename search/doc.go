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


// Package search provides hybrid semantic retrieval over call records.
//
// The Searcher type implements a multi-stage search algorithm that combines:
//   - Vector similarity search over stored embeddings
//   - Verbatim keyword matching with stop-word filtering
//   - A metadata join against the call record's current state
//
// Keyword matches boost the similarity score of vector hits; a keyword-leg
// failure degrades gracefully to unboosted vector results. Structured
// filters are applied as a post-pass after the metadata join.
package search
