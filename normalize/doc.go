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


// Package normalize prepares raw call content for embedding.
//
// Normalization strips transcript timestamp markers and speaker-label
// prefixes, collapses whitespace, and truncates text that exceeds the
// embedding token budget. The Fingerprint function produces the
// deterministic content hash used as the cache-validity signal for
// stored embeddings: same normalized text, same hash.
package normalize
