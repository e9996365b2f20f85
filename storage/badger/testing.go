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


package badger

import "github.com/signalpath/recall/storage"

// NewMemoryRepositories creates in-memory embedding, call, and usage
// repositories for testing. Caller must close the backend when done.
func NewMemoryRepositories() (storage.EmbeddingRepository, storage.CallRepository, storage.UsageRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return NewEmbeddingRepository(backend),
		NewCallRepository(backend),
		NewUsageRepository(backend),
		backend,
		nil
}
