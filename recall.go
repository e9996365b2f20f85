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


// Package recall is a semantic retrieval core for call transcripts:
// content-hash-gated embedding generation, persisted vector storage,
// hybrid similarity search, and cost accounting, all behind one Store.
package recall

import (
	"context"
	"log/slog"
	"time"

	"github.com/signalpath/recall/ai"
	"github.com/signalpath/recall/ai/openai"
	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/pipeline"
	"github.com/signalpath/recall/search"
	"github.com/signalpath/recall/storage"
	"github.com/signalpath/recall/storage/badger"
)

// Store wires the badger backend, repositories, embedding provider, and
// pipeline components into one handle.
type Store struct {
	backend    *badger.Backend
	embeddings storage.EmbeddingRepository
	calls      storage.CallRepository
	usage      storage.UsageRepository
	embedder   ai.Embedder
	generator  *pipeline.Generator
	searcher   *search.Searcher
	coverage   *pipeline.CoverageReporter
	logger     *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	aiConfig    *ai.Config
	embedder    ai.Embedder
	inMemory    bool
	maxCacheAge time.Duration
	costRate    float64
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) StoreOption {
	return func(o *storeOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects an embedder directly, bypassing provider
// construction. Intended for tests and custom providers.
func WithEmbedder(embedder ai.Embedder) StoreOption {
	return func(o *storeOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the backend in memory instead of on disk.
func WithInMemory() StoreOption {
	return func(o *storeOptions) {
		o.inMemory = true
	}
}

// WithMaxCacheAge overrides how long unchanged embeddings stay current.
func WithMaxCacheAge(age time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.maxCacheAge = age
	}
}

// WithCostRate overrides the per-thousand-token ledger rate.
func WithCostRate(rate float64) StoreOption {
	return func(o *storeOptions) {
		o.costRate = rate
	}
}

// NewStore opens a store at filePath.
func NewStore(filePath string, opts ...StoreOption) (*Store, error) {
	// Apply options
	defaults := pipeline.DefaultConfig()
	options := &storeOptions{
		aiConfig:    ai.DefaultConfig(),
		maxCacheAge: defaults.MaxCacheAge,
		costRate:    defaults.CostPerThousandTokens,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	embeddings := badger.NewEmbeddingRepository(backend)
	calls := badger.NewCallRepository(backend)
	usage := badger.NewUsageRepository(backend)

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	generator, err := pipeline.NewGenerator(embeddings, usage, embedder,
		pipeline.WithMaxCacheAge(options.maxCacheAge),
		pipeline.WithCostRate(options.costRate))
	if err != nil {
		backend.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(embeddings, calls, embedder)
	if err != nil {
		backend.Close()
		return nil, err
	}

	coverage, err := pipeline.NewCoverageReporter(embeddings, calls)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Store{
		backend:    backend,
		embeddings: embeddings,
		calls:      calls,
		usage:      usage,
		embedder:   embedder,
		generator:  generator,
		searcher:   searcher,
		coverage:   coverage,
		logger:     slog.Default(),
	}, nil
}

// Close releases all store resources.
func (s *Store) Close() error {
	if err := s.usage.Close(); err != nil {
		s.logger.Error("error closing usage repository", "err", err)
		return err
	}
	if err := s.calls.Close(); err != nil {
		s.logger.Error("error closing call repository", "err", err)
		return err
	}
	if err := s.embeddings.Close(); err != nil {
		s.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// EmbeddingRepository exposes the embedding store.
func (s *Store) EmbeddingRepository() storage.EmbeddingRepository {
	return s.embeddings
}

// CallRepository exposes the call store.
func (s *Store) CallRepository() storage.CallRepository {
	return s.calls
}

// UsageRepository exposes the usage ledger.
func (s *Store) UsageRepository() storage.UsageRepository {
	return s.usage
}

// PutCalls stores call records.
func (s *Store) PutCalls(ctx context.Context, calls ...*core.CallRecord) ([]*core.CallRecord, error) {
	return s.calls.PutCalls(ctx, calls...)
}

// GenerateEmbedding embeds one call's content, reusing the stored
// vector when the content is unchanged.
func (s *Store) GenerateEmbedding(ctx context.Context, req pipeline.GenerateRequest) (*pipeline.GenerateResult, error) {
	return s.generator.Generate(ctx, req)
}

// NewBatchRunner creates a batch runner over the store's generator.
func (s *Store) NewBatchRunner(opts ...pipeline.BatchOption) (*pipeline.BatchRunner, error) {
	return pipeline.NewBatchRunner(s.generator, opts...)
}

// Search runs a hybrid search over the owner's embedded calls.
func (s *Store) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return s.searcher.Search(ctx, req)
}

// FindSimilarTo returns calls similar to an already-embedded call.
func (s *Store) FindSimilarTo(ctx context.Context, ownerID, entityID string, limit int) ([]*core.SearchResult, error) {
	return s.searcher.FindSimilarTo(ctx, ownerID, entityID, limit)
}

// Coverage reports embedding coverage for one owner.
func (s *Store) Coverage(ctx context.Context, ownerID string) (*core.CoverageReport, error) {
	return s.coverage.Report(ctx, ownerID)
}

// SweepOlderThan removes embeddings generated before the cutoff. An
// empty ownerID sweeps all owners.
func (s *Store) SweepOlderThan(ctx context.Context, cutoff time.Time, ownerID string) (int, error) {
	return s.embeddings.DeleteOlderThan(ctx, cutoff, ownerID)
}

// TotalCost returns the owner's accumulated embedding spend.
func (s *Store) TotalCost(ctx context.Context, ownerID string) (float64, error) {
	return s.usage.TotalCost(ctx, ownerID)
}
