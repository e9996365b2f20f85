package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/signalpath/recall/ai"
	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/storage"
)

const (
	// DefaultLimit is the result count when a request leaves Limit unset.
	DefaultLimit = 20

	// MaxLimit is the result count ceiling; larger requests are clamped.
	MaxLimit = 100

	// DefaultThreshold is the minimum similarity when a request leaves
	// Threshold unset.
	DefaultThreshold = 0.7

	// defaultQueryCacheSize bounds the query-vector LRU cache.
	defaultQueryCacheSize = 512
)

// Request describes one search. Either Query or QueryVector must be set;
// when both are set the vector wins and Query only feeds the keyword leg.
type Request struct {
	OwnerID     string
	Query       string
	QueryVector []float32
	Limit       int
	Threshold   float32
	Filters     core.SearchFilters
}

// Response carries the ranked results of one search.
type Response struct {
	Results    []*core.SearchResult
	SearchTime time.Duration

	// KeywordDegraded is set when the keyword leg failed and results
	// are unboosted vector matches only.
	KeywordDegraded bool
}

// Searcher provides hybrid semantic search over embedded call records.
type Searcher struct {
	embeddings storage.EmbeddingRepository
	calls      storage.CallRepository
	embedder   ai.Embedder
	matcher    KeywordMatcher
	queryCache *lru.Cache[string, []float32]
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithKeywordMatcher replaces the default text matcher.
func WithKeywordMatcher(matcher KeywordMatcher) Option {
	return func(s *Searcher) error {
		s.matcher = matcher
		return nil
	}
}

// WithQueryCacheSize sets the query-vector cache capacity.
func WithQueryCacheSize(size int) Option {
	return func(s *Searcher) error {
		cache, err := lru.New[string, []float32](size)
		if err != nil {
			return err
		}
		s.queryCache = cache
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	embeddings storage.EmbeddingRepository,
	calls storage.CallRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if calls == nil {
		return nil, ErrCallRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	cache, err := lru.New[string, []float32](defaultQueryCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		embeddings: embeddings,
		calls:      calls,
		embedder:   embedder,
		matcher:    NewTextMatcher(calls),
		queryCache: cache,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a hybrid search: a vector leg and a keyword leg in
// parallel, a metadata join, a filter post-pass, then ranking.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs Search with per-stage monitoring callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	started := time.Now()

	if err := core.ValidateIdentifier(req.OwnerID); err != nil {
		return nil, err
	}
	if req.Query == "" && len(req.QueryVector) == 0 {
		return nil, ErrEmptyQuery
	}

	limit := clampLimit(req.Limit)
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	monitor.Start(req.Query)

	// Caller-supplied vectors are normalized too: the stored side is
	// unit length, and the dot-product scan is only cosine similarity
	// when both sides are.
	vector := ai.NormalizeVector(req.QueryVector)
	if len(vector) == 0 {
		var err error
		vector, err = s.queryVector(ctx, req.Query)
		if err != nil {
			s.logger.Error("error generating embedding for query", "err", err)
			return nil, err
		}
	}

	// Vector and keyword legs run concurrently. Only the vector leg can
	// fail the search; a keyword failure degrades to unboosted results.
	var (
		matches     []*core.SimilarityMatch
		keywordIDs  map[string]bool
		degraded    bool
		g, groupCtx = errgroup.WithContext(ctx)
	)

	g.Go(func() error {
		var err error
		// Fetch at the ceiling: the filter post-pass may discard hits,
		// and ranking needs the full candidate set anyway.
		matches, err = s.embeddings.FindSimilar(groupCtx, req.OwnerID, vector, threshold, MaxLimit)
		return err
	})

	if req.Query != "" {
		g.Go(func() error {
			var err error
			keywordIDs, err = s.matcher.Match(groupCtx, req.OwnerID, req.Query)
			if err != nil {
				s.logger.Warn("keyword leg failed, degrading to vector-only results", "err", err)
				keywordIDs = nil
				degraded = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(matches)
	monitor.AfterKeywordMatch(keywordIDs, degraded)

	results, err := s.joinAndRank(ctx, req.OwnerID, matches, keywordIDs, req.Filters, monitor)
	if err != nil {
		return nil, err
	}

	if len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)

	return &Response{
		Results:         results,
		SearchTime:      time.Since(started),
		KeywordDegraded: degraded,
	}, nil
}

// FindSimilarTo returns calls similar to an already-embedded entity.
// The source entity is excluded from the results. This is a pure vector
// search; no keyword leg runs.
func (s *Searcher) FindSimilarTo(ctx context.Context, ownerID, entityID string, limit int) ([]*core.SearchResult, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, err
	}
	if err := core.ValidateIdentifier(entityID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	record, err := s.sourceEmbedding(ctx, ownerID, entityID)
	if err != nil {
		return nil, err
	}

	// Fetch one extra so excluding the source still fills the limit.
	matches, err := s.embeddings.FindSimilar(ctx, ownerID, record.Vector, DefaultThreshold, limit+1)
	if err != nil {
		return nil, err
	}

	filtered := make([]*core.SimilarityMatch, 0, len(matches))
	for _, match := range matches {
		if match.EntityID == entityID {
			continue
		}
		filtered = append(filtered, match)
	}

	results, err := s.joinAndRank(ctx, ownerID, filtered, nil, core.SearchFilters{}, &noopMonitor{})
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// joinAndRank joins call metadata onto similarity matches, applies the
// filter post-pass, boosts keyword hits, and sorts deterministically.
// Matches whose call record has disappeared are dropped.
func (s *Searcher) joinAndRank(
	ctx context.Context,
	ownerID string,
	matches []*core.SimilarityMatch,
	keywordIDs map[string]bool,
	filters core.SearchFilters,
	monitor SearchMonitor,
) ([]*core.SearchResult, error) {
	if len(matches) == 0 {
		return []*core.SearchResult{}, nil
	}

	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.EntityID)
	}

	calls, err := s.calls.GetCalls(ctx, ownerID, ids...)
	if err != nil {
		s.logger.Error("error joining call metadata", "count", len(ids), "err", err)
		return nil, err
	}
	monitor.AfterMetadataJoin(calls)

	byID := make(map[string]*core.CallRecord, len(calls))
	for _, call := range calls {
		byID[call.ID] = call
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		call, ok := byID[match.EntityID]
		if !ok {
			// Embedded but since removed from the call store
			continue
		}
		if !filters.Matches(call) {
			continue
		}
		results = append(results, buildResult(match, call, keywordIDs[match.EntityID]))
	}

	sortResults(results)
	return results, nil
}

// queryVector resolves the embedding for query text, consulting the
// LRU cache first. The cache is keyed on the raw query string; the
// embedder is fixed for the searcher's lifetime, so entries never go
// stale within a process.
func (s *Searcher) queryVector(ctx context.Context, query string) ([]float32, error) {
	if vector, ok := s.queryCache.Get(query); ok {
		return vector, nil
	}

	result, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	vector := ai.NormalizeVector(result.Vector)
	s.queryCache.Add(query, vector)
	return vector, nil
}

// sourceEmbedding finds the entity's current embedding, preferring the
// transcript vector, then combined, then summary.
func (s *Searcher) sourceEmbedding(ctx context.Context, ownerID, entityID string) (*core.EmbeddingRecord, error) {
	for _, contentType := range []core.ContentType{
		core.ContentTypeTranscript,
		core.ContentTypeCombined,
		core.ContentTypeSummary,
	} {
		record, err := s.embeddings.GetCurrent(ctx, ownerID, entityID, contentType)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotEmbedded, entityID)
}

// clampLimit applies the default and ceiling to a requested limit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
