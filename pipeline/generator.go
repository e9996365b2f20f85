package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/signalpath/recall/ai"
	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/normalize"
	"github.com/signalpath/recall/storage"
)

// GenerateRequest describes one embedding generation.
type GenerateRequest struct {
	OwnerID     string
	EntityID    string
	Text        string
	ContentType core.ContentType

	// Force bypasses the content-hash cache check and always calls the
	// provider.
	Force bool

	// Operation tags the ledger entry. Zero means OperationGenerate
	// (or OperationRegenerate when Force is set).
	Operation core.OperationType
}

// GenerateResult is the outcome of one generation.
type GenerateResult struct {
	// Cached is true when the stored embedding was still current and no
	// provider call was made.
	Cached      bool
	TokenCount  int
	Cost        float64
	ContentHash string
	Record      *core.EmbeddingRecord
}

// Generator produces embeddings for call content, gated on a content
// fingerprint so unchanged content never pays for a provider call twice.
type Generator struct {
	embeddings  storage.EmbeddingRepository
	embedder    ai.Embedder
	ledger      *Ledger
	maxCacheAge time.Duration
	logger      *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator) error

// WithGeneratorLogger sets a custom logger.
// Default is slog.Default().
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// WithMaxCacheAge overrides how long an unchanged embedding stays
// current. Default is DefaultMaxCacheAge.
func WithMaxCacheAge(age time.Duration) GeneratorOption {
	return func(g *Generator) error {
		g.maxCacheAge = age
		return nil
	}
}

// WithCostRate overrides the per-thousand-token rate used for ledger
// accounting. Default is DefaultCostPerThousandTokens.
func WithCostRate(ratePerThousand float64) GeneratorOption {
	return func(g *Generator) error {
		g.ledger.rate = ratePerThousand
		return nil
	}
}

// NewGenerator creates a new generator.
func NewGenerator(
	embeddings storage.EmbeddingRepository,
	usage storage.UsageRepository,
	embedder ai.Embedder,
	opts ...GeneratorOption,
) (*Generator, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if usage == nil {
		return nil, ErrUsageRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	g := &Generator{
		embeddings:  embeddings,
		embedder:    embedder,
		ledger:      NewLedger(usage, DefaultCostPerThousandTokens, slog.Default()),
		maxCacheAge: DefaultMaxCacheAge,
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.ledger.logger = g.logger

	return g, nil
}

// Generate normalizes and fingerprints the content, reuses the stored
// embedding when it is still current, and otherwise calls the provider
// and atomically replaces the stored record. Identical content yields
// identical hashes, so repeated calls with unchanged content are
// idempotent and free.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := core.ValidateIdentifier(req.OwnerID); err != nil {
		return nil, err
	}
	if err := core.ValidateIdentifier(req.EntityID); err != nil {
		return nil, err
	}

	normalized, err := normalize.Content(req.Text, req.ContentType)
	if err != nil {
		return nil, err
	}
	hash := normalize.Fingerprint(normalized)

	current, err := g.embeddings.GetCurrent(ctx, req.OwnerID, req.EntityID, req.ContentType)
	if err != nil {
		return nil, err
	}
	if !req.Force && g.isCurrent(current, hash) {
		g.logger.Debug("embedding current, skipping provider call",
			"owner", req.OwnerID, "entity", req.EntityID, "hash", hash)
		return &GenerateResult{
			Cached:      true,
			TokenCount:  current.TokenCount,
			ContentHash: hash,
			Record:      current,
		}, nil
	}

	result, err := g.embedder.EmbedText(ctx, normalized)
	if err != nil {
		return nil, err
	}

	record := &core.EmbeddingRecord{
		EntityID:     req.EntityID,
		OwnerID:      req.OwnerID,
		Vector:       ai.NormalizeVector(result.Vector),
		ModelName:    g.embedder.Model(),
		ModelVersion: g.embedder.ModelVersion(),
		ContentType:  req.ContentType,
		ContentHash:  hash,
		TokenCount:   result.TokenCount,
		GeneratedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := core.ValidateEmbeddingRecord(record, g.embedder.Dimensions()); err != nil {
		return nil, err
	}

	stored, err := g.embeddings.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}

	cost := g.ledger.Record(ctx, req.OwnerID, req.EntityID, record.ModelName,
		result.TokenCount, g.operation(req))

	return &GenerateResult{
		TokenCount:  result.TokenCount,
		Cost:        cost,
		ContentHash: hash,
		Record:      stored,
	}, nil
}

// isCurrent reports whether a stored record can serve in place of a new
// provider call: same content hash, same model name and version, and
// generated within the cache age window.
func (g *Generator) isCurrent(record *core.EmbeddingRecord, hash string) bool {
	if record == nil {
		return false
	}
	if record.ContentHash != hash {
		return false
	}
	if record.ModelName != g.embedder.Model() || record.ModelVersion != g.embedder.ModelVersion() {
		return false
	}
	if g.maxCacheAge > 0 && time.Since(record.GeneratedAt) > g.maxCacheAge {
		return false
	}
	return true
}

// operation resolves the ledger tag for a request.
func (g *Generator) operation(req GenerateRequest) core.OperationType {
	if req.Operation != 0 {
		return req.Operation
	}
	if req.Force {
		return core.OperationRegenerate
	}
	return core.OperationGenerate
}
