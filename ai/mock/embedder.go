package mock

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	"github.com/signalpath/recall/ai"
	"github.com/signalpath/recall/normalize"
)

// DefaultDimensions is the vector size the mock produces unless overridden.
const DefaultDimensions = 8

// Embedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type Embedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) (*ai.Result, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([]*ai.Result, error)

	// Dims overrides the vector dimensionality. Zero means DefaultDimensions.
	Dims int

	// Version overrides the reported model version. Zero means 1.
	Version int

	callCount atomic.Int64
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a mock embedder with default deterministic behavior.
// Returns the concrete type to allow test assertions on call counts.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *Embedder) EmbedText(ctx context.Context, text string) (*ai.Result, error) {
	m.callCount.Add(1)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return &ai.Result{
		Vector:     deterministicVector(text, m.Dimensions()),
		TokenCount: normalize.EstimateTokens(text),
	}, nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *Embedder) EmbedTexts(ctx context.Context, texts []string) ([]*ai.Result, error) {
	m.callCount.Add(1)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	results := make([]*ai.Result, len(texts))
	for i, text := range texts {
		results[i] = &ai.Result{
			Vector:     deterministicVector(text, m.Dimensions()),
			TokenCount: normalize.EstimateTokens(text),
		}
	}
	return results, nil
}

// Dimensions returns the mock vector size.
func (m *Embedder) Dimensions() int {
	if m.Dims > 0 {
		return m.Dims
	}
	return DefaultDimensions
}

// Model returns a fixed mock model name.
func (m *Embedder) Model() string {
	return "mock-embedder"
}

// ModelVersion returns the configured mock version.
func (m *Embedder) ModelVersion() int {
	if m.Version > 0 {
		return m.Version
	}
	return 1
}

// CallCount returns the number of times any embed method was called.
func (m *Embedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *Embedder) Reset() {
	m.callCount.Store(0)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// deterministicVector creates a deterministic unit vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 + 0.001
	}

	return ai.NormalizeVector(vector)
}
