package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/signalpath/recall/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	config   *ai.Config
	counter  tokenCounter
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a new embedder using the provided configuration.
// The configuration is validated before any client is constructed; a
// missing credential fails here, not on the first call.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvalidConfig, err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvalidConfig, err)
	}

	return &Embedder{
		embedder: embedder,
		config:   config,
		counter:  newTokenCounter(config.Model),
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) (*ai.Result, error) {
	results, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// EmbedTexts generates embeddings for multiple texts in one provider call.
// Transient failures and rate limits are retried with exponential backoff
// up to the configured attempt ceiling; a wrong-dimension response is a
// provider bug and is never retried.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([]*ai.Result, error) {
	if len(texts) == 0 {
		return nil, ai.ErrEmptyInput
	}
	for _, text := range texts {
		if text == "" {
			return nil, ai.ErrEmptyInput
		}
	}

	e.logger.Debug("generating embeddings", "count", len(texts))

	var vectors [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout)
		defer cancel()

		var callErr error
		vectors, callErr = e.embedder.EmbedDocuments(callCtx, texts)
		return ai.ClassifyProviderError(callErr)
	}, e.config.MaxAttempts, e.config.RetryBaseDelay)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts",
			ai.ErrInvalidResponse, len(vectors), len(texts))
	}

	results := make([]*ai.Result, len(vectors))
	for i, vector := range vectors {
		if len(vector) != e.config.Dimensions {
			return nil, fmt.Errorf("%w: got %d, want %d",
				ai.ErrInvalidDimension, len(vector), e.config.Dimensions)
		}
		results[i] = &ai.Result{
			Vector:     vector,
			TokenCount: e.counter.Count(texts[i]),
		}
	}

	return results, nil
}

// Dimensions returns the configured vector dimensionality.
func (e *Embedder) Dimensions() int {
	return e.config.Dimensions
}

// Model returns the configured model identifier.
func (e *Embedder) Model() string {
	return e.config.Model
}

// ModelVersion returns the configured model version.
func (e *Embedder) ModelVersion() int {
	return e.config.ModelVersion
}
