package ai

import "context"

// Result is one generated embedding with its billable token count.
type Result struct {
	Vector     []float32
	TokenCount int
}

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Transient provider failures are retried internally; configuration
	// and invalid-response errors are returned immediately.
	EmbedText(ctx context.Context, text string) (*Result, error)

	// EmbedTexts generates embeddings for multiple texts in one provider
	// call. The returned slice matches the input order.
	EmbedTexts(ctx context.Context, texts []string) ([]*Result, error)

	// Dimensions returns the dimensionality of vectors produced by this
	// embedder. A response with any other dimension is a provider bug.
	Dimensions() int

	// Model returns the model identifier used by this embedder.
	Model() string

	// ModelVersion returns the configured model version, incremented by
	// operators on model change to invalidate cached embeddings.
	ModelVersion() int
}
