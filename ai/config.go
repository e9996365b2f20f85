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


package ai

import (
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for embedding providers.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1", "http://localhost:11434/v1"
	Host string

	// APIKey is the provider credential. Required; validated before any
	// network call is attempted.
	APIKey string

	// Model is the embedding model identifier.
	// Example: "text-embedding-3-small"
	Model string

	// ModelVersion increments when operators change or upgrade the model,
	// forcing regeneration of cached embeddings.
	ModelVersion int

	// Dimensions is the vector length the model produces.
	// Example: 1536 for text-embedding-3-small
	Dimensions int

	// MaxAttempts is the total number of attempts per provider call,
	// including the first. Default: 3
	MaxAttempts int

	// RetryBaseDelay is the base delay for exponential backoff between
	// attempts. Default: 1s
	RetryBaseDelay time.Duration

	// RequestTimeout bounds each individual provider call. Default: 30s
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the provider credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithModelVersion sets the model version.
func WithModelVersion(version int) ConfigOption {
	return func(c *Config) {
		c.ModelVersion = version
	}
}

// WithDimensions sets the expected vector dimensionality.
func WithDimensions(dims int) ConfigOption {
	return func(c *Config) {
		c.Dimensions = dims
	}
}

// WithMaxAttempts sets the total attempt ceiling per provider call.
func WithMaxAttempts(attempts int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = attempts
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff.
func WithRetryBaseDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryBaseDelay = delay
	}
}

// WithRequestTimeout sets the per-call timeout.
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// DefaultConfig returns a Config with defaults for the OpenAI embedding API.
// The APIKey has no default and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Host:           "https://api.openai.com/v1",
		Model:          "text-embedding-3-small",
		ModelVersion:   1,
		Dimensions:     1536,
		MaxAttempts:    3,
		RetryBaseDelay: 1 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithAPIKey(os.Getenv("RECALL_API_KEY")),
//	    ai.WithModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in canonical form. It adds the
// /v1 suffix to the host if missing, which OpenAI-compatible APIs
// (OpenAI, Ollama, vLLM, LocalAI) require.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete. A missing
// credential is a fatal configuration error: it must surface to the
// operator immediately instead of being retried. The configuration is
// normalized before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Host == "" {
		return fmt.Errorf("%w: Host is required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: Model is required", ErrInvalidConfig)
	}
	if c.ModelVersion < 1 {
		return fmt.Errorf("%w: ModelVersion must be >= 1", ErrInvalidConfig)
	}
	if c.Dimensions < 1 {
		return fmt.Errorf("%w: Dimensions must be >= 1", ErrInvalidConfig)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: MaxAttempts must be >= 1", ErrInvalidConfig)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("%w: RetryBaseDelay cannot be negative", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: RequestTimeout must be positive", ErrInvalidConfig)
	}
	return nil
}
