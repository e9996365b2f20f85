package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return NewConfig(WithAPIKey("sk-test"))
	}

	t.Run("default config with key is valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing api key fails fast", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.False(t, IsRetryable(err))
	})

	t.Run("empty host", func(t *testing.T) {
		cfg := valid()
		cfg.Host = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("empty model", func(t *testing.T) {
		cfg := valid()
		cfg.Model = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("zero model version", func(t *testing.T) {
		cfg := valid()
		cfg.ModelVersion = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("zero dimensions", func(t *testing.T) {
		cfg := valid()
		cfg.Dimensions = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("zero attempts", func(t *testing.T) {
		cfg := valid()
		cfg.MaxAttempts = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash first", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing v1", "https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://localhost:11434/v1"),
		WithAPIKey("sk-test"),
		WithModel("embeddinggemma"),
		WithModelVersion(2),
		WithDimensions(768),
		WithMaxAttempts(5),
		WithRetryBaseDelay(200*time.Millisecond),
		WithRequestTimeout(10*time.Second),
	)

	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "embeddinggemma", cfg.Model)
	assert.Equal(t, 2, cfg.ModelVersion)
	assert.Equal(t, 768, cfg.Dimensions)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
