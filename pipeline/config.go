package pipeline

import "time"

const (
	// DefaultMaxBatchSize is the largest batch accepted per run.
	DefaultMaxBatchSize = 100

	// DefaultPacingDelay is the pause between consecutive batch items.
	DefaultPacingDelay = 100 * time.Millisecond

	// DefaultMaxCacheAge is how long an unchanged embedding stays
	// current before it is regenerated anyway. Guards against silent
	// provider-side model drift.
	DefaultMaxCacheAge = 30 * 24 * time.Hour

	// DefaultCostPerThousandTokens is the embedding price used for
	// ledger accounting when no rate is configured.
	DefaultCostPerThousandTokens = 0.00002
)

// Config carries the pipeline tuning knobs.
type Config struct {
	MaxBatchSize          int
	PacingDelay           time.Duration
	MaxCacheAge           time.Duration
	CostPerThousandTokens float64
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize:          DefaultMaxBatchSize,
		PacingDelay:           DefaultPacingDelay,
		MaxCacheAge:           DefaultMaxCacheAge,
		CostPerThousandTokens: DefaultCostPerThousandTokens,
	}
}
