package pipeline

import (
	"context"
	"log/slog"

	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/storage"
)

// Cost computes the charge for a token count at a per-thousand-token rate.
func Cost(tokenCount int, ratePerThousand float64) float64 {
	return float64(tokenCount) / 1000.0 * ratePerThousand
}

// Ledger records paid embedding operations against the append-only
// usage repository. Recording is best-effort: an append failure is
// logged at warn and never propagated, so accounting problems cannot
// fail the generation that triggered them.
type Ledger struct {
	usage  storage.UsageRepository
	rate   float64
	logger *slog.Logger
}

// NewLedger creates a ledger writing at the given per-thousand-token rate.
func NewLedger(usage storage.UsageRepository, ratePerThousand float64, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		usage:  usage,
		rate:   ratePerThousand,
		logger: logger,
	}
}

// Record appends one ledger entry and returns the computed cost.
func (l *Ledger) Record(ctx context.Context, ownerID, entityID, modelName string, tokenCount int, op core.OperationType) float64 {
	cost := Cost(tokenCount, l.rate)

	_, err := l.usage.Append(ctx, &core.UsageRecord{
		OwnerID:    ownerID,
		EntityID:   entityID,
		TokenCount: tokenCount,
		ModelName:  modelName,
		CostAmount: cost,
		Operation:  op,
	})
	if err != nil {
		l.logger.Warn("usage ledger append failed",
			"owner", ownerID, "entity", entityID, "tokens", tokenCount, "err", err)
	}
	return cost
}
