package pipeline

import (
	"context"

	"github.com/signalpath/recall/core"
	"github.com/signalpath/recall/storage"
)

// CoverageReporter reports how much of an owner's call corpus has a
// current transcript embedding.
type CoverageReporter struct {
	embeddings storage.EmbeddingRepository
	calls      storage.CallRepository
}

// NewCoverageReporter creates a new coverage reporter.
func NewCoverageReporter(embeddings storage.EmbeddingRepository, calls storage.CallRepository) (*CoverageReporter, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if calls == nil {
		return nil, ErrCallRepositoryRequired
	}
	return &CoverageReporter{embeddings: embeddings, calls: calls}, nil
}

// Report computes embedding coverage for one owner. An owner with no
// calls is fully covered: there is nothing left to embed.
func (c *CoverageReporter) Report(ctx context.Context, ownerID string) (*core.CoverageReport, error) {
	if err := core.ValidateIdentifier(ownerID); err != nil {
		return nil, err
	}

	callIDs, err := c.calls.ListCallIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	embeddedIDs, err := c.embeddings.ListEmbeddedEntityIDs(ctx, ownerID, core.ContentTypeTranscript)
	if err != nil {
		return nil, err
	}

	embedded := make(map[string]bool, len(embeddedIDs))
	for _, id := range embeddedIDs {
		embedded[id] = true
	}

	report := &core.CoverageReport{TotalEntities: len(callIDs)}
	for _, id := range callIDs {
		if embedded[id] {
			report.EmbeddedEntities++
		} else {
			report.MissingIDs = append(report.MissingIDs, id)
		}
	}

	if report.TotalEntities == 0 {
		report.CoveragePercent = 100.0
	} else {
		report.CoveragePercent = float64(report.EmbeddedEntities) / float64(report.TotalEntities) * 100.0
	}

	return report, nil
}
