package ports

import (
	"context"

	"github.com/auditscan/auditscan/internal/core/domain"
)

// ScanRunner is the inbound contract for executing a full scan run:
// classify every document, verify coverage, aggregate the bundle.
type ScanRunner interface {
	Run(ctx context.Context, docs []domain.NormalizedDocument) (*domain.ReportBundle, error)
}
