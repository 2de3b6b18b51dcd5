package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/auditscan/auditscan/internal/catalog"
	"github.com/auditscan/auditscan/internal/core/domain"
)

// RunUseCase executes one scan run: classify every document under a
// bounded concurrency limit, then verify coverage over the settled record
// set, then aggregate the bundle. Documents share no mutable state during
// classification, so the only synchronization point is the slot each
// goroutine writes into.
type RunUseCase struct {
	classify    *ClassifyUseCase
	catalog     *catalog.Catalog
	threshold   float64
	concurrency int
	logger      *slog.Logger
}

func NewRunUseCase(classify *ClassifyUseCase, cat *catalog.Catalog, threshold float64, concurrency int, logger *slog.Logger) *RunUseCase {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RunUseCase{
		classify:    classify,
		catalog:     cat,
		threshold:   threshold,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run produces the report bundle for docs. Cancellation mid-batch keeps
// every record already produced and marks the bundle incomplete; the
// coverage figure then reflects exactly the records that settled. Run
// itself only errors on a nil catalog-free misuse, never on document
// failures.
func (uc *RunUseCase) Run(ctx context.Context, docs []domain.NormalizedDocument) (*domain.ReportBundle, error) {
	meta := RunMeta{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now().UTC(),
		CatalogVersion: uc.catalog.Version(),
	}

	uc.logger.InfoContext(ctx, "scan run started",
		"run_id", meta.RunID,
		"documents", len(docs),
		"types", uc.catalog.Len(),
		"threshold", uc.threshold,
	)

	records := make([]domain.ClassificationRecord, len(docs))
	settled := make([]bool, len(docs))

	var g errgroup.Group
	g.SetLimit(uc.concurrency)
	for i, doc := range docs {
		if ctx.Err() != nil {
			// Stop launching; in-flight classifications run to their own
			// timeout and their records are kept.
			break
		}
		g.Go(func() error {
			records[i] = uc.classify.ClassifyDocument(ctx, doc)
			settled[i] = true
			return nil
		})
	}
	_ = g.Wait()

	completed := make([]domain.ClassificationRecord, 0, len(docs))
	for i := range docs {
		if settled[i] {
			completed = append(completed, records[i])
		}
	}
	// A cancelled run is incomplete even when every goroutine settled:
	// in-flight calls were abandoned and their records only carry the
	// cancellation, not a real classification attempt.
	meta.Incomplete = len(completed) < len(docs) || ctx.Err() != nil

	verification := Verify(completed, uc.catalog, uc.threshold)
	meta.FinishedAt = time.Now().UTC()
	bundle := Aggregate(completed, verification, meta)

	uc.logSummary(ctx, bundle, verification)
	return bundle, nil
}

func (uc *RunUseCase) logSummary(ctx context.Context, bundle *domain.ReportBundle, v domain.VerificationResult) {
	missing := make([]string, 0, len(v.MissingRequired))
	for _, m := range v.MissingRequired {
		missing = append(missing, m.TypeID)
	}
	uc.logger.InfoContext(ctx, "scan run finished",
		"run_id", bundle.RunID,
		"documents", len(bundle.Classifications),
		"coverage_percentage", v.CoveragePercentage,
		"found_required", v.FoundRequiredTypesCount,
		"required", v.RequiredTypesCount,
		"missing_types", missing,
		"incomplete", bundle.Incomplete,
	)
}
