package usecase

import (
	"sort"
	"time"

	"github.com/auditscan/auditscan/internal/core/domain"
)

// RunMeta carries run identity into the aggregated bundle.
type RunMeta struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	CatalogVersion string
	Incomplete     bool
}

// Aggregate assembles the immutable report bundle from already-computed
// pieces. No classification or verification logic happens here; the bundle
// is safe to hand to any number of independent renderers.
func Aggregate(records []domain.ClassificationRecord, verification domain.VerificationResult, meta RunMeta) *domain.ReportBundle {
	ordered := make([]domain.ClassificationRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DocumentID < ordered[j].DocumentID
	})

	return &domain.ReportBundle{
		RunID:          meta.RunID,
		StartedAt:      meta.StartedAt,
		FinishedAt:     meta.FinishedAt,
		CatalogVersion: meta.CatalogVersion,
		Incomplete:     meta.Incomplete,
		Verification: domain.ReportVerification{
			CoveragePercentage:      verification.CoveragePercentage,
			RequiredTypesCount:      verification.RequiredTypesCount,
			FoundRequiredTypesCount: verification.FoundRequiredTypesCount,
			MissingTypes:            verification.MissingRequired,
			AllTypes:                domain.OrderedTypeCoverage(verification.Types),
		},
		Classifications: ordered,
	}
}
