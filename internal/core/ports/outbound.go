package ports

import (
	"context"

	"github.com/auditscan/auditscan/internal/core/domain"
)

// CompletionClient is the external model inference collaborator. The
// returned text is the raw completion; callers bound each call with a
// context deadline.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Classifier produces a single best-fit type estimate for one document.
// Implementations form a closed variant set (semantic, rules) selected by
// configuration. Errors carry a domain kind (transport/parse/validation);
// the engine converts them into failed records, never aborting the batch.
type Classifier interface {
	Classify(ctx context.Context, doc domain.NormalizedDocument) (domain.Candidate, error)
}

// DocumentLoader supplies normalized documents for a run. Per-file
// extraction failures surface as documents with extraction_status=error,
// not as a load error.
type DocumentLoader interface {
	Load(ctx context.Context, dir string) ([]domain.NormalizedDocument, error)
}

// ResultCache stores classification records keyed by a fingerprint of
// (document text, catalog version, classifier identity), enabling
// deterministic skip-on-rerun. A miss is (zero record, false, nil).
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (domain.ClassificationRecord, bool, error)
	Put(ctx context.Context, fingerprint string, record domain.ClassificationRecord) error
}

// RunStore persists the artifacts of one scan run.
type RunStore interface {
	SaveRun(ctx context.Context, bundle *domain.ReportBundle) error
}

// ScanQueue publishes/consumes scan-run requests.
type ScanQueue interface {
	PublishScanRequested(ctx context.Context, req domain.ScanRequest) error
	SubscribeScanRequested(ctx context.Context, handler func(context.Context, domain.ScanRequest) error) error
}
