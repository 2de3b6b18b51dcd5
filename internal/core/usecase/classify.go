// Package usecase hosts the core pipeline logic: the classification
// engine, the coverage verification, and report aggregation.
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/auditscan/auditscan/internal/core/domain"
	"github.com/auditscan/auditscan/internal/core/ports"
)

// ClassifyUseCase turns one normalized document into exactly one
// classification record. It never returns an error: every failure mode
// (extraction, transport, parse, validation) degrades to a record with
// Error set, so a single bad document can never abort a batch.
type ClassifyUseCase struct {
	classifier     ports.Classifier
	cache          ports.ResultCache
	catalogVersion string
	classifierID   string
	callTimeout    time.Duration
	logger         *slog.Logger
}

func NewClassifyUseCase(
	classifier ports.Classifier,
	cache ports.ResultCache,
	catalogVersion string,
	classifierID string,
	callTimeout time.Duration,
	logger *slog.Logger,
) *ClassifyUseCase {
	if callTimeout <= 0 {
		callTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyUseCase{
		classifier:     classifier,
		cache:          cache,
		catalogVersion: catalogVersion,
		classifierID:   classifierID,
		callTimeout:    callTimeout,
		logger:         logger,
	}
}

// ClassifyDocument executes the classification decision logic for doc.
// Thresholding is deliberately absent here: the engine always reports its
// best estimate and leaves found/missing decisions to verification.
func (uc *ClassifyUseCase) ClassifyDocument(ctx context.Context, doc domain.NormalizedDocument) domain.ClassificationRecord {
	if doc.Status == domain.ExtractionError {
		note := doc.ExtractionNote
		if note == "" {
			note = "no usable text"
		}
		return uc.failed(doc, fmt.Sprintf("%v: %s", domain.ErrExtraction, note))
	}
	if doc.Text == "" {
		return uc.failed(doc, fmt.Sprintf("%v: document has no content to classify", domain.ErrExtraction))
	}

	fp := uc.fingerprint(doc.Text)
	if cached, ok := uc.cacheGet(ctx, fp); ok {
		cached.DocumentID = doc.ID
		cached.FromCache = true
		uc.logger.InfoContext(ctx, "classification served from cache",
			"document_id", doc.ID, "type_id", cached.TypeID)
		return cached
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	candidate, err := uc.classifier.Classify(callCtx, doc)
	if err != nil {
		uc.logger.WarnContext(ctx, "classification failed",
			"document_id", doc.ID, "error", err)
		return uc.failed(doc, err.Error())
	}

	record := domain.ClassificationRecord{
		DocumentID:      doc.ID,
		TypeID:          candidate.TypeID,
		TypeName:        candidate.TypeName,
		Confidence:      candidate.Confidence,
		Rationale:       candidate.Rationale,
		Evidence:        candidate.Evidence,
		ValidationNotes: candidate.ValidationNotes,
	}
	if record.Evidence == nil {
		record.Evidence = []string{}
	}

	uc.cachePut(ctx, fp, record)

	uc.logger.InfoContext(ctx, "document classified",
		"document_id", doc.ID,
		"type_id", record.TypeID,
		"confidence", record.Confidence,
	)
	return record
}

func (uc *ClassifyUseCase) failed(doc domain.NormalizedDocument, reason string) domain.ClassificationRecord {
	return domain.ClassificationRecord{
		DocumentID: doc.ID,
		TypeID:     domain.TypeUnknown,
		TypeName:   "Unknown",
		Confidence: 0,
		Rationale:  "",
		Evidence:   []string{},
		Error:      reason,
	}
}

// fingerprint keys cached results by document text, catalog version and
// classifier identity so any of the three changing invalidates the entry.
func (uc *ClassifyUseCase) fingerprint(text string) string {
	h := sha256.New()
	h.Write([]byte(uc.classifierID))
	h.Write([]byte{0x1f})
	h.Write([]byte(uc.catalogVersion))
	h.Write([]byte{0x1f})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache failures are logged and ignored: the cache is an optimization,
// never a correctness dependency.
func (uc *ClassifyUseCase) cacheGet(ctx context.Context, fp string) (domain.ClassificationRecord, bool) {
	if uc.cache == nil {
		return domain.ClassificationRecord{}, false
	}
	record, ok, err := uc.cache.Get(ctx, fp)
	if err != nil {
		uc.logger.WarnContext(ctx, "cache lookup failed", "error", err)
		return domain.ClassificationRecord{}, false
	}
	return record, ok
}

func (uc *ClassifyUseCase) cachePut(ctx context.Context, fp string, record domain.ClassificationRecord) {
	if uc.cache == nil || record.Failed() {
		return
	}
	if err := uc.cache.Put(ctx, fp, record); err != nil {
		uc.logger.WarnContext(ctx, "cache store failed", "error", err)
	}
}
