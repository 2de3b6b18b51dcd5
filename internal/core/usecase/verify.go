package usecase

import (
	"sort"

	"github.com/auditscan/auditscan/internal/catalog"
	"github.com/auditscan/auditscan/internal/core/domain"
)

// Verify aggregates classification records into a coverage assessment. It
// is a pure function: identical (records, catalog, threshold) inputs yield
// an identical result, which keeps coverage reports diffable across runs.
//
// A record contributes to found status only when it names a catalog type,
// carries confidence at or above threshold, and did not fail. Everything
// else (unknown, below-threshold, errored) stays in the bundle for
// transparency but never counts toward coverage.
func Verify(records []domain.ClassificationRecord, cat *catalog.Catalog, threshold float64) domain.VerificationResult {
	matches := make(map[string][]domain.TypeMatch)
	for _, r := range records {
		if r.Failed() || r.TypeID == domain.TypeUnknown || r.Confidence < threshold {
			continue
		}
		if !cat.Contains(r.TypeID) {
			continue
		}
		matches[r.TypeID] = append(matches[r.TypeID], domain.TypeMatch{
			DocumentID: r.DocumentID,
			Confidence: r.Confidence,
			Evidence:   r.Evidence,
		})
	}

	result := domain.VerificationResult{
		MissingRequired: []domain.MissingType{},
		Threshold:       threshold,
	}

	for _, t := range cat.All() {
		docs := matches[t.ID]
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].DocumentID < docs[j].DocumentID
		})
		if docs == nil {
			docs = []domain.TypeMatch{}
		}

		best := 0.0
		for _, m := range docs {
			if m.Confidence > best {
				best = m.Confidence
			}
		}

		found := len(docs) > 0
		result.Types = append(result.Types, domain.TypeCoverage{
			TypeID:         t.ID,
			Name:           t.Name,
			Required:       t.Required,
			Found:          found,
			BestConfidence: best,
			Documents:      docs,
		})

		if t.Required {
			result.RequiredTypesCount++
			if found {
				result.FoundRequiredTypesCount++
			} else {
				result.MissingRequired = append(result.MissingRequired, domain.MissingType{TypeID: t.ID})
			}
		}
	}

	if result.RequiredTypesCount == 0 {
		result.CoveragePercentage = 100
	} else {
		result.CoveragePercentage = 100 * float64(result.FoundRequiredTypesCount) / float64(result.RequiredTypesCount)
	}

	return result
}
