package usecase

import (
	"reflect"
	"testing"

	"github.com/auditscan/auditscan/internal/catalog"
	"github.com/auditscan/auditscan/internal/core/domain"
)

func optionalOnlyCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.DocumentType{
		{ID: "memo", Name: "Internal Memo"},
		{ID: "newsletter", Name: "Newsletter"},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

func record(docID, typeID string, confidence float64) domain.ClassificationRecord {
	return domain.ClassificationRecord{
		DocumentID: docID,
		TypeID:     typeID,
		Confidence: confidence,
		Evidence:   []string{},
	}
}

func TestVerifyCoverageMath(t *testing.T) {
	cat := usecaseCatalog(t)
	// 5 required types, 4 found above threshold. The nda match below
	// threshold and the unknown record must not count.
	records := []domain.ClassificationRecord{
		record("a.txt", "invoice", 0.9),
		record("b.txt", "dpa", 0.75),
		record("c.txt", "sow", 0.7),
		record("d.txt", "policy", 0.95),
		record("e.txt", "nda", 0.5),
		record("f.txt", domain.TypeUnknown, 0.9),
		record("g.txt", "meeting_notes", 0.8),
	}

	result := Verify(records, cat, 0.7)

	if result.RequiredTypesCount != 5 {
		t.Errorf("expected 5 required types, got %d", result.RequiredTypesCount)
	}
	if result.FoundRequiredTypesCount != 4 {
		t.Errorf("expected 4 found required types, got %d", result.FoundRequiredTypesCount)
	}
	if result.CoveragePercentage != 80 {
		t.Errorf("expected coverage 80, got %g", result.CoveragePercentage)
	}
	if len(result.MissingRequired) != 1 || result.MissingRequired[0].TypeID != "nda" {
		t.Errorf("unexpected missing list: %+v", result.MissingRequired)
	}

	// The optional match contributes to its type but not to coverage.
	for _, tc := range result.Types {
		if tc.TypeID == "meeting_notes" && !tc.Found {
			t.Error("optional type with an above-threshold match should be found")
		}
	}
}

func TestVerifyZeroRequiredTypesIsFullCoverage(t *testing.T) {
	cat := optionalOnlyCatalog(t)
	result := Verify(nil, cat, 0.7)
	if result.CoveragePercentage != 100 {
		t.Errorf("expected 100 with no required types, got %g", result.CoveragePercentage)
	}
	if len(result.MissingRequired) != 0 {
		t.Errorf("expected empty missing list, got %+v", result.MissingRequired)
	}
}

func TestVerifyNoDocuments(t *testing.T) {
	cat := usecaseCatalog(t)
	result := Verify(nil, cat, 0.7)
	if result.CoveragePercentage != 0 {
		t.Errorf("expected 0 coverage, got %g", result.CoveragePercentage)
	}
	if len(result.MissingRequired) != 5 {
		t.Errorf("expected all 5 required types missing, got %d", len(result.MissingRequired))
	}
	// Missing types follow catalog order.
	want := []string{"nda", "invoice", "dpa", "sow", "policy"}
	for i, m := range result.MissingRequired {
		if m.TypeID != want[i] {
			t.Errorf("missing[%d] = %q, expected %q", i, m.TypeID, want[i])
		}
	}
}

func TestVerifySkipsFailedAndForeignRecords(t *testing.T) {
	cat := usecaseCatalog(t)
	failed := record("x.txt", "invoice", 0.9)
	failed.Error = "transport failure: connection refused"
	records := []domain.ClassificationRecord{
		failed,
		record("y.txt", "not_in_catalog", 0.99),
	}

	result := Verify(records, cat, 0.7)
	if result.FoundRequiredTypesCount != 0 {
		t.Errorf("failed and foreign records must not count, got %d found", result.FoundRequiredTypesCount)
	}
}

func TestVerifyThresholdMonotonicity(t *testing.T) {
	cat := usecaseCatalog(t)
	records := []domain.ClassificationRecord{
		record("a.txt", "nda", 0.6),
		record("b.txt", "invoice", 0.75),
		record("c.txt", "dpa", 0.9),
	}

	prev := 101.0
	for _, threshold := range []float64{0.5, 0.7, 0.8, 0.95} {
		result := Verify(records, cat, threshold)
		if result.CoveragePercentage > prev {
			t.Errorf("coverage increased when threshold rose to %g", threshold)
		}
		prev = result.CoveragePercentage
	}
}

func TestVerifyBoundaryConfidenceCounts(t *testing.T) {
	cat := usecaseCatalog(t)
	result := Verify([]domain.ClassificationRecord{record("a.txt", "nda", 0.7)}, cat, 0.7)
	if result.FoundRequiredTypesCount != 1 {
		t.Error("confidence exactly at threshold must count as found")
	}
}

func TestVerifyDeterministic(t *testing.T) {
	cat := usecaseCatalog(t)
	records := []domain.ClassificationRecord{
		record("b.txt", "nda", 0.8),
		record("a.txt", "nda", 0.9),
		record("c.txt", "invoice", 0.75),
	}

	first := Verify(records, cat, 0.7)
	for range 5 {
		if again := Verify(records, cat, 0.7); !reflect.DeepEqual(again, first) {
			t.Fatalf("verification not deterministic:\n%+v\nvs\n%+v", again, first)
		}
	}

	// Documents within a type sort by id; best confidence is the max.
	nda := first.Types[0]
	if nda.TypeID != "nda" {
		t.Fatalf("expected nda first in catalog order, got %q", nda.TypeID)
	}
	if len(nda.Documents) != 2 || nda.Documents[0].DocumentID != "a.txt" {
		t.Errorf("documents not ordered by id: %+v", nda.Documents)
	}
	if nda.BestConfidence != 0.9 {
		t.Errorf("expected best confidence 0.9, got %g", nda.BestConfidence)
	}
}
