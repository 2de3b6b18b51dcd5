package usecase

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/auditscan/auditscan/internal/core/domain"
)

func TestAggregateOrdersRecords(t *testing.T) {
	records := []domain.ClassificationRecord{
		record("c.txt", "invoice", 0.9),
		record("a.txt", "nda", 0.8),
		record("b.txt", "dpa", 0.7),
	}
	meta := RunMeta{
		RunID:          "run-1",
		StartedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:     time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC),
		CatalogVersion: "abc123",
	}

	bundle := Aggregate(records, domain.VerificationResult{}, meta)

	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if bundle.Classifications[i].DocumentID != want {
			t.Errorf("record %d: expected %q, got %q", i, want, bundle.Classifications[i].DocumentID)
		}
	}
	// The input slice must stay untouched.
	if records[0].DocumentID != "c.txt" {
		t.Error("Aggregate mutated the caller's record slice")
	}
	if bundle.RunID != "run-1" || bundle.CatalogVersion != "abc123" {
		t.Errorf("metadata not carried: %+v", bundle)
	}
}

func TestReportJSONTypeOrderFollowsCatalog(t *testing.T) {
	cat := usecaseCatalog(t)
	records := []domain.ClassificationRecord{
		record("a.txt", "policy", 0.9),
		record("b.txt", "nda", 0.8),
	}
	verification := Verify(records, cat, 0.7)
	bundle := Aggregate(records, verification, RunMeta{RunID: "run-1"})

	raw, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	body := string(raw)

	// all_types keys must appear in catalog order, not lexical order.
	prev := -1
	for _, id := range []string{"nda", "invoice", "dpa", "sow", "policy", "meeting_notes", "newsletter", "memo"} {
		pos := strings.Index(body, `"`+id+`":{`)
		if pos < 0 {
			t.Fatalf("type %q absent from report JSON", id)
		}
		if pos < prev {
			t.Errorf("type %q out of catalog order", id)
		}
		prev = pos
	}

	// Marshaling twice yields identical bytes.
	again, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("marshal bundle again: %v", err)
	}
	if body != string(again) {
		t.Error("report JSON is not byte-stable")
	}
}

func TestReportJSONSchema(t *testing.T) {
	cat := usecaseCatalog(t)
	verification := Verify([]domain.ClassificationRecord{record("a.txt", "nda", 0.9)}, cat, 0.7)
	bundle := Aggregate([]domain.ClassificationRecord{record("a.txt", "nda", 0.9)}, verification, RunMeta{RunID: "run-1"})

	raw, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}

	var decoded struct {
		RunID        string `json:"run_id"`
		Verification struct {
			CoveragePercentage float64                    `json:"coverage_percentage"`
			MissingTypes       []map[string]string        `json:"missing_types"`
			AllTypes           map[string]json.RawMessage `json:"all_types"`
		} `json:"verification"`
		Classifications []map[string]any `json:"classifications"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("report JSON does not round-trip: %v", err)
	}
	if decoded.RunID != "run-1" {
		t.Errorf("unexpected run id %q", decoded.RunID)
	}
	if decoded.Verification.CoveragePercentage != 20 {
		t.Errorf("expected coverage 20, got %g", decoded.Verification.CoveragePercentage)
	}
	if len(decoded.Verification.AllTypes) != cat.Len() {
		t.Errorf("expected %d types in all_types, got %d", cat.Len(), len(decoded.Verification.AllTypes))
	}
	if len(decoded.Verification.MissingTypes) != 4 {
		t.Errorf("expected 4 missing types, got %d", len(decoded.Verification.MissingTypes))
	}
}
