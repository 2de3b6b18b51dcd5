package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/auditscan/auditscan/internal/core/domain"
)

const sampleYAML = `
document_types:
  - id: nda
    name: Non-Disclosure Agreement
    description: Confidentiality agreement between parties
    required: true
    examples:
      - "The parties agree to keep confidential information secret"
  - id: invoice
    name: Invoice
    description: Billing document
    required: true
  - id: meeting_notes
    name: Meeting Notes
    description: Informal notes from meetings
    required: false
`

func TestParsePreservesConfiguredOrder(t *testing.T) {
	cat, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cat.Len() != 3 {
		t.Fatalf("expected 3 types, got %d", cat.Len())
	}

	wantOrder := []string{"nda", "invoice", "meeting_notes"}
	for i, tp := range cat.All() {
		if tp.ID != wantOrder[i] {
			t.Errorf("type %d: expected id %q, got %q", i, wantOrder[i], tp.ID)
		}
	}

	req := cat.Required()
	if len(req) != 2 || req[0].ID != "nda" || req[1].ID != "invoice" {
		t.Errorf("unexpected required types: %+v", req)
	}
}

func TestGetAndContains(t *testing.T) {
	cat, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	tp, err := cat.Get("invoice")
	if err != nil {
		t.Fatalf("Get(invoice) returned error: %v", err)
	}
	if tp.Name != "Invoice" {
		t.Errorf("expected name Invoice, got %q", tp.Name)
	}

	if _, err := cat.Get("contract"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if cat.Contains("contract") {
		t.Error("Contains reported an unconfigured id")
	}
	if cat.Contains(domain.TypeUnknown) {
		t.Error("Contains reported the reserved sentinel")
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name  string
		types []DocumentType
	}{
		{"empty list", nil},
		{"empty id", []DocumentType{{ID: "  ", Name: "X"}}},
		{"reserved id", []DocumentType{{ID: "unknown", Name: "X"}}},
		{"empty name", []DocumentType{{ID: "a", Name: " "}}},
		{"duplicate id", []DocumentType{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.types); !domain.IsKind(err, domain.ErrConfig) {
				t.Errorf("expected config error, got %v", err)
			}
		})
	}
}

func TestVersionTracksContent(t *testing.T) {
	cat1, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	cat2, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cat1.Version() != cat2.Version() {
		t.Error("identical catalogs produced different versions")
	}

	changed, err := New([]DocumentType{
		{ID: "nda", Name: "Non-Disclosure Agreement", Description: "edited", Required: true},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if changed.Version() == cat1.Version() {
		t.Error("edited catalog kept the same version")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "types.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cat.Len() != 3 {
		t.Errorf("expected 3 types, got %d", cat.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); !domain.IsKind(err, domain.ErrConfig) {
		t.Errorf("expected config error for missing file, got %v", err)
	}
	if _, err := Parse([]byte("document_types: {broken")); !domain.IsKind(err, domain.ErrConfig) {
		t.Errorf("expected config error for broken yaml, got %v", err)
	}
}
