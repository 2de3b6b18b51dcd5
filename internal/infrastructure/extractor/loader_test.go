package extractor

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/auditscan/auditscan/internal/core/domain"
)

func writeFile(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeDocx(t *testing.T, dir, name, documentXML string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	part, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}
	if _, err := part.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_notes.md", []byte("# Meeting notes\nagenda items"))
	writeFile(t, dir, "a_contract.txt", []byte("  The parties agree...  "))
	writeFile(t, dir, "ignore.csv", []byte("col1,col2"))
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	docs, err := NewLoader(nil).Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	// Name order keeps document ids deterministic.
	if docs[0].ID != "a_contract.txt" || docs[1].ID != "b_notes.md" {
		t.Errorf("unexpected order: %s, %s", docs[0].ID, docs[1].ID)
	}
	if docs[0].Text != "The parties agree..." {
		t.Errorf("text not trimmed: %q", docs[0].Text)
	}
	if docs[0].Format != domain.FormatText || docs[0].Status != domain.ExtractionOK {
		t.Errorf("unexpected document: %+v", docs[0])
	}
}

func TestLoadKeepsFailedExtractions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", []byte("readable"))
	writeFile(t, dir, "binary.txt", []byte{0xff, 0xfe, 0x00, 0x80})
	writeFile(t, dir, "broken.docx", []byte("not a zip archive"))

	docs, err := NewLoader(nil).Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	byID := map[string]domain.NormalizedDocument{}
	for _, d := range docs {
		byID[d.ID] = d
	}
	if byID["good.txt"].Status != domain.ExtractionOK {
		t.Errorf("good.txt should extract: %+v", byID["good.txt"])
	}
	for _, id := range []string{"binary.txt", "broken.docx"} {
		doc := byID[id]
		if doc.Status != domain.ExtractionError {
			t.Errorf("%s should fail extraction: %+v", id, doc)
		}
		if doc.ExtractionNote == "" {
			t.Errorf("%s should carry the failure cause", id)
		}
		if doc.Text != "" {
			t.Errorf("%s should have no text", id)
		}
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	if _, err := NewLoader(nil).Load(context.Background(), "/nonexistent/path"); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestLoadCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", []byte("text"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader(nil).Load(ctx, dir); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestExtractDocx(t *testing.T) {
	dir := t.TempDir()
	writeDocx(t, dir, "agreement.docx", `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Non-Disclosure Agreement</w:t></w:r></w:p>
    <w:p><w:r><w:t>The parties agree to keep </w:t></w:r><w:r><w:t>information secret.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := extractDocx(filepath.Join(dir, "agreement.docx"))
	if err != nil {
		t.Fatalf("extractDocx returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(lines), text)
	}
	if lines[0] != "Non-Disclosure Agreement" {
		t.Errorf("unexpected first paragraph: %q", lines[0])
	}
	if lines[1] != "The parties agree to keep information secret." {
		t.Errorf("split runs not joined: %q", lines[1])
	}
}

func TestExtractDocxWithoutDocumentPart(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "empty.docx"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	f.Close()

	if _, err := extractDocx(filepath.Join(dir, "empty.docx")); err == nil {
		t.Fatal("expected an error for a docx without word/document.xml")
	}
}

func TestExtractExcel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.xlsx")

	wb := excelize.NewFile()
	if err := wb.SetSheetRow("Sheet1", "A1", &[]any{"asset", "owner"}); err != nil {
		t.Fatalf("set header row: %v", err)
	}
	if err := wb.SetSheetRow("Sheet1", "A2", &[]any{"laptop-42", "alice"}); err != nil {
		t.Fatalf("set data row: %v", err)
	}
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = wb.Close()

	text, err := extractExcel(path)
	if err != nil {
		t.Fatalf("extractExcel returned error: %v", err)
	}
	for _, want := range []string{"Sheet: Sheet1", "asset\towner", "laptop-42\talice"} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted text missing %q: %q", want, text)
		}
	}
}
