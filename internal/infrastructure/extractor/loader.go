// Package extractor supplies normalized documents to the scan pipeline:
// it walks an input directory, dispatches per-format text extraction, and
// turns per-file failures into extraction_status=error documents instead
// of aborting the load.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/auditscan/auditscan/internal/core/domain"
	"github.com/auditscan/auditscan/internal/core/ports"
)

type extractFunc func(path string) (string, error)

type format struct {
	kind    domain.DocumentFormat
	extract extractFunc
}

// Loader reads source files from disk. Unsupported extensions are skipped;
// directory entries are processed in name order so document ids come out
// deterministically.
type Loader struct {
	formats map[string]format
	logger  *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		formats: map[string]format{
			".txt":  {domain.FormatText, extractPlaintext},
			".md":   {domain.FormatText, extractPlaintext},
			".pdf":  {domain.FormatPDF, extractPDF},
			".docx": {domain.FormatWord, extractDocx},
			".xlsx": {domain.FormatExcel, extractExcel},
		},
		logger: logger,
	}
}

func (l *Loader) Load(ctx context.Context, dir string) ([]domain.NormalizedDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []domain.NormalizedDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		f, ok := l.formats[strings.ToLower(filepath.Ext(name))]
		if !ok {
			l.logger.DebugContext(ctx, "skipping unsupported file", "file", name)
			continue
		}

		doc := domain.NormalizedDocument{
			ID:     name,
			Format: f.kind,
			Status: domain.ExtractionOK,
		}
		text, err := f.extract(filepath.Join(dir, name))
		if err != nil {
			l.logger.WarnContext(ctx, "extraction failed", "file", name, "error", err)
			doc.Status = domain.ExtractionError
			doc.ExtractionNote = err.Error()
		} else {
			doc.Text = strings.TrimSpace(text)
		}
		docs = append(docs, doc)
	}

	l.logger.InfoContext(ctx, "documents loaded", "dir", dir, "count", len(docs))
	return docs, nil
}

var _ ports.DocumentLoader = (*Loader)(nil)
