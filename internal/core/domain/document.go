package domain

type DocumentFormat string

const (
	FormatText  DocumentFormat = "text"
	FormatPDF   DocumentFormat = "pdf"
	FormatWord  DocumentFormat = "word"
	FormatExcel DocumentFormat = "excel"
)

type ExtractionStatus string

const (
	ExtractionOK    ExtractionStatus = "ok"
	ExtractionError ExtractionStatus = "error"
)

// NormalizedDocument is the unit of input to a scan run: one source file
// with its text already extracted. When extraction failed, Text is empty,
// Status is ExtractionError and ExtractionNote carries the cause.
type NormalizedDocument struct {
	ID             string           `json:"document_id"`
	Text           string           `json:"text"`
	Format         DocumentFormat   `json:"format"`
	Status         ExtractionStatus `json:"extraction_status"`
	ExtractionNote string           `json:"extraction_note,omitempty"`
}
