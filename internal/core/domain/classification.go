package domain

// TypeUnknown is the sentinel type id for documents that match none of the
// configured types, or whose classification failed. It is reserved and may
// not appear in the catalog.
const TypeUnknown = "unknown"

// ClassificationRecord is the immutable outcome of classifying one document
// in one run. Exactly one record exists per document per run, whether the
// classification succeeded or not; Error is set on failure and the record
// degrades to TypeUnknown with zero confidence.
type ClassificationRecord struct {
	DocumentID string   `json:"document_id"`
	TypeID     string   `json:"classified_type_id"`
	TypeName   string   `json:"classified_type_name,omitempty"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale"`
	Evidence   []string `json:"evidence"`
	// ValidationNotes records coercions applied while validating the model
	// payload (unknown type id, clamped confidence). The record is still
	// usable; notes exist for audit transparency.
	ValidationNotes []string `json:"validation_notes,omitempty"`
	Error           string   `json:"error,omitempty"`
	FromCache       bool     `json:"from_cache,omitempty"`
}

// Failed reports whether the classification attempt itself failed, as
// opposed to succeeding with a low-confidence or unknown result.
func (r ClassificationRecord) Failed() bool {
	return r.Error != ""
}

// Candidate is the raw single-type estimate a classifier variant produces
// before it is sealed into a ClassificationRecord.
type Candidate struct {
	TypeID          string
	TypeName        string
	Confidence      float64
	Rationale       string
	Evidence        []string
	ValidationNotes []string
}
