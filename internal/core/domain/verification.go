package domain

// TypeMatch ties one above-threshold record to the type it satisfies.
type TypeMatch struct {
	DocumentID string   `json:"document_id"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// TypeCoverage is the verification outcome for a single catalog type.
type TypeCoverage struct {
	TypeID         string      `json:"id"`
	Name           string      `json:"name"`
	Required       bool        `json:"required"`
	Found          bool        `json:"found"`
	BestConfidence float64     `json:"best_confidence"`
	Documents      []TypeMatch `json:"documents"`
}

// MissingType identifies a required type with no above-threshold match.
type MissingType struct {
	TypeID string `json:"id"`
}

// VerificationResult is the coverage assessment for one run. Types follows
// catalog order; MissingRequired preserves catalog order of required types.
// It is recomputed from the record set every run and never mutated.
type VerificationResult struct {
	CoveragePercentage      float64        `json:"coverage_percentage"`
	RequiredTypesCount      int            `json:"required_types_count"`
	FoundRequiredTypesCount int            `json:"found_required_types_count"`
	MissingRequired         []MissingType  `json:"missing_types"`
	Types                   []TypeCoverage `json:"-"`
	Threshold               float64        `json:"confidence_threshold"`
}
