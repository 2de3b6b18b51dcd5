package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// OrderedTypeCoverage marshals per-type coverage as a JSON object whose keys
// appear in catalog order. encoding/json sorts map keys lexically, which
// would break run-to-run diffing against the configured order, so the
// object is written by hand from the ordered slice.
type OrderedTypeCoverage []TypeCoverage

func (o OrderedTypeCoverage) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tc := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tc.TypeID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		entry, err := json.Marshal(struct {
			Name      string      `json:"name"`
			Documents []TypeMatch `json:"documents"`
			Found     bool        `json:"found"`
			Required  bool        `json:"required"`
		}{tc.Name, tc.Documents, tc.Found, tc.Required})
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ReportVerification is the verification section of the report schema.
type ReportVerification struct {
	CoveragePercentage      float64             `json:"coverage_percentage"`
	RequiredTypesCount      int                 `json:"required_types_count"`
	FoundRequiredTypesCount int                 `json:"found_required_types_count"`
	MissingTypes            []MissingType       `json:"missing_types"`
	AllTypes                OrderedTypeCoverage `json:"all_types"`
}

// ReportBundle is the read-only aggregate handed to external renderers.
// Classifications are ordered by document id; AllTypes follows catalog
// order. Produced once per run and never mutated afterwards.
type ReportBundle struct {
	RunID           string                 `json:"run_id"`
	StartedAt       time.Time              `json:"started_at"`
	FinishedAt      time.Time              `json:"finished_at"`
	CatalogVersion  string                 `json:"catalog_version"`
	Incomplete      bool                   `json:"incomplete,omitempty"`
	Verification    ReportVerification     `json:"verification"`
	Classifications []ClassificationRecord `json:"classifications"`
}
