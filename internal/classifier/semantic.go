// Package classifier implements the closed set of classification variants:
// a semantic (model-based) classifier and a deterministic rule-based one.
// Both produce a single-type Candidate; converting candidates and failures
// into records is the engine's job.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/auditscan/auditscan/internal/catalog"
	"github.com/auditscan/auditscan/internal/core/domain"
	"github.com/auditscan/auditscan/internal/core/ports"
)

// Semantic classifies documents by prompting a completion model and
// validating its structured response against the catalog.
type Semantic struct {
	client      ports.CompletionClient
	catalog     *catalog.Catalog
	maxChars    int
	maxEvidence int
	maxTokens   int
}

type SemanticOptions struct {
	// MaxDocumentChars truncates document text embedded in the prompt.
	MaxDocumentChars int
	// MaxEvidence caps verbatim excerpts kept on a candidate.
	MaxEvidence int
	// MaxTokens bounds the completion response.
	MaxTokens int
}

func NewSemantic(client ports.CompletionClient, cat *catalog.Catalog, opts SemanticOptions) *Semantic {
	if opts.MaxDocumentChars <= 0 {
		opts.MaxDocumentChars = 4000
	}
	if opts.MaxEvidence <= 0 {
		opts.MaxEvidence = 5
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	return &Semantic{
		client:      client,
		catalog:     cat,
		maxChars:    opts.MaxDocumentChars,
		maxEvidence: opts.MaxEvidence,
		maxTokens:   opts.MaxTokens,
	}
}

// Classify sends the classification prompt and turns the raw completion
// into a validated Candidate. Errors carry a domain kind: ErrTransport for
// failed calls, ErrParse when no payload can be located, ErrValidation when
// the payload cannot be decoded. Out-of-range or unknown values inside a
// decodable payload are coerced with notes instead of failing.
func (s *Semantic) Classify(ctx context.Context, doc domain.NormalizedDocument) (domain.Candidate, error) {
	prompt := buildClassificationPrompt(s.catalog, doc.ID, doc.Text, s.maxChars, s.maxEvidence)

	raw, err := s.client.Complete(ctx, prompt, s.maxTokens)
	if err != nil {
		return domain.Candidate{}, domain.WrapError(domain.ErrTransport, "completion call", err)
	}

	body, err := extractPayload(raw)
	if err != nil {
		return domain.Candidate{}, domain.WrapError(domain.ErrParse, "locate payload", fmt.Errorf("%w in %q", err, truncate(raw, 200)))
	}

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return domain.Candidate{}, domain.WrapError(domain.ErrValidation, "decode payload", err)
	}

	return s.validate(p), nil
}

// validate applies the coercion rules: unknown type ids collapse to the
// sentinel with a note, confidence is clamped into [0,1], missing rationale
// and evidence default to empty values.
func (s *Semantic) validate(p payload) domain.Candidate {
	var notes []string

	typeID := p.TypeID
	typeName := p.TypeName
	switch {
	case typeID == domain.TypeUnknown:
		typeName = "Unknown"
	case typeID == "":
		notes = append(notes, "type_id missing, coerced to unknown")
		typeID = domain.TypeUnknown
		typeName = "Unknown"
	case !s.catalog.Contains(typeID):
		notes = append(notes, fmt.Sprintf("type_id %q not in catalog, coerced to unknown", typeID))
		typeID = domain.TypeUnknown
		typeName = "Unknown"
	default:
		t, _ := s.catalog.Get(typeID)
		typeName = t.Name
	}

	confidence, confNotes := coerceConfidence(p.Confidence)
	notes = append(notes, confNotes...)

	evidence, evNotes := coerceEvidence(p.Evidence)
	notes = append(notes, evNotes...)
	if len(evidence) > s.maxEvidence {
		evidence = evidence[:s.maxEvidence]
	}

	return domain.Candidate{
		TypeID:          typeID,
		TypeName:        typeName,
		Confidence:      confidence,
		Rationale:       p.Rationale,
		Evidence:        evidence,
		ValidationNotes: notes,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ ports.Classifier = (*Semantic)(nil)

// ErrUnsupportedMode is returned when configuration names an unknown
// classifier variant.
var ErrUnsupportedMode = errors.New("unsupported classifier mode")

// ForMode selects a variant from the closed set by configuration value.
func ForMode(mode string, client ports.CompletionClient, cat *catalog.Catalog, opts SemanticOptions) (ports.Classifier, error) {
	switch mode {
	case "semantic", "":
		return NewSemantic(client, cat, opts), nil
	case "rules":
		return NewRules(cat, opts.MaxEvidence), nil
	default:
		return nil, domain.WrapError(domain.ErrConfig, "select classifier", fmt.Errorf("%w: %q", ErrUnsupportedMode, mode))
	}
}
