package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/auditscan/auditscan/internal/catalog"
	"github.com/auditscan/auditscan/internal/core/domain"
	"github.com/auditscan/auditscan/internal/core/ports"
)

// Rules is the deterministic classifier variant. It derives a keyword set
// per catalog type from the type's name and example snippets and scores
// documents by keyword hits. No network, no model; useful as a baseline
// and for air-gapped runs.
type Rules struct {
	catalog     *catalog.Catalog
	keywords    map[string][]string
	maxEvidence int
}

func NewRules(cat *catalog.Catalog, maxEvidence int) *Rules {
	if maxEvidence <= 0 {
		maxEvidence = 5
	}
	keywords := make(map[string][]string, cat.Len())
	for _, t := range cat.All() {
		keywords[t.ID] = deriveKeywords(t)
	}
	return &Rules{catalog: cat, keywords: keywords, maxEvidence: maxEvidence}
}

// Classify scores every type and returns the best match, or the unknown
// sentinel when nothing scores. Ties resolve to the earlier catalog type
// so results are stable across runs.
func (r *Rules) Classify(_ context.Context, doc domain.NormalizedDocument) (domain.Candidate, error) {
	text := strings.ToLower(doc.Text)
	name := strings.ToLower(doc.ID)

	bestID := domain.TypeUnknown
	bestScore := 0.0
	var bestHits []string

	for _, t := range r.catalog.All() {
		kws := r.keywords[t.ID]
		if len(kws) == 0 {
			continue
		}
		var hits []string
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				hits = append(hits, kw)
			}
		}
		score := float64(len(hits)) / float64(len(kws))
		if strings.Contains(name, strings.ToLower(t.ID)) {
			// Filename agreement is a strong signal on its own.
			score += 0.5
		}
		if score > 1 {
			score = 1
		}
		if score > bestScore {
			bestID = t.ID
			bestScore = score
			bestHits = hits
		}
	}

	if bestID == domain.TypeUnknown {
		return domain.Candidate{
			TypeID:     domain.TypeUnknown,
			TypeName:   "Unknown",
			Confidence: 0,
			Rationale:  "no configured type keywords matched",
			Evidence:   []string{},
		}, nil
	}

	t, _ := r.catalog.Get(bestID)
	return domain.Candidate{
		TypeID:     bestID,
		TypeName:   t.Name,
		Confidence: bestScore,
		Rationale:  fmt.Sprintf("matched %d of %d keywords for %q", len(bestHits), len(r.keywords[bestID]), t.Name),
		Evidence:   evidenceLines(doc.Text, bestHits, r.maxEvidence),
	}, nil
}

// deriveKeywords lowercases and splits the type name and example snippets,
// keeping words long enough to be discriminative.
func deriveKeywords(t catalog.DocumentType) []string {
	seen := map[string]bool{}
	var kws []string
	add := func(s string) {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			w = strings.Trim(w, ".,;:!?\"'()")
			if len(w) < 4 || seen[w] {
				continue
			}
			seen[w] = true
			kws = append(kws, w)
		}
	}
	add(t.Name)
	for _, ex := range t.Examples {
		add(ex)
	}
	return kws
}

// evidenceLines returns up to max verbatim lines containing a hit keyword.
func evidenceLines(text string, hits []string, max int) []string {
	evidence := []string{}
	if len(hits) == 0 {
		return evidence
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, kw := range hits {
			if strings.Contains(lower, kw) {
				evidence = append(evidence, trimmed)
				break
			}
		}
		if len(evidence) >= max {
			break
		}
	}
	return evidence
}

var _ ports.Classifier = (*Rules)(nil)
