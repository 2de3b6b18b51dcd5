package classifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/auditscan/auditscan/internal/catalog"
)

const truncationMarker = "... [truncated]"

// buildClassificationPrompt embeds the (possibly truncated) document text
// and the enumerated catalog, and demands a single best-fit type id or
// "unknown" as strict JSON. Catalog order is preserved so identical inputs
// produce an identical prompt.
func buildClassificationPrompt(cat *catalog.Catalog, documentID, text string, maxChars, maxEvidence int) string {
	snippet := text
	if maxChars > 0 && len(snippet) > maxChars {
		// Back up to a rune boundary so the cut never leaves an invalid
		// UTF-8 tail in the prompt.
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut] + truncationMarker
	}

	var types strings.Builder
	for _, t := range cat.All() {
		fmt.Fprintf(&types, "Type ID: %s\nType Name: %s\nDescription: %s\nRequired: %t\n", t.ID, t.Name, t.Description, t.Required)
		if len(t.Examples) > 0 {
			types.WriteString("Example content:\n")
			for _, ex := range t.Examples {
				fmt.Fprintf(&types, "  - %s\n", ex)
			}
		}
		types.WriteString("\n")
	}

	return fmt.Sprintf(`You are a document classifier. Analyze the document content and pick the
single best matching document type from the list below, using semantic
understanding rather than keyword matching.

Document: %s

Content:
%s

Available document types:
%s
If the document clearly matches none of the types, use type_id "unknown"
and type_name "Unknown".

Return a strict JSON object with exactly these fields, no markdown and no
extra keys:
{
  "type_id": "id_of_document_type",
  "type_name": "Name of Document Type",
  "confidence": 0.0,
  "rationale": "why this type was chosen",
  "evidence": ["up to %d exact quotes from the document"]
}
`, documentID, snippet, types.String(), maxEvidence)
}
