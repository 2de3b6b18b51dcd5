package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// payload mirrors the JSON contract the classification prompt demands.
// Confidence and Evidence stay raw because models routinely return a quoted
// number or a bare string where an array was asked for; coercion happens in
// validation, not decoding.
type payload struct {
	TypeID     string          `json:"type_id"`
	TypeName   string          `json:"type_name"`
	Confidence json.RawMessage `json:"confidence"`
	Rationale  string          `json:"rationale"`
	Evidence   json.RawMessage `json:"evidence"`
}

var fenceRegex = regexp.MustCompile("```(?:json)?\\s*\\n?|\\n?```")

var errNoPayload = errors.New("no JSON object found in response")

// extractPayload locates the first syntactically valid JSON object embedded
// in raw model output, tolerating surrounding commentary and markdown
// fences.
func extractPayload(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if json.Valid([]byte(text)) && strings.HasPrefix(text, "{") {
		return text, nil
	}

	cleaned := strings.TrimSpace(fenceRegex.ReplaceAllString(text, ""))
	if json.Valid([]byte(cleaned)) && strings.HasPrefix(cleaned, "{") {
		return cleaned, nil
	}

	if obj := firstJSONObject(cleaned); obj != "" {
		return obj, nil
	}
	return "", errNoPayload
}

// firstJSONObject scans for the first balanced top-level {...} span that
// parses as JSON. Braces inside string literals are skipped.
func firstJSONObject(text string) string {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			c := text[i]
			switch {
			case escaped:
				escaped = false
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate
					}
					i = len(text)
				}
			}
		}
	}
	return ""
}

// coerceConfidence normalizes whatever the model put in the confidence
// field to a float together with any validation notes. Numeric strings are
// accepted; everything else defaults to zero.
func coerceConfidence(raw json.RawMessage) (float64, []string) {
	if len(raw) == 0 {
		return 0, []string{"confidence missing, defaulted to 0"}
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampConfidence(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			v, notes := clampConfidence(f)
			return v, append([]string{"confidence was a quoted number"}, notes...)
		}
	}
	return 0, []string{fmt.Sprintf("confidence %s is not numeric, defaulted to 0", string(raw))}
}

func clampConfidence(f float64) (float64, []string) {
	switch {
	case f < 0:
		return 0, []string{fmt.Sprintf("confidence %g below range, clamped to 0", f)}
	case f > 1:
		return 1, []string{fmt.Sprintf("confidence %g above range, clamped to 1", f)}
	default:
		return f, nil
	}
}

// coerceEvidence normalizes the evidence field to a string slice. A single
// string becomes a one-element slice, matching how lenient models answer.
func coerceEvidence(raw json.RawMessage) ([]string, []string) {
	if len(raw) == 0 {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			list = []string{}
		}
		return list, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, []string{"evidence was not a list"}
	}
	return []string{}, []string{"evidence field unusable, dropped"}
}
