package narrative

import (
	"encoding/json"
	"regexp"
	"strings"

	"go-iris-analyzer/pkg/models"
)

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// parseAnalysis converts raw model output into a PractitionerAnalysis.
// Malformed output never fails: the raw text becomes a single finding with a
// confidence note explaining the degradation.
func parseAnalysis(raw string) models.PractitionerAnalysis {
	cleaned := sanitizeModelJSON(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return fallbackAnalysis(raw)
	}

	var parsed models.PractitionerAnalysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		// Conservative brace slice before giving up.
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return fallbackAnalysis(raw)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
			return fallbackAnalysis(raw)
		}
	}

	if parsed.OrganCorrelations == nil {
		parsed.OrganCorrelations = map[string]models.TextValue{}
	}
	if parsed.ConfidenceNotes == "" {
		parsed.ConfidenceNotes = "Analysis based on available iris data."
	}
	return parsed
}

func fallbackAnalysis(raw string) models.PractitionerAnalysis {
	return models.PractitionerAnalysis{
		Findings:          []models.TextValue{{Text: strings.TrimSpace(raw)}},
		OrganCorrelations: map[string]models.TextValue{},
		ConfidenceNotes:   "Response format was non-standard; raw analysis provided.",
	}
}

// sanitizeModelJSON removes code fences, comments and trailing commas, and
// slices out the outermost JSON object.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
