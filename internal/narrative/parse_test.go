package narrative

import (
	"testing"
)

func TestParseAnalysisFencedJSON(t *testing.T) {
	raw := "```json\n" + `{
  "findings": ["Lacuna at 6:00 in the right iris"],
  "organ_correlations": {"6:00": "kidney/adrenal"},
  "recommendations": [{"text": "Increase hydration"}],
  "confidence_notes": "Based on extracted features only."
}` + "\n```"

	got := parseAnalysis(raw)

	if len(got.Findings) != 1 || got.Findings[0].Display() != "Lacuna at 6:00 in the right iris" {
		t.Errorf("unexpected findings: %+v", got.Findings)
	}
	if got.OrganCorrelations["6:00"].Display() != "kidney/adrenal" {
		t.Errorf("unexpected correlations: %+v", got.OrganCorrelations)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].Display() != "Increase hydration" {
		t.Errorf("unexpected recommendations: %+v", got.Recommendations)
	}
	if got.ConfidenceNotes != "Based on extracted features only." {
		t.Errorf("unexpected confidence notes: %q", got.ConfidenceNotes)
	}
}

func TestParseAnalysisStructuredValues(t *testing.T) {
	raw := `{
  "findings": [{"condition": "congestion", "description": "beaded rim", "notes": "upper quadrant"}],
  "organ_correlations": {},
  "recommendations": [],
  "confidence_notes": ""
}`

	got := parseAnalysis(raw)
	if len(got.Findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(got.Findings))
	}
	if got.Findings[0].Display() != "congestion - beaded rim - upper quadrant" {
		t.Errorf("unexpected display: %q", got.Findings[0].Display())
	}
	if got.ConfidenceNotes == "" {
		t.Error("empty confidence notes must receive the default")
	}
}

func TestParseAnalysisBraceSlice(t *testing.T) {
	raw := `The reading follows. {"findings": ["clear iris"], "organ_correlations": {}, "recommendations": [], "confidence_notes": "ok"} Thank you.`

	got := parseAnalysis(raw)
	if len(got.Findings) != 1 || got.Findings[0].Display() != "clear iris" {
		t.Errorf("brace slice failed: %+v", got.Findings)
	}
}

func TestParseAnalysisRawFallback(t *testing.T) {
	raw := "I could not produce structured output, but the iris looks unremarkable."

	got := parseAnalysis(raw)
	if len(got.Findings) != 1 || got.Findings[0].Display() != raw {
		t.Errorf("fallback must carry the raw text as a single finding: %+v", got.Findings)
	}
	if got.ConfidenceNotes != "Response format was non-standard; raw analysis provided." {
		t.Errorf("unexpected confidence notes: %q", got.ConfidenceNotes)
	}
	if got.OrganCorrelations == nil {
		t.Error("organ correlations must never be nil")
	}
}

func TestSanitizeModelJSON(t *testing.T) {
	raw := "```json\n{\n  // model commentary\n  \"findings\": [\"a\",]\n}\n```"

	cleaned := sanitizeModelJSON(raw)
	want := "{\n\n  \"findings\": [\"a\"]\n}"
	if cleaned != want {
		t.Errorf("unexpected sanitized output:\n%q\nwant:\n%q", cleaned, want)
	}
}
