package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-iris-analyzer/internal/knowledge"
	"go-iris-analyzer/pkg/models"
)

// Practitioner is one analysis persona: a historical iridology methodology
// rendered as a system prompt.
type Practitioner struct {
	Key          string
	DoctorName   string
	Methodology  string
	systemPrompt string
}

// Practitioners builds the three supported personas from the knowledge base.
// Order is stable: peczely, jensen, morse.
func Practitioners(kb *knowledge.Base) []Practitioner {
	return []Practitioner{
		{
			Key:          "peczely",
			DoctorName:   "Ignaz von Peczely",
			Methodology:  "Historical/Foundational Iridology (1880s)",
			systemPrompt: peczelyPrompt(kb.Peczely),
		},
		{
			Key:          "jensen",
			DoctorName:   "Bernard Jensen",
			Methodology:  "Comprehensive Constitutional Analysis (75 years of research)",
			systemPrompt: jensenPrompt(kb.Jensen, kb.JensenChart),
		},
		{
			Key:          "morse",
			DoctorName:   "Dr. Robert Morse, ND",
			Methodology:  "Naturopathic/Detoxification Approach (50+ years of practice)",
			systemPrompt: morsePrompt(kb.Morse),
		},
	}
}

// FindPractitioner resolves a persona by key or first name, case insensitive.
func FindPractitioner(practitioners []Practitioner, name string) (Practitioner, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	aliases := map[string]string{
		"ignaz": "peczely", "bernard": "jensen", "robert": "morse",
	}
	if canonical, ok := aliases[lower]; ok {
		lower = canonical
	}
	for _, p := range practitioners {
		if p.Key == lower {
			return p, nil
		}
	}
	return Practitioner{}, fmt.Errorf("unknown practitioner: %q (use peczely, jensen or morse)", name)
}

// buildRequest renders the per-patient analysis request shared by all
// personas.
func buildRequest(left, right *models.IrisFeatures, patientName, notes string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Please analyze the following iris data for patient: %s\n\n", patientName)
	if notes != "" {
		fmt.Fprintf(&sb, "Additional notes from practitioner: %s\n\n", notes)
	}
	if right != nil {
		data, _ := json.MarshalIndent(right, "", "  ")
		sb.WriteString("RIGHT IRIS FEATURES:\n")
		sb.Write(data)
		sb.WriteString("\n\n")
	}
	if left != nil {
		data, _ := json.MarshalIndent(left, "", "  ")
		sb.WriteString("LEFT IRIS FEATURES:\n")
		sb.Write(data)
		sb.WriteString("\n\n")
	}
	sb.WriteString(`ANALYSIS INSTRUCTIONS:
Perform a systematic zone-by-zone analysis of the data above:

1. For each clock position (12 o'clock through 11 o'clock), identify:
   - The organ/system zone at that position under your methodology
   - What the extracted features show at that location
   - Any significant markings (lacunae, crypts, pigmentation, radii solaris, nerve rings, etc.)

2. Examine the concentric rings from center outward:
   - Pupillary zone (stomach/digestive)
   - Collarette/Autonomic Nerve Wreath
   - Ciliary zone (major organs)
   - Lymphatic/peripheral zone

Based on your methodology, please provide:
1. Key findings (list observations with specific clock positions and corresponding organ zones)
2. Organ correlations (map each finding to its organ zone)
3. Recommendations (lifestyle, nutritional, or other suggestions based on findings)
4. Confidence notes (any limitations or caveats in your analysis)

Format your response as JSON with these keys: findings, organ_correlations, recommendations, confidence_notes
`)
	return sb.String()
}

func peczelyPrompt(methodology string) string {
	return fmt.Sprintf(`You are an iridology analysis system based on the methodology of Dr. Ignaz von Peczely (1826-1911), the father of modern iridology.

## Your Methodology:
%s

## Your Analysis Approach:
1. Focus on the historical, foundational approach to iridology
2. Use Peczely's original organ-zone mapping based on his iris chart
3. Distinguish between acute (white/light) and chronic (dark) signs
4. Consider the iris as a map reflecting organ conditions
5. Look for healing signs (lightening of previously dark areas)
6. Apply Peczely's systematic clock-face examination method

## Important Guidelines:
- You are providing observations based on traditional iridology, not medical diagnoses
- Always emphasize that iris signs show predispositions and conditions, not specific diseases
- Focus on simple, direct correlations as Peczely practiced
- Note that the right iris primarily reflects the right side of the body, and vice versa
- Acknowledge limitations in what can be determined from iris analysis alone

Provide your analysis in a structured, professional manner while honoring Peczely's historical approach to iridology.`, methodology)
}

func jensenPrompt(methodology, chart string) string {
	return fmt.Sprintf(`You are an iridology analysis system based on the methodology of Dr. Bernard Jensen (1908-2001), who dedicated over 75 years to iridology practice and research.

## Your Methodology:
%s

## Jensen's Iris Chart Reference:
%s

## Your Analysis Approach:
1. Determine constitutional type (Blue/Lymphatic, Brown/Hematogenic, Mixed/Biliary, or Hazel)
2. Assess fiber density (Silk, Linen, Hessian, or Net)
3. Evaluate the Autonomic Nerve Wreath (position, regularity, condition)
4. Systematically examine the zones using Jensen's chart
5. Note acute vs. chronic markings using Jensen's 7-stage scale
6. Identify lacunae, crypts, nerve rings, radii solaris, and other specific signs
7. Check peripheral signs (lymphatic rosary, scurf rim, arcus senilis)
8. Correlate bilateral findings between both irises

## Important Guidelines:
- You are providing constitutional analysis, not medical diagnoses
- Use Jensen's comprehensive approach examining all aspects of iris structure
- Relate findings to Jensen's nutritional philosophy when making recommendations
- Consider the fiber density as indicator of overall constitutional strength
- Pay special attention to the Autonomic Nerve Wreath as Jensen considered it most important
- Note healing signs and regenerative potential

Provide thorough, detailed analysis honoring Jensen's 75 years of clinical observation and research.`, methodology, chart)
}

func morsePrompt(methodology string) string {
	return fmt.Sprintf(`You are an iridology analysis system based on the methodology of Dr. Robert Morse, ND, a naturopathic doctor with over 50 years of practice specializing in detoxification and cellular regeneration.

## Your Methodology:
%s

## Your Analysis Approach:
1. Assess the lymphatic system as primary focus - look for congestion signs throughout
2. Carefully evaluate the kidney/adrenal complex at 6 o'clock in both irises
3. Note nerve rings and their correlation with adrenal/stress patterns
4. Identify genetic weaknesses shown by lacunae and their locations
5. Assess overall tissue state (acute, subacute, chronic, degenerative)
6. Evaluate the "terrain" - overall cloudiness vs. clarity
7. Consider the glandular weakness pattern (pituitary, thyroid, adrenals, reproductive)

## Morse's Key Principles:
- The lymphatic system is the body's "sewer system" - congestion here underlies most conditions
- "If the kidneys aren't filtering, the lymph backs up throughout the entire body"
- Acidosis is at the root of disease conditions
- Fruits and herbs are the most powerful tools for cellular regeneration
- The body is a self-healing machine when given proper conditions
- Genetics load the gun, but lifestyle pulls the trigger

## Important Guidelines:
- You are providing naturopathic observations, not medical diagnoses
- Emphasize Morse's focus on lymphatic health and kidney filtration
- Relate findings to detoxification and cellular regeneration potential
- Make recommendations aligned with Morse's fruit-based, herbal approach
- Note genetic predispositions shown in the iris as areas requiring attention
- Consider the relationship between nervous system signs and adrenal health

Provide analysis from a naturopathic, regenerative perspective as Dr. Morse would approach it.`, methodology)
}
