package models

// ZoneKey identifies one cell of the fixed 12x3 polar grid over the iris
// annulus. Ring is one of "inner", "middle", "outer"; ClockSector runs 1..12
// starting at 12 o'clock and proceeding clockwise (mirrored for the left eye
// so that anatomically corresponding zones share sector numbers).
type ZoneKey struct {
	Ring        string `json:"ring"`
	ClockSector int    `json:"clock_sector"`
}

// ZoneInfo holds the descriptive statistics computed for a single zone.
type ZoneInfo struct {
	MeanBrightness float64 `json:"mean_brightness"`
	Variability    float64 `json:"variability"`
	Condition      string  `json:"condition"`
	Notes          string  `json:"notes"`
}

// Position is a pixel coordinate in the source image.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Marking is a discrete high-contrast blob detected inside the annulus.
type Marking struct {
	Type          string   `json:"type"`
	Position      Position `json:"position"`
	ClockPosition string   `json:"clock_position"`
	Zone          ZoneKey  `json:"zone"`
	Size          string   `json:"size"`
	Intensity     string   `json:"intensity"`
}

// Furrow is a detected radial line (radii solaris), reported in polar terms.
type Furrow struct {
	Angle         float64 `json:"angle"`
	ClockPosition string  `json:"clock_position"`
	Strength      float64 `json:"strength"`
}

// LymphaticSigns aggregates marking density at the outer iris rim.
type LymphaticSigns struct {
	RosaryBeadsCount         int    `json:"rosary_beads_count"`
	RosaryPresent            bool   `json:"rosary_present"`
	ScurfRimPresent          bool   `json:"scurf_rim_present"`
	LymphaticCongestionLevel string `json:"lymphatic_congestion_level"`
}

// BrightnessAnalysis summarizes the luminance distribution over the annulus.
type BrightnessAnalysis struct {
	Mean              float64 `json:"mean"`
	Std               float64 `json:"std"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	OverallAssessment string  `json:"overall_assessment"`
}

// IrisFeatures is the terminal aggregate produced by the extraction pipeline
// for one eye. It is created fresh per request and never persisted by the
// pipeline itself.
type IrisFeatures struct {
	EyeSide              string              `json:"eye_side"`
	DominantColor        string              `json:"dominant_color"`
	ColorDistribution    map[string]float64  `json:"color_distribution"`
	PupilSizeRatio       float64             `json:"pupil_size_ratio"`
	CollaretteRegularity float64             `json:"collarette_regularity"`
	DetectedMarkings     []Marking           `json:"detected_markings"`
	ZoneAnalysis         map[string]ZoneInfo `json:"zone_analysis"`
	NerveRingsCount      int                 `json:"nerve_rings_count"`
	RadialFurrows        []Furrow            `json:"radial_furrows"`
	OverallDensity       string              `json:"overall_density"`
	LymphaticSigns       LymphaticSigns      `json:"lymphatic_signs"`
	BrightnessAnalysis   BrightnessAnalysis  `json:"brightness_analysis"`
}

// PractitionerAnalysis is the narrative produced by one practitioner agent.
// Findings and correlations arrive from the language model as either plain
// strings or structured notes, hence TextValue.
type PractitionerAnalysis struct {
	PractitionerName  string               `json:"practitioner_name"`
	Methodology       string               `json:"methodology"`
	Findings          []TextValue          `json:"findings"`
	OrganCorrelations map[string]TextValue `json:"organ_correlations"`
	Recommendations   []TextValue          `json:"recommendations"`
	ConfidenceNotes   string               `json:"confidence_notes"`
}

// ImageAnalysis groups the per-eye feature records of one request.
type ImageAnalysis struct {
	LeftIris  *IrisFeatures `json:"left_iris"`
	RightIris *IrisFeatures `json:"right_iris"`
}

// AnalysisResponse is the combined response for a full analysis request.
type AnalysisResponse struct {
	PatientName           string                          `json:"patient_name"`
	Notes                 string                          `json:"notes,omitempty"`
	ImageAnalysis         ImageAnalysis                   `json:"image_analysis"`
	PractitionerAnalyses  map[string]PractitionerAnalysis `json:"practitioner_analyses"`
}

// ProcessImageResponse carries extracted features without narrative analysis.
type ProcessImageResponse struct {
	EyeSide  string        `json:"eye_side"`
	Features *IrisFeatures `json:"features"`
	Warnings []string      `json:"warnings,omitempty"`
}
