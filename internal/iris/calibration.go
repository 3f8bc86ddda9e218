package iris

// Calibration collects the tunable constants of the extraction pipeline.
// The defaults come from practice on cropped eye photographs around
// 400-1000px; none of them is a physical constant. Values load from an
// optional YAML file so they can be adjusted without a rebuild.
type Calibration struct {
	// Loader
	MinDimension int `yaml:"min_dimension"`

	// Preprocessor
	GlareThreshold  float64 `yaml:"glare_threshold"`
	GlareSaturation float64 `yaml:"glare_saturation"`
	GlareDilate     int     `yaml:"glare_dilate"`
	GlareBlurRadius float64 `yaml:"glare_blur_radius"`
	EnhanceMidpoint float64 `yaml:"enhance_midpoint"`
	EnhanceFactor   float64 `yaml:"enhance_factor"`

	// Localizer
	LocalizerBlurRadius float64 `yaml:"localizer_blur_radius"`
	LocalizerAngles     int     `yaml:"localizer_angles"`
	PupilMinScore       float64 `yaml:"pupil_min_score"`
	IrisMinScore        float64 `yaml:"iris_min_score"`
	DefaultPupilFrac    float64 `yaml:"default_pupil_frac"`
	DefaultIrisFrac     float64 `yaml:"default_iris_frac"`

	// Zone statistics
	DarkBrightnessMax   float64 `yaml:"dark_brightness_max"`
	BrightBrightnessMin float64 `yaml:"bright_brightness_min"`
	DenseVariabilityMin float64 `yaml:"dense_variability_min"`

	// Collarette
	CollaretteFrac    float64 `yaml:"collarette_frac"`
	CollaretteSamples int     `yaml:"collarette_samples"`

	// Nerve rings
	NerveRingRadials       int     `yaml:"nerve_ring_radials"`
	NerveRingGradientMin   float64 `yaml:"nerve_ring_gradient_min"`
	NerveRingMinSeparation int     `yaml:"nerve_ring_min_separation"`
	NerveRingMax           int     `yaml:"nerve_ring_max"`

	// Density scale, coarsest fiber structure last. The last label doubles
	// as the default for texture-free input.
	DensityScale          []string `yaml:"density_scale"`
	DensityTextureCuts    []float64 `yaml:"density_texture_cuts"`
	DensityVariabilityCuts []float64 `yaml:"density_variability_cuts"`

	// Markings
	BrightPercentile float64 `yaml:"bright_percentile"`
	DarkPercentile   float64 `yaml:"dark_percentile"`
	MarkingMinArea   int     `yaml:"marking_min_area"`
	MarkingMaxArea   int     `yaml:"marking_max_area"`
	MarkingMaxCount  int     `yaml:"marking_max_count"`
	LacunaMinArea    int     `yaml:"lacuna_min_area"`

	// Furrows
	FurrowRadials     int     `yaml:"furrow_radials"`
	FurrowGradientMin float64 `yaml:"furrow_gradient_min"`
	FurrowMinCoverage float64 `yaml:"furrow_min_coverage"`
	FurrowSpanFrac    float64 `yaml:"furrow_span_frac"`
	FurrowMaxCount    int     `yaml:"furrow_max_count"`

	// Lymphatic rim
	LymphZoneFrac      float64 `yaml:"lymph_zone_frac"`
	LymphBeadMinArea   int     `yaml:"lymph_bead_min_area"`
	LymphBeadMaxArea   int     `yaml:"lymph_bead_max_area"`
	RosaryMinBeads     int     `yaml:"rosary_min_beads"`
	CongestionHighBeads int    `yaml:"congestion_high_beads"`
	ScurfRimMaxMean    float64 `yaml:"scurf_rim_max_mean"`
}

// DefaultCalibration returns the stock tuning.
func DefaultCalibration() Calibration {
	return Calibration{
		MinDimension: 50,

		GlareThreshold:  240,
		GlareSaturation: 0.12,
		GlareDilate:     2,
		GlareBlurRadius: 7,
		EnhanceMidpoint: 0.5,
		EnhanceFactor:   5.0,

		LocalizerBlurRadius: 2.0,
		LocalizerAngles:     36,
		PupilMinScore:       12.0,
		IrisMinScore:        6.0,
		DefaultPupilFrac:    0.20,
		DefaultIrisFrac:     0.66,

		DarkBrightnessMax:   80,
		BrightBrightnessMin: 180,
		DenseVariabilityMin: 45,

		CollaretteFrac:    0.33,
		CollaretteSamples: 72,

		NerveRingRadials:       12,
		NerveRingGradientMin:   12.0,
		NerveRingMinSeparation: 5,
		NerveRingMax:           10,

		DensityScale:           []string{"silk", "linen", "hessian", "net"},
		DensityTextureCuts:     []float64{500, 300, 150},
		DensityVariabilityCuts: []float64{40, 30, 0},

		BrightPercentile: 0.98,
		DarkPercentile:   0.02,
		MarkingMinArea:   10,
		MarkingMaxArea:   500,
		MarkingMaxCount:  20,
		LacunaMinArea:    100,

		FurrowRadials:     36,
		FurrowGradientMin: 12.0,
		FurrowMinCoverage: 0.3,
		FurrowSpanFrac:    0.7,
		FurrowMaxCount:    10,

		LymphZoneFrac:       0.85,
		LymphBeadMinArea:    10,
		LymphBeadMaxArea:    200,
		RosaryMinBeads:      5,
		CongestionHighBeads: 15,
		ScurfRimMaxMean:     80,
	}
}

// DefaultDensity is the label reported for texture-free input.
func (c Calibration) DefaultDensity() string {
	if len(c.DensityScale) == 0 {
		return "normal"
	}
	return c.DensityScale[len(c.DensityScale)-1]
}
