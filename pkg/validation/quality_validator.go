// Package validation grades uploaded eye photographs before analysis. Issues
// are advisory: the pipeline still runs, but the caller sees what may have
// degraded the result.
package validation

import (
	"image"
)

// QualityThresholds defines configurable thresholds for photo validation
type QualityThresholds struct {
	// Sharpness thresholds
	MinLaplacianVariance float64

	// Brightness thresholds (0..255 luminance)
	MinBrightness float64
	MaxBrightness float64

	// Resolution thresholds
	MinWidth  int
	MinHeight int
}

// DefaultQualityThresholds returns the default thresholds, tuned for cropped
// eye photographs rather than document scans.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinLaplacianVariance: 50.0,
		MinBrightness:        40.0,
		MaxBrightness:        220.0,
		MinWidth:             200,
		MinHeight:            200,
	}
}

// QualityValidator handles photo quality validation logic
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
}

// Validate inspects the photograph and returns any quality issues found.
func (v *QualityValidator) Validate(img image.Image) []QualityIssue {
	var issues []QualityIssue

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < v.thresholds.MinWidth || h < v.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:        "resolution",
			Message:     "Image resolution is low; zone statistics may be unreliable",
			Severity:    "warning",
			ActualValue: float64(w * h),
		})
	}

	mean, lapVar := luminanceStats(img)
	if mean < v.thresholds.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        "brightness",
			Message:     "Image is too dark for reliable iris analysis",
			Severity:    "warning",
			ActualValue: mean,
		})
	}
	if mean > v.thresholds.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        "brightness",
			Message:     "Image is overexposed; markings may be washed out",
			Severity:    "warning",
			ActualValue: mean,
		})
	}
	if lapVar < v.thresholds.MinLaplacianVariance {
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     "Image appears blurry; fiber detail will be lost",
			Severity:    "warning",
			ActualValue: lapVar,
		})
	}

	return issues
}

// Warnings renders the issues as plain strings for API responses.
func (v *QualityValidator) Warnings(img image.Image) []string {
	issues := v.Validate(img)
	if len(issues) == 0 {
		return nil
	}
	warnings := make([]string, 0, len(issues))
	for _, issue := range issues {
		warnings = append(warnings, issue.Message)
	}
	return warnings
}

// luminanceStats computes the mean luminance and the Laplacian variance in
// one pass over a subsampled grid. Subsampling keeps validation cheap on
// large uploads.
func luminanceStats(img image.Image) (mean, lapVar float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0, 0
	}

	step := 1
	if w*h > 500000 {
		step = 2
	}

	lum := func(x, y int) float64 {
		r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		return (0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8))
	}

	var sum, lapSum, lapSqSum float64
	var n, lapN int
	for y := 1; y < h-1; y += step {
		for x := 1; x < w-1; x += step {
			c := lum(x, y)
			sum += c
			n++

			lap := -4*c + lum(x-1, y) + lum(x+1, y) + lum(x, y-1) + lum(x, y+1)
			lapSum += lap
			lapSqSum += lap * lap
			lapN++
		}
	}
	if n == 0 {
		return 0, 0
	}

	mean = sum / float64(n)
	lapMean := lapSum / float64(lapN)
	lapVar = lapSqSum/float64(lapN) - lapMean*lapMean
	return mean, lapVar
}
