package iris

import (
	"go-iris-analyzer/pkg/models"
)

// Analyzer runs the full extraction pipeline for one eye photograph. It holds
// only immutable calibration, so a single Analyzer is safe to share across
// concurrent requests.
type Analyzer struct {
	cal Calibration
}

// NewAnalyzer creates an analyzer with the given calibration.
func NewAnalyzer(cal Calibration) *Analyzer {
	return &Analyzer{cal: cal}
}

// Calibration returns the active tuning.
func (a *Analyzer) Calibration() Calibration { return a.cal }

// Analyze runs preprocess, localization, zone mapping, feature extraction and
// marking detection, and assembles the terminal IrisFeatures record. The only
// failure mode is an invalid eye side (*ValidationError); inconclusive
// detection degrades to documented defaults instead of failing.
func (a *Analyzer) Analyze(im *Image, side EyeSide, opts Options) (*models.IrisFeatures, error) {
	if !side.Valid() {
		return nil, &ValidationError{Reason: "eye_side must be \"left\" or \"right\", got " + string(side)}
	}

	processed := a.Preprocess(im, opts)
	pupil, iris := a.Locate(processed)
	zm := NewZoneMap(pupil, iris, side)

	feats := a.extractFeatures(processed, zm)
	markings, furrows := a.DetectMarkings(processed, zm)
	lymph := a.detectLymphaticSigns(processed, zm)

	return assemble(side, feats, markings, furrows, lymph)
}

// Locate exposes boundary detection for callers that need the geometry
// itself, such as the annotator.
func (a *Analyzer) Locate(im *Image) (pupil, iris Circle) {
	return a.localize(im)
}
