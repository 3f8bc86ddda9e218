package iris

import (
	"math"
	"reflect"
	"testing"

	"go-iris-analyzer/pkg/models"
)

func TestAnalyzeInvalidSide(t *testing.T) {
	a := NewAnalyzer(DefaultCalibration())
	im := uniformImage(200, 200, 128)

	for _, side := range []EyeSide{"center", "", "LEFT"} {
		_, err := a.Analyze(im, side, DefaultOptions())
		if err == nil {
			t.Fatalf("side %q: expected error", side)
		}
		if _, ok := err.(*ValidationError); !ok {
			t.Errorf("side %q: expected *ValidationError, got %T", side, err)
		}
	}
}

func TestAnalyzeSyntheticEye(t *testing.T) {
	a := NewAnalyzer(DefaultCalibration())
	im := synthEye(500, 500, 50, 200, 30, 110, 200)

	features, err := a.Analyze(im, RightEye, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if features.EyeSide != "right" {
		t.Errorf("expected eye_side right, got %q", features.EyeSide)
	}
	if len(features.ZoneAnalysis) != ZoneCount {
		t.Errorf("expected %d zones, got %d", ZoneCount, len(features.ZoneAnalysis))
	}
	if features.PupilSizeRatio <= 0 || features.PupilSizeRatio >= 1 {
		t.Errorf("pupil ratio out of range: %f", features.PupilSizeRatio)
	}
	if features.CollaretteRegularity < 0 || features.CollaretteRegularity > 1 {
		t.Errorf("collarette regularity out of range: %f", features.CollaretteRegularity)
	}
	if features.DetectedMarkings == nil {
		t.Error("detected_markings must never be nil")
	}
	if features.OverallDensity == "" {
		t.Error("overall density must be set")
	}

	total := 0.0
	for _, frac := range features.ColorDistribution {
		total += frac
	}
	if math.Abs(total-1) > 0.05 {
		t.Errorf("color distribution should sum to ~1, got %f", total)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer(DefaultCalibration())
	im := synthEye(400, 400, 40, 160, 30, 110, 200)

	first, err := a.Analyze(im, LeftEye, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Analyze(im, LeftEye, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated analysis of the same image must produce identical results")
	}
}

func TestAnalyzeRoundsToTwoDecimals(t *testing.T) {
	a := NewAnalyzer(DefaultCalibration())
	im := synthEye(400, 400, 40, 160, 35, 117, 205)

	features, err := a.Analyze(im, RightEye, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkRounded := func(name string, v float64) {
		t.Helper()
		if math.Round(v*100)/100 != v {
			t.Errorf("%s not rounded to two decimals: %v", name, v)
		}
	}
	checkRounded("pupil_size_ratio", features.PupilSizeRatio)
	checkRounded("collarette_regularity", features.CollaretteRegularity)
	checkRounded("brightness mean", features.BrightnessAnalysis.Mean)
	checkRounded("brightness std", features.BrightnessAnalysis.Std)
	for key, z := range features.ZoneAnalysis {
		checkRounded("zone "+key+" mean", z.MeanBrightness)
		checkRounded("zone "+key+" variability", z.Variability)
	}
}

func TestAssembleRejectsMissingParts(t *testing.T) {
	if _, err := assemble(RightEye, nil, nil, nil, models.LymphaticSigns{}); err == nil {
		t.Error("assemble must reject a nil feature set")
	}

	fs := &featureSet{zones: map[string]models.ZoneInfo{}}
	if _, err := assemble("center", fs, nil, nil, models.LymphaticSigns{}); err == nil {
		t.Error("assemble must reject an invalid side")
	}
	if _, err := assemble(RightEye, fs, nil, nil, models.LymphaticSigns{}); err != nil {
		t.Errorf("unexpected error on valid inputs: %v", err)
	}
}
