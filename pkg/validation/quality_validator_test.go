package validation

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func uniformImage(w, h int, lum uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{lum, lum, lum, 255})
		}
	}
	return img
}

// noisyImage adds enough pixel-level contrast that the Laplacian variance
// clears the sharpness threshold.
func noisyImage(w, h int, base uint8) *image.NRGBA {
	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := int(base) + rng.Intn(80) - 40
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			c := uint8(v)
			img.SetNRGBA(x, y, color.NRGBA{c, c, c, 255})
		}
	}
	return img
}

func issueTypes(issues []QualityIssue) map[string]bool {
	types := make(map[string]bool)
	for _, issue := range issues {
		types[issue.Type] = true
	}
	return types
}

func TestValidateCleanImage(t *testing.T) {
	v := NewQualityValidator()
	issues := v.Validate(noisyImage(400, 400, 128))
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
	if warnings := v.Warnings(noisyImage(400, 400, 128)); warnings != nil {
		t.Errorf("expected nil warnings, got %v", warnings)
	}
}

func TestValidateDarkImage(t *testing.T) {
	v := NewQualityValidator()
	types := issueTypes(v.Validate(noisyImage(400, 400, 20)))
	if !types["brightness"] {
		t.Error("expected a brightness issue for a dark image")
	}
}

func TestValidateOverexposedImage(t *testing.T) {
	v := NewQualityValidator()
	types := issueTypes(v.Validate(uniformImage(400, 400, 245)))
	if !types["brightness"] {
		t.Error("expected a brightness issue for an overexposed image")
	}
}

func TestValidateSmallImage(t *testing.T) {
	v := NewQualityValidator()
	types := issueTypes(v.Validate(noisyImage(100, 100, 128)))
	if !types["resolution"] {
		t.Error("expected a resolution issue for a small image")
	}
}

func TestValidateBlurryImage(t *testing.T) {
	v := NewQualityValidator()
	types := issueTypes(v.Validate(uniformImage(400, 400, 128)))
	if !types["blurriness"] {
		t.Error("expected a blurriness issue for a flat image")
	}
}

func TestValidateCustomThresholds(t *testing.T) {
	v := NewQualityValidatorWithThresholds(QualityThresholds{
		MinLaplacianVariance: 0,
		MinBrightness:        0,
		MaxBrightness:        255,
		MinWidth:             10,
		MinHeight:            10,
	})
	if issues := v.Validate(uniformImage(50, 50, 128)); len(issues) != 0 {
		t.Errorf("expected no issues with relaxed thresholds, got %+v", issues)
	}
}
