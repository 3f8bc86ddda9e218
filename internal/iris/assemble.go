package iris

import (
	"math"

	"go-iris-analyzer/pkg/models"
)

// assemble builds the terminal IrisFeatures record from the extractor
// outputs. All floating-point values are rounded to two decimals so repeated
// runs over the same image serialize identically.
func assemble(side EyeSide, fs *featureSet, markings []models.Marking, furrows []models.Furrow, lymph models.LymphaticSigns) (*models.IrisFeatures, error) {
	if !side.Valid() {
		return nil, &ValidationError{Reason: "eye side must be \"left\" or \"right\""}
	}
	if fs == nil || fs.zones == nil {
		return nil, &ValidationError{Reason: "zone analysis missing"}
	}

	zones := make(map[string]models.ZoneInfo, len(fs.zones))
	for k, z := range fs.zones {
		z.MeanBrightness = round2(z.MeanBrightness)
		z.Variability = round2(z.Variability)
		zones[k] = z
	}

	dist := make(map[string]float64, len(fs.colorDistribution))
	for k, v := range fs.colorDistribution {
		dist[k] = round2(v)
	}

	out := &models.IrisFeatures{
		EyeSide:              string(side),
		DominantColor:        fs.dominantColor,
		ColorDistribution:    dist,
		PupilSizeRatio:       round2(fs.pupilSizeRatio),
		CollaretteRegularity: round2(fs.collaretteRegularity),
		DetectedMarkings:     markings,
		ZoneAnalysis:         zones,
		NerveRingsCount:      fs.nerveRingsCount,
		RadialFurrows:        make([]models.Furrow, 0, len(furrows)),
		OverallDensity:       fs.overallDensity,
		LymphaticSigns:       lymph,
		BrightnessAnalysis: models.BrightnessAnalysis{
			Mean:              round2(fs.brightness.Mean),
			Std:               round2(fs.brightness.Std),
			Min:               round2(fs.brightness.Min),
			Max:               round2(fs.brightness.Max),
			OverallAssessment: fs.brightness.OverallAssessment,
		},
	}
	if out.DetectedMarkings == nil {
		out.DetectedMarkings = []models.Marking{}
	}
	for _, f := range furrows {
		f.Angle = round2(f.Angle)
		f.Strength = round2(f.Strength)
		out.RadialFurrows = append(out.RadialFurrows, f)
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
