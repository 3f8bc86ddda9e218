package iris

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"go-iris-analyzer/pkg/models"
)

// featureSet carries everything the extractor computes ahead of assembly.
type featureSet struct {
	zones                map[string]models.ZoneInfo
	dominantColor        string
	colorDistribution    map[string]float64
	pupilSizeRatio       float64
	collaretteRegularity float64
	nerveRingsCount      int
	overallDensity       string
	brightness           models.BrightnessAnalysis
}

// extractFeatures computes the per-zone statistics and the global iris
// descriptors. Every one of the 36 zones is always present; a zone no pixel
// maps to gets zero-valued statistics rather than being omitted.
func (a *Analyzer) extractFeatures(im *Image, zm *ZoneMap) *featureSet {
	samples := a.collectZoneSamples(im, zm)

	fs := &featureSet{
		zones:          make(map[string]models.ZoneInfo, ZoneCount),
		pupilSizeRatio: float64(zm.Pupil.R) / float64(zm.Iris.R),
	}

	for _, key := range zm.Keys() {
		fs.zones[ZoneKeyString(key)] = a.zoneInfo(samples.perZone[zoneIndex(key)])
	}

	fs.dominantColor = a.classifyDominantColor(samples)
	fs.colorDistribution = samples.hueFractions()
	fs.collaretteRegularity = a.collaretteRegularity(im, zm)
	fs.nerveRingsCount = a.countNerveRings(im, zm)
	fs.overallDensity = a.assessDensity(im, zm, samples)
	fs.brightness = a.analyzeBrightness(samples)
	return fs
}

// zoneSamples accumulates raw pixel observations for one extraction run.
type zoneSamples struct {
	perZone [ZoneCount][]float64
	annulus []float64 // luminance of every annulus pixel
	sumR    float64
	sumG    float64
	sumB    float64
	hues    map[string]int
	total   int
}

func zoneIndex(key models.ZoneKey) int {
	ring := 0
	switch key.Ring {
	case RingMiddle:
		ring = 1
	case RingOuter:
		ring = 2
	}
	return ring*12 + key.ClockSector - 1
}

func (a *Analyzer) collectZoneSamples(im *Image, zm *ZoneMap) *zoneSamples {
	s := &zoneSamples{hues: make(map[string]int)}

	x0 := zm.Iris.X - zm.Iris.R
	x1 := zm.Iris.X + zm.Iris.R
	y0 := zm.Iris.Y - zm.Iris.R
	y1 := zm.Iris.Y + zm.Iris.R
	for y := y0; y <= y1; y++ {
		if y < 0 || y >= im.height {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 0 || x >= im.width {
				continue
			}
			key, ok := zm.ZoneAt(x, y)
			if !ok {
				continue
			}
			l := im.lum[y*im.width+x]
			s.perZone[zoneIndex(key)] = append(s.perZone[zoneIndex(key)], l)
			s.annulus = append(s.annulus, l)

			r, g, b := im.RGB(x, y)
			s.sumR += float64(r)
			s.sumG += float64(g)
			s.sumB += float64(b)
			s.hues[hueBucket(r, g, b)]++
			s.total++
		}
	}
	return s
}

// hueFractions converts bucket counts into the color_distribution mapping.
// Every known bucket is reported, including zero-fraction ones.
func (s *zoneSamples) hueFractions() map[string]float64 {
	out := map[string]float64{
		"blue": 0, "green": 0, "hazel": 0, "brown": 0, "gray": 0,
	}
	if s.total == 0 {
		return out
	}
	for bucket, n := range s.hues {
		out[bucket] = float64(n) / float64(s.total)
	}
	return out
}

// hueBucket assigns a pixel to one of the named iris color buckets.
func hueBucket(r8, g8, b8 uint8) string {
	c := colorful.Color{R: float64(r8) / 255, G: float64(g8) / 255, B: float64(b8) / 255}
	h, s, _ := c.Hsv()
	if s < 0.15 {
		return "gray"
	}
	switch {
	case h >= 180 && h < 270:
		return "blue"
	case h >= 70 && h < 180:
		return "green"
	case h >= 40 && h < 70:
		return "hazel"
	default:
		return "brown"
	}
}

// zoneInfo computes the statistics and condition label for one zone.
func (a *Analyzer) zoneInfo(lums []float64) models.ZoneInfo {
	if len(lums) == 0 {
		return models.ZoneInfo{Condition: "normal", Notes: "No pixels mapped to this zone"}
	}

	mean := stat.Mean(lums, nil)
	std := 0.0
	if len(lums) > 1 {
		std = stat.StdDev(lums, nil)
	}

	condition := "normal"
	switch {
	case mean < a.cal.DarkBrightnessMax:
		condition = "dark"
	case mean > a.cal.BrightBrightnessMin:
		condition = "bright"
	case std > a.cal.DenseVariabilityMin:
		condition = "dense"
	}

	return models.ZoneInfo{
		MeanBrightness: mean,
		Variability:    std,
		Condition:      condition,
		Notes:          zoneNotes(mean, std, a.cal),
	}
}

func zoneNotes(mean, std float64, cal Calibration) string {
	var notes []string
	if mean < cal.DarkBrightnessMax {
		notes = append(notes, "Dark coloring suggests chronic condition or inherent weakness")
	} else if mean > cal.BrightBrightnessMin {
		notes = append(notes, "Bright coloring suggests acute inflammation or irritation")
	}
	if std > cal.DenseVariabilityMin {
		notes = append(notes, "High variability may indicate mixed conditions")
	}
	if len(notes) == 0 {
		return "Within normal range"
	}
	return joinNotes(notes)
}

func joinNotes(notes []string) string {
	out := notes[0]
	for _, n := range notes[1:] {
		out += "; " + n
	}
	return out
}

// classifyDominantColor follows the traditional constitutional typing: a
// blue-dominant low-red iris is "lymphatic", a strongly red/brown one
// "hematogenic", a mid-hue one "hazel", and everything else "mixed".
func (a *Analyzer) classifyDominantColor(s *zoneSamples) string {
	if s.total == 0 {
		return "mixed (biliary)"
	}
	n := float64(s.total)
	meanR := s.sumR / n
	meanG := s.sumG / n
	meanB := s.sumB / n

	c := colorful.Color{R: meanR / 255, G: meanG / 255, B: meanB / 255}
	h, sat, _ := c.Hsv()
	blueRatio := meanB / (meanR + 1)

	switch {
	case blueRatio > 1.2 && sat > 0.12:
		return "blue (lymphatic)"
	case meanR > 100 && blueRatio < 0.8:
		return "brown (hematogenic)"
	case h > 30 && h < 70:
		return "hazel"
	default:
		return "mixed (biliary)"
	}
}

// collaretteRegularity samples luminance around the expected collarette ring
// and converts the coefficient of variation into a 0..1 regularity score
// (lower variation, higher regularity).
func (a *Analyzer) collaretteRegularity(im *Image, zm *ZoneMap) float64 {
	r := float64(zm.Pupil.R) + a.cal.CollaretteFrac*float64(zm.Iris.R-zm.Pupil.R)

	var lums []float64
	for i := 0; i < a.cal.CollaretteSamples; i++ {
		theta := 2 * math.Pi * float64(i) / float64(a.cal.CollaretteSamples)
		sin, cos := math.Sincos(theta)
		x := zm.Iris.X + int(r*cos)
		y := zm.Iris.Y + int(r*sin)
		if x < 0 || y < 0 || x >= im.width || y >= im.height {
			continue
		}
		lums = append(lums, im.Lum(x, y))
	}
	if len(lums) < 2 {
		return 0.5
	}

	mean := stat.Mean(lums, nil)
	if mean <= 0 {
		return 0.5
	}
	cv := stat.StdDev(lums, nil) / mean
	return clamp01(1 - cv)
}

// countNerveRings walks evenly spaced radials between the two circles and
// counts rising radial-gradient crossings, deduplicating crossings closer
// than the minimum radial separation. The median across radials is the ring
// count; concentric rings cross every radial, isolated blobs do not.
func (a *Analyzer) countNerveRings(im *Image, zm *ZoneMap) int {
	radials := a.cal.NerveRingRadials
	counts := make([]float64, 0, radials)

	for i := 0; i < radials; i++ {
		theta := 2 * math.Pi * float64(i) / float64(radials)
		sin, cos := math.Sincos(theta)

		crossings := 0
		lastCrossing := -a.cal.NerveRingMinSeparation
		for r := zm.Pupil.R + 1; r < zm.Iris.R-1; r++ {
			x := zm.Iris.X + int(float64(r)*cos)
			y := zm.Iris.Y + int(float64(r)*sin)
			xn := zm.Iris.X + int(float64(r+1)*cos)
			yn := zm.Iris.Y + int(float64(r+1)*sin)
			xp := zm.Iris.X + int(float64(r-1)*cos)
			yp := zm.Iris.Y + int(float64(r-1)*sin)
			if x < 0 || y < 0 || x >= im.width || y >= im.height {
				continue
			}
			grad := math.Abs(im.Lum(xn, yn) - im.Lum(xp, yp))
			if grad > a.cal.NerveRingGradientMin && r-lastCrossing >= a.cal.NerveRingMinSeparation {
				crossings++
				lastCrossing = r
			}
		}
		counts = append(counts, float64(crossings))
	}
	if len(counts) == 0 {
		return 0
	}

	sort.Float64s(counts)
	median := int(counts[len(counts)/2])
	if median > a.cal.NerveRingMax {
		median = a.cal.NerveRingMax
	}
	if median < 0 {
		median = 0
	}
	return median
}

// assessDensity grades fiber density on the calibrated scale using the
// Laplacian variance of the annulus (texture) and the brightness spread.
func (a *Analyzer) assessDensity(im *Image, zm *ZoneMap, s *zoneSamples) string {
	if len(s.annulus) < 2 || len(a.cal.DensityScale) == 0 {
		return a.cal.DefaultDensity()
	}

	texture := a.annulusLaplacianVariance(im, zm)
	spread := stat.StdDev(s.annulus, nil)

	// Walk the scale finest-first; the first grade whose cuts are met wins.
	for i := 0; i < len(a.cal.DensityScale)-1 && i < len(a.cal.DensityTextureCuts); i++ {
		varCut := a.cal.DensityTextureCuts[i]
		stdCut := 0.0
		if i < len(a.cal.DensityVariabilityCuts) {
			stdCut = a.cal.DensityVariabilityCuts[i]
		}
		if texture > varCut && spread > stdCut {
			return a.cal.DensityScale[i]
		}
	}
	return a.cal.DefaultDensity()
}

// annulusLaplacianVariance computes the variance of the 4-neighbor Laplacian
// over annulus pixels, the usual texture sharpness measure.
func (a *Analyzer) annulusLaplacianVariance(im *Image, zm *ZoneMap) float64 {
	var values []float64
	x0, x1 := zm.Iris.X-zm.Iris.R, zm.Iris.X+zm.Iris.R
	y0, y1 := zm.Iris.Y-zm.Iris.R, zm.Iris.Y+zm.Iris.R
	for y := y0; y <= y1; y++ {
		if y < 1 || y >= im.height-1 {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 1 || x >= im.width-1 {
				continue
			}
			if _, ok := zm.ZoneAt(x, y); !ok {
				continue
			}
			w := im.width
			lap := -4*im.lum[y*w+x] + im.lum[(y-1)*w+x] + im.lum[(y+1)*w+x] +
				im.lum[y*w+x-1] + im.lum[y*w+x+1]
			values = append(values, lap)
		}
	}
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

// analyzeBrightness summarizes the annulus luminance distribution and maps
// the mean onto the traditional tissue-activity reading.
func (a *Analyzer) analyzeBrightness(s *zoneSamples) models.BrightnessAnalysis {
	if len(s.annulus) == 0 {
		return models.BrightnessAnalysis{OverallAssessment: "No iris pixels available"}
	}

	mean := stat.Mean(s.annulus, nil)
	std := 0.0
	if len(s.annulus) > 1 {
		std = stat.StdDev(s.annulus, nil)
	}
	min, max := s.annulus[0], s.annulus[0]
	for _, v := range s.annulus {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return models.BrightnessAnalysis{
		Mean:              mean,
		Std:               std,
		Min:               min,
		Max:               max,
		OverallAssessment: brightnessAssessment(mean),
	}
}

func brightnessAssessment(mean float64) string {
	switch {
	case mean > 170:
		return "Predominantly acute/active signs"
	case mean > 130:
		return "Mixed acute and subacute"
	case mean > 90:
		return "Subacute to early chronic"
	default:
		return "Chronic/degenerative conditions indicated"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
