package iris

import (
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// localize detects the pupil and outer iris boundaries with a concentric
// gradient scan: for candidate centers and radii, score the mean luminance
// step across the circle. The pupil is a strong dark-to-light edge near the
// image center; the iris rim is a weaker edge further out. Detection never
// fails; below-confidence candidates fall back to a geometric default, which
// keeps downstream zone statistics meaningful on best-guess geometry.
func (a *Analyzer) localize(im *Image) (pupil, iris Circle) {
	w, h := im.width, im.height
	minDim := w
	if h < minDim {
		minDim = h
	}

	smoothed := FromImage(blur.Gaussian(im.src, a.cal.LocalizerBlurRadius))

	pupil, pupilScore := a.findPupil(smoothed, minDim)
	if pupilScore < a.cal.PupilMinScore {
		pupil = Circle{
			X: w / 2,
			Y: h / 2,
			R: int(a.cal.DefaultPupilFrac * float64(minDim) / 2),
		}
	}
	if pupil.R < 1 {
		pupil.R = 1
	}

	iris, irisScore := a.findIris(smoothed, pupil, minDim)
	if irisScore < a.cal.IrisMinScore {
		iris = Circle{
			X: pupil.X,
			Y: pupil.Y,
			R: int(a.cal.DefaultIrisFrac * float64(minDim) / 2),
		}
	}
	if iris.R <= pupil.R {
		iris.R = pupil.R * 2
	}
	return pupil, iris
}

// findPupil sweeps a coarse center grid over the central third of the image
// and all plausible pupil radii, then refines the best candidate at single
// pixel resolution.
func (a *Analyzer) findPupil(im *Image, minDim int) (Circle, float64) {
	w, h := im.width, im.height
	rMin := minDim / 20
	if rMin < 3 {
		rMin = 3
	}
	rMax := minDim / 6

	step := minDim / 50
	if step < 2 {
		step = 2
	}

	best := Circle{X: w / 2, Y: h / 2, R: rMin}
	bestScore := math.Inf(-1)

	for cy := h * 3 / 8; cy <= h*5/8; cy += step {
		for cx := w * 3 / 8; cx <= w*5/8; cx += step {
			for r := rMin; r <= rMax; r += 2 {
				score := a.radialEdgeScore(im, cx, cy, r)
				if score > bestScore {
					bestScore = score
					best = Circle{X: cx, Y: cy, R: r}
				}
			}
		}
	}

	// Local refinement around the coarse winner.
	refined := best
	for cy := best.Y - step; cy <= best.Y+step; cy++ {
		for cx := best.X - step; cx <= best.X+step; cx++ {
			for r := best.R - 3; r <= best.R+3; r++ {
				if r < rMin || r > rMax {
					continue
				}
				score := a.radialEdgeScore(im, cx, cy, r)
				if score > bestScore {
					bestScore = score
					refined = Circle{X: cx, Y: cy, R: r}
				}
			}
		}
	}
	return refined, bestScore
}

// findIris sweeps only the radius, anchored at the pupil center: the two
// boundaries are concentric-ish, and the outer edge search space is too flat
// to support an independent center fit.
func (a *Analyzer) findIris(im *Image, pupil Circle, minDim int) (Circle, float64) {
	rMin := pupil.R * 3 / 2
	if floor := minDim / 5; rMin < floor {
		rMin = floor
	}
	rMax := minDim/2 - 2

	best := Circle{X: pupil.X, Y: pupil.Y, R: rMax}
	bestScore := math.Inf(-1)
	for r := rMin; r <= rMax; r++ {
		score := a.radialEdgeScore(im, pupil.X, pupil.Y, r)
		if score > bestScore {
			bestScore = score
			best.R = r
		}
	}
	return best, bestScore
}

// radialEdgeScore measures the mean signed luminance step across a circle:
// samples just outside the radius minus samples just inside, averaged over
// evenly spaced spokes. Dark-inside boundaries score high.
func (a *Analyzer) radialEdgeScore(im *Image, cx, cy, r int) float64 {
	n := a.cal.LocalizerAngles
	if n < 4 {
		n = 4
	}
	const gap = 3

	var sum float64
	count := 0
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		sin, cos := math.Sincos(theta)

		xo := cx + int(float64(r+gap)*cos)
		yo := cy + int(float64(r+gap)*sin)
		xi := cx + int(float64(r-gap)*cos)
		yi := cy + int(float64(r-gap)*sin)
		if xo < 0 || yo < 0 || xo >= im.width || yo >= im.height {
			continue
		}
		sum += im.Lum(xo, yo) - im.Lum(xi, yi)
		count++
	}
	if count == 0 {
		return math.Inf(-1)
	}
	// Penalize circles that mostly leave the frame.
	return sum / float64(n)
}
