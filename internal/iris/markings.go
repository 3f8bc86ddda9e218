package iris

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"go-iris-analyzer/pkg/models"
)

// blob is one 4-connected component found during marking detection.
type blob struct {
	area int
	sumX int
	sumY int
}

func (b blob) centroid() (int, int) {
	return b.sumX / b.area, b.sumY / b.area
}

// DetectMarkings finds discrete high-contrast blobs and radial furrows inside
// the annulus. Thresholds are empirical luminance quantiles of the annulus
// itself, compared strictly, so a featureless iris produces no candidates.
func (a *Analyzer) DetectMarkings(im *Image, zm *ZoneMap) ([]models.Marking, []models.Furrow) {
	lums := annulusLuminance(im, zm)
	if len(lums) == 0 {
		return nil, nil
	}
	sort.Float64s(lums)
	brightT := stat.Quantile(a.cal.BrightPercentile, stat.Empirical, lums, nil)
	darkT := stat.Quantile(a.cal.DarkPercentile, stat.Empirical, lums, nil)

	dark := a.componentBlobs(im, zm, func(l float64) bool { return l < darkT })
	bright := a.componentBlobs(im, zm, func(l float64) bool { return l > brightT })

	var markings []models.Marking
	for _, b := range dark {
		markings = append(markings, a.describeBlob(b, zm, true))
	}
	for _, b := range bright {
		markings = append(markings, a.describeBlob(b, zm, false))
	}

	sort.Slice(markings, func(i, j int) bool {
		return markingArea(markings[i]) > markingArea(markings[j])
	})
	if len(markings) > a.cal.MarkingMaxCount {
		markings = markings[:a.cal.MarkingMaxCount]
	}

	return markings, a.detectFurrows(im, zm)
}

func annulusLuminance(im *Image, zm *ZoneMap) []float64 {
	var lums []float64
	x0, x1 := zm.Iris.X-zm.Iris.R, zm.Iris.X+zm.Iris.R
	y0, y1 := zm.Iris.Y-zm.Iris.R, zm.Iris.Y+zm.Iris.R
	for y := y0; y <= y1; y++ {
		if y < 0 || y >= im.height {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 0 || x >= im.width {
				continue
			}
			if _, ok := zm.ZoneAt(x, y); !ok {
				continue
			}
			lums = append(lums, im.lum[y*im.width+x])
		}
	}
	return lums
}

// componentBlobs runs a BFS over 4-connected annulus pixels matching the
// predicate and keeps components inside the calibrated area window.
func (a *Analyzer) componentBlobs(im *Image, zm *ZoneMap, match func(float64) bool) []blob {
	visited := make(map[int]bool)
	var blobs []blob

	inMask := func(x, y int) bool {
		if x < 0 || y < 0 || x >= im.width || y >= im.height {
			return false
		}
		if _, ok := zm.ZoneAt(x, y); !ok {
			return false
		}
		return match(im.lum[y*im.width+x])
	}

	x0, x1 := zm.Iris.X-zm.Iris.R, zm.Iris.X+zm.Iris.R
	y0, y1 := zm.Iris.Y-zm.Iris.R, zm.Iris.Y+zm.Iris.R
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			idx := y*im.width + x
			if !inMask(x, y) || visited[idx] {
				continue
			}

			var b blob
			queue := []int{idx}
			visited[idx] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				cx, cy := cur%im.width, cur/im.width
				b.area++
				b.sumX += cx
				b.sumY += cy
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := cx+d[0], cy+d[1]
					nidx := ny*im.width + nx
					if inMask(nx, ny) && !visited[nidx] {
						visited[nidx] = true
						queue = append(queue, nidx)
					}
				}
			}

			if b.area >= a.cal.MarkingMinArea && b.area <= a.cal.MarkingMaxArea {
				blobs = append(blobs, b)
			}
		}
	}
	return blobs
}

func (a *Analyzer) describeBlob(b blob, zm *ZoneMap, isDark bool) models.Marking {
	cx, cy := b.centroid()
	theta := Angle(zm.Iris.X, zm.Iris.Y, cx, cy)

	m := models.Marking{
		Position:      models.Position{X: cx, Y: cy},
		ClockPosition: ClockPosition(mirrorAngle(theta, zm.Side)),
		Size:          a.sizeLabel(b.area),
	}
	if key, ok := zm.ZoneAt(cx, cy); ok {
		m.Zone = key
	}

	d := math.Hypot(float64(cx-zm.Iris.X), float64(cy-zm.Iris.Y))
	rim := d > a.cal.LymphZoneFrac*float64(zm.Iris.R)
	switch {
	case isDark && b.area >= a.cal.LacunaMinArea:
		m.Type = "lacuna"
		m.Intensity = "dark"
	case isDark:
		m.Type = "pigment_spot"
		m.Intensity = "dark"
	case rim:
		m.Type = "tophi"
		m.Intensity = "light"
	default:
		m.Type = "healing_sign"
		m.Intensity = "light"
	}
	return m
}

// sizeLabel grades the area against even thirds of the accepted window.
func (a *Analyzer) sizeLabel(area int) string {
	span := a.cal.MarkingMaxArea - a.cal.MarkingMinArea
	switch {
	case area < a.cal.MarkingMinArea+span/3:
		return "small"
	case area < a.cal.MarkingMinArea+2*span/3:
		return "medium"
	default:
		return "large"
	}
}

// markingArea recovers an ordering key from the size label so that truncation
// keeps the most prominent findings. Exact areas are not carried on the model.
func markingArea(m models.Marking) int {
	switch m.Size {
	case "large":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

// detectFurrows walks evenly spaced radials and reports those where the
// radial gradient stays strong over most of the mid-iris span, the signature
// of a contraction furrow crossed obliquely, or of radii solaris running
// along the spoke.
func (a *Analyzer) detectFurrows(im *Image, zm *ZoneMap) []models.Furrow {
	var furrows []models.Furrow

	rStart := zm.Pupil.R + 1
	rEnd := int(a.cal.FurrowSpanFrac * float64(zm.Iris.R))
	if rEnd <= rStart {
		return nil
	}

	for i := 0; i < a.cal.FurrowRadials; i++ {
		thetaDeg := 360 * float64(i) / float64(a.cal.FurrowRadials)
		rad := thetaDeg * math.Pi / 180
		// Spoke direction matching the clockwise-from-top convention.
		dx, dy := math.Sin(rad), -math.Cos(rad)

		strong, total := 0, 0
		var strengthSum float64
		for r := rStart; r <= rEnd; r++ {
			x := zm.Iris.X + int(float64(r)*dx)
			y := zm.Iris.Y + int(float64(r)*dy)
			if x < 1 || y < 1 || x >= im.width-1 || y >= im.height-1 {
				continue
			}
			// Tangential gradient: a radial line is an edge across the spoke.
			tx, ty := dy, -dx
			lp := im.Lum(x+int(math.Round(tx)), y+int(math.Round(ty)))
			lm := im.Lum(x-int(math.Round(tx)), y-int(math.Round(ty)))
			grad := math.Abs(lp - lm)
			total++
			if grad > a.cal.FurrowGradientMin {
				strong++
				strengthSum += grad
			}
		}
		if total == 0 {
			continue
		}

		coverage := float64(strong) / float64(total)
		if coverage > a.cal.FurrowMinCoverage {
			furrows = append(furrows, models.Furrow{
				Angle:         thetaDeg,
				ClockPosition: ClockPosition(mirrorAngle(thetaDeg, zm.Side)),
				Strength:      clamp01(coverage),
			})
		}
	}

	sort.Slice(furrows, func(i, j int) bool { return furrows[i].Strength > furrows[j].Strength })
	if len(furrows) > a.cal.FurrowMaxCount {
		furrows = furrows[:a.cal.FurrowMaxCount]
	}
	sort.Slice(furrows, func(i, j int) bool { return furrows[i].Angle < furrows[j].Angle })
	return furrows
}

// detectLymphaticSigns examines the outer rim for the bead chain of a
// lymphatic rosary and for the darkened edge of a scurf rim.
func (a *Analyzer) detectLymphaticSigns(im *Image, zm *ZoneMap) models.LymphaticSigns {
	rimMin := a.cal.LymphZoneFrac * float64(zm.Iris.R)

	rim := func(x, y int) bool {
		d := math.Hypot(float64(x-zm.Iris.X), float64(y-zm.Iris.Y))
		return d > rimMin && d <= float64(zm.Iris.R)
	}

	// Bead threshold: brighter than the rim average by a margin.
	var rimLums []float64
	x0, x1 := zm.Iris.X-zm.Iris.R, zm.Iris.X+zm.Iris.R
	y0, y1 := zm.Iris.Y-zm.Iris.R, zm.Iris.Y+zm.Iris.R
	for y := y0; y <= y1; y++ {
		if y < 0 || y >= im.height {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 0 || x >= im.width || !rim(x, y) {
				continue
			}
			rimLums = append(rimLums, im.lum[y*im.width+x])
		}
	}

	signs := models.LymphaticSigns{LymphaticCongestionLevel: "low"}
	if len(rimLums) == 0 {
		return signs
	}
	rimMean := stat.Mean(rimLums, nil)
	signs.ScurfRimPresent = rimMean < a.cal.ScurfRimMaxMean

	sort.Float64s(rimLums)
	beadT := stat.Quantile(a.cal.BrightPercentile, stat.Empirical, rimLums, nil)

	beads := 0
	visited := make(map[int]bool)
	inBead := func(x, y int) bool {
		if x < 0 || y < 0 || x >= im.width || y >= im.height || !rim(x, y) {
			return false
		}
		return im.lum[y*im.width+x] > beadT
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			idx := y*im.width + x
			if !inBead(x, y) || visited[idx] {
				continue
			}
			area := 0
			queue := []int{idx}
			visited[idx] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				cx, cy := cur%im.width, cur/im.width
				area++
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := cx+d[0], cy+d[1]
					nidx := ny*im.width + nx
					if inBead(nx, ny) && !visited[nidx] {
						visited[nidx] = true
						queue = append(queue, nidx)
					}
				}
			}
			if area >= a.cal.LymphBeadMinArea && area <= a.cal.LymphBeadMaxArea {
				beads++
			}
		}
	}

	signs.RosaryBeadsCount = beads
	signs.RosaryPresent = beads > a.cal.RosaryMinBeads
	if beads > a.cal.CongestionHighBeads {
		signs.LymphaticCongestionLevel = "high"
	} else if signs.RosaryPresent {
		signs.LymphaticCongestionLevel = "moderate"
	}
	return signs
}

// mirrorAngle maps a geometric angle to the reported clock angle for the
// given eye side, matching the sector convention.
func mirrorAngle(theta float64, side EyeSide) float64 {
	if side == LeftEye {
		return math.Mod(360-theta, 360)
	}
	return theta
}
