package iris

import (
	"fmt"
	"math"

	"go-iris-analyzer/pkg/models"
)

// EyeSide tags which eye a photograph shows.
type EyeSide string

const (
	LeftEye  EyeSide = "left"
	RightEye EyeSide = "right"
)

// Valid reports whether the side is one of the two accepted values.
func (s EyeSide) Valid() bool {
	return s == LeftEye || s == RightEye
}

// Circle is a detected boundary in pixel coordinates.
type Circle struct {
	X int
	Y int
	R int
}

// Ring names for the three concentric bands of the annulus.
const (
	RingInner  = "inner"
	RingMiddle = "middle"
	RingOuter  = "outer"
)

// Rings lists the ring names from pupil outward.
var Rings = []string{RingInner, RingMiddle, RingOuter}

// ZoneCount is the fixed number of zones per eye: 12 sectors x 3 rings.
const ZoneCount = 36

// ZoneMap partitions the iris annulus into the fixed 12x3 polar grid.
// ZoneAt is a pure function of the two circles and the eye side.
type ZoneMap struct {
	Pupil Circle
	Iris  Circle
	Side  EyeSide
}

// NewZoneMap builds a zone map for the given geometry. The pupil circle must
// lie inside the iris circle; callers get that guarantee from the Localizer.
func NewZoneMap(pupil, iris Circle, side EyeSide) *ZoneMap {
	return &ZoneMap{Pupil: pupil, Iris: iris, Side: side}
}

// ZoneAt maps a pixel to its zone. The second return value is false for
// pixels inside the pupil circle or outside the iris circle.
func (zm *ZoneMap) ZoneAt(x, y int) (models.ZoneKey, bool) {
	dx := float64(x - zm.Iris.X)
	dy := float64(y - zm.Iris.Y)
	d := math.Hypot(dx, dy)

	pr := float64(zm.Pupil.R)
	ir := float64(zm.Iris.R)
	if d <= pr || d > ir {
		return models.ZoneKey{}, false
	}

	t := (d - pr) / (ir - pr)
	ring := RingOuter
	switch {
	case t <= 1.0/3.0:
		ring = RingInner
	case t <= 2.0/3.0:
		ring = RingMiddle
	}

	return models.ZoneKey{Ring: ring, ClockSector: zm.SectorAt(Angle(zm.Iris.X, zm.Iris.Y, x, y))}, true
}

// SectorAt converts a visual angle (degrees clockwise from 12 o'clock) to a
// clock sector 1..12. The right eye counts clockwise; the left eye mirrors
// the numbering so anatomically corresponding zones share sector numbers.
func (zm *ZoneMap) SectorAt(theta float64) int {
	if zm.Side == LeftEye {
		theta = math.Mod(360-theta, 360)
	}
	sector := int(theta/30) + 1
	if sector > 12 {
		sector = 12
	}
	return sector
}

// Keys returns the full fixed 36-zone key set in ring-major order.
func (zm *ZoneMap) Keys() []models.ZoneKey {
	keys := make([]models.ZoneKey, 0, ZoneCount)
	for _, ring := range Rings {
		for sector := 1; sector <= 12; sector++ {
			keys = append(keys, models.ZoneKey{Ring: ring, ClockSector: sector})
		}
	}
	return keys
}

// Angle measures the direction from (cx, cy) to (x, y) in degrees, clockwise
// from 12 o'clock (straight up), in [0, 360).
func Angle(cx, cy, x, y int) float64 {
	dx := float64(x - cx)
	dy := float64(y - cy)
	theta := math.Atan2(dx, -dy) * 180 / math.Pi
	if theta < 0 {
		theta += 360
	}
	return theta
}

// ClockPosition renders an angle as the nearest half-hour clock label,
/// e.g. 90 degrees becomes "3:00" and 97.5 degrees "3:30".
func ClockPosition(theta float64) string {
	theta = math.Mod(theta, 360)
	if theta < 0 {
		theta += 360
	}
	halves := int(math.Round(theta/15)) % 24
	hour := halves / 2
	if hour == 0 {
		hour = 12
	}
	minutes := "00"
	if halves%2 == 1 {
		minutes = "30"
	}
	return fmt.Sprintf("%d:%s", hour, minutes)
}

// ZoneKeyString is the canonical map key for zone_analysis entries.
func ZoneKeyString(key models.ZoneKey) string {
	return fmt.Sprintf("%s-%d", key.Ring, key.ClockSector)
}
