package iris

import (
	"math"
	"testing"
)

func TestZoneAtPartition(t *testing.T) {
	zm := NewZoneMap(Circle{X: 250, Y: 250, R: 50}, Circle{X: 250, Y: 250, R: 200}, RightEye)

	seen := make(map[string]int)
	for y := 0; y < 500; y++ {
		for x := 0; x < 500; x++ {
			d := math.Hypot(float64(x-250), float64(y-250))
			key, ok := zm.ZoneAt(x, y)

			if d <= 50 || d > 200 {
				if ok {
					t.Fatalf("pixel (%d,%d) at distance %.1f should map to no zone, got %v", x, y, d, key)
				}
				continue
			}
			if !ok {
				t.Fatalf("annulus pixel (%d,%d) at distance %.1f mapped to no zone", x, y, d)
			}
			if key.ClockSector < 1 || key.ClockSector > 12 {
				t.Fatalf("sector out of range: %d", key.ClockSector)
			}
			seen[ZoneKeyString(key)]++
		}
	}

	if len(seen) != ZoneCount {
		t.Errorf("expected all %d zones populated, got %d", ZoneCount, len(seen))
	}
}

func TestZoneKeys(t *testing.T) {
	zm := NewZoneMap(Circle{X: 100, Y: 100, R: 20}, Circle{X: 100, Y: 100, R: 80}, RightEye)

	keys := zm.Keys()
	if len(keys) != ZoneCount {
		t.Fatalf("expected %d keys, got %d", ZoneCount, len(keys))
	}

	unique := make(map[string]bool)
	for _, k := range keys {
		unique[ZoneKeyString(k)] = true
	}
	if len(unique) != ZoneCount {
		t.Errorf("keys are not unique: %d distinct of %d", len(unique), ZoneCount)
	}

	if keys[0].Ring != RingInner || keys[0].ClockSector != 1 {
		t.Errorf("unexpected first key: %+v", keys[0])
	}
	last := keys[len(keys)-1]
	if last.Ring != RingOuter || last.ClockSector != 12 {
		t.Errorf("unexpected last key: %+v", last)
	}
}

func TestSectorMirroring(t *testing.T) {
	pupil := Circle{X: 250, Y: 250, R: 50}
	iris := Circle{X: 250, Y: 250, R: 200}

	right := NewZoneMap(pupil, iris, RightEye)
	left := NewZoneMap(pupil, iris, LeftEye)

	// A point due east of center (3 o'clock visually).
	theta := Angle(250, 250, 430, 250)
	if theta != 90 {
		t.Fatalf("expected 90 degrees for due-east point, got %f", theta)
	}

	if got := right.SectorAt(theta); got != 4 {
		t.Errorf("right eye sector at 90 degrees: expected 4, got %d", got)
	}
	if got := left.SectorAt(theta); got != 10 {
		t.Errorf("left eye sector at 90 degrees: expected 10, got %d", got)
	}

	// Straight up is sector 1 on both sides.
	if got := right.SectorAt(0); got != 1 {
		t.Errorf("right eye sector at 0 degrees: expected 1, got %d", got)
	}
	if got := left.SectorAt(0); got != 1 {
		t.Errorf("left eye sector at 0 degrees: expected 1, got %d", got)
	}
}

func TestClockPosition(t *testing.T) {
	cases := []struct {
		theta float64
		want  string
	}{
		{0, "12:00"},
		{90, "3:00"},
		{97.5, "3:30"},
		{180, "6:00"},
		{270, "9:00"},
		{352.5, "12:00"},
		{359.9, "12:00"},
	}
	for _, tc := range cases {
		if got := ClockPosition(tc.theta); got != tc.want {
			t.Errorf("ClockPosition(%f): expected %q, got %q", tc.theta, tc.want, got)
		}
	}
}

func TestAngleQuadrants(t *testing.T) {
	cases := []struct {
		x, y int
		want float64
	}{
		{250, 150, 0},   // up
		{350, 250, 90},  // right
		{250, 350, 180}, // down
		{150, 250, 270}, // left
	}
	for _, tc := range cases {
		if got := Angle(250, 250, tc.x, tc.y); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Angle to (%d,%d): expected %f, got %f", tc.x, tc.y, tc.want, got)
		}
	}
}

func TestEyeSideValid(t *testing.T) {
	if !LeftEye.Valid() || !RightEye.Valid() {
		t.Error("left and right must be valid sides")
	}
	if EyeSide("center").Valid() || EyeSide("").Valid() {
		t.Error("center and empty must be invalid sides")
	}
}
