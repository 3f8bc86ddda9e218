package iris

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go-iris-analyzer/pkg/models"
)

var (
	irisOutline       = color.NRGBA{0, 200, 0, 255}
	pupilOutline      = color.NRGBA{220, 60, 60, 255}
	collaretteOutline = color.NRGBA{60, 120, 240, 255}
	markingDot        = color.NRGBA{255, 200, 0, 255}
	labelColor        = color.NRGBA{255, 255, 255, 255}
)

// Annotate renders the detected geometry over a copy of the source image and
// returns it PNG-encoded: the iris and pupil boundaries, the expected
// collarette ring, the twelve clock labels, and a dot per marking.
func (a *Analyzer) Annotate(im *Image, pupil, iris Circle, markings []models.Position) ([]byte, error) {
	canvas := image.NewNRGBA(im.src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), im.src, im.src.Bounds().Min, draw.Src)

	drawCircle(canvas, iris, irisOutline)
	drawCircle(canvas, pupil, pupilOutline)
	collarette := Circle{
		X: pupil.X,
		Y: pupil.Y,
		R: pupil.R + int(a.cal.CollaretteFrac*float64(iris.R-pupil.R)),
	}
	drawCircle(canvas, collarette, collaretteOutline)

	for _, p := range markings {
		drawDot(canvas, p.X, p.Y, markingDot)
	}
	drawClockLabels(canvas, iris)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encoding annotated image: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCircle(dst *image.NRGBA, c Circle, col color.NRGBA) {
	if c.R <= 0 {
		return
	}
	steps := 8 * c.R
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		sin, cos := math.Sincos(theta)
		x := c.X + int(float64(c.R)*cos)
		y := c.Y + int(float64(c.R)*sin)
		setIfInside(dst, x, y, col)
		setIfInside(dst, x+1, y, col)
		setIfInside(dst, x, y+1, col)
	}
}

func drawDot(dst *image.NRGBA, cx, cy int, col color.NRGBA) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx*dx+dy*dy <= 4 {
				setIfInside(dst, cx+dx, cy+dy, col)
			}
		}
	}
}

func setIfInside(dst *image.NRGBA, x, y int, col color.NRGBA) {
	if image.Pt(x, y).In(dst.Bounds()) {
		dst.SetNRGBA(x, y, col)
	}
}

// drawClockLabels places the numerals 1..12 just outside the iris boundary,
// 12 at the top, counting clockwise.
func drawClockLabels(dst *image.NRGBA, iris Circle) {
	face := basicfont.Face7x13
	r := float64(iris.R) + 14

	for hour := 1; hour <= 12; hour++ {
		theta := float64(hour%12) * 30 * math.Pi / 180
		x := float64(iris.X) + r*math.Sin(theta)
		y := float64(iris.Y) - r*math.Cos(theta)

		label := fmt.Sprintf("%d", hour)
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(labelColor),
			Face: face,
			Dot:  fixed.P(int(x)-len(label)*face.Advance/2, int(y)+face.Height/2),
		}
		d.DrawString(label)
	}
}
