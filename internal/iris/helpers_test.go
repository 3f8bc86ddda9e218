package iris

import (
	"image"
	"image/color"
	"math"
)

// synthEye draws a flat synthetic eye: a dark pupil disc, a mid-gray iris
// annulus and a bright sclera, centered in the frame.
func synthEye(w, h, pupilR, irisR int, pupilLum, irisLum, scleraLum uint8) *Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := w/2, h/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			v := scleraLum
			switch {
			case d <= float64(pupilR):
				v = pupilLum
			case d <= float64(irisR):
				v = irisLum
			}
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return FromImage(img)
}

// uniformImage is a flat gray frame.
func uniformImage(w, h int, lum uint8) *Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{lum, lum, lum, 255})
		}
	}
	return FromImage(img)
}

// withSquare paints a square patch of the given luminance onto a copy of im.
func withSquare(im *Image, x0, y0, size int, lum uint8) *Image {
	img := image.NewNRGBA(im.src.Bounds())
	copy(img.Pix, im.src.Pix)
	img.Stride = im.src.Stride
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{lum, lum, lum, 255})
		}
	}
	return fromNRGBA(img)
}
