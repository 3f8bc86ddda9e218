package iris

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Image is an immutable pixel grid with a precomputed luminance plane.
// Stages that transform pixels return a new Image; none mutates in place.
type Image struct {
	src    *image.NRGBA
	lum    []float64 // BT.601 luminance, 0..255, row-major
	width  int
	height int
}

// Decode converts raw upload bytes into an Image. It fails with *DecodeError
// when the bytes are not a supported raster format or when either dimension
// is below minDim.
func Decode(data []byte, minDim int) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "unsupported or corrupt image data", Err: err}
	}

	bounds := img.Bounds()
	if bounds.Dx() < minDim || bounds.Dy() < minDim {
		return nil, &DecodeError{
			Reason: fmt.Sprintf("image too small: %s %dx%d below minimum %dpx",
				format, bounds.Dx(), bounds.Dy(), minDim),
		}
	}

	return FromImage(img), nil
}

// FromImage builds an Image from an already decoded picture. No dimension
// check is applied; Decode is the validating entry point.
func FromImage(img image.Image) *Image {
	src := imaging.Clone(img)
	return fromNRGBA(src)
}

func fromNRGBA(src *image.NRGBA) *Image {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			b := float64(row[x*4+2])
			lum[y*w+x] = 0.299*r + 0.587*g + 0.114*b
		}
	}
	return &Image{src: src, lum: lum, width: w, height: h}
}

// Width returns the image width in pixels.
func (im *Image) Width() int { return im.width }

// Height returns the image height in pixels.
func (im *Image) Height() int { return im.height }

// Lum returns the luminance (0..255) at (x, y). Out-of-bounds reads return 0.
func (im *Image) Lum(x, y int) float64 {
	if x < 0 || y < 0 || x >= im.width || y >= im.height {
		return 0
	}
	return im.lum[y*im.width+x]
}

// RGB returns the 8-bit color components at (x, y).
func (im *Image) RGB(x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= im.width || y >= im.height {
		return 0, 0, 0
	}
	off := y*im.src.Stride + x*4
	return im.src.Pix[off], im.src.Pix[off+1], im.src.Pix[off+2]
}

// NRGBA exposes the backing pixels. Callers must treat them as read-only and
// clone before drawing.
func (im *Image) NRGBA() *image.NRGBA { return im.src }
