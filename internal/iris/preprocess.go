package iris

import (
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// Options configures the preprocessing stage. Both flags default to true at
// the request boundary; the zero value here means "leave the image alone".
type Options struct {
	RemoveGlare bool
	Enhance     bool
}

// DefaultOptions returns the stock preprocessing configuration.
func DefaultOptions() Options {
	return Options{RemoveGlare: true, Enhance: true}
}

// Preprocess applies optional glare suppression and contrast enhancement.
// With both flags false the input is returned unchanged, pixel for pixel.
// Preprocess never fails on a valid Image.
func (a *Analyzer) Preprocess(im *Image, opts Options) *Image {
	if !opts.RemoveGlare && !opts.Enhance {
		return im
	}

	cur := im
	if opts.RemoveGlare {
		cur = a.removeGlare(cur)
	}
	if opts.Enhance {
		enhanced := imaging.AdjustSigmoid(cur.src, a.cal.EnhanceMidpoint, a.cal.EnhanceFactor)
		cur = fromNRGBA(enhanced)
	}
	return cur
}

// removeGlare suppresses specular highlights: pixels that are very bright, or
// bright with near-zero saturation, are replaced from a Gaussian-blurred copy
// of the image so surrounding texture fills them in. The mask is dilated a
// little to cover highlight fringes.
func (a *Analyzer) removeGlare(im *Image) *Image {
	w, h := im.width, im.height

	mask := make([]bool, w*h)
	found := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := im.lum[y*w+x]
			if l > a.cal.GlareThreshold {
				mask[y*w+x] = true
				found = true
				continue
			}
			r, g, b := im.RGB(x, y)
			_, s, v := rgbToHSV(r, g, b)
			if v > 0.86 && s < a.cal.GlareSaturation {
				mask[y*w+x] = true
				found = true
			}
		}
	}
	if !found {
		return im
	}

	for i := 0; i < a.cal.GlareDilate; i++ {
		mask = dilate(mask, w, h)
	}

	blurred := blur.Gaussian(im.src, a.cal.GlareBlurRadius)
	out := imaging.Clone(im.src)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			c := blurred.RGBAAt(x, y)
			off := y*out.Stride + x*4
			out.Pix[off] = c.R
			out.Pix[off+1] = c.G
			out.Pix[off+2] = c.B
		}
	}
	return fromNRGBA(out)
}

// dilate grows a mask by one pixel with a 3x3 structuring element.
func dilate(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && ny >= 0 && nx < w && ny < h {
						out[ny*w+nx] = true
					}
				}
			}
		}
	}
	return out
}

// rgbToHSV converts 8-bit RGB to HSV with h in degrees and s, v in [0, 1].
func rgbToHSV(r8, g8, b8 uint8) (h, s, v float64) {
	r := float64(r8) / 255.0
	g := float64(g8) / 255.0
	b := float64(b8) / 255.0

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}

	switch {
	case delta == 0:
		h = 0
	case max == r:
		h = 60 * ((g - b) / delta)
	case max == g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}
