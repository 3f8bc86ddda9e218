package iris

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{100, 100, 100, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeValidImage(t *testing.T) {
	data := encodeTestPNG(t, 80, 60)

	im, err := Decode(data, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if im.Width() != 80 || im.Height() != 60 {
		t.Errorf("unexpected dimensions %dx%d", im.Width(), im.Height())
	}
	if l := im.Lum(10, 10); l < 99 || l > 101 {
		t.Errorf("unexpected luminance %f", l)
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image at all"), 50)
	if err == nil {
		t.Fatal("expected error for non-image bytes")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestDecodeTooSmall(t *testing.T) {
	data := encodeTestPNG(t, 30, 30)

	_, err := Decode(data, 50)
	if err == nil {
		t.Fatal("expected error for undersized image")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestLumOutOfBounds(t *testing.T) {
	im := uniformImage(50, 50, 128)
	if im.Lum(-1, 0) != 0 || im.Lum(0, -1) != 0 || im.Lum(50, 0) != 0 || im.Lum(0, 50) != 0 {
		t.Error("out-of-bounds luminance reads must return 0")
	}
}
