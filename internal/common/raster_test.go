package common

import (
	"image"
	"image/color"
	"testing"
)

func TestToRGBA_RebasesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 13))
	src.Set(10, 10, color.NRGBA{R: 255, A: 255})
	dst := ToRGBA(src)
	if dst.Bounds() != image.Rect(0, 0, 2, 3) {
		t.Fatalf("bounds = %v", dst.Bounds())
	}
	if got := dst.RGBAAt(0, 0); got.R != 255 || got.A != 255 {
		t.Errorf("pixel (0,0) = %+v", got)
	}
}

func TestToNRGBA_KeepsStraightAlpha(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 100, A: 128}) // premultiplied
	got := ToNRGBA(src).NRGBAAt(0, 0)
	if got.A != 128 || got.R < 198 || got.R > 200 {
		t.Errorf("NRGBA = %+v, want R~199 A=128", got)
	}
}
