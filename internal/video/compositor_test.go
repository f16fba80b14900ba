package video

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			}
		}
	}
	return img
}

func TestCropFrame(t *testing.T) {
	src := checker(10, 8)

	tests := []struct {
		name    string
		crop    *image.Rectangle
		want    image.Point
		wantErr error
	}{
		{"no crop", nil, image.Pt(10, 8), nil},
		{"inside", &image.Rectangle{Min: image.Pt(2, 1), Max: image.Pt(6, 5)}, image.Pt(4, 4), nil},
		{"clamped to frame", &image.Rectangle{Min: image.Pt(5, 5), Max: image.Pt(1166, 1450)}, image.Pt(5, 3), nil},
		{"outside", &image.Rectangle{Min: image.Pt(20, 20), Max: image.Pt(30, 30)}, image.Point{}, ErrCropOutside},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CropFrame(src, tt.crop)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Bounds().Min != (image.Point{}) || got.Bounds().Size() != tt.want {
				t.Errorf("bounds = %v, want size %v at origin", got.Bounds(), tt.want)
			}
		})
	}
}

func TestCropFrame_KeepsPixels(t *testing.T) {
	src := checker(4, 4)
	got, err := CropFrame(src, &image.Rectangle{Min: image.Pt(1, 0), Max: image.Pt(3, 2)})
	if err != nil {
		t.Fatal(err)
	}
	// (1,0) in the source is odd, so transparent; (2,0) is red
	if got.RGBAAt(0, 0).A != 0 || got.RGBAAt(1, 0).R != 255 {
		t.Errorf("cropped pixels = %v %v", got.RGBAAt(0, 0), got.RGBAAt(1, 0))
	}
}

func TestFlatten_FillsTransparency(t *testing.T) {
	bg := color.RGBA{R: 0x17, G: 0x21, B: 0x30, A: 255}
	out := Flatten(checker(2, 1), bg)

	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("opaque pixel = %v", got)
	}
	if got := out.RGBAAt(1, 0); got != bg {
		t.Errorf("transparent pixel = %v, want background %v", got, bg)
	}
}

func TestCompositor_PalettedOutput(t *testing.T) {
	bg := &color.RGBA{R: 0x17, G: 0x21, B: 0x30, A: 255}
	palette, err := BuildPalette([]string{"#000000", "#ff0000"}, bg)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := NewQuantizer(palette, false)

	c := NewCompositor(CompositorOptions{Background: bg, Quantizer: q})
	out, err := c.Process(checker(2, 2), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	p, ok := out.(*image.Paletted)
	if !ok {
		t.Fatalf("output is %T, want *image.Paletted", out)
	}
	if p.ColorIndexAt(0, 0) != 1 {
		t.Errorf("red pixel index = %d, want 1", p.ColorIndexAt(0, 0))
	}
	if p.ColorIndexAt(1, 0) != 2 {
		t.Errorf("transparent pixel index = %d, want background 2", p.ColorIndexAt(1, 0))
	}
}

func TestCompositor_KeepsAlphaWithoutBackground(t *testing.T) {
	c := NewCompositor(CompositorOptions{})
	out, err := c.Process(checker(2, 1), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	n, ok := out.(*image.NRGBA)
	if !ok {
		t.Fatalf("output is %T, want *image.NRGBA", out)
	}
	if n.NRGBAAt(1, 0).A != 0 {
		t.Errorf("transparent pixel alpha = %d", n.NRGBAAt(1, 0).A)
	}
}

func TestCompositor_DateOverlayDrawsText(t *testing.T) {
	bg := &color.RGBA{A: 255}
	ts := time.Date(2025, 8, 2, 14, 30, 0, 0, time.UTC)

	plain, _ := NewCompositor(CompositorOptions{Background: bg}).Process(image.NewRGBA(image.Rect(0, 0, 200, 60)), ts)
	marked, _ := NewCompositor(CompositorOptions{Background: bg, DateOverlay: true, DatePosition: "bottom-right"}).Process(image.NewRGBA(image.Rect(0, 0, 200, 60)), ts)

	a, b := plain.(*image.NRGBA), marked.(*image.NRGBA)
	changed := 0
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			changed++
		}
	}
	if changed == 0 {
		t.Error("date overlay left the frame unchanged")
	}
	// Top-left corner stays untouched for a bottom-right overlay
	if b.NRGBAAt(0, 0) != a.NRGBAAt(0, 0) {
		t.Error("overlay drew outside its corner")
	}
}
