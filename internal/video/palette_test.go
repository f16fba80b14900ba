package video

import (
	"image"
	"image/color"
	"testing"
)

func TestBuildPalette_BackgroundAppendedOnce(t *testing.T) {
	tests := []struct {
		name       string
		hex        []string
		background *color.RGBA
		wantLen    int
	}{
		{"no background", []string{"#000000", "#ffffff"}, nil, 2},
		{"new background", []string{"#000000", "#ffffff"}, &color.RGBA{R: 0x17, G: 0x21, B: 0x30, A: 255}, 3},
		{"background already present", []string{"#000000", "#172130"}, &color.RGBA{R: 0x17, G: 0x21, B: 0x30, A: 255}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildPalette(tt.hex, tt.background)
			if err != nil {
				t.Fatal(err)
			}
			if len(p) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(p), tt.wantLen)
			}
		})
	}
}

func TestBuildPalette_Errors(t *testing.T) {
	if _, err := BuildPalette([]string{"#zzzzzz"}, nil); err == nil {
		t.Error("expected error for invalid hex")
	}
	if _, err := BuildPalette(nil, nil); err == nil {
		t.Error("expected error for empty palette")
	}
}

func TestQuantizer_Index(t *testing.T) {
	p, _ := BuildPalette([]string{"#000000", "#ff0000", "#0000ff", "#ff0000"}, nil)
	q, err := NewQuantizer(p, false)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		c    color.NRGBA
		want uint8
	}{
		{"exact black", color.NRGBA{A: 255}, 0},
		{"exact red takes first duplicate", color.NRGBA{R: 255, A: 255}, 1},
		{"near red", color.NRGBA{R: 240, G: 10, A: 255}, 1},
		{"near blue", color.NRGBA{B: 200, A: 255}, 2},
		{"equidistant red and blue picks lower index", color.NRGBA{R: 128, B: 128, A: 255}, 1},
		{"alpha ignored without transparency", color.NRGBA{B: 255, A: 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.Index(tt.c); got != tt.want {
				t.Errorf("Index(%v) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestQuantizer_TransparentEntry(t *testing.T) {
	p, _ := BuildPalette([]string{"#000000", "#ffffff"}, nil)
	q, _ := NewQuantizer(p, true)

	if q.TransparentIndex() != 2 || len(q.Palette()) != 3 {
		t.Fatalf("transparent index = %d, palette len = %d", q.TransparentIndex(), len(q.Palette()))
	}
	if got := q.Index(color.NRGBA{R: 255, G: 255, B: 255, A: 127}); got != 2 {
		t.Errorf("alpha 127 -> %d, want transparent", got)
	}
	if got := q.Index(color.NRGBA{R: 255, G: 255, B: 255, A: 128}); got != 1 {
		t.Errorf("alpha 128 -> %d, want white", got)
	}
	// The transparent entry never wins a nearest-color search
	if got := q.Index(color.NRGBA{A: 255}); got != 0 {
		t.Errorf("opaque black -> %d, want 0", got)
	}
}

func TestQuantizer_Idempotent(t *testing.T) {
	p, _ := BuildPalette([]string{"#000000", "#ed1c24", "#28509e", "#ffffff", "#6d643f"}, nil)
	q, _ := NewQuantizer(p, false)

	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: uint8(x * y), A: 255})
		}
	}

	first := q.Quantize(src)

	// Re-expand to truecolor and quantize again
	expanded := image.NewNRGBA(first.Bounds())
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			expanded.Set(x, y, first.At(x, y))
		}
	}
	second := q.Quantize(expanded)

	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("pixel %d: %d then %d", i, first.Pix[i], second.Pix[i])
		}
	}
}

func TestQuantizer_Deterministic(t *testing.T) {
	p, _ := BuildPalette([]string{"#000000", "#ffffff", "#808080"}, nil)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 13)
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}

	q1, _ := NewQuantizer(p, false)
	q2, _ := NewQuantizer(p, false)
	a, b := q1.Quantize(src), q2.Quantize(src)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixel %d differs between runs", i)
		}
	}
}
