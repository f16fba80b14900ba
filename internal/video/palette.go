package video

import (
	"fmt"
	"image"
	"image/color"

	"tilelapse/internal/config"
)

// alphaThreshold is the opacity below which a pixel maps to the transparent entry
const alphaThreshold = 128

// Quantizer maps RGB colors onto a fixed palette by exact nearest color.
// Results are memoized per RGB triple, so a Quantizer is not safe for
// concurrent use.
type Quantizer struct {
	palette     color.Palette
	opaque      int // entries eligible for nearest-color search
	transparent int // index of the transparent entry, or -1
	cache       map[uint32]uint8
}

// BuildPalette parses hex colors and appends background once when it is
// not already present.
func BuildPalette(hexColors []string, background *color.RGBA) (color.Palette, error) {
	palette := make(color.Palette, 0, len(hexColors)+1)
	for i, h := range hexColors {
		r, g, b, err := config.ParseHexColor(h)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		palette = append(palette, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	if background != nil && !containsRGB(palette, *background) {
		palette = append(palette, color.RGBA{R: background.R, G: background.G, B: background.B, A: 255})
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	if len(palette) > 256 {
		return nil, fmt.Errorf("palette has %d colors, GIF allows at most 256", len(palette))
	}
	return palette, nil
}

func containsRGB(p color.Palette, c color.RGBA) bool {
	for _, entry := range p {
		e := entry.(color.RGBA)
		if e.R == c.R && e.G == c.G && e.B == c.B {
			return true
		}
	}
	return false
}

// NewQuantizer creates a quantizer over palette. With withTransparency an
// extra fully transparent entry is appended for pixels below half opacity.
func NewQuantizer(palette color.Palette, withTransparency bool) (*Quantizer, error) {
	q := &Quantizer{
		palette:     append(color.Palette(nil), palette...),
		opaque:      len(palette),
		transparent: -1,
		cache:       make(map[uint32]uint8),
	}
	if withTransparency {
		q.transparent = len(q.palette)
		q.palette = append(q.palette, color.RGBA{})
	}
	if len(q.palette) > 256 {
		return nil, fmt.Errorf("palette has %d colors, GIF allows at most 256", len(q.palette))
	}
	return q, nil
}

// Palette returns the full palette including any transparent entry
func (q *Quantizer) Palette() color.Palette {
	return q.palette
}

// TransparentIndex returns the transparent entry index, or -1
func (q *Quantizer) TransparentIndex() int {
	return q.transparent
}

// Index returns the palette index for a non-premultiplied color.
// Ties on distance resolve to the lowest index.
func (q *Quantizer) Index(c color.NRGBA) uint8 {
	if q.transparent >= 0 && c.A < alphaThreshold {
		return uint8(q.transparent)
	}

	key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if idx, ok := q.cache[key]; ok {
		return idx
	}

	best, bestDist := 0, int32(-1)
	for i := 0; i < q.opaque; i++ {
		e := q.palette[i].(color.RGBA)
		dr := int32(c.R) - int32(e.R)
		dg := int32(c.G) - int32(e.G)
		db := int32(c.B) - int32(e.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	q.cache[key] = uint8(best)
	return uint8(best)
}

// Quantize maps every pixel of src onto the palette without dithering
func (q *Quantizer) Quantize(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), q.palette)

	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := n.Pix[(y+b.Min.Y-n.Rect.Min.Y)*n.Stride:]
			for x := 0; x < b.Dx(); x++ {
				i := (x + b.Min.X - n.Rect.Min.X) * 4
				dst.Pix[y*dst.Stride+x] = q.Index(color.NRGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]})
			}
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.Pix[y*dst.Stride+x] = q.Index(c)
		}
	}
	return dst
}
