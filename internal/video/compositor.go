package video

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"tilelapse/internal/common"
)

// ErrCropOutside is returned when the crop rectangle misses the frame entirely
var ErrCropOutside = errors.New("crop rectangle lies outside the frame")

// overlayPadding is the distance in pixels between the date text and the frame edge
const overlayPadding = 10

// CompositorOptions controls the per-frame transformation
type CompositorOptions struct {
	Crop         *image.Rectangle // nil keeps the full frame
	Background   *color.RGBA      // nil keeps transparency
	Quantizer    *Quantizer       // non-nil produces paletted frames
	DateOverlay  bool
	DatePosition string
}

// Compositor turns decoded captures into encoder-ready frames:
// crop, flatten, optional date overlay, then palette mapping.
type Compositor struct {
	opts CompositorOptions
}

// NewCompositor creates a compositor
func NewCompositor(opts CompositorOptions) *Compositor {
	return &Compositor{opts: opts}
}

// Process applies the configured steps to src. The result is an
// *image.Paletted when a quantizer is set and an *image.NRGBA otherwise.
func (c *Compositor) Process(src image.Image, date time.Time) (image.Image, error) {
	frame, err := CropFrame(src, c.opts.Crop)
	if err != nil {
		return nil, err
	}

	if c.opts.Background != nil {
		frame = Flatten(frame, *c.opts.Background)
	}

	if c.opts.DateOverlay {
		drawDateOverlay(frame, date, c.opts.DatePosition)
	}

	if c.opts.Quantizer != nil {
		return c.opts.Quantizer.Quantize(frame), nil
	}
	return common.ToNRGBA(frame), nil
}

// CropFrame copies the intersection of crop and the frame bounds into a
// new raster at the origin. A nil crop copies the whole frame.
func CropFrame(src image.Image, crop *image.Rectangle) (*image.RGBA, error) {
	b := src.Bounds()
	r := b
	if crop != nil {
		r = crop.Add(b.Min).Intersect(b)
		if r.Empty() {
			return nil, fmt.Errorf("%w: crop %v, frame %v", ErrCropOutside, *crop, b.Sub(b.Min))
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst, nil
}

// Flatten composites frame over an opaque background color
func Flatten(frame *image.RGBA, bg color.RGBA) *image.RGBA {
	bg.A = 255
	dst := image.NewRGBA(frame.Bounds())
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), frame, frame.Bounds().Min, draw.Over)
	return dst
}

// drawDateOverlay draws the capture timestamp with a drop shadow
func drawDateOverlay(dst *image.RGBA, date time.Time, position string) {
	text := common.FormatVideoOverlay(date)
	face := basicfont.Face7x13

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	textWidth := drawer.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	var x, y int
	switch position {
	case "top-left":
		x, y = overlayPadding, overlayPadding+ascent
	case "top-right":
		x, y = w-textWidth-overlayPadding, overlayPadding+ascent
	case "bottom-left":
		x, y = overlayPadding, h-overlayPadding
	default:
		x, y = w-textWidth-overlayPadding, h-overlayPadding
	}

	shadow := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 180}),
		Face: face,
		Dot:  fixed.P(x+1, y+1),
	}
	shadow.DrawString(text)

	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
}
