package imagery

import (
	"image"
	"image/draw"

	"tilelapse/internal/common"
)

// Cycle holds every tile of one fetch pass. Empty tiles already carry a
// transparent placeholder of TileSize.
type Cycle struct {
	Bounds   common.TileBounds
	TileSize image.Point
	Tiles    map[common.TileCoordinate]*image.RGBA
}

// Placeholder returns a fully transparent tile of the given size
func Placeholder(size image.Point) *image.RGBA {
	return image.NewRGBA(image.Rectangle{Max: size})
}

// Stitch pastes every tile at its grid offset onto a transparent canvas of
// (cols*tileW) x (rows*tileH). Each tile is composited through its own alpha
// channel. Tiles larger than TileSize are clipped to their cell.
func Stitch(c *Cycle) *image.RGBA {
	tileW, tileH := c.TileSize.X, c.TileSize.Y
	combined := image.NewRGBA(image.Rect(0, 0, c.Bounds.Cols()*tileW, c.Bounds.Rows()*tileH))

	for _, coord := range c.Bounds.Coordinates() {
		tile, ok := c.Tiles[coord]
		if !ok || tile == nil {
			continue
		}
		col, row := c.Bounds.Offset(coord)
		destX := col * tileW
		destY := row * tileH
		destRect := image.Rect(destX, destY, destX+tileW, destY+tileH)
		draw.Draw(combined, destRect, tile, tile.Bounds().Min, draw.Over)
	}

	return combined
}
