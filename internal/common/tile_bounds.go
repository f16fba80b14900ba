package common

import "fmt"

// TileCoordinate identifies one tile in the canvas server's addressing scheme
type TileCoordinate struct {
	X int
	Y int
}

// String returns the "(x, y)" form used in log output
func (c TileCoordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// TileBounds represents the min/max row and column bounds of a tile set
type TileBounds struct {
	MinCol int
	MaxCol int
	MinRow int
	MaxRow int
}

// NewTileBounds builds bounds from two opposite corners given in any order
func NewTileBounds(a, b TileCoordinate) TileBounds {
	return TileBounds{
		MinCol: min(a.X, b.X),
		MaxCol: max(a.X, b.X),
		MinRow: min(a.Y, b.Y),
		MaxRow: max(a.Y, b.Y),
	}
}

// Cols returns the number of columns in the bounds
func (tb TileBounds) Cols() int {
	return tb.MaxCol - tb.MinCol + 1
}

// Rows returns the number of rows in the bounds
func (tb TileBounds) Rows() int {
	return tb.MaxRow - tb.MinRow + 1
}

// Count returns the number of tiles covered by the bounds
func (tb TileBounds) Count() int {
	return tb.Cols() * tb.Rows()
}

// Coordinates enumerates every tile in the rectangle, row by row from the top
// left, with no gaps and no duplicates
func (tb TileBounds) Coordinates() []TileCoordinate {
	coords := make([]TileCoordinate, 0, tb.Count())
	for y := tb.MinRow; y <= tb.MaxRow; y++ {
		for x := tb.MinCol; x <= tb.MaxCol; x++ {
			coords = append(coords, TileCoordinate{X: x, Y: y})
		}
	}
	return coords
}

// Offset returns the grid cell (column, row) of a coordinate relative to the top left corner
func (tb TileBounds) Offset(c TileCoordinate) (col, row int) {
	return c.X - tb.MinCol, c.Y - tb.MinRow
}
