package renderer

import (
	"image"
)

// Tile is a rectangular region of the image rendered as one unit of work
type Tile struct {
	ID     int
	Bounds image.Rectangle
}

// NewTile creates a tile covering the given bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{ID: id, Bounds: bounds}
}

// Seed derives the tile's random seed from the render seed.
// Output is therefore independent of which worker renders the tile.
func (t *Tile) Seed(baseSeed int64) int64 {
	return baseSeed + int64(t.ID)*7919
}

// NewTileGrid splits a width x height image into tiles of at most tileSize square,
// in row-major order starting at the top-left corner.
func NewTileGrid(width, height, tileSize int) []*Tile {
	if tileSize <= 0 {
		tileSize = DefaultParallelConfig().TileSize
	}

	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
