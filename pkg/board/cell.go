package board

import (
	"fmt"

	"github.com/matzehuels/openboard/pkg/geom"
)

// CellType selects how many images a cell can hold.
type CellType string

const (
	// Single cells hold exactly one image.
	Single CellType = "single"
	// Spread cells hold one landscape image or up to two portrait images,
	// one per half.
	Spread CellType = "spread"
)

// Side addresses one half of a spread cell. Single cells always use Left.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Orientation classifies an image by its aspect.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// OrientationOf returns Landscape iff w > h. Square images are Portrait.
func OrientationOf(w, h int) Orientation {
	if w > h {
		return Landscape
	}
	return Portrait
}

// Cell is one grid slot. Its four corners always form an axis-aligned
// rectangle with positive width and height.
//
// Row and Col are 1-based and filled in when the cell is created, extended,
// or read back from disk. They are never written to the board file.
type Cell struct {
	Index       int
	TopLeft     geom.Point
	BottomLeft  geom.Point
	BottomRight geom.Point
	TopRight    geom.Point

	Row int
	Col int
}

// NewCell builds a cell from its bounding rectangle.
func NewCell(index int, r geom.Rect) Cell {
	return Cell{
		Index:       index,
		TopLeft:     geom.Point{X: r.MinX, Y: r.MinY},
		BottomLeft:  geom.Point{X: r.MinX, Y: r.MaxY},
		BottomRight: geom.Point{X: r.MaxX, Y: r.MaxY},
		TopRight:    geom.Point{X: r.MaxX, Y: r.MinY},
	}
}

// Bounds returns the axis-aligned bounding box of the four corners.
func (c Cell) Bounds() geom.Rect {
	return geom.Bounds(c.TopLeft, c.BottomLeft, c.BottomRight, c.TopRight)
}

// Width returns the cell width.
func (c Cell) Width() float64 { return c.Bounds().Width() }

// Height returns the cell height.
func (c Cell) Height() float64 { return c.Bounds().Height() }

// Half returns the left or right half of the cell, split at
// floor(width/2) from the left edge.
func (c Cell) Half(side Side) geom.Rect {
	b := c.Bounds()
	half := float64(int(b.Width() / 2))
	if side == Right {
		return geom.Rect{MinX: b.MinX + half, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
	}
	return geom.Rect{MinX: b.MinX, MinY: b.MinY, MaxX: b.MinX + half, MaxY: b.MaxY}
}

// Name returns the R{row}C{col} identity used for per-cell structural layers.
func (c Cell) Name() string {
	return fmt.Sprintf("R%dC%d", c.Row, c.Col)
}

// validate checks the corner invariant.
func (c Cell) validate() error {
	if c.Index <= 0 {
		return fmt.Errorf("index must be positive, got %d", c.Index)
	}
	if c.TopLeft.X != c.BottomLeft.X || c.TopRight.X != c.BottomRight.X ||
		c.TopLeft.Y != c.TopRight.Y || c.BottomLeft.Y != c.BottomRight.Y {
		return fmt.Errorf("corners are not an axis-aligned rectangle")
	}
	if c.Bounds().Empty() {
		return fmt.Errorf("cell has no area")
	}
	return nil
}
