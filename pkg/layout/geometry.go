package layout

import (
	"math"

	"github.com/matzehuels/openboard/pkg/board"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
)

const (
	// BandHeight is the space kept free above the grid for the logo and
	// below it for the legend. Both bands halve when the grid is too tall.
	BandHeight = 60

	// ScaleHeadroom is the share of the limiting canvas dimension a shrunk
	// grid may cover.
	ScaleHeadroom = 0.95
)

// Input holds the generator dimensions in pixels.
type Input struct {
	CanvasWidth, CanvasHeight int
	Cols, Rows                int
	CellWidth, CellHeight     int
	Margin, Spacing           int
}

// Geometry is the computed grid. Its embedded Input carries the cell size,
// margin and spacing after scaling.
type Geometry struct {
	Input

	Scaled      bool
	ScaleFactor float64

	TotalWidth, TotalHeight int
	OffsetX, OffsetY        int
	TopBand, BottomBand     int
}

func totals(in Input) (w, h int) {
	w = in.Cols*in.CellWidth + (in.Cols-1)*in.Spacing
	h = in.Rows*in.CellHeight + (in.Rows-1)*in.Spacing
	return w, h
}

// Compute places the grid on the canvas. It fails with CONFIGURATION_ERROR
// when the inputs cannot produce cells of positive size or when the margin
// leaves no room for an image.
func Compute(in Input) (Geometry, error) {
	if in.CanvasWidth <= 0 || in.CanvasHeight <= 0 {
		return Geometry{}, errs.New(errs.ErrCodeConfiguration, "canvas size must be positive (got %dx%d px)", in.CanvasWidth, in.CanvasHeight)
	}
	if in.Cols < 1 || in.Rows < 1 {
		return Geometry{}, errs.New(errs.ErrCodeConfiguration, "grid needs at least one column and one row (got %dx%d)", in.Cols, in.Rows)
	}
	if in.CellWidth <= 0 || in.CellHeight <= 0 {
		return Geometry{}, errs.New(errs.ErrCodeConfiguration, "cell size must be positive (got %dx%d px)", in.CellWidth, in.CellHeight)
	}
	if in.Margin < 0 || in.Spacing < 0 {
		return Geometry{}, errs.New(errs.ErrCodeConfiguration, "margin and spacing must not be negative")
	}

	g := Geometry{Input: in, ScaleFactor: 1}
	g.TotalWidth, g.TotalHeight = totals(in)

	if g.TotalWidth > in.CanvasWidth || g.TotalHeight > in.CanvasHeight {
		f := math.Min(float64(in.CanvasWidth)/float64(g.TotalWidth), float64(in.CanvasHeight)/float64(g.TotalHeight)) * ScaleHeadroom
		g.Scaled = true
		g.ScaleFactor = f
		g.CellWidth = int(math.Floor(float64(in.CellWidth) * f))
		g.CellHeight = int(math.Floor(float64(in.CellHeight) * f))
		g.Spacing = int(math.Floor(float64(in.Spacing) * f))
		g.Margin = int(math.Floor(float64(in.Margin) * f))
		g.TotalWidth, g.TotalHeight = totals(g.Input)

		if g.CellWidth <= 0 || g.CellHeight <= 0 {
			return Geometry{}, errs.New(errs.ErrCodeConfiguration, "grid of %dx%d cells does not fit a %dx%d px canvas", in.Cols, in.Rows, in.CanvasWidth, in.CanvasHeight)
		}
	}

	if 2*g.Margin >= g.CellWidth || 2*g.Margin >= g.CellHeight {
		return Geometry{}, errs.New(errs.ErrCodeConfiguration, "margin %d px leaves no room in a %dx%d px cell", g.Margin, g.CellWidth, g.CellHeight)
	}

	g.TopBand, g.BottomBand = BandHeight, BandHeight
	if g.TotalHeight > in.CanvasHeight-2*BandHeight {
		g.TopBand, g.BottomBand = BandHeight/2, BandHeight/2
	}
	available := in.CanvasHeight - g.TopBand - g.BottomBand

	g.OffsetX = int(math.Floor(float64(in.CanvasWidth-g.TotalWidth) / 2))
	g.OffsetY = int(math.Floor(float64(g.TopBand) + float64(available-g.TotalHeight)/2))
	return g, nil
}

// CellRect returns the rectangle of the cell at 1-based row and col.
func (g Geometry) CellRect(row, col int) geom.Rect {
	x := g.OffsetX + (col-1)*(g.CellWidth+g.Spacing)
	y := g.OffsetY + (row-1)*(g.CellHeight+g.Spacing)
	return geom.XYWH(float64(x), float64(y), float64(g.CellWidth), float64(g.CellHeight))
}

// Cells returns the grid in row-major order with index (row-1)*cols+col.
func (g Geometry) Cells() []board.Cell {
	cells := make([]board.Cell, 0, g.Cols*g.Rows)
	for r := 1; r <= g.Rows; r++ {
		for c := 1; c <= g.Cols; c++ {
			cell := board.NewCell((r-1)*g.Cols+c, g.CellRect(r, c))
			cell.Row, cell.Col = r, c
			cells = append(cells, cell)
		}
	}
	return cells
}

// ImgMaxWidth is the widest image a full cell shows without clipping.
func (g Geometry) ImgMaxWidth() int { return g.CellWidth - 2*g.Margin }

// ImgMaxHeight is the tallest image a full cell shows without clipping.
func (g Geometry) ImgMaxHeight() int { return g.CellHeight - 2*g.Margin }

// GridRect is the rectangle covered by all cells.
func (g Geometry) GridRect() geom.Rect {
	return geom.XYWH(float64(g.OffsetX), float64(g.OffsetY), float64(g.TotalWidth), float64(g.TotalHeight))
}
