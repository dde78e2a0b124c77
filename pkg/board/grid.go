package board

import (
	"math"
	"sort"
)

// PositionTolerance is how far apart, in pixels, two coordinates may be and
// still count as the same row or column.
const PositionTolerance = 10.0

// Grid maps cell positions to 1-based rows and columns. It is built from
// the sorted distinct top-left coordinates of every cell, so row/col stay
// stable when an extension appends cells out of row-major index order.
type Grid struct {
	ys      []float64
	xs      []float64
	nbrCols int
}

// NewGrid indexes the given cells. nbrCols is only used by the index
// arithmetic fallback.
func NewGrid(cells []Cell, nbrCols int) *Grid {
	ys := make([]float64, 0, len(cells))
	xs := make([]float64, 0, len(cells))
	for _, c := range cells {
		b := c.Bounds()
		ys = append(ys, b.MinY)
		xs = append(xs, b.MinX)
	}
	return &Grid{ys: Cluster(ys, PositionTolerance), xs: Cluster(xs, PositionTolerance), nbrCols: nbrCols}
}

// Rows returns the distinct row positions, top to bottom.
func (g *Grid) Rows() []float64 { return append([]float64(nil), g.ys...) }

// Cols returns the distinct column positions, left to right.
func (g *Grid) Cols() []float64 { return append([]float64(nil), g.xs...) }

// RowCol returns the 1-based row and column of c.
func (g *Grid) RowCol(c Cell) (row, col int) {
	b := c.Bounds()
	ri := lookup(g.ys, b.MinY)
	ci := lookup(g.xs, b.MinX)
	if ri >= 0 && ci >= 0 {
		return ri + 1, ci + 1
	}
	return IndexRowCol(c.Index, g.nbrCols)
}

// IndexRowCol derives row and column from a row-major index. It is only
// correct for boards that were never extended.
func IndexRowCol(index, nbrCols int) (row, col int) {
	if nbrCols <= 0 || index <= 0 {
		return 1, max(index, 1)
	}
	return (index-1)/nbrCols + 1, (index-1)%nbrCols + 1
}

// Cluster sorts vals and collapses values within tol of the previous kept
// value.
func Cluster(vals []float64, tol float64) []float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	out := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if len(out) > 0 && v-out[len(out)-1] <= tol {
			continue
		}
		out = append(out, v)
	}
	return out
}

// lookup finds v in sorted, first exactly and then within tolerance.
func lookup(sorted []float64, v float64) int {
	for i, s := range sorted {
		if s == v {
			return i
		}
	}
	for i, s := range sorted {
		if math.Abs(s-v) <= PositionTolerance {
			return i
		}
	}
	return -1
}
