// Package geom provides the small value types shared by the board, canvas,
// and placement packages.
//
// All coordinates are canvas pixels with the origin at the top-left corner
// and Y growing downward. Values are float64 but boards produced by the
// layout generator always carry integral coordinates.
package geom

import "math"

// Point is a position on the canvas.
type Point struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle. MinX/MinY is the top-left corner and
// MaxX/MaxY the bottom-right corner.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// XYWH builds a rectangle from its top-left corner and size.
func XYWH(x, y, w, h float64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return (r.MinX + r.MaxX) / 2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return (r.MinY + r.MaxY) / 2 }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.Width(), H: r.Height()} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

// Inset shrinks the rectangle by d on every side. A negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{MinX: r.MinX + d, MinY: r.MinY + d, MaxX: r.MaxX - d, MaxY: r.MaxY - d}
}

// Translate moves the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{MinX: r.MinX + dx, MinY: r.MinY + dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Intersects reports whether r and o share any area. Touching edges do not
// count as an intersection.
func (r Rect) Intersects(o Rect) bool {
	return !(r.MaxX <= o.MinX || r.MinX >= o.MaxX || r.MaxY <= o.MinY || r.MinY >= o.MaxY)
}

// ContainsHalfOpen reports whether p lies in [MinX, MaxX) x [MinY, MaxY).
func (r Rect) ContainsHalfOpen(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// ContainsClosed reports whether p lies in [MinX, MaxX] x [MinY, MaxY].
func (r Rect) ContainsClosed(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Bounds returns the axis-aligned bounding box of the given points.
// It returns the zero Rect when pts is empty.
func Bounds(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r
}
