// Package occupancy answers which cells of a board are already filled.
//
// Occupancy is never read from pixels. A [Cache] holds the bounding boxes
// of the visible layers in the Board Content group, and every query is
// answered from those boxes. The cache is rebuilt with [Build] after each
// placement and each extension; it is never patched in place.
//
// # Single Cells
//
// A single cell is occupied when the center of any entry lies inside it,
// using half-open bounds so a center on a shared edge belongs to one cell
// only.
//
// # Spread Cells
//
// A spread cell is split at floor(width/2) into a left and a right page.
// Entries whose center lies more than [NearbyDistance] outside the cell
// are ignored. An entry wider than [WideRatio] of the cell occupies every
// page its box intersects, and both pages when it is wider than
// [FullRatio] or centered within [CenterTolerance] of the cell's middle.
// A narrower entry occupies the page holding its center.
package occupancy

import (
	"math"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	"github.com/matzehuels/openboard/pkg/geom"
)

const (
	// MinLayerSize is the smallest width and height of a layer that counts
	// as placed content. Smaller layers are captions and other noise.
	MinLayerSize = 100.0

	WideRatio       = 0.6
	FullRatio       = 0.8
	CenterTolerance = 0.1
	NearbyDistance  = 100.0
)

// Entry is one placed content region.
type Entry struct {
	Name   string
	Bounds geom.Rect
	Center geom.Point
	Width  float64
	Height float64
}

// NewEntry builds an entry from a bounding box.
func NewEntry(name string, r geom.Rect) Entry {
	return Entry{Name: name, Bounds: r, Center: r.Center(), Width: r.Width(), Height: r.Height()}
}

// Cache is an immutable snapshot of placed content.
type Cache struct {
	entries []Entry
}

// NewCache returns a cache over the given entries, keeping only those of
// at least MinLayerSize on both axes.
func NewCache(entries ...Entry) *Cache {
	c := &Cache{}
	for _, e := range entries {
		if e.Width >= MinLayerSize && e.Height >= MinLayerSize {
			c.entries = append(c.entries, e)
		}
	}
	return c
}

// Build snapshots the visible, non-group layers of the Board Content
// group. A canvas without that group yields an empty cache.
func Build(s canvas.Surface) (*Cache, error) {
	content, ok := s.Find(canvas.Root, board.GroupContent)
	if !ok {
		return &Cache{}, nil
	}
	kids, err := s.Children(content)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(kids))
	for _, k := range kids {
		if !k.Visible || k.Kind == canvas.KindGroup || k.Bounds.Empty() {
			continue
		}
		entries = append(entries, NewEntry(k.Name, k.Bounds))
	}
	return NewCache(entries...), nil
}

// Entries returns a copy of the cached entries.
func (c *Cache) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// IsCellFree reports whether the left and right pages of cell are free.
// Single cells report the same value for both.
func (c *Cache) IsCellFree(cell board.Cell, ct board.CellType) (leftFree, rightFree bool) {
	if ct == board.Spread {
		return c.spreadFree(cell)
	}
	r := cell.Bounds()
	for _, e := range c.entries {
		if r.ContainsHalfOpen(e.Center) {
			return false, false
		}
	}
	return true, true
}

func (c *Cache) spreadFree(cell board.Cell) (bool, bool) {
	r := cell.Bounds()
	width := r.Width()
	half := math.Floor(width / 2)
	mid := r.MinX + half
	left := geom.Rect{MinX: r.MinX, MinY: r.MinY, MaxX: mid, MaxY: r.MaxY}
	right := geom.Rect{MinX: mid, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY}
	near := r.Inset(-NearbyDistance)

	var leftUsed, rightUsed bool
	for _, e := range c.entries {
		if !near.ContainsClosed(e.Center) {
			continue
		}
		ratio := e.Width / width
		if ratio > WideRatio {
			if e.Bounds.Intersects(left) {
				leftUsed = true
			}
			if e.Bounds.Intersects(right) {
				rightUsed = true
			}
			if ratio > FullRatio || math.Abs(e.Center.X-r.CenterX()) < width*CenterTolerance {
				leftUsed, rightUsed = true, true
			}
		} else if e.Center.X < mid {
			leftUsed = true
		} else {
			rightUsed = true
		}
		if leftUsed && rightUsed {
			break
		}
	}
	return !leftUsed, !rightUsed
}

// FindFree returns the first cell, in descriptor order, that can take an
// image of the given orientation, and the page to use. Single cells and
// landscape images on spread cells always use the left side. Portrait
// images on spread cells prefer the left page.
func (c *Cache) FindFree(cells []board.Cell, ct board.CellType, o board.Orientation) (board.Cell, board.Side, bool) {
	for _, cell := range cells {
		leftFree, rightFree := c.IsCellFree(cell, ct)
		switch {
		case ct != board.Spread:
			if leftFree {
				return cell, board.Left, true
			}
		case o == board.Landscape:
			if leftFree && rightFree {
				return cell, board.Left, true
			}
		case leftFree:
			return cell, board.Left, true
		case rightFree:
			return cell, board.Right, true
		}
	}
	return board.Cell{}, "", false
}
