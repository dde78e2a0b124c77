// Package canvas models the layered image document a board is drawn on.
//
// The board packages never touch layers directly. They go through
// [Surface], a narrow capability interface: find or create named groups,
// add paint layers and fill or clear rectangles in them, place images and
// text, query bounds and visibility, move and remove layers, resize the
// canvas, and add guides.
//
// [Document] is the implementation shipped with this module. It is an
// explicit tree of owned layers addressed by stable [LayerID] values, and
// is persisted as JSON next to the board file. [RenderPNG] rasterizes a
// Document.
//
// # Layer Tree
//
// Children are stored bottom to top: the last child of a group is drawn
// last and appears on top. A zero LayerID addresses the document root.
package canvas

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/openboard/pkg/geom"
)

// LayerID identifies a layer within a document. The zero value is the
// document root.
type LayerID string

// Root addresses the top level of the layer tree.
const Root LayerID = ""

// Kind classifies a layer.
type Kind string

const (
	KindGroup Kind = "group"
	KindPaint Kind = "paint"
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// Color is an opaque RGB color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGB builds a Color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Common colors.
var (
	White = RGB(255, 255, 255)
	Black = RGB(0, 0, 0)
)

// GuideOrientation is the direction of a guide line.
type GuideOrientation string

const (
	Horizontal GuideOrientation = "horizontal"
	Vertical   GuideOrientation = "vertical"
)

// Guide is a non-printing alignment line.
type Guide struct {
	Orientation GuideOrientation `json:"orientation"`
	Position    float64          `json:"position"`
}

// LayerInfo is a read-only view of a layer.
type LayerInfo struct {
	ID      LayerID
	Name    string
	Kind    Kind
	Visible bool
	Bounds  geom.Rect
}

// ImageSpec describes an image placement. Rect is the rendered size and
// position of the whole image; only the part inside Clip is visible.
type ImageSpec struct {
	Name   string
	Source string
	Rect   geom.Rect
	Clip   geom.Rect
}

// TextSpec describes a text layer. X and Y are the top-left corner of the
// text box.
type TextSpec struct {
	Name  string
	Text  string
	X, Y  float64
	Size  float64
	Color Color
}

// Surface is the canvas capability set used by the layout, placement,
// extension and caption code.
type Surface interface {
	// Size returns the canvas dimensions in pixels.
	Size() (w, h int)
	// Resize changes the canvas dimensions. Structural paint layers follow
	// the canvas extent; their content is not changed.
	Resize(w, h int) error

	// Group returns the named group under parent, creating it on top of
	// parent's children when missing.
	Group(parent LayerID, name string) (LayerID, error)
	// Find returns the first child of parent with the given name.
	Find(parent LayerID, name string) (LayerID, bool)
	// Children lists parent's children, bottom to top.
	Children(parent LayerID) ([]LayerInfo, error)

	// AddPaintLayer adds an empty paint layer on top of parent's children.
	// A structural layer spans the whole canvas and follows Resize.
	AddPaintLayer(parent LayerID, name string, structural bool) (LayerID, error)
	// Fill paints r with c.
	Fill(id LayerID, r geom.Rect, c Color) error
	// Clear makes r transparent.
	Clear(id LayerID, r geom.Rect) error

	// PlaceImage adds an image layer on top of parent's children.
	PlaceImage(parent LayerID, spec ImageSpec) (LayerID, error)
	// AddText adds a text layer on top of parent's children.
	AddText(parent LayerID, spec TextSpec) (LayerID, error)

	Bounds(id LayerID) (geom.Rect, error)
	Visible(id LayerID) (bool, error)
	SetVisible(id LayerID, visible bool) error
	// Move translates a layer and, for groups, all of its descendants.
	Move(id LayerID, dx, dy float64) error
	// Remove deletes a layer and its descendants.
	Remove(id LayerID) error

	AddGuide(o GuideOrientation, position float64) error
}

// Snapshotter is implemented by surfaces that can roll back a multi-step
// edit. Snapshot captures the current state; calling the returned function
// restores it.
type Snapshotter interface {
	Snapshot() (restore func())
}

// Prober reports the pixel dimensions of an image file.
type Prober interface {
	Probe(path string) (w, h int, err error)
}

// ParseColor parses a #rrggbb or rrggbb string.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
