// Package placement computes where an image goes inside a cell and puts
// it there.
//
// [Plan] is pure: from the cell, the image size and a resize mode it
// derives the final size, the top-left position and the clip rectangle.
// [Apply] performs the canvas side effects.
//
// A full cell is used in single mode and for landscape images in spread
// mode; portrait images in spread mode use one page. The target rectangle
// is the cell or page minus the margin on every side. The clip is always
// the whole cell or page, so cover-mode overflow is hidden by the clip
// rather than by cropping the image.
package placement

import (
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
)

// ResizeMode selects how an image is scaled into its target.
type ResizeMode string

const (
	// Fit scales the image to fit entirely inside the target.
	Fit ResizeMode = errs.ResizeFit
	// Cover scales the image to cover the target; the clip hides overflow.
	Cover ResizeMode = errs.ResizeCover
	// NoResize keeps the source size.
	NoResize ResizeMode = errs.ResizeNoResize
)

// DefaultResizeMode is used when no mode is given.
const DefaultResizeMode = Fit

// ParseResizeMode normalizes a user-supplied mode.
func ParseResizeMode(s string) (ResizeMode, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultResizeMode, nil
	}
	m, err := errs.ValidateResizeMode(s)
	if err != nil {
		return "", err
	}
	return ResizeMode(m), nil
}

// Request describes one image to place.
type Request struct {
	Cell     board.Cell
	CellType board.CellType
	// Side picks the page for portrait images in spread cells. It is
	// ignored otherwise.
	Side   board.Side
	Margin float64

	SourceWidth  int
	SourceHeight int
	Mode         ResizeMode
}

// Result is the computed placement.
type Result struct {
	FinalWidth  int
	FinalHeight int
	TargetX     int
	TargetY     int
	Clip        geom.Rect
	Side        board.Side
	Orientation board.Orientation
	// FullCell is false when the image uses one page of a spread cell.
	FullCell bool
}

// Rect is the rectangle covered by the scaled image before clipping.
func (r Result) Rect() geom.Rect {
	return geom.XYWH(float64(r.TargetX), float64(r.TargetY), float64(r.FinalWidth), float64(r.FinalHeight))
}

// Plan computes the placement for req. Unknown resize modes behave as
// Cover. Targets that a large margin would make negative are clamped to
// zero; a scaled image with no pixels left is reported as
// PLACEMENT_SKIPPED.
func Plan(req Request) (Result, error) {
	if req.SourceWidth <= 0 || req.SourceHeight <= 0 {
		return Result{}, errs.New(errs.ErrCodeInvalidInput, "image has invalid size %dx%d", req.SourceWidth, req.SourceHeight)
	}

	res := Result{
		Orientation: board.OrientationOf(req.SourceWidth, req.SourceHeight),
		Side:        board.Left,
	}
	res.FullCell = req.CellType != board.Spread || res.Orientation == board.Landscape
	if !res.FullCell && req.Side == board.Right {
		res.Side = board.Right
	}

	cell := req.Cell.Bounds()
	cellW := float64(int(cell.Width()))
	cellH := float64(int(cell.Height()))
	half := math.Floor(cellW / 2)

	targetW := cellW - 2*req.Margin
	if !res.FullCell {
		targetW = half - 2*req.Margin
	}
	targetH := cellH - 2*req.Margin
	targetW, targetH = math.Max(targetW, 0), math.Max(targetH, 0)

	sw, sh := float64(req.SourceWidth), float64(req.SourceHeight)
	switch req.Mode {
	case NoResize:
		res.FinalWidth, res.FinalHeight = req.SourceWidth, req.SourceHeight
	case Fit:
		r := math.Min(targetW/sw, targetH/sh)
		res.FinalWidth, res.FinalHeight = int(sw*r), int(sh*r)
	default:
		r := math.Max(targetW/sw, targetH/sh)
		res.FinalWidth, res.FinalHeight = int(sw*r), int(sh*r)
	}
	if res.FinalWidth < 1 || res.FinalHeight < 1 {
		return Result{}, errs.New(errs.ErrCodePlacementSkipped,
			"no room for the image in cell %d: target %.0fx%.0f px", req.Cell.Index, targetW, targetH)
	}

	fw, fh := float64(res.FinalWidth), float64(res.FinalHeight)
	res.TargetY = int(cell.MinY + (cellH-fh)/2)
	switch {
	case res.FullCell:
		res.TargetX = int(cell.MinX + (cellW-fw)/2)
		res.Clip = cell
	case res.Side == board.Right:
		res.TargetX = int(cell.MinX + half + (half-fw)/2)
		res.Clip = req.Cell.Half(board.Right)
	default:
		res.TargetX = int(cell.MinX + (half-fw)/2)
		res.Clip = req.Cell.Half(board.Left)
	}
	return res, nil
}

// Stem returns the file name of path without directory or extension. It
// names image layers and captions.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Apply adds the image at path to the Board Content group with the planned
// geometry. On spread boards it also makes the single-page strip of the
// cell visible for portrait images and hides it for landscape ones. A
// missing strip is logged, not returned.
func Apply(s canvas.Surface, path string, cell board.Cell, ct board.CellType, res Result, logger *log.Logger) (canvas.LayerID, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	content, err := s.Group(canvas.Root, board.GroupContent)
	if err != nil {
		return "", err
	}
	id, err := s.PlaceImage(content, canvas.ImageSpec{
		Name:   Stem(path),
		Source: path,
		Rect:   res.Rect(),
		Clip:   res.Clip,
	})
	if err != nil {
		return "", err
	}
	if ct != board.Spread {
		return id, nil
	}

	elements, ok := s.Find(canvas.Root, board.GroupElements)
	if !ok {
		logger.Warn("board has no elements group", "cell", cell.Index)
		return id, nil
	}
	if err := s.SetVisible(elements, true); err != nil {
		return id, err
	}
	page, ok := s.Find(elements, board.GroupSimplePage)
	if !ok {
		logger.Warn("board has no single-page strips", "cell", cell.Index)
		return id, nil
	}
	if err := s.SetVisible(page, true); err != nil {
		return id, err
	}
	strip, ok := s.Find(page, cell.Name())
	if !ok {
		logger.Warn("single-page strip not found", "strip", cell.Name(), "cell", cell.Index)
		return id, nil
	}
	portrait := res.Orientation == board.Portrait
	logger.Debug("single-page strip", "strip", cell.Name(), "visible", portrait)
	return id, s.SetVisible(strip, portrait)
}
