// Package extend grows a board by one row or one column.
//
// An extension appends one cell per existing row (Right) or per existing
// column (Bottom), enlarges the canvas by one cell pitch, paints the new
// strip in the board colors, punches the new cells into the structural
// layers, places overlays, moves the legend along and rewrites the
// descriptor.
//
// Extensions are all-or-nothing. Everything that can fail before the
// canvas is touched is checked first; if the canvas implements
// [canvas.Snapshotter] it is rolled back when a later step fails, and the
// descriptor file is only rewritten once the canvas is complete.
//
// # Alternate
//
// [Alternate] reads the last direction from a [state.DirectionStore]: after
// Right comes Bottom, after anything else (including nothing) comes Right.
// The chosen direction is saved only when the extension succeeded.
package extend

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
	"github.com/matzehuels/openboard/pkg/layout"
	"github.com/matzehuels/openboard/pkg/observability"
	"github.com/matzehuels/openboard/pkg/state"
)

// Direction selects where new cells are added.
type Direction string

const (
	Bottom    Direction = "Bottom"
	Right     Direction = "Right"
	Alternate Direction = "Alternate"
)

// DefaultDirection is used when no direction is given.
const DefaultDirection = Alternate

// DefaultSpacing is the cell gap used when it cannot be inferred from the
// board.
const DefaultSpacing = 40.0

// ParseDirection accepts a direction name in any case, or the numeric
// codes 0 (Bottom), 1 (Right) and 2 (Alternate). Empty selects
// DefaultDirection.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDirection, nil
	case "bottom", "0":
		return Bottom, nil
	case "right", "1":
		return Right, nil
	case "alternate", "2":
		return Alternate, nil
	}
	return "", errs.New(errs.ErrCodeInvalidDirection, "invalid direction: %q (must be one of: bottom, right, alternate)", s)
}

// Next returns the direction an alternating extension takes after last.
func Next(last string) Direction {
	if Direction(last) == Right {
		return Bottom
	}
	return Right
}

// =============================================================================
// Request
// =============================================================================

// Request describes one extension.
type Request struct {
	// Board is the current descriptor. It is not modified.
	Board *board.Descriptor
	// Path is the descriptor file to rewrite. Empty skips the write.
	Path    string
	Surface canvas.Surface

	Direction Direction
	// Store holds the last direction per board. Nil disables alternation
	// memory: Alternate then always picks Right.
	Store state.DirectionStore

	// OverlayFiles replace the board's own overlays for the new cells.
	OverlayFiles []string

	Prober canvas.Prober
	Logger *log.Logger
}

// SetDefaults fills unset optional fields.
func (r *Request) SetDefaults() {
	if r.Direction == "" {
		r.Direction = DefaultDirection
	}
	if r.Prober == nil {
		r.Prober = canvas.FileProber{}
	}
	if r.Logger == nil {
		r.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the request without touching the canvas or any file.
func (r *Request) Validate() error {
	if r.Board == nil {
		return errs.New(errs.ErrCodeInvalidInput, "no board to extend")
	}
	if err := r.Board.RequireCells(); err != nil {
		return err
	}
	if r.Surface == nil {
		return errs.New(errs.ErrCodeInvalidInput, "no canvas to extend")
	}
	if _, err := ParseDirection(string(r.Direction)); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Planning
// =============================================================================

// Plan is the pure part of an extension: where the new cells go and how
// much the canvas grows.
type Plan struct {
	Direction Direction
	Spacing   float64
	CellW     float64
	CellH     float64
	NewCells  []board.Cell
	NbrCols   int
	NbrRows   int
	// Pitch is how far the legend moves: one cell plus spacing along the
	// growth axis.
	Pitch float64
}

// InferSpacing returns the horizontal gap between the first pair of
// neighbouring cells on the same row. Boards with a single column fall back
// to the vertical gap between the first pair in the same column, and to
// DefaultSpacing when neither exists.
func InferSpacing(cells []board.Cell) float64 {
	sorted := append([]board.Cell(nil), cells...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Bounds(), sorted[j].Bounds()
		if a.MinY != b.MinY {
			return a.MinY < b.MinY
		}
		return a.MinX < b.MinX
	})
	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i].Bounds(), sorted[i+1].Bounds()
		if math.Abs(a.MinY-b.MinY) >= board.PositionTolerance {
			continue
		}
		if gap := b.MinX - a.MaxX; gap > 0 {
			return gap
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Bounds(), sorted[j].Bounds()
		if a.MinX != b.MinX {
			return a.MinX < b.MinX
		}
		return a.MinY < b.MinY
	})
	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i].Bounds(), sorted[i+1].Bounds()
		if math.Abs(a.MinX-b.MinX) >= board.PositionTolerance {
			continue
		}
		if gap := b.MinY - a.MaxY; gap > 0 {
			return gap
		}
	}
	return DefaultSpacing
}

// NewPlan computes the cells an extension in dir adds to d. dir must be
// Bottom or Right.
func NewPlan(d *board.Descriptor, dir Direction) (Plan, error) {
	if err := d.RequireCells(); err != nil {
		return Plan{}, err
	}
	if dir != Bottom && dir != Right {
		return Plan{}, errs.New(errs.ErrCodeInvalidDirection, "cannot plan an extension towards %q", dir)
	}

	grid := board.NewGrid(d.Cells, d.NbrCols())
	p := Plan{
		Direction: dir,
		Spacing:   InferSpacing(d.Cells),
		NbrCols:   d.NbrCols(),
		NbrRows:   d.NbrRows(),
	}
	if p.NbrCols <= 0 {
		p.NbrCols = len(grid.Cols())
	}
	if p.NbrRows <= 0 {
		p.NbrRows = len(grid.Rows())
	}

	var maxX, maxY float64
	for _, c := range d.Cells {
		b := c.Bounds()
		maxX = math.Max(maxX, b.MaxX)
		maxY = math.Max(maxY, b.MaxY)
		if b.Width() > 0 {
			p.CellW = b.Width()
		}
		if b.Height() > 0 {
			p.CellH = b.Height()
		}
	}

	n := len(d.Cells)
	switch dir {
	case Right:
		x := maxX + p.Spacing
		for i, y := range grid.Rows() {
			c := board.NewCell(n+i+1, geom.XYWH(x, y, p.CellW, p.CellH))
			c.Row, c.Col = i+1, p.NbrCols+1
			p.NewCells = append(p.NewCells, c)
		}
		p.NbrCols++
		p.Pitch = p.CellW + p.Spacing
	case Bottom:
		y := maxY + p.Spacing
		for i, x := range grid.Cols() {
			c := board.NewCell(n+i+1, geom.XYWH(x, y, p.CellW, p.CellH))
			c.Row, c.Col = p.NbrRows+1, i+1
			p.NewCells = append(p.NewCells, c)
		}
		p.NbrRows++
		p.Pitch = p.CellH + p.Spacing
	}
	return p, nil
}

// Grow returns the canvas size after the extension and the newly added
// strip of canvas.
func (p Plan) Grow(w, h int) (newW, newH int, strip geom.Rect) {
	switch p.Direction {
	case Right:
		newW = int(math.Round(float64(w) + p.CellW + p.Spacing))
		return newW, h, geom.XYWH(float64(w), 0, float64(newW-w), float64(h))
	default:
		newH = int(math.Round(float64(h) + p.CellH + p.Spacing))
		return w, newH, geom.XYWH(0, float64(h), float64(w), float64(newH-h))
	}
}

// =============================================================================
// Extension
// =============================================================================

// Resolve turns dir into Bottom or Right, consulting store for Alternate.
// A store read failure is logged and treated as no previous extension.
func Resolve(ctx context.Context, store state.DirectionStore, boardName string, dir Direction, logger *log.Logger) Direction {
	if dir != Alternate {
		return dir
	}
	if store == nil {
		return Right
	}
	last, err := store.Last(ctx, boardName)
	if err != nil {
		logger.Warn("last extension direction unreadable", "board", boardName, "err", err)
		last = ""
	}
	next := Next(last)
	logger.Debug("alternating extension", "last", last, "next", next)
	return next
}

// Extend grows the board described by req and returns the new descriptor.
// Failures after validation are reported as EXTENSION_FAILURE.
func Extend(ctx context.Context, req Request) (out *board.Descriptor, err error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Board = req.Board.WithRowCol()
	dir, _ := ParseDirection(string(req.Direction))
	name := req.Board.Name()
	logger := req.Logger

	start := time.Now()
	hooks := observability.Board()
	effective := Resolve(ctx, req.Store, name, dir, logger)
	hooks.OnExtendStart(ctx, name, string(effective))
	defer func() {
		added := 0
		if out != nil {
			added = len(out.Cells) - len(req.Board.Cells)
		}
		hooks.OnExtendComplete(ctx, name, string(effective), added, time.Since(start), err)
	}()

	plan, err := NewPlan(req.Board, effective)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeExtensionFailure, err, "plan extension")
	}
	ct := req.Board.CellType()
	st, err := layout.FindStructure(req.Surface, ct)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeExtensionFailure, err, "board canvas is incomplete")
	}

	if sn, ok := req.Surface.(canvas.Snapshotter); ok {
		restore := sn.Snapshot()
		defer func() {
			if err != nil {
				restore()
			}
		}()
	}

	out = req.Board.Clone()
	if err := extendCanvas(req, st, plan, out); err != nil {
		out = nil
		return nil, errs.Wrap(errs.ErrCodeExtensionFailure, err, "extend canvas")
	}
	w, h := req.Surface.Size()
	out.Meta.SetInt(board.KeyNbrCols, plan.NbrCols)
	out.Meta.SetInt(board.KeyNbrRows, plan.NbrRows)
	out.Meta.SetInt(board.KeyLayoutWidth, w)
	out.Meta.SetInt(board.KeyLayoutHeight, h)
	out.Cells = append(out.Cells, plan.NewCells...)

	if req.Path != "" {
		if err := out.Write(req.Path); err != nil {
			out = nil
			return nil, errs.Wrap(errs.ErrCodeExtensionFailure, err, "rewrite board file")
		}
	}

	if req.Store != nil {
		if err := req.Store.Save(ctx, name, string(effective)); err != nil {
			logger.Warn("extension direction not saved", "board", name, "err", err)
		}
	}
	logger.Info("board extended", "board", name, "direction", effective,
		"added", len(plan.NewCells), "cols", plan.NbrCols, "rows", plan.NbrRows,
		"size", fmt.Sprintf("%dx%d", w, h))
	return out, nil
}

// extendCanvas applies plan to the surface and records overlay indexes in
// out.
func extendCanvas(req Request, st layout.Structure, plan Plan, out *board.Descriptor) error {
	s := req.Surface
	ct := out.CellType()
	margin := out.Margin()
	palette := layout.PaletteFromMeta(&out.Meta)

	oldW, oldH := s.Size()
	newW, newH, strip := plan.Grow(oldW, oldH)
	if err := s.Resize(newW, newH); err != nil {
		return err
	}
	for _, f := range []struct {
		id canvas.LayerID
		c  canvas.Color
	}{
		{st.Mask, palette.Mask},
		{st.Borders, palette.Border},
		{st.Background, palette.Background},
	} {
		if err := s.Fill(f.id, strip, f.c); err != nil {
			return err
		}
	}

	for _, c := range plan.NewCells {
		if err := st.DecorateCell(s, c, ct, margin, palette); err != nil {
			return err
		}
	}

	if err := extendOverlays(req, st, plan, out); err != nil {
		return err
	}
	return moveLegend(s, st, plan)
}

// extendOverlays covers the new cells with overlays. User-supplied files
// take priority over the ones the board was generated with.
func extendOverlays(req Request, st layout.Structure, plan Plan, out *board.Descriptor) error {
	files := req.OverlayFiles
	if len(files) == 0 {
		files = out.Meta.OverlayFiles()
	}
	if len(files) == 0 {
		return nil
	}
	s := req.Surface
	ct := out.CellType()
	group, err := s.Group(st.Elements, board.GroupOverlay)
	if err != nil {
		return err
	}
	for _, c := range plan.NewCells {
		idx := layout.OverlayIndex(c.Row, c.Col, plan.NbrCols, len(files), ct)
		if err := layout.PlaceOverlays(s, group, c, files, idx, ct, req.Prober, req.Logger); err != nil {
			req.Logger.Warn("overlay skipped", "cell", c.Name(), "err", err)
			continue
		}
		out.Meta.SetOverlayIndex(c.Row, c.Col, idx)
	}
	return nil
}

// moveLegend shifts the legend by one pitch along the growth axis. A board
// without a legend is left alone.
func moveLegend(s canvas.Surface, st layout.Structure, plan Plan) error {
	id, ok := s.Find(st.Elements, board.LayerLegend)
	if !ok {
		if id, ok = s.Find(canvas.Root, board.LayerLegend); !ok {
			return nil
		}
	}
	if plan.Direction == Right {
		return s.Move(id, plan.Pitch, 0)
	}
	return s.Move(id, 0, plan.Pitch)
}
