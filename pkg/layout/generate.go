package layout

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/fonts"
	"github.com/matzehuels/openboard/pkg/geom"
	"github.com/matzehuels/openboard/pkg/observability"
)

// Legend and logo placement.
const (
	LegendRightInset   = 10
	LegendBottomMargin = 20
	LogoTopMargin      = 15
	LogoHeightRatio    = 0.6

	SizeInfoX    = 10
	SizeInfoY    = 10
	SizeInfoSize = 12
)

// SizeInfoText is the caption listing the largest unclipped image size.
func SizeInfoText(w, h int) string {
	return fmt.Sprintf("Img max size w x h : %d x %d px", w, h)
}

// Generate builds a new board on s and writes its descriptor to
// opts.Destination. The surface is resized to the canvas size first.
func Generate(ctx context.Context, opts Options, s canvas.Surface) (desc *board.Descriptor, err error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	palette, err := opts.Palette()
	if err != nil {
		return nil, err
	}
	geo, err := Compute(opts.Input())
	if err != nil {
		return nil, err
	}
	ct := board.CellType(opts.CellType)
	logger := opts.Logger

	start := time.Now()
	hooks := observability.Board()
	hooks.OnGenerateStart(ctx, opts.BoardName, geo.Cols, geo.Rows)
	defer func() {
		cells := 0
		if desc != nil {
			cells = len(desc.Cells)
		}
		hooks.OnGenerateComplete(ctx, opts.BoardName, cells, time.Since(start), err)
	}()

	logger.Debug("layout computed",
		"canvas", fmt.Sprintf("%dx%d", geo.CanvasWidth, geo.CanvasHeight),
		"cell", fmt.Sprintf("%dx%d", geo.CellWidth, geo.CellHeight),
		"spacing", geo.Spacing, "margin", geo.Margin)
	if geo.Scaled {
		logger.Info("grid scaled to fit canvas", "factor", fmt.Sprintf("%.3f", geo.ScaleFactor),
			"max image", fmt.Sprintf("%dx%d", geo.ImgMaxWidth(), geo.ImgMaxHeight()))
	}

	if err := os.MkdirAll(opts.Destination, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "cannot create destination folder %s", opts.Destination)
	}
	if err := s.Resize(geo.CanvasWidth, geo.CanvasHeight); err != nil {
		return nil, err
	}

	st, err := BuildStructure(s, ct, palette)
	if err != nil {
		return nil, fmt.Errorf("build layers: %w", err)
	}

	desc = &board.Descriptor{}
	writeMeta(&desc.Meta, opts, geo, palette)

	var (
		overlays     []string
		overlayGroup canvas.LayerID
	)
	if opts.Overlay != "" {
		overlays = FindOverlayFiles(opts.Overlay)
		if len(overlays) == 0 {
			logger.Warn("no overlay images found", "path", opts.Overlay)
		} else if overlayGroup, err = s.Group(st.Elements, board.GroupOverlay); err != nil {
			return nil, err
		}
	}

	for _, c := range geo.Cells() {
		if err := st.DecorateCell(s, c, ct, float64(geo.Margin), palette); err != nil {
			return nil, fmt.Errorf("draw cell %d: %w", c.Index, err)
		}
		if len(overlays) > 0 {
			idx := OverlayIndex(c.Row, c.Col, geo.Cols, len(overlays), ct)
			desc.Meta.SetOverlayIndex(c.Row, c.Col, idx)
			if err := PlaceOverlays(s, overlayGroup, c, overlays, idx, ct, opts.Prober, logger); err != nil {
				return nil, fmt.Errorf("place overlay in cell %d: %w", c.Index, err)
			}
		}
		if opts.Guides {
			if err := addGuides(s, c, ct, float64(geo.Margin)); err != nil {
				return nil, err
			}
		}
		desc.Cells = append(desc.Cells, c)
	}
	if len(overlays) > 0 {
		desc.Meta.SetOverlayFiles(overlays)
	}

	if !opts.NoLegend {
		if err := addLegend(s, st.Elements, geo, opts); err != nil {
			logger.Warn("legend skipped", "err", err)
		}
	}
	if opts.Logo != "" {
		if err := addLogo(s, st.Elements, geo, opts.Logo, opts.Prober); err != nil {
			logger.Warn("logo skipped", "path", opts.Logo, "err", err)
		}
	}

	info := SizeInfoText(geo.ImgMaxWidth(), geo.ImgMaxHeight())
	if _, err := s.AddText(st.Content, canvas.TextSpec{
		Name: info, Text: info, X: SizeInfoX, Y: SizeInfoY, Size: SizeInfoSize, Color: canvas.Black,
	}); err != nil {
		logger.Warn("size info skipped", "err", err)
	}

	path := board.Path(opts.Destination, opts.BoardName)
	if err := desc.Write(path); err != nil {
		return nil, err
	}
	logger.Info("board created", "board", opts.BoardName, "cells", len(desc.Cells), "path", path)
	return desc, nil
}

func writeMeta(m *board.Meta, opts Options, geo Geometry, p Palette) {
	m.Set(board.KeyBoardName, opts.BoardName)
	m.SetInt(board.KeyNbrCols, geo.Cols)
	m.SetInt(board.KeyNbrRows, geo.Rows)
	m.SetInt(board.KeyCellWidth, geo.CellWidth)
	m.SetInt(board.KeyCellHeight, geo.CellHeight)
	m.Set(board.KeyCellType, opts.CellType)
	m.SetInt(board.KeyAdjustedMargin, geo.Margin)
	m.SetInt(board.KeyAdjustedSpacing, geo.Spacing)
	m.SetInt(board.KeyLayoutWidth, geo.CanvasWidth)
	m.SetInt(board.KeyLayoutHeight, geo.CanvasHeight)
	m.SetInt(board.KeyImgMaxWidth, geo.ImgMaxWidth())
	m.SetInt(board.KeyImgMaxHeight, geo.ImgMaxHeight())
	p.WriteMeta(m)
}

// addGuides adds column guides along the first row and row guides along
// the first column.
func addGuides(s canvas.Surface, c board.Cell, ct board.CellType, margin float64) error {
	r := c.Bounds()
	var guides []canvas.Guide
	if c.Row == 1 {
		xs := []float64{r.MinX, r.MaxX, r.MinX + margin, r.MaxX - margin}
		if ct == board.Spread {
			xs = append(xs, float64(int(r.MinX+r.Width()/2)))
		}
		for _, x := range xs {
			guides = append(guides, canvas.Guide{Orientation: canvas.Vertical, Position: x})
		}
	}
	if c.Col == 1 {
		for _, y := range []float64{r.MinY, r.MaxY, r.MinY + margin, r.MaxY - margin} {
			guides = append(guides, canvas.Guide{Orientation: canvas.Horizontal, Position: y})
		}
	}
	for _, g := range guides {
		if err := s.AddGuide(g.Orientation, g.Position); err != nil {
			return err
		}
	}
	return nil
}

// addLegend right-aligns the legend under the last column, centered in the
// space below the grid and kept clear of the bottom edge.
func addLegend(s canvas.Surface, parent canvas.LayerID, geo Geometry, opts Options) error {
	fg, err := canvas.ParseColor(opts.LegendColor)
	if err != nil {
		return err
	}
	tw, th := fonts.Measure(opts.LegendText, opts.LegendSize)
	textW, textH := math.Ceil(tw), math.Ceil(th)

	grid := geo.GridRect()
	lastRight := float64(int(grid.MaxX))
	lastBottom := float64(int(grid.MaxY))
	canvasH := float64(geo.CanvasHeight)

	x := int(lastRight - textW - LegendRightInset)
	y := int(lastBottom + (canvasH-lastBottom-textH)/2)
	if maxY := int(canvasH - textH - LegendBottomMargin); y > maxY {
		y = maxY
	}
	_, err = s.AddText(parent, canvas.TextSpec{
		Name:  board.LayerLegend,
		Text:  opts.LegendText,
		X:     float64(x),
		Y:     float64(y),
		Size:  opts.LegendSize,
		Color: fg,
	})
	return err
}

// addLogo scales the logo to 60% of the space above the grid and aligns it
// with the first column.
func addLogo(s canvas.Surface, parent canvas.LayerID, geo Geometry, path string, prober canvas.Prober) error {
	w, h, err := prober.Probe(path)
	if err != nil {
		return err
	}
	firstY := float64(geo.OffsetY)
	targetH := int(firstY * LogoHeightRatio)
	if targetH <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "no room above the grid")
	}
	scale := float64(targetH) / float64(h)
	lw, lh := int(float64(w)*scale), int(float64(h)*scale)

	y := int(LogoTopMargin + (firstY-float64(lh)-LogoTopMargin)/2)
	if y < LogoTopMargin {
		y = LogoTopMargin
	}
	rect := geom.XYWH(float64(geo.OffsetX), float64(y), float64(lw), float64(lh))
	_, err = s.PlaceImage(parent, canvas.ImageSpec{Name: board.LayerLogo, Source: path, Rect: rect, Clip: rect})
	return err
}
