// Package layout generates a new board: the cell grid, the structural
// layers that frame it, and the .board descriptor that records it.
//
// # Geometry
//
// [Compute] is pure. It takes pixel dimensions and returns the grid
// position of every cell. When the grid does not fit the canvas, cell
// size, spacing and margin are shrunk by a common factor so the grid
// covers at most 95% of the limiting dimension. The grid is centered
// horizontally and centered vertically between a logo band at the top and
// a legend band at the bottom.
//
// # Generation
//
// [Generate] validates [Options], computes the geometry, draws the layer
// tree on a [canvas.Surface] and writes the descriptor:
//
//	doc := canvas.New(name, 1, 1, opts.DPI)
//	desc, err := layout.Generate(ctx, opts, doc)
//
// No file is written and the surface is not touched when validation
// fails.
package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/units"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultBoardName = "MyBoard"
	DefaultDPI       = 300.0

	// Canvas defaults to A4 landscape at 300 DPI.
	DefaultCanvasUnit   = "px"
	DefaultCanvasWidth  = 4961.0
	DefaultCanvasHeight = 3508.0

	DefaultCols     = 3
	DefaultRows     = 4
	DefaultCellType = errs.CellTypeSpread

	DefaultCellUnit   = "cm"
	DefaultCellWidth  = 80.0
	DefaultCellHeight = 50.0
	DefaultMargin     = 2.0

	DefaultSpacingUnit = "mm"
	DefaultSpacing     = 40.0

	DefaultBackground = "#ffffff"
	DefaultBorder     = "#c8c8c8"
	DefaultMask       = "#000000"

	DefaultLegendText  = "My Board"
	DefaultLegendSize  = 36.0
	DefaultLegendColor = "#ffffff"
)

// =============================================================================
// Options
// =============================================================================

// Options configures board generation. Lengths are expressed in their
// unit and converted to pixels at DPI. Margin uses CellUnit.
type Options struct {
	BoardName   string `json:"board_name" toml:"board_name"`
	Destination string `json:"destination" toml:"destination"`

	DPI          float64 `json:"dpi,omitempty" toml:"dpi"`
	CanvasUnit   string  `json:"canvas_unit,omitempty" toml:"canvas_unit"`
	CanvasWidth  float64 `json:"canvas_width,omitempty" toml:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height,omitempty" toml:"canvas_height"`

	Cols     int    `json:"cols,omitempty" toml:"cols"`
	Rows     int    `json:"rows,omitempty" toml:"rows"`
	CellType string `json:"cell_type,omitempty" toml:"cell_type"`

	CellUnit   string  `json:"cell_unit,omitempty" toml:"cell_unit"`
	CellWidth  float64 `json:"cell_width,omitempty" toml:"cell_width"`
	CellHeight float64 `json:"cell_height,omitempty" toml:"cell_height"`
	Margin     float64 `json:"margin,omitempty" toml:"margin"`

	SpacingUnit string  `json:"spacing_unit,omitempty" toml:"spacing_unit"`
	Spacing     float64 `json:"spacing,omitempty" toml:"spacing"`

	Background string `json:"background,omitempty" toml:"background"`
	Border     string `json:"border,omitempty" toml:"border"`
	Mask       string `json:"mask,omitempty" toml:"mask"`

	LegendText  string  `json:"legend_text,omitempty" toml:"legend_text"`
	LegendSize  float64 `json:"legend_size,omitempty" toml:"legend_size"`
	LegendColor string  `json:"legend_color,omitempty" toml:"legend_color"`
	NoLegend    bool    `json:"no_legend,omitempty" toml:"no_legend"`

	Logo    string `json:"logo,omitempty" toml:"logo"`       // image file
	Overlay string `json:"overlay,omitempty" toml:"overlay"` // image file or folder
	Guides  bool   `json:"guides,omitempty" toml:"guides"`

	Prober canvas.Prober `json:"-" toml:"-"`
	Logger *log.Logger   `json:"-" toml:"-"`
}

// DefaultOptions returns options with every default applied, including
// the margin and spacing that SetDefaults leaves at zero.
func DefaultOptions() Options {
	o := Options{Margin: DefaultMargin, Spacing: DefaultSpacing}
	o.SetDefaults()
	return o
}

// SetDefaults fills zero-valued fields. Margin and spacing may
// legitimately be zero and are left alone, as is the destination.
func (o *Options) SetDefaults() {
	if o.BoardName == "" {
		o.BoardName = DefaultBoardName
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.CanvasUnit == "" {
		o.CanvasUnit = DefaultCanvasUnit
	}
	if o.CanvasWidth == 0 {
		o.CanvasWidth = DefaultCanvasWidth
	}
	if o.CanvasHeight == 0 {
		o.CanvasHeight = DefaultCanvasHeight
	}
	if o.Cols == 0 {
		o.Cols = DefaultCols
	}
	if o.Rows == 0 {
		o.Rows = DefaultRows
	}
	if o.CellType == "" {
		o.CellType = DefaultCellType
	}
	if o.CellUnit == "" {
		o.CellUnit = DefaultCellUnit
	}
	if o.CellWidth == 0 {
		o.CellWidth = DefaultCellWidth
	}
	if o.CellHeight == 0 {
		o.CellHeight = DefaultCellHeight
	}
	if o.SpacingUnit == "" {
		o.SpacingUnit = DefaultSpacingUnit
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Border == "" {
		o.Border = DefaultBorder
	}
	if o.Mask == "" {
		o.Mask = DefaultMask
	}
	if o.LegendText == "" {
		o.LegendText = DefaultLegendText
	}
	if o.LegendSize <= 0 {
		o.LegendSize = DefaultLegendSize
	}
	if o.LegendColor == "" {
		o.LegendColor = DefaultLegendColor
	}
	if o.Prober == nil {
		o.Prober = canvas.FileProber{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options and normalizes the board name and cell type.
// Every failure is a CONFIGURATION_ERROR.
func (o *Options) Validate() error {
	name, err := errs.ValidateBoardName(o.BoardName)
	if err != nil {
		return err
	}
	o.BoardName = name

	if err := errs.ValidateDestination(o.Destination); err != nil {
		return err
	}
	ct, err := errs.ValidateCellType(o.CellType)
	if err != nil {
		return errs.Wrap(errs.ErrCodeConfiguration, err, "cell type")
	}
	o.CellType = ct

	for _, u := range []string{o.CanvasUnit, o.CellUnit, o.SpacingUnit} {
		if _, err := units.Parse(u); err != nil {
			return errs.Wrap(errs.ErrCodeConfiguration, err, "unit")
		}
	}
	if o.Cols < 1 || o.Rows < 1 {
		return errs.New(errs.ErrCodeConfiguration, "grid needs at least one column and one row (got %dx%d)", o.Cols, o.Rows)
	}
	if o.Margin < 0 || o.Spacing < 0 {
		return errs.New(errs.ErrCodeConfiguration, "margin and spacing must not be negative")
	}
	if _, err := o.Palette(); err != nil {
		return err
	}
	if !o.NoLegend {
		if _, err := canvas.ParseColor(o.LegendColor); err != nil {
			return errs.Wrap(errs.ErrCodeConfiguration, err, "legend color")
		}
	}
	return nil
}

// Palette parses the board colors.
func (o *Options) Palette() (Palette, error) {
	var p Palette
	for _, c := range []struct {
		name string
		hex  string
		dst  *canvas.Color
	}{
		{"background", o.Background, &p.Background},
		{"border", o.Border, &p.Border},
		{"mask", o.Mask, &p.Mask},
	} {
		col, err := canvas.ParseColor(c.hex)
		if err != nil {
			return Palette{}, errs.Wrap(errs.ErrCodeConfiguration, err, "%s color", c.name)
		}
		*c.dst = col
	}
	return p, nil
}

// Input converts the options to pixels. Call after SetDefaults.
func (o *Options) Input() Input {
	cu, _ := units.Parse(o.CanvasUnit)
	lu, _ := units.Parse(o.CellUnit)
	su, _ := units.Parse(o.SpacingUnit)
	return Input{
		CanvasWidth:  units.ToPixelsInt(o.CanvasWidth, cu, o.DPI),
		CanvasHeight: units.ToPixelsInt(o.CanvasHeight, cu, o.DPI),
		Cols:         o.Cols,
		Rows:         o.Rows,
		CellWidth:    units.ToPixelsInt(o.CellWidth, lu, o.DPI),
		CellHeight:   units.ToPixelsInt(o.CellHeight, lu, o.DPI),
		Margin:       units.ToPixelsInt(o.Margin, lu, o.DPI),
		Spacing:      units.ToPixelsInt(o.Spacing, su, o.DPI),
	}
}

// Summary describes the options in one line.
func (o *Options) Summary() string {
	return fmt.Sprintf("%s: %dx%d %s cells on %g x %g %s @ %g dpi",
		o.BoardName, o.Cols, o.Rows, strings.ToLower(o.CellType), o.CanvasWidth, o.CanvasHeight, o.CanvasUnit, o.DPI)
}
