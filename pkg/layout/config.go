package layout

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/openboard/pkg/errors"
)

// ConfigFile is the TOML layout of a board settings file:
//
//	[board]
//	board_name = "holiday"
//	cols = 4
//	cell_type = "single"
type ConfigFile struct {
	Board Options `toml:"board"`
}

// LoadConfig reads board options from a TOML file. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadConfig(path string) (Options, error) {
	var cf ConfigFile
	md, err := toml.DecodeFile(path, &cf)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config not found: %s", path)
		}
		return Options{}, errs.Wrap(errs.ErrCodeConfiguration, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errs.New(errs.ErrCodeConfiguration, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cf.Board, nil
}

// WriteConfigTemplate writes a settings file holding the default options.
func WriteConfigTemplate(w io.Writer) error {
	opts := DefaultOptions()
	opts.Destination = "."
	if _, err := fmt.Fprintln(w, "# OpenBoard settings. Lengths use the unit next to them."); err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(ConfigFile{Board: opts})
}

// Merge overlays the non-zero fields of o onto base.
func Merge(base, o Options) Options {
	out := base
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}

	setString(&out.BoardName, o.BoardName)
	setString(&out.Destination, o.Destination)
	setFloat(&out.DPI, o.DPI)
	setString(&out.CanvasUnit, o.CanvasUnit)
	setFloat(&out.CanvasWidth, o.CanvasWidth)
	setFloat(&out.CanvasHeight, o.CanvasHeight)
	setInt(&out.Cols, o.Cols)
	setInt(&out.Rows, o.Rows)
	setString(&out.CellType, o.CellType)
	setString(&out.CellUnit, o.CellUnit)
	setFloat(&out.CellWidth, o.CellWidth)
	setFloat(&out.CellHeight, o.CellHeight)
	setFloat(&out.Margin, o.Margin)
	setString(&out.SpacingUnit, o.SpacingUnit)
	setFloat(&out.Spacing, o.Spacing)
	setString(&out.Background, o.Background)
	setString(&out.Border, o.Border)
	setString(&out.Mask, o.Mask)
	setString(&out.LegendText, o.LegendText)
	setFloat(&out.LegendSize, o.LegendSize)
	setString(&out.LegendColor, o.LegendColor)
	setString(&out.Logo, o.Logo)
	setString(&out.Overlay, o.Overlay)
	out.NoLegend = out.NoLegend || o.NoLegend
	out.Guides = out.Guides || o.Guides
	if o.Prober != nil {
		out.Prober = o.Prober
	}
	if o.Logger != nil {
		out.Logger = o.Logger
	}
	return out
}
