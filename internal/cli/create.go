package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	"github.com/matzehuels/openboard/pkg/layout"
)

// createCommand creates the create command for generating a new board.
func (c *CLI) createCommand() *cobra.Command {
	var configPath string
	flags := layout.Options{}

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Generate a new board",
		Long: `Generate a new board: a grid of empty cells framed by background, border and
mask layers, with an optional legend, logo and cell overlays.

Settings are read from --config (see 'openboard config init') and then
overridden by flags. Lengths use the unit given next to them: px, mm, cm or in.

Two files are written to the destination folder:
  <name>.board        the cell positions and board metadata
  <name>.canvas.json  the layer document`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.BoardName = args[0]
			}
			opts, err := resolveCreateOptions(cmd, configPath, flags)
			if err != nil {
				return err
			}
			return c.runCreate(cmd.Context(), newUI(cmd.OutOrStdout()), opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML settings file")
	cmd.Flags().StringVarP(&flags.Destination, "dest", "d", "", "destination folder (default: current directory)")

	cmd.Flags().Float64Var(&flags.DPI, "dpi", 0, "resolution used for unit conversion")
	cmd.Flags().StringVar(&flags.CanvasUnit, "canvas-unit", "", "canvas unit: px, mm, cm, in")
	cmd.Flags().Float64Var(&flags.CanvasWidth, "canvas-width", 0, "canvas width")
	cmd.Flags().Float64Var(&flags.CanvasHeight, "canvas-height", 0, "canvas height")

	cmd.Flags().IntVar(&flags.Cols, "cols", 0, "number of columns")
	cmd.Flags().IntVar(&flags.Rows, "rows", 0, "number of rows")
	cmd.Flags().StringVar(&flags.CellType, "cell-type", "", "cell type: single, spread")
	cmd.Flags().StringVar(&flags.CellUnit, "cell-unit", "", "unit of cell size and margin")
	cmd.Flags().Float64Var(&flags.CellWidth, "cell-width", 0, "cell width")
	cmd.Flags().Float64Var(&flags.CellHeight, "cell-height", 0, "cell height")
	cmd.Flags().Float64Var(&flags.Margin, "margin", 0, "inner margin of each cell")
	cmd.Flags().StringVar(&flags.SpacingUnit, "spacing-unit", "", "unit of the spacing between cells")
	cmd.Flags().Float64Var(&flags.Spacing, "spacing", 0, "spacing between cells")

	cmd.Flags().StringVar(&flags.Background, "background", "", "background color (#rrggbb)")
	cmd.Flags().StringVar(&flags.Border, "border", "", "border color (#rrggbb)")
	cmd.Flags().StringVar(&flags.Mask, "mask", "", "mask color (#rrggbb)")

	cmd.Flags().StringVar(&flags.LegendText, "legend", "", "legend text")
	cmd.Flags().Float64Var(&flags.LegendSize, "legend-size", 0, "legend font size")
	cmd.Flags().StringVar(&flags.LegendColor, "legend-color", "", "legend color (#rrggbb)")
	cmd.Flags().BoolVar(&flags.NoLegend, "no-legend", false, "omit the legend")
	cmd.Flags().StringVar(&flags.Logo, "logo", "", "logo image placed above the grid")
	cmd.Flags().StringVar(&flags.Overlay, "overlay", "", "overlay image, or folder of overlay images, drawn over every cell")
	cmd.Flags().BoolVar(&flags.Guides, "guides", false, "add guides along cell edges")

	return cmd
}

// resolveCreateOptions layers defaults, the config file and flags. Margin
// and spacing flags apply even when set to zero.
func resolveCreateOptions(cmd *cobra.Command, configPath string, flags layout.Options) (layout.Options, error) {
	opts := layout.DefaultOptions()
	if configPath != "" {
		file, err := layout.LoadConfig(configPath)
		if err != nil {
			return layout.Options{}, err
		}
		opts = layout.Merge(opts, file)
	}
	opts = layout.Merge(opts, flags)
	if cmd.Flags().Changed("margin") {
		opts.Margin = flags.Margin
	}
	if cmd.Flags().Changed("spacing") {
		opts.Spacing = flags.Spacing
	}
	if opts.Destination == "" {
		opts.Destination = "."
	}
	return opts, nil
}

func (c *CLI) runCreate(ctx context.Context, out *ui, opts layout.Options) error {
	prober, closeProber, err := c.newProber(ctx)
	if err != nil {
		return err
	}
	defer closeProber()
	opts.Prober = prober
	opts.Logger = c.Logger

	c.Logger.Debug("creating board", "options", opts.Summary())
	prog := newProgress(c.Logger)

	doc := canvas.New(opts.BoardName, 1, 1, opts.DPI)
	desc, err := layout.Generate(ctx, opts, doc)
	if err != nil {
		return err
	}
	ref := boardRef{Dir: opts.Destination, Name: desc.Name()}
	if err := doc.Save(ref.CanvasPath()); err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	prog.done("Board generated")

	out.success("Board %s created", StyleHighlight.Render(desc.Name()))
	out.file(ref.BoardPath())
	out.file(ref.CanvasPath())
	out.grid(desc, doc)
	if w, ok := desc.Meta.Int(board.KeyImgMaxWidth); ok {
		h, _ := desc.Meta.Int(board.KeyImgMaxHeight)
		out.detail("Largest unclipped image: %d x %d px", w, h)
	}
	out.newline()
	out.nextStep("Add images", "openboard import "+ref.BoardPath()+" --folder <photos>")
	return nil
}
