package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/extend"
)

// extendCommand creates the extend command for growing a board by one row
// or column.
func (c *CLI) extendCommand() *cobra.Command {
	var (
		direction string
		overlays  []string
	)

	cmd := &cobra.Command{
		Use:   "extend <board>",
		Short: "Add a row or a column of empty cells to a board",
		Long: `Add a row (bottom) or a column (right) of empty cells to a board.

With --direction alternate the board grows right after a bottom extension
and bottom after a right one, so repeated runs keep it roughly square. The
last direction is remembered next to the board, or in Redis with --redis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtend(cmd.Context(), newUI(cmd.OutOrStdout()), args[0], direction, overlays)
		},
	}

	cmd.Flags().StringVar(&direction, "direction", string(extend.DefaultDirection), "bottom, right or alternate (also 0, 1, 2)")
	cmd.Flags().StringSliceVar(&overlays, "overlay", nil, "overlay image for the new cells (repeatable)")

	return cmd
}

func (c *CLI) runExtend(ctx context.Context, out *ui, boardArg, direction string, overlays []string) error {
	ref, err := parseBoardRef(boardArg)
	if err != nil {
		return err
	}
	dir, err := extend.ParseDirection(direction)
	if err != nil {
		return err
	}
	b, doc, err := c.open(ref)
	if err != nil {
		return err
	}
	prober, closeProber, err := c.newProber(ctx)
	if err != nil {
		return err
	}
	defer closeProber()
	store, err := c.newStore(ctx, ref.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	before := len(b.Descriptor.Cells)
	desc, err := extend.Extend(ctx, extend.Request{
		Board:        b.Descriptor,
		Path:         b.Path,
		Surface:      doc,
		Direction:    dir,
		Store:        store,
		OverlayFiles: overlays,
		Prober:       prober,
		Logger:       c.Logger,
	})
	if err != nil {
		return err
	}
	if err := saveCanvas(ref, doc); err != nil {
		return err
	}

	out.success("Added %d cells to %s", len(desc.Cells)-before, StyleHighlight.Render(ref.Name))
	out.grid(desc, doc)
	out.file(ref.BoardPath())
	out.file(ref.CanvasPath())
	return nil
}
