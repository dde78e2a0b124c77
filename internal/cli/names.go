package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/captions"
)

// namesCommand creates the names command for captioning placed images.
func (c *CLI) namesCommand() *cobra.Command {
	opts := captions.Options{
		Size:   captions.DefaultSize,
		Color:  captions.DefaultColor,
		Offset: captions.DefaultOffset,
	}

	cmd := &cobra.Command{
		Use:   "names <board>",
		Short: "Write each image's file name under its cell",
		Long: `Write each placed image's file name below its cell. On spread boards each
page gets its own caption.

Captions are kept in an "Image Names" group that is rebuilt on every run.
Every run appends to <board>_add_names.log next to the board file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseBoardRef(args[0])
			if err != nil {
				return err
			}
			b, doc, err := c.open(ref)
			if err != nil {
				return err
			}
			j, err := openJournal(ref.LogPath("add_names"))
			if err != nil {
				return err
			}
			defer j.Close()

			opts.Logger = c.Logger
			opts.Journal = j.Logger
			res, err := captions.Add(doc, b.Descriptor, opts)
			if err != nil {
				return err
			}
			if err := saveCanvas(ref, doc); err != nil {
				return err
			}

			out := newUI(cmd.OutOrStdout())
			out.success("Added %d captions", res.Added)
			if res.Unmatched > 0 {
				out.warning("%d layers are outside every cell", res.Unmatched)
			}
			out.file(ref.CanvasPath())
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.Size, "size", opts.Size, "font size")
	cmd.Flags().StringVar(&opts.Color, "color", opts.Color, "text color (#rrggbb)")
	cmd.Flags().Float64Var(&opts.Offset, "offset", opts.Offset, "gap between the cell and its caption")

	return cmd
}
