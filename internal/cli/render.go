package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/canvas"
)

// renderCommand creates the render command for rasterizing a board.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output string
		guides bool
	)

	cmd := &cobra.Command{
		Use:   "render <board>",
		Short: "Render a board to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseBoardRef(args[0])
			if err != nil {
				return err
			}
			doc, err := canvas.Load(ref.CanvasPath())
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(ref.CanvasPath(), canvas.Extension) + ".png"
			}

			out := newUI(cmd.OutOrStdout())
			s := startSpinner(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Rendering %d x %d px...", doc.Width, doc.Height))
			err = writePNG(output, doc, canvas.WithGuides(guides), canvas.WithRenderLogger(c.Logger))
			if s.stop() {
				return cmd.Context().Err()
			}
			if err != nil {
				out.error("Render failed")
				return err
			}

			out.success("Rendered %s", StyleHighlight.Render(ref.Name))
			out.file(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <board>.png)")
	cmd.Flags().BoolVar(&guides, "guides", false, "draw guides")

	return cmd
}

func writePNG(path string, doc *canvas.Document, opts ...canvas.RenderOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := canvas.RenderPNG(doc, f, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
