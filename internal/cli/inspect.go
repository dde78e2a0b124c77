package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/board"
)

// inspectCommand creates the inspect command for printing a board file.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <board>",
		Short: "Show a board's metadata and cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseBoardRef(args[0])
			if err != nil {
				return err
			}
			var skipped []error
			desc, err := board.Read(ref.BoardPath(), func(err error) { skipped = append(skipped, err) })
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Meta  board.Meta   `json:"meta"`
					Cells []board.Cell `json:"cells"`
				}{desc.Meta, desc.Cells})
			}

			out := newUI(cmd.OutOrStdout())
			out.println(StyleTitle.Render(desc.Name()))
			for _, k := range desc.Meta.Keys() {
				v, _ := desc.Meta.Get(k)
				out.keyValue(k, v)
			}
			out.newline()
			out.println(cellTable(desc.Cells))
			for _, e := range skipped {
				out.warning("skipped %v", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
