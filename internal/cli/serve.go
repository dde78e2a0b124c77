package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board API over HTTP",
		Long: `Serve board generation, import and extension over HTTP. Boards are stored
in --dir; image paths in requests are relative to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prober, closeProber, err := c.newProber(ctx)
			if err != nil {
				return err
			}
			defer closeProber()
			store, err := c.newStore(ctx, dir)
			if err != nil {
				return err
			}
			defer store.Close()

			srv, err := server.New(server.Config{
				BaseDir: dir,
				Store:   store,
				Prober:  prober,
				Logger:  c.Logger,
			})
			if err != nil {
				return err
			}
			newUI(cmd.OutOrStdout()).info("Serving boards from %s on %s", StyleValue.Render(srv.BaseDir()), StyleLink.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&dir, "dir", ".", "board directory")

	return cmd
}
