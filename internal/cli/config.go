package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/layout"
)

// configCommand creates the config command for managing settings files.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage board settings files",
	}

	cmd.AddCommand(c.configInitCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a settings file holding the default board options",
		Long: `Write a TOML settings file holding the default board options. Edit it and
pass it to 'openboard create --config'. Without a file the template is
printed to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return layout.WriteConfigTemplate(cmd.OutOrStdout())
			}
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return errs.New(errs.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := layout.WriteConfigTemplate(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			out := newUI(cmd.OutOrStdout())
			out.success("Settings written")
			out.file(path)
			out.nextStep("Create a board", "openboard create --config "+path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
