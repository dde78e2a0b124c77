package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/extend"
	"github.com/matzehuels/openboard/pkg/importer"
)

// importOpts holds the command-line flags for the import command.
type importOpts struct {
	mode       string   // folder, single or pattern; picked interactively when empty
	folder     string   // source folder (folder and pattern modes), default "."
	file       string   // source file (single mode)
	pattern    string   // glob pattern (pattern mode)
	cellType   string   // overrides the board's cell type
	resize     string   // fit, cover or noResize
	autoExtend bool     // grow the board when it runs full
	direction  string   // bottom, right or alternate
	overlays   []string // overlay images for cells added by extensions
}

// importCommand creates the import command for placing images on a board.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import <board>",
		Short: "Place a batch of images into the empty cells of a board",
		Long: `Place a batch of images into the empty cells of a board, in file name order.

Images come from a folder (--folder), a single file (--file) or a folder
filtered by a glob pattern (--pattern, inside --folder or the current
directory). Without any of these, and on a terminal, the mode is asked for
interactively and the current directory is used.

With --auto-extend the board grows by a row or a column whenever it is full.
Every run appends to <board>_import.log next to the board file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), newUI(cmd.OutOrStdout()), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "import mode: folder, single, pattern")
	cmd.Flags().StringVar(&opts.folder, "folder", "", "folder holding the images")
	cmd.Flags().StringVar(&opts.file, "file", "", "single image file")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "glob pattern inside --folder (default "+importer.DefaultPattern+")")
	cmd.Flags().StringVar(&opts.cellType, "cell-type", "", "override the board cell type: single, spread")
	cmd.Flags().StringVar(&opts.resize, "resize", "fit", "resize mode: fit, cover, noResize")
	cmd.Flags().BoolVar(&opts.autoExtend, "auto-extend", false, "extend the board when it runs out of empty cells")
	cmd.Flags().StringVar(&opts.direction, "direction", string(extend.DefaultDirection), "extension direction: bottom, right, alternate")
	cmd.Flags().StringSliceVar(&opts.overlays, "overlay", nil, "overlay image for cells added by extensions (repeatable)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, out *ui, boardArg string, opts importOpts) error {
	ref, err := parseBoardRef(boardArg)
	if err != nil {
		return err
	}
	dir, err := extend.ParseDirection(opts.direction)
	if err != nil {
		return err
	}
	src, err := resolveSource(opts)
	if err != nil {
		return err
	}
	if src.Mode == "" {
		out.detail("No import mode selected")
		return nil
	}
	images, err := importer.Collect(src)
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

	j, err := openJournal(ref.LogPath("import"))
	if err != nil {
		return err
	}
	defer j.Close()

	out.info("Importing %d images into %s", len(images), StyleHighlight.Render(ref.Name))
	prog := newProgress(c.Logger)
	res, importErr := importer.Import(ctx, b, images, importer.Options{
		CellType:     opts.cellType,
		ResizeMode:   opts.resize,
		AutoExtend:   opts.autoExtend,
		Direction:    dir,
		Store:        store,
		OverlayFiles: opts.overlays,
		Prober:       prober,
		Logger:       c.Logger,
		Journal:      j.Logger,
		OnProgress: func(i, total int, image string) {
			c.Logger.Debug("importing", "n", fmt.Sprintf("%d/%d", i+1, total), "image", filepath.Base(image))
		},
	})

	// Placed images are kept even when the batch stopped early.
	if res.Placed > 0 || res.Extended > 0 {
		if err := saveCanvas(ref, doc); err != nil {
			return err
		}
	}
	if importErr != nil {
		out.error("Import stopped: %s", errs.UserMessage(importErr))
		out.stats(res)
		return importErr
	}
	prog.done("Import finished")

	if res.Failed > 0 {
		out.warning("%d of %d images could not be placed", res.Failed, len(images))
	} else {
		out.success("All %d images placed", res.Placed)
	}
	out.stats(res)
	out.file(ref.CanvasPath())
	out.detail("Log: %s", ref.LogPath("import"))
	if res.Failed > 0 && !opts.autoExtend {
		out.newline()
		out.nextStep("Grow the board as needed", "openboard import "+ref.BoardPath()+" --auto-extend ...")
	}
	return nil
}

// resolveSource turns the flags into an importer.Source. A zero Source
// with no error means the user dismissed the interactive picker.
func resolveSource(opts importOpts) (importer.Source, error) {
	src := importer.Source{Folder: opts.folder, File: opts.file, Pattern: opts.pattern}
	switch {
	case opts.mode != "":
		m, err := importer.ParseMode(opts.mode)
		if err != nil {
			return importer.Source{}, err
		}
		src.Mode = m
	case opts.file != "":
		src.Mode = importer.ModeSingle
	case opts.pattern != "":
		src.Mode = importer.ModePattern
	case opts.folder != "":
		src.Mode = importer.ModeFolder
	case isTerminal(os.Stdin):
		m, err := pickMode()
		if err != nil || m == "" {
			return importer.Source{}, err
		}
		src.Mode = m
	default:
		return importer.Source{}, errs.New(errs.ErrCodeInvalidInput, "no images given: use --folder, --file or --pattern")
	}

	switch src.Mode {
	case importer.ModeSingle:
		if src.File == "" {
			return importer.Source{}, errs.New(errs.ErrCodeInvalidInput, "--file is required in single mode")
		}
	default:
		if src.Folder == "" {
			src.Folder = "."
		}
	}
	return src, nil
}

// pickMode runs the interactive import mode picker.
func pickMode() (importer.Mode, error) {
	p := tea.NewProgram(NewModeListModel())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	fm, ok := finalModel.(ModeListModel)
	if !ok {
		return "", nil
	}
	return fm.Selected, nil
}

// isTerminal reports whether f is an interactive character device.
func isTerminal(f *os.File) bool {
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}

// saveCanvas writes doc next to the board.
func saveCanvas(ref boardRef, doc *canvas.Document) error {
	if err := doc.Save(ref.CanvasPath()); err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	return nil
}
