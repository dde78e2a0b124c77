// Package cli implements the openboard command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/buildinfo"
	"github.com/matzehuels/openboard/pkg/cache"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/importer"
	"github.com/matzehuels/openboard/pkg/state"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "openboard"

	// dimsTTL is how long probed image dimensions stay cached.
	dimsTTL = 30 * 24 * time.Hour

	// redisKeyPrefix scopes cache keys in a shared Redis.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// redisURL, when set, backs the dimension cache and the extension
	// direction store with Redis instead of local files.
	redisURL string
	noCache  bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "OpenBoard lays out image collage boards",
		Long:         `OpenBoard generates grid boards of image cells, fills them with batches of photos, and grows the grid by a row or column when it runs full.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.redisURL, "redis", os.Getenv("OPENBOARD_REDIS_URL"), "Redis URL for the dimension cache and direction store (redis://host:port/db)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the image dimension cache")

	root.AddCommand(c.createCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.extendCommand())
	root.AddCommand(c.namesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backend Factories
// =============================================================================

// newCache opens the dimension cache: Redis when --redis is set, the
// per-user file cache otherwise, nothing with --no-cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	if c.noCache {
		return cache.NewNullCache(), cache.NewDefaultKeyer(), nil
	}
	if c.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, c.redisURL)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ErrCodeConfiguration, err, "open redis cache")
		}
		return rc, cache.NewScopedKeyer(nil, redisKeyPrefix), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), cache.NewDefaultKeyer(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, cache.NewDefaultKeyer(), nil
}

// newProber returns an image prober backed by the dimension cache. The
// returned close function releases the cache.
func (c *CLI) newProber(ctx context.Context) (canvas.Prober, func(), error) {
	store, keyer, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	p := canvas.NewCachedProber(ctx, canvas.FileProber{}, store, keyer, dimsTTL)
	return p, func() { _ = store.Close() }, nil
}

// newStore returns the extension direction store: Redis when --redis is
// set, token files beside the board otherwise.
func (c *CLI) newStore(ctx context.Context, boardDir string) (state.DirectionStore, error) {
	if c.redisURL != "" {
		s, err := state.NewRedisStore(ctx, c.redisURL, state.DefaultRedisTTL)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "open redis direction store")
		}
		return s, nil
	}
	return state.NewFileStore(boardDir), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/openboard/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// boardRef locates the files of one board.
type boardRef struct {
	Dir  string
	Name string
}

// parseBoardRef accepts a board file path with or without its extension.
func parseBoardRef(arg string) (boardRef, error) {
	if strings.TrimSpace(arg) == "" {
		return boardRef{}, errs.New(errs.ErrCodeInvalidInput, "board file is required")
	}
	base := filepath.Base(arg)
	return boardRef{
		Dir:  filepath.Dir(arg),
		Name: strings.TrimSuffix(base, board.Extension),
	}, nil
}

func (r boardRef) BoardPath() string  { return board.Path(r.Dir, r.Name) }
func (r boardRef) CanvasPath() string { return canvas.Path(r.Dir, r.Name) }

// LogPath returns the per-board log file for a command, e.g.
// holiday_import.log.
func (r boardRef) LogPath(command string) string {
	return filepath.Join(r.Dir, fmt.Sprintf("%s_%s.log", r.Name, command))
}

// open reads the descriptor and canvas document of the board.
func (c *CLI) open(r boardRef) (importer.Board, *canvas.Document, error) {
	desc, err := board.Read(r.BoardPath(), func(err error) {
		c.Logger.Warn("board line skipped", "err", err)
	})
	if err != nil {
		return importer.Board{}, nil, err
	}
	doc, err := canvas.Load(r.CanvasPath())
	if err != nil {
		return importer.Board{}, nil, err
	}
	return importer.Board{Descriptor: desc, Path: r.BoardPath(), Surface: doc}, doc, nil
}
