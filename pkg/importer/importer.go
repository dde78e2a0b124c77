// Package importer places a batch of images into the free cells of a
// board.
//
// For each image [Import] probes its size, asks the occupancy cache for a
// free cell, grows the board when it is full and auto-extension is on,
// plans the placement and applies it to the canvas. The cache is rebuilt
// after every placement and every extension.
//
// # Failure Accounting
//
// Every image ends up either placed or failed:
//   - an unreadable image or a skipped placement fails that image only
//   - a full board without auto-extension fails every remaining image
//   - a corrupt board or a failed extension aborts the batch; the
//     remaining images count as failed and placed images stay on the
//     canvas
//
// Cancellation is checked between images, never in the middle of one.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/extend"
	"github.com/matzehuels/openboard/pkg/observability"
	"github.com/matzehuels/openboard/pkg/occupancy"
	"github.com/matzehuels/openboard/pkg/placement"
	"github.com/matzehuels/openboard/pkg/state"
)

// Board is the target of an import.
type Board struct {
	Descriptor *board.Descriptor
	// Path is the descriptor file. Extensions rewrite it; empty keeps the
	// board in memory only.
	Path    string
	Surface canvas.Surface
}

// Options configures a batch import.
type Options struct {
	// CellType overrides the board's own cell type when set.
	CellType   string
	ResizeMode string

	AutoExtend bool
	Direction  extend.Direction
	// Store keeps the last extension direction. It is cleared when the
	// batch ends.
	Store state.DirectionStore
	// OverlayFiles are used for cells added by an extension instead of the
	// board's own overlays.
	OverlayFiles []string

	Prober canvas.Prober
	Logger *log.Logger
	// Journal receives one line per image and the batch summary. It is
	// meant for the per-board import log.
	Journal *log.Logger
	// OnProgress is called before each image with its 0-based position.
	OnProgress func(i, total int, image string)
}

// SetDefaults fills unset optional fields.
func (o *Options) SetDefaults() {
	if o.ResizeMode == "" {
		o.ResizeMode = string(placement.DefaultResizeMode)
	}
	if o.Direction == "" {
		o.Direction = extend.DefaultDirection
	}
	if o.Prober == nil {
		o.Prober = canvas.FileProber{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Journal == nil {
		o.Journal = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.CellType != "" {
		if _, err := errs.ValidateCellType(o.CellType); err != nil {
			return errs.Wrap(errs.ErrCodeConfiguration, err, "cell type")
		}
	}
	if _, err := errs.ValidateResizeMode(o.ResizeMode); err != nil {
		return errs.Wrap(errs.ErrCodeConfiguration, err, "resize mode")
	}
	if _, err := extend.ParseDirection(string(o.Direction)); err != nil {
		return errs.Wrap(errs.ErrCodeConfiguration, err, "extension direction")
	}
	return nil
}

// Result is the outcome of a batch. Placed+Failed equals the number of
// images given to Import.
type Result struct {
	Placed   int
	Failed   int
	Extended int
	// Board is the descriptor after the batch, including any extension.
	Board *board.Descriptor
}

// Import places images into b. A returned error is batch-fatal; the
// Result is still valid and accounts for every image.
func Import(ctx context.Context, b Board, images []string, opts Options) (res Result, err error) {
	opts.SetDefaults()
	res.Board = b.Descriptor
	if err := opts.Validate(); err != nil {
		res.Failed = len(images)
		return res, err
	}
	if b.Descriptor == nil || b.Surface == nil {
		res.Failed = len(images)
		return res, errs.New(errs.ErrCodeInvalidInput, "import needs a board and a canvas")
	}
	if err := b.Descriptor.RequireCells(); err != nil {
		res.Failed = len(images)
		return res, err
	}
	res.Board = b.Descriptor.WithRowCol()

	name := res.Board.Name()
	logger, journal := opts.Logger, opts.Journal
	ct := b.Descriptor.CellType()
	if opts.CellType != "" {
		v, _ := errs.ValidateCellType(opts.CellType)
		ct = board.CellType(v)
	}
	mode, _ := placement.ParseResizeMode(opts.ResizeMode)

	start := time.Now()
	hooks := observability.Board()
	journal.Info("import started", "board", name, "images", len(images), "cellType", ct,
		"resize", mode, "autoExtend", opts.AutoExtend, "direction", opts.Direction)
	defer func() {
		if opts.Store != nil {
			if cerr := opts.Store.Clear(context.WithoutCancel(ctx), name); cerr != nil {
				logger.Warn("extension direction not cleared", "board", name, "err", cerr)
			}
		}
		hooks.OnImportComplete(ctx, name, res.Placed, res.Failed, time.Since(start))
		journal.Info("import finished", "placed", res.Placed, "failed", res.Failed,
			"extended", res.Extended, "elapsed", time.Since(start).Round(time.Millisecond))
	}()

	cache, err := occupancy.Build(b.Surface)
	if err != nil {
		res.Failed = len(images)
		return res, errs.Wrap(errs.ErrCodeCorruptBoard, err, "read board content")
	}

	for i, path := range images {
		if err := ctx.Err(); err != nil {
			res.Failed += len(images) - i
			journal.Warn("import cancelled", "remaining", len(images)-i)
			return res, err
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i, len(images), path)
		}

		sw, sh, err := opts.Prober.Probe(path)
		if err != nil {
			res.Failed++
			logger.Warn("image unreadable", "image", path, "err", err)
			journal.Error("image failed", "image", path, "err", err)
			hooks.OnPlace(ctx, name, path, 0, "", err)
			continue
		}
		orientation := board.OrientationOf(sw, sh)

		cell, side, ok := cache.FindFree(res.Board.Cells, ct, orientation)
		if !ok && opts.AutoExtend {
			next, err := extend.Extend(ctx, extend.Request{
				Board:        res.Board,
				Path:         b.Path,
				Surface:      b.Surface,
				Direction:    opts.Direction,
				Store:        opts.Store,
				OverlayFiles: opts.OverlayFiles,
				Prober:       opts.Prober,
				Logger:       logger,
			})
			if err != nil {
				res.Failed += len(images) - i
				journal.Error("extension failed, import aborted", "remaining", len(images)-i, "err", err)
				return res, err
			}
			res.Board = next
			res.Extended++
			journal.Info("board extended", "cells", len(next.Cells), "cols", next.NbrCols(), "rows", next.NbrRows())
			if cache, err = occupancy.Build(b.Surface); err != nil {
				res.Failed += len(images) - i
				return res, errs.Wrap(errs.ErrCodeCorruptBoard, err, "read board content")
			}
			cell, side, ok = cache.FindFree(res.Board.Cells, ct, orientation)
		}
		if !ok {
			res.Failed += len(images) - i
			logger.Warn("no empty cell left", "remaining", len(images)-i)
			journal.Warn("no empty cell left, import stopped", "remaining", len(images)-i)
			return res, nil
		}

		if err := place(b.Surface, path, cell, side, ct, sw, sh, mode, res.Board.Margin(), logger); err != nil {
			hooks.OnPlace(ctx, name, path, cell.Index, string(side), err)
			if errs.IsBatchFatal(err) {
				res.Failed += len(images) - i
				return res, err
			}
			res.Failed++
			logger.Warn("image not placed", "image", path, "cell", cell.Index, "err", err)
			journal.Error("image failed", "image", path, "cell", cell.Index, "err", err)
			continue
		}
		hooks.OnPlace(ctx, name, path, cell.Index, string(side), nil)
		res.Placed++
		journal.Info("image placed", "image", path, "cell", cell.Index, "side", side,
			"size", fmt.Sprintf("%dx%d", sw, sh), "orientation", orientation)

		if cache, err = occupancy.Build(b.Surface); err != nil {
			res.Failed += len(images) - i - 1
			return res, errs.Wrap(errs.ErrCodeCorruptBoard, err, "read board content")
		}
	}
	return res, nil
}

func place(s canvas.Surface, path string, cell board.Cell, side board.Side, ct board.CellType, sw, sh int, mode placement.ResizeMode, margin float64, logger *log.Logger) error {
	plan, err := placement.Plan(placement.Request{
		Cell:         cell,
		CellType:     ct,
		Side:         side,
		Margin:       margin,
		SourceWidth:  sw,
		SourceHeight: sh,
		Mode:         mode,
	})
	if err != nil {
		return err
	}
	logger.Debug("placement", "image", path, "cell", cell.Index, "side", plan.Side,
		"size", fmt.Sprintf("%dx%d", plan.FinalWidth, plan.FinalHeight),
		"at", fmt.Sprintf("%d,%d", plan.TargetX, plan.TargetY))
	_, err = placement.Apply(s, path, cell, ct, plan, logger)
	return err
}
