// Package captions writes the name of every placed image under its cell.
//
// Captions live in an "Image Names" group inside Board Elements. The group
// is dropped and rebuilt on every run, so running [Add] twice leaves one
// caption per image.
package captions

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/fonts"
	"github.com/matzehuels/openboard/pkg/geom"
)

const (
	DefaultSize   = 12.0
	DefaultColor  = "#000000"
	DefaultOffset = 10.0
)

// Options configures caption text.
type Options struct {
	Size  float64 `json:"size" toml:"size"`
	Color string  `json:"color" toml:"color"`
	// Offset is the gap between the cell bottom and the caption.
	Offset float64 `json:"offset" toml:"offset"`

	Logger  *log.Logger `json:"-" toml:"-"`
	Journal *log.Logger `json:"-" toml:"-"`
}

// SetDefaults fills unset fields. A zero Offset is kept.
func (o *Options) SetDefaults() {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Journal == nil {
		o.Journal = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result counts the captions written and the content layers that sit in
// no cell.
type Result struct {
	Added     int
	Unmatched int
}

// Add captions every content layer of s that lies in a cell of d.
func Add(s canvas.Surface, d *board.Descriptor, opts Options) (Result, error) {
	opts.SetDefaults()
	fg, err := canvas.ParseColor(opts.Color)
	if err != nil {
		return Result{}, errs.Wrap(errs.ErrCodeConfiguration, err, "caption color")
	}
	if err := d.RequireCells(); err != nil {
		return Result{}, err
	}
	elements, ok := s.Find(canvas.Root, board.GroupElements)
	if !ok {
		return Result{}, errs.New(errs.ErrCodeLayerNotFound, "board canvas has no %q group", board.GroupElements)
	}
	content, ok := s.Find(canvas.Root, board.GroupContent)
	if !ok {
		return Result{}, errs.New(errs.ErrCodeLayerNotFound, "board canvas has no %q group", board.GroupContent)
	}

	for {
		old, ok := s.Find(elements, board.GroupImageNames)
		if !ok {
			break
		}
		if err := s.Remove(old); err != nil {
			return Result{}, err
		}
		opts.Logger.Debug("previous captions removed")
	}
	group, err := s.Group(elements, board.GroupImageNames)
	if err != nil {
		return Result{}, err
	}

	layers, err := s.Children(content)
	if err != nil {
		return Result{}, err
	}
	sort.SliceStable(layers, func(i, j int) bool {
		a, b := layers[i].Bounds, layers[j].Bounds
		if a.MinY != b.MinY {
			return a.MinY < b.MinY
		}
		return a.MinX < b.MinX
	})

	var res Result
	ct := d.CellType()
	for _, l := range layers {
		if l.Kind == canvas.KindGroup || l.Bounds.Empty() {
			continue
		}
		center := l.Bounds.Center()
		cell, ok := cellAt(d.Cells, center)
		if !ok {
			res.Unmatched++
			opts.Journal.Debug("layer outside every cell", "layer", l.Name)
			continue
		}

		x, y := Anchor(cell, ct, center.X, opts.Offset)
		tw, _ := fonts.Measure(l.Name, opts.Size)
		if _, err := s.AddText(group, canvas.TextSpec{
			Name:  l.Name,
			Text:  l.Name,
			X:     float64(int(x - tw/2)),
			Y:     float64(int(y)),
			Size:  opts.Size,
			Color: fg,
		}); err != nil {
			return res, err
		}
		res.Added++
		opts.Journal.Info("caption added", "name", l.Name, "cell", cell.Index, "x", int(x), "y", int(y))
	}
	opts.Logger.Info("captions added", "count", res.Added, "unmatched", res.Unmatched)
	return res, nil
}

// Anchor returns the top-center point of a caption for an image centered
// at imageX inside cell. Spread cells caption each page separately.
func Anchor(cell board.Cell, ct board.CellType, imageX, offset float64) (x, y float64) {
	r := cell.Bounds()
	y = r.MaxY + offset
	if ct != board.Spread {
		return (r.MinX + r.MaxX) / 2, y
	}
	w := r.Width()
	if imageX < r.MinX+w/2 {
		return r.MinX + w/4, y
	}
	return r.MinX + 3*w/4, y
}

// cellAt returns the first cell whose closed bounds contain p.
func cellAt(cells []board.Cell, p geom.Point) (board.Cell, bool) {
	for _, c := range cells {
		if c.Bounds().ContainsClosed(p) {
			return c, true
		}
	}
	return board.Cell{}, false
}
