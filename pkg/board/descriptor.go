// Package board holds the persisted state of a collage board: its cells
// and metadata, and the line-oriented .board file that stores them.
//
// # File Format
//
// A board file is plain text:
//
//	# Board Layout File
//	#boardName=holiday
//	#nbrCols=3
//	#nbrRows=2
//	#cellType=spread
//	1,100,80,100,380,500,380,500,80
//	2,540,80,540,380,940,380,940,80
//
// Lines starting with "#" and containing "=" are metadata; the first "="
// separates key and value. Other "#" lines are comments. Every remaining
// non-blank line is a cell with nine comma-separated fields: the index,
// then the top-left, bottom-left, bottom-right and top-right corners as
// x,y pairs.
//
// Malformed cell lines are skipped and reported to the caller; they never
// fail the whole read. A board without any valid cell is reported as
// CORRUPT_BOARD by [Descriptor.RequireCells].
//
// # Row and Column
//
// Cells carry a 1-based Row and Col that are not persisted. [Decode]
// recomputes them from cell positions with [Grid], so cells appended by an
// extension get the same identity as the ones the generator wrote.
package board

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
)

// Header is the first line of every board file.
const Header = "# Board Layout File"

// Extension is the file extension of board files.
const Extension = ".board"

// Descriptor is a board's cells and metadata.
type Descriptor struct {
	Meta  Meta
	Cells []Cell
}

// Path returns the board file path for name inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+Extension)
}

// Name returns the boardName metadata value.
func (d *Descriptor) Name() string {
	v, _ := d.Meta.Get(KeyBoardName)
	return v
}

// CellType returns the board's cell type, defaulting to Single.
func (d *Descriptor) CellType() CellType {
	v, _ := d.Meta.Get(KeyCellType)
	if CellType(strings.ToLower(strings.TrimSpace(v))) == Spread {
		return Spread
	}
	return Single
}

// NbrCols returns the column count, or 0 when unknown.
func (d *Descriptor) NbrCols() int {
	n, _ := d.Meta.Int(KeyNbrCols)
	return n
}

// NbrRows returns the row count, or 0 when unknown.
func (d *Descriptor) NbrRows() int {
	n, _ := d.Meta.Int(KeyNbrRows)
	return n
}

// Margin returns the adjusted margin in pixels.
func (d *Descriptor) Margin() float64 {
	m, _ := d.Meta.Float(KeyAdjustedMargin)
	return m
}

// RequireCells returns a CORRUPT_BOARD error when the descriptor holds no
// cells.
func (d *Descriptor) RequireCells() error {
	if len(d.Cells) == 0 {
		return errs.New(errs.ErrCodeCorruptBoard, "board %q has no valid cells", d.Name())
	}
	return nil
}

// CellByIndex returns the cell with the given index.
func (d *Descriptor) CellByIndex(index int) (Cell, bool) {
	for _, c := range d.Cells {
		if c.Index == index {
			return c, true
		}
	}
	return Cell{}, false
}

// AssignRowCol recomputes Row and Col on every cell from positions.
func (d *Descriptor) AssignRowCol() {
	g := NewGrid(d.Cells, d.NbrCols())
	for i := range d.Cells {
		d.Cells[i].Row, d.Cells[i].Col = g.RowCol(d.Cells[i])
	}
}

// WithRowCol returns d when every cell carries a row and column, and
// otherwise a copy with them derived by AssignRowCol. Descriptors built in
// code rather than read with Decode start out with zero Row and Col.
func (d *Descriptor) WithRowCol() *Descriptor {
	for _, c := range d.Cells {
		if c.Row == 0 || c.Col == 0 {
			out := d.Clone()
			out.AssignRowCol()
			return out
		}
	}
	return d
}

// Clone returns a deep copy of the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	out := &Descriptor{Cells: append([]Cell(nil), d.Cells...)}
	for _, k := range d.Meta.keys {
		out.Meta.Set(k, d.Meta.vals[k])
	}
	return out
}

// Decode reads a board from r. Malformed cell lines are skipped and, when
// onSkip is non-nil, passed to it as *errors.LineError.
func Decode(r io.Reader, onSkip func(error)) (*Descriptor, error) {
	d := &Descriptor{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			key, value, ok := strings.Cut(line[1:], "=")
			if ok {
				d.Meta.Set(strings.TrimSpace(key), strings.TrimSpace(value))
			}
			continue
		}
		cell, err := parseCell(line)
		if err != nil {
			if onSkip != nil {
				onSkip(&errs.LineError{Line: lineNo, Text: line, Reason: err.Error()})
			}
			continue
		}
		d.Cells = append(d.Cells, cell)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "read board")
	}

	d.AssignRowCol()
	return d, nil
}

func parseCell(line string) (Cell, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 9 {
		return Cell{}, fmt.Errorf("expected 9 fields, got %d", len(fields))
	}
	idx, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Cell{}, fmt.Errorf("invalid index %q", fields[0])
	}
	var v [8]float64
	for i := range v {
		f, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return Cell{}, fmt.Errorf("invalid coordinate %q", fields[i+1])
		}
		v[i] = f
	}
	c := Cell{
		Index:       idx,
		TopLeft:     geom.Point{X: v[0], Y: v[1]},
		BottomLeft:  geom.Point{X: v[2], Y: v[3]},
		BottomRight: geom.Point{X: v[4], Y: v[5]},
		TopRight:    geom.Point{X: v[6], Y: v[7]},
	}
	if err := c.validate(); err != nil {
		return Cell{}, err
	}
	return c, nil
}

// Encode writes the board to w: header, metadata in insertion order, then
// cells in slice order.
func (d *Descriptor) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, k := range d.Meta.keys {
		fmt.Fprintf(bw, "#%s=%s\n", k, d.Meta.vals[k])
	}
	for _, c := range d.Cells {
		fmt.Fprintf(bw, "%d,%s,%s,%s,%s,%s,%s,%s,%s\n", c.Index,
			formatFloat(c.TopLeft.X), formatFloat(c.TopLeft.Y),
			formatFloat(c.BottomLeft.X), formatFloat(c.BottomLeft.Y),
			formatFloat(c.BottomRight.X), formatFloat(c.BottomRight.Y),
			formatFloat(c.TopRight.X), formatFloat(c.TopRight.Y))
	}
	return bw.Flush()
}

// Read loads the board file at path.
func Read(path string, onSkip func(error)) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "board file not found: %s", path)
		}
		return nil, fmt.Errorf("open board: %w", err)
	}
	defer f.Close()
	return Decode(f, onSkip)
}

// Write replaces the board file at path. The content is written to a
// temporary file in the same directory and renamed over path, so readers
// see either the old or the new board, never a partial one.
func (d *Descriptor) Write(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create board dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp board: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := d.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write board: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync board: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close board: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace board: %w", err)
	}
	return nil
}
