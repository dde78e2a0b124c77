package board

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
)

func sampleBoard() *Descriptor {
	d := &Descriptor{}
	d.Meta.Set(KeyBoardName, "holiday")
	d.Meta.SetInt(KeyNbrCols, 2)
	d.Meta.SetInt(KeyNbrRows, 2)
	d.Meta.SetFloat(KeyCellWidth, 400)
	d.Meta.SetFloat(KeyCellHeight, 300)
	d.Meta.Set(KeyCellType, string(Spread))
	d.Meta.SetFloat(KeyAdjustedMargin, 12.5)
	d.Meta.SetOverlayFiles([]string{"/tmp/a.png", "/tmp/b.png"})
	d.Meta.SetOverlayIndex(1, 2, 1)
	idx := 1
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			d.Cells = append(d.Cells, NewCell(idx, geom.XYWH(float64(100+col*440), float64(80+row*340), 400, 300)))
			idx++
		}
	}
	d.AssignRowCol()
	return d
}

func TestRoundTrip(t *testing.T) {
	d := sampleBoard()
	path := filepath.Join(t.TempDir(), "holiday.board")
	if err := d.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path, func(err error) { t.Errorf("unexpected skip: %v", err) })
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(got.Cells) != len(d.Cells) {
		t.Fatalf("len(Cells) = %d, want %d", len(got.Cells), len(d.Cells))
	}
	for i := range d.Cells {
		if got.Cells[i] != d.Cells[i] {
			t.Errorf("Cells[%d] = %+v, want %+v", i, got.Cells[i], d.Cells[i])
		}
	}

	wantKeys := d.Meta.Keys()
	gotKeys := got.Meta.Keys()
	if strings.Join(gotKeys, ",") != strings.Join(wantKeys, ",") {
		t.Errorf("Keys() = %v, want %v", gotKeys, wantKeys)
	}
	for _, k := range wantKeys {
		want, _ := d.Meta.Get(k)
		if v, _ := got.Meta.Get(k); v != want {
			t.Errorf("Meta[%s] = %q, want %q", k, v, want)
		}
	}

	if files := got.Meta.OverlayFiles(); len(files) != 2 || files[1] != "/tmp/b.png" {
		t.Errorf("OverlayFiles() = %v", files)
	}
	if idx, ok := got.Meta.OverlayIndex(1, 2); !ok || idx != 1 {
		t.Errorf("OverlayIndex(1, 2) = %d, %v, want 1, true", idx, ok)
	}
}

func TestEncodeFormat(t *testing.T) {
	d := &Descriptor{}
	d.Meta.SetInt(KeyNbrCols, 1)
	d.Cells = []Cell{NewCell(1, geom.XYWH(10, 20, 100, 50))}

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "# Board Layout File\n#nbrCols=1\n1,10,20,10,70,110,70,110,20\n"
	if buf.String() != want {
		t.Errorf("Encode() = %q, want %q", buf.String(), want)
	}
}

func TestDecodeSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		Header,
		"#nbrCols=2",
		"# a comment",
		"1,0,0,0,100,100,100,100,0",
		"2,1,2,3",
		"x,0,0,0,100,100,100,100,0",
		"3,0,0,0,abc,100,100,100,0",
		"4,0,0,0,0,0,0,0,0",
		"",
		"5,140,0,140,100,240,100,240,0",
	}, "\n")

	var skipped []error
	d, err := Decode(strings.NewReader(input), func(err error) { skipped = append(skipped, err) })
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(d.Cells) != 2 {
		t.Fatalf("len(Cells) = %d, want 2", len(d.Cells))
	}
	if len(skipped) != 4 {
		t.Errorf("skipped = %d, want 4", len(skipped))
	}
	for _, e := range skipped {
		le, ok := e.(*errs.LineError)
		if !ok {
			t.Fatalf("skip error type = %T, want *LineError", e)
		}
		if le.Code() != errs.ErrCodeParse {
			t.Errorf("Code() = %v, want %v", le.Code(), errs.ErrCodeParse)
		}
	}
	if d.Meta.Len() != 1 {
		t.Errorf("Meta.Len() = %d, want 1", d.Meta.Len())
	}
}

func TestRequireCells(t *testing.T) {
	d, err := Decode(strings.NewReader(Header+"\n#nbrCols=2\n1,2,3\n"), nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := d.RequireCells(); !errs.Is(err, errs.ErrCodeCorruptBoard) {
		t.Errorf("RequireCells() = %v, want CORRUPT_BOARD", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.board"), nil)
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Read() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "holiday")
	if err := sampleBoard().Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sampleBoard().Write(path); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "holiday.board" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %v, want [holiday.board]", names)
	}
}

func TestMetaOrderAndOverwrite(t *testing.T) {
	var m Meta
	m.Set("b", "1")
	m.Set("a", "2")
	m.Set("b", "3")
	m.Delete("missing")

	if got := strings.Join(m.Keys(), ","); got != "b,a" {
		t.Errorf("Keys() = %q, want %q", got, "b,a")
	}
	if v, _ := m.Get("b"); v != "3" {
		t.Errorf("Get(b) = %q, want 3", v)
	}

	m.Delete("b")
	if got := strings.Join(m.Keys(), ","); got != "a" {
		t.Errorf("Keys() after Delete = %q, want %q", got, "a")
	}

	m.Set("n", "3.0")
	if n, ok := m.Int("n"); !ok || n != 3 {
		t.Errorf("Int(n) = %d, %v, want 3, true", n, ok)
	}

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":"2","n":"3.0"}` {
		t.Errorf("MarshalJSON() = %s", data)
	}
}

func TestCellHalf(t *testing.T) {
	c := NewCell(1, geom.XYWH(100, 0, 301, 200))
	left := c.Half(Left)
	right := c.Half(Right)
	if left != (geom.Rect{MinX: 100, MinY: 0, MaxX: 250, MaxY: 200}) {
		t.Errorf("Half(Left) = %v", left)
	}
	if right != (geom.Rect{MinX: 250, MinY: 0, MaxX: 401, MaxY: 200}) {
		t.Errorf("Half(Right) = %v", right)
	}
}

func TestOrientationOf(t *testing.T) {
	tests := []struct {
		w, h int
		want Orientation
	}{
		{400, 300, Landscape},
		{300, 400, Portrait},
		{300, 300, Portrait},
	}
	for _, tt := range tests {
		if got := OrientationOf(tt.w, tt.h); got != tt.want {
			t.Errorf("OrientationOf(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestWithRowCol(t *testing.T) {
	d := sampleBoard()
	if got := d.WithRowCol(); got != d {
		t.Error("WithRowCol() copied a descriptor that already has rows and columns")
	}

	built := sampleBoard()
	for i := range built.Cells {
		built.Cells[i].Row, built.Cells[i].Col = 0, 0
	}
	got := built.WithRowCol()
	if got == built || built.Cells[3].Row != 0 {
		t.Fatal("WithRowCol() modified its receiver")
	}
	for i, c := range got.Cells {
		if c.Row != d.Cells[i].Row || c.Col != d.Cells[i].Col {
			t.Errorf("cell %d = R%dC%d, want R%dC%d", c.Index, c.Row, c.Col, d.Cells[i].Row, d.Cells[i].Col)
		}
	}
}
