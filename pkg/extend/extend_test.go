package extend

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
	"github.com/matzehuels/openboard/pkg/layout"
	"github.com/matzehuels/openboard/pkg/state"
)

// newBoard generates a 2x2 single board with 300x200 cells, 20px spacing
// and a 10px margin on a 1000x800 canvas. Cells start at (190, 190).
func newBoard(t *testing.T, ct string) (*board.Descriptor, *canvas.Document, string) {
	t.Helper()
	dir := t.TempDir()
	doc := canvas.New("holiday", 1, 1, 300)
	desc, err := layout.Generate(context.Background(), layout.Options{
		BoardName:    "holiday",
		Destination:  dir,
		CanvasUnit:   "px",
		CanvasWidth:  1000,
		CanvasHeight: 800,
		Cols:         2,
		Rows:         2,
		CellType:     ct,
		CellUnit:     "px",
		CellWidth:    300,
		CellHeight:   200,
		Margin:       10,
		SpacingUnit:  "px",
		Spacing:      20,
	}, doc)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return desc, doc, board.Path(dir, "holiday")
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", Alternate, false},
		{"bottom", Bottom, false},
		{"Right", Right, false},
		{" ALTERNATE ", Alternate, false},
		{"0", Bottom, false},
		{"1", Right, false},
		{"2", Alternate, false},
		{"left", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errs.Is(err, errs.ErrCodeInvalidDirection) {
			t.Errorf("ParseDirection(%q) error code = %s, want INVALID_DIRECTION", tt.in, errs.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNext(t *testing.T) {
	tests := map[string]Direction{
		"":       Right,
		"Right":  Bottom,
		"Bottom": Right,
		"junk":   Right,
	}
	for last, want := range tests {
		if got := Next(last); got != want {
			t.Errorf("Next(%q) = %q, want %q", last, got, want)
		}
	}
}

func cellAt(index int, x, y, w, h float64) board.Cell {
	return board.NewCell(index, geom.XYWH(x, y, w, h))
}

func TestInferSpacing(t *testing.T) {
	tests := []struct {
		name  string
		cells []board.Cell
		want  float64
	}{
		{"empty", nil, DefaultSpacing},
		{"single cell", []board.Cell{cellAt(1, 0, 0, 100, 100)}, DefaultSpacing},
		{"same row", []board.Cell{cellAt(1, 0, 0, 100, 100), cellAt(2, 125, 0, 100, 100)}, 25},
		{"unsorted input", []board.Cell{cellAt(2, 130, 4, 100, 100), cellAt(1, 0, 0, 100, 100)}, 30},
		{"column only", []board.Cell{cellAt(1, 0, 0, 100, 100), cellAt(2, 0, 130, 100, 100)}, 30},
		{"row gap wins over column gap", []board.Cell{
			cellAt(1, 0, 0, 100, 100), cellAt(2, 110, 0, 100, 100), cellAt(3, 0, 150, 100, 100),
		}, 10},
		{"touching column", []board.Cell{cellAt(1, 0, 0, 100, 100), cellAt(2, 0, 100, 100, 100)}, DefaultSpacing},
		{"touching cells", []board.Cell{cellAt(1, 0, 0, 100, 100), cellAt(2, 100, 0, 100, 100)}, DefaultSpacing},
	}
	for _, tt := range tests {
		if got := InferSpacing(tt.cells); got != tt.want {
			t.Errorf("%s: InferSpacing() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewPlan(t *testing.T) {
	desc := &board.Descriptor{}
	desc.Meta.SetInt(board.KeyNbrCols, 2)
	desc.Meta.SetInt(board.KeyNbrRows, 2)
	desc.Cells = []board.Cell{
		cellAt(1, 190, 190, 300, 200), cellAt(2, 510, 190, 300, 200),
		cellAt(3, 190, 410, 300, 200), cellAt(4, 510, 410, 300, 200),
	}

	right, err := NewPlan(desc, Right)
	if err != nil {
		t.Fatalf("NewPlan(Right) error = %v", err)
	}
	if right.Spacing != 20 || right.NbrCols != 3 || right.NbrRows != 2 || right.Pitch != 320 {
		t.Errorf("NewPlan(Right) = spacing %v cols %d rows %d pitch %v", right.Spacing, right.NbrCols, right.NbrRows, right.Pitch)
	}
	wantRight := []board.Cell{cellAt(5, 830, 190, 300, 200), cellAt(6, 830, 410, 300, 200)}
	wantRight[0].Row, wantRight[0].Col = 1, 3
	wantRight[1].Row, wantRight[1].Col = 2, 3
	if len(right.NewCells) != 2 || right.NewCells[0] != wantRight[0] || right.NewCells[1] != wantRight[1] {
		t.Errorf("NewPlan(Right).NewCells = %+v, want %+v", right.NewCells, wantRight)
	}
	if w, h, strip := right.Grow(1000, 800); w != 1320 || h != 800 || strip != geom.XYWH(1000, 0, 320, 800) {
		t.Errorf("Grow() = %d, %d, %v", w, h, strip)
	}

	bottom, err := NewPlan(desc, Bottom)
	if err != nil {
		t.Fatalf("NewPlan(Bottom) error = %v", err)
	}
	if bottom.NbrRows != 3 || bottom.Pitch != 220 || len(bottom.NewCells) != 2 {
		t.Fatalf("NewPlan(Bottom) = rows %d pitch %v cells %d", bottom.NbrRows, bottom.Pitch, len(bottom.NewCells))
	}
	if c := bottom.NewCells[1]; c.Index != 6 || c.Bounds() != geom.XYWH(510, 630, 300, 200) || c.Row != 3 || c.Col != 2 {
		t.Errorf("NewPlan(Bottom).NewCells[1] = %+v", c)
	}
	if w, h, strip := bottom.Grow(1000, 800); w != 1000 || h != 1020 || strip != geom.XYWH(0, 800, 1000, 220) {
		t.Errorf("Grow() = %d, %d, %v", w, h, strip)
	}

	if _, err := NewPlan(desc, Alternate); err == nil {
		t.Error("NewPlan(Alternate) should fail")
	}
	if _, err := NewPlan(&board.Descriptor{}, Right); !errs.Is(err, errs.ErrCodeCorruptBoard) {
		t.Errorf("NewPlan(empty) error = %v, want CORRUPT_BOARD", err)
	}
}

func TestNewPlanSingleColumnUsesRowGap(t *testing.T) {
	desc := &board.Descriptor{}
	desc.Meta.SetInt(board.KeyNbrCols, 1)
	desc.Meta.SetInt(board.KeyNbrRows, 2)
	desc.Cells = []board.Cell{cellAt(1, 190, 190, 300, 200), cellAt(2, 190, 410, 300, 200)}

	p, err := NewPlan(desc, Bottom)
	if err != nil {
		t.Fatalf("NewPlan(Bottom) error = %v", err)
	}
	if p.Spacing != 20 || p.Pitch != 220 {
		t.Errorf("NewPlan(Bottom) = spacing %v pitch %v, want 20 and 220", p.Spacing, p.Pitch)
	}
	if len(p.NewCells) != 1 {
		t.Fatalf("NewPlan(Bottom).NewCells = %d, want 1", len(p.NewCells))
	}
	if got := p.NewCells[0].Bounds(); got != geom.XYWH(190, 630, 300, 200) {
		t.Errorf("new cell = %v, want top at 630", got)
	}
	if _, h, _ := p.Grow(680, 820); h != 1040 {
		t.Errorf("Grow() height = %d, want 1040", h)
	}
}

func TestTwoRightExtensionsKeepRowCol(t *testing.T) {
	desc, doc, path := newBoard(t, "single")
	ctx := context.Background()

	legend, ok := canvas.Lookup(doc, board.GroupElements, board.LayerLegend)
	if !ok {
		t.Fatal("generated board has no legend")
	}
	before, _ := doc.Bounds(legend)

	for i := 0; i < 2; i++ {
		var err error
		desc, err = Extend(ctx, Request{Board: desc, Path: path, Surface: doc, Direction: Right})
		if err != nil {
			t.Fatalf("Extend() #%d error = %v", i+1, err)
		}
	}

	if w, h := doc.Size(); w != 1640 || h != 800 {
		t.Errorf("canvas = %dx%d, want 1640x800", w, h)
	}
	after, _ := doc.Bounds(legend)
	if dx := after.MinX - before.MinX; dx != 640 || after.MinY != before.MinY {
		t.Errorf("legend moved by (%v, %v), want (640, 0)", dx, after.MinY-before.MinY)
	}

	read, err := board.Read(path, nil)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if read.NbrCols() != 4 || read.NbrRows() != 2 {
		t.Errorf("nbrCols/nbrRows = %d/%d, want 4/2", read.NbrCols(), read.NbrRows())
	}
	if v, _ := read.Meta.Int(board.KeyLayoutWidth); v != 1640 {
		t.Errorf("layoutWidth = %d, want 1640", v)
	}

	want := map[int][2]int{
		1: {1, 1}, 2: {1, 2}, 3: {2, 1}, 4: {2, 2},
		5: {1, 3}, 6: {2, 3}, 7: {1, 4}, 8: {2, 4},
	}
	if len(read.Cells) != len(want) {
		t.Fatalf("len(Cells) = %d, want %d", len(read.Cells), len(want))
	}
	for i, c := range read.Cells {
		rc := want[c.Index]
		if c.Row != rc[0] || c.Col != rc[1] {
			t.Errorf("cell %d read back as R%dC%d, want R%dC%d", c.Index, c.Row, c.Col, rc[0], rc[1])
		}
		if c.Row != desc.Cells[i].Row || c.Col != desc.Cells[i].Col {
			t.Errorf("cell %d: returned R%dC%d, read back R%dC%d", c.Index, desc.Cells[i].Row, desc.Cells[i].Col, c.Row, c.Col)
		}
	}

	mask, _ := canvas.Lookup(doc, board.GroupElements, board.LayerMask)
	l, _ := doc.Layer(mask)
	holes := 0
	for _, op := range l.Ops {
		if op.Op == canvas.OpClear {
			holes++
		}
	}
	if holes != 8 {
		t.Errorf("Mask holes = %d, want 8", holes)
	}
}

func TestExtendDerivesMissingRowCol(t *testing.T) {
	desc, doc, path := newBoard(t, "single")
	built := desc.Clone()
	for i := range built.Cells {
		built.Cells[i].Row, built.Cells[i].Col = 0, 0
	}

	out, err := Extend(context.Background(), Request{Board: built, Path: path, Surface: doc, Direction: Bottom})
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if len(out.Cells) != 6 {
		t.Fatalf("len(Cells) = %d, want 6", len(out.Cells))
	}
	want := map[int][2]int{1: {1, 1}, 2: {1, 2}, 3: {2, 1}, 4: {2, 2}, 5: {3, 1}, 6: {3, 2}}
	for _, c := range out.Cells {
		if rc := want[c.Index]; c.Row != rc[0] || c.Col != rc[1] {
			t.Errorf("cell %d = R%dC%d, want R%dC%d", c.Index, c.Row, c.Col, rc[0], rc[1])
		}
	}
	if built.Cells[0].Row != 0 {
		t.Error("Extend() modified the caller's descriptor")
	}
}

func TestAlternateUsesStore(t *testing.T) {
	desc, doc, path := newBoard(t, "spread")
	ctx := context.Background()
	store := state.NewMemoryStore()

	var err error
	desc, err = Extend(ctx, Request{Board: desc, Path: path, Surface: doc, Direction: Alternate, Store: store})
	if err != nil {
		t.Fatalf("Extend() #1 error = %v", err)
	}
	if desc.NbrCols() != 3 || desc.NbrRows() != 2 {
		t.Errorf("first alternate grew to %dx%d, want 3 cols 2 rows", desc.NbrCols(), desc.NbrRows())
	}
	if last, _ := store.Last(ctx, "holiday"); last != "Right" {
		t.Errorf("store after first = %q, want Right", last)
	}

	desc, err = Extend(ctx, Request{Board: desc, Path: path, Surface: doc, Direction: Alternate, Store: store})
	if err != nil {
		t.Fatalf("Extend() #2 error = %v", err)
	}
	if desc.NbrCols() != 3 || desc.NbrRows() != 3 || len(desc.Cells) != 9 {
		t.Errorf("second alternate = %d cols %d rows %d cells, want 3/3/9", desc.NbrCols(), desc.NbrRows(), len(desc.Cells))
	}
	if last, _ := store.Last(ctx, "holiday"); last != "Bottom" {
		t.Errorf("store after second = %q, want Bottom", last)
	}

	// Every new spread cell gets a hidden single-page strip.
	page, _ := canvas.Lookup(doc, board.GroupElements, board.GroupSimplePage)
	for _, name := range []string{"R1C3", "R2C3", "R3C1", "R3C2", "R3C3"} {
		id, ok := doc.Find(page, name)
		if !ok {
			t.Errorf("strip %s missing", name)
			continue
		}
		if vis, _ := doc.Visible(id); vis {
			t.Errorf("strip %s visible, want hidden", name)
		}
	}
}

func TestExtendUserOverlays(t *testing.T) {
	desc, doc, path := newBoard(t, "single")
	prober := canvas.StaticProber{"frame.png": {300, 200}}

	out, err := Extend(context.Background(), Request{
		Board:        desc,
		Path:         path,
		Surface:      doc,
		Direction:    Bottom,
		OverlayFiles: []string{"frame.png"},
		Prober:       prober,
	})
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	group, ok := canvas.Lookup(doc, board.GroupElements, board.GroupOverlay)
	if !ok {
		t.Fatal("Overlay group not created")
	}
	kids, _ := doc.Children(group)
	if len(kids) != 2 {
		t.Fatalf("overlays = %d, want 2", len(kids))
	}
	if kids[0].Bounds != geom.XYWH(190, 630, 300, 200) {
		t.Errorf("overlay bounds = %v, want the new cell", kids[0].Bounds)
	}
	if idx, ok := out.Meta.OverlayIndex(3, 2); !ok || idx != 0 {
		t.Errorf("OverlayIndex(3, 2) = %d, %v, want 0, true", idx, ok)
	}
}

type failingMove struct{ *canvas.Document }

func (f failingMove) Move(canvas.LayerID, float64, float64) error {
	return errors.New("disk on fire")
}

func TestExtendFailureRollsBack(t *testing.T) {
	desc, doc, path := newBoard(t, "single")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	store := state.NewMemoryStore()

	_, err = Extend(context.Background(), Request{
		Board: desc, Path: path, Surface: failingMove{doc}, Direction: Alternate, Store: store,
	})
	if !errs.Is(err, errs.ErrCodeExtensionFailure) {
		t.Fatalf("Extend() error = %v, want EXTENSION_FAILURE", err)
	}
	if w, h := doc.Size(); w != 1000 || h != 800 {
		t.Errorf("canvas after failure = %dx%d, want 1000x800", w, h)
	}
	after, _ := os.ReadFile(path)
	if string(after) != string(before) {
		t.Error("board file changed after a failed extension")
	}
	if last, _ := store.Last(context.Background(), "holiday"); last != "" {
		t.Errorf("store after failure = %q, want empty", last)
	}
	if len(desc.Cells) != 4 {
		t.Errorf("input descriptor modified: %d cells", len(desc.Cells))
	}
}

func TestExtendRejectsBadInput(t *testing.T) {
	doc := canvas.New("x", 100, 100, 72)
	tests := []struct {
		name string
		req  Request
		code errs.Code
	}{
		{"no board", Request{Surface: doc}, errs.ErrCodeInvalidInput},
		{"no cells", Request{Board: &board.Descriptor{}, Surface: doc}, errs.ErrCodeCorruptBoard},
		{"bad direction", Request{Board: &board.Descriptor{Cells: []board.Cell{cellAt(1, 0, 0, 10, 10)}}, Surface: doc, Direction: "up"}, errs.ErrCodeInvalidDirection},
		{"no structure", Request{Board: &board.Descriptor{Cells: []board.Cell{cellAt(1, 0, 0, 10, 10)}}, Surface: doc, Direction: Right}, errs.ErrCodeExtensionFailure},
	}
	for _, tt := range tests {
		_, err := Extend(context.Background(), tt.req)
		if !errs.Is(err, tt.code) {
			t.Errorf("%s: Extend() error = %v, want %s", tt.name, err, tt.code)
		}
	}
	if w, h := doc.Size(); w != 100 || h != 100 {
		t.Errorf("canvas resized by a rejected request: %dx%d", w, h)
	}
}
