package placement

import (
	"testing"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
	"github.com/matzehuels/openboard/pkg/layout"
)

func TestPlan(t *testing.T) {
	cell := board.NewCell(1, geom.XYWH(100, 100, 400, 300))
	odd := board.NewCell(2, geom.XYWH(100, 100, 401, 300))
	tests := []struct {
		name string
		req  Request
		want Result
	}{
		{
			name: "single fit",
			req:  Request{Cell: cell, CellType: board.Single, Margin: 10, SourceWidth: 760, SourceHeight: 380, Mode: Fit},
			want: Result{FinalWidth: 380, FinalHeight: 190, TargetX: 110, TargetY: 155, Clip: cell.Bounds(), Side: board.Left, Orientation: board.Landscape, FullCell: true},
		},
		{
			name: "single cover overflows",
			req:  Request{Cell: cell, CellType: board.Single, Margin: 10, SourceWidth: 800, SourceHeight: 400, Mode: Cover},
			want: Result{FinalWidth: 560, FinalHeight: 280, TargetX: 20, TargetY: 110, Clip: cell.Bounds(), Side: board.Left, Orientation: board.Landscape, FullCell: true},
		},
		{
			name: "spread portrait right page",
			req:  Request{Cell: cell, CellType: board.Spread, Side: board.Right, Margin: 10, SourceWidth: 400, SourceHeight: 1120, Mode: Fit},
			want: Result{FinalWidth: 100, FinalHeight: 280, TargetX: 350, TargetY: 110, Clip: geom.Rect{MinX: 300, MinY: 100, MaxX: 500, MaxY: 400}, Side: board.Right, Orientation: board.Portrait},
		},
		{
			name: "spread portrait left page",
			req:  Request{Cell: cell, CellType: board.Spread, Margin: 10, SourceWidth: 400, SourceHeight: 1120, Mode: Fit},
			want: Result{FinalWidth: 100, FinalHeight: 280, TargetX: 150, TargetY: 110, Clip: geom.Rect{MinX: 100, MinY: 100, MaxX: 300, MaxY: 400}, Side: board.Left, Orientation: board.Portrait},
		},
		{
			name: "spread landscape ignores side",
			req:  Request{Cell: cell, CellType: board.Spread, Side: board.Right, Margin: 10, SourceWidth: 500, SourceHeight: 200, Mode: NoResize},
			want: Result{FinalWidth: 500, FinalHeight: 200, TargetX: 50, TargetY: 150, Clip: cell.Bounds(), Side: board.Left, Orientation: board.Landscape, FullCell: true},
		},
		{
			name: "square is portrait",
			req:  Request{Cell: cell, CellType: board.Spread, SourceWidth: 200, SourceHeight: 200, Mode: NoResize},
			want: Result{FinalWidth: 200, FinalHeight: 200, TargetX: 100, TargetY: 150, Clip: geom.Rect{MinX: 100, MinY: 100, MaxX: 300, MaxY: 400}, Side: board.Left, Orientation: board.Portrait},
		},
		{
			// The page split of an odd-width cell is floored, as in Cell.Half.
			name: "odd width right page",
			req:  Request{Cell: odd, CellType: board.Spread, Side: board.Right, SourceWidth: 101, SourceHeight: 200, Mode: NoResize},
			want: Result{FinalWidth: 101, FinalHeight: 200, TargetX: 349, TargetY: 150, Clip: geom.Rect{MinX: 300, MinY: 100, MaxX: 501, MaxY: 400}, Side: board.Right, Orientation: board.Portrait},
		},
		{
			name: "unknown mode covers",
			req:  Request{Cell: cell, CellType: board.Single, Margin: 10, SourceWidth: 800, SourceHeight: 400, Mode: "stretch"},
			want: Result{FinalWidth: 560, FinalHeight: 280, TargetX: 20, TargetY: 110, Clip: cell.Bounds(), Side: board.Left, Orientation: board.Landscape, FullCell: true},
		},
	}
	for _, tt := range tests {
		got, err := Plan(tt.req)
		if err != nil {
			t.Errorf("%s: Plan() error = %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: Plan() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestPlanErrors(t *testing.T) {
	cell := board.NewCell(1, geom.XYWH(0, 0, 400, 300))

	_, err := Plan(Request{Cell: cell, CellType: board.Single, SourceWidth: 0, SourceHeight: 10, Mode: Fit})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Plan(zero width) error = %v, want INVALID_INPUT", err)
	}

	// A 100 px margin leaves nothing of a 200 px page.
	_, err = Plan(Request{Cell: cell, CellType: board.Spread, Margin: 100, SourceWidth: 100, SourceHeight: 300, Mode: Fit})
	if !errs.Is(err, errs.ErrCodePlacementSkipped) {
		t.Errorf("Plan(no room) error = %v, want PLACEMENT_SKIPPED", err)
	}
}

func TestParseResizeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ResizeMode
		wantErr bool
	}{
		{"", Fit, false},
		{"cover", Cover, false},
		{"noresize", NoResize, false},
		{"stretch", "", true},
	}
	for _, tt := range tests {
		got, err := ParseResizeMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseResizeMode(%q) = %q, %v, want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func spreadBoard(t *testing.T) (*canvas.Document, []board.Cell) {
	t.Helper()
	doc := canvas.New("b", 1000, 500, 72)
	st, err := layout.BuildStructure(doc, board.Spread, layout.DefaultPalette())
	if err != nil {
		t.Fatalf("BuildStructure() error = %v", err)
	}
	cells := []board.Cell{
		board.NewCell(1, geom.XYWH(50, 50, 400, 300)),
		board.NewCell(2, geom.XYWH(500, 50, 400, 300)),
	}
	for i := range cells {
		cells[i].Row, cells[i].Col = 1, i+1
		if err := st.DecorateCell(doc, cells[i], board.Spread, 5, layout.DefaultPalette()); err != nil {
			t.Fatalf("DecorateCell() error = %v", err)
		}
	}
	return doc, cells
}

func TestApplySpreadTogglesStrip(t *testing.T) {
	doc, cells := spreadBoard(t)
	page, _ := canvas.Lookup(doc, board.GroupElements, board.GroupSimplePage)
	_ = doc.SetVisible(page, false)

	portrait, err := Plan(Request{Cell: cells[0], CellType: board.Spread, SourceWidth: 100, SourceHeight: 200, Mode: Fit})
	if err != nil {
		t.Fatal(err)
	}
	id, err := Apply(doc, "/photos/beach day.jpg", cells[0], board.Spread, portrait, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	l, _ := doc.Layer(id)
	if l.Name != "beach day" || l.Source != "/photos/beach day.jpg" || *l.Clip != portrait.Clip {
		t.Errorf("image layer = %+v", l)
	}
	if v, _ := doc.Visible(page); !v {
		t.Error("Simple page Mask still hidden")
	}
	r1c1, _ := doc.Find(page, "R1C1")
	if v, _ := doc.Visible(r1c1); !v {
		t.Error("R1C1 hidden after a portrait placement")
	}

	landscape, _ := Plan(Request{Cell: cells[1], CellType: board.Spread, SourceWidth: 300, SourceHeight: 200, Mode: Fit})
	if _, err := Apply(doc, "wide.png", cells[1], board.Spread, landscape, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	r1c2, _ := doc.Find(page, "R1C2")
	if v, _ := doc.Visible(r1c2); v {
		t.Error("R1C2 visible after a landscape placement")
	}

	content, _ := doc.Find(canvas.Root, board.GroupContent)
	kids, _ := doc.Children(content)
	if len(kids) != 2 || kids[1].Name != "wide" {
		t.Errorf("Board Content = %+v, want [beach day wide]", kids)
	}
}

func TestApplySingleCreatesContentGroup(t *testing.T) {
	doc := canvas.New("b", 500, 500, 72)
	cell := board.NewCell(1, geom.XYWH(0, 0, 500, 500))
	res, _ := Plan(Request{Cell: cell, CellType: board.Single, SourceWidth: 50, SourceHeight: 50, Mode: NoResize})
	if _, err := Apply(doc, "a.jpg", cell, board.Single, res, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, ok := doc.Find(canvas.Root, board.GroupContent); !ok {
		t.Error("Board Content group not created")
	}
}
