package layout

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
)

func pixelOptions(dir string) Options {
	return Options{
		BoardName:    "holiday",
		Destination:  dir,
		CanvasUnit:   "px",
		CanvasWidth:  1000,
		CanvasHeight: 800,
		Cols:         2,
		Rows:         1,
		CellType:     "spread",
		CellUnit:     "px",
		CellWidth:    300,
		CellHeight:   200,
		Margin:       10,
		SpacingUnit:  "px",
		Spacing:      20,
	}
}

func childNames(t *testing.T, s canvas.Surface, parent canvas.LayerID) []string {
	t.Helper()
	kids, err := s.Children(parent)
	if err != nil {
		t.Fatalf("Children() error = %v", err)
	}
	names := make([]string, len(kids))
	for i, k := range kids {
		names[i] = k.Name
	}
	return names
}

func TestGenerateWritesDescriptorAndLayers(t *testing.T) {
	dir := t.TempDir()
	doc := canvas.New("holiday", 1, 1, 300)

	desc, err := Generate(context.Background(), pixelOptions(dir), doc)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if w, h := doc.Size(); w != 1000 || h != 800 {
		t.Errorf("canvas = %dx%d, want 1000x800", w, h)
	}
	if len(desc.Cells) != 2 {
		t.Fatalf("len(Cells) = %d, want 2", len(desc.Cells))
	}

	wantKeys := []string{
		board.KeyBoardName, board.KeyNbrCols, board.KeyNbrRows,
		board.KeyCellWidth, board.KeyCellHeight, board.KeyCellType, board.KeyAdjustedMargin,
	}
	if got := desc.Meta.Keys()[:len(wantKeys)]; strings.Join(got, ",") != strings.Join(wantKeys, ",") {
		t.Errorf("meta keys = %v, want prefix %v", got, wantKeys)
	}

	read, err := board.Read(board.Path(dir, "holiday"), nil)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(read.Cells) != 2 || read.Cells[1].Bounds() != desc.Cells[1].Bounds() {
		t.Errorf("Read() cells = %+v, want %+v", read.Cells, desc.Cells)
	}
	if read.CellType() != board.Spread || read.Margin() != 10 {
		t.Errorf("Read() cellType = %s margin = %v", read.CellType(), read.Margin())
	}

	if got := strings.Join(childNames(t, doc, canvas.Root), ","); got != "Background,Board Content,Board Elements" {
		t.Errorf("root layers = %s", got)
	}
	elements, _ := doc.Find(canvas.Root, board.GroupElements)
	if got := strings.Join(childNames(t, doc, elements), ","); got != "Simple page Mask,Gutters,Borders,Mask,Legend" {
		t.Errorf("Board Elements layers = %s", got)
	}

	page, _ := canvas.Lookup(doc, board.GroupElements, board.GroupSimplePage)
	kids, _ := doc.Children(page)
	if len(kids) != 2 || kids[0].Name != "R1C1" || kids[1].Name != "R1C2" {
		t.Fatalf("Simple page Mask children = %+v", kids)
	}
	for _, k := range kids {
		if k.Visible {
			t.Errorf("%s is visible, want hidden", k.Name)
		}
	}

	maskID, _ := canvas.Lookup(doc, board.GroupElements, board.LayerMask)
	mask, _ := doc.Layer(maskID)
	clears := 0
	for _, op := range mask.Ops {
		if op.Op == canvas.OpClear {
			clears++
		}
	}
	if clears != 2 {
		t.Errorf("Mask clears = %d, want 2", clears)
	}

	content, _ := doc.Find(canvas.Root, board.GroupContent)
	if got := childNames(t, doc, content); len(got) != 1 || got[0] != SizeInfoText(280, 180) {
		t.Errorf("Board Content = %v, want size info", got)
	}
}

func TestGenerateLegendBelowGrid(t *testing.T) {
	doc := canvas.New("b", 1, 1, 72)
	if _, err := Generate(context.Background(), pixelOptions(t.TempDir()), doc); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	id, ok := canvas.Lookup(doc, board.GroupElements, board.LayerLegend)
	if !ok {
		t.Fatal("Legend layer missing")
	}
	r, _ := doc.Bounds(id)
	// Grid spans x 190..810 and y 300..500.
	if r.MaxX > 800 {
		t.Errorf("legend right edge = %v, want <= 800", r.MaxX)
	}
	if r.MinY < 500 || r.MaxY > 800-LegendBottomMargin {
		t.Errorf("legend y = %v..%v, want within 500..%d", r.MinY, r.MaxY, 800-LegendBottomMargin)
	}
}

func TestGenerateOverlays(t *testing.T) {
	dir := t.TempDir()
	overlayDir := filepath.Join(dir, "overlays")
	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	a := filepath.Join(overlayDir, "a.png")
	b := filepath.Join(overlayDir, "b.png")
	for _, p := range []string{a, b, filepath.Join(overlayDir, "notes.txt")} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	opts := pixelOptions(dir)
	opts.Overlay = overlayDir
	opts.Prober = canvas.StaticProber{a: {100, 200}, b: {200, 100}}
	doc := canvas.New("b", 1, 1, 72)

	desc, err := Generate(context.Background(), opts, doc)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := desc.Meta.OverlayFiles(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("OverlayFiles() = %v, want [%s %s]", got, a, b)
	}
	if idx, ok := desc.Meta.OverlayIndex(1, 2); !ok || idx != 0 {
		t.Errorf("OverlayIndex(1, 2) = %d, %v, want 0, true", idx, ok)
	}

	group, ok := canvas.Lookup(doc, board.GroupElements, board.GroupOverlay)
	if !ok {
		t.Fatal("Overlay group missing")
	}
	// Portrait overlay a fills the left page and b the right page of each cell.
	got := childNames(t, doc, group)
	want := []string{"Overlay_a", "Overlay_b", "Overlay_a", "Overlay_b"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("overlay layers = %v, want %v", got, want)
	}
	kids, _ := doc.Children(group)
	if w := kids[0].Bounds.Width(); w != 150 {
		t.Errorf("left overlay width = %v, want 150", w)
	}
}

func TestGenerateGuides(t *testing.T) {
	opts := pixelOptions(t.TempDir())
	opts.Guides = true
	doc := canvas.New("b", 1, 1, 72)
	if _, err := Generate(context.Background(), opts, doc); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// Two first-row cells with five vertical guides each, one first-column
	// cell with four horizontal guides.
	if len(doc.Guides) != 14 {
		t.Errorf("len(Guides) = %d, want 14", len(doc.Guides))
	}
}

func TestGenerateRejectsBadOptionsBeforeMutation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no destination", func(o *Options) { o.Destination = "" }},
		{"bad name", func(o *Options) { o.BoardName = "///" }},
		{"bad cell type", func(o *Options) { o.CellType = "triptych" }},
		{"bad unit", func(o *Options) { o.CellUnit = "furlong" }},
		{"bad color", func(o *Options) { o.Border = "grey" }},
		{"margin too wide", func(o *Options) { o.Margin = 100 }},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		opts := pixelOptions(dir)
		tt.mutate(&opts)
		doc := canvas.New("b", 1, 1, 72)

		_, err := Generate(context.Background(), opts, doc)
		if !errs.Is(err, errs.ErrCodeConfiguration) {
			t.Errorf("%s: Generate() error = %v, want CONFIGURATION_ERROR", tt.name, err)
		}
		if len(doc.Layers) != 0 {
			t.Errorf("%s: surface was modified", tt.name)
		}
		if entries, _ := os.ReadDir(dir); len(entries) != 0 {
			t.Errorf("%s: files written: %v", tt.name, entries)
		}
	}
}

func TestOverlayIndex(t *testing.T) {
	tests := []struct {
		row, col, cols, count int
		ct                    board.CellType
		want                  int
	}{
		{1, 1, 3, 4, board.Single, 0},
		{1, 3, 3, 4, board.Single, 2},
		{2, 2, 3, 4, board.Single, 0},
		{1, 1, 3, 4, board.Spread, 0},
		{1, 2, 3, 4, board.Spread, 2},
		{1, 2, 3, 2, board.Spread, 0},
		{1, 2, 3, 0, board.Spread, 0},
	}
	for _, tt := range tests {
		if got := OverlayIndex(tt.row, tt.col, tt.cols, tt.count, tt.ct); got != tt.want {
			t.Errorf("OverlayIndex(%d, %d, %d, %d, %s) = %d, want %d", tt.row, tt.col, tt.cols, tt.count, tt.ct, got, tt.want)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConfigTemplate(&buf); err != nil {
		t.Fatalf("WriteConfigTemplate() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "board.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if opts.Cols != DefaultCols || opts.CellUnit != DefaultCellUnit || opts.Spacing != DefaultSpacing {
		t.Errorf("LoadConfig() = %+v", opts)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	_ = os.WriteFile(bad, []byte("[board]\ncolumns = 4\n"), 0o644)
	if _, err := LoadConfig(bad); !errs.Is(err, errs.ErrCodeConfiguration) {
		t.Errorf("LoadConfig(unknown key) error = %v, want CONFIGURATION_ERROR", err)
	}
}

func TestMergeKeepsBaseForZeroFields(t *testing.T) {
	base := DefaultOptions()
	got := Merge(base, Options{Cols: 5, Guides: true})
	if got.Cols != 5 || !got.Guides || got.Rows != DefaultRows || got.Margin != DefaultMargin {
		t.Errorf("Merge() = %+v", got)
	}
}
