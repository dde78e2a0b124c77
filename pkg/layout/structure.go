package layout

import (
	"math"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/geom"
)

// Gutter drawing constants for spread cells.
const (
	GutterMinWidth    = 2
	GutterWidthDiv    = 500.0
	GutterHeightRatio = 0.9
)

// GutterColor is the fold line drawn down the middle of spread cells.
var GutterColor = canvas.RGB(34, 34, 34)

// Palette holds the board colors.
type Palette struct {
	Background canvas.Color
	Border     canvas.Color
	Mask       canvas.Color
}

// DefaultPalette returns the default board colors.
func DefaultPalette() Palette {
	p, _ := (&Options{Background: DefaultBackground, Border: DefaultBorder, Mask: DefaultMask}).Palette()
	return p
}

// PaletteFromMeta reads the board colors from descriptor metadata. Missing
// or unreadable entries keep their default.
func PaletteFromMeta(m *board.Meta) Palette {
	p := DefaultPalette()
	for key, dst := range map[string]*canvas.Color{
		board.KeyBackgroundColor: &p.Background,
		board.KeyBorderColor:     &p.Border,
		board.KeyMaskColor:       &p.Mask,
	} {
		if v, ok := m.Get(key); ok {
			if c, err := canvas.ParseColor(v); err == nil {
				*dst = c
			}
		}
	}
	return p
}

// WriteMeta records the palette in descriptor metadata.
func (p Palette) WriteMeta(m *board.Meta) {
	m.Set(board.KeyBackgroundColor, p.Background.Hex())
	m.Set(board.KeyBorderColor, p.Border.Hex())
	m.Set(board.KeyMaskColor, p.Mask.Hex())
}

// Structure holds the structural layers of a board canvas. SimplePage and
// Gutters are empty for single boards.
type Structure struct {
	Background canvas.LayerID
	Content    canvas.LayerID
	Elements   canvas.LayerID
	SimplePage canvas.LayerID
	Gutters    canvas.LayerID
	Borders    canvas.LayerID
	Mask       canvas.LayerID
}

// BuildStructure creates the structural layers on an empty surface and
// paints their full-canvas fills.
func BuildStructure(s canvas.Surface, ct board.CellType, p Palette) (Structure, error) {
	var (
		st  Structure
		err error
	)
	w, h := s.Size()
	full := geom.XYWH(0, 0, float64(w), float64(h))

	if st.Background, err = s.AddPaintLayer(canvas.Root, board.LayerBackground, true); err != nil {
		return st, err
	}
	if err = s.Fill(st.Background, full, p.Background); err != nil {
		return st, err
	}
	if st.Content, err = s.Group(canvas.Root, board.GroupContent); err != nil {
		return st, err
	}
	if st.Elements, err = s.Group(canvas.Root, board.GroupElements); err != nil {
		return st, err
	}

	if ct == board.Spread {
		if st.SimplePage, err = s.Group(st.Elements, board.GroupSimplePage); err != nil {
			return st, err
		}
		if st.Gutters, err = s.AddPaintLayer(st.Elements, board.LayerGutters, true); err != nil {
			return st, err
		}
	}

	if st.Borders, err = s.AddPaintLayer(st.Elements, board.LayerBorders, true); err != nil {
		return st, err
	}
	if err = s.Fill(st.Borders, full, p.Border); err != nil {
		return st, err
	}
	if st.Mask, err = s.AddPaintLayer(st.Elements, board.LayerMask, true); err != nil {
		return st, err
	}
	if err = s.Fill(st.Mask, full, p.Mask); err != nil {
		return st, err
	}
	return st, nil
}

// FindStructure locates the structural layers of an existing board
// canvas. Spread layers that are missing are created.
func FindStructure(s canvas.Surface, ct board.CellType) (Structure, error) {
	var st Structure
	for _, l := range []struct {
		parent *canvas.LayerID
		name   string
		dst    *canvas.LayerID
	}{
		{nil, board.LayerBackground, &st.Background},
		{nil, board.GroupContent, &st.Content},
		{nil, board.GroupElements, &st.Elements},
		{&st.Elements, board.LayerBorders, &st.Borders},
		{&st.Elements, board.LayerMask, &st.Mask},
	} {
		parent := canvas.Root
		if l.parent != nil {
			parent = *l.parent
		}
		id, ok := s.Find(parent, l.name)
		if !ok {
			return st, errs.New(errs.ErrCodeLayerNotFound, "board canvas has no %q layer", l.name)
		}
		*l.dst = id
	}

	if ct != board.Spread {
		return st, nil
	}
	var err error
	if st.SimplePage, err = s.Group(st.Elements, board.GroupSimplePage); err != nil {
		return st, err
	}
	if id, ok := s.Find(st.Elements, board.LayerGutters); ok {
		st.Gutters = id
	} else if st.Gutters, err = s.AddPaintLayer(st.Elements, board.LayerGutters, true); err != nil {
		return st, err
	}
	return st, nil
}

// DecorateCell punches the cell's holes in Mask and Borders and, for
// spread boards, draws its gutter and hidden single-page strip.
func (st Structure) DecorateCell(s canvas.Surface, c board.Cell, ct board.CellType, margin float64, p Palette) error {
	r := c.Bounds()
	if err := s.Clear(st.Borders, r.Inset(margin)); err != nil {
		return err
	}
	if err := s.Clear(st.Mask, r); err != nil {
		return err
	}
	if ct != board.Spread {
		return nil
	}

	if err := s.Fill(st.Gutters, GutterRect(c), GutterColor); err != nil {
		return err
	}
	strip, err := s.AddPaintLayer(st.SimplePage, c.Name(), false)
	if err != nil {
		return err
	}
	if err := s.Fill(strip, SimplePageRect(c, margin), p.Border); err != nil {
		return err
	}
	return s.SetVisible(strip, false)
}

// GutterRect is the fold line of a spread cell: a thin bar at the middle,
// 90% of the cell height and vertically centered.
func GutterRect(c board.Cell) geom.Rect {
	r := c.Bounds()
	cw, ch := r.Width(), r.Height()
	gw := int(math.Max(GutterMinWidth, math.RoundToEven(cw/GutterWidthDiv)))
	mid := int(r.MinX + cw/2)
	gh := int(ch * GutterHeightRatio)
	gy := int((ch - float64(gh)) / 2)
	return geom.Rect{
		MinX: float64(int(float64(mid) - float64(gw)/2)),
		MinY: r.MinY + float64(gy),
		MaxX: float64(int(float64(mid) + float64(gw)/2)),
		MaxY: r.MinY + float64(gy+gh),
	}
}

// SimplePageRect is the strip that hides the fold when a spread cell holds
// a single portrait page. It is 2*margin wide, centered on the cell.
func SimplePageRect(c board.Cell, margin float64) geom.Rect {
	r := c.Bounds()
	mid := float64(int(r.MinX + r.Width()/2))
	return geom.Rect{MinX: mid - margin, MinY: r.MinY, MaxX: mid + margin, MaxY: r.MaxY}
}
