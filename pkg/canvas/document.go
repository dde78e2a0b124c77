package canvas

import (
	"github.com/google/uuid"

	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/fonts"
	"github.com/matzehuels/openboard/pkg/geom"
)

// Paint operations.
const (
	OpFill  = "fill"
	OpClear = "clear"
)

// PaintOp is one drawing step of a paint layer. Ops are replayed in order.
type PaintOp struct {
	Op    string    `json:"op"`
	Rect  geom.Rect `json:"rect"`
	Color Color     `json:"color"`
}

// Layer is a node of the document tree.
type Layer struct {
	ID      LayerID `json:"id"`
	Name    string  `json:"name"`
	Kind    Kind    `json:"kind"`
	Visible bool    `json:"visible"`

	// Paint layers.
	Structural bool      `json:"structural,omitempty"`
	Ops        []PaintOp `json:"ops,omitempty"`

	// Image and text layers.
	Rect   geom.Rect  `json:"rect"`
	Source string     `json:"source,omitempty"`
	Clip   *geom.Rect `json:"clip,omitempty"`
	Text   string     `json:"text,omitempty"`
	Size   float64    `json:"size,omitempty"`
	Color  Color      `json:"color"`

	Children []*Layer `json:"children,omitempty"`
}

// Document is an in-memory layer tree. It implements [Surface].
// A Document is not safe for concurrent use.
type Document struct {
	Name   string   `json:"name"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	DPI    float64  `json:"dpi"`
	Layers []*Layer `json:"layers"`
	Guides []Guide  `json:"guides,omitempty"`

	index  map[LayerID]*Layer
	parent map[LayerID]LayerID
}

// New creates an empty document.
func New(name string, w, h int, dpi float64) *Document {
	d := &Document{Name: name, Width: w, Height: h, DPI: dpi}
	d.reindex()
	return d
}

func (d *Document) reindex() {
	d.index = make(map[LayerID]*Layer)
	d.parent = make(map[LayerID]LayerID)
	var walk func(parent LayerID, layers []*Layer)
	walk = func(parent LayerID, layers []*Layer) {
		for _, l := range layers {
			d.index[l.ID] = l
			d.parent[l.ID] = parent
			walk(l.ID, l.Children)
		}
	}
	walk(Root, d.Layers)
}

func (d *Document) layer(id LayerID) (*Layer, error) {
	if d.index == nil {
		d.reindex()
	}
	l, ok := d.index[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeLayerNotFound, "layer %q not found", id)
	}
	return l, nil
}

// childList returns a pointer to the child slice of parent so callers can
// append to it.
func (d *Document) childList(parent LayerID) (*[]*Layer, error) {
	if parent == Root {
		return &d.Layers, nil
	}
	p, err := d.layer(parent)
	if err != nil {
		return nil, err
	}
	if p.Kind != KindGroup {
		return nil, errs.New(errs.ErrCodeInvalidInput, "layer %q is not a group", p.Name)
	}
	return &p.Children, nil
}

func (d *Document) add(parent LayerID, l *Layer) (LayerID, error) {
	list, err := d.childList(parent)
	if err != nil {
		return "", err
	}
	l.ID = LayerID(uuid.NewString())
	*list = append(*list, l)
	if d.index == nil {
		d.reindex()
	}
	d.index[l.ID] = l
	d.parent[l.ID] = parent
	return l.ID, nil
}

// Size implements [Surface].
func (d *Document) Size() (int, int) { return d.Width, d.Height }

// Resize implements [Surface].
func (d *Document) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "invalid canvas size %dx%d", w, h)
	}
	d.Width, d.Height = w, h
	return nil
}

// Group implements [Surface].
func (d *Document) Group(parent LayerID, name string) (LayerID, error) {
	list, err := d.childList(parent)
	if err != nil {
		return "", err
	}
	for _, l := range *list {
		if l.Kind == KindGroup && l.Name == name {
			return l.ID, nil
		}
	}
	return d.add(parent, &Layer{Name: name, Kind: KindGroup, Visible: true})
}

// Find implements [Surface].
func (d *Document) Find(parent LayerID, name string) (LayerID, bool) {
	list, err := d.childList(parent)
	if err != nil {
		return "", false
	}
	for _, l := range *list {
		if l.Name == name {
			return l.ID, true
		}
	}
	return "", false
}

// Children implements [Surface].
func (d *Document) Children(parent LayerID) ([]LayerInfo, error) {
	list, err := d.childList(parent)
	if err != nil {
		return nil, err
	}
	out := make([]LayerInfo, 0, len(*list))
	for _, l := range *list {
		out = append(out, LayerInfo{ID: l.ID, Name: l.Name, Kind: l.Kind, Visible: l.Visible, Bounds: d.bounds(l)})
	}
	return out, nil
}

// AddPaintLayer implements [Surface].
func (d *Document) AddPaintLayer(parent LayerID, name string, structural bool) (LayerID, error) {
	return d.add(parent, &Layer{Name: name, Kind: KindPaint, Visible: true, Structural: structural})
}

// Fill implements [Surface].
func (d *Document) Fill(id LayerID, r geom.Rect, c Color) error {
	return d.paint(id, PaintOp{Op: OpFill, Rect: r, Color: c})
}

// Clear implements [Surface].
func (d *Document) Clear(id LayerID, r geom.Rect) error {
	return d.paint(id, PaintOp{Op: OpClear, Rect: r})
}

func (d *Document) paint(id LayerID, op PaintOp) error {
	l, err := d.layer(id)
	if err != nil {
		return err
	}
	if l.Kind != KindPaint {
		return errs.New(errs.ErrCodeInvalidInput, "layer %q is not a paint layer", l.Name)
	}
	if op.Rect.Empty() {
		return nil
	}
	l.Ops = append(l.Ops, op)
	return nil
}

// PlaceImage implements [Surface].
func (d *Document) PlaceImage(parent LayerID, spec ImageSpec) (LayerID, error) {
	clip := spec.Clip
	return d.add(parent, &Layer{
		Name:    spec.Name,
		Kind:    KindImage,
		Visible: true,
		Rect:    spec.Rect,
		Source:  spec.Source,
		Clip:    &clip,
	})
}

// AddText implements [Surface].
func (d *Document) AddText(parent LayerID, spec TextSpec) (LayerID, error) {
	w, h := fonts.Measure(spec.Text, spec.Size)
	return d.add(parent, &Layer{
		Name:    spec.Name,
		Kind:    KindText,
		Visible: true,
		Rect:    geom.XYWH(spec.X, spec.Y, w, h),
		Text:    spec.Text,
		Size:    spec.Size,
		Color:   spec.Color,
	})
}

// Bounds implements [Surface].
func (d *Document) Bounds(id LayerID) (geom.Rect, error) {
	l, err := d.layer(id)
	if err != nil {
		return geom.Rect{}, err
	}
	return d.bounds(l), nil
}

func (d *Document) bounds(l *Layer) geom.Rect {
	switch l.Kind {
	case KindGroup:
		var out geom.Rect
		first := true
		for _, c := range l.Children {
			b := d.bounds(c)
			if b.Empty() {
				continue
			}
			if first {
				out, first = b, false
				continue
			}
			out = out.Union(b)
		}
		return out
	case KindPaint:
		if l.Structural {
			return geom.XYWH(0, 0, float64(d.Width), float64(d.Height))
		}
		var out geom.Rect
		first := true
		for _, op := range l.Ops {
			if op.Op != OpFill {
				continue
			}
			if first {
				out, first = op.Rect, false
				continue
			}
			out = out.Union(op.Rect)
		}
		return out
	default:
		return l.Rect
	}
}

// Visible implements [Surface].
func (d *Document) Visible(id LayerID) (bool, error) {
	l, err := d.layer(id)
	if err != nil {
		return false, err
	}
	return l.Visible, nil
}

// SetVisible implements [Surface].
func (d *Document) SetVisible(id LayerID, visible bool) error {
	l, err := d.layer(id)
	if err != nil {
		return err
	}
	l.Visible = visible
	return nil
}

// Move implements [Surface].
func (d *Document) Move(id LayerID, dx, dy float64) error {
	l, err := d.layer(id)
	if err != nil {
		return err
	}
	translate(l, dx, dy)
	return nil
}

func translate(l *Layer, dx, dy float64) {
	l.Rect = l.Rect.Translate(dx, dy)
	if l.Clip != nil {
		c := l.Clip.Translate(dx, dy)
		l.Clip = &c
	}
	for i := range l.Ops {
		l.Ops[i].Rect = l.Ops[i].Rect.Translate(dx, dy)
	}
	for _, c := range l.Children {
		translate(c, dx, dy)
	}
}

// Remove implements [Surface].
func (d *Document) Remove(id LayerID) error {
	if _, err := d.layer(id); err != nil {
		return err
	}
	list, err := d.childList(d.parent[id])
	if err != nil {
		return err
	}
	for i, l := range *list {
		if l.ID == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
	d.reindex()
	return nil
}

// AddGuide implements [Surface].
func (d *Document) AddGuide(o GuideOrientation, position float64) error {
	d.Guides = append(d.Guides, Guide{Orientation: o, Position: position})
	return nil
}

// Layer returns the layer with the given id.
func (d *Document) Layer(id LayerID) (*Layer, bool) {
	l, err := d.layer(id)
	return l, err == nil
}

// Snapshot implements [Snapshotter]. Layer ids survive a restore.
func (d *Document) Snapshot() func() {
	w, h := d.Width, d.Height
	layers := cloneLayers(d.Layers)
	guides := append([]Guide(nil), d.Guides...)
	return func() {
		d.Width, d.Height = w, h
		d.Layers = cloneLayers(layers)
		d.Guides = append([]Guide(nil), guides...)
		d.reindex()
	}
}

func cloneLayers(layers []*Layer) []*Layer {
	if layers == nil {
		return nil
	}
	out := make([]*Layer, len(layers))
	for i, l := range layers {
		c := *l
		c.Ops = append([]PaintOp(nil), l.Ops...)
		if l.Clip != nil {
			clip := *l.Clip
			c.Clip = &clip
		}
		c.Children = cloneLayers(l.Children)
		out[i] = &c
	}
	return out
}

var (
	_ Surface     = (*Document)(nil)
	_ Snapshotter = (*Document)(nil)
)

// Lookup follows a path of child names from the root.
func Lookup(s Surface, path ...string) (LayerID, bool) {
	id := Root
	for _, name := range path {
		next, ok := s.Find(id, name)
		if !ok {
			return "", false
		}
		id = next
	}
	return id, true
}
