package canvas

import (
	"image"
	"image/color"
	"io"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/matzehuels/openboard/pkg/fonts"
	"github.com/matzehuels/openboard/pkg/geom"
)

// RenderOption configures RenderPNG and Render.
type RenderOption func(*renderer)

// WithGuides draws guide lines on top of the document.
func WithGuides(show bool) RenderOption {
	return func(r *renderer) { r.guides = show }
}

// WithRenderLogger sets the logger used to report unreadable images.
func WithRenderLogger(l *log.Logger) RenderOption {
	return func(r *renderer) { r.logger = l }
}

var (
	guideColor       = color.RGBA{0, 200, 255, 200}
	placeholderColor = color.RGBA{220, 220, 220, 255}
)

type renderer struct {
	guides bool
	logger *log.Logger
	images map[string]image.Image
}

// RenderPNG rasterizes visible layers of d and writes a PNG to w.
// Images that cannot be read are drawn as grey placeholders.
func RenderPNG(d *Document, w io.Writer, opts ...RenderOption) error {
	dc := render(d, opts...)
	return dc.EncodePNG(w)
}

// Render rasterizes visible layers of d.
func Render(d *Document, opts ...RenderOption) image.Image {
	return render(d, opts...).Image()
}

func render(d *Document, opts ...RenderOption) *gg.Context {
	r := &renderer{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		images: make(map[string]image.Image),
	}
	for _, opt := range opts {
		opt(r)
	}

	dc := gg.NewContext(d.Width, d.Height)
	for _, l := range d.Layers {
		r.drawLayer(dc, d, l)
	}
	if r.guides {
		r.drawGuides(dc, d)
	}
	return dc
}

func (r *renderer) drawLayer(dc *gg.Context, d *Document, l *Layer) {
	if !l.Visible {
		return
	}
	switch l.Kind {
	case KindGroup:
		for _, c := range l.Children {
			r.drawLayer(dc, d, c)
		}
	case KindPaint:
		dc.DrawImage(r.paintLayer(d, l), 0, 0)
	case KindImage:
		r.drawImage(dc, l)
	case KindText:
		r.drawText(dc, l)
	}
}

// paintLayer replays the layer's ops on its own transparent buffer so a
// clear only erases this layer.
func (r *renderer) paintLayer(d *Document, l *Layer) image.Image {
	buf := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	lc := gg.NewContextForRGBA(buf)
	for _, op := range l.Ops {
		switch op.Op {
		case OpFill:
			lc.SetRGB255(int(op.Color.R), int(op.Color.G), int(op.Color.B))
			lc.DrawRectangle(op.Rect.MinX, op.Rect.MinY, op.Rect.Width(), op.Rect.Height())
			lc.Fill()
		case OpClear:
			draw.Draw(buf, toImageRect(op.Rect), image.Transparent, image.Point{}, draw.Src)
		}
	}
	return buf
}

func (r *renderer) drawImage(dc *gg.Context, l *Layer) {
	w, h := int(l.Rect.Width()), int(l.Rect.Height())
	if w < 1 || h < 1 {
		return
	}

	dc.Push()
	defer dc.Pop()
	if l.Clip != nil {
		dc.DrawRectangle(l.Clip.MinX, l.Clip.MinY, l.Clip.Width(), l.Clip.Height())
		dc.Clip()
		defer dc.ResetClip()
	}

	src, err := r.load(l.Source)
	if err != nil {
		r.logger.Warn("image unreadable, drawing placeholder", "layer", l.Name, "source", l.Source, "err", err)
		dc.SetColor(placeholderColor)
		dc.DrawRectangle(l.Rect.MinX, l.Rect.MinY, l.Rect.Width(), l.Rect.Height())
		dc.Fill()
		return
	}
	dc.DrawImage(imaging.Resize(src, w, h, imaging.Lanczos), int(l.Rect.MinX), int(l.Rect.MinY))
}

func (r *renderer) load(path string) (image.Image, error) {
	if img, ok := r.images[path]; ok {
		return img, nil
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	r.images[path] = img
	return img, nil
}

func (r *renderer) drawText(dc *gg.Context, l *Layer) {
	face, err := fonts.Face(fonts.Regular, l.Size)
	if err != nil {
		r.logger.Warn("text layer skipped", "layer", l.Name, "err", err)
		return
	}
	dc.SetFontFace(face)
	dc.SetRGB255(int(l.Color.R), int(l.Color.G), int(l.Color.B))
	dc.DrawStringAnchored(l.Text, l.Rect.MinX, l.Rect.MinY, 0, 1)
}

func (r *renderer) drawGuides(dc *gg.Context, d *Document) {
	dc.SetColor(guideColor)
	dc.SetLineWidth(1)
	for _, g := range d.Guides {
		if g.Orientation == Vertical {
			dc.DrawLine(g.Position, 0, g.Position, float64(d.Height))
		} else {
			dc.DrawLine(0, g.Position, float64(d.Width), g.Position)
		}
		dc.Stroke()
	}
}

func toImageRect(r geom.Rect) image.Rectangle {
	return image.Rect(int(r.MinX), int(r.MinY), int(r.MaxX), int(r.MaxY))
}
