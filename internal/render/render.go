// Package render rasterizes scene objects with gogpu/gg.
package render

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/scene"
)

// kappa is the cubic Bezier control distance for a quarter circle.
const kappa = 0.5522847498307936

// Renderer draws scene objects onto gg contexts. It is used only from the UI
// goroutine.
type Renderer struct {
	fonts  *FontBook
	logger *slog.Logger

	images map[image.Image]*gg.ImageBuf
	seen   map[image.Image]bool
}

// New returns a Renderer that resolves label fonts through fonts.
func New(fonts *FontBook, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if fonts == nil {
		fonts = NewFontBook(DefaultFont)
	}
	return &Renderer{
		fonts:  fonts,
		logger: logger,
		images: make(map[image.Image]*gg.ImageBuf),
		seen:   make(map[image.Image]bool),
	}
}

// Fonts returns the renderer's font book.
func (r *Renderer) Fonts() *FontBook { return r.fonts }

// MeasureLabel returns the metrics of text set in the font described by spec.
func (r *Renderer) MeasureLabel(text, spec string) (scene.LabelMetrics, error) {
	face, err := r.fonts.Face(spec)
	if err != nil {
		return scene.LabelMetrics{}, err
	}
	m := face.Metrics()
	return scene.LabelMetrics{Ascent: m.Ascent, Descent: m.Descent, Width: face.Advance(text)}, nil
}

// ToGG converts a scene transform to gg's row-major layout.
func ToGG(m scene.Matrix) gg.Matrix {
	return gg.Matrix{A: m.A, B: m.C, C: m.E, D: m.B, E: m.D, F: m.F}
}

// Frame draws root and its subtree with the context's current transform as
// the canvas origin. Interactors are skipped; their widgets are painted by
// the canvas. Cached image buffers not used by this frame are released.
func (r *Renderer) Frame(dc *gg.Context, root *scene.Object) error {
	clear(r.seen)
	err := r.Draw(dc, root)
	for img := range r.images {
		if !r.seen[img] {
			delete(r.images, img)
		}
	}
	return err
}

// Draw paints o and its descendants. Drawing continues past failures; the
// errors are joined.
func (r *Renderer) Draw(dc *gg.Context, o *scene.Object) error {
	if o == nil || !o.Visible() || o.IsInteractor() {
		return nil
	}
	dc.Push()
	defer dc.Pop()
	dc.Transform(ToGG(o.Transform()))

	if o.IsCompound() {
		var errs []error
		for _, c := range o.Children() {
			if err := r.Draw(dc, c); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return r.drawLocal(dc, o)
}

func (r *Renderer) drawLocal(dc *gg.Context, o *scene.Object) error {
	dc.SetLineWidth(o.LineWidth())
	w, h := o.Size()

	switch o.Kind() {
	case scene.KindRect:
		dc.DrawRectangle(0, 0, w, h)
		return r.paint(dc, o)
	case scene.KindRoundRect:
		roundRectPath(dc, w, h, o.Corner()/2)
		return r.paint(dc, o)
	case scene.Kind3DRect:
		return r.draw3D(dc, o, w, h)
	case scene.KindOval:
		dc.DrawEllipse(w/2, h/2, w/2, h/2)
		return r.paint(dc, o)
	case scene.KindLine:
		x1, y1 := o.Location()
		x2, y2 := o.EndPoint()
		dc.MoveTo(0, 0)
		dc.LineTo(x2-x1, y2-y1)
		dc.SetColor(strokeColor(o))
		return dc.Stroke()
	case scene.KindPolygon:
		pts := o.Vertices()
		if len(pts) < 2 {
			return nil
		}
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		return r.paint(dc, o)
	case scene.KindArc:
		start, sweep := o.ArcAngles()
		if o.Filled() {
			dc.MoveTo(w/2, h/2)
			arcPath(dc, w, h, start, sweep, false)
			dc.ClosePath()
			return r.paint(dc, o)
		}
		arcPath(dc, w, h, start, sweep, true)
		dc.SetColor(strokeColor(o))
		return dc.Stroke()
	case scene.KindLabel:
		return r.drawLabel(dc, o)
	case scene.KindImage:
		return r.drawImage(dc, o.Image(), w, h)
	}
	return nil
}

// paint fills the current path if o is filled, then strokes it.
func (r *Renderer) paint(dc *gg.Context, o *scene.Object) error {
	if o.Filled() {
		dc.SetColor(fillColor(o))
		if err := dc.FillPreserve(); err != nil {
			dc.ClearPath()
			return err
		}
	}
	dc.SetColor(strokeColor(o))
	return dc.Stroke()
}

func (r *Renderer) draw3D(dc *gg.Context, o *scene.Object, w, h float64) error {
	if o.Filled() {
		dc.DrawRectangle(0, 0, w, h)
		dc.SetColor(fillColor(o))
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	base := strokeColor(o)
	light, dark := brighter(base), darker(base)
	if !o.Raised() {
		light, dark = dark, light
	}
	dc.MoveTo(0, h)
	dc.LineTo(0, 0)
	dc.LineTo(w, 0)
	dc.SetColor(light)
	if err := dc.Stroke(); err != nil {
		return err
	}
	dc.MoveTo(w, 0)
	dc.LineTo(w, h)
	dc.LineTo(0, h)
	dc.SetColor(dark)
	return dc.Stroke()
}

// drawLabel places the baseline at the label's origin. Text is not rotated
// or scaled with the object; only its anchor follows the transform.
func (r *Renderer) drawLabel(dc *gg.Context, o *scene.Object) error {
	face, err := r.fonts.Face(o.Font())
	if err != nil {
		return err
	}
	x, y := dc.TransformPoint(0, 0)
	dc.SetFont(face)
	dc.SetColor(strokeColor(o))
	dc.DrawString(o.Text(), x, y)
	return nil
}

func (r *Renderer) drawImage(dc *gg.Context, img image.Image, w, h float64) error {
	if img == nil {
		return nil
	}
	buf, ok := r.images[img]
	if !ok {
		buf = gg.ImageBufFromImage(img)
		r.images[img] = buf
	}
	r.seen[img] = true
	dc.DrawImageEx(buf, gg.DrawImageOptions{
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
	})
	return nil
}

func strokeColor(o *scene.Object) color.Color {
	if c := o.Color(); c != nil {
		return c
	}
	return color.Black
}

func fillColor(o *scene.Object) color.Color {
	if c := o.FillColor(); c != nil {
		return c
	}
	return color.Black
}

// roundRectPath builds a rounded rectangle out of transformed path segments,
// so the corners follow rotation and scale.
func roundRectPath(dc *gg.Context, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		dc.DrawRectangle(0, 0, w, h)
		return
	}
	k := r * kappa
	dc.MoveTo(r, 0)
	dc.LineTo(w-r, 0)
	dc.CubicTo(w-r+k, 0, w, r-k, w, r)
	dc.LineTo(w, h-r)
	dc.CubicTo(w, h-r+k, w-r+k, h, w-r, h)
	dc.LineTo(r, h)
	dc.CubicTo(r-k, h, 0, h-r+k, 0, h-r)
	dc.LineTo(0, r)
	dc.CubicTo(0, r-k, r-k, 0, r, 0)
	dc.ClosePath()
}

// arcPath appends an elliptical arc inscribed in the w by h frame. Angles
// are degrees, counterclockwise on screen from the positive x axis.
func arcPath(dc *gg.Context, w, h, start, sweep float64, move bool) {
	rx, ry := w/2, h/2
	cx, cy := rx, ry
	if sweep > 360 {
		sweep = 360
	} else if sweep < -360 {
		sweep = -360
	}
	segs := int(math.Ceil(math.Abs(sweep) / 90))
	if segs == 0 {
		segs = 1
	}
	step := sweep / float64(segs) * math.Pi / 180
	a := start * math.Pi / 180

	// Screen y grows downward, so the y component is negated.
	point := func(t float64) (float64, float64) {
		return cx + rx*math.Cos(t), cy - ry*math.Sin(t)
	}
	x0, y0 := point(a)
	if move {
		dc.MoveTo(x0, y0)
	} else {
		dc.LineTo(x0, y0)
	}
	alpha := 4.0 / 3.0 * math.Tan(step/4)
	for i := 0; i < segs; i++ {
		a1 := a + float64(i)*step
		a2 := a1 + step
		x1, y1 := point(a1)
		x2, y2 := point(a2)
		c1x := x1 - alpha*rx*math.Sin(a1)
		c1y := y1 - alpha*ry*math.Cos(a1)
		c2x := x2 + alpha*rx*math.Sin(a2)
		c2y := y2 + alpha*ry*math.Cos(a2)
		dc.CubicTo(c1x, c1y, c2x, c2y, x2, y2)
	}
}
