// Package window implements graphics windows: a canvas hosting a scene and
// its widgets, four border regions, and the compositing that produces the
// frames shown on a platform surface.
//
// A Window is owned by the UI goroutine. Its methods must be called there;
// input from the platform is posted to the UI goroutine before it touches
// any state.
package window

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"time"

	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/imagecodec"
	"github.com/1broseidon/splbe/internal/platform"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/render"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/widget"
)

// Options configure a new window.
type Options struct {
	ID     string
	Title  string
	Width  int
	Height int
	// Root is the window's root compound. Its subtree is mounted on the
	// canvas when the window is created.
	Root *scene.Object

	Backend  platform.Backend
	Fonts    *render.FontBook
	Theme    *widget.Theme
	Logger   *slog.Logger
	Interval time.Duration

	// Post runs fn on the UI goroutine.
	Post func(fn func()) error
	// Emit delivers an event to the client.
	Emit func(protocol.Event)
	// OnClose is called on the UI goroutine when the user closes the window.
	OnClose func(w *Window)
}

// Window is a top-level graphics window.
type Window struct {
	id     string
	title  string
	opts   Options
	logger *slog.Logger

	surface  platform.Surface
	canvas   *Canvas
	root     *scene.Object
	regions  [4]region
	renderer *render.Renderer
	theme    *widget.Theme

	visible   bool
	resizable bool
	closed    bool

	frame      *gg.Context
	surfW      int
	surfH      int
	scheduled  bool
	lastPaint  time.Time
	paintCount int

	input inputState
}

// New creates the window, mounts its root compound and shows it.
func New(opts Options) (*Window, error) {
	if opts.Root == nil || !opts.Root.IsCompound() {
		return nil, errors.New("window root must be a compound")
	}
	if err := imagecodec.CheckSize(max(opts.Width, 0), max(opts.Height, 0)); err != nil {
		return nil, fmt.Errorf("window %q: %w", opts.ID, err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Fonts == nil {
		opts.Fonts = render.NewFontBook(render.DefaultFont)
	}
	if opts.Theme == nil {
		opts.Theme = widget.DefaultTheme(opts.Fonts)
	}
	if opts.Post == nil {
		opts.Post = func(fn func()) error { fn(); return nil }
	}
	if opts.Emit == nil {
		opts.Emit = func(protocol.Event) {}
	}
	if opts.Title == "" {
		opts.Title = opts.ID
	}

	w := &Window{
		id:        opts.ID,
		title:     opts.Title,
		opts:      opts,
		logger:    opts.Logger.With("window", opts.ID),
		root:      opts.Root,
		renderer:  render.New(opts.Fonts, opts.Logger),
		theme:     opts.Theme,
		resizable: true,
	}
	w.canvas = newCanvas(w, opts.Width, opts.Height)

	lay := w.layout()
	surface, err := opts.Backend.NewSurface(platform.SurfaceOptions{
		Title:     w.title,
		Width:     lay.width,
		Height:    lay.height,
		Resizable: w.resizable,
	}, &sink{w: w})
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	w.surface = surface
	w.surfW, w.surfH = lay.width, lay.height

	w.root.SetHost(w.canvas)
	if err := w.SetVisible(true); err != nil {
		w.logger.Warn("failed to show window", "error", err)
	}
	return w, nil
}

// Of returns the window showing o, or nil when o is not attached.
func Of(o *scene.Object) *Window {
	for p := o; p != nil; p = p.Parent() {
		if p.IsCompound() {
			if c, ok := p.Host().(*Canvas); ok {
				return c.win
			}
			return nil
		}
	}
	return nil
}

// ID returns the client's id for the window.
func (w *Window) ID() string { return w.id }

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// Root returns the root compound.
func (w *Window) Root() *scene.Object { return w.root }

// Canvas returns the window's canvas.
func (w *Window) Canvas() *Canvas { return w.canvas }

// Surface returns the platform surface.
func (w *Window) Surface() platform.Surface { return w.surface }

// CanvasSize returns the size of the drawing area.
func (w *Window) CanvasSize() (width, height int) { return w.canvas.Size() }

// Size returns the size of the whole window, regions included.
func (w *Window) Size() (width, height int) {
	lay := w.layout()
	return lay.width, lay.height
}

// Visible reports whether the window is shown.
func (w *Window) Visible() bool { return w.visible }

// Resizable reports whether the user may resize the window.
func (w *Window) Resizable() bool { return w.resizable }

// Closed reports whether the window has been closed.
func (w *Window) Closed() bool { return w.closed }

// Renderer returns the renderer used for the window's scene.
func (w *Window) Renderer() *render.Renderer { return w.renderer }

func (w *Window) layout() layout {
	return arrange(w.canvas.width, w.canvas.height, &w.regions)
}

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) error {
	if w.closed {
		return nil
	}
	w.title = title
	return w.surface.SetTitle(title)
}

// SetResizable allows or forbids user resizing.
func (w *Window) SetResizable(resizable bool) error {
	if w.closed {
		return nil
	}
	w.resizable = resizable
	return w.surface.SetResizable(resizable)
}

// SetVisible shows or hides the window.
func (w *Window) SetVisible(visible bool) error {
	if w.closed {
		return nil
	}
	w.visible = visible
	if err := w.surface.SetVisible(visible); err != nil {
		return err
	}
	if visible {
		w.Invalidate()
	}
	return nil
}

// RequestFocus raises the window.
func (w *Window) RequestFocus() error {
	if w.closed {
		return nil
	}
	return w.surface.Raise()
}

// Draw paints o into the canvas's offscreen image, where it stays until
// Clear. Hidden objects are not drawn.
func (w *Window) Draw(o *scene.Object) error {
	if w.closed || !o.Visible() {
		return nil
	}
	err := w.canvas.draw(o)
	w.Invalidate()
	return err
}

// Clear erases the offscreen image and empties every region. Docked
// interactors return to the canvas if their subtree is attached.
func (w *Window) Clear() {
	if w.closed {
		return
	}
	w.canvas.clear()
	for r := range w.regions {
		items := w.regions[r].items
		w.regions[r].items = nil
		for _, o := range items {
			w.forget(o)
			o.SetDocked(false)
		}
	}
	w.fit()
	w.Invalidate()
}

// AddToRegion places o in region r. Interactors are docked, which moves
// their widget off the canvas; labels are shown as text. An object already
// in one of this window's regions is moved.
func (w *Window) AddToRegion(o *scene.Object, r Region) error {
	if w.closed {
		return nil
	}
	if !o.IsInteractor() && o.Kind() != scene.KindLabel {
		return fmt.Errorf("%s cannot be added to a region", o.Kind())
	}
	for i := range w.regions {
		w.regions[i].remove(o)
	}
	w.regions[r].items = append(w.regions[r].items, o)
	o.SetDocked(true)
	w.fit()
	w.Invalidate()
	return nil
}

// RemoveFromRegion takes o out of region r. It reports false if o was not
// there. An undocked interactor returns to the canvas if its subtree is
// attached.
func (w *Window) RemoveFromRegion(o *scene.Object, r Region) bool {
	if w.closed || !w.regions[r].remove(o) {
		return false
	}
	w.forget(o)
	o.SetDocked(false)
	w.fit()
	w.Invalidate()
	return true
}

// RegionOf returns the region holding o.
func (w *Window) RegionOf(o *scene.Object) (Region, bool) {
	for i := range w.regions {
		if w.regions[i].index(o) >= 0 {
			return Region(i), true
		}
	}
	return 0, false
}

// RegionItems returns the objects in region r in layout order.
func (w *Window) RegionItems(r Region) []*scene.Object {
	return append([]*scene.Object(nil), w.regions[r].items...)
}

// SetRegionAlignment changes how region r positions its contents.
func (w *Window) SetRegionAlignment(r Region, a Alignment) {
	if w.closed {
		return
	}
	w.regions[r].align = a
	w.Invalidate()
}

// Relayout recomputes the window size after an item in a region changed
// size or visibility.
func (w *Window) Relayout() {
	if w.closed {
		return
	}
	w.fit()
	w.Invalidate()
}

// fit resizes the surface to the current layout.
func (w *Window) fit() {
	lay := w.layout()
	if lay.width == w.surfW && lay.height == w.surfH {
		return
	}
	w.surfW, w.surfH = lay.width, lay.height
	if err := w.surface.Resize(lay.width, lay.height); err != nil {
		w.logger.Warn("failed to resize window", "error", err)
	}
}

// Close unmounts the scene, releases the surface and marks the window
// closed. Closing twice is a no-op.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.root.SetHost(nil)
	for r := range w.regions {
		items := w.regions[r].items
		w.regions[r].items = nil
		for _, o := range items {
			o.SetDocked(false)
		}
	}
	w.closed = true
	w.visible = false
	w.input = inputState{}
	if err := w.surface.Close(); err != nil {
		w.logger.Warn("failed to close surface", "error", err)
	}
}

// Invalidate schedules a repaint. Repaints are coalesced: at most one is
// pending per window, and they are spaced by the configured interval.
func (w *Window) Invalidate() {
	if w.closed || w.scheduled {
		return
	}
	w.scheduled = true
	delay := w.opts.Interval - time.Since(w.lastPaint)
	if delay <= 0 {
		w.post(w.flush)
		return
	}
	time.AfterFunc(delay, func() { w.post(w.flush) })
}

func (w *Window) post(fn func()) {
	if err := w.opts.Post(fn); err != nil {
		w.logger.Debug("dropped window task", "error", err)
	}
}

func (w *Window) flush() {
	w.scheduled = false
	if w.closed || !w.visible {
		return
	}
	if err := w.Repaint(); err != nil {
		w.logger.Warn("repaint failed", "error", err)
	}
}

// Repaint composites the window and presents the frame immediately.
func (w *Window) Repaint() error {
	if w.closed {
		return nil
	}
	img, err := w.Composite()
	w.lastPaint = time.Now()
	w.paintCount++
	if perr := w.surface.Present(img); perr != nil {
		return errors.Join(err, perr)
	}
	return err
}

// PaintCount returns how many frames have been presented.
func (w *Window) PaintCount() int { return w.paintCount }

// target is a widget placed in window coordinates.
type target struct {
	placed
	wdg widget.Widget
}

// targets returns the widgets of the window in paint order: canvas widgets
// in mount order, then region widgets.
func (w *Window) targets(lay layout) []target {
	var out []target
	for _, m := range w.canvas.mounts {
		wdg := widgetOf(m.obj)
		if wdg == nil || !showing(m.obj) {
			continue
		}
		ow, oh := m.obj.Size()
		out = append(out, target{
			placed: placed{obj: m.obj, x: lay.canvasX + m.x, y: lay.canvasY + m.y, w: ow, h: oh},
			wdg:    wdg,
		})
	}
	for _, p := range lay.items {
		if wdg := widgetOf(p.obj); wdg != nil {
			out = append(out, target{placed: p, wdg: wdg})
		}
	}
	return out
}

// showing reports whether o and all its ancestors are visible.
func showing(o *scene.Object) bool {
	for p := o; p != nil; p = p.Parent() {
		if !p.Visible() {
			return false
		}
	}
	return true
}

// Composite renders the window: background, offscreen image, scene, canvas
// widgets, region contents and finally open popups.
func (w *Window) Composite() (*image.RGBA, error) {
	lay := w.layout()
	if w.frame == nil {
		w.frame = gg.NewContext(lay.width, lay.height)
	} else if err := w.frame.Resize(lay.width, lay.height); err != nil {
		return nil, err
	}
	dc := w.frame
	dc.ClearWithColor(gg.FromColor(w.theme.Background))

	var errs []error
	dc.DrawImage(w.canvas.offscreen(), lay.canvasX, lay.canvasY)

	dc.Push()
	dc.ClipRect(lay.canvasX, lay.canvasY, lay.canvasW, lay.canvasH)
	dc.Translate(lay.canvasX, lay.canvasY)
	if err := w.renderer.Frame(dc, w.root); err != nil {
		errs = append(errs, err)
	}
	dc.Pop()

	targets := w.targets(lay)
	for _, t := range targets {
		dc.Push()
		dc.Translate(t.x, t.y)
		if err := t.wdg.Paint(dc, t.w, t.h); err != nil {
			errs = append(errs, err)
		}
		dc.Pop()
	}
	for _, p := range lay.items {
		if p.obj.Kind() == scene.KindLabel {
			if err := w.paintLabel(dc, p); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, t := range targets {
		pop, ok := t.wdg.(widget.Popup)
		if !ok || !pop.PopupOpen() {
			continue
		}
		dc.Push()
		dc.Translate(t.x, t.y)
		if err := pop.PaintPopup(dc, t.w, t.h); err != nil {
			errs = append(errs, err)
		}
		dc.Pop()
	}

	return toRGBA(dc.Image()), errors.Join(errs...)
}

func (w *Window) paintLabel(dc *gg.Context, p placed) error {
	face, err := w.renderer.Fonts().Face(p.obj.Font())
	if err != nil {
		return err
	}
	m := face.Metrics()
	dc.SetFont(face)
	dc.SetColor(p.obj.Color())
	dc.DrawString(p.obj.Text(), p.x, p.y+m.Ascent)
	return nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Rect, img, img.Bounds().Min, draw.Src)
	return out
}
