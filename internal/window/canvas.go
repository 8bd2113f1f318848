package window

import (
	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/widget"
)

// Canvas is the drawing area of a window. It hosts the widgets of the
// interactors in the window's scene and keeps the offscreen image that
// GWindow.draw paints into.
type Canvas struct {
	win    *Window
	width  int
	height int

	mounts []*mount

	off    *gg.Context
	offBuf *gg.ImageBuf
}

var _ scene.Host = (*Canvas)(nil)

// mount is a widget shown on the canvas at a canvas position.
type mount struct {
	obj  *scene.Object
	x, y float64
}

func newCanvas(win *Window, width, height int) *Canvas {
	c := &Canvas{win: win, width: max(width, 0), height: max(height, 0)}
	c.off = gg.NewContext(max(c.width, 1), max(c.height, 1))
	c.off.ClearWithColor(gg.White)
	return c
}

// Window returns the window the canvas belongs to.
func (c *Canvas) Window() *Window { return c.win }

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// Mount shows o's widget at canvas position (x, y).
func (c *Canvas) Mount(o *scene.Object, x, y float64) {
	if m := c.find(o); m != nil {
		c.win.logger.Warn("interactor mounted twice", "window", c.win.id)
		m.x, m.y = x, y
		return
	}
	c.mounts = append(c.mounts, &mount{obj: o, x: x, y: y})
	c.win.Invalidate()
}

// Unmount removes o's widget from the canvas.
func (c *Canvas) Unmount(o *scene.Object) {
	for i, m := range c.mounts {
		if m.obj == o {
			c.mounts = append(c.mounts[:i], c.mounts[i+1:]...)
			c.win.forget(o)
			c.win.Invalidate()
			return
		}
	}
}

// Relocate moves a mounted widget.
func (c *Canvas) Relocate(o *scene.Object, x, y float64) {
	if m := c.find(o); m != nil {
		m.x, m.y = x, y
		c.win.Invalidate()
	}
}

func (c *Canvas) find(o *scene.Object) *mount {
	for _, m := range c.mounts {
		if m.obj == o {
			return m
		}
	}
	return nil
}

// Mounted reports whether o's widget is on the canvas.
func (c *Canvas) Mounted(o *scene.Object) bool { return c.find(o) != nil }

// Widgets returns the mounted interactors in mount order.
func (c *Canvas) Widgets() []*scene.Object {
	out := make([]*scene.Object, len(c.mounts))
	for i, m := range c.mounts {
		out[i] = m.obj
	}
	return out
}

// resize changes the canvas size, growing the offscreen image when needed
// and keeping what was drawn.
func (c *Canvas) resize(width, height int) {
	c.width, c.height = max(width, 0), max(height, 0)
	if c.width <= c.off.Width() && c.height <= c.off.Height() {
		return
	}
	old := c.offscreen()
	c.off = gg.NewContext(max(c.width, c.off.Width()), max(c.height, c.off.Height()))
	c.off.ClearWithColor(gg.White)
	c.off.DrawImage(old, 0, 0)
	c.offBuf = nil
}

// clear erases the offscreen image.
func (c *Canvas) clear() {
	c.off.ClearWithColor(gg.White)
	c.offBuf = nil
}

// draw paints o into the offscreen image at its own location.
func (c *Canvas) draw(o *scene.Object) error {
	c.offBuf = nil
	return c.win.renderer.Draw(c.off, o)
}

func (c *Canvas) offscreen() *gg.ImageBuf {
	if c.offBuf == nil {
		c.offBuf = gg.ImageBufFromImage(c.off.Image())
	}
	return c.offBuf
}

// widgetOf returns the paintable widget of an interactor, or nil.
func widgetOf(o *scene.Object) widget.Widget {
	w, _ := o.Widget().(widget.Widget)
	return w
}
