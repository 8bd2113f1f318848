package x11

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Handlers receive the input of one window. They run on the event loop
// goroutine.
type Handlers struct {
	Button    func(press bool, button, x, y int, state uint16)
	Motion    func(x, y int, state uint16)
	Key       func(press bool, sym xproto.Keysym, state uint16)
	Configure func(width, height int)
	Expose    func()
	Close     func()
}

const windowEvents = xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease

// Window is a top-level window whose contents are uploaded as images.
type Window struct {
	conn *Connection
	win  *xwindow.Window
	gc   xproto.Gcontext

	mu     sync.Mutex
	width  int
	height int
}

// NewWindow creates an unmapped top-level window.
func (c *Connection) NewWindow(title string, width, height int, h Handlers) (*Window, error) {
	width, height = max(width, 1), max(height, 1)

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("generate window id: %w", err)
	}
	// Value list order follows the bit positions of the mask.
	err = win.CreateChecked(c.Root, 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		c.XUtil.Screen().WhitePixel, windowEvents)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	gc, err := xproto.NewGcontextId(c.XUtil.Conn())
	if err != nil {
		win.Destroy()
		return nil, err
	}
	err = xproto.CreateGCChecked(c.XUtil.Conn(), gc, xproto.Drawable(win.Id),
		xproto.GcGraphicsExposures, []uint32{0}).Check()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("create gc: %w", err)
	}

	w := &Window{conn: c, win: win, gc: gc, width: width, height: height}
	if err := w.SetTitle(title); err != nil {
		w.Destroy()
		return nil, err
	}
	w.connect(h)
	return w, nil
}

func (w *Window) connect(h Handlers) {
	xu, id := w.conn.XUtil, w.win.Id

	if h.Button != nil {
		xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			h.Button(true, int(ev.Detail), int(ev.EventX), int(ev.EventY), ev.State)
		}).Connect(xu, id)
		xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
			h.Button(false, int(ev.Detail), int(ev.EventX), int(ev.EventY), ev.State)
		}).Connect(xu, id)
	}
	if h.Motion != nil {
		xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
			h.Motion(int(ev.EventX), int(ev.EventY), ev.State)
		}).Connect(xu, id)
	}
	if h.Key != nil {
		xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			h.Key(true, lookupKeysym(xu, ev.Detail, ev.State), ev.State)
		}).Connect(xu, id)
		xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
			h.Key(false, lookupKeysym(xu, ev.Detail, ev.State), ev.State)
		}).Connect(xu, id)
	}
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		width, height := int(ev.Width), int(ev.Height)
		w.mu.Lock()
		changed := width != w.width || height != w.height
		w.width, w.height = width, height
		w.mu.Unlock()
		if changed && h.Configure != nil {
			h.Configure(width, height)
		}
	}).Connect(xu, id)
	if h.Expose != nil {
		xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
			if ev.Count == 0 {
				h.Expose()
			}
		}).Connect(xu, id)
	}
	w.win.WMGracefulClose(func(*xwindow.Window) {
		if h.Close != nil {
			h.Close()
		}
	})
}

// lookupKeysym resolves a keycode with the shift and caps lock state.
func lookupKeysym(xu *xgbutil.XUtil, code xproto.Keycode, state uint16) xproto.Keysym {
	sym := keybind.KeysymGet(xu, code, 0)
	if state&xproto.ModMaskShift != 0 {
		if shifted := keybind.KeysymGet(xu, code, 1); shifted != 0 {
			sym = shifted
		}
	}
	if state&xproto.ModMaskLock != 0 && sym >= 'a' && sym <= 'z' {
		sym -= 'a' - 'A'
	}
	return sym
}

// ID returns the X window id.
func (w *Window) ID() xproto.Window { return w.win.Id }

// SetTitle sets both the ICCCM and EWMH window names.
func (w *Window) SetTitle(title string) error {
	if err := icccm.WmNameSet(w.conn.XUtil, w.win.Id, title); err != nil {
		return err
	}
	return ewmh.WmNameSet(w.conn.XUtil, w.win.Id, title)
}

// SetFixedSize pins the window to its current size, or lifts the limit.
func (w *Window) SetFixedSize(fixed bool) error {
	hints := &icccm.NormalHints{}
	if fixed {
		w.mu.Lock()
		width, height := uint(w.width), uint(w.height)
		w.mu.Unlock()
		hints.Flags = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		hints.MinWidth, hints.MaxWidth = width, width
		hints.MinHeight, hints.MaxHeight = height, height
	}
	return icccm.WmNormalHintsSet(w.conn.XUtil, w.win.Id, hints)
}

// Map shows the window.
func (w *Window) Map() { w.win.Map() }

// Unmap hides the window.
func (w *Window) Unmap() { w.win.Unmap() }

// Resize changes the window size.
func (w *Window) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	w.win.Resize(width, height)
}

// Raise asks the window manager to activate the window.
func (w *Window) Raise() error {
	return ewmh.ActiveWindowReq(w.conn.XUtil, w.win.Id)
}

// Put uploads img to the window's top-left corner as a ZPixmap in the
// server's 32 bits per pixel BGRX layout, split into rows that fit the
// maximum request length.
func (w *Window) Put(img image.Image) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}

	conn := w.conn.XUtil.Conn()
	depth := w.conn.XUtil.Screen().RootDepth
	maxBytes := int(xproto.Setup(conn).MaximumRequestLength)*4 - 28
	rows := max(maxBytes/(width*4), 1)

	buf := make([]byte, 0, rows*width*4)
	for y0 := 0; y0 < height; y0 += rows {
		n := min(rows, height-y0)
		buf = buf[:0]
		for y := y0; y < y0+n; y++ {
			line := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
			for x := 0; x < len(line); x += 4 {
				buf = append(buf, line[x+2], line[x+1], line[x], 0)
			}
		}
		err := xproto.PutImageChecked(conn, xproto.ImageFormatZPixmap, xproto.Drawable(w.win.Id), w.gc,
			uint16(width), uint16(n), 0, int16(y0), 0, depth, buf).Check()
		if err != nil {
			return fmt.Errorf("put image: %w", err)
		}
	}
	return nil
}

// Destroy releases the window and detaches its handlers.
func (w *Window) Destroy() {
	xevent.Detach(w.conn.XUtil, w.win.Id)
	xproto.FreeGC(w.conn.XUtil.Conn(), w.gc)
	w.win.Destroy()
}
