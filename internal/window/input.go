package window

import (
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/widget"
)

// inputState tracks focus and pointer capture.
type inputState struct {
	// focus is the interactor receiving keys; nil means the canvas.
	focus *scene.Object
	// capture receives every pointer event from a press to its release.
	capture *scene.Object
	// canvasDown is set while a press that started on the canvas is held.
	canvasDown bool
	dragged    bool
}

// sink forwards platform input to the UI goroutine.
type sink struct{ w *Window }

func (s *sink) Mouse(kind protocol.EventType, x, y float64, modifiers int) {
	s.w.post(func() { s.w.HandleMouse(kind, x, y, modifiers) })
}

func (s *sink) Key(kind protocol.EventType, char rune, code int, modifiers int) {
	s.w.post(func() { s.w.HandleKey(kind, char, code, modifiers) })
}

func (s *sink) Resized(width, height int) {
	s.w.post(func() { s.w.HandleResize(width, height) })
}

func (s *sink) CloseRequested() {
	s.w.post(func() {
		if s.w.closed {
			return
		}
		if s.w.opts.OnClose != nil {
			s.w.opts.OnClose(s.w)
			return
		}
		s.w.Close()
	})
}

func (s *sink) Exposed() {
	s.w.post(s.w.Invalidate)
}

// forget drops focus and capture held by o.
func (w *Window) forget(o *scene.Object) {
	if w.input.focus == o {
		w.setFocus(nil)
	}
	if w.input.capture == o {
		w.input.capture = nil
	}
}

func (w *Window) setFocus(o *scene.Object) {
	if w.input.focus == o {
		return
	}
	if old := w.input.focus; old != nil {
		if wdg := widgetOf(old); wdg != nil {
			wdg.SetFocused(false)
		}
		w.Invalidate()
	}
	w.input.focus = o
	if o != nil {
		if wdg := widgetOf(o); wdg != nil {
			wdg.SetFocused(true)
		}
		w.Invalidate()
	}
}

// Focus returns the interactor holding keyboard focus, or nil when keys go
// to the canvas.
func (w *Window) Focus() *scene.Object { return w.input.focus }

func (w *Window) deliver(t target, kind protocol.EventType, x, y float64, mods int) {
	ev := widget.Mouse{Type: kind, X: x - t.x, Y: y - t.y, W: t.w, H: t.h, Modifiers: mods}
	if t.wdg.Mouse(ev) {
		w.Invalidate()
	}
}

func findTarget(targets []target, o *scene.Object) (target, bool) {
	for _, t := range targets {
		if t.obj == o {
			return t, true
		}
	}
	return target{}, false
}

// popupTarget returns the open popup under (x, y).
func popupTarget(targets []target, x, y float64) (target, bool) {
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		pop, ok := t.wdg.(widget.Popup)
		if !ok || !pop.PopupOpen() {
			continue
		}
		area := placed{x: t.x, y: t.y + t.h, w: t.w, h: pop.PopupHeight()}
		if area.contains(x, y) {
			return t, true
		}
	}
	return target{}, false
}

// HandleMouse routes a pointer event in window coordinates. Captured
// widgets get everything until release; then open popups, widgets from the
// top down, and finally the canvas, which reports the event to the client.
func (w *Window) HandleMouse(kind protocol.EventType, x, y float64, mods int) {
	if w.closed {
		return
	}
	lay := w.layout()
	targets := w.targets(lay)

	if c := w.input.capture; c != nil {
		if t, ok := findTarget(targets, c); ok {
			w.deliver(t, kind, x, y, mods)
		}
		if kind == protocol.MouseReleased {
			w.input.capture = nil
		}
		return
	}
	if w.input.canvasDown {
		w.canvasMouse(lay, kind, x, y, mods)
		return
	}

	if t, ok := popupTarget(targets, x, y); ok {
		w.deliver(t, kind, x, y, mods)
		return
	}
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		if !t.contains(x, y) {
			continue
		}
		if kind == protocol.MousePressed {
			if t.wdg.Focusable() {
				w.setFocus(t.obj)
			} else {
				w.setFocus(nil)
			}
			w.input.capture = t.obj
		}
		w.deliver(t, kind, x, y, mods)
		return
	}
	if lay.inCanvas(x, y) {
		w.canvasMouse(lay, kind, x, y, mods)
	} else if kind == protocol.MousePressed {
		w.setFocus(nil)
	}
}

// canvasMouse reports a pointer event on the canvas to the client. A
// release that ends a press without a drag also reports a click.
func (w *Window) canvasMouse(lay layout, kind protocol.EventType, x, y float64, mods int) {
	cx, cy := x-lay.canvasX, y-lay.canvasY
	switch kind {
	case protocol.MousePressed:
		w.setFocus(nil)
		w.input.canvasDown = true
		w.input.dragged = false
	case protocol.MouseDragged:
		w.input.dragged = true
	case protocol.MouseReleased:
		clicked := w.input.canvasDown && !w.input.dragged
		w.input.canvasDown = false
		w.emitMouse(kind, cx, cy, mods)
		if clicked {
			w.emitMouse(protocol.MouseClicked, cx, cy, mods)
		}
		return
	}
	w.emitMouse(kind, cx, cy, mods)
}

func (w *Window) emitMouse(kind protocol.EventType, x, y float64, mods int) {
	w.opts.Emit(protocol.Event{Type: kind, Source: w.id, Time: protocol.Now(), Modifiers: mods, X: x, Y: y})
}

// HandleKey sends a key to the focused widget, or reports it to the client
// when the canvas has focus.
func (w *Window) HandleKey(kind protocol.EventType, char rune, code int, mods int) {
	if w.closed {
		return
	}
	if o := w.input.focus; o != nil {
		if wdg := widgetOf(o); wdg != nil {
			if wdg.Key(widget.Key{Type: kind, Char: char, Code: code, Modifiers: mods}) {
				w.Invalidate()
			}
			return
		}
	}
	w.opts.Emit(protocol.Event{
		Type:      kind,
		Source:    w.id,
		Time:      protocol.Now(),
		Modifiers: mods,
		KeyChar:   int(char),
		KeyCode:   code,
	})
}

// HandleResize adopts a window size chosen by the user. The canvas takes
// whatever the regions leave and the client is told.
func (w *Window) HandleResize(width, height int) {
	if w.closed || (width == w.surfW && height == w.surfH) {
		return
	}
	lay := w.layout()
	sideW := float64(lay.width) - lay.canvasW
	sideH := float64(lay.height) - lay.canvasH
	w.surfW, w.surfH = width, height
	w.canvas.resize(width-int(sideW), height-int(sideH))
	w.Invalidate()
	w.opts.Emit(protocol.Event{Type: protocol.WindowResized, Source: w.id, Time: protocol.Now()})
}
