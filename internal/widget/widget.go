// Package widget implements the interactive controls behind GInteractor
// objects. Widgets are painted with gogpu/gg, so the same controls work on
// an X11 window and on the headless surface.
//
// Widgets are owned by the UI goroutine. Mouse and Key report whether the
// widget needs repainting; state changes the client should hear about are
// reported through the action callback.
package widget

import (
	"image/color"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/render"
)

// Mouse is a pointer event in widget-local coordinates. W and H are the
// widget's current size.
type Mouse struct {
	Type      protocol.EventType
	X, Y      float64
	W, H      float64
	Modifiers int
}

// Inside reports whether the pointer is within the widget.
func (m Mouse) Inside() bool {
	return m.X >= 0 && m.Y >= 0 && m.X < m.W && m.Y < m.H
}

// Key is a keyboard event delivered to the focused widget.
type Key struct {
	Type      protocol.EventType
	Char      rune
	Code      int
	Modifiers int
}

// Widget is a paintable, interactive control.
type Widget interface {
	PreferredSize() (w, h float64)
	Paint(dc *gg.Context, w, h float64) error
	Mouse(ev Mouse) bool
	Key(ev Key) bool
	Focusable() bool
	SetFocused(focused bool)
	SetOnAction(fn func())
}

// Popup is implemented by widgets that draw outside their bounds while open.
// The canvas paints popups after every widget and routes clicks inside the
// popup area to the widget.
type Popup interface {
	PopupOpen() bool
	PopupHeight() float64
	PaintPopup(dc *gg.Context, w, h float64) error
}

// Theme holds the colors and font shared by all widgets of a back-end.
type Theme struct {
	Fonts      *render.FontBook
	Font       render.Font
	Background color.Color
	Face       color.Color
	Pressed    color.Color
	Border     color.Color
	Text       color.Color
	Accent     color.Color
	Selection  color.Color
}

// DefaultTheme returns a light theme using fonts.
func DefaultTheme(fonts *render.FontBook) *Theme {
	if fonts == nil {
		fonts = render.NewFontBook(render.DefaultFont)
	}
	return &Theme{
		Fonts:      fonts,
		Font:       fonts.Default(),
		Background: color.White,
		Face:       color.NRGBA{0xe6, 0xe6, 0xe6, 0xff},
		Pressed:    color.NRGBA{0xc8, 0xc8, 0xc8, 0xff},
		Border:     color.NRGBA{0x7a, 0x7a, 0x7a, 0xff},
		Text:       color.Black,
		Accent:     color.NRGBA{0x35, 0x84, 0xe4, 0xff},
		Selection:  color.NRGBA{0xcf, 0xe2, 0xfa, 0xff},
	}
}

func (t *Theme) face(f render.Font) text.Face {
	face, err := t.Fonts.FaceFor(f)
	if err != nil {
		// The bundled fonts always parse.
		panic(err)
	}
	return face
}

// measure returns the advance, ascent and descent of s in font f.
func (t *Theme) measure(f render.Font, s string) (w, ascent, descent float64) {
	face := t.face(f)
	m := face.Metrics()
	return face.Advance(s), m.Ascent, m.Descent
}

// base carries state shared by every widget.
type base struct {
	theme    *Theme
	font     render.Font
	focused  bool
	onAction func()
}

func newBase(theme *Theme) base {
	return base{theme: theme, font: theme.Font}
}

func (b *base) Mouse(Mouse) bool        { return false }
func (b *base) Key(Key) bool            { return false }
func (b *base) Focusable() bool         { return false }
func (b *base) SetFocused(focused bool) { b.focused = focused }
func (b *base) SetOnAction(fn func())   { b.onAction = fn }

func (b *base) fire() {
	if b.onAction != nil {
		b.onAction()
	}
}

// drawText draws s with its baseline at (x, y) in the context's current
// coordinate space.
func drawText(dc *gg.Context, face text.Face, s string, x, y float64, c color.Color) {
	if s == "" {
		return
	}
	dx, dy := dc.TransformPoint(x, y)
	dc.SetFont(face)
	dc.SetColor(c)
	dc.DrawString(s, dx, dy)
}

// box fills and outlines a rectangle.
func box(dc *gg.Context, x, y, w, h float64, fill, border color.Color) error {
	dc.DrawRectangle(x, y, w, h)
	if fill != nil {
		dc.SetColor(fill)
		if err := dc.FillPreserve(); err != nil {
			dc.ClearPath()
			return err
		}
	}
	dc.SetColor(border)
	dc.SetLineWidth(1)
	return dc.Stroke()
}

// isPrintable reports whether a key event carries text.
func isPrintable(k Key) bool {
	return k.Char >= 0x20 && k.Char != 0x7f && k.Modifiers&(protocol.ModCtrl|protocol.ModMeta) == 0
}
