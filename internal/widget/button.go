package widget

import (
	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/protocol"
)

const (
	padX = 10
	padY = 5
)

// Button fires an action when clicked.
type Button struct {
	base
	label   string
	pressed bool
}

// NewButton returns a push button.
func NewButton(theme *Theme, label string) *Button {
	return &Button{base: newBase(theme), label: label}
}

// Label returns the button text.
func (b *Button) Label() string { return b.label }

// PreferredSize fits the label with padding.
func (b *Button) PreferredSize() (float64, float64) {
	w, a, d := b.theme.measure(b.font, b.label)
	return w + 2*padX, a + d + 2*padY
}

// Paint draws the button face and centered label.
func (b *Button) Paint(dc *gg.Context, w, h float64) error {
	fill := b.theme.Face
	if b.pressed {
		fill = b.theme.Pressed
	}
	if err := box(dc, 0.5, 0.5, w-1, h-1, fill, b.theme.Border); err != nil {
		return err
	}
	tw, a, d := b.theme.measure(b.font, b.label)
	drawText(dc, b.theme.face(b.font), b.label, (w-tw)/2, (h-(a+d))/2+a, b.theme.Text)
	return nil
}

// Mouse tracks the press and fires on release inside the button.
func (b *Button) Mouse(ev Mouse) bool {
	switch ev.Type {
	case protocol.MousePressed:
		b.pressed = true
		return true
	case protocol.MouseDragged:
		inside := ev.Inside()
		if inside != b.pressed {
			b.pressed = inside
			return true
		}
	case protocol.MouseReleased:
		was := b.pressed
		b.pressed = false
		if was && ev.Inside() {
			b.fire()
		}
		return was
	}
	return false
}

// Focusable reports true so the space bar can activate the button.
func (b *Button) Focusable() bool { return true }

// Key activates the button on space or enter.
func (b *Button) Key(ev Key) bool {
	if ev.Type == protocol.KeyPressed && (ev.Code == protocol.KeyEnter || ev.Char == ' ') {
		b.fire()
	}
	return false
}
