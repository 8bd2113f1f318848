package widget

import (
	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/protocol"
)

const checkSize = 14

// CheckBox toggles on click and fires an action each time.
type CheckBox struct {
	base
	label    string
	selected bool
}

// NewCheckBox returns an unselected check box.
func NewCheckBox(theme *Theme, label string) *CheckBox {
	return &CheckBox{base: newBase(theme), label: label}
}

// Selected reports whether the box is checked.
func (c *CheckBox) Selected() bool { return c.selected }

// SetSelected checks or clears the box without firing an action.
func (c *CheckBox) SetSelected(v bool) { c.selected = v }

// PreferredSize fits the box and label.
func (c *CheckBox) PreferredSize() (float64, float64) {
	w, a, d := c.theme.measure(c.font, c.label)
	h := a + d
	if h < checkSize {
		h = checkSize
	}
	return checkSize + 6 + w + 2, h + 2*padY
}

// Paint draws the box, its check mark and the label.
func (c *CheckBox) Paint(dc *gg.Context, w, h float64) error {
	top := (h - checkSize) / 2
	if err := box(dc, 0.5, top+0.5, checkSize, checkSize, c.theme.Background, c.theme.Border); err != nil {
		return err
	}
	if c.selected {
		dc.MoveTo(3, top+checkSize/2)
		dc.LineTo(checkSize/2-1, top+checkSize-3)
		dc.LineTo(checkSize-2, top+3)
		dc.SetColor(c.theme.Accent)
		dc.SetLineWidth(2)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	_, a, d := c.theme.measure(c.font, c.label)
	drawText(dc, c.theme.face(c.font), c.label, checkSize+6, (h-(a+d))/2+a, c.theme.Text)
	return nil
}

// Mouse toggles the box on a click released inside it.
func (c *CheckBox) Mouse(ev Mouse) bool {
	if ev.Type == protocol.MouseReleased && ev.Inside() {
		c.selected = !c.selected
		c.fire()
		return true
	}
	return false
}

// Focusable reports true so the space bar can toggle the box.
func (c *CheckBox) Focusable() bool { return true }

// Key toggles the box on space.
func (c *CheckBox) Key(ev Key) bool {
	if ev.Type == protocol.KeyPressed && ev.Char == ' ' {
		c.selected = !c.selected
		c.fire()
		return true
	}
	return false
}
