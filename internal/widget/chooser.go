package widget

import (
	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/protocol"
)

const arrowWidth = 18

// Chooser is a drop-down list. Picking a different item fires an action.
type Chooser struct {
	base
	items    []string
	selected int
	open     bool
	hover    int
}

// NewChooser returns an empty chooser.
func NewChooser(theme *Theme) *Chooser {
	return &Chooser{base: newBase(theme), selected: -1, hover: -1}
}

// AddItem appends an item. The first item becomes the selection.
func (c *Chooser) AddItem(item string) {
	c.items = append(c.items, item)
	if c.selected < 0 {
		c.selected = 0
	}
}

// Items returns a copy of the items.
func (c *Chooser) Items() []string { return append([]string(nil), c.items...) }

// SelectedItem returns the selected item, or "" when the list is empty.
func (c *Chooser) SelectedItem() string {
	if c.selected < 0 {
		return ""
	}
	return c.items[c.selected]
}

// SetSelectedItem selects item if present, without firing an action. It
// reports whether the item was found.
func (c *Chooser) SetSelectedItem(item string) bool {
	for i, it := range c.items {
		if it == item {
			c.selected = i
			return true
		}
	}
	return false
}

func (c *Chooser) rowHeight() float64 {
	_, a, d := c.theme.measure(c.font, "")
	return a + d + 2*padY
}

// PreferredSize fits the widest item and the arrow.
func (c *Chooser) PreferredSize() (float64, float64) {
	w := 40.0
	for _, it := range c.items {
		if iw, _, _ := c.theme.measure(c.font, it); iw > w {
			w = iw
		}
	}
	return w + 2*padY + arrowWidth, c.rowHeight()
}

// Paint draws the closed box with the selection and a drop arrow.
func (c *Chooser) Paint(dc *gg.Context, w, h float64) error {
	if err := box(dc, 0.5, 0.5, w-1, h-1, c.theme.Face, c.theme.Border); err != nil {
		return err
	}
	ax := w - arrowWidth/2 - 2
	dc.MoveTo(ax-4, h/2-2)
	dc.LineTo(ax+4, h/2-2)
	dc.LineTo(ax, h/2+3)
	dc.ClosePath()
	dc.SetColor(c.theme.Text)
	if err := dc.Fill(); err != nil {
		return err
	}
	_, a, d := c.theme.measure(c.font, "")
	drawText(dc, c.theme.face(c.font), c.SelectedItem(), padY, (h-(a+d))/2+a, c.theme.Text)
	return nil
}

// PopupOpen reports whether the item list is showing.
func (c *Chooser) PopupOpen() bool { return c.open }

// PopupHeight is the height of the open item list.
func (c *Chooser) PopupHeight() float64 { return float64(len(c.items)) * c.rowHeight() }

// PaintPopup draws the item list below a box of size w by h. dc's origin
// is the widget's top-left corner.
func (c *Chooser) PaintPopup(dc *gg.Context, w, h float64) error {
	rh := c.rowHeight()
	top := h
	if err := box(dc, 0.5, top+0.5, w-1, c.PopupHeight()-1, c.theme.Background, c.theme.Border); err != nil {
		return err
	}
	face := c.theme.face(c.font)
	_, a, d := c.theme.measure(c.font, "")
	for i, it := range c.items {
		y := top + float64(i)*rh
		if i == c.hover || (c.hover < 0 && i == c.selected) {
			dc.DrawRectangle(1, y+1, w-2, rh-1)
			dc.SetColor(c.theme.Selection)
			if err := dc.Fill(); err != nil {
				return err
			}
		}
		drawText(dc, face, it, padY, y+(rh-(a+d))/2+a, c.theme.Text)
	}
	return nil
}

func (c *Chooser) rowAt(y, h float64) int {
	if y < h {
		return -1
	}
	i := int((y - h) / c.rowHeight())
	if i >= len(c.items) {
		return -1
	}
	return i
}

// Mouse opens the list on a click in the box and picks the row clicked
// while open.
func (c *Chooser) Mouse(ev Mouse) bool {
	switch ev.Type {
	case protocol.MousePressed:
		if !c.open {
			if len(c.items) == 0 {
				return false
			}
			c.open = true
			c.hover = -1
			return true
		}
		row := c.rowAt(ev.Y, ev.H)
		c.open = false
		c.hover = -1
		if row >= 0 && row != c.selected {
			c.selected = row
			c.fire()
		}
		return true
	case protocol.MouseMoved, protocol.MouseDragged:
		if c.open {
			if row := c.rowAt(ev.Y, ev.H); row != c.hover {
				c.hover = row
				return true
			}
		}
	}
	return false
}

// Focusable reports true so arrow keys can change the selection.
func (c *Chooser) Focusable() bool { return true }

// SetFocused closes the list when focus moves away.
func (c *Chooser) SetFocused(focused bool) {
	c.focused = focused
	if !focused {
		c.open = false
	}
}

// Key moves the selection with the arrow keys.
func (c *Chooser) Key(ev Key) bool {
	if ev.Type != protocol.KeyPressed || len(c.items) == 0 {
		return false
	}
	next := c.selected
	switch ev.Code {
	case protocol.KeyUp:
		next--
	case protocol.KeyDown:
		next++
	case protocol.KeyEscape:
		was := c.open
		c.open = false
		return was
	default:
		return false
	}
	if next < 0 || next >= len(c.items) {
		return false
	}
	c.selected = next
	c.fire()
	return true
}
