package widget

import (
	"image/color"
	"strings"

	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/render"
)

// TextArea is a multi-line text widget. It never fires actions.
type TextArea struct {
	base
	editor
	width, height float64
	editable      bool
	background    color.Color
}

// NewTextArea returns an editable text area of the given pixel size.
func NewTextArea(theme *Theme, width, height float64) *TextArea {
	return &TextArea{
		base:       newBase(theme),
		width:      width,
		height:     height,
		editable:   true,
		background: theme.Background,
	}
}

// Text returns the contents.
func (t *TextArea) Text() string { return t.String() }

// SetText replaces the contents.
func (t *TextArea) SetText(s string) { t.set(s) }

// Editable reports whether keyboard input changes the text.
func (t *TextArea) Editable() bool { return t.editable }

// SetEditable enables or disables editing.
func (t *TextArea) SetEditable(v bool) { t.editable = v }

// SetFont changes the font.
func (t *TextArea) SetFont(f render.Font) { t.font = f }

// SetBackground changes the fill color. A nil color restores the theme's.
func (t *TextArea) SetBackground(c color.Color) {
	if c == nil {
		c = t.theme.Background
	}
	t.background = c
}

// PreferredSize returns the size given at creation.
func (t *TextArea) PreferredSize() (float64, float64) { return t.width, t.height }

// Paint draws the lines that fit, top to bottom, keeping the caret's line
// visible.
func (t *TextArea) Paint(dc *gg.Context, w, h float64) error {
	border := t.theme.Border
	if t.focused && t.editable {
		border = t.theme.Accent
	}
	if err := box(dc, 0.5, 0.5, w-1, h-1, t.background, border); err != nil {
		return err
	}
	face := t.theme.face(t.font)
	_, a, d := t.theme.measure(t.font, "")
	lh := a + d + 2

	lines := strings.Split(t.String(), "\n")
	caretLine, caretCol := t.caretPos()
	visible := int((h - 2*padY) / lh)
	if visible < 1 {
		visible = 1
	}
	first := 0
	if caretLine >= visible {
		first = caretLine - visible + 1
	}
	for i := first; i < len(lines) && i < first+visible; i++ {
		y := padY + float64(i-first)*lh + a
		drawText(dc, face, lines[i], padY, y, t.theme.Text)
	}

	if t.focused && t.editable {
		x := padY + face.Advance(string([]rune(lines[caretLine])[:caretCol]))
		y := padY + float64(caretLine-first)*lh
		dc.MoveTo(x, y)
		dc.LineTo(x, y+a+d)
		dc.SetColor(t.theme.Text)
		dc.SetLineWidth(1)
		return dc.Stroke()
	}
	return nil
}

// caretPos returns the caret's line and column in runes.
func (t *TextArea) caretPos() (line, col int) {
	for _, r := range t.text[:t.caret] {
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}

// Focusable reports true.
func (t *TextArea) Focusable() bool { return true }

// Key edits the text when editable. Enter inserts a newline.
func (t *TextArea) Key(ev Key) bool {
	if !t.editable {
		return false
	}
	switch ev.Type {
	case protocol.KeyTyped:
		if isPrintable(ev) {
			t.insert(ev.Char)
			return true
		}
	case protocol.KeyPressed:
		if ev.Code == protocol.KeyEnter {
			t.insert('\n')
			return true
		}
		return t.edit(ev.Code)
	}
	return false
}

// Mouse takes focus; the canvas handles that, so nothing changes here.
func (t *TextArea) Mouse(ev Mouse) bool { return ev.Type == protocol.MousePressed }
