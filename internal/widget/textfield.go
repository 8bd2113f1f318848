package widget

import (
	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/protocol"
)

// editor is the text buffer and caret shared by TextField and TextArea.
type editor struct {
	text  []rune
	caret int
}

func (e *editor) String() string { return string(e.text) }

func (e *editor) set(s string) {
	e.text = []rune(s)
	e.caret = len(e.text)
}

func (e *editor) insert(r rune) {
	e.text = append(e.text, 0)
	copy(e.text[e.caret+1:], e.text[e.caret:])
	e.text[e.caret] = r
	e.caret++
}

// edit applies a navigation or deletion key. It reports whether the key was
// recognized.
func (e *editor) edit(code int) bool {
	switch code {
	case protocol.KeyBackspace:
		if e.caret > 0 {
			e.text = append(e.text[:e.caret-1], e.text[e.caret:]...)
			e.caret--
		}
	case protocol.KeyDelete:
		if e.caret < len(e.text) {
			e.text = append(e.text[:e.caret], e.text[e.caret+1:]...)
		}
	case protocol.KeyLeft:
		if e.caret > 0 {
			e.caret--
		}
	case protocol.KeyRight:
		if e.caret < len(e.text) {
			e.caret++
		}
	case protocol.KeyHome:
		e.caret = 0
	case protocol.KeyEnd:
		e.caret = len(e.text)
	default:
		return false
	}
	return true
}

// TextField is a single-line text input. Enter fires an action.
type TextField struct {
	base
	editor
	columns int
}

// NewTextField returns an empty field sized for columns characters.
func NewTextField(theme *Theme, columns int) *TextField {
	if columns <= 0 {
		columns = 10
	}
	return &TextField{base: newBase(theme), columns: columns}
}

// Text returns the field contents.
func (f *TextField) Text() string { return f.String() }

// SetText replaces the contents and moves the caret to the end.
func (f *TextField) SetText(s string) { f.set(s) }

// PreferredSize fits columns average-width characters.
func (f *TextField) PreferredSize() (float64, float64) {
	w, a, d := f.theme.measure(f.font, "m")
	return float64(f.columns)*w + 2*padY, a + d + 2*padY
}

// Paint draws the field, its text and, when focused, the caret.
func (f *TextField) Paint(dc *gg.Context, w, h float64) error {
	border := f.theme.Border
	if f.focused {
		border = f.theme.Accent
	}
	if err := box(dc, 0.5, 0.5, w-1, h-1, f.theme.Background, border); err != nil {
		return err
	}
	face := f.theme.face(f.font)
	_, a, d := f.theme.measure(f.font, "")
	baseline := (h-(a+d))/2 + a

	// Scroll so the caret stays visible.
	before := face.Advance(string(f.text[:f.caret]))
	offset := 0.0
	if inner := w - 2*padY; before > inner {
		offset = before - inner
	}

	// Glyphs are not clipped, so characters scrolled off the left edge are
	// dropped instead.
	skip := 0
	for skip < len(f.text) && face.Advance(string(f.text[:skip])) < offset {
		skip++
	}
	x := padY - offset + face.Advance(string(f.text[:skip]))
	drawText(dc, face, string(f.text[skip:]), x, baseline, f.theme.Text)

	if f.focused {
		x := padY - offset + before
		dc.MoveTo(x, baseline-a)
		dc.LineTo(x, baseline+d)
		dc.SetColor(f.theme.Text)
		dc.SetLineWidth(1)
		return dc.Stroke()
	}
	return nil
}

// Mouse places the caret at the clicked character.
func (f *TextField) Mouse(ev Mouse) bool {
	if ev.Type != protocol.MousePressed {
		return false
	}
	face := f.theme.face(f.font)
	f.caret = len(f.text)
	for i := range f.text {
		if face.Advance(string(f.text[:i+1])) > ev.X-padY {
			f.caret = i
			break
		}
	}
	return true
}

// Focusable reports true.
func (f *TextField) Focusable() bool { return true }

// Key edits the text. Enter fires an action.
func (f *TextField) Key(ev Key) bool {
	switch ev.Type {
	case protocol.KeyTyped:
		if isPrintable(ev) {
			f.insert(ev.Char)
			return true
		}
	case protocol.KeyPressed:
		if ev.Code == protocol.KeyEnter {
			f.fire()
			return false
		}
		return f.edit(ev.Code)
	}
	return false
}
