package widget

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/protocol"
)

const (
	sliderWidth  = 150
	sliderHeight = 24
	knobRadius   = 7
)

// Slider selects an integer in [min, max]. Every value change made by the
// user fires an action.
type Slider struct {
	base
	min, max, value int
	dragging        bool
}

// NewSlider returns a slider. Bounds are swapped if given in reverse and
// value is clamped into them.
func NewSlider(theme *Theme, min, max, value int) *Slider {
	if min > max {
		min, max = max, min
	}
	s := &Slider{base: newBase(theme), min: min, max: max}
	s.SetValue(value)
	return s
}

// Value returns the current value.
func (s *Slider) Value() int { return s.value }

// Range returns the slider bounds.
func (s *Slider) Range() (min, max int) { return s.min, s.max }

// SetValue sets the value, clamped to the range, without firing an action.
func (s *Slider) SetValue(v int) {
	s.value = max(s.min, min(s.max, v))
}

// PreferredSize returns the fixed slider size.
func (s *Slider) PreferredSize() (float64, float64) { return sliderWidth, sliderHeight }

func (s *Slider) knobX(w float64) float64 {
	track := w - 2*knobRadius
	if s.max == s.min || track <= 0 {
		return knobRadius
	}
	return knobRadius + track*float64(s.value-s.min)/float64(s.max-s.min)
}

// Paint draws the track, the filled portion and the knob.
func (s *Slider) Paint(dc *gg.Context, w, h float64) error {
	cy := h / 2
	dc.SetLineWidth(4)
	dc.SetColor(s.theme.Pressed)
	dc.MoveTo(knobRadius, cy)
	dc.LineTo(w-knobRadius, cy)
	if err := dc.Stroke(); err != nil {
		return err
	}
	kx := s.knobX(w)
	dc.SetColor(s.theme.Accent)
	dc.MoveTo(knobRadius, cy)
	dc.LineTo(kx, cy)
	if err := dc.Stroke(); err != nil {
		return err
	}
	dc.DrawCircle(kx, cy, knobRadius)
	dc.SetColor(s.theme.Background)
	if err := dc.FillPreserve(); err != nil {
		dc.ClearPath()
		return err
	}
	dc.SetLineWidth(1)
	dc.SetColor(s.theme.Border)
	return dc.Stroke()
}

func (s *Slider) valueAt(x, w float64) int {
	track := w - 2*knobRadius
	if track <= 0 {
		return s.value
	}
	f := (x - knobRadius) / track
	f = math.Max(0, math.Min(1, f))
	return s.min + int(math.Round(f*float64(s.max-s.min)))
}

func (s *Slider) moveTo(v int) bool {
	if v == s.value {
		return false
	}
	s.value = v
	s.fire()
	return true
}

// Mouse drags the knob.
func (s *Slider) Mouse(ev Mouse) bool {
	switch ev.Type {
	case protocol.MousePressed:
		s.dragging = true
		return s.moveTo(s.valueAt(ev.X, ev.W))
	case protocol.MouseDragged:
		if s.dragging {
			return s.moveTo(s.valueAt(ev.X, ev.W))
		}
	case protocol.MouseReleased:
		s.dragging = false
	}
	return false
}

// Focusable reports true so arrow keys can step the value.
func (s *Slider) Focusable() bool { return true }

// Key steps the value with the arrow keys.
func (s *Slider) Key(ev Key) bool {
	if ev.Type != protocol.KeyPressed {
		return false
	}
	switch ev.Code {
	case protocol.KeyLeft, protocol.KeyDown:
		return s.moveTo(max(s.min, s.value-1))
	case protocol.KeyRight, protocol.KeyUp:
		return s.moveTo(min(s.max, s.value+1))
	case protocol.KeyHome:
		return s.moveTo(s.min)
	case protocol.KeyEnd:
		return s.moveTo(s.max)
	}
	return false
}
