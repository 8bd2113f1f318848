package platform

import (
	"image"
	"sync"
)

// Headless screen size used when none is configured.
const (
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080
)

// Headless is a backend without a display. Surfaces keep their last frame
// in memory and expose their sink so input can be injected.
type Headless struct {
	mu       sync.Mutex
	width    int
	height   int
	surfaces []*HeadlessSurface
	closed   bool
}

var _ Backend = (*Headless)(nil)

// NewHeadless returns a headless backend reporting a width by height
// screen. Non-positive sizes select the defaults.
func NewHeadless(width, height int) *Headless {
	if width <= 0 || height <= 0 {
		width, height = DefaultScreenWidth, DefaultScreenHeight
	}
	return &Headless{width: width, height: height}
}

// Name returns "headless".
func (h *Headless) Name() string { return "headless" }

// Displays returns a single virtual display.
func (h *Headless) Displays() ([]Display, error) {
	return []Display{{
		Name:   "headless",
		Bounds: Rect{Width: h.width, Height: h.height},
	}}, nil
}

// NewSurface creates an in-memory surface.
func (h *Headless) NewSurface(opts SurfaceOptions, sink Sink) (Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	s := &HeadlessSurface{
		title:     opts.Title,
		width:     opts.Width,
		height:    opts.Height,
		resizable: opts.Resizable,
		sink:      sink,
	}
	h.surfaces = append(h.surfaces, s)
	return s, nil
}

// Surfaces returns every surface created so far, closed ones included.
func (h *Headless) Surfaces() []*HeadlessSurface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*HeadlessSurface(nil), h.surfaces...)
}

// Close closes every surface.
func (h *Headless) Close() error {
	h.mu.Lock()
	surfaces := h.surfaces
	h.closed = true
	h.mu.Unlock()
	for _, s := range surfaces {
		_ = s.Close()
	}
	return nil
}

// HeadlessSurface is the surface created by Headless.
type HeadlessSurface struct {
	mu        sync.Mutex
	title     string
	width     int
	height    int
	resizable bool
	visible   bool
	closed    bool
	raised    int
	frames    int
	frame     image.Image
	sink      Sink
}

var _ Surface = (*HeadlessSurface)(nil)

func (s *HeadlessSurface) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
	return nil
}

func (s *HeadlessSurface) SetResizable(resizable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizable = resizable
	return nil
}

func (s *HeadlessSurface) SetVisible(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.visible = visible
	return nil
}

func (s *HeadlessSurface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.width, s.height = width, height
	return nil
}

// Present stores frame as the surface contents.
func (s *HeadlessSurface) Present(frame image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.frame = frame
	s.frames++
	return nil
}

func (s *HeadlessSurface) Raise() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raised++
	return nil
}

func (s *HeadlessSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.visible = false
	return nil
}

// Sink returns the input sink, for injecting events.
func (s *HeadlessSurface) Sink() Sink { return s.sink }

// Frame returns the last presented frame and how many have been presented.
func (s *HeadlessSurface) Frame() (image.Image, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.frames
}

// Title returns the current title.
func (s *HeadlessSurface) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Size returns the current size.
func (s *HeadlessSurface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Visible reports whether the surface is shown.
func (s *HeadlessSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Resizable reports whether the user may resize the surface.
func (s *HeadlessSurface) Resizable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resizable
}

// Closed reports whether Close was called.
func (s *HeadlessSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
