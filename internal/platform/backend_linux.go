//go:build linux

package platform

import (
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/x11"
)

// LinuxBackend shows surfaces as X11 windows.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

var _ Backend = (*LinuxBackend)(nil)

func openX11(display string, logger *slog.Logger) (Backend, error) {
	return NewLinuxBackend(display, logger)
}

// NewLinuxBackend connects to display and starts the X event loop.
func NewLinuxBackend(display string, logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	b := &LinuxBackend{conn: conn, logger: logger, done: make(chan struct{})}
	go func() {
		defer close(b.done)
		conn.EventLoop()
	}()
	return b, nil
}

// Name returns "x11".
func (b *LinuxBackend) Name() string { return "x11" }

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}

// NewSurface creates an unmapped X window feeding sink.
func (b *LinuxBackend) NewSurface(opts SurfaceOptions, sink Sink) (Surface, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	s := &x11Surface{sink: sink}
	win, err := b.conn.NewWindow(opts.Title, opts.Width, opts.Height, x11.Handlers{
		Button:    s.button,
		Motion:    s.motion,
		Key:       s.key,
		Configure: sink.Resized,
		Expose:    sink.Exposed,
		Close:     sink.CloseRequested,
	})
	if err != nil {
		return nil, err
	}
	s.win = win
	if err := s.SetResizable(opts.Resizable); err != nil {
		b.logger.Warn("failed to set size hints", "error", err)
	}
	return s, nil
}

// Close stops the event loop and disconnects.
func (b *LinuxBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.conn.Quit()
	b.conn.Close()
	return nil
}

type x11Surface struct {
	win  *x11.Window
	sink Sink

	// event loop goroutine only
	buttons int
}

func (s *x11Surface) SetTitle(title string) error { return s.win.SetTitle(title) }

func (s *x11Surface) SetResizable(resizable bool) error { return s.win.SetFixedSize(!resizable) }

func (s *x11Surface) SetVisible(visible bool) error {
	if visible {
		s.win.Map()
	} else {
		s.win.Unmap()
	}
	return nil
}

func (s *x11Surface) Resize(width, height int) error {
	s.win.Resize(width, height)
	return nil
}

func (s *x11Surface) Present(frame image.Image) error { return s.win.Put(frame) }

func (s *x11Surface) Raise() error { return s.win.Raise() }

func (s *x11Surface) Close() error {
	s.win.Destroy()
	return nil
}

func (s *x11Surface) button(press bool, button, x, y int, state uint16) {
	// Buttons 4 to 7 are wheel clicks.
	if button < 1 || button > 3 {
		return
	}
	bit := protocol.ModButton1 << (button - 1)
	kind := protocol.MouseReleased
	if press {
		kind = protocol.MousePressed
		s.buttons |= bit
	} else {
		s.buttons &^= bit
	}
	s.sink.Mouse(kind, float64(x), float64(y), modifiers(state)|bit)
}

func (s *x11Surface) motion(x, y int, state uint16) {
	kind := protocol.MouseMoved
	if s.buttons != 0 {
		kind = protocol.MouseDragged
	}
	s.sink.Mouse(kind, float64(x), float64(y), modifiers(state)|s.buttons)
}

func (s *x11Surface) key(press bool, sym xproto.Keysym, state uint16) {
	mods := modifiers(state)
	code, char := keyCode(sym)
	if !press {
		s.sink.Key(protocol.KeyReleased, char, code, mods)
		return
	}
	s.sink.Key(protocol.KeyPressed, char, code, mods)
	if char != protocol.CharUndefined {
		s.sink.Key(protocol.KeyTyped, char, protocol.KeyUndefined, mods)
	}
}

func modifiers(state uint16) int {
	var m int
	if state&xproto.ModMaskShift != 0 {
		m |= protocol.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= protocol.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		m |= protocol.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		m |= protocol.ModMeta
	}
	return m
}

// keysyms without a printable character.
var specialKeys = map[xproto.Keysym]struct {
	code int
	char rune
}{
	0xff08: {protocol.KeyBackspace, '\b'},
	0xff09: {protocol.KeyTab, '\t'},
	0xff0d: {protocol.KeyEnter, '\n'},
	0xff8d: {protocol.KeyEnter, '\n'},
	0xff1b: {protocol.KeyEscape, 0x1b},
	0xffff: {protocol.KeyDelete, 0x7f},
	0xff50: {protocol.KeyHome, protocol.CharUndefined},
	0xff51: {protocol.KeyLeft, protocol.CharUndefined},
	0xff52: {protocol.KeyUp, protocol.CharUndefined},
	0xff53: {protocol.KeyRight, protocol.CharUndefined},
	0xff54: {protocol.KeyDown, protocol.CharUndefined},
	0xff55: {protocol.KeyPageUp, protocol.CharUndefined},
	0xff56: {protocol.KeyPageDown, protocol.CharUndefined},
	0xff57: {protocol.KeyEnd, protocol.CharUndefined},
	0xffe1: {protocol.KeyShift, protocol.CharUndefined},
	0xffe2: {protocol.KeyShift, protocol.CharUndefined},
	0xffe3: {protocol.KeyControl, protocol.CharUndefined},
	0xffe4: {protocol.KeyControl, protocol.CharUndefined},
	0xffe9: {protocol.KeyAlt, protocol.CharUndefined},
	0xffea: {protocol.KeyAlt, protocol.CharUndefined},
}

// keyCode maps a keysym to a key code and the character it types.
func keyCode(sym xproto.Keysym) (int, rune) {
	if k, ok := specialKeys[sym]; ok {
		return k.code, k.char
	}
	var r rune
	switch {
	case sym >= 0x20 && sym <= 0xff:
		r = rune(sym)
	case sym >= 0x01000100 && sym <= 0x0110ffff:
		r = rune(sym - 0x01000000)
	default:
		return protocol.KeyUndefined, protocol.CharUndefined
	}
	if !utf8.ValidRune(r) {
		return protocol.KeyUndefined, protocol.CharUndefined
	}
	code := int(r)
	if r >= 'a' && r <= 'z' {
		code -= 'a' - 'A'
	}
	if r > 0x7f {
		code = protocol.KeyUndefined
	}
	return code, r
}
