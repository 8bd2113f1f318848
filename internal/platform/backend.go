package platform

import (
	"errors"
	"image"

	"github.com/1broseidon/splbe/internal/protocol"
)

// ErrClosed is returned by operations on a closed surface or backend.
var ErrClosed = errors.New("platform: closed")

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Sink receives input for one surface. Calls arrive on the platform's own
// goroutine; implementations hand them to the UI thread.
type Sink interface {
	Mouse(kind protocol.EventType, x, y float64, modifiers int)
	Key(kind protocol.EventType, char rune, code int, modifiers int)
	Resized(width, height int)
	CloseRequested()
	Exposed()
}

// SurfaceOptions configure a new surface.
type SurfaceOptions struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// Surface is a top-level window showing frames produced by the renderer.
type Surface interface {
	SetTitle(title string) error
	SetResizable(resizable bool) error
	SetVisible(visible bool) error
	Resize(width, height int) error
	Present(frame image.Image) error
	Raise() error
	Close() error
}

// Backend abstracts the window system.
type Backend interface {
	Name() string
	Displays() ([]Display, error)
	NewSurface(opts SurfaceOptions, sink Sink) (Surface, error)
	Close() error
}

// ScreenSize returns the size of the first display, or 0x0 when the
// backend reports none.
func ScreenSize(b Backend) (width, height int, err error) {
	displays, err := b.Displays()
	if err != nil {
		return 0, 0, err
	}
	if len(displays) == 0 {
		return 0, 0, nil
	}
	d := displays[0]
	return d.Bounds.Width, d.Bounds.Height, nil
}
