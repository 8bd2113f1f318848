package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection is one client connection to the X server. Window event
// callbacks run on the goroutine executing EventLoop.
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Display string

	closeOnce sync.Once
}

// NewConnection connects to display, or to $DISPLAY when display is empty.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		if display == "" {
			return nil, fmt.Errorf("connect to X server: %w", err)
		}
		return nil, fmt.Errorf("connect to X server %s: %w", display, err)
	}

	// Key events need the keycode to keysym tables.
	keybind.Initialize(xu)

	return &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		Display: display,
	}, nil
}

// EventLoop dispatches X events until Quit. It blocks.
func (c *Connection) EventLoop() { xevent.Main(c.XUtil) }

func (c *Connection) Quit() { xevent.Quit(c.XUtil) }

// Close disconnects. It is safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { c.XUtil.Conn().Close() })
}
