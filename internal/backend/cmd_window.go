package backend

import (
	"fmt"
	"strconv"

	"github.com/1broseidon/splbe/internal/imagecodec"
	"github.com/1broseidon/splbe/internal/platform"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/window"
)

func windowCreate(c *call) (string, error) {
	id, width, height, top := c.String(), c.Int(), c.Int(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	if err := imagecodec.CheckSize(max(width, 0), max(height, 0)); err != nil {
		return "", c.errorf("%w", err)
	}
	b := c.b
	return "", c.wait(func() error {
		root, err := c.object(top)
		if err != nil {
			return err
		}
		old, dup := b.reg.Window(id)
		switch {
		case !root.IsCompound():
			return protocol.Mismatch(c.name, top)
		case dup && b.opts.DuplicateIDs == DuplicateReject:
			return fmt.Errorf("window %q already exists", id)
		case root.Host() != nil && !(dup && old.Root() == root):
			return fmt.Errorf("compound %q already belongs to a window", top)
		case root.Parent() != nil:
			return fmt.Errorf("compound %q is inside another compound", top)
		}
		if dup {
			// The old window lets go of its root, which may be reused.
			b.reg.DeleteWindow(id)
			old.Close()
		}
		w, err := window.New(window.Options{
			ID:       id,
			Width:    width,
			Height:   height,
			Root:     root,
			Backend:  b.platform,
			Fonts:    b.opts.Fonts,
			Theme:    b.theme,
			Logger:   b.logger,
			Interval: b.opts.RepaintInterval,
			Post:     b.ui.Post,
			Emit:     b.emit,
			OnClose:  b.userClosed,
		})
		if err != nil {
			return protocol.Native(err)
		}
		b.reg.DefineWindow(id, w)
		b.logger.Debug("window created", "window", id, "width", width, "height", height)
		return nil
	})
}

// windowClose closes a window at the client's request. No events follow.
func windowClose(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, ok := c.b.reg.DeleteWindow(id)
		if !ok {
			return protocol.NotFound("window", id)
		}
		w.Close()
		return nil
	})
}

// onWindow posts fn against an open window.
func onWindow(c *call, fn func(w *window.Window) error) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(id)
		if err != nil {
			return err
		}
		return fn(w)
	})
}

func windowClear(c *call) (string, error) {
	return onWindow(c, func(w *window.Window) error {
		w.Clear()
		return nil
	})
}

func windowRepaint(c *call) (string, error) {
	return onWindow(c, func(w *window.Window) error {
		w.Invalidate()
		return nil
	})
}

func windowRequestFocus(c *call) (string, error) {
	return onWindow(c, (*window.Window).RequestFocus)
}

func windowSetResizable(c *call) (string, error) {
	id, v := c.String(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(id)
		if err != nil {
			return err
		}
		return protocol.Native(w.SetResizable(v))
	})
}

func windowSetTitle(c *call) (string, error) {
	id, title := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(id)
		if err != nil {
			return err
		}
		return protocol.Native(w.SetTitle(title))
	})
}

func windowSetVisible(c *call) (string, error) {
	id, v := c.String(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(id)
		if err != nil {
			return err
		}
		return protocol.Native(w.SetVisible(v))
	})
}

func windowDraw(c *call) (string, error) {
	wid, oid := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(wid)
		if err != nil {
			return err
		}
		o, err := c.object(oid)
		if err != nil {
			return err
		}
		return w.Draw(o)
	})
}

func windowAddToRegion(c *call) (string, error) {
	wid, oid, name := c.String(), c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	r, err := window.ParseRegion(name)
	if err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(wid)
		if err != nil {
			return err
		}
		o, err := c.object(oid)
		if err != nil {
			return err
		}
		if err := w.AddToRegion(o, r); err != nil {
			return fmt.Errorf("%w: %v", protocol.ErrTypeMismatch, err)
		}
		return nil
	})
}

func windowRemoveFromRegion(c *call) (string, error) {
	wid, oid, name := c.String(), c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	r, err := window.ParseRegion(name)
	if err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(wid)
		if err != nil {
			return err
		}
		o, err := c.object(oid)
		if err != nil {
			return err
		}
		if !w.RemoveFromRegion(o, r) {
			c.b.logger.Debug("object not in region", "object", oid, "region", r)
		}
		return nil
	})
}

func windowSetRegionAlignment(c *call) (string, error) {
	wid, name, align := c.String(), c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	r, err := window.ParseRegion(name)
	if err != nil {
		return "", err
	}
	return "", c.do(func() error {
		w, err := c.window(wid)
		if err != nil {
			return err
		}
		w.SetRegionAlignment(r, window.ParseAlignment(r, align))
		return nil
	})
}

// canvasSize answers one dimension of a window's canvas.
func canvasSize(c *call, height bool) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	n, err := ask(c, func() (int, error) {
		w, err := c.window(id)
		if err != nil {
			return 0, err
		}
		cw, ch := w.CanvasSize()
		if height {
			return ch, nil
		}
		return cw, nil
	})
	return strconv.Itoa(n), err
}

func windowCanvasWidth(c *call) (string, error) { return canvasSize(c, false) }
func windowCanvasHeight(c *call) (string, error) { return canvasSize(c, true) }

func screenSize(c *call, height bool) (string, error) {
	if err := c.End(); err != nil {
		return "", err
	}
	w, h, err := platform.ScreenSize(c.b.platform)
	if err != nil {
		return "", protocol.Native(err)
	}
	if height {
		return strconv.Itoa(h), nil
	}
	return strconv.Itoa(w), nil
}

func screenWidth(c *call) (string, error) { return screenSize(c, false) }
func screenHeight(c *call) (string, error) { return screenSize(c, true) }

func exitGraphics(c *call) (string, error) {
	if err := c.End(); err != nil {
		return "", err
	}
	c.b.logger.Info("exit requested by client")
	c.b.opts.Exit(0)
	return "", nil
}
