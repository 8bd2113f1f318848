package backend

import (
	"errors"
	"image/color"

	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/render"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/window"
)

// create posts the registration of a new object built by mk.
func create(c *call, id string, mk func() (*scene.Object, error)) (string, error) {
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		o, err := mk()
		if err != nil {
			return err
		}
		return c.b.define(id, o)
	})
}

func topCompoundCreate(c *call) (string, error) {
	id := c.String()
	return create(c, id, func() (*scene.Object, error) { return scene.NewRootCompound(), nil })
}

func compoundCreate(c *call) (string, error) {
	id := c.String()
	return create(c, id, func() (*scene.Object, error) { return scene.NewCompound(), nil })
}

func compoundAdd(c *call) (string, error) {
	pid, cid := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.wait(func() error {
		parent, err := c.object(pid)
		if err != nil {
			return err
		}
		child, err := c.object(cid)
		if err != nil {
			return err
		}
		if old := child.Parent(); old != nil {
			c.b.changed(old)
		}
		if err := parent.Add(child); err != nil {
			if errors.Is(err, scene.ErrNotCompound) {
				return protocol.Mismatch(c.name, pid)
			}
			return err
		}
		c.b.changed(child)
		return nil
	})
}

// objectRemove detaches an object from its parent. It stays registered.
func objectRemove(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		o, err := c.object(id)
		if err != nil {
			return err
		}
		if w := window.Of(o); w != nil {
			w.Invalidate()
		}
		o.RemoveFromParent()
		return nil
	})
}

// objectDelete unregisters an object and takes it off every surface.
func objectDelete(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		o, ok := c.b.reg.DeleteObject(id)
		if !ok {
			return protocol.NotFound("object", id)
		}
		c.b.discard(o)
		return nil
	})
}

func objectSetLocation(c *call) (string, error) {
	id, x, y := c.String(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		o.SetLocation(x, y)
		return nil
	})
}

func objectSetSize(c *call) (string, error) {
	id, w, h := c.String(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetSize(w, h), id)
	})
}

func objectSetColor(c *call) (string, error) {
	id, spec := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	col, err := render.ParseColor(spec)
	if err != nil {
		return "", err
	}
	if col == nil {
		col = color.Black
	}
	return "", c.edit(id, func(o *scene.Object) error {
		o.SetColor(col)
		return nil
	})
}

// objectSetFillColor sets the fill color; an empty color falls back to
// the outline color.
func objectSetFillColor(c *call) (string, error) {
	id, spec := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	col, err := render.ParseColor(spec)
	if err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetFillColor(col), id)
	})
}

func objectSetFilled(c *call) (string, error) {
	id, v := c.String(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetFilled(v), id)
	})
}

func objectSetVisible(c *call) (string, error) {
	id, v := c.String(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		o.SetVisible(v)
		return nil
	})
}

func objectSetLineWidth(c *call) (string, error) {
	id, width := c.String(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		o.SetLineWidth(width)
		return nil
	})
}

func objectRotate(c *call) (string, error) {
	id, deg := c.String(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		o.Rotate(deg)
		return nil
	})
}

func objectScale(c *call) (string, error) {
	id, sx, sy := c.String(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		o.Scale(sx, sy)
		return nil
	})
}

// zorder adapts a restacking method to a command.
func zorder(fn func(*scene.Object)) func(*call) (string, error) {
	return func(c *call) (string, error) {
		id := c.String()
		if err := c.End(); err != nil {
			return "", err
		}
		return "", c.edit(id, func(o *scene.Object) error {
			fn(o)
			return nil
		})
	}
}

func objectBounds(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	r, err := ask(c, func() (scene.Rect, error) {
		o, err := c.object(id)
		if err != nil {
			return scene.Rect{}, err
		}
		return o.Bounds(), nil
	})
	if err != nil {
		return "", err
	}
	return protocol.FormatRectangle(r.X, r.Y, r.Width, r.Height), nil
}

func objectContains(c *call) (string, error) {
	id, x, y := c.String(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	in, err := ask(c, func() (bool, error) {
		o, err := c.object(id)
		if err != nil {
			return false, err
		}
		return o.Contains(x, y), nil
	})
	if err != nil {
		return "", err
	}
	return protocol.FormatBool(in), nil
}
