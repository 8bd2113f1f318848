package backend

import (
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/scene"
)

func rectCreate(c *call) (string, error) {
	id, w, h := c.String(), c.Float(), c.Float()
	return create(c, id, func() (*scene.Object, error) { return scene.NewRect(w, h), nil })
}

func ovalCreate(c *call) (string, error) {
	id, w, h := c.String(), c.Float(), c.Float()
	return create(c, id, func() (*scene.Object, error) { return scene.NewOval(w, h), nil })
}

func rect3DCreate(c *call) (string, error) {
	id, w, h := c.String(), c.Float(), c.Float()
	raised := false
	if c.More() {
		raised = c.Bool()
	}
	return create(c, id, func() (*scene.Object, error) { return scene.New3DRect(w, h, raised), nil })
}

func rect3DSetRaised(c *call) (string, error) {
	id, v := c.String(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetRaised(v), id)
	})
}

func roundRectCreate(c *call) (string, error) {
	id, w, h := c.String(), c.Float(), c.Float()
	arc := float64(scene.DefaultRoundRectArc)
	if c.More() {
		arc = c.Float()
	}
	return create(c, id, func() (*scene.Object, error) { return scene.NewRoundRect(w, h, arc), nil })
}

func lineCreate(c *call) (string, error) {
	id, x1, y1, x2, y2 := c.String(), c.Float(), c.Float(), c.Float(), c.Float()
	return create(c, id, func() (*scene.Object, error) { return scene.NewLine(x1, y1, x2, y2), nil })
}

func lineSetStartPoint(c *call) (string, error) {
	id, x, y := c.String(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetStartPoint(x, y), id)
	})
}

func lineSetEndPoint(c *call) (string, error) {
	id, x, y := c.String(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetEndPoint(x, y), id)
	})
}

func arcCreate(c *call) (string, error) {
	id, w, h, start, sweep := c.String(), c.Float(), c.Float(), c.Float(), c.Float()
	return create(c, id, func() (*scene.Object, error) { return scene.NewArc(w, h, start, sweep), nil })
}

func arcSetStartAngle(c *call) (string, error) {
	id, deg := c.String(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetStartAngle(deg), id)
	})
}

func arcSetSweepAngle(c *call) (string, error) {
	id, deg := c.String(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetSweepAngle(deg), id)
	})
}

func arcSetFrameRectangle(c *call) (string, error) {
	id, x, y, w, h := c.String(), c.Float(), c.Float(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.SetFrameRectangle(x, y, w, h), id)
	})
}

func polygonCreate(c *call) (string, error) {
	id := c.String()
	return create(c, id, func() (*scene.Object, error) { return scene.NewPolygon(), nil })
}

func polygonAddVertex(c *call) (string, error) {
	id, x, y := c.String(), c.Float(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		return c.require(o.AddVertex(x, y), id)
	})
}

func labelCreate(c *call) (string, error) {
	id, text := c.String(), c.String()
	return create(c, id, func() (*scene.Object, error) {
		o := scene.NewLabel(text)
		if err := c.b.refreshLabel(o); err != nil {
			return nil, err
		}
		return o, nil
	})
}

// labelSetFont changes a label's font. An unusable font leaves the old
// one in place.
func labelSetFont(c *call) (string, error) {
	id, font := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		old := o.Font()
		if !o.SetFont(font) {
			return protocol.Mismatch(c.name, id)
		}
		if err := c.b.refreshLabel(o); err != nil {
			o.SetFont(old)
			return err
		}
		return nil
	})
}

func labelSetLabel(c *call) (string, error) {
	id, text := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.edit(id, func(o *scene.Object) error {
		if !o.SetText(text) {
			return protocol.Mismatch(c.name, id)
		}
		return c.b.refreshLabel(o)
	})
}

// labelMetrics answers a measurement of a label.
func labelMetrics(c *call) (scene.LabelMetrics, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return scene.LabelMetrics{}, err
	}
	return ask(c, func() (scene.LabelMetrics, error) {
		o, err := c.object(id)
		if err != nil {
			return scene.LabelMetrics{}, err
		}
		if o.Kind() != scene.KindLabel {
			return scene.LabelMetrics{}, protocol.Mismatch(c.name, id)
		}
		return o.LabelMetrics(), nil
	})
}

func labelAscent(c *call) (string, error) {
	m, err := labelMetrics(c)
	if err != nil {
		return "", err
	}
	return protocol.FormatFloat(m.Ascent), nil
}

func labelDescent(c *call) (string, error) {
	m, err := labelMetrics(c)
	if err != nil {
		return "", err
	}
	return protocol.FormatFloat(m.Descent), nil
}

func labelSize(c *call) (string, error) {
	m, err := labelMetrics(c)
	if err != nil {
		return "", err
	}
	return protocol.FormatDimension(m.Width, m.Ascent+m.Descent), nil
}

// imageCreate loads an image file and answers its size.
func imageCreate(c *call) (string, error) {
	id, file := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	img, err := c.b.codec.Load(file)
	if err != nil {
		return "", protocol.Native(err)
	}
	o := scene.NewImage(img)
	w, h := o.Size()
	if err := c.wait(func() error { return c.b.define(id, o) }); err != nil {
		return "", err
	}
	return protocol.FormatDimension(w, h), nil
}
