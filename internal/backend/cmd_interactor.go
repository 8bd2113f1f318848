package backend

import (
	"strconv"

	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/render"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/widget"
)

// createWidget registers a new interactor wrapping the widget mk builds.
func createWidget(c *call, id string, mk func(theme *widget.Theme) scene.Widget) (string, error) {
	return create(c, id, func() (*scene.Object, error) {
		return scene.NewInteractor(mk(c.b.theme)), nil
	})
}

// setWidget posts a change to an interactor whose widget is a T.
func setWidget[T any](c *call, id string, fn func(o *scene.Object, w T) error) error {
	return c.do(func() error {
		o, w, err := widgetOf[T](c, id)
		if err != nil {
			return err
		}
		if err := fn(o, w); err != nil {
			return err
		}
		c.b.changed(o)
		return nil
	})
}

// getWidget reads from an interactor whose widget is a T.
func getWidget[T, V any](c *call, id string, fn func(w T) V) (V, error) {
	return ask(c, func() (V, error) {
		_, w, err := widgetOf[T](c, id)
		if err != nil {
			var zero V
			return zero, err
		}
		return fn(w), nil
	})
}

func interactorSetActionCommand(c *call) (string, error) {
	id, cmd := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		o, err := c.object(id)
		if err != nil {
			return err
		}
		if !o.IsInteractor() {
			return protocol.Mismatch(c.name, id)
		}
		o.SetActionCommand(cmd)
		return nil
	})
}

func interactorSize(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	size, err := ask(c, func() ([2]float64, error) {
		o, err := c.object(id)
		if err != nil {
			return [2]float64{}, err
		}
		if !o.IsInteractor() {
			return [2]float64{}, protocol.Mismatch(c.name, id)
		}
		w, h := o.Size()
		return [2]float64{w, h}, nil
	})
	if err != nil {
		return "", err
	}
	return protocol.FormatDimension(size[0], size[1]), nil
}

// buttonCreate makes a button whose action command is its label.
func buttonCreate(c *call) (string, error) {
	id, label := c.String(), c.String()
	return create(c, id, func() (*scene.Object, error) {
		o := scene.NewInteractor(widget.NewButton(c.b.theme, label))
		o.SetActionCommand(label)
		return o, nil
	})
}

func checkBoxCreate(c *call) (string, error) {
	id, label := c.String(), c.String()
	return createWidget(c, id, func(t *widget.Theme) scene.Widget { return widget.NewCheckBox(t, label) })
}

func checkBoxIsSelected(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	v, err := getWidget(c, id, (*widget.CheckBox).Selected)
	if err != nil {
		return "", err
	}
	return protocol.FormatBool(v), nil
}

func checkBoxSetSelected(c *call) (string, error) {
	id, v := c.String(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.CheckBox) error {
		w.SetSelected(v)
		return nil
	})
}

func sliderCreate(c *call) (string, error) {
	id, lo, hi, v := c.String(), c.Int(), c.Int(), c.Int()
	return createWidget(c, id, func(t *widget.Theme) scene.Widget { return widget.NewSlider(t, lo, hi, v) })
}

func sliderValue(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	v, err := getWidget(c, id, (*widget.Slider).Value)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(v), nil
}

func sliderSetValue(c *call) (string, error) {
	id, v := c.String(), c.Int()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.Slider) error {
		w.SetValue(v)
		return nil
	})
}

func textFieldCreate(c *call) (string, error) {
	id, cols := c.String(), c.Int()
	return createWidget(c, id, func(t *widget.Theme) scene.Widget { return widget.NewTextField(t, cols) })
}

func textFieldText(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return getWidget(c, id, (*widget.TextField).Text)
}

func textFieldSetText(c *call) (string, error) {
	id, text := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.TextField) error {
		w.SetText(text)
		return nil
	})
}

func chooserCreate(c *call) (string, error) {
	id := c.String()
	return createWidget(c, id, func(t *widget.Theme) scene.Widget { return widget.NewChooser(t) })
}

// chooserAddItem appends an item; the chooser widens to fit it.
func chooserAddItem(c *call) (string, error) {
	id, item := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(o *scene.Object, w *widget.Chooser) error {
		w.AddItem(item)
		pw, ph := w.PreferredSize()
		ow, oh := o.Size()
		o.SetSize(max(ow, pw), max(oh, ph))
		return nil
	})
}

func chooserSelectedItem(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return getWidget(c, id, (*widget.Chooser).SelectedItem)
}

func chooserSetSelectedItem(c *call) (string, error) {
	id, item := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.Chooser) error {
		if !w.SetSelectedItem(item) {
			c.b.logger.Debug("chooser item not found", "object", id, "item", item)
		}
		return nil
	})
}

func textAreaCreate(c *call) (string, error) {
	id, w, h := c.String(), c.Float(), c.Float()
	return createWidget(c, id, func(t *widget.Theme) scene.Widget { return widget.NewTextArea(t, w, h) })
}

func textAreaText(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return getWidget(c, id, (*widget.TextArea).Text)
}

func textAreaSetText(c *call) (string, error) {
	id, text := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.TextArea) error {
		w.SetText(text)
		return nil
	})
}

func textAreaSetEditable(c *call) (string, error) {
	id, v := c.String(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.TextArea) error {
		w.SetEditable(v)
		return nil
	})
}

func textAreaSetFont(c *call) (string, error) {
	id, spec := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	font, err := render.ParseFont(spec, c.b.theme.Font)
	if err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.TextArea) error {
		w.SetFont(font)
		return nil
	})
}

func textAreaSetBackground(c *call) (string, error) {
	id, spec := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	col, err := render.ParseColor(spec)
	if err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, w *widget.TextArea) error {
		w.SetBackground(col)
		return nil
	})
}
