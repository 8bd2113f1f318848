package backend

import (
	"fmt"
	"image"

	"github.com/1broseidon/splbe/internal/imagecodec"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/widget"
)

// bufferCreate makes a pixel buffer at (x, y) filled with rgb.
func bufferCreate(c *call) (string, error) {
	id, x, y := c.String(), c.Float(), c.Float()
	w, h, rgb := c.Int(), c.Int(), c.Int()
	if err := imagecodec.CheckSize(w, h); err != nil {
		return "", c.errorf("%w", err)
	}
	return create(c, id, func() (*scene.Object, error) {
		o := scene.NewInteractor(widget.NewPixelBuffer(c.b.theme, w, h, uint32(rgb)))
		o.SetLocation(x, y)
		return o, nil
	})
}

// fitBuffer sizes the interactor to its pixels.
func fitBuffer(o *scene.Object, p *widget.PixelBuffer) {
	w, h := p.Bounds()
	o.SetSize(float64(w), float64(h))
}

func bufferFill(c *call) (string, error) {
	id, rgb := c.String(), c.Int()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, p *widget.PixelBuffer) error {
		p.Fill(uint32(rgb))
		return nil
	})
}

func bufferFillRegion(c *call) (string, error) {
	id, x, y, w, h, rgb := c.String(), c.Int(), c.Int(), c.Int(), c.Int(), c.Int()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, p *widget.PixelBuffer) error {
		p.FillRegion(x, y, w, h, uint32(rgb))
		return nil
	})
}

func bufferSetRGB(c *call) (string, error) {
	id, x, y, rgb := c.String(), c.Int(), c.Int(), c.Int()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", setWidget(c, id, func(_ *scene.Object, p *widget.PixelBuffer) error {
		if !p.SetRGB(x, y, uint32(rgb)) {
			return fmt.Errorf("pixel (%d, %d) outside buffer %q", x, y, id)
		}
		return nil
	})
}

func bufferResize(c *call) (string, error) {
	id, w, h, retain := c.String(), c.Int(), c.Int(), c.Bool()
	if err := c.End(); err != nil {
		return "", err
	}
	if err := imagecodec.CheckSize(w, h); err != nil {
		return "", c.errorf("%w", err)
	}
	return "", setWidget(c, id, func(o *scene.Object, p *widget.PixelBuffer) error {
		p.Resize(w, h, retain)
		fitBuffer(o, p)
		return nil
	})
}

// bufferLoad replaces a buffer's pixels with an image file and answers the
// new size.
func bufferLoad(c *call) (string, error) {
	id, file := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	img, err := c.b.codec.Load(file)
	if err != nil {
		return "", protocol.Native(err)
	}
	err = c.wait(func() error {
		o, p, err := widgetOf[*widget.PixelBuffer](c, id)
		if err != nil {
			return err
		}
		p.SetImage(img)
		fitBuffer(o, p)
		c.b.changed(o)
		return nil
	})
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	return protocol.FormatDimension(float64(b.Dx()), float64(b.Dy())), nil
}

func bufferSave(c *call) (string, error) {
	id, file := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	img, err := ask(c, func() (image.Image, error) {
		_, p, err := widgetOf[*widget.PixelBuffer](c, id)
		if err != nil {
			return nil, err
		}
		return imagecodec.Clone(p.Image()), nil
	})
	if err != nil {
		return "", err
	}
	return "", protocol.Native(imagecodec.Save(img, file))
}
