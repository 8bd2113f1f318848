package widget

import (
	"image"
	"image/draw"

	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/imagecodec"
	"github.com/1broseidon/splbe/internal/render"
)

// PixelBuffer is a mutable RGB image shown as an interactor.
type PixelBuffer struct {
	base
	img        *image.NRGBA
	background uint32
	cached     *gg.ImageBuf
}

// NewPixelBuffer returns a w by h buffer filled with background (0xRRGGBB).
func NewPixelBuffer(theme *Theme, w, h int, background uint32) *PixelBuffer {
	p := &PixelBuffer{base: newBase(theme), background: background}
	p.img = image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	p.Fill(background)
	return p
}

// Image returns the pixels. Callers must not modify them.
func (p *PixelBuffer) Image() image.Image { return p.img }

// Bounds returns the buffer size in pixels.
func (p *PixelBuffer) Bounds() (w, h int) { return p.img.Rect.Dx(), p.img.Rect.Dy() }

// InBounds reports whether (x, y) is a valid pixel.
func (p *PixelBuffer) InBounds(x, y int) bool {
	return image.Pt(x, y).In(p.img.Rect)
}

// Fill sets every pixel to rgb.
func (p *PixelBuffer) Fill(rgb uint32) {
	draw.Draw(p.img, p.img.Rect, image.NewUniform(render.RGB(rgb)), image.Point{}, draw.Src)
	p.cached = nil
}

// FillRegion sets the pixels of the rectangle, clipped to the buffer.
func (p *PixelBuffer) FillRegion(x, y, w, h int, rgb uint32) {
	r := image.Rect(x, y, x+w, y+h).Intersect(p.img.Rect)
	draw.Draw(p.img, r, image.NewUniform(render.RGB(rgb)), image.Point{}, draw.Src)
	p.cached = nil
}

// SetRGB sets one pixel. It reports false if (x, y) is outside the buffer.
func (p *PixelBuffer) SetRGB(x, y int, rgb uint32) bool {
	if !p.InBounds(x, y) {
		return false
	}
	p.img.SetNRGBA(x, y, render.RGB(rgb))
	p.cached = nil
	return true
}

// RGB returns the packed color of one pixel.
func (p *PixelBuffer) RGB(x, y int) uint32 {
	return render.PackRGB(p.img.NRGBAAt(x, y))
}

// Resize replaces the buffer with a w by h one filled with the background
// color. With retain, the old pixels are copied to the top-left corner.
func (p *PixelBuffer) Resize(w, h int, retain bool) {
	old := p.img
	p.img = image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	p.Fill(p.background)
	if retain {
		draw.Draw(p.img, p.img.Rect, old, image.Point{}, draw.Src)
	}
	p.cached = nil
}

// SetImage replaces the pixels with a copy of img.
func (p *PixelBuffer) SetImage(img image.Image) {
	p.img = imagecodec.Clone(img)
	p.cached = nil
}

// PreferredSize is the buffer size.
func (p *PixelBuffer) PreferredSize() (float64, float64) {
	w, h := p.Bounds()
	return float64(w), float64(h)
}

// Paint draws the buffer scaled to the widget size.
func (p *PixelBuffer) Paint(dc *gg.Context, w, h float64) error {
	if p.img.Rect.Empty() {
		return nil
	}
	if p.cached == nil {
		p.cached = gg.ImageBufFromImage(p.img)
	}
	dc.DrawImageEx(p.cached, gg.DrawImageOptions{
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpNearest,
		Opacity:       1,
	})
	return nil
}
