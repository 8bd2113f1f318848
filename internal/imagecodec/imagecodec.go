// Package imagecodec loads, saves and scales images for GImage and
// GBufferedImage.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/xor-gate/goexif2/exif"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrFormat is returned for files that are not a supported image format.
	ErrFormat = errors.New("unsupported image format")
	// ErrNotFound is returned when no search location holds the file.
	ErrNotFound = errors.New("image file not found")
	// ErrTooLarge is returned by CheckSize.
	ErrTooLarge = errors.New("image too large")
)

// MaxPixels bounds every pixel buffer the client can ask for: 256 MiB of
// NRGBA.
const MaxPixels = 1 << 26

// CheckSize rejects negative sizes and sizes above MaxPixels.
func CheckSize(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("invalid size %dx%d", w, h)
	}
	if w > MaxPixels || h > MaxPixels || w*h > MaxPixels {
		return fmt.Errorf("%dx%d: %w", w, h, ErrTooLarge)
	}
	return nil
}

// Quality selects the scaling kernel.
type Quality int

const (
	Fast Quality = iota
	Best
)

var (
	fastScaler = xdraw.ApproxBiLinear
	bestScaler = xdraw.CatmullRom
)

// Codec resolves image names against a list of search directories.
type Codec struct {
	paths []string
}

// New returns a Codec searching paths, in order, after the name itself.
func New(paths []string) *Codec {
	return &Codec{paths: paths}
}

// Resolve returns the first existing file among name and each search
// directory joined with name.
func (c *Codec) Resolve(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		for _, dir := range c.paths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Load resolves and decodes name. JPEG and TIFF images carrying an EXIF
// orientation are turned upright.
func (c *Codec) Load(name string) (image.Image, error) {
	path, err := c.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Decode(data)
}

// Decode decodes an image held in memory.
func Decode(data []byte) (image.Image, error) {
	ct := http.DetectContentType(data)
	switch ct {
	case "image/gif", "image/jpeg", "image/png", "image/webp", "image/bmp":
	default:
		// DetectContentType does not sniff TIFF.
		if !isTIFF(data) {
			return nil, fmt.Errorf("load: cannot handle %s: %w", ct, ErrFormat)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load: decode image: %w", err)
	}
	if ct == "image/jpeg" || isTIFF(data) {
		img = orient(img, orientation(data))
	}
	return img, nil
}

func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

// orientation reads the EXIF orientation tag, defaulting to 1 (upright).
func orientation(data []byte) int {
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// orient applies one of the eight EXIF orientations.
func orient(src image.Image, o int) image.Image {
	if o == 1 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	transpose := o >= 5
	dw, dh := w, h
	if transpose {
		dw, dh = h, w
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// Save encodes img to path, choosing the format from the extension.
func Save(img image.Image, path string) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", "":
		err = png.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case ".gif":
		err = gif.Encode(&buf, img, nil)
	case ".bmp":
		err = bmp.Encode(&buf, img)
	case ".tif", ".tiff":
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("save %s: %w", path, ErrFormat)
	}
	if err != nil {
		return fmt.Errorf("save %s: encode: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Scale returns img resampled to w by h pixels.
func Scale(img image.Image, w, h int, q Quality) *image.NRGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if img == nil || w == 0 || h == 0 {
		return dst
	}
	scaler := fastScaler
	if q == Best {
		scaler = bestScaler
	}
	scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Clone copies img into a fresh NRGBA buffer anchored at the origin.
func Clone(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
