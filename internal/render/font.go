package render

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Font is a decoded font description such as "SansSerif-Bold-18".
type Font struct {
	Monospace bool
	Bold      bool
	Italic    bool
	Size      float64
}

// DefaultFont is used for labels and widgets that never set one.
var DefaultFont = Font{Size: 12}

// ParseFont decodes "Family-Style-Size". Every part is optional; omitted
// parts come from def. Families map onto the bundled Go fonts: monospaced
// names (Monospaced, Courier, Mono) pick Go Mono, all others Go Regular.
func ParseFont(spec string, def Font) (Font, error) {
	f := def
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return f, nil
	}
	for i, part := range strings.Split(spec, "-") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if size, err := strconv.ParseFloat(part, 64); err == nil {
			if size <= 0 {
				return Font{}, fmt.Errorf("invalid font size in %q", spec)
			}
			f.Size = size
			continue
		}
		switch strings.ToLower(part) {
		case "plain":
			f.Bold, f.Italic = false, false
		case "bold":
			f.Bold, f.Italic = true, false
		case "italic":
			f.Bold, f.Italic = false, true
		case "bolditalic", "italicbold":
			f.Bold, f.Italic = true, true
		default:
			if i != 0 {
				return Font{}, fmt.Errorf("invalid font style %q in %q", part, spec)
			}
			f.Monospace = isMonospaceFamily(part)
		}
	}
	return f, nil
}

func isMonospaceFamily(name string) bool {
	switch strings.ToLower(name) {
	case "monospaced", "monospace", "mono", "courier", "courier new", "dialoginput":
		return true
	}
	return false
}

func (f Font) ttf() []byte {
	switch {
	case f.Monospace && f.Bold && f.Italic:
		return gomonobolditalic.TTF
	case f.Monospace && f.Bold:
		return gomonobold.TTF
	case f.Monospace && f.Italic:
		return gomonoitalic.TTF
	case f.Monospace:
		return gomono.TTF
	case f.Bold && f.Italic:
		return gobolditalic.TTF
	case f.Bold:
		return gobold.TTF
	case f.Italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

type variant struct{ mono, bold, italic bool }

type faceKey struct {
	v    variant
	size float64
}

// FontBook parses each bundled font once and caches faces by size.
type FontBook struct {
	mu      sync.Mutex
	def     Font
	sources map[variant]*text.FontSource
	faces   map[faceKey]text.Face
}

// NewFontBook returns a FontBook whose default font is def.
func NewFontBook(def Font) *FontBook {
	if def.Size <= 0 {
		def.Size = DefaultFont.Size
	}
	return &FontBook{
		def:     def,
		sources: make(map[variant]*text.FontSource),
		faces:   make(map[faceKey]text.Face),
	}
}

// Default returns the default font.
func (b *FontBook) Default() Font { return b.def }

// Face returns a face for spec, which may be empty.
func (b *FontBook) Face(spec string) (text.Face, error) {
	f, err := ParseFont(spec, b.def)
	if err != nil {
		return nil, err
	}
	return b.FaceFor(f)
}

// FaceFor returns a face for f.
func (b *FontBook) FaceFor(f Font) (text.Face, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := variant{f.Monospace, f.Bold, f.Italic}
	key := faceKey{v, f.Size}
	if face, ok := b.faces[key]; ok {
		return face, nil
	}
	src, ok := b.sources[v]
	if !ok {
		var err error
		src, err = text.NewFontSource(f.ttf())
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		b.sources[v] = src
	}
	face := src.Face(f.Size)
	b.faces[key] = face
	return face, nil
}
