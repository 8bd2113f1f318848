package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":     {0, 0, 0, 255},
	"blue":      {0, 0, 255, 255},
	"cyan":      {0, 255, 255, 255},
	"darkgray":  {64, 64, 64, 255},
	"gray":      {128, 128, 128, 255},
	"green":     {0, 255, 0, 255},
	"lightgray": {192, 192, 192, 255},
	"magenta":   {255, 0, 255, 255},
	"orange":    {255, 200, 0, 255},
	"pink":      {255, 175, 175, 255},
	"red":       {255, 0, 0, 255},
	"white":     {255, 255, 255, 255},
	"yellow":    {255, 255, 0, 255},
}

// ParseColor decodes a color name ("RED", "light_gray") or a hex string
// ("#rrggbb", or "#aarrggbb" with a leading alpha byte). The empty string
// decodes to nil, meaning "use the default".
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "#") || strings.HasPrefix(s, "0x") {
		hex := strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		switch len(hex) {
		case 6:
			return RGB(uint32(v)), nil
		case 8:
			return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}, nil
		default:
			return nil, fmt.Errorf("invalid color %q", s)
		}
	}
	key := strings.ToLower(strings.NewReplacer("_", "", " ", "").Replace(s))
	if c, ok := namedColors[key]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown color %q", s)
}

// RGB converts a packed 0xRRGGBB value to an opaque color.
func RGB(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// PackRGB returns the 0xRRGGBB value of c.
func PackRGB(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return uint32(n.R)<<16 | uint32(n.G)<<8 | uint32(n.B)
}

// brighter and darker follow the usual AWT bevel shading.
func brighter(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	up := func(v uint8) uint8 {
		if v == 0 {
			return 3
		}
		f := float64(v) / 0.7
		if f > 255 {
			f = 255
		}
		return uint8(f)
	}
	return color.NRGBA{R: up(n.R), G: up(n.G), B: up(n.B), A: n.A}
}

func darker(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.NRGBA{R: uint8(float64(n.R) * 0.7), G: uint8(float64(n.G) * 0.7), B: uint8(float64(n.B) * 0.7), A: n.A}
}
