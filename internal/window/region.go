package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/splbe/internal/scene"
)

// Region is one of the four border areas around the canvas.
type Region int

const (
	North Region = iota
	South
	East
	West
)

var regionNames = [...]string{"NORTH", "SOUTH", "EAST", "WEST"}

func (r Region) String() string {
	if r < North || r > West {
		return fmt.Sprintf("Region(%d)", int(r))
	}
	return regionNames[r]
}

// ParseRegion accepts a region name in any case.
func ParseRegion(s string) (Region, error) {
	for i, name := range regionNames {
		if strings.EqualFold(s, name) {
			return Region(i), nil
		}
	}
	return 0, fmt.Errorf("unknown region %q", s)
}

// Alignment positions the contents of a region along its long axis.
type Alignment int

const (
	AlignCenter Alignment = iota
	// AlignStart is LEFT for NORTH and SOUTH, TOP for EAST and WEST.
	AlignStart
	// AlignEnd is RIGHT for NORTH and SOUTH, BOTTOM for EAST and WEST.
	AlignEnd
)

// ParseAlignment maps an alignment name for region r. Names that do not
// apply to the region's axis center it.
func ParseAlignment(r Region, s string) Alignment {
	horizontal := r == North || r == South
	switch {
	case horizontal && strings.EqualFold(s, "LEFT"), !horizontal && strings.EqualFold(s, "TOP"):
		return AlignStart
	case horizontal && strings.EqualFold(s, "RIGHT"), !horizontal && strings.EqualFold(s, "BOTTOM"):
		return AlignEnd
	}
	return AlignCenter
}

// Horizontal gap between the items of a NORTH or SOUTH row.
const rowGap = 5

type region struct {
	items []*scene.Object
	align Alignment
}

func (g *region) index(o *scene.Object) int {
	for i, it := range g.items {
		if it == o {
			return i
		}
	}
	return -1
}

func (g *region) remove(o *scene.Object) bool {
	i := g.index(o)
	if i < 0 {
		return false
	}
	g.items = append(g.items[:i], g.items[i+1:]...)
	return true
}

// itemSize is the space an item takes in a region.
func itemSize(o *scene.Object) (w, h float64) {
	w, h = o.Size()
	return math.Max(w, 0), math.Max(h, 0)
}

// extent returns the size of a region laid out as a row or a column.
func (g *region) extent(row bool) (w, h float64) {
	visible := 0
	for _, o := range g.items {
		if !o.Visible() {
			continue
		}
		visible++
		iw, ih := itemSize(o)
		if row {
			w += iw
			h = math.Max(h, ih)
		} else {
			w = math.Max(w, iw)
			h += ih
		}
	}
	if visible == 0 {
		return 0, 0
	}
	if row {
		w += rowGap * float64(visible+1)
	}
	return math.Ceil(w), math.Ceil(h)
}

// placed is a laid out item in window coordinates.
type placed struct {
	obj        *scene.Object
	x, y, w, h float64
}

func (p placed) contains(x, y float64) bool {
	return x >= p.x && y >= p.y && x < p.x+p.w && y < p.y+p.h
}

// layout is the arrangement of a window's parts.
type layout struct {
	width, height    int
	canvasX, canvasY float64
	canvasW, canvasH float64
	items            []placed
}

func (l layout) inCanvas(x, y float64) bool {
	return x >= l.canvasX && y >= l.canvasY && x < l.canvasX+l.canvasW && y < l.canvasY+l.canvasH
}

// arrange lays out the canvas and the four regions. The canvas keeps its
// size; the window grows to fit the regions around it.
func arrange(canvasW, canvasH int, regions *[4]region) layout {
	cw, ch := float64(canvasW), float64(canvasH)
	nw, nh := regions[North].extent(true)
	sw, sh := regions[South].extent(true)
	ew, eh := regions[East].extent(false)
	ww, wh := regions[West].extent(false)

	midH := math.Max(ch, math.Max(eh, wh))
	width := math.Max(ww+cw+ew, math.Max(nw, sw))
	height := nh + midH + sh

	l := layout{
		width:   max(int(width), 1),
		height:  max(int(height), 1),
		canvasX: ww,
		canvasY: nh,
		canvasW: cw,
		canvasH: ch,
	}
	l.items = appendRow(l.items, &regions[North], 0, width, nw, nh)
	l.items = appendRow(l.items, &regions[South], nh+midH, width, sw, sh)
	l.items = appendColumn(l.items, &regions[West], 0, nh, ww, midH, wh)
	l.items = appendColumn(l.items, &regions[East], ww+cw, nh, ew, midH, eh)
	return l
}

func appendRow(out []placed, g *region, top, width, rowW, rowH float64) []placed {
	x := rowGap + (width-rowW)/2
	switch g.align {
	case AlignStart:
		x = rowGap
	case AlignEnd:
		x = width - rowW + rowGap
	}
	for _, o := range g.items {
		if !o.Visible() {
			continue
		}
		w, h := itemSize(o)
		out = append(out, placed{obj: o, x: math.Round(x), y: math.Round(top + (rowH-h)/2), w: w, h: h})
		x += w + rowGap
	}
	return out
}

func appendColumn(out []placed, g *region, left, top, colW, height, colH float64) []placed {
	y := top + (height-colH)/2
	switch g.align {
	case AlignStart:
		y = top
	case AlignEnd:
		y = top + height - colH
	}
	for _, o := range g.items {
		if !o.Visible() {
			continue
		}
		w, h := itemSize(o)
		out = append(out, placed{obj: o, x: math.Round(left + (colW-w)/2), y: math.Round(y), w: w, h: h})
		y += h
	}
	return out
}
