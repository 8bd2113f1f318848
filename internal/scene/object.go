// Package scene holds the graphical object model: shapes, labels, images,
// interactors and the compounds that own them.
//
// An object's variant is fixed when it is constructed. Operations that only
// make sense for some variants check a capability (Fillable, Resizable)
// derived from the kind rather than inspecting concrete types.
//
// Nothing in this package is safe for concurrent use. All mutation happens
// on the UI goroutine.
package scene

import (
	"image"
	"image/color"
	"math"
)

// Kind identifies the variant of an Object.
type Kind int

const (
	KindRect Kind = iota + 1
	KindRoundRect
	Kind3DRect
	KindOval
	KindLine
	KindPolygon
	KindArc
	KindLabel
	KindImage
	KindCompound
	KindInteractor
)

var kindNames = map[Kind]string{
	KindRect:       "GRect",
	KindRoundRect:  "GRoundRect",
	Kind3DRect:     "G3DRect",
	KindOval:       "GOval",
	KindLine:       "GLine",
	KindPolygon:    "GPolygon",
	KindArc:        "GArc",
	KindLabel:      "GLabel",
	KindImage:      "GImage",
	KindCompound:   "GCompound",
	KindInteractor: "GInteractor",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "GObject"
}

// Widget is the native control behind an interactor.
type Widget interface {
	PreferredSize() (w, h float64)
}

// LabelMetrics are the font measurements of a label's current text.
type LabelMetrics struct {
	Ascent  float64
	Descent float64
	Width   float64
}

// DefaultRoundRectArc is the corner diameter used when none is given.
const DefaultRoundRectArc = 10

// lineTolerance is how far from a line a point may be and still hit it.
const lineTolerance = 1.5

// Object is a node of the scene graph.
type Object struct {
	kind Kind

	x, y          float64
	width, height float64
	angle         float64 // degrees, counterclockwise
	sx, sy        float64

	visible   bool
	color     color.Color
	fillColor color.Color
	filled    bool
	lineWidth float64

	parent *Object

	// round rect
	arc float64
	// 3D rect
	raised bool
	// line end point relative to (x, y)
	dx, dy float64
	// polygon vertices relative to (x, y)
	vertices []Point
	// arc angles in degrees
	start, sweep float64
	// label
	text    string
	font    string
	metrics LabelMetrics
	// image
	img image.Image

	// compound
	children []*Object
	host     Host
	root     bool

	// interactor
	widget    Widget
	command   string
	mountedOn Host
	docked    bool
}

func newObject(kind Kind) *Object {
	return &Object{
		kind:      kind,
		sx:        1,
		sy:        1,
		visible:   true,
		color:     color.Black,
		lineWidth: 1,
	}
}

// NewRect creates a rectangle.
func NewRect(w, h float64) *Object {
	o := newObject(KindRect)
	o.width, o.height = w, h
	return o
}

// NewRoundRect creates a rectangle with rounded corners of diameter arc.
func NewRoundRect(w, h, arc float64) *Object {
	o := newObject(KindRoundRect)
	o.width, o.height = w, h
	if arc <= 0 {
		arc = DefaultRoundRectArc
	}
	o.arc = arc
	return o
}

// New3DRect creates a beveled rectangle.
func New3DRect(w, h float64, raised bool) *Object {
	o := newObject(Kind3DRect)
	o.width, o.height = w, h
	o.raised = raised
	return o
}

// NewOval creates an ellipse inscribed in a w by h box.
func NewOval(w, h float64) *Object {
	o := newObject(KindOval)
	o.width, o.height = w, h
	return o
}

// NewLine creates a line from (x1, y1) to (x2, y2).
func NewLine(x1, y1, x2, y2 float64) *Object {
	o := newObject(KindLine)
	o.x, o.y = x1, y1
	o.dx, o.dy = x2-x1, y2-y1
	return o
}

// NewPolygon creates an empty polygon.
func NewPolygon() *Object {
	return newObject(KindPolygon)
}

// NewArc creates an elliptical arc inscribed in a w by h frame.
func NewArc(w, h, start, sweep float64) *Object {
	o := newObject(KindArc)
	o.width, o.height = w, h
	o.start, o.sweep = start, sweep
	return o
}

// NewLabel creates a text label. Metrics must be supplied with
// SetLabelMetrics before bounds are meaningful.
func NewLabel(text string) *Object {
	o := newObject(KindLabel)
	o.text = text
	return o
}

// NewImage creates an image object sized to img.
func NewImage(img image.Image) *Object {
	o := newObject(KindImage)
	o.img = img
	if img != nil {
		b := img.Bounds()
		o.width, o.height = float64(b.Dx()), float64(b.Dy())
	}
	return o
}

// NewCompound creates an empty compound.
func NewCompound() *Object {
	return newObject(KindCompound)
}

// NewRootCompound creates a compound meant to be the root of a window.
// A root compound cannot be added to another compound.
func NewRootCompound() *Object {
	o := newObject(KindCompound)
	o.root = true
	return o
}

// NewInteractor wraps a widget. The interactor takes the widget's preferred
// size.
func NewInteractor(w Widget) *Object {
	o := newObject(KindInteractor)
	o.widget = w
	if w != nil {
		o.width, o.height = w.PreferredSize()
	}
	return o
}

// Kind returns the variant of o.
func (o *Object) Kind() Kind { return o.kind }

// IsCompound reports whether o can hold children.
func (o *Object) IsCompound() bool { return o.kind == KindCompound }

// IsInteractor reports whether o wraps a widget.
func (o *Object) IsInteractor() bool { return o.kind == KindInteractor }

// IsRoot reports whether o is a window root compound.
func (o *Object) IsRoot() bool { return o.root }

// Fillable reports whether o has an interior that can be filled.
func (o *Object) Fillable() bool {
	switch o.kind {
	case KindRect, KindRoundRect, Kind3DRect, KindOval, KindPolygon, KindArc:
		return true
	}
	return false
}

// Resizable reports whether SetSize applies to o.
func (o *Object) Resizable() bool {
	switch o.kind {
	case KindRect, KindRoundRect, Kind3DRect, KindOval, KindImage, KindInteractor:
		return true
	}
	return false
}

// Parent returns the compound holding o, or nil.
func (o *Object) Parent() *Object { return o.parent }

// Location returns o's position in its parent's coordinate space.
func (o *Object) Location() (x, y float64) { return o.x, o.y }

// Size returns the nominal width and height of o.
func (o *Object) Size() (w, h float64) {
	switch o.kind {
	case KindLabel:
		return o.metrics.Width, o.metrics.Ascent + o.metrics.Descent
	case KindLine:
		return math.Abs(o.dx), math.Abs(o.dy)
	case KindPolygon, KindCompound:
		b := o.localBounds()
		return b.Width, b.Height
	}
	return o.width, o.height
}

// Visible reports whether o is drawn.
func (o *Object) Visible() bool { return o.visible }

// Color returns the stroke color.
func (o *Object) Color() color.Color { return o.color }

// FillColor returns the fill color, falling back to the stroke color.
func (o *Object) FillColor() color.Color {
	if o.fillColor == nil {
		return o.color
	}
	return o.fillColor
}

// Filled reports whether the interior is painted.
func (o *Object) Filled() bool { return o.filled }

// LineWidth returns the stroke width.
func (o *Object) LineWidth() float64 { return o.lineWidth }

// Rotation returns the accumulated rotation in degrees.
func (o *Object) Rotation() float64 { return o.angle }

// ScaleFactors returns the accumulated scale.
func (o *Object) ScaleFactors() (sx, sy float64) { return o.sx, o.sy }

// Corner returns the round-rect corner diameter.
func (o *Object) Corner() float64 { return o.arc }

// Raised reports whether a 3D rect is drawn raised.
func (o *Object) Raised() bool { return o.raised }

// EndPoint returns a line's end point in parent coordinates.
func (o *Object) EndPoint() (x, y float64) { return o.x + o.dx, o.y + o.dy }

// Vertices returns a copy of the polygon vertices relative to its location.
func (o *Object) Vertices() []Point {
	out := make([]Point, len(o.vertices))
	copy(out, o.vertices)
	return out
}

// ArcAngles returns the start and sweep of an arc in degrees.
func (o *Object) ArcAngles() (start, sweep float64) { return o.start, o.sweep }

// Text returns a label's text.
func (o *Object) Text() string { return o.text }

// Font returns a label's font description.
func (o *Object) Font() string { return o.font }

// LabelMetrics returns the metrics last recorded for a label.
func (o *Object) LabelMetrics() LabelMetrics { return o.metrics }

// Image returns the pixels of an image object.
func (o *Object) Image() image.Image { return o.img }

// Widget returns the widget of an interactor.
func (o *Object) Widget() Widget { return o.widget }

// ActionCommand returns the command string reported with action events.
func (o *Object) ActionCommand() string { return o.command }

// SetActionCommand sets the command string reported with action events.
func (o *Object) SetActionCommand(cmd string) { o.command = cmd }

// SetColor sets the stroke color.
func (o *Object) SetColor(c color.Color) {
	o.color = c
}

// SetFillColor sets the fill color. It reports false if o is not fillable.
func (o *Object) SetFillColor(c color.Color) bool {
	if !o.Fillable() {
		return false
	}
	o.fillColor = c
	return true
}

// SetFilled sets whether the interior is painted. It reports false if o is
// not fillable.
func (o *Object) SetFilled(filled bool) bool {
	if !o.Fillable() {
		return false
	}
	o.filled = filled
	return true
}

// SetLineWidth sets the stroke width.
func (o *Object) SetLineWidth(w float64) {
	o.lineWidth = w
}

// Rotate adds theta degrees of counterclockwise rotation.
func (o *Object) Rotate(theta float64) {
	o.angle += theta
}

// Scale multiplies the current scale factors.
func (o *Object) Scale(sx, sy float64) {
	o.sx *= sx
	o.sy *= sy
}

// SetRaised sets the bevel direction of a 3D rect.
func (o *Object) SetRaised(raised bool) bool {
	if o.kind != Kind3DRect {
		return false
	}
	o.raised = raised
	return true
}

// SetStartPoint moves a line's start point, keeping the end point fixed.
func (o *Object) SetStartPoint(x, y float64) bool {
	if o.kind != KindLine {
		return false
	}
	o.dx += o.x - x
	o.dy += o.y - y
	o.x, o.y = x, y
	return true
}

// SetEndPoint moves a line's end point.
func (o *Object) SetEndPoint(x, y float64) bool {
	if o.kind != KindLine {
		return false
	}
	o.dx = x - o.x
	o.dy = y - o.y
	return true
}

// AddVertex appends a vertex relative to the polygon's location.
func (o *Object) AddVertex(x, y float64) bool {
	if o.kind != KindPolygon {
		return false
	}
	o.vertices = append(o.vertices, Point{X: x, Y: y})
	return true
}

// SetStartAngle sets an arc's start angle.
func (o *Object) SetStartAngle(deg float64) bool {
	if o.kind != KindArc {
		return false
	}
	o.start = deg
	return true
}

// SetSweepAngle sets an arc's sweep.
func (o *Object) SetSweepAngle(deg float64) bool {
	if o.kind != KindArc {
		return false
	}
	o.sweep = deg
	return true
}

// SetFrameRectangle sets the bounding box of an arc's full ellipse.
func (o *Object) SetFrameRectangle(x, y, w, h float64) bool {
	if o.kind != KindArc {
		return false
	}
	o.width, o.height = w, h
	o.SetLocation(x, y)
	return true
}

// SetText sets a label's text. Metrics must be refreshed afterwards.
func (o *Object) SetText(text string) bool {
	if o.kind != KindLabel {
		return false
	}
	o.text = text
	return true
}

// SetFont sets a label's font description. Metrics must be refreshed
// afterwards.
func (o *Object) SetFont(font string) bool {
	if o.kind != KindLabel {
		return false
	}
	o.font = font
	return true
}

// SetLabelMetrics records the measurements of a label's text.
func (o *Object) SetLabelMetrics(m LabelMetrics) {
	o.metrics = m
}

// SetImage replaces the pixels of an image object and resets its size.
func (o *Object) SetImage(img image.Image) bool {
	if o.kind != KindImage {
		return false
	}
	o.img = img
	if img != nil {
		b := img.Bounds()
		o.width, o.height = float64(b.Dx()), float64(b.Dy())
	}
	return true
}

// SetLocation moves o within its parent. If o is showing, descendant
// interactors are repositioned on their canvas.
func (o *Object) SetLocation(x, y float64) {
	o.x, o.y = x, y
	relocate(o)
}

// SetSize resizes o. It reports false if o is not resizable.
func (o *Object) SetSize(w, h float64) bool {
	if !o.Resizable() {
		return false
	}
	o.width, o.height = w, h
	relocate(o)
	return true
}

// SetVisible shows or hides o.
func (o *Object) SetVisible(visible bool) {
	o.visible = visible
	relocate(o)
}

// Transform returns the mapping from o's local space to its parent's.
func (o *Object) Transform() Matrix {
	m := Translation(o.x, o.y)
	if o.angle != 0 {
		m = m.Mul(Rotation(-o.angle * math.Pi / 180))
	}
	if o.sx != 1 || o.sy != 1 {
		m = m.Mul(Scaling(o.sx, o.sy))
	}
	return m
}

// CanvasTransform returns the mapping from o's local space to the canvas,
// accumulated over every ancestor.
func (o *Object) CanvasTransform() Matrix {
	m := o.Transform()
	for p := o.parent; p != nil; p = p.parent {
		m = p.Transform().Mul(m)
	}
	return m
}

// CanvasLocation returns the absolute canvas position of o's origin.
func (o *Object) CanvasLocation() (x, y float64) {
	p := o.CanvasTransform().Apply(Point{})
	return p.X, p.Y
}

// localBounds returns o's extent in its own coordinate space, before its
// transform is applied.
func (o *Object) localBounds() Rect {
	switch o.kind {
	case KindLine:
		return boundsOf([]Point{{0, 0}, {o.dx, o.dy}})
	case KindPolygon:
		return boundsOf(o.vertices)
	case KindLabel:
		return Rect{X: 0, Y: -o.metrics.Ascent, Width: o.metrics.Width, Height: o.metrics.Ascent + o.metrics.Descent}
	case KindArc:
		return o.arcBounds()
	case KindCompound:
		var out Rect
		first := true
		for _, c := range o.children {
			b := c.Bounds()
			if first {
				out, first = b, false
				continue
			}
			out = out.Union(b)
		}
		return out
	}
	return Rect{Width: o.width, Height: o.height}
}

func (o *Object) arcBounds() Rect {
	rx, ry := o.width/2, o.height/2
	cx, cy := rx, ry
	pts := []Point{o.arcPoint(o.start), o.arcPoint(o.start + o.sweep)}
	for a := 0.0; a < 360; a += 90 {
		if angleInSweep(a, o.start, o.sweep) {
			pts = append(pts, o.arcPoint(a))
		}
	}
	if o.filled {
		pts = append(pts, Point{cx, cy})
	}
	return boundsOf(pts)
}

func (o *Object) arcPoint(deg float64) Point {
	rad := deg * math.Pi / 180
	rx, ry := o.width/2, o.height/2
	return Point{X: rx + rx*math.Cos(rad), Y: ry - ry*math.Sin(rad)}
}

// Bounds returns the bounding box of o in its parent's coordinate space.
func (o *Object) Bounds() Rect {
	local := o.localBounds()
	if o.kind == KindCompound && len(o.children) == 0 {
		return Rect{X: o.x, Y: o.y}
	}
	return transformRect(o.Transform(), local)
}

// Contains reports whether the point (x, y), in the parent's coordinate
// space, lies inside o.
func (o *Object) Contains(x, y float64) bool {
	inv, ok := o.Transform().Invert()
	if !ok {
		return false
	}
	p := inv.Apply(Point{X: x, Y: y})

	switch o.kind {
	case KindOval:
		rx, ry := o.width/2, o.height/2
		if rx <= 0 || ry <= 0 {
			return false
		}
		nx, ny := (p.X-rx)/rx, (p.Y-ry)/ry
		return nx*nx+ny*ny <= 1
	case KindLine:
		return distanceToSegment(p, Point{}, Point{o.dx, o.dy}) <= lineTolerance
	case KindPolygon:
		return polygonContains(o.vertices, p)
	case KindArc:
		return o.arcContains(p)
	case KindCompound:
		for i := len(o.children) - 1; i >= 0; i-- {
			c := o.children[i]
			if c.visible && c.Contains(p.X, p.Y) {
				return true
			}
		}
		return false
	}
	return o.localBounds().Contains(p)
}

func (o *Object) arcContains(p Point) bool {
	rx, ry := o.width/2, o.height/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	nx, ny := (p.X-rx)/rx, (ry-p.Y)/ry
	r := math.Hypot(nx, ny)
	angle := math.Atan2(ny, nx) * 180 / math.Pi
	if !angleInSweep(angle, o.start, o.sweep) {
		return false
	}
	if o.filled {
		return r <= 1
	}
	// Unfilled arcs are hit near the curve only.
	tol := lineTolerance / math.Min(rx, ry)
	return math.Abs(r-1) <= tol
}
