package window

import (
	"errors"
	"image/color"
	"testing"

	"github.com/1broseidon/splbe/internal/imagecodec"
	"github.com/1broseidon/splbe/internal/platform"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/widget"
)

type harness struct {
	win     *Window
	backend *platform.Headless
	events  []protocol.Event
	theme   *widget.Theme
}

func newHarness(t *testing.T, width, height int, root *scene.Object) *harness {
	t.Helper()
	h := &harness{backend: platform.NewHeadless(0, 0), theme: widget.DefaultTheme(nil)}
	win, err := New(Options{
		ID:      "w1",
		Width:   width,
		Height:  height,
		Root:    root,
		Backend: h.backend,
		Theme:   h.theme,
		Emit:    func(e protocol.Event) { h.events = append(h.events, e) },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.win = win
	return h
}

func (h *harness) surface() *platform.HeadlessSurface {
	return h.win.Surface().(*platform.HeadlessSurface)
}

func (h *harness) types() []protocol.EventType {
	out := make([]protocol.EventType, len(h.events))
	for i, e := range h.events {
		out[i] = e.Type
	}
	return out
}

func TestNew_MountsAndClose(t *testing.T) {
	root := scene.NewRootCompound()
	b := scene.NewInteractor(widget.NewButton(widget.DefaultTheme(nil), "Go"))
	if err := root.Add(b); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	h := newHarness(t, 200, 100, root)

	if !h.win.Canvas().Mounted(b) || b.MountedOn() != h.win.Canvas() {
		t.Fatal("expected button mounted on the canvas")
	}
	if Of(b) != h.win {
		t.Fatal("expected Of to find the window")
	}
	if !h.surface().Visible() || h.surface().Title() != "w1" {
		t.Fatalf("expected visible surface titled w1, got %v %q", h.surface().Visible(), h.surface().Title())
	}
	if w, ht := h.win.CanvasSize(); w != 200 || ht != 100 {
		t.Fatalf("expected canvas 200x100, got %dx%d", w, ht)
	}

	h.win.Close()
	if !h.win.Closed() || !h.surface().Closed() {
		t.Fatal("expected window and surface closed")
	}
	if len(h.win.Canvas().Widgets()) != 0 || b.MountedOn() != nil || root.Host() != nil {
		t.Fatal("expected close to unmount everything")
	}
	h.win.Close()
}

func TestRegions_DockAndUndock(t *testing.T) {
	root := scene.NewRootCompound()
	b := scene.NewInteractor(widget.NewButton(widget.DefaultTheme(nil), "Go"))
	_ = root.Add(b)
	h := newHarness(t, 200, 200, root)

	if err := h.win.AddToRegion(b, North); err != nil {
		t.Fatalf("AddToRegion() error: %v", err)
	}
	if h.win.Canvas().Mounted(b) || !b.Docked() {
		t.Fatal("expected docked button off the canvas")
	}
	if r, ok := h.win.RegionOf(b); !ok || r != North {
		t.Fatalf("expected button in NORTH, got %v %v", r, ok)
	}
	_, bh := b.Size()
	if w, ht := h.win.Size(); w != 200 || ht != 200+int(bh+0.999) {
		t.Fatalf("expected window to grow by the row, got %dx%d", w, ht)
	}
	if sw, sh := h.surface().Size(); sw != 200 || sh <= 200 {
		t.Fatalf("expected surface resized, got %dx%d", sw, sh)
	}
	if w, ht := h.win.CanvasSize(); w != 200 || ht != 200 {
		t.Fatalf("expected canvas unchanged, got %dx%d", w, ht)
	}

	if err := h.win.AddToRegion(b, South); err != nil {
		t.Fatalf("AddToRegion() error: %v", err)
	}
	if len(h.win.RegionItems(North)) != 0 || len(h.win.RegionItems(South)) != 1 {
		t.Fatal("expected move between regions")
	}

	if h.win.RemoveFromRegion(b, North) {
		t.Fatal("expected removal from the wrong region to fail")
	}
	if !h.win.RemoveFromRegion(b, South) {
		t.Fatal("expected removal from SOUTH")
	}
	if !h.win.Canvas().Mounted(b) || b.Docked() {
		t.Fatal("expected undocked button back on the canvas")
	}

	if err := h.win.AddToRegion(scene.NewRect(1, 1), East); err == nil {
		t.Fatal("expected shapes rejected")
	}
}

func TestRegions_Layout(t *testing.T) {
	var regions [4]region
	a := scene.NewRect(20, 10)
	b := scene.NewRect(30, 16)
	regions[North].items = []*scene.Object{a, b}
	regions[North].align = AlignStart
	c := scene.NewRect(40, 50)
	regions[West].items = []*scene.Object{c}

	l := arrange(100, 80, &regions)
	if l.width != 140 || l.height != 96 {
		t.Fatalf("expected 140x96, got %dx%d", l.width, l.height)
	}
	if l.canvasX != 40 || l.canvasY != 16 {
		t.Fatalf("expected canvas at 40,16, got %v,%v", l.canvasX, l.canvasY)
	}
	if l.items[0].x != rowGap || l.items[1].x != rowGap+20+rowGap {
		t.Fatalf("unexpected row positions %v %v", l.items[0].x, l.items[1].x)
	}
	if l.items[0].y != 3 {
		t.Fatalf("expected shorter item centered at 3, got %v", l.items[0].y)
	}
	if l.items[2].y != 16+15 {
		t.Fatalf("expected column centered at 31, got %v", l.items[2].y)
	}

	regions[West].align = ParseAlignment(West, "bottom")
	l = arrange(100, 80, &regions)
	if l.items[2].y != 16+30 {
		t.Fatalf("expected column at the bottom, got %v", l.items[2].y)
	}
}

func TestParseRegionAndAlignment(t *testing.T) {
	if r, err := ParseRegion("east"); err != nil || r != East {
		t.Fatalf("expected EAST, got %v %v", r, err)
	}
	if _, err := ParseRegion("middle"); err == nil {
		t.Fatal("expected unknown region error")
	}
	tests := []struct {
		region Region
		name   string
		want   Alignment
	}{
		{North, "LEFT", AlignStart},
		{South, "right", AlignEnd},
		{North, "TOP", AlignCenter},
		{East, "TOP", AlignStart},
		{West, "BOTTOM", AlignEnd},
		{West, "LEFT", AlignCenter},
	}
	for _, tt := range tests {
		if got := ParseAlignment(tt.region, tt.name); got != tt.want {
			t.Fatalf("ParseAlignment(%v, %q) = %v, want %v", tt.region, tt.name, got, tt.want)
		}
	}
}

func TestComposite_OffscreenAndScene(t *testing.T) {
	root := scene.NewRootCompound()
	blue := scene.NewRect(10, 10)
	blue.SetLocation(50, 50)
	blue.SetFilled(true)
	blue.SetColor(color.NRGBA{0, 0, 255, 255})
	_ = root.Add(blue)
	h := newHarness(t, 100, 100, root)

	red := scene.NewRect(10, 10)
	red.SetLocation(5, 5)
	red.SetFilled(true)
	red.SetColor(color.NRGBA{255, 0, 0, 255})
	if err := h.win.Draw(red); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}

	img, err := h.win.Composite()
	if err != nil {
		t.Fatalf("Composite() error: %v", err)
	}
	if r, g, b, _ := img.At(9, 9).RGBA(); r>>8 < 200 || g>>8 > 50 || b>>8 > 50 {
		t.Fatalf("expected red offscreen pixel, got %d %d %d", r>>8, g>>8, b>>8)
	}
	if r, g, b, _ := img.At(55, 55).RGBA(); b>>8 < 200 || r>>8 > 50 || g>>8 > 50 {
		t.Fatalf("expected blue scene pixel, got %d %d %d", r>>8, g>>8, b>>8)
	}

	h.win.Clear()
	img, _ = h.win.Composite()
	if r, g, b, _ := img.At(9, 9).RGBA(); r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Fatalf("expected cleared offscreen, got %d %d %d", r>>8, g>>8, b>>8)
	}
	if r, _, b, _ := img.At(55, 55).RGBA(); b>>8 < 200 || r>>8 > 50 {
		t.Fatal("expected clear to keep the scene")
	}

	hidden := scene.NewRect(10, 10)
	hidden.SetFilled(true)
	hidden.SetVisible(false)
	_ = h.win.Draw(hidden)
	img, _ = h.win.Composite()
	if r, g, b, _ := img.At(3, 3).RGBA(); r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Fatal("expected hidden object not drawn")
	}
}

func TestRepaint_Presents(t *testing.T) {
	h := newHarness(t, 50, 40, scene.NewRootCompound())
	if _, n := h.surface().Frame(); n == 0 {
		t.Fatal("expected a frame after showing the window")
	}
	if err := h.win.Repaint(); err != nil {
		t.Fatalf("Repaint() error: %v", err)
	}
	img, _ := h.surface().Frame()
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
		t.Fatalf("expected 50x40 frame, got %v", b)
	}
}

func TestInvalidate_Coalesces(t *testing.T) {
	var queued []func()
	root := scene.NewRootCompound()
	win, err := New(Options{
		ID:      "w1",
		Width:   10,
		Height:  10,
		Root:    root,
		Backend: platform.NewHeadless(0, 0),
		Post: func(fn func()) error {
			queued = append(queued, fn)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	win.Invalidate()
	win.Invalidate()
	if len(queued) != 1 {
		t.Fatalf("expected one pending repaint, got %d", len(queued))
	}
	queued[0]()
	if win.PaintCount() != 1 {
		t.Fatalf("expected one paint, got %d", win.PaintCount())
	}
	win.Invalidate()
	if len(queued) != 2 {
		t.Fatalf("expected a new repaint after flush, got %d", len(queued))
	}
}

func TestMouse_CanvasEvents(t *testing.T) {
	h := newHarness(t, 100, 100, scene.NewRootCompound())

	h.win.HandleMouse(protocol.MousePressed, 10, 20, protocol.ModButton1)
	h.win.HandleMouse(protocol.MouseReleased, 10, 20, 0)
	want := []protocol.EventType{protocol.MousePressed, protocol.MouseReleased, protocol.MouseClicked}
	if got := h.types(); len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("expected press, release, click, got %v", got)
	}
	if e := h.events[0]; e.Source != "w1" || e.X != 10 || e.Y != 20 || e.Modifiers != protocol.ModButton1 {
		t.Fatalf("unexpected event %+v", e)
	}

	h.events = nil
	h.win.HandleMouse(protocol.MousePressed, 10, 20, 0)
	h.win.HandleMouse(protocol.MouseDragged, 30, 20, 0)
	h.win.HandleMouse(protocol.MouseReleased, 30, 20, 0)
	if got := h.types(); len(got) != 3 || got[2] != protocol.MouseReleased {
		t.Fatalf("expected no click after a drag, got %v", got)
	}
}

func TestMouse_CanvasOffsetByRegion(t *testing.T) {
	root := scene.NewRootCompound()
	b := scene.NewInteractor(widget.NewButton(widget.DefaultTheme(nil), "Go"))
	_ = root.Add(b)
	h := newHarness(t, 100, 100, root)
	_ = h.win.AddToRegion(b, North)
	lay := h.win.layout()

	h.win.HandleMouse(protocol.MouseMoved, 10, lay.canvasY+5, 0)
	if len(h.events) != 1 || h.events[0].Y != 5 {
		t.Fatalf("expected canvas-relative y 5, got %+v", h.events)
	}
}

func TestMouse_ButtonConsumesClick(t *testing.T) {
	root := scene.NewRootCompound()
	btn := widget.NewButton(widget.DefaultTheme(nil), "Go")
	fired := 0
	btn.SetOnAction(func() { fired++ })
	b := scene.NewInteractor(btn)
	b.SetLocation(10, 10)
	_ = root.Add(b)
	h := newHarness(t, 200, 100, root)

	h.win.HandleMouse(protocol.MousePressed, 15, 15, 0)
	h.win.HandleMouse(protocol.MouseReleased, 15, 15, 0)
	if fired != 1 {
		t.Fatalf("expected button action, got %d", fired)
	}
	if len(h.events) != 0 {
		t.Fatalf("expected no canvas events, got %v", h.types())
	}
}

func TestKeys_FocusRouting(t *testing.T) {
	root := scene.NewRootCompound()
	field := widget.NewTextField(widget.DefaultTheme(nil), 10)
	f := scene.NewInteractor(field)
	f.SetLocation(0, 50)
	_ = root.Add(f)
	h := newHarness(t, 200, 100, root)

	h.win.HandleKey(protocol.KeyTyped, 'a', 0, 0)
	if len(h.events) != 1 || h.events[0].Type != protocol.KeyTyped || h.events[0].KeyChar != 'a' {
		t.Fatalf("expected key event for the canvas, got %+v", h.events)
	}

	h.win.HandleMouse(protocol.MousePressed, 5, 55, 0)
	h.win.HandleMouse(protocol.MouseReleased, 5, 55, 0)
	if h.win.Focus() != f {
		t.Fatal("expected the text field focused")
	}
	h.events = nil
	h.win.HandleKey(protocol.KeyTyped, 'x', 0, 0)
	if field.Text() != "x" || len(h.events) != 0 {
		t.Fatalf("expected key typed into the field, got %q and %d events", field.Text(), len(h.events))
	}

	h.win.HandleMouse(protocol.MousePressed, 150, 10, 0)
	if h.win.Focus() != nil {
		t.Fatal("expected a canvas press to take focus back")
	}

	h.win.HandleMouse(protocol.MouseReleased, 150, 10, 0)
	f.RemoveFromParent()
	if h.win.Focus() != nil || h.win.Canvas().Mounted(f) {
		t.Fatal("expected removal to unmount")
	}
}

func TestResize_ByUser(t *testing.T) {
	h := newHarness(t, 100, 100, scene.NewRootCompound())
	h.win.HandleResize(300, 250)
	if w, ht := h.win.CanvasSize(); w != 300 || ht != 250 {
		t.Fatalf("expected canvas 300x250, got %dx%d", w, ht)
	}
	if len(h.events) != 1 || h.events[0].Type != protocol.WindowResized {
		t.Fatalf("expected windowResized, got %v", h.types())
	}
	h.win.HandleResize(300, 250)
	if len(h.events) != 1 {
		t.Fatal("expected no event when the size is unchanged")
	}
}

func TestCloseRequested(t *testing.T) {
	root := scene.NewRootCompound()
	h := &harness{backend: platform.NewHeadless(0, 0)}
	var closed *Window
	win, err := New(Options{
		ID:      "w1",
		Width:   10,
		Height:  10,
		Root:    root,
		Backend: h.backend,
		OnClose: func(w *Window) {
			closed = w
			w.Close()
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.win = win

	h.surface().Sink().CloseRequested()
	if closed != win || !win.Closed() {
		t.Fatal("expected OnClose to run and close the window")
	}
	h.surface().Sink().CloseRequested()
	h.surface().Sink().Mouse(protocol.MousePressed, 1, 1, 0)
}

func TestNew_RejectsOversizedCanvas(t *testing.T) {
	root := scene.NewRootCompound()
	_, err := New(Options{
		ID:      "huge",
		Width:   200000,
		Height:  200000,
		Root:    root,
		Backend: platform.NewHeadless(0, 0),
	})
	if !errors.Is(err, imagecodec.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if root.Host() != nil {
		t.Fatal("expected root left unhosted")
	}
}
