package platform

import (
	"image"
	"testing"
)

func TestHeadless_ScreenSize(t *testing.T) {
	w, h, err := ScreenSize(NewHeadless(0, 0))
	if err != nil {
		t.Fatalf("ScreenSize() error: %v", err)
	}
	if w != DefaultScreenWidth || h != DefaultScreenHeight {
		t.Fatalf("expected default screen, got %dx%d", w, h)
	}

	w, h, _ = ScreenSize(NewHeadless(800, 600))
	if w != 800 || h != 600 {
		t.Fatalf("expected 800x600, got %dx%d", w, h)
	}
}

func TestHeadless_SurfaceLifecycle(t *testing.T) {
	b := NewHeadless(0, 0)
	s, err := b.NewSurface(SurfaceOptions{Title: "one", Width: 10, Height: 20, Resizable: true}, nil)
	if err != nil {
		t.Fatalf("NewSurface() error: %v", err)
	}
	hs := s.(*HeadlessSurface)

	if err := s.SetTitle("two"); err != nil || hs.Title() != "two" {
		t.Fatalf("expected title two, got %q (%v)", hs.Title(), err)
	}
	if hs.Visible() {
		t.Fatal("expected new surface hidden")
	}
	_ = s.SetVisible(true)
	_ = s.Resize(30, 40)
	if w, h := hs.Size(); w != 30 || h != 40 || !hs.Visible() {
		t.Fatalf("unexpected state %dx%d visible=%v", w, h, hs.Visible())
	}

	img := image.NewRGBA(image.Rect(0, 0, 30, 40))
	if err := s.Present(img); err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	if got, n := hs.Frame(); got != img || n != 1 {
		t.Fatalf("expected stored frame, got %v (%d)", got, n)
	}

	_ = b.Close()
	if !hs.Closed() {
		t.Fatal("expected backend close to close surfaces")
	}
	if err := s.Present(img); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := b.NewSurface(SurfaceOptions{}, nil); err != ErrClosed {
		t.Fatalf("expected ErrClosed from closed backend, got %v", err)
	}
}

func TestOpen_HeadlessKinds(t *testing.T) {
	t.Setenv("DISPLAY", "")
	for _, kind := range []string{"", KindAuto, KindHeadless} {
		b, err := Open(kind, "", nil)
		if err != nil {
			t.Fatalf("Open(%q) error: %v", kind, err)
		}
		if b.Name() != "headless" {
			t.Fatalf("Open(%q) = %s, want headless", kind, b.Name())
		}
	}
	if _, err := Open("wayland", "", nil); err == nil {
		t.Fatal("expected unknown platform error")
	}
}
