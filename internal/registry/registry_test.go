package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/1broseidon/splbe/internal/scene"
)

type win struct{ title string }

func TestCreateDeleteLookup(t *testing.T) {
	r := New[*win, int, string]()

	rect := scene.NewRect(10, 10)
	if _, replaced := r.DefineObject("r1", rect); replaced {
		t.Fatal("expected fresh id")
	}
	if got, ok := r.Object("r1"); !ok || got != rect {
		t.Fatalf("expected r1 to resolve")
	}

	other := scene.NewOval(1, 1)
	old, replaced := r.DefineObject("r1", other)
	if !replaced || old != rect {
		t.Fatalf("expected define to report the replaced object")
	}

	if _, ok := r.DeleteObject("r1"); !ok {
		t.Fatal("expected delete to find r1")
	}
	if _, ok := r.Object("r1"); ok {
		t.Fatal("expected r1 to be gone")
	}
	if _, ok := r.DeleteObject("r1"); ok {
		t.Fatal("expected second delete to miss")
	}
}

func TestSeparateIDSpaces(t *testing.T) {
	r := New[*win, int, string]()
	r.DefineObject("x", scene.NewRect(1, 1))
	r.DefineWindow("x", &win{title: "w"})
	r.DefineTimer("x", 5)
	r.DefineSound("x", "beep.wav")

	r.DeleteObject("x")
	if w, ok := r.Window("x"); !ok || w.title != "w" {
		t.Fatal("expected window x unaffected")
	}
	if v, ok := r.Timer("x"); !ok || v != 5 {
		t.Fatal("expected timer x unaffected")
	}
	if s, ok := r.Sound("x"); !ok || s != "beep.wav" {
		t.Fatal("expected sound x unaffected")
	}
	r.DeleteWindow("x")
	r.DeleteTimer("x")
	r.DeleteSound("x")
	if r.Windows.Len()+r.Timers.Len()+r.Sounds.Len() != 0 {
		t.Fatal("expected all tables empty")
	}
}

func TestSources(t *testing.T) {
	r := New[*win, int, string]()
	w := &win{}
	r.DefineSource(w, "b1")
	if id, ok := r.SourceOf(w); !ok || id != "b1" {
		t.Fatalf("expected b1, got %q", id)
	}
	r.DeleteSource(w)
	if _, ok := r.SourceOf(w); ok {
		t.Fatal("expected source forgotten")
	}
}

func TestIDsSorted(t *testing.T) {
	tab := NewTable[int]()
	for _, id := range []string{"c", "a", "b"} {
		tab.Define(id, 0)
	}
	ids := tab.IDs()
	if fmt.Sprint(ids) != "[a b c]" {
		t.Fatalf("expected [a b c], got %v", ids)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tab := NewTable[int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("%d-%d", g, i)
				tab.Define(id, i)
				tab.Get(id)
				if i%2 == 0 {
					tab.Delete(id)
				}
			}
		}(g)
	}
	wg.Wait()
	if tab.Len() != 8*100 {
		t.Fatalf("expected 800 entries, got %d", tab.Len())
	}
}
