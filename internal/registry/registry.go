// Package registry maps client-chosen ids to live back-end objects.
//
// The registry is read from the session goroutine and written from the UI
// goroutine, so every table is guarded by its own RWMutex. A miss returns the
// zero value and false; callers decide whether that is a no-op or an error.
package registry

import (
	"sort"
	"sync"

	"github.com/1broseidon/splbe/internal/scene"
)

// Table is an id-keyed map safe for concurrent use.
type Table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewTable returns an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[string]T)}
}

// Define stores v under id and returns the previous value, if any.
func (t *Table[T]) Define(id string, v T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	old, ok := t.items[id]
	t.items[id] = v
	return old, ok
}

// Get returns the value stored under id.
func (t *Table[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[id]
	return v, ok
}

// Delete removes id and returns what was stored there.
func (t *Table[T]) Delete(id string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[id]
	delete(t.items, id)
	return v, ok
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// IDs returns every id in sorted order.
func (t *Table[T]) IDs() []string {
	t.mu.RLock()
	ids := make([]string, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	t.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Registry holds the back-end's five id spaces. W, T and S are the window,
// timer and sound types, left generic so this package stays below the
// packages that define them.
type Registry[W, T, S any] struct {
	Objects *Table[*scene.Object]
	Windows *Table[W]
	Timers  *Table[T]
	Sounds  *Table[S]

	mu      sync.RWMutex
	sources map[any]string
}

// New returns an empty registry.
func New[W, T, S any]() *Registry[W, T, S] {
	return &Registry[W, T, S]{
		Objects: NewTable[*scene.Object](),
		Windows: NewTable[W](),
		Timers:  NewTable[T](),
		Sounds:  NewTable[S](),
		sources: make(map[any]string),
	}
}

// DefineObject registers o under id, returning any object it replaces.
func (r *Registry[W, T, S]) DefineObject(id string, o *scene.Object) (*scene.Object, bool) {
	return r.Objects.Define(id, o)
}

// Object looks up an object.
func (r *Registry[W, T, S]) Object(id string) (*scene.Object, bool) {
	return r.Objects.Get(id)
}

// DeleteObject unregisters an object.
func (r *Registry[W, T, S]) DeleteObject(id string) (*scene.Object, bool) {
	return r.Objects.Delete(id)
}

// DefineWindow registers a window.
func (r *Registry[W, T, S]) DefineWindow(id string, w W) (W, bool) { return r.Windows.Define(id, w) }

// Window looks up a window.
func (r *Registry[W, T, S]) Window(id string) (W, bool) { return r.Windows.Get(id) }

// DeleteWindow unregisters a window.
func (r *Registry[W, T, S]) DeleteWindow(id string) (W, bool) { return r.Windows.Delete(id) }

// DefineTimer registers a timer.
func (r *Registry[W, T, S]) DefineTimer(id string, t T) (T, bool) { return r.Timers.Define(id, t) }

// Timer looks up a timer.
func (r *Registry[W, T, S]) Timer(id string) (T, bool) { return r.Timers.Get(id) }

// DeleteTimer unregisters a timer.
func (r *Registry[W, T, S]) DeleteTimer(id string) (T, bool) { return r.Timers.Delete(id) }

// DefineSound registers a sound.
func (r *Registry[W, T, S]) DefineSound(id string, s S) (S, bool) { return r.Sounds.Define(id, s) }

// Sound looks up a sound.
func (r *Registry[W, T, S]) Sound(id string) (S, bool) { return r.Sounds.Get(id) }

// DeleteSound unregisters a sound.
func (r *Registry[W, T, S]) DeleteSound(id string) (S, bool) { return r.Sounds.Delete(id) }

// DefineSource records that events raised by src belong to id. src must be
// comparable; widgets and timers are pointers.
func (r *Registry[W, T, S]) DefineSource(src any, id string) {
	r.mu.Lock()
	r.sources[src] = id
	r.mu.Unlock()
}

// SourceOf returns the id events from src are reported under.
func (r *Registry[W, T, S]) SourceOf(src any) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sources[src]
	return id, ok
}

// DeleteSource forgets src.
func (r *Registry[W, T, S]) DeleteSource(src any) {
	r.mu.Lock()
	delete(r.sources, src)
	r.mu.Unlock()
}
