package scene

import "errors"

var (
	// ErrNotCompound is returned when adding to an object that cannot hold
	// children.
	ErrNotCompound = errors.New("object is not a compound")
	// ErrCycle is returned when an add would make a compound its own
	// descendant.
	ErrCycle = errors.New("cannot add a compound to its own subtree")
	// ErrRootCompound is returned when a window root is added elsewhere.
	ErrRootCompound = errors.New("cannot add a window root compound to another compound")
)

// Host is a surface that realizes interactor widgets: a window's canvas or
// one of its border regions. Positions are absolute canvas coordinates.
type Host interface {
	Mount(o *Object, x, y float64)
	Unmount(o *Object)
	Relocate(o *Object, x, y float64)
}

// Children returns a copy of the compound's children, back to front.
func (o *Object) Children() []*Object {
	out := make([]*Object, len(o.children))
	copy(out, o.children)
	return out
}

// Len returns the number of children.
func (o *Object) Len() int { return len(o.children) }

// Host returns the canvas a compound's subtree is showing on, or nil.
func (o *Object) Host() Host { return o.host }

// MountedOn returns the host an interactor's widget is mounted on, or nil.
func (o *Object) MountedOn() Host { return o.mountedOn }

// Attached reports whether o is part of a subtree showing on a canvas.
func (o *Object) Attached() bool {
	for p := o; p != nil; p = p.parent {
		if p.kind == KindCompound {
			return p.host != nil
		}
	}
	return false
}

// Docked reports whether an interactor has been moved into a border region.
func (o *Object) Docked() bool { return o.docked }

// SetDocked marks an interactor as owned by a border region. A docked
// interactor is never mounted on a canvas; undocking it remounts it if its
// subtree is attached.
func (o *Object) SetDocked(docked bool) {
	if !o.IsInteractor() || o.docked == docked {
		return
	}
	if docked {
		if o.mountedOn != nil {
			o.mountedOn.Unmount(o)
			o.mountedOn = nil
		}
		o.docked = true
		return
	}
	o.docked = false
	if o.parent != nil {
		propagate(o, o.parent.host)
	}
}

// SetHost attaches a root compound's subtree to h, or detaches it when h is
// nil. Every interactor below is mounted on or unmounted from h.
func (o *Object) SetHost(h Host) {
	if !o.IsCompound() {
		return
	}
	propagate(o, h)
}

// Add appends child as the frontmost element of the compound, detaching it
// from its previous parent first.
func (o *Object) Add(child *Object) error {
	if !o.IsCompound() {
		return ErrNotCompound
	}
	if child.root {
		return ErrRootCompound
	}
	for p := o; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	if child.parent != nil {
		child.parent.unlink(child)
	}
	o.children = append(o.children, child)
	child.parent = o
	propagate(child, o.host)
	return nil
}

// Remove detaches child from the compound. It reports false if child is
// not a child of o.
func (o *Object) Remove(child *Object) bool {
	if child.parent != o {
		return false
	}
	o.unlink(child)
	propagate(child, nil)
	return true
}

// RemoveFromParent detaches o from its parent, if any.
func (o *Object) RemoveFromParent() {
	if o.parent != nil {
		o.parent.Remove(o)
	}
}

// RemoveAll detaches every child.
func (o *Object) RemoveAll() {
	for len(o.children) > 0 {
		o.Remove(o.children[len(o.children)-1])
	}
}

func (o *Object) unlink(child *Object) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			break
		}
	}
	child.parent = nil
}

func (o *Object) index() int {
	if o.parent == nil {
		return -1
	}
	for i, c := range o.parent.children {
		if c == o {
			return i
		}
	}
	return -1
}

// SendToFront moves o to the end of its parent's child list.
func (o *Object) SendToFront() {
	i := o.index()
	if i < 0 {
		return
	}
	kids := o.parent.children
	copy(kids[i:], kids[i+1:])
	kids[len(kids)-1] = o
}

// SendToBack moves o to the start of its parent's child list.
func (o *Object) SendToBack() {
	i := o.index()
	if i < 0 {
		return
	}
	kids := o.parent.children
	copy(kids[1:i+1], kids[:i])
	kids[0] = o
}

// SendForward swaps o with the sibling in front of it.
func (o *Object) SendForward() {
	i := o.index()
	if i < 0 || i == len(o.parent.children)-1 {
		return
	}
	kids := o.parent.children
	kids[i], kids[i+1] = kids[i+1], kids[i]
}

// SendBackward swaps o with the sibling behind it.
func (o *Object) SendBackward() {
	i := o.index()
	if i <= 0 {
		return
	}
	kids := o.parent.children
	kids[i], kids[i-1] = kids[i-1], kids[i]
}

// Walk calls fn for o and every descendant, depth first, back to front.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.children {
		c.Walk(fn)
	}
}

// Interactors returns every interactor in o's subtree.
func (o *Object) Interactors() []*Object {
	var out []*Object
	o.Walk(func(n *Object) {
		if n.IsInteractor() {
			out = append(out, n)
		}
	})
	return out
}

// propagate brings o's subtree in line with host h: compounds take h as
// their host and interactors are mounted on h at their absolute position, or
// unmounted when h is nil. An interactor already on h is only repositioned,
// and one on a different host is unmounted there first, so a widget is never
// mounted twice.
func propagate(o *Object, h Host) {
	switch o.kind {
	case KindCompound:
		o.host = h
		for _, c := range o.children {
			propagate(c, h)
		}
	case KindInteractor:
		if o.docked {
			return
		}
		if h == nil {
			if o.mountedOn != nil {
				o.mountedOn.Unmount(o)
				o.mountedOn = nil
			}
			return
		}
		x, y := o.CanvasLocation()
		if o.mountedOn == h {
			h.Relocate(o, x, y)
			return
		}
		if o.mountedOn != nil {
			o.mountedOn.Unmount(o)
		}
		h.Mount(o, x, y)
		o.mountedOn = h
	}
}

// relocate repositions every mounted interactor in o's subtree without
// changing mount state.
func relocate(o *Object) {
	switch o.kind {
	case KindCompound:
		if o.host == nil {
			return
		}
		for _, c := range o.children {
			relocate(c)
		}
	case KindInteractor:
		if o.mountedOn != nil {
			x, y := o.CanvasLocation()
			o.mountedOn.Relocate(o, x, y)
		}
	}
}
