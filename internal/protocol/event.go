package protocol

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Event classes, used as masks by GEvent.getNextEvent and waitForEvent.
const (
	ActionEvent = 0x010
	KeyEvent    = 0x020
	TimerEvent  = 0x040
	WindowEvent = 0x080
	MouseEvent  = 0x100
	ClickEvent  = 0x200
	AnyEvent    = 0x3F0
)

// EventType identifies a concrete event. The class bits are part of the value.
type EventType int

const (
	WindowClosed     EventType = WindowEvent + 1
	WindowResized    EventType = WindowEvent + 2
	LastWindowClosed EventType = WindowEvent + 3
	ActionPerformed  EventType = ActionEvent + 1
	MouseClicked     EventType = MouseEvent + 1
	MousePressed     EventType = MouseEvent + 2
	MouseReleased    EventType = MouseEvent + 3
	MouseMoved       EventType = MouseEvent + 4
	MouseDragged     EventType = MouseEvent + 5
	KeyPressed       EventType = KeyEvent + 1
	KeyReleased      EventType = KeyEvent + 2
	KeyTyped         EventType = KeyEvent + 3
	TimerTicked      EventType = TimerEvent + 1
)

var eventNames = map[EventType]string{
	WindowClosed:     "windowClosed",
	WindowResized:    "windowResized",
	LastWindowClosed: "lastWindowClosed",
	ActionPerformed:  "actionPerformed",
	MouseClicked:     "mouseClicked",
	MousePressed:     "mousePressed",
	MouseReleased:    "mouseReleased",
	MouseMoved:       "mouseMoved",
	MouseDragged:     "mouseDragged",
	KeyPressed:       "keyPressed",
	KeyReleased:      "keyReleased",
	KeyTyped:         "keyTyped",
	TimerTicked:      "timerTicked",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknownEvent"
}

// Class returns the event class bits of t.
func (t EventType) Class() int { return int(t) & AnyEvent }

// Modifier bits carried by mouse and key events.
const (
	ModShift   = 1 << 0
	ModCtrl    = 1 << 1
	ModMeta    = 1 << 2
	ModAlt     = 1 << 3
	ModButton1 = 1 << 4
	ModButton2 = 1 << 5
	ModButton3 = 1 << 6
)

// Key codes reported in key events. Printable keys use their upper-case
// character code.
const (
	KeyBackspace = 8
	KeyTab       = 9
	KeyEnter     = 10
	KeyShift     = 16
	KeyControl   = 17
	KeyAlt       = 18
	KeyEscape    = 27
	KeyPageUp    = 33
	KeyPageDown  = 34
	KeyEnd       = 35
	KeyHome      = 36
	KeyLeft      = 37
	KeyUp        = 38
	KeyRight     = 39
	KeyDown      = 40
	KeyDelete    = 127
	KeyUndefined = 0
)

// CharUndefined is the key character of keys that do not type anything.
const CharUndefined = 0xFFFF

// Event is an asynchronous notification for the client.
type Event struct {
	Type      EventType
	Source    string
	Time      int64 // milliseconds since the Unix epoch
	Modifiers int
	X, Y      float64
	KeyChar   int
	KeyCode   int
	Command   string
}

// Now returns the current time in event units.
func Now() int64 { return time.Now().UnixMilli() }

// Matches reports whether the event is selected by mask.
func (e Event) Matches(mask int) bool {
	if e.Type.Class()&mask != 0 {
		return true
	}
	return e.Type == MouseClicked && mask&ClickEvent != 0
}

// String formats the event body as the client parses it, for example
// mousePressed("w1", 1700000000000, 0, 10, 20).
func (e Event) String() string {
	var sb strings.Builder
	sb.WriteString(e.Type.String())
	sb.WriteByte('(')
	switch e.Type.Class() {
	case MouseEvent:
		sb.WriteString(strconv.Quote(e.Source))
		sb.WriteString(", ")
		sb.WriteString(strconv.FormatInt(e.Time, 10))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(e.Modifiers))
		sb.WriteString(", ")
		sb.WriteString(FormatFloat(e.X))
		sb.WriteString(", ")
		sb.WriteString(FormatFloat(e.Y))
	case KeyEvent:
		sb.WriteString(strconv.Quote(e.Source))
		sb.WriteString(", ")
		sb.WriteString(strconv.FormatInt(e.Time, 10))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(e.Modifiers))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(e.KeyChar))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(e.KeyCode))
	case ActionEvent:
		sb.WriteString(strconv.Quote(e.Source))
		sb.WriteString(", ")
		sb.WriteString(strconv.Quote(e.Command))
		sb.WriteString(", ")
		sb.WriteString(strconv.FormatInt(e.Time, 10))
	default:
		if e.Type != LastWindowClosed {
			sb.WriteString(strconv.Quote(e.Source))
			sb.WriteString(", ")
			sb.WriteString(strconv.FormatInt(e.Time, 10))
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// EventQueue buffers events for clients that poll with GEvent.getNextEvent.
type EventQueue struct {
	mu      sync.Mutex
	events  []Event
	changed chan struct{}
	limit   int
}

// NewEventQueue returns a queue holding at most limit events; the oldest
// events are dropped beyond that. A limit of zero means unbounded.
func NewEventQueue(limit int) *EventQueue {
	return &EventQueue{changed: make(chan struct{}), limit: limit}
}

// Push appends an event and wakes waiters.
func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	if q.limit > 0 && len(q.events) > q.limit {
		q.events = q.events[len(q.events)-q.limit:]
	}
	close(q.changed)
	q.changed = make(chan struct{})
	q.mu.Unlock()
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Next removes and returns the oldest event matching mask.
func (q *EventQueue) Next(mask int) (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.takeLocked(mask)
}

func (q *EventQueue) takeLocked(mask int) (Event, bool) {
	for i, e := range q.events {
		if e.Matches(mask) {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return e, true
		}
	}
	return Event{}, false
}

// Wait blocks until an event matching mask is available or ctx is done.
func (q *EventQueue) Wait(ctx context.Context, mask int) (Event, error) {
	for {
		q.mu.Lock()
		if e, ok := q.takeLocked(mask); ok {
			q.mu.Unlock()
			return e, nil
		}
		changed := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-changed:
		}
	}
}
