package protocol

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingTracer struct {
	mu  sync.Mutex
	out []string
}

func (r *recordingTracer) Inbound(string) {}

func (r *recordingTracer) Outbound(line string) {
	r.mu.Lock()
	r.out = append(r.out, line)
	r.mu.Unlock()
}

func TestWriter_ReplyShapes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	tr := &recordingTracer{}
	w.SetTracer(tr)

	w.OK()
	w.Result(FormatRectangle(5, 5, 30, 40))
	w.Result(FormatDimension(12.5, 0))
	w.Error("window \"w1\": not found")
	w.Result("line one\nline two")

	want := strings.Join([]string{
		"result:ok",
		"result:GRectangle(5, 5, 30, 40)",
		"result:GDimension(12.5, 0)",
		`error:window "w1": not found`,
		`result:line one\nline two`,
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
	if len(tr.out) != 5 {
		t.Fatalf("expected 5 traced lines, got %d", len(tr.out))
	}
}

func TestWriter_ConcurrentLinesNeverInterleave(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	const writers = 8
	const perWriter = 200
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if n%2 == 0 {
					w.Result(fmt.Sprintf("writer-%d-%d", n, j))
				} else {
					w.Event(Event{Type: TimerTicked, Source: fmt.Sprintf("t%d", n), Time: int64(j)})
				}
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != writers*perWriter {
		t.Fatalf("expected %d lines, got %d", writers*perWriter, len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "result:writer-") && !strings.HasPrefix(line, "event:timerTicked(\"t") {
			t.Fatalf("corrupted line %q", line)
		}
	}
}

func TestEvent_Formats(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Type: MousePressed, Source: "w1", Time: 100, Modifiers: ModShift, X: 10, Y: 20.5}, `mousePressed("w1", 100, 1, 10, 20.5)`},
		{Event{Type: KeyTyped, Source: "w1", Time: 7, KeyChar: 'a', KeyCode: 65}, `keyTyped("w1", 7, 0, 97, 65)`},
		{Event{Type: ActionPerformed, Source: "b1", Command: "go", Time: 3}, `actionPerformed("b1", "go", 3)`},
		{Event{Type: TimerTicked, Source: "t1", Time: 9}, `timerTicked("t1", 9)`},
		{Event{Type: WindowClosed, Source: "w1", Time: 1}, `windowClosed("w1", 1)`},
		{Event{Type: LastWindowClosed}, `lastWindowClosed()`},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Fatalf("expected %s, got %s", tt.want, got)
		}
	}
}

func TestEvent_MaskMatching(t *testing.T) {
	click := Event{Type: MouseClicked}
	press := Event{Type: MousePressed}
	if !click.Matches(ClickEvent) {
		t.Fatalf("expected mouseClicked to match CLICK mask")
	}
	if press.Matches(ClickEvent) {
		t.Fatalf("expected mousePressed not to match CLICK mask")
	}
	if !press.Matches(MouseEvent) || !press.Matches(AnyEvent) {
		t.Fatalf("expected mousePressed to match MOUSE and ANY masks")
	}
	if (Event{Type: TimerTicked}).Matches(ActionEvent | KeyEvent) {
		t.Fatalf("expected timer event not to match ACTION|KEY")
	}
}

func TestEventQueue_NextAndWait(t *testing.T) {
	q := NewEventQueue(0)
	q.Push(Event{Type: MouseMoved, Source: "w"})
	q.Push(Event{Type: ActionPerformed, Source: "b"})

	e, ok := q.Next(ActionEvent)
	if !ok || e.Source != "b" {
		t.Fatalf("expected action event from b, got %+v ok=%v", e, ok)
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 remaining event, got %d", q.Len())
	}
	if _, ok := q.Next(TimerEvent); ok {
		t.Fatalf("expected no timer event")
	}

	done := make(chan Event, 1)
	go func() {
		e, err := q.Wait(context.Background(), TimerEvent)
		if err == nil {
			done <- e
		}
	}()
	time.Sleep(10 * time.Millisecond)
	q.Push(Event{Type: TimerTicked, Source: "t1"})

	select {
	case e := <-done:
		if e.Source != "t1" {
			t.Fatalf("expected t1, got %q", e.Source)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Wait(ctx, KeyEvent); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestEventQueue_LimitDropsOldest(t *testing.T) {
	q := NewEventQueue(2)
	q.Push(Event{Type: TimerTicked, Source: "a"})
	q.Push(Event{Type: TimerTicked, Source: "b"})
	q.Push(Event{Type: TimerTicked, Source: "c"})
	e, _ := q.Next(AnyEvent)
	if e.Source != "b" {
		t.Fatalf("expected oldest kept event b, got %q", e.Source)
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{0: "0", 30: "30", -5: "-5", 2.5: "2.5", 1e21: "1000000000000000000000"}
	for in, want := range cases {
		if got := FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
