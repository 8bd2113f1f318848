package backend

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/splbe/internal/console"
	"github.com/1broseidon/splbe/internal/platform"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/window"
)

// lockedBuffer collects protocol output written from several goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

// take returns the lines written so far and forgets them.
func (l *lockedBuffer) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := strings.TrimRight(l.buf.String(), "\n")
	l.buf.Reset()
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type harness struct {
	b        *Backend
	out      *lockedBuffer
	headless *platform.Headless
	exitCode int
}

func newHarness(t *testing.T, configure func(o *Options)) *harness {
	t.Helper()
	h := &harness{out: &lockedBuffer{}, headless: platform.NewHeadless(1280, 800), exitCode: -1}
	opts := Options{
		Writer:   protocol.NewWriter(h.out),
		Platform: h.headless,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Exit:     func(code int) { h.exitCode = code },
	}
	if configure != nil {
		configure(&opts)
	}
	b, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	h.b = b
	return h
}

// run executes lines, waits for posted work and returns what was written.
func (h *harness) run(t *testing.T, lines ...string) []string {
	t.Helper()
	for _, line := range lines {
		h.b.Execute(line)
	}
	if err := h.b.Do(func() error { return nil }); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	return h.out.take()
}

// one runs a single line and expects exactly one reply.
func (h *harness) one(t *testing.T, line string) string {
	t.Helper()
	got := h.run(t, line)
	if len(got) != 1 {
		t.Fatalf("expected one reply to %s, got %q", line, got)
	}
	return got[0]
}

func TestRectangleBounds(t *testing.T) {
	h := newHarness(t, nil)
	if got := h.run(t, `GRect.create("r1", 30, 40)`, `GObject.setLocation("r1", 10, 20)`, `GObject.setLocation("r1", 5, 5)`); len(got) != 0 {
		t.Fatalf("expected no replies to fire-and-forget commands, got %q", got)
	}
	if got := h.one(t, `GObject.getBounds("r1")`); got != "result:GRectangle(5, 5, 30, 40)" {
		t.Fatalf("expected GRectangle(5, 5, 30, 40), got %q", got)
	}
	if got := h.one(t, `GObject.contains("r1", 10, 10)`); got != "result:true" {
		t.Fatalf("expected contains true, got %q", got)
	}
}

func TestUnknownCommandAndParseError(t *testing.T) {
	h := newHarness(t, nil)
	if got := h.one(t, `Foo.bar()`); got != "error:Unknown command: Foo.bar" {
		t.Fatalf("expected unknown command error, got %q", got)
	}
	if got := h.one(t, `GRect.create("r1", wide, 40)`); !strings.HasPrefix(got, "error:") {
		t.Fatalf("expected parse error, got %q", got)
	}
	if got := h.one(t, `GObject.getBounds("r1")`); !strings.HasPrefix(got, "error:") {
		t.Fatalf("expected r1 not created, got %q", got)
	}
	if got := h.run(t, "", "   "); len(got) != 0 {
		t.Fatalf("expected blank lines ignored, got %q", got)
	}
}

func TestCreateDeleteLookup(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, `GOval.create("o", 10, 10)`, `GObject.delete("o")`)
	got := h.one(t, `GObject.getBounds("o")`)
	if !strings.Contains(got, "not found") {
		t.Fatalf("expected not found, got %q", got)
	}
}

// windowWithButton builds window w1 with root t1 and button b1 docked NORTH.
func windowWithButton(t *testing.T, h *harness) {
	t.Helper()
	h.run(t, `TopCompound.create("t1")`)
	if got := h.one(t, `GWindow.create("w1", 200, 200, "t1")`); got != "result:ok" {
		t.Fatalf("expected window created, got %q", got)
	}
	h.run(t, `GButton.create("b1", "Go")`)
	if got := h.one(t, `GCompound.add("t1", "b1")`); got != "result:ok" {
		t.Fatalf("expected add acknowledged, got %q", got)
	}
	h.run(t, `GWindow.addToRegion("w1", "b1", "NORTH")`)
}

func TestWindowRegionMountsOnce(t *testing.T) {
	h := newHarness(t, nil)
	windowWithButton(t, h)

	err := h.b.Do(func() error {
		w, _ := h.b.reg.Window("w1")
		b1, _ := h.b.reg.Object("b1")
		count := 0
		for _, o := range w.Canvas().Widgets() {
			if o == b1 {
				count++
			}
		}
		for _, o := range w.RegionItems(window.North) {
			if o == b1 {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected b1 shown once, got %d", count)
		}
		if !b1.Docked() {
			t.Error("expected b1 docked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}

	first := h.one(t, `GInteractor.getSize("b1")`)
	if !strings.HasPrefix(first, "result:GDimension(") || strings.Contains(first, "(0,") {
		t.Fatalf("expected positive size, got %q", first)
	}
	if second := h.one(t, `GInteractor.getSize("b1")`); second != first {
		t.Fatalf("expected stable size %q, got %q", first, second)
	}
	if got := h.one(t, `GWindow.getCanvasWidth("w1")`); got != "result:200" {
		t.Fatalf("expected canvas width 200, got %q", got)
	}
}

func TestClosedWindowIsNotFound(t *testing.T) {
	h := newHarness(t, nil)
	windowWithButton(t, h)
	if got := h.run(t, `GWindow.close("w1")`); len(got) != 0 {
		t.Fatalf("expected no events for a client close, got %q", got)
	}
	if got := h.one(t, `GWindow.getCanvasWidth("w1")`); !strings.HasPrefix(got, "error:") {
		t.Fatalf("expected error for closed window, got %q", got)
	}
	h.run(t, `GRect.create("r", 1, 2)`)
	if got := h.one(t, `GObject.getBounds("r")`); got != "result:GRectangle(0, 0, 1, 2)" {
		t.Fatalf("expected later commands to work, got %q", got)
	}
}

func TestUserCloseEmitsEvents(t *testing.T) {
	h := newHarness(t, nil)
	windowWithButton(t, h)
	surfaces := h.headless.Surfaces()
	if len(surfaces) != 1 {
		t.Fatalf("expected one surface, got %d", len(surfaces))
	}
	surfaces[0].Sink().CloseRequested()
	got := h.run(t)
	if len(got) != 2 {
		t.Fatalf("expected two events, got %q", got)
	}
	if !strings.HasPrefix(got[0], `event:windowClosed("w1", `) {
		t.Fatalf("expected windowClosed first, got %q", got[0])
	}
	if got[1] != "event:lastWindowClosed()" {
		t.Fatalf("expected lastWindowClosed, got %q", got[1])
	}
	if reply := h.one(t, `GWindow.getCanvasHeight("w1")`); !strings.HasPrefix(reply, "error:") {
		t.Fatalf("expected closed window to be gone, got %q", reply)
	}
}

func TestDuplicateIDs(t *testing.T) {
	t.Run("detach", func(t *testing.T) {
		h := newHarness(t, nil)
		h.run(t, `GCompound.create("c")`, `GRect.create("r", 1, 1)`, `GCompound.add("c", "r")`, `GRect.create("r", 7, 8)`)
		if got := h.one(t, `GObject.getBounds("r")`); got != "result:GRectangle(0, 0, 7, 8)" {
			t.Fatalf("expected the new rect, got %q", got)
		}
		err := h.b.Do(func() error {
			c, _ := h.b.reg.Object("c")
			if c.Len() != 0 {
				t.Errorf("expected the old rect detached, got %d children", c.Len())
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Do() error: %v", err)
		}
	})
	t.Run("reject", func(t *testing.T) {
		h := newHarness(t, func(o *Options) {
			o.DuplicateIDs = DuplicateReject
			o.StrictErrors = true
		})
		h.run(t, `GRect.create("r", 1, 1)`)
		if got := h.one(t, `GRect.create("r", 7, 8)`); !strings.Contains(got, "already exists") {
			t.Fatalf("expected duplicate rejected, got %q", got)
		}
		if got := h.one(t, `GObject.getBounds("r")`); got != "result:GRectangle(0, 0, 1, 1)" {
			t.Fatalf("expected the first rect kept, got %q", got)
		}
	})
	t.Run("unknown policy", func(t *testing.T) {
		_, err := New(Options{Writer: protocol.NewWriter(io.Discard), DuplicateIDs: "merge"})
		if err == nil {
			t.Fatal("expected error for unknown policy")
		}
	})
}

func TestDuplicateWindowRoot(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, `TopCompound.create("t1")`, `GButton.create("b1", "Go")`)
	if got := h.one(t, `GWindow.create("w1", 200, 200, "t1")`); got != "result:ok" {
		t.Fatalf("expected window created, got %q", got)
	}
	h.run(t, `GCompound.add("t1", "b1")`)

	if got := h.run(t, `TopCompound.create("t1")`); len(got) != 0 {
		t.Fatalf("expected no events when the root is replaced, got %q", got)
	}
	if got := h.one(t, `GWindow.getCanvasWidth("w1")`); !strings.HasPrefix(got, "error:") {
		t.Fatalf("expected w1 closed with its root, got %q", got)
	}
	err := h.b.Do(func() error {
		b1, _ := h.b.reg.Object("b1")
		if b1.MountedOn() != nil {
			t.Error("expected b1 unmounted from the closed window")
		}
		if n := h.b.reg.Windows.Len(); n != 0 {
			t.Errorf("expected no windows, got %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if got := h.one(t, `GWindow.create("w2", 100, 100, "t1")`); got != "result:ok" {
		t.Fatalf("expected the new t1 to take a window, got %q", got)
	}
}

func TestRecreateWindowWithSameRoot(t *testing.T) {
	h := newHarness(t, nil)
	windowWithButton(t, h)
	if got := h.one(t, `GWindow.create("w1", 300, 250, "t1")`); got != "result:ok" {
		t.Fatalf("expected w1 recreated on t1, got %q", got)
	}
	if got := h.one(t, `GWindow.getCanvasWidth("w1")`); got != "result:300" {
		t.Fatalf("expected canvas width 300, got %q", got)
	}
	err := h.b.Do(func() error {
		b1, _ := h.b.reg.Object("b1")
		if !b1.Attached() {
			t.Error("expected b1 attached to the new window")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}

	h.run(t, `TopCompound.create("t2")`)
	if got := h.one(t, `GWindow.create("w2", 100, 100, "t1")`); !strings.Contains(got, "already belongs") {
		t.Fatalf("expected t1 refused for another window, got %q", got)
	}
}

func TestOversizedPixelBuffers(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.StrictErrors = true })
	if got := h.one(t, `GBufferedImage.create("big", 0, 0, 200000, 200000, 0)`); !strings.Contains(got, "too large") {
		t.Fatalf("expected oversized buffer refused, got %q", got)
	}
	if got := h.one(t, `GObject.getBounds("big")`); !strings.Contains(got, "not found") {
		t.Fatalf("expected no buffer created, got %q", got)
	}

	h.run(t, `GBufferedImage.create("img", 0, 0, 4, 3, 0)`)
	if got := h.one(t, `GBufferedImage.resize("img", 100000, 100000, false)`); !strings.Contains(got, "too large") {
		t.Fatalf("expected oversized resize refused, got %q", got)
	}
	if got := h.one(t, `GInteractor.getSize("img")`); got != "result:GDimension(4, 3)" {
		t.Fatalf("expected size unchanged, got %q", got)
	}

	h.run(t, `TopCompound.create("t1")`)
	if got := h.one(t, `GWindow.create("w1", 1000000, 1000000, "t1")`); !strings.Contains(got, "too large") {
		t.Fatalf("expected oversized window refused, got %q", got)
	}
	if got := h.one(t, `GWindow.create("w1", 200, 200, "t1")`); got != "result:ok" {
		t.Fatalf("expected normal window created, got %q", got)
	}
}

func TestStrictErrors(t *testing.T) {
	lenient := newHarness(t, nil)
	if got := lenient.run(t, `GObject.setVisible("ghost", true)`); len(got) != 0 {
		t.Fatalf("expected failure logged only, got %q", got)
	}
	strict := newHarness(t, func(o *Options) { o.StrictErrors = true })
	got := strict.one(t, `GObject.setVisible("ghost", true)`)
	if !strings.HasPrefix(got, "error:") || !strings.Contains(got, "ghost") {
		t.Fatalf("expected error naming ghost, got %q", got)
	}
}

func TestTypeMismatch(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.StrictErrors = true })
	h.run(t, `GLine.create("l", 0, 0, 5, 5)`)
	if got := h.one(t, `GObject.setFilled("l", true)`); !strings.Contains(got, "does not support") {
		t.Fatalf("expected type mismatch, got %q", got)
	}
	if got := h.one(t, `GCheckBox.isSelected("l")`); !strings.HasPrefix(got, "error:") {
		t.Fatalf("expected mismatch on query, got %q", got)
	}
}

func TestPollEvents(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.PollEvents = true })
	if got := h.one(t, `GEvent.getNextEvent(1008)`); got != "result:" {
		t.Fatalf("expected empty result, got %q", got)
	}
	h.b.Emit(protocol.Event{Type: protocol.TimerTicked, Source: "t1", Time: 1})
	h.b.Emit(protocol.Event{Type: protocol.ActionPerformed, Source: "b1", Command: "go", Time: 2})

	got := h.run(t, `GEvent.getNextEvent(16)`)
	if len(got) != 2 || got[0] != `event:actionPerformed("b1", "go", 2)` || got[1] != "result:" {
		t.Fatalf("expected action event then result, got %q", got)
	}
	got = h.run(t, `GEvent.waitForEvent(64)`)
	if len(got) != 2 || got[0] != `event:timerTicked("t1", 1)` {
		t.Fatalf("expected timer event, got %q", got)
	}
}

func TestPushModeEventCommands(t *testing.T) {
	h := newHarness(t, nil)
	if got := h.one(t, `GEvent.waitForEvent(1008)`); got != "result:" {
		t.Fatalf("expected immediate result in push mode, got %q", got)
	}
}

func TestTimerTicks(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.PollEvents = true })
	h.run(t, `GTimer.create("t1", 5)`, `GTimer.startTimer("t1")`)
	got := h.run(t, `GEvent.waitForEvent(64)`)
	if len(got) != 2 || !strings.HasPrefix(got[0], `event:timerTicked("t1", `) {
		t.Fatalf("expected a tick, got %q", got)
	}
	h.run(t, `GTimer.deleteTimer("t1")`)
	if h.b.reg.Timers.Len() != 0 {
		t.Fatalf("expected timer deleted, got %d", h.b.reg.Timers.Len())
	}
	if got := h.one(t, `GTimer.pause(1)`); got != "result:ok" {
		t.Fatalf("expected pause acknowledged, got %q", got)
	}
}

func TestLabels(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, `GLabel.create("l", "hello")`)
	size := h.one(t, `GLabel.getGLabelSize("l")`)
	if !strings.HasPrefix(size, "result:GDimension(") {
		t.Fatalf("expected dimension, got %q", size)
	}
	h.run(t, `GLabel.setFont("l", "SansSerif-Bold-36")`)
	if bigger := h.one(t, `GLabel.getGLabelSize("l")`); bigger == size {
		t.Fatalf("expected the size to change with the font, got %q", bigger)
	}
	if got := h.one(t, `GLabel.getFontAscent("l")`); got == "result:0" {
		t.Fatalf("expected positive ascent, got %q", got)
	}
}

func TestInteractors(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t,
		`GCheckBox.create("cb", "Check")`,
		`GCheckBox.setSelected("cb", true)`,
		`GSlider.create("s", 0, 100, 50)`,
		`GSlider.setValue("s", 75)`,
		`GTextField.create("tf", 10)`,
		`GTextField.setText("tf", "abc")`,
		`GChooser.create("ch")`,
		`GChooser.addItem("ch", "red")`,
		`GChooser.addItem("ch", "blue")`,
		`GChooser.setSelectedItem("ch", "blue")`,
		`GTextArea.create("ta", 100, 50)`,
		`GTextArea.setText("ta", "one\ntwo")`,
	)
	tests := []struct {
		line string
		want string
	}{
		{`GCheckBox.isSelected("cb")`, "result:true"},
		{`GSlider.getValue("s")`, "result:75"},
		{`GTextField.getText("tf")`, "result:abc"},
		{`GChooser.getSelectedItem("ch")`, "result:blue"},
		{`GTextArea.getText("ta")`, `result:one\ntwo`},
	}
	for _, tt := range tests {
		if got := h.one(t, tt.line); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.line, tt.want, got)
		}
	}
}

func TestButtonAction(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.PollEvents = true })
	h.run(t, `GButton.create("b", "Press")`)
	err := h.b.Do(func() error {
		b, _ := h.b.reg.Object("b")
		h.b.action(b.Widget(), b)
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	got := h.run(t, `GEvent.getNextEvent(16)`)
	if len(got) != 2 || !strings.HasPrefix(got[0], `event:actionPerformed("b", "Press", `) {
		t.Fatalf("expected action with the label as command, got %q", got)
	}
}

func TestBufferedImage(t *testing.T) {
	h := newHarness(t, nil)
	path := filepath.Join(t.TempDir(), "out.png")
	h.run(t,
		`GBufferedImage.create("img", 0, 0, 4, 3, 16777215)`,
		`GBufferedImage.setRGB("img", 1, 1, 255)`,
	)
	if got := h.one(t, `GInteractor.getSize("img")`); got != "result:GDimension(4, 3)" {
		t.Fatalf("expected 4x3 buffer, got %q", got)
	}
	h.run(t, `GBufferedImage.resize("img", 8, 6, true)`)
	if got := h.one(t, `GInteractor.getSize("img")`); got != "result:GDimension(8, 6)" {
		t.Fatalf("expected 8x6 after resize, got %q", got)
	}
	if got := h.one(t, `GBufferedImage.save("img", "`+path+`")`); got != "result:ok" {
		t.Fatalf("expected save acknowledged, got %q", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected saved file, got %v", err)
	}
	if got := h.one(t, `GImage.create("pic", "`+path+`")`); got != "result:GDimension(8, 6)" {
		t.Fatalf("expected image size, got %q", got)
	}
	if got := h.one(t, `GImage.create("missing", "no-such-file.png")`); !strings.HasPrefix(got, "error:") {
		t.Fatalf("expected error for missing image, got %q", got)
	}
}

func TestDialogsDisabled(t *testing.T) {
	h := newHarness(t, nil)
	if got := h.one(t, `File.openFileDialog("Open", "load", "/tmp  ")`); got != "result:" {
		t.Fatalf("expected cancelled file dialog, got %q", got)
	}
	if got := h.one(t, `GOptionPane.showConfirmDialog("Sure?", "Q", 0, "")`); got != "result:-1" {
		t.Fatalf("expected closed confirm, got %q", got)
	}
	if got := h.one(t, `GOptionPane.showOptionDialog("Pick", "Q", {"a", "b"}, "a", "")`); got != "result:-1" {
		t.Fatalf("expected closed option dialog, got %q", got)
	}
	if got := h.one(t, `GOptionPane.showMessageDialog("Hi", "T", 1, "")`); got != "result:ok" {
		t.Fatalf("expected message acknowledged, got %q", got)
	}
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	h := newHarness(t, func(o *Options) {
		o.Console = console.NewStream(console.Options{In: strings.NewReader("typed\n"), Out: &out, Err: &out})
	})
	if got := h.run(t, `JBEConsole.print("hi")`, `JBEConsole.println()`, `JBEConsole.println("there", false)`); len(got) != 0 {
		t.Fatalf("expected no replies, got %q", got)
	}
	if out.String() != "hi\nthere\n" {
		t.Fatalf("expected console text, got %q", out.String())
	}
	if got := h.one(t, `JBEConsole.getLine()`); got != "result:typed" {
		t.Fatalf("expected typed line, got %q", got)
	}
	if got := h.one(t, `JBEConsole.getLine()`); !strings.HasPrefix(got, "error:") {
		t.Fatalf("expected error at end of input, got %q", got)
	}
}

func TestExitGraphics(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t, `GWindow.exitGraphics()`)
	if h.exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", h.exitCode)
	}
}

func TestZOrder(t *testing.T) {
	h := newHarness(t, nil)
	h.run(t,
		`GCompound.create("c")`,
		`GRect.create("a", 1, 1)`,
		`GRect.create("b", 1, 1)`,
		`GCompound.add("c", "a")`,
		`GCompound.add("c", "b")`,
		`GObject.sendToBack("b")`,
	)
	err := h.b.Do(func() error {
		c, _ := h.b.reg.Object("c")
		b, _ := h.b.reg.Object("b")
		if kids := c.Children(); len(kids) != 2 || kids[0] != b {
			t.Errorf("expected b first, got %v", kids)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
}

func TestCommandTable(t *testing.T) {
	names := commandNames()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate command %s", name)
		}
		seen[name] = true
	}
	for _, name := range []string{"GWindow.create", "GObject.getBounds", "JBEConsole.getLine", "GBufferedImage.save"} {
		if !seen[name] {
			t.Errorf("expected %s registered", name)
		}
	}
}
