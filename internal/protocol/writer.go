package protocol

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// Tracer observes every protocol line. Inbound lines are reported by the
// session, outbound lines by the Writer.
type Tracer interface {
	Inbound(line string)
	Outbound(line string)
}

// Writer serializes replies and events onto the client connection. Each call
// writes exactly one complete line under a mutex, so a command reply and an
// unrelated event never interleave mid-line.
type Writer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	tracer Tracer
	tap    func(line string)
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// SetTracer installs a tracer for outbound lines.
func (w *Writer) SetTracer(t Tracer) {
	w.mu.Lock()
	w.tracer = t
	w.mu.Unlock()
}

// SetTap installs a callback invoked with each line after it is written.
// The callback runs with the writer lock held and must not write.
func (w *Writer) SetTap(fn func(line string)) {
	w.mu.Lock()
	w.tap = fn
	w.mu.Unlock()
}

// Reset redirects the writer to a new destination.
func (w *Writer) Reset(dst io.Writer) {
	w.mu.Lock()
	w.w.Reset(dst)
	w.mu.Unlock()
}

// WriteLine writes line followed by a newline and flushes.
func (w *Writer) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.w.WriteString(line); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.tracer != nil {
		w.tracer.Outbound(line)
	}
	if w.tap != nil {
		w.tap(line)
	}
	return nil
}

// Result writes "result:<value>".
func (w *Writer) Result(value string) error {
	return w.WriteLine("result:" + escapeLine(value))
}

// OK writes "result:ok".
func (w *Writer) OK() error {
	return w.WriteLine("result:ok")
}

// Error writes "error:<msg>".
func (w *Writer) Error(msg string) error {
	return w.WriteLine("error:" + escapeLine(msg))
}

// Event writes "event:<formatted event>".
func (w *Writer) Event(e Event) error {
	return w.WriteLine("event:" + e.String())
}

// escapeLine keeps multi-line values on one protocol line.
func escapeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}
