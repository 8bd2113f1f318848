package console

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// clearScreen homes the cursor and erases the display.
const clearScreen = "\x1b[H\x1b[2J"

// Stream writes console output to plain streams and reads lines from In.
// When In is a terminal, lines are read with an editing line reader.
type Stream struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	reader *bufio.Reader
	logger *slog.Logger

	font string
}

// NewStream returns a stream console.
func NewStream(opts Options) *Stream {
	opts.defaults()
	return &Stream{
		out:    opts.Out,
		errOut: opts.Err,
		in:     opts.In,
		reader: bufio.NewReader(opts.In),
		logger: opts.Logger,
	}
}

func (s *Stream) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isTerminal(s.out) {
		io.WriteString(s.out, clearScreen)
	}
}

func (s *Stream) Print(text string, stderr bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.out
	if stderr {
		w = s.errOut
	}
	if _, err := io.WriteString(w, text); err != nil {
		s.logger.Warn("console write failed", "error", err)
	}
}

func (s *Stream) Println() {
	s.Print("\n", false)
}

// GetLine reads one line without its terminator. A final line without a
// newline is returned before io.EOF.
func (s *Stream) GetLine() (string, error) {
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return s.readTerminal(f)
	}
	line, err := s.reader.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (s *Stream) readTerminal(f *os.File) (string, error) {
	old, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return "", err
	}
	defer term.Restore(int(f.Fd()), old)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, s.out}, "")
	return t.ReadLine()
}

// SetFont records the font; a stream has no control over it.
func (s *Stream) SetFont(font string) {
	s.mu.Lock()
	s.font = font
	s.mu.Unlock()
	s.logger.Debug("console font ignored on stream console", "font", font)
}

func (s *Stream) SetLocation(x, y int) {}

func (s *Stream) SetSize(width, height float64) {}

func (s *Stream) Close() error { return nil }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
