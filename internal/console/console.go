// Package console implements the text console behind the JBEConsole
// commands: program output, error output and line input.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Console is a text console. Methods are safe for concurrent use; GetLine
// blocks until the user submits a line.
type Console interface {
	Clear()
	Print(text string, stderr bool)
	Println()
	GetLine() (string, error)
	SetFont(font string)
	SetLocation(x, y int)
	SetSize(width, height float64)
	Close() error
}

// Kinds of console accepted by New.
const (
	KindStream = "stream"
	KindTUI    = "tui"
	KindNone   = "none"
)

// Options are the streams a console uses. Nil streams default to the
// process's stdin, stdout and stderr.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// New returns the console for kind.
func New(kind string, opts Options) (Console, error) {
	opts.defaults()
	switch kind {
	case KindStream, "":
		return NewStream(opts), nil
	case KindTUI:
		return NewTUI(opts), nil
	case KindNone:
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("unknown console kind %q", kind)
	}
}

// Discard drops all output and has no input.
type Discard struct{}

func (Discard) Clear() {}
func (Discard) Print(string, bool) {}
func (Discard) Println() {}
func (Discard) GetLine() (string, error) { return "", io.EOF }
func (Discard) SetFont(string) {}
func (Discard) SetLocation(int, int) {}
func (Discard) SetSize(float64, float64) {}
func (Discard) Close() error { return nil }
