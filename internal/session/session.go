// Package session connects a client's byte stream to a protocol
// interpreter: stdin/stdout for a spawned back-end, or a unix socket for a
// long-running one.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/1broseidon/splbe/internal/protocol"
)

// MaxLineBytes bounds one protocol line.
const MaxLineBytes = 4 << 20

// Interpreter executes protocol lines. *backend.Backend implements it.
type Interpreter interface {
	Execute(line string)
	Close() error
}

// Options configure Serve.
type Options struct {
	Tracer protocol.Tracer
	Logger *slog.Logger
}

// Serve feeds the lines read from r to interp until r ends or ctx is
// cancelled. It does not close interp. A cancelled context is not an error.
func Serve(ctx context.Context, r io.Reader, interp Interpreter, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	count := 0
	for {
		select {
		case <-ctx.Done():
			logger.Debug("session cancelled", "lines", count)
			return nil
		case line, ok := <-lines:
			if !ok {
				var err error
				select {
				case err = <-readErr:
				default:
				}
				logger.Debug("session input ended", "lines", count)
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read command: %w", err)
				}
				return nil
			}
			line = strings.TrimRight(line, "\r")
			if opts.Tracer != nil {
				opts.Tracer.Inbound(line)
			}
			count++
			interp.Execute(line)
		}
	}
}
