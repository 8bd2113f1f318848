package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// Factory creates the interpreter for one connection, writing to w.
// hangup ends the connection; interpreters call it for GWindow.exitGraphics.
type Factory func(w io.Writer, hangup func()) (Interpreter, error)

// Server accepts clients on a unix socket and serves them one at a time.
// A client that connects while another is being served waits in the
// listen backlog.
type Server struct {
	socketPath string
	factory    Factory
	opts       Options
	logger     *slog.Logger

	listener  net.Listener
	startTime time.Time

	mu           sync.Mutex
	shuttingDown bool
	active       net.Conn
	served       int
}

// NewServer prepares a server on socketPath. A stale socket file is
// removed.
func NewServer(socketPath string, factory Factory, opts Options) (*Server, error) {
	if socketPath == "" {
		return nil, errors.New("socket path is required")
	}
	if factory == nil {
		return nil, errors.New("session factory is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	return &Server{
		socketPath: socketPath,
		factory:    factory,
		opts:       opts,
		logger:     opts.Logger.With("socket", socketPath),
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Served returns how many clients have connected so far.
func (s *Server) Served() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.served
}

// Listen creates the socket, readable only by the current user.
func (s *Server) Listen() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = listener
	s.logger.Info("listening")
	return nil
}

// Serve accepts and serves clients until ctx is cancelled or Stop is
// called. Listen must have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	stop := context.AfterFunc(ctx, s.Stop)
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() {
				return nil
			}
			s.logger.Warn("accept failed", "error", err)
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.handleConnection(ctx, conn)
	}
}

func (s *Server) stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

// handleConnection runs one client session to completion.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.active = conn
	s.served++
	client := s.served
	s.mu.Unlock()

	logger := s.logger.With("client", client)
	logger.Info("client connected")

	connCtx, hangup := context.WithCancel(ctx)
	defer hangup()

	interp, err := s.factory(conn, hangup)
	if err != nil {
		logger.Error("failed to start session", "error", err)
		fmt.Fprintf(conn, "error:%v\n", err)
		conn.Close()
		return
	}
	opts := s.opts
	opts.Logger = logger
	if err := Serve(connCtx, conn, interp, opts); err != nil {
		logger.Warn("session ended with error", "error", err)
	}
	if err := interp.Close(); err != nil {
		logger.Warn("failed to close session", "error", err)
	}
	conn.Close()

	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
	logger.Info("client disconnected")
}

// Stop closes the listener and the active connection, then removes the
// socket file.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return
	}
	s.shuttingDown = true
	active := s.active
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	if active != nil {
		active.Close()
	}
	os.Remove(s.socketPath)
	s.logger.Info("server stopped", "uptime", time.Since(s.startTime).Round(time.Second))
}
