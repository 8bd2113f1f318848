package mcp

import (
	"context"
	"io"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/splbe/internal/backend"
	"github.com/1broseidon/splbe/internal/console"
	"github.com/1broseidon/splbe/internal/dialog"
	"github.com/1broseidon/splbe/internal/platform"
	"github.com/1broseidon/splbe/internal/protocol"
)

const (
	ServerName    = "splbe"
	ServerVersion = "0.1.0"
)

// Server exposes one headless back-end as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   *backend.Backend
	headless  *platform.Headless
	logger    *slog.Logger

	// exec serializes execute_command so each call sees its own reply.
	exec sync.Mutex

	mu      sync.Mutex
	pending []string
	exited  bool
}

// NewServer builds the back-end from opts. The writer, platform, dialogs,
// console and exit hook are replaced since the bridge has no terminal or
// display of its own. tracer may be nil.
func NewServer(opts backend.Options, tracer protocol.Tracer) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		headless: platform.NewHeadless(0, 0),
		logger:   opts.Logger,
	}

	w := protocol.NewWriter(io.Discard)
	w.SetTap(s.capture)
	if tracer != nil {
		w.SetTracer(tracer)
	}
	opts.Writer = w
	opts.Platform = s.headless
	opts.Dialogs = dialog.Disabled{Logger: opts.Logger}
	opts.Console = console.Discard{}
	opts.Exit = s.exit

	b, err := backend.New(opts)
	if err != nil {
		return nil, err
	}
	s.backend = b

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Run serves MCP on stdio, blocking until the client goes away or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close shuts the back-end down.
func (s *Server) Close() error {
	return s.backend.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "execute_command",
		Description: "Run one Stanford graphics protocol command line on the headless back-end. Returns every line the back-end wrote since the previous call: the result:/error: reply for commands that answer, plus any event: lines.",
	}, s.handleExecuteCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_objects",
		Description: "List the ids of registered graphical objects (with their kind), windows, timers and sounds.",
	}, s.handleListObjects)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snapshot_window",
		Description: "Render a window exactly as it would appear on screen and save it as an image file.",
	}, s.handleSnapshotWindow)
}

func (s *Server) capture(line string) {
	s.mu.Lock()
	s.pending = append(s.pending, line)
	s.mu.Unlock()
}

func (s *Server) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

func (s *Server) exit(code int) {
	s.mu.Lock()
	s.exited = true
	s.mu.Unlock()
	s.logger.Info("client requested exit", "code", code)
}

func (s *Server) hasExited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// Headless returns the platform the back-end draws on.
func (s *Server) Headless() *platform.Headless { return s.headless }
