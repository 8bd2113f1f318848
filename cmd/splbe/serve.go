package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/1broseidon/splbe/internal/backend"
	"github.com/1broseidon/splbe/internal/config"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/session"
)

func runServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/splbe/config.yaml)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(stderr, "serve takes no arguments")
		return 2
	}

	rt, err := newRuntime(*configPath, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer rt.Close()

	if rt.cfg.Transport == config.TransportUnix {
		return listen(rt, "", stderr)
	}
	return serveStdio(rt, os.Stdin, os.Stdout, stderr)
}

func serveStdio(rt *runtime, in io.Reader, out io.Writer, stderr io.Writer) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.watchSignals(ctx, cancel)

	plat, err := rt.openPlatform()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer plat.Close()

	w := protocol.NewWriter(out)
	w.SetTracer(rt.tracer)
	opts, err := rt.backendOptions(w, plat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	opts.Dialogs = rt.dialogs()
	if opts.Console, err = rt.openConsole(true); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	var exitCode atomic.Int32
	opts.Exit = func(code int) {
		exitCode.Store(int32(code))
		cancel()
	}

	b, err := backend.New(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	rt.logger.Info("serving on stdio")
	serveErr := session.Serve(ctx, in, b, session.Options{Tracer: rt.tracer, Logger: rt.logger})
	if err := b.Close(); err != nil {
		rt.logger.Warn("backend close failed", "error", err)
	}
	if serveErr != nil {
		rt.logger.Error("session failed", "error", serveErr)
		return 1
	}
	return int(exitCode.Load())
}

func runListen(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("listen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/splbe/config.yaml)")
	socket := fs.String("socket", "", "Socket path (default: socket_path or $XDG_RUNTIME_DIR/splbe.sock)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(stderr, "listen takes no arguments")
		return 2
	}

	rt, err := newRuntime(*configPath, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer rt.Close()
	return listen(rt, *socket, stderr)
}

// listen serves clients one at a time, each with a fresh back-end on a
// shared platform. exitGraphics ends the client's connection, not the
// process.
func listen(rt *runtime, socketPath string, stderr io.Writer) int {
	if socketPath == "" {
		var err error
		if socketPath, err = rt.cfg.GetSocketPath(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.watchSignals(ctx, cancel)

	plat, err := rt.openPlatform()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer plat.Close()

	dialogs := rt.dialogs()
	cons, err := rt.openConsole(false)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	factory := func(conn io.Writer, hangup func()) (session.Interpreter, error) {
		w := protocol.NewWriter(conn)
		w.SetTracer(rt.tracer)
		opts, err := rt.backendOptions(w, plat)
		if err != nil {
			return nil, err
		}
		opts.Dialogs = dialogs
		opts.Console = cons
		opts.Exit = func(code int) {
			rt.logger.Info("client ended the session", "code", code)
			hangup()
		}
		b, err := backend.New(opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	srv, err := session.NewServer(socketPath, factory, session.Options{Tracer: rt.tracer, Logger: rt.logger})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := srv.Listen(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := srv.Serve(ctx); err != nil {
		rt.logger.Error("listener failed", "error", err)
		return 1
	}
	rt.logger.Info("listener stopped", "clients", srv.Served())
	return 0
}
