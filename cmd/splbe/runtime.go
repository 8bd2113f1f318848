package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gogpu/gg"

	"github.com/1broseidon/splbe/internal/backend"
	"github.com/1broseidon/splbe/internal/config"
	"github.com/1broseidon/splbe/internal/console"
	"github.com/1broseidon/splbe/internal/dialog"
	"github.com/1broseidon/splbe/internal/platform"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/render"
	"github.com/1broseidon/splbe/internal/sound"
	"github.com/1broseidon/splbe/internal/trace"
)

// runtime is the process-wide state shared by serve, listen and mcp serve.
type runtime struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	level      *slog.LevelVar
	tracer     *trace.Logger
	closers    []io.Closer
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func newRuntime(configPath string, stderr io.Writer) (*runtime, error) {
	res, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	rt := &runtime{
		configPath: configPath,
		cfg:        res.Config,
		level:      new(slog.LevelVar),
	}
	rt.level.Set(rt.cfg.LogLevel())

	// Stdout may carry the protocol, so the log never goes there.
	out := stderr
	if path := rt.cfg.Logging.File; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		rt.closers = append(rt.closers, f)
		out = f
	}
	rt.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: rt.level}))
	slog.SetDefault(rt.logger)
	gg.SetLogger(rt.logger)

	tc, err := rt.cfg.GetTraceConfig()
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.tracer, err = trace.New(tc)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.logger.Debug("configuration loaded", "files", res.Files)
	return rt, nil
}

// reload re-reads the config file and applies the log level and trace
// settings. The rest of the configuration only affects new sessions.
func (rt *runtime) reload() {
	res, err := loadConfig(rt.configPath)
	if err != nil {
		rt.logger.Warn("config reload failed", "error", err)
		return
	}
	rt.cfg = res.Config
	rt.level.Set(rt.cfg.LogLevel())
	tc, err := rt.cfg.GetTraceConfig()
	if err == nil {
		err = rt.tracer.Reconfigure(tc)
	}
	if err != nil {
		rt.logger.Warn("trace reconfigure failed", "error", err)
		return
	}
	rt.logger.Info("configuration reloaded")
}

// watchSignals cancels on SIGINT or SIGTERM and reloads on SIGHUP.
func (rt *runtime) watchSignals(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					rt.logger.Info("received SIGHUP, reloading config")
					rt.reload()
					continue
				}
				rt.logger.Info("shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()
}

func (rt *runtime) openPlatform() (platform.Backend, error) {
	plat, err := platform.Open(rt.cfg.Platform, rt.cfg.Display, rt.logger)
	if err != nil {
		return nil, err
	}
	rt.logger.Info("platform ready", "platform", plat.Name())
	return plat, nil
}

// openConsole builds the configured console. When stdio carries the
// protocol the console talks to the controlling terminal instead.
func (rt *runtime) openConsole(stdio bool) (console.Console, error) {
	opts := console.Options{Logger: rt.logger}
	if stdio && rt.cfg.Console != console.KindNone {
		tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			rt.logger.Warn("no terminal for the console, console output is dropped", "error", err)
			return console.Discard{}, nil
		}
		rt.closers = append(rt.closers, tty)
		opts.In, opts.Out = tty, tty
	}
	c, err := console.New(rt.cfg.Console, opts)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, c)
	return c, nil
}

func (rt *runtime) player() sound.Player {
	p, err := sound.NewExecPlayer(rt.cfg.Sound.Player, rt.logger)
	if err != nil {
		rt.logger.Warn("sound playback disabled", "error", err)
		return sound.Silent{Logger: rt.logger}
	}
	return p
}

// backendOptions maps the configuration onto back-end options. Dialogs,
// console and exit hook are left for the caller.
func (rt *runtime) backendOptions(w *protocol.Writer, plat platform.Backend) (backend.Options, error) {
	font, err := render.ParseFont(rt.cfg.Font, render.DefaultFont)
	if err != nil {
		return backend.Options{}, fmt.Errorf("font: %w", err)
	}
	return backend.Options{
		Writer:          w,
		Platform:        plat,
		Logger:          rt.logger,
		Fonts:           render.NewFontBook(font),
		ImagePaths:      rt.cfg.ImagePaths,
		Player:          rt.player(),
		StrictErrors:    rt.cfg.Protocol.StrictErrors,
		DuplicateIDs:    rt.cfg.Protocol.DuplicateIDs,
		PollEvents:      rt.cfg.PollEvents(),
		LockOSThread:    rt.cfg.UI.LockOSThread,
		RepaintInterval: rt.cfg.RepaintInterval(),
	}, nil
}

func (rt *runtime) dialogs() dialog.Provider {
	d, err := dialog.New(rt.cfg.Dialog, rt.logger)
	if err != nil {
		rt.logger.Warn("dialogs disabled", "error", err)
		return dialog.Disabled{Logger: rt.logger}
	}
	return d
}

func (rt *runtime) Close() {
	if rt.tracer != nil {
		rt.tracer.Close()
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i].Close()
	}
	rt.closers = nil
}
