// Package backend executes protocol commands against the scene, windows,
// timers and sounds of one client session.
//
// Commands are parsed on the session goroutine. Anything that touches the
// scene or a window runs on the UI goroutine: fire-and-forget commands post
// their work and return, queries and acknowledged commands wait for it.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/splbe/internal/console"
	"github.com/1broseidon/splbe/internal/dialog"
	"github.com/1broseidon/splbe/internal/imagecodec"
	"github.com/1broseidon/splbe/internal/platform"
	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/registry"
	"github.com/1broseidon/splbe/internal/render"
	"github.com/1broseidon/splbe/internal/scene"
	"github.com/1broseidon/splbe/internal/sound"
	"github.com/1broseidon/splbe/internal/timer"
	"github.com/1broseidon/splbe/internal/uithread"
	"github.com/1broseidon/splbe/internal/widget"
	"github.com/1broseidon/splbe/internal/window"
)

// Policies for a create that reuses a live id.
const (
	DuplicateDetach = "detach"
	DuplicateReject = "reject"
)

// DefaultRepaintInterval spaces repaints of one window.
const DefaultRepaintInterval = 16 * time.Millisecond

// Registry is the back-end's id registry.
type Registry = registry.Registry[*window.Window, *timer.Timer, *sound.Sound]

// Options configure a Backend.
type Options struct {
	// Writer carries replies and events to the client.
	Writer *protocol.Writer
	// Platform creates window surfaces. Nil means headless.
	Platform platform.Backend
	Logger   *slog.Logger

	Fonts      *render.FontBook
	ImagePaths []string
	Player     sound.Player
	Dialogs    dialog.Provider
	Console    console.Console

	// StrictErrors makes fire-and-forget commands report failures.
	StrictErrors bool
	// DuplicateIDs is DuplicateDetach or DuplicateReject.
	DuplicateIDs string
	// PollEvents queues events for GEvent.getNextEvent instead of writing
	// them as they happen.
	PollEvents      bool
	LockOSThread    bool
	RepaintInterval time.Duration

	// Exit ends the process for GWindow.exitGraphics.
	Exit func(code int)
}

// Backend is one protocol session's command interpreter.
type Backend struct {
	opts     Options
	logger   *slog.Logger
	out      *protocol.Writer
	platform platform.Backend
	ui       *uithread.Executor
	reg      *Registry
	events   *protocol.EventQueue
	theme    *widget.Theme
	measure  *render.Renderer
	codec    *imagecodec.Codec
	commands map[string]command

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a started Backend.
func New(opts Options) (*Backend, error) {
	if opts.Writer == nil {
		return nil, errors.New("backend: writer is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Platform == nil {
		opts.Platform = platform.NewHeadless(0, 0)
	}
	if opts.Fonts == nil {
		opts.Fonts = render.NewFontBook(render.DefaultFont)
	}
	if opts.Player == nil {
		opts.Player = sound.Silent{Logger: opts.Logger}
	}
	if opts.Dialogs == nil {
		opts.Dialogs = dialog.Disabled{Logger: opts.Logger}
	}
	if opts.Console == nil {
		opts.Console = console.Discard{}
	}
	switch opts.DuplicateIDs {
	case "":
		opts.DuplicateIDs = DuplicateDetach
	case DuplicateDetach, DuplicateReject:
	default:
		return nil, fmt.Errorf("backend: unknown duplicate id policy %q", opts.DuplicateIDs)
	}
	if opts.RepaintInterval <= 0 {
		opts.RepaintInterval = DefaultRepaintInterval
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}

	b := &Backend{
		opts:     opts,
		logger:   opts.Logger,
		out:      opts.Writer,
		platform: opts.Platform,
		ui:       uithread.New(opts.Logger, uithread.WithLockOSThread(opts.LockOSThread)),
		reg:      registry.New[*window.Window, *timer.Timer, *sound.Sound](),
		theme:    widget.DefaultTheme(opts.Fonts),
		measure:  render.New(opts.Fonts, opts.Logger),
		codec:    imagecodec.New(opts.ImagePaths),
		commands: commandTable(),
	}
	if opts.PollEvents {
		b.events = protocol.NewEventQueue(0)
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.ui.Start()
	return b, nil
}

// Registry exposes the id registry. Objects it returns belong to the UI
// goroutine; use Do to inspect them.
func (b *Backend) Registry() *Registry { return b.reg }

// Do runs fn on the UI goroutine and waits for it.
func (b *Backend) Do(fn func() error) error { return b.ui.PostAndWait(fn) }

// Close stops every timer, closes every window and stops the UI goroutine.
// Closing does not emit window events.
func (b *Backend) Close() error {
	b.cancel()
	err := b.ui.PostAndWait(func() error {
		for _, id := range b.reg.Timers.IDs() {
			if t, ok := b.reg.DeleteTimer(id); ok {
				t.Stop()
			}
		}
		for _, id := range b.reg.Windows.IDs() {
			if w, ok := b.reg.DeleteWindow(id); ok {
				w.Close()
			}
		}
		return nil
	})
	b.ui.Stop()
	if errors.Is(err, uithread.ErrStopped) {
		return nil
	}
	return err
}

// Execute runs one protocol line and writes its reply, if it has one.
func (b *Backend) Execute(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	name, args, err := protocol.ParseCommand(line)
	if err != nil {
		b.writeError(err)
		return
	}
	cmd, ok := b.commands[name]
	if !ok {
		b.logger.Warn("unknown command", "command", name)
		b.write(b.out.Error("Unknown command: " + name))
		return
	}

	c := &call{Args: args, b: b, name: name}
	value, err := b.invoke(cmd, c)
	if err != nil {
		if cmd.shape != fire || c.panicked || b.opts.StrictErrors || errors.Is(err, protocol.ErrParse) {
			b.writeError(err)
		} else {
			b.logger.Warn("command failed", "command", name, "error", err)
		}
		return
	}
	switch cmd.shape {
	case ack:
		b.write(b.out.OK())
	case query:
		b.write(b.out.Result(value))
	}
}

func (b *Backend) invoke(cmd command, c *call) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command panic recovered", "command", c.name, "error", r)
			c.panicked = true
			err = fmt.Errorf("%s: internal error: %v", c.name, r)
		}
	}()
	return cmd.run(c)
}

// dropped handles the failure of work a fire-and-forget command posted.
func (b *Backend) dropped(name string, err error) {
	if b.opts.StrictErrors {
		b.writeError(err)
		return
	}
	b.logger.Warn("command failed", "command", name, "error", err)
}

func (b *Backend) writeError(err error) {
	b.write(b.out.Error(err.Error()))
}

func (b *Backend) write(err error) {
	if err != nil {
		b.logger.Warn("write to client failed", "error", err)
	}
}

// emit delivers an event: written at once in push mode, queued in poll
// mode.
func (b *Backend) emit(ev protocol.Event) {
	if b.events != nil {
		b.events.Push(ev)
		return
	}
	b.write(b.out.Event(ev))
}

// Emit delivers an event to the client.
func (b *Backend) Emit(ev protocol.Event) { b.emit(ev) }

// windows returns the open windows in id order. UI goroutine only.
func (b *Backend) windows() []*window.Window {
	ids := b.reg.Windows.IDs()
	out := make([]*window.Window, 0, len(ids))
	for _, id := range ids {
		if w, ok := b.reg.Window(id); ok {
			out = append(out, w)
		}
	}
	return out
}

// changed repaints wherever o is shown and refits windows whose regions
// hold it.
func (b *Backend) changed(o *scene.Object) {
	if w := window.Of(o); w != nil {
		w.Invalidate()
	}
	if !o.IsInteractor() && o.Kind() != scene.KindLabel {
		return
	}
	for _, w := range b.windows() {
		if _, ok := w.RegionOf(o); ok {
			w.Relayout()
		}
	}
}

// define registers a new object, applying the duplicate id policy.
// UI goroutine only.
func (b *Backend) define(id string, o *scene.Object) error {
	if old, ok := b.reg.Object(id); ok {
		if b.opts.DuplicateIDs == DuplicateReject {
			return fmt.Errorf("object %q already exists", id)
		}
		b.discard(old)
	}
	b.reg.DefineObject(id, o)
	if wdg, ok := o.Widget().(widget.Widget); ok {
		b.reg.DefineSource(wdg, id)
		wdg.SetOnAction(func() { b.action(wdg, o) })
	}
	return nil
}

// discard takes o out of every region, off its parent and out of the
// source map. A window whose root is o is closed without events.
// UI goroutine only.
func (b *Backend) discard(o *scene.Object) {
	for _, w := range b.windows() {
		if w.Root() == o {
			b.reg.DeleteWindow(w.ID())
			w.Close()
			continue
		}
		if r, ok := w.RegionOf(o); ok {
			w.RemoveFromRegion(o, r)
		}
	}
	if w := window.Of(o); w != nil {
		w.Invalidate()
	}
	o.RemoveFromParent()
	if wdg := o.Widget(); wdg != nil {
		b.reg.DeleteSource(wdg)
	}
}

// action reports an interactor's action to the client.
func (b *Backend) action(src any, o *scene.Object) {
	id, ok := b.reg.SourceOf(src)
	if !ok {
		return
	}
	b.emit(protocol.Event{
		Type:    protocol.ActionPerformed,
		Source:  id,
		Command: o.ActionCommand(),
		Time:    protocol.Now(),
	})
}

// refreshLabel measures a label's text in its font.
func (b *Backend) refreshLabel(o *scene.Object) error {
	m, err := b.measure.MeasureLabel(o.Text(), o.Font())
	if err != nil {
		return err
	}
	o.SetLabelMetrics(m)
	return nil
}

// userClosed handles a window the user closed: the scene is unmounted, the
// id forgotten and the client told.
func (b *Backend) userClosed(w *window.Window) {
	w.Close()
	if cur, ok := b.reg.Window(w.ID()); ok && cur == w {
		b.reg.DeleteWindow(w.ID())
	}
	b.emit(protocol.Event{Type: protocol.WindowClosed, Source: w.ID(), Time: protocol.Now()})
	if b.reg.Windows.Len() == 0 {
		b.emit(protocol.Event{Type: protocol.LastWindowClosed, Time: protocol.Now()})
	}
}
