// Package uithread confines scene and widget mutation to a single goroutine.
//
// Every change to mounted widgets or render state is submitted to an
// Executor, which runs tasks one at a time in submission order. Post is
// fire-and-forget; PostAndWait and Call block until the task has run and hand
// its result back to the caller.
package uithread

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

// ErrStopped is returned for work submitted after Stop, and for queued work
// abandoned by Stop.
var ErrStopped = errors.New("ui thread stopped")

type task struct {
	fn   func() error
	done chan error // nil for Post
}

// Executor is a single-consumer FIFO task queue. The queue is unbounded, so
// Post never blocks.
type Executor struct {
	logger       *slog.Logger
	lockOSThread bool

	mu      sync.Mutex
	queue   []task
	stopped bool
	started bool
	wake    chan struct{}
	done    chan struct{}
}

// Option configures an Executor.
type Option func(*Executor)

// WithLockOSThread pins the UI goroutine to one OS thread, as native
// toolkits require.
func WithLockOSThread(lock bool) Option {
	return func(e *Executor) { e.lockOSThread = lock }
}

// New creates an Executor. Call Start to begin processing.
func New(logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the UI goroutine. Calling Start more than once is a no-op.
func (e *Executor) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	go e.run()
}

// Stop stops accepting work. The task currently running completes; queued
// tasks are abandoned and their waiters receive ErrStopped.
func (e *Executor) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	started := e.started
	e.mu.Unlock()

	e.signal()
	if !started {
		e.abandon()
		close(e.done)
	}
}

// Done is closed once the UI goroutine has exited.
func (e *Executor) Done() <-chan struct{} { return e.done }

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Post enqueues fn for asynchronous execution. Tasks posted by one caller run
// in the order submitted. A panic inside fn is logged, never returned.
func (e *Executor) Post(fn func()) error {
	return e.enqueue(task{fn: func() error {
		fn()
		return nil
	}})
}

// PostAndWait enqueues fn and blocks until it has run, returning its error.
// A panic inside fn is recovered and returned as an error. Work posted
// earlier by the same caller is guaranteed to have run first.
func (e *Executor) PostAndWait(fn func() error) error {
	done := make(chan error, 1)
	if err := e.enqueue(task{fn: fn, done: done}); err != nil {
		return err
	}
	return <-done
}

// Call runs fn on the UI goroutine and returns its value.
func Call[T any](e *Executor, fn func() (T, error)) (T, error) {
	var out T
	err := e.PostAndWait(func() error {
		v, err := fn()
		out = v
		return err
	})
	return out, err
}

func (e *Executor) enqueue(t task) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return ErrStopped
	}
	e.queue = append(e.queue, t)
	e.mu.Unlock()

	e.signal()
	return nil
}

func (e *Executor) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Executor) run() {
	if e.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	defer close(e.done)

	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.stopped {
			e.mu.Unlock()
			<-e.wake
			e.mu.Lock()
		}
		if e.stopped {
			e.mu.Unlock()
			e.abandon()
			return
		}
		t := e.queue[0]
		e.queue[0] = task{}
		e.queue = e.queue[1:]
		e.mu.Unlock()

		err := e.execute(t)
		if t.done != nil {
			t.done <- err
		} else if err != nil {
			e.logger.Warn("posted ui task failed", "error", err)
		}
	}
}

func (e *Executor) abandon() {
	e.mu.Lock()
	pending := e.queue
	e.queue = nil
	e.mu.Unlock()

	for _, t := range pending {
		if t.done != nil {
			t.done <- ErrStopped
		}
	}
}

func (e *Executor) execute(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("ui task panic recovered", "error", r)
			err = fmt.Errorf("panic on ui thread: %v", r)
		}
	}()
	return t.fn()
}
