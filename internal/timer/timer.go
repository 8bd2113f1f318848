// Package timer implements GTimer: periodic tickers that report each tick
// through a callback.
package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MinPeriod is the shortest period a timer runs with.
const MinPeriod = time.Millisecond

// Timer fires its callback every period while running. The callback runs on
// the timer's own goroutine.
type Timer struct {
	id     string
	period time.Duration
	fire   func(id string)
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a stopped timer.
func New(id string, period time.Duration, fire func(id string), logger *slog.Logger) *Timer {
	if period < MinPeriod {
		period = MinPeriod
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Timer{id: id, period: period, fire: fire, logger: logger}
}

// ID returns the client's id for the timer.
func (t *Timer) ID() string { return t.id }

// Period returns the tick interval.
func (t *Timer) Period() time.Duration { return t.period }

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Start begins ticking. Starting a running timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(ctx, t.done)
}

// Stop halts the timer and waits for its goroutine to exit, so no tick is
// delivered after Stop returns. It must not be called from the callback.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Timer) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Timer) tick(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			t.logger.Error("timer panic recovered", "timer", t.id, "error", err)
		}
	}()
	if ctx.Err() != nil {
		return
	}
	t.fire(t.id)
}
