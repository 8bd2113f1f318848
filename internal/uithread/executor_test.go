package uithread

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func newStarted(t *testing.T) *Executor {
	t.Helper()
	e := New(nil)
	e.Start()
	t.Cleanup(e.Stop)
	return e
}

func TestPostAndWait_ObservesEarlierPosts(t *testing.T) {
	e := newStarted(t)

	for round := 0; round < 100; round++ {
		counter := 0
		e.Post(func() {
			time.Sleep(time.Microsecond)
			counter++
		})
		e.Post(func() { counter++ })

		got, err := Call(e, func() (int, error) { return counter, nil })
		if err != nil {
			t.Fatalf("Call error: %v", err)
		}
		if got != 2 {
			t.Fatalf("round %d: expected counter 2, got %d", round, got)
		}
	}
}

func TestPost_PreservesSubmissionOrder(t *testing.T) {
	e := newStarted(t)

	var order []int
	for i := 0; i < 1000; i++ {
		i := i
		e.Post(func() { order = append(order, i) })
	}
	if err := e.PostAndWait(func() error { return nil }); err != nil {
		t.Fatalf("PostAndWait error: %v", err)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("expected order[%d]=%d, got %d", i, i, v)
		}
	}
}

func TestPostAndWait_ReturnsErrorsAndPanics(t *testing.T) {
	e := newStarted(t)

	want := errors.New("boom")
	if err := e.PostAndWait(func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}

	err := e.PostAndWait(func() error { panic("kaboom") })
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("expected recovered panic error, got %v", err)
	}

	// A panicking Post must not kill the UI goroutine.
	e.Post(func() { panic("posted") })
	v, err := Call(e, func() (string, error) { return "alive", nil })
	if err != nil || v != "alive" {
		t.Fatalf("expected executor to survive, got %q %v", v, err)
	}
}

func TestStop_RejectsNewWork(t *testing.T) {
	e := New(nil)
	e.Start()
	e.Stop()

	select {
	case <-e.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not stop")
	}
	if err := e.Post(func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped from Post, got %v", err)
	}
	if err := e.PostAndWait(func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped from PostAndWait, got %v", err)
	}
}

func TestStop_AbandonsQueuedWaiters(t *testing.T) {
	e := New(nil)
	e.Start()

	release := make(chan struct{})
	e.Post(func() { <-release })

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- e.PostAndWait(func() error { return nil })
		}()
	}
	for e.Pending() < 3 {
		time.Sleep(time.Millisecond)
	}
	e.Stop()
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, ErrStopped) {
			t.Fatalf("expected ErrStopped, got %v", err)
		}
	}
}

func TestStop_BeforeStart(t *testing.T) {
	e := New(nil)
	e.Stop()
	select {
	case <-e.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
}

func TestConcurrentSubmitters(t *testing.T) {
	e := newStarted(t)

	total := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				e.Post(func() { total++ })
			}
			e.PostAndWait(func() error { return nil })
		}()
	}
	wg.Wait()

	got, _ := Call(e, func() (int, error) { return total, nil })
	if got != 800 {
		t.Fatalf("expected 800, got %d", got)
	}
}
