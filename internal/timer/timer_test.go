package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	got := make(chan string, 16)
	tm := New("t1", 5*time.Millisecond, func(id string) {
		ticks.Add(1)
		select {
		case got <- id:
		default:
		}
	}, nil)

	if tm.Running() {
		t.Fatal("expected a new timer to be stopped")
	}
	tm.Start()
	tm.Start()
	if !tm.Running() {
		t.Fatal("expected timer running")
	}

	select {
	case id := <-got:
		if id != "t1" {
			t.Fatalf("expected tick from t1, got %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick")
	}

	tm.Stop()
	if tm.Running() {
		t.Fatal("expected timer stopped")
	}
	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	if ticks.Load() != after {
		t.Fatalf("expected no ticks after Stop, got %d more", ticks.Load()-after)
	}
	tm.Stop()
}

func TestTimer_ClampsPeriod(t *testing.T) {
	tm := New("t", 0, func(string) {}, nil)
	if tm.Period() != MinPeriod {
		t.Fatalf("expected %v, got %v", MinPeriod, tm.Period())
	}
}

func TestTimer_RecoversPanics(t *testing.T) {
	var ticks atomic.Int32
	tm := New("t", time.Millisecond, func(string) {
		if ticks.Add(1) == 1 {
			panic("boom")
		}
	}, nil)
	tm.Start()
	defer tm.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("expected ticking to continue after a panic")
		}
		time.Sleep(time.Millisecond)
	}
}
