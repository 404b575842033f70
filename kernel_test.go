package tsnsim

import (
	"errors"
	"testing"

	"github.com/apex/log"
	"github.com/google/go-cmp/cmp"
)

func newTestEngine() *Engine {
	return NewEngine(&EngineConfig{Logger: log.Log, Seed: 1})
}

func TestEngineTimeoutOrdering(t *testing.T) {
	e := newTestEngine()

	var order []string
	e.Spawn("a", func(p *Process) error {
		p.Yield(e.Timeout(10))
		order = append(order, "a")
		return nil
	})
	e.Spawn("b", func(p *Process) error {
		p.Yield(e.Timeout(5))
		order = append(order, "b")
		return nil
	})
	e.Spawn("c", func(p *Process) error {
		p.Yield(e.Timeout(5))
		order = append(order, "c")
		return nil
	})

	if err := e.RunUntil(100); err != nil {
		t.Fatal(err)
	}

	want := []string{"b", "c", "a"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatal(diff)
	}
	// the queue drains at t=10, and RunUntil does not move the clock past
	// the last event it fired.
	if got := e.Now(); got != 10 {
		t.Fatalf("Now() = %v, want 10", got)
	}
}

func TestEngineRunUntilEvent(t *testing.T) {
	e := newTestEngine()

	done := e.Spawn("worker", func(p *Process) error {
		p.Yield(e.Timeout(3))
		return nil
	})

	if err := e.RunUntilEvent(done.Done()); err != nil {
		t.Fatal(err)
	}
	if got := e.Now(); got != 3 {
		t.Fatalf("Now() = %v, want 3", got)
	}
	if !done.Completed() {
		t.Fatal("expected worker to have completed")
	}
}

func TestProcessInterruptWhileAwaiting(t *testing.T) {
	e := newTestEngine()

	var gotInterrupt bool
	p := e.Spawn("worker", func(p *Process) error {
		outcome := p.Yield(e.Timeout(100))
		if outcome.Interrupt != nil {
			gotInterrupt = true
		}
		return nil
	})

	if err := e.Interrupt(p, "cancel"); err != nil {
		t.Fatal(err)
	}
	if err := e.RunUntil(1000); err != nil {
		t.Fatal(err)
	}
	if !gotInterrupt {
		t.Fatal("expected process to observe an interrupt")
	}
	// the stale Timeout(100) event is still queued (interrupting only
	// detaches its waiter) and fires as a harmless no-op, advancing the
	// clock to 100 even though nothing observes it.
	if got := e.Now(); got != 100 {
		t.Fatalf("Now() = %v, want 100", got)
	}
}

func TestProcessInterruptCompleted(t *testing.T) {
	e := newTestEngine()
	p := e.Spawn("worker", func(p *Process) error {
		return nil
	})
	if err := e.RunUntil(1); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(e.Interrupt(p, "too late"), ErrNotAwaiting) {
		t.Fatal("expected ErrNotAwaiting")
	}
}
