package tsnsim

import (
	"math"
	"testing"
)

func TestStrictPrioritySelectorFIFO(t *testing.T) {
	s := NewStrictPrioritySelector()
	f1 := &Frame{ID: 1}
	f2 := &Frame{ID: 2}
	s.AppendFrame(f1)
	s.AppendFrame(f2)

	if got := s.GetFrame(0); got != f1 {
		t.Fatalf("GetFrame() = %v, want f1", got)
	}
	s.RemoveFrame(0, f1)
	if got := s.GetFrame(0); got != f2 {
		t.Fatalf("GetFrame() = %v, want f2", got)
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if _, ok := s.NextEligibleAt(0); ok {
		t.Fatal("strict priority should never report a NextEligibleAt")
	}
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreditBasedShaperIdleRecovery(t *testing.T) {
	// port rate 1000 bits/us (1 Gb/s), class allotted 25% of bandwidth.
	sel := NewCreditBasedShaperSelector(0, 0.25, 1000)
	sel.AppendFrame(&Frame{ID: 1, Payload: 100})

	// Marks the selector sending as of time 0; sendSlope = idleSlope - rate = -750.
	sel.Transmitting(0, true)
	if got := sel.Credit(); !closeEnough(got, 0) {
		t.Fatalf("initial credit = %v, want 0", got)
	}

	// After sending for 10us, credit = -750*10 = -7500.
	sel.Transmitting(10, false)
	if got := sel.Credit(); !closeEnough(got, -7500) {
		t.Fatalf("credit after sending = %v, want -7500", got)
	}
	if sel.TransmitAllowed() {
		t.Fatal("expected TransmitAllowed() == false with negative credit")
	}

	// Idling recovers credit at idleSlope = 250/us.
	next, ok := sel.NextEligibleAt(10)
	if !ok {
		t.Fatal("expected a NextEligibleAt while credit is negative")
	}
	want := 10 + 7500.0/250.0
	if !closeEnough(next, want) {
		t.Fatalf("NextEligibleAt = %v, want %v", next, want)
	}

	if f := sel.GetFrame(next); f == nil {
		t.Fatal("expected frame to become eligible at the computed recovery instant")
	}
}

func TestCreditBasedShaperClampsAtZeroWhenEmpty(t *testing.T) {
	sel := NewCreditBasedShaperSelector(0, 0.5, 1000)
	// Queue stays empty throughout: idling credit would otherwise grow
	// without bound; it must clamp to 0 instead, per spec.md's
	// update_credit rule.
	if got := sel.GetFrame(10); got != nil {
		t.Fatalf("GetFrame() on an empty selector = %v, want nil", got)
	}
	if got := sel.Credit(); !closeEnough(got, 0) {
		t.Fatalf("credit = %v, want clamped at 0", got)
	}
	if _, ok := sel.NextEligibleAt(20); ok {
		t.Fatal("an empty selector should never report a NextEligibleAt")
	}
}
