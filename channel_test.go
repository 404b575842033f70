package tsnsim

import (
	"sync"
	"testing"
)

type recordingReceiver struct {
	mu    sync.Mutex
	times []float64
	ports []int
}

func (r *recordingReceiver) Push(now float64, frame *Frame, ingressPort int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, now)
	r.ports = append(r.ports, ingressPort)
}

func TestChannelSendFrameBasic(t *testing.T) {
	e := newTestEngine()
	recv := &recordingReceiver{}

	ch := NewChannel(e, ChannelConfig{
		BandwidthBitsPerUs: 100,
		PropagationDelay:   5,
		Receiver:           recv,
		ReceiverAddress:    "b",
		IngressPort:        1,
	})

	frame := &Frame{ID: 1, Source: "a", Destination: "b", Payload: 100}
	ch.SendFrame(frame, "a", 0, 0, false)

	if err := e.RunUntil(1000); err != nil {
		t.Fatal(err)
	}

	if len(recv.times) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(recv.times))
	}
	// trans = 100*8/100 = 8us, + 5us propagation = 13us
	if got := recv.times[0]; got != 13 {
		t.Fatalf("delivery time = %v, want 13", got)
	}
	if got := recv.ports[0]; got != 1 {
		t.Fatalf("ingress port = %d, want 1", got)
	}
	if len(frame.Hops) != 1 {
		t.Fatalf("got %d hop records, want 1", len(frame.Hops))
	}
}

func TestChannelPauseResumeChargesPenalty(t *testing.T) {
	e := newTestEngine()
	recv := &recordingReceiver{}

	ch := NewChannel(e, ChannelConfig{
		BandwidthBitsPerUs:     100,
		PropagationDelay:       0,
		MinPreemptionBytes:     1,
		PreemptionPenaltyBytes: 50,
		Receiver:               recv,
		ReceiverAddress:        "b",
	})

	frame := &Frame{ID: 1, Source: "a", Destination: "b", Payload: 1000}
	handle, insp := ch.SendFrame(frame, "a", 0, 0, true)
	if insp == nil {
		t.Fatal("expected a non-nil Inspector")
	}

	// nominal completion at t = 1000*8/100 = 80us; pause partway through.
	if err := e.RunUntil(30); err != nil {
		t.Fatal(err)
	}
	if !insp.ProcessInterruptable(30, 50) {
		t.Fatal("expected the send to still be legally pausable")
	}
	if err := e.Interrupt(handle, "pause"); err != nil {
		t.Fatal(err)
	}
	if got := insp.FinishTime(); got != -1 {
		t.Fatalf("FinishTime() while paused = %v, want -1", got)
	}

	// while paused the send's process is waiting on an event nobody
	// completes, so the run loop's queue drains and Now() does not move.
	if err := e.RunUntil(1000); err != nil {
		t.Fatal(err)
	}
	if len(recv.times) != 0 {
		t.Fatal("did not expect a delivery while paused")
	}
	if got := e.Now(); got != 30 {
		t.Fatalf("Now() = %v, want 30 (clock does not advance with an empty queue)", got)
	}

	if err := e.Interrupt(handle, "resume"); err != nil {
		t.Fatal(err)
	}
	if err := e.RunUntilEvent(handle.Done()); err != nil {
		t.Fatal(err)
	}

	// remaining = 80-30 = 50us of send time, plus a 50-byte*8/100=4us penalty.
	want := 30.0 + 50.0 + 4.0
	if got := recv.times[0]; got != want {
		t.Fatalf("delivery time = %v, want %v", got, want)
	}
}
