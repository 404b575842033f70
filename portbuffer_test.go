package tsnsim

import "testing"

func TestPortBufferStrictPriorityOrdering(t *testing.T) {
	param := &SwitchParam{AvailableTrafficClasses: 2}
	pb, err := NewPortBuffer(0, param, 1000, 0, "sw0", 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	low := &Frame{ID: 1, Priority: 0}  // maps to class 0 with 2 classes
	high := &Frame{ID: 2, Priority: 7} // maps to class 1

	pb.AppendFrame(0, low)
	pb.AppendFrame(0, high)

	got := pb.PeekNextFrame(0)
	if got != high {
		t.Fatalf("PeekNextFrame() = frame %d, want the higher class's frame", got.ID)
	}
	if got := pb.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestPortBufferInvalidBandwidth(t *testing.T) {
	param := &SwitchParam{
		AvailableTrafficClasses: 2,
		TSAMap:                  map[TrafficClass]TSAKind{1: CreditBasedShaper},
		BandwidthMap:            map[TrafficClass]float64{1: 0},
	}
	if _, err := NewPortBuffer(0, param, 1000, 0, "sw0", 0, nil); err != ErrInvalidBandwidth {
		t.Fatalf("got %v, want ErrInvalidBandwidth", err)
	}
}

func TestPortBufferMonitoredEvents(t *testing.T) {
	monitor := NewMonitor()
	param := &SwitchParam{AvailableTrafficClasses: 1}
	pb, err := NewPortBuffer(0, param, 1000, 5, "sw0", 0, monitor)
	if err != nil {
		t.Fatal(err)
	}

	f := &Frame{ID: 1, Priority: 0, Payload: 100}
	pb.AppendFrame(0, f)
	pb.TransmissionStart(0, f)
	pb.TransmissionDone(10, f)

	events := monitor.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Action != ActionReceived {
		t.Fatalf("events[0].Action = %v, want ActionReceived", events[0].Action)
	}
	if events[1].Action != ActionTransmitted {
		t.Fatalf("events[1].Action = %v, want ActionTransmitted", events[1].Action)
	}
	// frame.TotalSize() = 100 bytes of payload, no headers -> 100*8/1000 = 0.8us.
	for i, ev := range events {
		if !almostEqual(ev.DTrans, 0.8) {
			t.Fatalf("events[%d].DTrans = %v, want 0.8", i, ev.DTrans)
		}
		if ev.DProp != 5 {
			t.Fatalf("events[%d].DProp = %v, want 5", i, ev.DProp)
		}
	}
}

func TestPortBufferDropFrame(t *testing.T) {
	monitor := NewMonitor()
	param := &SwitchParam{AvailableTrafficClasses: 1}
	pb, err := NewPortBuffer(0, param, 1000, 0, "sw0", 0, monitor)
	if err != nil {
		t.Fatal(err)
	}

	f := &Frame{ID: 1, Priority: 0}
	pb.AppendFrame(0, f)
	pb.DropFrame(1, f)

	if !pb.Empty() {
		t.Fatal("expected buffer to be empty after drop")
	}
	events := monitor.Events()
	if len(events) != 2 || events[1].Action != ActionDropped {
		t.Fatalf("got %+v, want a trailing ActionDropped event", events)
	}
}
