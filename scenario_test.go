package tsnsim

import (
	"math"
	"testing"
)

// TestScenarioTopologySingleHop exercises the builder API end to end: one
// switch, one sink, one injector producing a bounded number of
// constant-rate frames.
func TestScenarioTopologySingleHop(t *testing.T) {
	e := newTestEngine()
	monitor := NewMonitor()
	topo := NewTopology(e, monitor)

	if _, err := topo.AddSwitch("sw0", 10000); err != nil {
		t.Fatal(err)
	}
	if _, err := topo.AddSink("host1"); err != nil {
		t.Fatal(err)
	}

	lc := LinkConfig{BandwidthBitsPerUs: 100, PropagationDelay: 1}
	if err := topo.ConnectSink("sw0", "host1", &SwitchParam{}, lc, 100); err != nil {
		t.Fatal(err)
	}

	const frameCount = 5
	if _, err := topo.AddInjector("sw0", InjectorConfig{
		SourceAddress:     "host0",
		Destination:       "host1",
		Priority:          3,
		IntervalGenerator: &CountGenerator[float64]{Inner: &ConstantGenerator[float64]{Value: 100}, Limit: frameCount},
		SizeGenerator:     &ConstantGenerator[int]{Value: 100},
	}); err != nil {
		t.Fatal(err)
	}

	if err := topo.Run(100000); err != nil {
		t.Fatal(err)
	}

	sink, ok := topo.Sink("host1")
	if !ok {
		t.Fatal("expected a registered sink")
	}
	received := sink.Received()
	if len(received) != frameCount {
		t.Fatalf("got %d frames, want %d", len(received), frameCount)
	}
	for i, f := range received {
		if f.Destination != "host1" || f.Source != "host0" {
			t.Fatalf("frame %d: got source=%s destination=%s", i, f.Source, f.Destination)
		}
		if len(f.Hops) != 1 {
			t.Fatalf("frame %d: got %d hops, want 1", i, len(f.Hops))
		}
	}

	stats, err := monitor.PortStatsFor("sw0", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FramesSent != frameCount {
		t.Fatalf("FramesSent = %d, want %d", stats.FramesSent, frameCount)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestScenarioPreemptionReordersCompletion exercises spec.md §4.6's
// preemptive port engine directly against a PortBuffer and Channel: a
// low-priority frame already in flight is paused mid-send so a
// higher-priority frame that arrives later completes first, then the
// low-priority frame resumes paying the resync penalty.
func TestScenarioPreemptionReordersCompletion(t *testing.T) {
	e := newTestEngine()
	recv := &recordingReceiver{}

	ch := NewChannel(e, ChannelConfig{
		BandwidthBitsPerUs:     100,
		PropagationDelay:       0,
		MinPreemptionBytes:     1,
		PreemptionPenaltyBytes: 10,
		Receiver:               recv,
		ReceiverAddress:        "out",
	})
	param := &SwitchParam{AvailableTrafficClasses: 8}
	buf, err := NewPortBuffer(0, param, 100, 0, "sw0", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	pe := NewPortEngine(e, PortEngineConfig{
		Buffer: buf, Channel: ch, SourceAddr: "sw0", EgressPort: 0, Preemptive: true,
	})

	low := &Frame{ID: 1, Priority: 0, Payload: 625}  // maps to a low traffic class
	high := &Frame{ID: 2, Priority: 7, Payload: 100} // maps to the highest traffic class

	buf.AppendFrame(0, low)
	pe.Notify()

	if err := e.RunUntil(10); err != nil {
		t.Fatal(err)
	}
	buf.AppendFrame(10, high)
	pe.Notify()

	if err := e.RunUntil(1000); err != nil {
		t.Fatal(err)
	}

	if len(recv.times) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(recv.times))
	}
	if !almostEqual(recv.times[0], 18.8) || recv.ports[0] != 0 {
		t.Fatalf("first delivery: got time=%v, want the high-priority frame at t=18.8", recv.times[0])
	}
	if !almostEqual(recv.times[1], 59.6) {
		t.Fatalf("second delivery time = %v, want 59.6 (preempted frame resumes with resync penalty)", recv.times[1])
	}
}

// TestSinglePacketSourceDirectChannel exercises spec.md §8 scenario 1: one
// SinglePacket over a single, uncontended 10 Mb/s link. With a 26-byte
// Ethernet-style header and zero payload, latency must be exactly
// 26*8/10 = 20.8us.
func TestSinglePacketSourceDirectChannel(t *testing.T) {
	e := newTestEngine()
	recv := &recordingReceiver{}

	ch := NewChannel(e, ChannelConfig{
		BandwidthBitsPerUs: 10,
		Receiver:           recv,
		ReceiverAddress:    "B",
	})

	NewSinglePacketSource(e, SinglePacketSourceConfig{
		SourceAddress: "A",
		Destination:   "B",
		Priority:      0,
		PayloadBytes:  0,
		Headers:       []Header{{Bytes: 26, Tag: "ethernet"}},
		At:            0,
		Channel:       ch,
	})

	if err := e.RunUntil(1000); err != nil {
		t.Fatal(err)
	}

	if len(recv.times) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(recv.times))
	}
	if !almostEqual(recv.times[0], 20.8) {
		t.Fatalf("latency = %v, want 20.8", recv.times[0])
	}
}

// TestScenarioSinglePacketSourceThroughTopology exercises
// Topology.AddSinglePacketSource: the source's own channel feeds a switch,
// which then forwards (unknown destination, so broadcasts) onto the sink.
func TestScenarioSinglePacketSourceThroughTopology(t *testing.T) {
	e := newTestEngine()
	monitor := NewMonitor()
	topo := NewTopology(e, monitor)

	if _, err := topo.AddSwitch("sw0", 10000); err != nil {
		t.Fatal(err)
	}
	if _, err := topo.AddSink("host1"); err != nil {
		t.Fatal(err)
	}
	if err := topo.ConnectSink("sw0", "host1", &SwitchParam{}, LinkConfig{BandwidthBitsPerUs: 10}, 10); err != nil {
		t.Fatal(err)
	}

	if _, err := topo.AddSinglePacketSource("sw0", SinglePacketSourceConfig{
		SourceAddress: "host0",
		Destination:   "host1",
		Priority:      0,
		PayloadBytes:  0,
		Headers:       []Header{{Bytes: 26, Tag: "ethernet"}},
		At:            0,
	}, LinkConfig{BandwidthBitsPerUs: 10}); err != nil {
		t.Fatal(err)
	}

	if err := topo.Run(1000); err != nil {
		t.Fatal(err)
	}

	sink, ok := topo.Sink("host1")
	if !ok {
		t.Fatal("expected a registered sink")
	}
	received := sink.Received()
	if len(received) != 1 {
		t.Fatalf("got %d frames, want 1", len(received))
	}
	if received[0].Source != "host0" || received[0].Destination != "host1" {
		t.Fatalf("got source=%s destination=%s", received[0].Source, received[0].Destination)
	}
	if len(received[0].Hops) != 2 {
		t.Fatalf("got %d hops, want 2 (source->switch, switch->sink)", len(received[0].Hops))
	}
}
