package tsnsim

//
// End nodes: traffic sources and sinks
//

import "sync"

// InjectorConfig configures an [Injector]: a cooperative process that
// manufactures a stream of frames from two independent generators (one for
// interarrival time, one for payload size) and injects each one directly
// into Receiver, bypassing any [Channel] (spec.md §5.3 uses [InjectedPort]
// as the conventional ingress port for such direct injection).
type InjectorConfig struct {
	// SourceAddress is recorded as every generated frame's Source.
	SourceAddress Address

	// Destination is recorded as every generated frame's Destination.
	Destination Address

	// Priority is recorded as every generated frame's Priority (0..7).
	Priority int

	// IntervalGenerator yields successive interarrival times, in
	// microseconds of virtual time. The Injector stops as soon as this
	// or SizeGenerator is exhausted.
	IntervalGenerator Generator[float64]

	// SizeGenerator yields successive payload sizes, in bytes.
	SizeGenerator Generator[int]

	// Headers is copied onto every generated frame.
	Headers []Header

	// IntensityFactor scales down every interarrival time (effectively
	// speeding up or slowing down the flow without regenerating it).
	// Zero defaults to 1 (no scaling).
	IntensityFactor float64

	// Receiver is the MANDATORY first hop a generated frame is pushed
	// into, typically a [Switch].
	Receiver FrameReceiver
}

// Injector drives an [InjectorConfig] as a cooperative process. The zero
// value is invalid; use [NewInjector].
type Injector struct {
	engine  *Engine
	cfg     InjectorConfig
	process *Process
}

// NewInjector creates and starts an [Injector].
func NewInjector(engine *Engine, cfg InjectorConfig) *Injector {
	if cfg.IntensityFactor == 0 {
		cfg.IntensityFactor = 1
	}
	inj := &Injector{engine: engine, cfg: cfg}
	inj.process = engine.Spawn("injector", inj.run)
	return inj
}

// run is the injector's cooperative process body.
func (inj *Injector) run(p *Process) error {
	for {
		delta, ok := inj.cfg.IntervalGenerator.Next()
		if !ok {
			return nil
		}
		size, ok := inj.cfg.SizeGenerator.Next()
		if !ok {
			return nil
		}

		p.Yield(inj.engine.Timeout(delta / inj.cfg.IntensityFactor))
		now := inj.engine.Now()

		frame := &Frame{
			ID:          inj.engine.NextFrameID(),
			Source:      inj.cfg.SourceAddress,
			Destination: inj.cfg.Destination,
			Payload:     size,
			Priority:    inj.cfg.Priority,
			Headers:     append([]Header(nil), inj.cfg.Headers...),
			CreatedAt:   now,
		}
		inj.cfg.Receiver.Push(now, frame, InjectedPort)
	}
}

// SinglePacketSourceConfig configures a [SinglePacketSource]: a source that
// sends exactly one frame at a fixed virtual time, for tests and minimal
// topologies that don't need a full generator pair. Unlike [Injector], it
// transmits over a real [Channel] (spec.md §4.8 groups it with the
// Flow-style sources that "pop" a frame onto a channel, not with
// [Injector]'s direct push).
type SinglePacketSourceConfig struct {
	SourceAddress Address
	Destination   Address
	Priority      int
	PayloadBytes  int
	Headers       []Header
	At            float64

	// Channel is the MANDATORY link the single frame is sent over.
	Channel *Channel
}

// SinglePacketSource sends exactly one frame then its process exits. The
// zero value is invalid; use [NewSinglePacketSource].
type SinglePacketSource struct {
	engine  *Engine
	cfg     SinglePacketSourceConfig
	process *Process
}

// NewSinglePacketSource creates and starts a [SinglePacketSource].
func NewSinglePacketSource(engine *Engine, cfg SinglePacketSourceConfig) *SinglePacketSource {
	s := &SinglePacketSource{engine: engine, cfg: cfg}
	s.process = engine.Spawn("single-packet-source", s.run)
	return s
}

func (s *SinglePacketSource) run(p *Process) error {
	p.Yield(s.engine.Timeout(s.cfg.At))
	now := s.engine.Now()
	frame := &Frame{
		ID:          s.engine.NextFrameID(),
		Source:      s.cfg.SourceAddress,
		Destination: s.cfg.Destination,
		Payload:     s.cfg.PayloadBytes,
		Priority:    s.cfg.Priority,
		Headers:     append([]Header(nil), s.cfg.Headers...),
		CreatedAt:   now,
	}
	s.cfg.Channel.SendFrame(frame, s.cfg.SourceAddress, 0, 0, false)
	return nil
}

// Sink is a terminal [FrameReceiver]: it just remembers every frame it was
// given, for tests and end-to-end statistics.
type Sink struct {
	address Address

	mu       sync.Mutex
	received []*Frame
}

var _ FrameReceiver = &Sink{}

// NewSink creates an empty [Sink].
func NewSink(address Address) *Sink {
	return &Sink{address: address}
}

// Address returns the sink's own address.
func (s *Sink) Address() Address { return s.address }

// Push implements [FrameReceiver].
func (s *Sink) Push(now float64, frame *Frame, ingressPort int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, frame)
}

// Received returns a copy of every frame this sink has ever received, in
// arrival order.
func (s *Sink) Received() []*Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Frame, len(s.received))
	copy(out, s.received)
	return out
}
