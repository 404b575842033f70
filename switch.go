package tsnsim

//
// Switch: learning bridge with per-port buffers and transmission engines
//
// Adapted from the teacher's router.go (Router): Router keeps a table
// mapping destination IP to RouterPort and floods nothing (it only ever
// routes known destinations); Switch generalizes that table into a
// self-learning, aging one and adds broadcast-with-split-horizon for
// destinations it has not yet learned (spec.md §5), which Router has no
// analogue of.
//

import (
	"sort"
	"sync"

	"github.com/tsnsim/tsnsim/internal/optional"
)

// port is one egress port of a [Switch]: its buffer and the cooperative
// process draining it onto a [Channel].
type port struct {
	buffer *PortBuffer
	engine *PortEngine
}

// routeEntry is one learned routing-table row: which port last carried
// traffic from an address, and when.
type routeEntry struct {
	port     int
	lastSeen float64
}

// Switch is a learning bridge: spec.md §5. It learns source addresses from
// ingress traffic, ages out stale entries, forwards frames with a known
// destination to the single learned port, and otherwise broadcasts to
// every port except the one the frame arrived on. The zero value is
// invalid; use [NewSwitch].
type Switch struct {
	address   Address
	engine    *Engine
	agingTime float64
	monitor   *Monitor

	mu    sync.Mutex
	ports map[int]*port
	table map[Address]routeEntry
}

var _ FrameReceiver = &Switch{}

// NewSwitch creates an empty [Switch]. agingTime is how long, in
// microseconds of virtual time, a learned routing-table entry remains
// valid since it was last refreshed.
func NewSwitch(engine *Engine, address Address, agingTime float64, monitor *Monitor) *Switch {
	return &Switch{
		address:   address,
		engine:    engine,
		agingTime: agingTime,
		monitor:   monitor,
		ports:     map[int]*port{},
		table:     map[Address]routeEntry{},
	}
}

// Address returns the switch's own address.
func (s *Switch) Address() Address { return s.address }

// PortBuffer returns the [PortBuffer] backing portNumber, for tests and
// monitoring; [ErrUnknownPort] if no such port was registered.
func (s *Switch) PortBuffer(portNumber int) (*PortBuffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ports[portNumber]
	if !ok {
		return nil, ErrUnknownPort
	}
	return p.buffer, nil
}

// AddPort registers an egress port, wiring buffer (its per-class queues)
// to channel (the outgoing link) via a dedicated [PortEngine]. Returns
// [ErrPortInUse] if portNumber is already registered.
func (s *Switch) AddPort(portNumber int, buffer *PortBuffer, channel *Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ports[portNumber]; exists {
		return ErrPortInUse
	}
	pe := NewPortEngine(s.engine, PortEngineConfig{
		Buffer:     buffer,
		Channel:    channel,
		SourceAddr: s.address,
		EgressPort: portNumber,
		Preemptive: false,
	})
	s.ports[portNumber] = &port{buffer: buffer, engine: pe}
	return nil
}

// AddPreemptivePort is like [Switch.AddPort] but drives the port with a
// preemptive [PortEngine] (spec.md §4.6).
func (s *Switch) AddPreemptivePort(portNumber int, buffer *PortBuffer, channel *Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ports[portNumber]; exists {
		return ErrPortInUse
	}
	pe := NewPortEngine(s.engine, PortEngineConfig{
		Buffer:     buffer,
		Channel:    channel,
		SourceAddr: s.address,
		EgressPort: portNumber,
		Preemptive: true,
	})
	s.ports[portNumber] = &port{buffer: buffer, engine: pe}
	return nil
}

// learn refreshes the routing-table entry for source, unless source is the
// switch's own address (which never needs to be learned).
func (s *Switch) learn(source Address, ingressPort int, now float64) {
	if source == s.address {
		return
	}
	s.table[source] = routeEntry{port: ingressPort, lastSeen: now}
}

// lookup returns the learned egress port for dest, honoring agingTime, or an
// empty [optional.Value] if no fresh entry exists.
func (s *Switch) lookup(dest Address, now float64) optional.Value[int] {
	entry, ok := s.table[dest]
	if !ok {
		return optional.None[int]()
	}
	if s.agingTime > 0 && now-entry.lastSeen > s.agingTime {
		delete(s.table, dest)
		return optional.None[int]()
	}
	return optional.Some(entry.port)
}

// Push implements [FrameReceiver]: it is called by a [Channel] (or an
// [Injector], using [InjectedPort]) when frame arrives on ingressPort.
func (s *Switch) Push(now float64, frame *Frame, ingressPort int) {
	s.mu.Lock()
	s.learn(frame.Source, ingressPort, now)
	route := s.lookup(frame.Destination, now)
	s.mu.Unlock()

	if !route.Empty() {
		destPort := route.Unwrap()
		if destPort == ingressPort {
			// Split-horizon: the destination is reachable via the same
			// port the frame arrived on, so forwarding would be a loop.
			return
		}
		s.forward(now, destPort, frame)
		return
	}
	s.broadcast(now, ingressPort, frame)
}

// forward appends frame onto the named egress port's buffer and wakes its
// [PortEngine].
func (s *Switch) forward(now float64, portNumber int, frame *Frame) {
	s.mu.Lock()
	p, ok := s.ports[portNumber]
	s.mu.Unlock()
	if !ok {
		return
	}
	p.buffer.AppendFrame(now, frame)
	p.engine.Notify()
}

// broadcast floods a clone of frame onto every port except ingressPort
// (split-horizon discard, spec.md §5).
func (s *Switch) broadcast(now float64, ingressPort int, frame *Frame) {
	s.mu.Lock()
	targets := make([]int, 0, len(s.ports))
	for number := range s.ports {
		if number == ingressPort {
			continue
		}
		targets = append(targets, number)
	}
	s.mu.Unlock()
	sort.Ints(targets)

	for _, number := range targets {
		s.forward(now, number, frame.Clone())
	}
}
