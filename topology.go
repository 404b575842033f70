package tsnsim

//
// Topology: builder assembling switches, links, sources and sinks
//
// Adapted from the teacher's topology.go (StarTopology/MustNewStarTopology/
// AddHost): same "one object owns everything, hands out configured
// handles, exposes a single Close/Run" shape, generalized from a fixed
// star of hosts around one router to an arbitrary mesh of [Switch]es,
// [Sink]s and [Injector]s wired by [LinkConfig]-described [Channel]s.
//

import "fmt"

// LinkConfig describes one directional [Channel] a [Topology] creates
// when connecting two nodes.
type LinkConfig struct {
	// BandwidthBitsPerUs is the link's bandwidth in bits per microsecond.
	BandwidthBitsPerUs float64

	// PropagationDelay is the link's one-way propagation delay, in
	// microseconds.
	PropagationDelay float64

	// MinPreemptionBytes is spec.md §4.6's minimum remaining-bytes
	// threshold below which a send may not be paused. Ignored on
	// non-preemptive ports.
	MinPreemptionBytes int

	// PreemptionPenaltyBytes is the resync cost charged each time a paused
	// send resumes and on every fresh preemptive send. Ignored on
	// non-preemptive ports.
	PreemptionPenaltyBytes int
}

// Topology assembles [Switch]es, [Sink]s and the [Channel]s connecting
// them around one [Engine] and one [Monitor]. The zero value is invalid;
// use [NewTopology].
type Topology struct {
	engine  *Engine
	monitor *Monitor

	switches map[Address]*Switch
	sinks    map[Address]*Sink
	nextPort map[Address]int
}

// NewTopology creates an empty [Topology] bound to engine, monitoring
// every switch and link it creates with monitor.
func NewTopology(engine *Engine, monitor *Monitor) *Topology {
	return &Topology{
		engine:   engine,
		monitor:  monitor,
		switches: map[Address]*Switch{},
		sinks:    map[Address]*Sink{},
		nextPort: map[Address]int{},
	}
}

// Engine returns the topology's [Engine].
func (t *Topology) Engine() *Engine { return t.engine }

// Monitor returns the topology's [Monitor].
func (t *Topology) Monitor() *Monitor { return t.monitor }

// ErrDuplicateAddress indicates that an address has already been added to
// a topology.
var ErrDuplicateAddress = ErrDuplicateNode

// AddSwitch creates and registers a [Switch] at address, learning table
// entries age out after agingTime microseconds of virtual time.
func (t *Topology) AddSwitch(address Address, agingTime float64) (*Switch, error) {
	if _, exists := t.switches[address]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, address)
	}
	if _, exists := t.sinks[address]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, address)
	}
	sw := NewSwitch(t.engine, address, agingTime, t.monitor)
	t.switches[address] = sw
	return sw, nil
}

// AddSink creates and registers a [Sink] at address.
func (t *Topology) AddSink(address Address) (*Sink, error) {
	if _, exists := t.sinks[address]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, address)
	}
	if _, exists := t.switches[address]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, address)
	}
	sink := NewSink(address)
	t.sinks[address] = sink
	return sink, nil
}

// allocatePort returns the next unused port number for the node at address.
func (t *Topology) allocatePort(address Address) int {
	port := t.nextPort[address]
	t.nextPort[address] = port + 1
	return port
}

// connectOneWay wires a single [Channel]+[PortBuffer] from source onto
// receiver, returning the allocated egress port number on source.
func (t *Topology) connectOneWay(
	source *Switch,
	receiver FrameReceiver,
	receiverAddress Address,
	ingressPort int,
	param *SwitchParam,
	lc LinkConfig,
	portRateBitsPerUs float64,
	preemptive bool,
) (int, error) {
	egressPort := t.allocatePort(source.Address())

	channel := NewChannel(t.engine, ChannelConfig{
		BandwidthBitsPerUs:     lc.BandwidthBitsPerUs,
		PropagationDelay:       lc.PropagationDelay,
		MinPreemptionBytes:     lc.MinPreemptionBytes,
		PreemptionPenaltyBytes: lc.PreemptionPenaltyBytes,
		Receiver:               receiver,
		ReceiverAddress:        receiverAddress,
		IngressPort:            ingressPort,
		Monitor:                t.monitor,
	})

	buffer, err := NewPortBuffer(t.engine.Now(), param, portRateBitsPerUs, lc.PropagationDelay, source.Address(), egressPort, t.monitor)
	if err != nil {
		return 0, err
	}

	if preemptive {
		err = source.AddPreemptivePort(egressPort, buffer, channel)
	} else {
		err = source.AddPort(egressPort, buffer, channel)
	}
	if err != nil {
		return 0, err
	}
	return egressPort, nil
}

// ConnectSwitches wires two switches with one [Channel]+[PortBuffer] in
// each direction, per spec.md §4.6 (preemptiveAB/preemptiveBA select the
// scheduler variant independently per direction).
func (t *Topology) ConnectSwitches(
	addressA, addressB Address,
	paramAB, paramBA *SwitchParam,
	lc LinkConfig,
	rateAB, rateBA float64,
	preemptiveAB, preemptiveBA bool,
) error {
	a, ok := t.switches[addressA]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, addressA)
	}
	b, ok := t.switches[addressB]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, addressB)
	}

	portOnB := t.nextPort[addressB]
	if _, err := t.connectOneWay(a, b, addressB, portOnB, paramAB, lc, rateAB, preemptiveAB); err != nil {
		return err
	}
	portOnA := t.nextPort[addressA]
	if _, err := t.connectOneWay(b, a, addressA, portOnA, paramBA, lc, rateBA, preemptiveBA); err != nil {
		return err
	}
	return nil
}

// ConnectSink wires a single [Channel]+[PortBuffer] from a switch to a
// sink; sinks never transmit, so no reverse channel is created.
func (t *Topology) ConnectSink(
	switchAddress, sinkAddress Address,
	param *SwitchParam,
	lc LinkConfig,
	portRateBitsPerUs float64,
) error {
	sw, ok := t.switches[switchAddress]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, switchAddress)
	}
	sink, ok := t.sinks[sinkAddress]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, sinkAddress)
	}
	_, err := t.connectOneWay(sw, sink, sinkAddress, 0, param, lc, portRateBitsPerUs, false)
	return err
}

// AddInjector creates and starts an [Injector] feeding frames directly
// into the switch at switchAddress via [InjectedPort].
func (t *Topology) AddInjector(switchAddress Address, cfg InjectorConfig) (*Injector, error) {
	sw, ok := t.switches[switchAddress]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, switchAddress)
	}
	cfg.Receiver = sw
	return NewInjector(t.engine, cfg), nil
}

// AddSinglePacketSource creates and starts a [SinglePacketSource] that
// sends its one frame over a dedicated [Channel] (per lc) into the switch
// at switchAddress.
func (t *Topology) AddSinglePacketSource(switchAddress Address, cfg SinglePacketSourceConfig, lc LinkConfig) (*SinglePacketSource, error) {
	sw, ok := t.switches[switchAddress]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, switchAddress)
	}
	ingressPort := t.allocatePort(switchAddress)
	cfg.Channel = NewChannel(t.engine, ChannelConfig{
		BandwidthBitsPerUs: lc.BandwidthBitsPerUs,
		PropagationDelay:   lc.PropagationDelay,
		Receiver:           sw,
		ReceiverAddress:    switchAddress,
		IngressPort:        ingressPort,
		Monitor:            t.monitor,
	})
	return NewSinglePacketSource(t.engine, cfg), nil
}

// Switch returns the registered switch at address, if any.
func (t *Topology) Switch(address Address) (*Switch, bool) {
	sw, ok := t.switches[address]
	return sw, ok
}

// Sink returns the registered sink at address, if any.
func (t *Topology) Sink(address Address) (*Sink, bool) {
	sink, ok := t.sinks[address]
	return sink, ok
}

// Run advances the topology's [Engine] until virtual time reaches until or
// no events remain, per [Engine.RunUntil].
func (t *Topology) Run(until float64) error {
	return t.engine.RunUntil(until)
}
