package tsnsim

//
// Channel: timed frame transmission with suspend/resume semantics
//
// Adapted from the teacher's link.go (Link/linkForward/linkForwardingState):
// same shape (a goroutine draining a deadline-ordered queue of frames onto
// a receiver) generalized from real wall-clock time.Ticker to virtual-time
// Engine.Timeout, and extended with the Sending/Paused/Done state machine
// and Inspector that preemption requires (spec.md §4.2), which the
// teacher's Link has no analogue of.
//

import "sync"

// FrameReceiver is anything a [Channel] can deliver a frame to: a [Switch]
// (via its ingress) or a [Sink].
type FrameReceiver interface {
	Push(now float64, frame *Frame, ingressPort int)
}

// Inspector exposes a sending [Process]'s scheduled completion time and
// lets a [PortEngine] decide whether it may legally pause it. The zero
// value is not ready to use; a [Channel] creates one per monitored send.
type Inspector struct {
	mu sync.Mutex

	// finishTime is the virtual time this send is due to complete, or -1
	// while Paused.
	finishTime float64

	bandwidthBitsPerUs float64
	minPreemptionBytes int
}

// FinishTime returns the scheduled completion time, or -1 if the send is
// currently Paused.
func (insp *Inspector) FinishTime() float64 {
	insp.mu.Lock()
	defer insp.mu.Unlock()
	return insp.finishTime
}

func (insp *Inspector) setFinishTime(t float64) {
	insp.mu.Lock()
	defer insp.mu.Unlock()
	insp.finishTime = t
}

// ProcessInterruptable reports whether this send may legally be paused
// right now, optionally accounting for penaltyBytes that pausing (and
// later resuming) would cost: true iff the send is already Paused, or the
// bytes remaining to send exceed minPreemptionBytes plus the penalty.
func (insp *Inspector) ProcessInterruptable(now float64, penaltyBytes int) bool {
	insp.mu.Lock()
	defer insp.mu.Unlock()
	if insp.finishTime < 0 {
		return true
	}
	bytesLeft := (insp.finishTime - now) * insp.bandwidthBitsPerUs / 8
	return bytesLeft-float64(penaltyBytes) > float64(insp.minPreemptionBytes)
}

// ChannelConfig describes one link between a sending port and a [FrameReceiver].
type ChannelConfig struct {
	// BandwidthBitsPerUs is the link's bandwidth in bits per microsecond
	// (numerically equal to Mb/s).
	BandwidthBitsPerUs float64

	// PropagationDelay is the link's one-way propagation delay in microseconds.
	PropagationDelay float64

	// MinPreemptionBytes is the minimum number of bytes that must remain
	// to be sent for a pause to be legal (spec.md §4.6). Must be >= 1.
	MinPreemptionBytes int

	// PreemptionPenaltyBytes is the resync cost, in bytes, charged both
	// when a paused send resumes and when a brand-new frame preemptively
	// starts sending in place of one that was never paused itself.
	PreemptionPenaltyBytes int

	// Receiver is the node on the far end of this channel.
	Receiver FrameReceiver

	// ReceiverAddress is Receiver's node address, recorded on hop tables.
	ReceiverAddress Address

	// IngressPort is the port number Receiver.Push should be told frames
	// arrived on.
	IngressPort int

	// Monitor is OPTIONAL; if set, completed hops are recorded on it.
	Monitor *Monitor
}

// Channel is the sending half of a link: spec.md §4.2. The zero value is
// invalid; use [NewChannel].
type Channel struct {
	engine *Engine
	cfg    ChannelConfig
}

// NewChannel creates a [Channel] bound to engine.
func NewChannel(engine *Engine, cfg ChannelConfig) *Channel {
	return &Channel{engine: engine, cfg: cfg}
}

// sendState is the Sending/Paused/Done state machine of spec.md §4.2.
type sendState int

const (
	sendStateSending sendState = iota
	sendStatePaused
)

// SendFrame spawns a sending [Process] for frame and returns its handle.
// If withInspector, an [Inspector] is also created and returned; a
// [PortEngine] needs one whenever it might later try to preempt this send.
// extraBytes accounts for a preemption resync cost charged upfront to a
// brand-new frame replacing one that was never itself paused (spec.md
// §4.6's "fresh pop" case); ordinary sends pass 0.
func (ch *Channel) SendFrame(frame *Frame, sourceAddr Address, egressPort int, extraBytes int, withInspector bool) (*Process, *Inspector) {
	var insp *Inspector
	if withInspector {
		insp = &Inspector{
			bandwidthBitsPerUs: ch.cfg.BandwidthBitsPerUs,
			minPreemptionBytes: ch.cfg.MinPreemptionBytes,
		}
	}
	p := ch.engine.Spawn("send", func(p *Process) error {
		return ch.sendLoop(p, frame, sourceAddr, egressPort, extraBytes, insp)
	})
	return p, insp
}

// sendLoop drives one frame through Sending -> (Paused -> Sending)* -> Done.
func (ch *Channel) sendLoop(p *Process, frame *Frame, sourceAddr Address, egressPort int, extraBytes int, insp *Inspector) error {
	// The hop starts when the frame reached the sending node (its previous
	// hop's arrival, or its creation), so the hop's nodal delay includes
	// the time it spent queued there.
	origStart := frame.CreatedAt
	if n := len(frame.Hops); n > 0 {
		origStart = frame.Hops[n-1].ReceiverTime
	}
	tSend := float64(frame.TotalSize()+extraBytes)*8/ch.cfg.BandwidthBitsPerUs + ch.cfg.PropagationDelay

	state := sendStateSending
	resumeStart := ch.engine.Now()
	if insp != nil {
		insp.setFinishTime(ch.engine.Now() + tSend)
	}

	for {
		var ev *Event
		if state == sendStateSending {
			ev = ch.engine.Timeout(tSend)
		} else {
			// Paused: never fires on its own, only an interrupt can move us.
			ev = ch.engine.NewEvent()
		}

		outcome := p.Yield(ev)
		now := ch.engine.Now()

		if outcome.Interrupt == nil {
			// normal expiry: Sending -> Done
			nominalTrans := float64(frame.TotalSize()) * 8 / ch.cfg.BandwidthBitsPerUs
			hop := HopRecord{
				Sender:       sourceAddr,
				Receiver:     ch.cfg.ReceiverAddress,
				SenderTime:   origStart,
				ReceiverTime: now,
				Trans:        nominalTrans,
				Prop:         ch.cfg.PropagationDelay,
			}
			lastHop := frame.Destination == ch.cfg.ReceiverAddress
			frame.Hops = append(frame.Hops, hop)
			if ch.cfg.Monitor != nil {
				ch.cfg.Monitor.RecordHop(frame, hop, lastHop)
			}
			ch.cfg.Receiver.Push(now, frame, ch.cfg.IngressPort)
			return nil
		}

		if insp == nil {
			// Protocol misuse (spec.md §7 kind 2): interrupting a send
			// with no Inspector means nobody could have legally decided
			// to pause it. This is a programming error, not a runtime
			// condition to recover from.
			panic(ErrInterruptWithoutInspector)
		}

		switch state {
		case sendStateSending:
			tSend -= now - resumeStart
			insp.setFinishTime(-1)
			state = sendStatePaused
		case sendStatePaused:
			penaltyTime := float64(ch.cfg.PreemptionPenaltyBytes) * 8 / ch.cfg.BandwidthBitsPerUs
			tSend += penaltyTime
			resumeStart = now
			insp.setFinishTime(now + tSend)
			state = sendStateSending
		}
	}
}
