package tsnsim

//
// Switch port engine: per-port cooperative process driving transmission
//
// Adapted from the teacher's router.go (RouterPort): that struct pairs an
// outgoing queue with a notify channel woken by new traffic; here the
// PortBuffer plays the outgoing-queue role and the Engine's Interrupt
// mechanism plays the notify-channel role, generalized to also support
// mid-frame preemption (spec.md §4.6), which RouterPort has no analogue of.
//

// PortEngineConfig configures a [PortEngine].
type PortEngineConfig struct {
	// Buffer is the MANDATORY port buffer this engine drains.
	Buffer *PortBuffer

	// Channel is the MANDATORY outgoing link this engine sends frames on.
	Channel *Channel

	// SourceAddr is the address to record as the sender of every frame
	// this engine transmits (the owning [Switch]'s address).
	SourceAddr Address

	// EgressPort is this engine's port number, recorded on monitored events.
	EgressPort int

	// Preemptive selects the preemptive scheduler variant (spec.md §4.6)
	// over the plain one (spec.md §4.6 "Main loop (non-preemptive)").
	Preemptive bool
}

// pendingSend is a preempted frame's stashed send handle, kept both in its
// original queue (for re-selection) and here until it is re-selected,
// per spec.md §3's invariant on preempted frames.
type pendingSend struct {
	handle    *Process
	inspector *Inspector
}

// PortEngine is the per-port cooperative process of spec.md §4.6. The
// zero value is invalid; use [NewPortEngine].
type PortEngine struct {
	engine *Engine
	cfg    PortEngineConfig

	process *Process
	pending map[int64]pendingSend

	currentFrame     *Frame
	currentHandle    *Process
	currentInspector *Inspector
}

// NewPortEngine creates and starts a [PortEngine].
func NewPortEngine(engine *Engine, cfg PortEngineConfig) *PortEngine {
	pe := &PortEngine{
		engine:  engine,
		cfg:     cfg,
		pending: make(map[int64]pendingSend),
	}
	pe.process = engine.Spawn("portengine", pe.run)
	return pe
}

// Notify interrupts the engine's process so it re-peeks its buffer: called
// by a [Switch] after every [PortBuffer.AppendFrame].
func (pe *PortEngine) Notify() {
	_ = pe.engine.Interrupt(pe.process, "ingress")
}

// run is the engine's cooperative process body.
func (pe *PortEngine) run(p *Process) error {
	for {
		if pe.currentHandle == nil {
			now := pe.engine.Now()
			frame := pe.cfg.Buffer.PeekNextFrame(now)
			if frame == nil {
				pe.sleep(p)
				continue
			}
			pe.currentFrame = frame
			if stash, ok := pe.pending[frame.ID]; ok {
				delete(pe.pending, frame.ID)
				pe.currentHandle, pe.currentInspector = stash.handle, stash.inspector
				_ = pe.engine.Interrupt(pe.currentHandle, "continue sending")
			} else {
				pe.currentHandle, pe.currentInspector = pe.cfg.Channel.SendFrame(
					frame, pe.cfg.SourceAddr, pe.cfg.EgressPort, 0, pe.cfg.Preemptive,
				)
			}
			pe.cfg.Buffer.TransmissionStart(now, frame)
			continue
		}

		outcome := p.Yield(pe.currentHandle.Done())
		if outcome.Interrupt != nil {
			if pe.cfg.Preemptive {
				pe.maybePreempt()
			}
			continue
		}

		pe.cfg.Buffer.TransmissionDone(pe.engine.Now(), pe.currentFrame)
		pe.currentFrame = nil
		pe.currentHandle = nil
		pe.currentInspector = nil
	}
}

// sleep waits either for the next ingress/preemption interrupt or, if the
// buffer holds only a CBS-gated head-of-queue, for that class's credit
// recovery instant — spec.md §9's Open Question, resolved per SPEC_FULL.md
// in favor of the suggested fix rather than relying solely on ingress wakes.
func (pe *PortEngine) sleep(p *Process) {
	now := pe.engine.Now()
	var ev *Event
	if t, ok := pe.cfg.Buffer.NextEligibleAt(now); ok && t > now {
		ev = pe.engine.Timeout(t - now)
	} else {
		ev = pe.engine.NewEvent()
	}
	p.Yield(ev)
}

// maybePreempt implements spec.md §4.6's preemptive variant: re-peek the
// buffer and, if a different frame is now the best candidate and pausing
// the in-flight one is legal, stash it and switch to the candidate.
func (pe *PortEngine) maybePreempt() {
	now := pe.engine.Now()
	candidate := pe.cfg.Buffer.PeekNextFrame(now)
	if candidate == nil || candidate.ID == pe.currentFrame.ID {
		return
	}
	if pe.currentHandle.Completed() {
		return
	}
	penalty := pe.cfg.Channel.cfg.PreemptionPenaltyBytes
	if pe.currentInspector == nil || !pe.currentInspector.ProcessInterruptable(now, penalty) {
		return
	}

	pe.pending[pe.currentFrame.ID] = pendingSend{handle: pe.currentHandle, inspector: pe.currentInspector}
	_ = pe.engine.Interrupt(pe.currentHandle, "stop sending")
	pe.cfg.Buffer.TransmissionPause(now, pe.currentFrame)

	pe.currentFrame = candidate
	if stash, ok := pe.pending[candidate.ID]; ok {
		delete(pe.pending, candidate.ID)
		pe.currentHandle = stash.handle
		pe.currentInspector = stash.inspector
		_ = pe.engine.Interrupt(pe.currentHandle, "continue sending")
	} else {
		pe.currentHandle, pe.currentInspector = pe.cfg.Channel.SendFrame(
			candidate, pe.cfg.SourceAddr, pe.cfg.EgressPort, penalty, true,
		)
	}
	pe.cfg.Buffer.TransmissionStart(now, candidate)
}
