package tsnsim

//
// Transmission selectors: one per traffic class, per port
//
// Grounded on the teacher's DPIRule interface with multiple concrete
// implementations (dpidrop.go/dpithrottle.go/dpiblock.go each implementing
// Filter): here TransmissionSelector plays the role of DPIRule, and
// StrictPrioritySelector/CreditBasedShaperSelector play the role of its
// concrete variants.
//

// TransmissionSelector is the per-traffic-class queueing and eligibility
// policy of a port. [PortBuffer] holds one per traffic class.
type TransmissionSelector interface {
	// AppendFrame enqueues frame onto this selector's FIFO.
	AppendFrame(frame *Frame)

	// GetFrame returns the head of the FIFO if one is present and
	// eligible for transmission at the given virtual time, or nil.
	GetFrame(now float64) *Frame

	// Transmitting updates the selector's credit (if any) and records
	// whether this selector is currently sending on the wire.
	Transmitting(now float64, status bool)

	// RemoveFrame removes frame from the FIFO by identity, used both on
	// transmission completion and on drop.
	RemoveFrame(now float64, frame *Frame)

	// Len returns the number of frames currently queued.
	Len() int

	// NextEligibleAt returns the virtual time at which a currently
	// ineligible head-of-queue frame (if any) will next become eligible,
	// and whether such a time is known. Strict priority selectors are
	// always eligible and so never have one; see CreditBasedShaperSelector.
	NextEligibleAt(now float64) (float64, bool)
}

// removeFrameByID removes the frame with the given id from frames, if
// present, preserving the order of the rest. Shared by both selectors.
func removeFrameByID(frames []*Frame, id int64) []*Frame {
	for i, f := range frames {
		if f.ID == id {
			return append(frames[:i:i], frames[i+1:]...)
		}
	}
	return frames
}

// StrictPrioritySelector is a [TransmissionSelector] that always releases
// the head of its FIFO when non-empty: spec.md §4.4.
type StrictPrioritySelector struct {
	fifo []*Frame
}

var _ TransmissionSelector = &StrictPrioritySelector{}

// NewStrictPrioritySelector creates an empty [StrictPrioritySelector].
func NewStrictPrioritySelector() *StrictPrioritySelector {
	return &StrictPrioritySelector{}
}

// AppendFrame implements TransmissionSelector.
func (s *StrictPrioritySelector) AppendFrame(frame *Frame) {
	s.fifo = append(s.fifo, frame)
}

// GetFrame implements TransmissionSelector.
func (s *StrictPrioritySelector) GetFrame(now float64) *Frame {
	if len(s.fifo) == 0 {
		return nil
	}
	return s.fifo[0]
}

// Transmitting implements TransmissionSelector. Strict priority has no
// credit state, so this is a no-op.
func (s *StrictPrioritySelector) Transmitting(now float64, status bool) {}

// RemoveFrame implements TransmissionSelector.
func (s *StrictPrioritySelector) RemoveFrame(now float64, frame *Frame) {
	s.fifo = removeFrameByID(s.fifo, frame.ID)
}

// Len implements TransmissionSelector.
func (s *StrictPrioritySelector) Len() int { return len(s.fifo) }

// NextEligibleAt implements TransmissionSelector: strict priority is
// always eligible, so there is never a future instant to wait for.
func (s *StrictPrioritySelector) NextEligibleAt(now float64) (float64, bool) {
	return 0, false
}

// CreditBasedShaperSelector is a [TransmissionSelector] gated by a credit
// counter evolving per idle/send slopes: spec.md §4.4, §3.
type CreditBasedShaperSelector struct {
	fifo []*Frame

	credit         float64
	lastUpdateTime float64
	transmitting   bool
	transmitAllow  bool

	idleSlope float64
	sendSlope float64
}

var _ TransmissionSelector = &CreditBasedShaperSelector{}

// NewCreditBasedShaperSelector creates a [CreditBasedShaperSelector] for a
// traffic class allotted deltaBandwidth (0,1] of portRateBitsPerUs
// (bits/µs). idleSlope = deltaBandwidth*portRate; sendSlope =
// idleSlope-portRate, per spec.md §3.
func NewCreditBasedShaperSelector(now float64, deltaBandwidth, portRateBitsPerUs float64) *CreditBasedShaperSelector {
	idle := deltaBandwidth * portRateBitsPerUs
	return &CreditBasedShaperSelector{
		lastUpdateTime: now,
		transmitAllow:  true,
		idleSlope:      idle,
		sendSlope:      idle - portRateBitsPerUs,
	}
}

// updateCredit implements spec.md §4.4's update_credit(now), called before
// every other operation on this selector.
func (s *CreditBasedShaperSelector) updateCredit(now float64) {
	dt := now - s.lastUpdateTime
	if s.transmitting {
		s.credit += dt * s.sendSlope
	} else {
		s.credit += dt * s.idleSlope
	}
	if len(s.fifo) == 0 && s.credit > 0 && !s.transmitting {
		s.credit = 0
	}
	s.transmitAllow = s.credit >= 0
	s.lastUpdateTime = now
}

// AppendFrame implements TransmissionSelector.
func (s *CreditBasedShaperSelector) AppendFrame(frame *Frame) {
	s.fifo = append(s.fifo, frame)
}

// GetFrame implements TransmissionSelector.
func (s *CreditBasedShaperSelector) GetFrame(now float64) *Frame {
	s.updateCredit(now)
	if len(s.fifo) == 0 || !s.transmitAllow {
		return nil
	}
	return s.fifo[0]
}

// Transmitting implements TransmissionSelector.
func (s *CreditBasedShaperSelector) Transmitting(now float64, status bool) {
	s.updateCredit(now)
	s.transmitting = status
}

// RemoveFrame implements TransmissionSelector.
func (s *CreditBasedShaperSelector) RemoveFrame(now float64, frame *Frame) {
	s.updateCredit(now)
	s.fifo = removeFrameByID(s.fifo, frame.ID)
}

// Len implements TransmissionSelector.
func (s *CreditBasedShaperSelector) Len() int { return len(s.fifo) }

// Credit returns the selector's current credit value (for tests and monitoring).
func (s *CreditBasedShaperSelector) Credit() float64 { return s.credit }

// TransmitAllowed reports whether credit >= 0 as of the last update.
// spec.md §3's invariant: TransmitAllowed() <=> Credit() >= 0 always holds
// immediately after any operation on this selector.
func (s *CreditBasedShaperSelector) TransmitAllowed() bool { return s.transmitAllow }

// NextEligibleAt implements TransmissionSelector: if the head-of-queue is
// currently gated by negative credit, returns the virtual time at which
// credit is projected to cross zero, resolving spec.md §9's open question
// (the port engine uses this to schedule an explicit recovery timeout
// instead of relying solely on ingress-driven re-wakes).
func (s *CreditBasedShaperSelector) NextEligibleAt(now float64) (float64, bool) {
	s.updateCredit(now)
	if len(s.fifo) == 0 || s.transmitAllow {
		return 0, false
	}
	slope := s.idleSlope
	if s.transmitting {
		slope = s.sendSlope
	}
	if slope <= 0 {
		return 0, false
	}
	return now + (-s.credit)/slope, true
}
